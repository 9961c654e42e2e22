package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/gavelhq/gavel/internal/review"
)

// JSONWriter outputs the full review result as JSON. Serialization is the
// contract surface: single-file results must not contain score or summary
// keys, which the omitempty tags on [review.ReviewResult] guarantee.
type JSONWriter struct{}

func (j *JSONWriter) Write(w io.Writer, result *review.ReviewResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("writing JSON: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}
