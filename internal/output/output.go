package output

import (
	"fmt"
	"io"
	"os"

	"github.com/gavelhq/gavel/internal/review"
)

// ToolVersion is stamped into machine-readable reports. The CLI overwrites
// it with the release version at startup.
var ToolVersion = "dev"

// Writer writes a review result in a specific format.
type Writer interface {
	Write(w io.Writer, result *review.ReviewResult) error
}

// GetWriter returns a writer for the specified format.
func GetWriter(format string) (Writer, error) {
	switch format {
	case "text":
		return &TextWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	case "markdown":
		return &MarkdownWriter{}, nil
	case "sarif":
		return &SARIFWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteReport writes the result to the specified output (file path or stdout).
func WriteReport(result *review.ReviewResult, format, outPath string) error {
	writer, err := GetWriter(format)
	if err != nil {
		return err
	}

	var w io.Writer
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	} else {
		w = os.Stdout
	}

	return writer.Write(w, result)
}

// sectionLabel maps a section name to its display heading.
func sectionLabel(name string) string {
	switch name {
	case "dangers":
		return "Dangers"
	case "issues":
		return "Issues"
	case "suggestions":
		return "Suggestions"
	case "good_practices":
		return "Good practices"
	default:
		return name
	}
}
