package review

import (
	"encoding/json"
	"errors"
	"strings"
)

// MalformedResponseError reports model output in which no JSON object could
// be located or parsed.
type MalformedResponseError struct {
	reason string
}

func (e *MalformedResponseError) Error() string {
	return "malformed model response: " + e.reason
}

// IsMalformedResponse checks if an error is a malformed-response error.
func IsMalformedResponse(err error) bool {
	var me *MalformedResponseError
	return errors.As(err, &me)
}

// partialReview is the JSON structure the model is instructed to return for
// one unit of work (a whole file or a single chunk).
type partialReview struct {
	Dangers       []Finding `json:"dangers"`
	Issues        []Finding `json:"issues"`
	Suggestions   []Finding `json:"suggestions"`
	GoodPractices []Finding `json:"good_practices"`
	Fixes         []Fix     `json:"fix"`
	Score         *int      `json:"score"`
	Summary       string    `json:"summary"`
}

// parseReview extracts and decodes the review object from raw model output.
// Models wrap JSON in markdown fences and prose no matter how firmly the
// prompt forbids it, so extraction is by brace positions: the substring from
// the first "{" to the last "}" inclusive.
func parseReview(raw string) (partialReview, error) {
	payload, err := extractObject(raw)
	if err != nil {
		return partialReview{}, err
	}

	var pr partialReview
	if err := json.Unmarshal([]byte(payload), &pr); err != nil {
		return partialReview{}, &MalformedResponseError{reason: err.Error()}
	}
	return pr, nil
}

func extractObject(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return "", &MalformedResponseError{reason: "no JSON object found"}
	}
	return raw[start : end+1], nil
}
