package review

import (
	"testing"
)

func TestParseReview_ValidObject(t *testing.T) {
	input := `{
		"dangers": [{"line": 3, "description": "SQL built by string concatenation"}],
		"issues": [{"line": 10, "description": "Error return ignored"}],
		"suggestions": [{"line": 20, "description": "Extract helper"}],
		"good_practices": [{"line": 1, "description": "Clear naming"}],
		"fix": [{"line": 10, "explanation": "Check the error", "code": "- f()\n+ if err := f(); err != nil {"}],
		"score": 72,
		"summary": "Solid file with one real problem."
	}`

	pr, err := parseReview(input)
	if err != nil {
		t.Fatalf("parseReview error: %v", err)
	}
	if len(pr.Dangers) != 1 || pr.Dangers[0].Line != 3 {
		t.Errorf("Dangers = %+v", pr.Dangers)
	}
	if len(pr.Issues) != 1 || pr.Issues[0].Description != "Error return ignored" {
		t.Errorf("Issues = %+v", pr.Issues)
	}
	if len(pr.Fixes) != 1 || pr.Fixes[0].Explanation != "Check the error" {
		t.Errorf("Fixes = %+v", pr.Fixes)
	}
	if pr.Score == nil || *pr.Score != 72 {
		t.Errorf("Score = %v, want 72", pr.Score)
	}
	if pr.Summary != "Solid file with one real problem." {
		t.Errorf("Summary = %q", pr.Summary)
	}
}

func TestParseReview_FencedAndProse(t *testing.T) {
	input := "Sure! ```json\n{\"issues\":[]}\n```"

	pr, err := parseReview(input)
	if err != nil {
		t.Fatalf("parseReview error: %v", err)
	}
	if len(pr.Issues) != 0 {
		t.Errorf("Issues = %+v, want empty", pr.Issues)
	}
	if pr.Score != nil {
		t.Errorf("Score = %v, want nil", pr.Score)
	}
}

func TestParseReview_SurroundingCommentary(t *testing.T) {
	input := "Here is my review:\n{\"issues\":[{\"line\":5,\"description\":\"off by one\"}],\"score\":60}\nLet me know if you need more."

	pr, err := parseReview(input)
	if err != nil {
		t.Fatalf("parseReview error: %v", err)
	}
	if len(pr.Issues) != 1 || pr.Issues[0].Line != 5 {
		t.Errorf("Issues = %+v", pr.Issues)
	}
}

func TestParseReview_NoObject(t *testing.T) {
	_, err := parseReview("I could not review this file, sorry.")
	if err == nil {
		t.Fatal("Expected error when no JSON object present")
	}
	if !IsMalformedResponse(err) {
		t.Errorf("error = %v, want MalformedResponseError", err)
	}
}

func TestParseReview_BadJSONInsideBraces(t *testing.T) {
	_, err := parseReview("{this is not json}")
	if err == nil {
		t.Fatal("Expected error for invalid JSON between braces")
	}
	if !IsMalformedResponse(err) {
		t.Errorf("error = %v, want MalformedResponseError", err)
	}
}

func TestParseReview_MissingScore(t *testing.T) {
	pr, err := parseReview(`{"dangers":[],"issues":[]}`)
	if err != nil {
		t.Fatalf("parseReview error: %v", err)
	}
	if pr.Score != nil {
		t.Errorf("Score = %v, want nil for absent key", pr.Score)
	}
}

func TestExtractObject_FirstToLastBrace(t *testing.T) {
	got, err := extractObject(`noise {"a": {"b": 1}} trailing {"c": 2} end`)
	if err != nil {
		t.Fatalf("extractObject error: %v", err)
	}
	want := `{"a": {"b": 1}} trailing {"c": 2}`
	if got != want {
		t.Errorf("extractObject = %q, want %q", got, want)
	}
}

func TestIsMalformedResponse(t *testing.T) {
	if IsMalformedResponse(nil) {
		t.Error("nil should not be malformed-response error")
	}
	if !IsMalformedResponse(&MalformedResponseError{reason: "x"}) {
		t.Error("MalformedResponseError should match")
	}
}
