package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/gavelhq/gavel/internal/review"
)

// SARIFWriter outputs findings in SARIF v2.1.0 format for code-scanning
// integrations.
type SARIFWriter struct{}

func (s *SARIFWriter) Write(w io.Writer, result *review.ReviewResult) error {
	log := buildSARIF(result)
	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling SARIF: %w", err)
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("writing SARIF: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}

// SARIF schema types (v2.1.0)

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	ShortDescription sarifMessage       `json:"shortDescription"`
	DefaultConfig    sarifDefaultConfig `json:"defaultConfiguration"`
}

type sarifDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
	Fixes     []sarifFix      `json:"fixes,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine"`
	EndLine   int `json:"endLine"`
}

type sarifFix struct {
	Description sarifMessage `json:"description"`
}

// Rule IDs are fixed per category so downstream suppressions stay
// stable across runs.
var sarifRules = []sarifRule{
	{
		ID:               "gavel/danger",
		Name:             "Danger",
		ShortDescription: sarifMessage{Text: "Critical problem likely to cause incorrect behavior or a security flaw"},
		DefaultConfig:    sarifDefaultConfig{Level: "error"},
	},
	{
		ID:               "gavel/issue",
		Name:             "Issue",
		ShortDescription: sarifMessage{Text: "Defect that should be fixed"},
		DefaultConfig:    sarifDefaultConfig{Level: "warning"},
	},
	{
		ID:               "gavel/suggestion",
		Name:             "Suggestion",
		ShortDescription: sarifMessage{Text: "Improvement worth considering"},
		DefaultConfig:    sarifDefaultConfig{Level: "note"},
	},
	{
		ID:               "gavel/good-practice",
		Name:             "GoodPractice",
		ShortDescription: sarifMessage{Text: "Commendable practice worth keeping"},
		DefaultConfig:    sarifDefaultConfig{Level: "none"},
	},
	{
		ID:               "gavel/fix",
		Name:             "SuggestedFix",
		ShortDescription: sarifMessage{Text: "Concrete code change proposed by the reviewer"},
		DefaultConfig:    sarifDefaultConfig{Level: "note"},
	},
}

func buildSARIF(result *review.ReviewResult) sarifLog {
	var results []sarifResult
	used := make(map[string]bool)

	for i := range result.Files {
		f := &result.Files[i]
		for _, section := range f.Sections() {
			ruleID, level := categoryRule(section.Name)
			for _, finding := range section.Findings {
				used[ruleID] = true
				results = append(results, sarifResult{
					RuleID:    ruleID,
					Level:     level,
					Message:   sarifMessage{Text: finding.Description},
					Locations: []sarifLocation{fileLocation(f.Path, finding.Line)},
				})
			}
		}
		for _, fix := range f.Fixes {
			used["gavel/fix"] = true
			results = append(results, sarifResult{
				RuleID:    "gavel/fix",
				Level:     "note",
				Message:   sarifMessage{Text: fix.Explanation},
				Locations: []sarifLocation{fileLocation(f.Path, fix.Line)},
				Fixes:     []sarifFix{{Description: sarifMessage{Text: fix.Explanation}}},
			})
		}
	}

	var rules []sarifRule
	for _, rule := range sarifRules {
		if used[rule.ID] {
			rules = append(rules, rule)
		}
	}

	return sarifLog{
		Version: "2.1.0",
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/sarif-2.1/schema/sarif-schema-2.1.0.json",
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:           "gavel",
						Version:        ToolVersion,
						InformationURI: "https://github.com/gavelhq/gavel",
						Rules:          rules,
					},
				},
				Results: results,
			},
		},
	}
}

func fileLocation(path string, line int) sarifLocation {
	if line < 1 {
		line = 1
	}
	return sarifLocation{
		PhysicalLocation: sarifPhysicalLocation{
			ArtifactLocation: sarifArtifactLocation{URI: path},
			Region:           sarifRegion{StartLine: line, EndLine: line},
		},
	}
}

func categoryRule(section string) (string, string) {
	switch section {
	case "dangers":
		return "gavel/danger", "error"
	case "issues":
		return "gavel/issue", "warning"
	case "suggestions":
		return "gavel/suggestion", "note"
	default:
		return "gavel/good-practice", "none"
	}
}
