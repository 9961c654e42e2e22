package review

// ReviewType identifies which pipeline produced a result.
type ReviewType string

const (
	// ReviewTypeStandard is a whole-file review of one or more files.
	ReviewTypeStandard ReviewType = "standard"
	// ReviewTypeDiff is a change-scoped review of unified diffs.
	ReviewTypeDiff ReviewType = "diff"
)

// SourceFile is one unit of reviewable input. Path is a stable relative
// identifier, Content the raw file text, and Diff an optional unified diff
// when reviewing a change set. Producers (scanner, gitctx, github) build
// these; the engine consumes them read-only.
type SourceFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
	Diff    string `json:"diff,omitempty"`
}

// Finding is a single reviewer observation anchored to a line.
// Author is attached after review by the blame integration, never by the
// engine itself.
type Finding struct {
	Line        int    `json:"line"`
	Description string `json:"description"`
	Author      string `json:"author,omitempty"`
}

// Fix is a suggested change: a short explanation plus a diff-style snippet
// using leading "+"/"-" markers.
type Fix struct {
	Line        int    `json:"line"`
	Explanation string `json:"explanation"`
	Code        string `json:"code"`
}

// FileReview aggregates everything the model said about one file.
//
// Score and Summary are optional because single-file mode omits them
// entirely: a lone file's own narrative already carries that information,
// so serialized output must not contain the keys at all. Recovered counts
// review units (whole file or chunks) whose model output could not be
// parsed and were folded in as empty; it distinguishes a genuinely clean
// review from one that silently lost findings.
type FileReview struct {
	Path          string    `json:"path"`
	Dangers       []Finding `json:"dangers"`
	Issues        []Finding `json:"issues"`
	Suggestions   []Finding `json:"suggestions"`
	GoodPractices []Finding `json:"good_practices,omitempty"`
	Fixes         []Fix     `json:"fix,omitempty"`
	Score         *int      `json:"score,omitempty"`
	Summary       string    `json:"summary,omitempty"`
	Diff          string    `json:"diff,omitempty"`
	Recovered     int       `json:"recovered,omitempty"`
}

// ReviewResult is the top-level output: one FileReview per input file in
// input order, plus the cross-file score and executive summary.
// Score and Summary are absent (nil / empty, omitted from JSON) in
// single-file mode.
type ReviewResult struct {
	Files      []FileReview `json:"files"`
	Score      *int         `json:"score,omitempty"`
	Summary    string       `json:"summary,omitempty"`
	ReviewType ReviewType   `json:"reviewType"`
}

// Chunk is a token-bounded slice of one file, transient to chunked
// processing. StartLine is the 1-based line of the original file where this
// chunk's content begins, used to remap finding lines afterwards.
type Chunk struct {
	Content   string
	StartLine int
}

// Section pairs a finding category with its entries, in render order.
type Section struct {
	Name     string
	Findings []Finding
}

// Sections returns the file's findings grouped by category in severity
// order. Empty categories are included so renderers can decide whether to
// show them.
func (fr *FileReview) Sections() []Section {
	return []Section{
		{Name: "dangers", Findings: fr.Dangers},
		{Name: "issues", Findings: fr.Issues},
		{Name: "suggestions", Findings: fr.Suggestions},
		{Name: "good_practices", Findings: fr.GoodPractices},
	}
}

// FindingCount returns the total number of findings across all categories.
func (fr *FileReview) FindingCount() int {
	return len(fr.Dangers) + len(fr.Issues) + len(fr.Suggestions) + len(fr.GoodPractices)
}

// DangerCount returns the number of danger findings across all files.
func (r *ReviewResult) DangerCount() int {
	var n int
	for i := range r.Files {
		n += len(r.Files[i].Dangers)
	}
	return n
}

// FindingCount returns the total number of findings across all files.
func (r *ReviewResult) FindingCount() int {
	var n int
	for i := range r.Files {
		n += r.Files[i].FindingCount()
	}
	return n
}

// ScoreValue returns the cross-file score and whether one is present.
func (r *ReviewResult) ScoreValue() (int, bool) {
	if r.Score == nil {
		return 0, false
	}
	return *r.Score, true
}

// intPtr is a convenience for building optional scores.
func intPtr(n int) *int { return &n }
