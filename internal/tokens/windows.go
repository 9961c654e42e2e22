package tokens

// DefaultContextWindow is assumed for models missing from the table. Small
// on purpose: an unknown model gets aggressive chunking rather than
// overflowed prompts.
const DefaultContextWindow = 2048

var contextWindows = map[string]int{
	// OpenAI
	"gpt-5.3-codex":       400000,
	"gpt-5.3-codex-spark": 400000,
	"gpt-5.2-codex":       400000,
	"gpt-5.2":             400000,
	"gpt-4.1":             1047576,
	"gpt-4.1-mini":        1047576,
	"gpt-4o":              128000,
	"gpt-4o-mini":         128000,
	"gpt-4-turbo":         128000,
	"gpt-4":               8192,
	"gpt-3.5-turbo":       16385,
	"o3":                  200000,
	"o3-mini":             200000,
	"o4-mini":             200000,

	// Google
	"gemini-3-flash-preview": 1048576,
	"gemini-3-pro-preview":   1048576,
	"gemini-2.5-flash":       1048576,
	"gemini-2.5-pro":         1048576,
	"gemini-2.0-flash":       1048576,
	"gemini-1.5-pro":         2097152,
	"gemini-1.5-flash":       1048576,
}

// ContextWindow returns the maximum combined prompt size in tokens for a
// model, or DefaultContextWindow when the model is unknown.
func ContextWindow(model string) int {
	if w, ok := contextWindows[model]; ok {
		return w
	}
	return DefaultContextWindow
}

// KnownModels returns the catalog model names in no particular order.
func KnownModels() []string {
	names := make([]string, 0, len(contextWindows))
	for name := range contextWindows {
		names = append(names, name)
	}
	return names
}
