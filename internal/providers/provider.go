package providers

import (
	"context"
	"strings"
)

// Provider is the closed set of supported LLM backends. It is resolved once
// from the model name at the entry point and threaded explicitly; nothing
// below the CLI re-derives it.
type Provider int

const (
	// ProviderOpenAI routes to the chat-completions API with system/user roles.
	ProviderOpenAI Provider = iota
	// ProviderGoogle routes to the Gemini generate-content API via the genai SDK.
	ProviderGoogle
)

// geminiPrefix is the one fixed model-name prefix that selects the Google
// provider family; every other model name routes to OpenAI.
const geminiPrefix = "gemini-"

// Resolve maps a model name to its provider.
func Resolve(model string) Provider {
	if strings.HasPrefix(model, geminiPrefix) {
		return ProviderGoogle
	}
	return ProviderOpenAI
}

func (p Provider) String() string {
	switch p {
	case ProviderGoogle:
		return "google"
	default:
		return "openai"
	}
}

// EnvKey returns the environment variable consulted for this provider's API
// key when the config file has none.
func (p Provider) EnvKey() string {
	switch p {
	case ProviderGoogle:
		return "GOOGLE_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}

// Request carries one completion call. System and User are kept separate;
// each client maps them onto its wire format (separate chat roles for
// OpenAI, a combined content sequence for Gemini).
type Request struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float64
}

// Response is the raw text payload of a completion, plus usage when the
// backend reports it.
type Response struct {
	Content    string
	TokensUsed int
}

// Client is the single point of external network dependency: everything
// else in the pipeline is pure and local. One Client is constructed per
// review run and reused for every file, chunk, and summary call.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
	Provider() Provider
	Model() string
}

// New creates the client for the given provider. The API key must already
// be resolved by the caller (config file first, then the provider's
// environment variable); an empty key fails with MissingCredentialError
// before any review work starts.
func New(ctx context.Context, p Provider, model, apiKey string) (Client, error) {
	if apiKey == "" {
		return nil, &MissingCredentialError{Provider: p}
	}
	switch p {
	case ProviderGoogle:
		return NewGemini(ctx, model, apiKey)
	default:
		return NewOpenAI(model, apiKey), nil
	}
}
