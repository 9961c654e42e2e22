// Package providers implements the Client interface for each supported LLM
// backend.
//
// Supported backends: OpenAI (chat completions) and Google (Gemini via the
// genai SDK). The backend is resolved once from the model name with
// [Resolve]; a "gemini-" prefix selects Google and everything else selects
// OpenAI.
//
// Both clients share a retry helper with exponential back-off for rate
// limits and transient server errors. Auth failures never retry. The OpenAI
// client's base URL can be overridden so tests run against local httptest
// servers instead of the live API.
//
// Use [New] to obtain a Client for a resolved provider, model, and API key.
package providers
