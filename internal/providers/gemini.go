package providers

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// Gemini implements Client on top of the google.golang.org/genai SDK.
// System and user prompts are sent as one combined content sequence, and
// the response MIME type is pinned to JSON so the model cannot drift into
// prose-wrapped output.
type Gemini struct {
	model  string
	client *genai.Client
}

// NewGemini creates a Gemini client with an explicit API key. Credential
// lookup happens in config, not here.
func NewGemini(ctx context.Context, model, apiKey string) (*Gemini, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Gemini{model: model, client: cli}, nil
}

func (g *Gemini) Provider() Provider { return ProviderGoogle }
func (g *Gemini) Model() string      { return g.model }

func (g *Gemini) Complete(ctx context.Context, req Request) (Response, error) {
	contents := []*genai.Content{
		{Parts: []*genai.Part{{Text: req.System}, {Text: req.User}}},
	}

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.Temperature > 0 {
		t := float32(req.Temperature)
		cfg.Temperature = &t
	}

	var resp Response
	err := retryWithBackoff(ctx, 3, func() error {
		result, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
		if err != nil {
			return classifyGenaiError(err)
		}
		if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
			return fmt.Errorf("no content in response")
		}

		var content string
		for _, part := range result.Candidates[0].Content.Parts {
			content += part.Text
		}

		resp = Response{Content: content}
		if result.UsageMetadata != nil {
			resp.TokensUsed = int(result.UsageMetadata.TotalTokenCount)
		}
		return nil
	})

	return resp, err
}

// CountTokens asks the API for the exact token count of text under this
// client's model. The token estimator uses it when a Google key is
// configured and falls back to a length heuristic otherwise.
func (g *Gemini) CountTokens(ctx context.Context, text string) (int, error) {
	var count int
	err := retryWithBackoff(ctx, 3, func() error {
		result, err := g.client.Models.CountTokens(ctx, g.model,
			[]*genai.Content{{Parts: []*genai.Part{{Text: text}}}}, nil)
		if err != nil {
			return classifyGenaiError(err)
		}
		count = int(result.TotalTokens)
		return nil
	})
	return count, err
}

func classifyGenaiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429:
			return &rateLimitError{retryable: true}
		case 401, 403:
			return &authError{message: apiErr.Message}
		}
	}
	return fmt.Errorf("gemini request: %w", err)
}
