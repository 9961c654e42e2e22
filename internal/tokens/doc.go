// Package tokens estimates how many model tokens a piece of text will
// consume and knows each supported model's context window.
//
// OpenAI models count with a byte-pair encoding shared across the model
// family. Google models ask the API for an exact count when a credential is
// available and fall back to a characters/4 heuristic otherwise; callers can
// inspect [Estimator.Fallback] to widen their safety margin when the
// heuristic is in play.
package tokens
