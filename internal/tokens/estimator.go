package tokens

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkoukk/tiktoken-go"

	"github.com/gavelhq/gavel/internal/providers"
)

// bpeEncoding is the encoding profile used for every OpenAI-family model.
// Chunking needs a stable threshold, not per-model billing accuracy.
const bpeEncoding = "cl100k_base"

// apiCountCacheSize bounds the cache of API-backed token counts. Exact
// counts are network calls, so repeated text must not re-suspend.
const apiCountCacheSize = 512

// Counter is the provider-side exact token counting endpoint. Implemented
// by the Gemini client.
type Counter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}

// Estimator produces token counts for one provider/model pair. Construct it
// once per run; the tokenizer and count cache are reused across every call,
// which matters because the chunk splitter counts once per line.
type Estimator struct {
	provider providers.Provider
	bpe      *tiktoken.Tiktoken
	counter  Counter
	cache    *lru.Cache[string, int]
	fallback bool
}

// NewEstimator builds the estimator for a provider. For Google, counter may
// be nil when no credential is configured; counting then degrades to the
// characters/4 heuristic and Fallback reports true.
func NewEstimator(p providers.Provider, counter Counter) (*Estimator, error) {
	e := &Estimator{provider: p, counter: counter}

	switch p {
	case providers.ProviderGoogle:
		if counter == nil {
			e.fallback = true
			return e, nil
		}
		cache, err := lru.New[string, int](apiCountCacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating count cache: %w", err)
		}
		e.cache = cache
	default:
		enc, err := tiktoken.GetEncoding(bpeEncoding)
		if err != nil {
			return nil, fmt.Errorf("loading %s encoding: %w", bpeEncoding, err)
		}
		e.bpe = enc
	}
	return e, nil
}

// Count estimates the token count of text. It never fails the run: when the
// exact counting endpoint errors, the heuristic answer is returned and the
// error is logged.
func (e *Estimator) Count(ctx context.Context, text string) (int, error) {
	if e.bpe != nil {
		return len(e.bpe.Encode(text, nil, nil)), nil
	}
	if e.counter != nil {
		key := hashKey(text)
		if n, ok := e.cache.Get(key); ok {
			return n, nil
		}
		n, err := e.counter.CountTokens(ctx, text)
		if err != nil {
			log.Printf("token count API failed, using heuristic: %v", err)
			return heuristicCount(text), nil
		}
		e.cache.Add(key, n)
		return n, nil
	}
	return heuristicCount(text), nil
}

// Fallback reports whether counts come from the characters/4 heuristic
// rather than an exact tokenizer or counting endpoint. Callers chunking
// near the context window should leave extra headroom when this is true.
func (e *Estimator) Fallback() bool {
	return e.fallback
}

func heuristicCount(text string) int {
	return (len(text) + 3) / 4
}

func hashKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
