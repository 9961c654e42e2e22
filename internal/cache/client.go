package cache

import (
	"context"

	"github.com/gavelhq/gavel/internal/providers"
)

// Wrap returns a Client that consults the store before issuing network
// calls. With a nil or disabled store the original client is returned
// unchanged.
func Wrap(client providers.Client, store *Cache) providers.Client {
	if store == nil || !store.Enabled() {
		return client
	}
	return &cachingClient{inner: client, store: store}
}

type cachingClient struct {
	inner providers.Client
	store *Cache
}

func (c *cachingClient) Complete(ctx context.Context, req providers.Request) (providers.Response, error) {
	key := BuildKey(c.inner.Provider().String(), c.inner.Model(), req.System+"\n\n"+req.User)
	if cached, ok := c.store.Get(key); ok {
		return providers.Response{Content: cached}, nil
	}
	resp, err := c.inner.Complete(ctx, req)
	if err != nil {
		return resp, err
	}
	// A failed cache write never fails the review.
	_ = c.store.Put(key, resp.Content)
	return resp, nil
}

func (c *cachingClient) Provider() providers.Provider {
	return c.inner.Provider()
}

func (c *cachingClient) Model() string {
	return c.inner.Model()
}
