package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

const (
	responseTTL   = 5 * time.Minute
	cacheSweep    = 10 * time.Minute
	maxCacheItems = 1000

	// oversized prompts or replies are not worth caching
	maxCacheablePrompt   = 4 << 10
	maxCacheableResponse = 16 << 10
)

// CachedClient wraps a Client with a read-through response cache and an
// outbound rate limiter. A cache hit bypasses the limiter entirely:
// identical repeated questions must stay cheap even when the upstream
// budget is exhausted.
type CachedClient struct {
	inner   Client
	cache   *cache.Cache
	limiter *rate.Limiter
}

// NewCachedClient wraps inner with caching and the given outbound rate.
func NewCachedClient(inner Client, limit rate.Limit, burst int) *CachedClient {
	return &CachedClient{
		inner:   inner,
		cache:   cache.New(responseTTL, cacheSweep),
		limiter: rate.NewLimiter(limit, burst),
	}
}

func cacheKey(prompt string, cfg GenConfig) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%.2f|%d", prompt, cfg.Temperature, cfg.MaxTokens)))
	return hex.EncodeToString(sum[:])
}

// Generate serves from cache when possible; otherwise waits for the
// limiter and delegates. Only successful responses are cached.
func (c *CachedClient) Generate(ctx context.Context, prompt string, cfg GenConfig) (string, error) {
	key := cacheKey(prompt, cfg)
	if v, ok := c.cache.Get(key); ok {
		return v.(string), nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("llm rate limit: %w", err)
	}

	text, err := c.inner.Generate(ctx, prompt, cfg)
	if err != nil {
		return "", err
	}

	if len(prompt) <= maxCacheablePrompt && len(text) <= maxCacheableResponse &&
		c.cache.ItemCount() < maxCacheItems {
		c.cache.SetDefault(key, text)
	}
	return text, nil
}
