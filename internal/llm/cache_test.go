package llm

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

type countingClient struct {
	calls atomic.Int64
	reply string
	err   error
}

func (c *countingClient) Generate(_ context.Context, _ string, _ GenConfig) (string, error) {
	c.calls.Add(1)
	return c.reply, c.err
}

func TestCachedClientServesRepeatsFromCache(t *testing.T) {
	inner := &countingClient{reply: "xin chào"}
	client := NewCachedClient(inner, rate.Inf, 1)

	for i := 0; i < 3; i++ {
		got, err := client.Generate(context.Background(), "hello", GenConfig{})
		if err != nil {
			t.Fatal(err)
		}
		if got != "xin chào" {
			t.Fatalf("reply = %q", got)
		}
	}

	if n := inner.calls.Load(); n != 1 {
		t.Errorf("upstream called %d times, want 1", n)
	}
}

func TestCachedClientCacheHitBypassesLimiter(t *testing.T) {
	inner := &countingClient{reply: "ok"}
	// burst of one: only a single upstream call is ever allowed
	client := NewCachedClient(inner, rate.Every(time.Hour), 1)

	if _, err := client.Generate(context.Background(), "same prompt", GenConfig{}); err != nil {
		t.Fatal(err)
	}

	// an identical prompt must return instantly despite the drained limiter
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if _, err := client.Generate(ctx, "same prompt", GenConfig{}); err != nil {
		t.Fatalf("cache hit blocked on limiter: %v", err)
	}
}

func TestCachedClientDistinguishesConfigs(t *testing.T) {
	inner := &countingClient{reply: "ok"}
	client := NewCachedClient(inner, rate.Inf, 1)

	client.Generate(context.Background(), "prompt", GenConfig{Temperature: 0.2})
	client.Generate(context.Background(), "prompt", GenConfig{Temperature: 0.9})

	if n := inner.calls.Load(); n != 2 {
		t.Errorf("upstream called %d times, want 2 for distinct configs", n)
	}
}

func TestCachedClientDoesNotCacheErrors(t *testing.T) {
	inner := &countingClient{err: errors.New("upstream down")}
	client := NewCachedClient(inner, rate.Inf, 1)

	for i := 0; i < 2; i++ {
		if _, err := client.Generate(context.Background(), "prompt", GenConfig{}); err == nil {
			t.Fatal("expected error")
		}
	}

	if n := inner.calls.Load(); n != 2 {
		t.Errorf("upstream called %d times, want 2 (errors must not be cached)", n)
	}
}
