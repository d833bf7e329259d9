package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(serverURL string) *GeminiClient {
	client := NewGeminiClient("test-key", "")
	client.baseURL = serverURL
	client.baseDelay = time.Millisecond
	return client
}

func TestGenerateParsesCandidate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":generateContent") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"chào bạn"}]}}]}`))
	}))
	defer server.Close()

	got, err := newTestClient(server.URL).Generate(context.Background(), "hi", GenConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if got != "chào bạn" {
		t.Errorf("Generate = %q", got)
	}
}

func TestGenerateRetriesTransientFailures(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
	}))
	defer server.Close()

	got, err := newTestClient(server.URL).Generate(context.Background(), "hi", GenConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if got != "ok" {
		t.Errorf("Generate = %q", got)
	}
	if n := requests.Load(); n != 3 {
		t.Errorf("requests = %d, want 3", n)
	}
}

func TestGenerateDoesNotRetryClientErrors(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"bad request"}}`))
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL).Generate(context.Background(), "hi", GenConfig{}); err == nil {
		t.Fatal("expected error")
	}
	if n := requests.Load(); n != 1 {
		t.Errorf("requests = %d, want 1 (4xx is not retryable)", n)
	}
}

func TestGenerateGivesUpAfterMaxAttempts(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL).Generate(context.Background(), "hi", GenConfig{}); err == nil {
		t.Fatal("expected error")
	}
	if n := requests.Load(); n != int64(maxAttempts) {
		t.Errorf("requests = %d, want %d", n, maxAttempts)
	}
}
