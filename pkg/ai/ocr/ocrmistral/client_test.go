package ocrmistral_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/Nawaf-TBE/Pillbot/pkg/ai/ocr"
	"github.com/Nawaf-TBE/Pillbot/pkg/ai/ocr/ocrmistral"
)

// ============================================================================
// Retry Behavior
// ============================================================================

func TestRecognizeText_RetriesServerErrors(t *testing.T) {
	var requests atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"message":"upstream hiccup"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"pages":[{"index":0,"markdown":"recovered"}],"model":"mistral-ocr-latest","usage_info":{"pages_processed":1}}`))
	}))
	defer server.Close()

	provider, err := ocrmistral.NewMistralProvider("test-key",
		ocrmistral.WithBaseURL(server.URL),
		ocrmistral.WithMaxRetries(2),
	)
	if err != nil {
		t.Fatalf("NewMistralProvider: %v", err)
	}

	result, err := provider.RecognizeText(context.Background(), ocr.FromBase64([]byte("doc"), "application/pdf"))
	if err != nil {
		t.Fatalf("RecognizeText: %v", err)
	}
	if result.Markdown() == "" {
		t.Fatal("expected markdown from recovered response")
	}
	if got := requests.Load(); got != 2 {
		t.Fatalf("server saw %d requests, want 2 (one failure, one retry)", got)
	}
}

func TestRecognizeText_DoesNotRetryAuthErrors(t *testing.T) {
	var requests atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid api key"}`))
	}))
	defer server.Close()

	provider, err := ocrmistral.NewMistralProvider("bad-key",
		ocrmistral.WithBaseURL(server.URL),
		ocrmistral.WithMaxRetries(3),
	)
	if err != nil {
		t.Fatalf("NewMistralProvider: %v", err)
	}

	if _, err := provider.RecognizeText(context.Background(), ocr.FromBase64([]byte("doc"), "application/pdf")); err == nil {
		t.Fatal("expected an error for unauthorized response")
	}
	if got := requests.Load(); got != 1 {
		t.Fatalf("server saw %d requests, want 1 (auth errors are not retried)", got)
	}
}
