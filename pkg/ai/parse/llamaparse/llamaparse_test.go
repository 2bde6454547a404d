package llamaparse_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Nawaf-TBE/Pillbot/pkg/ai/parse"
	"github.com/Nawaf-TBE/Pillbot/pkg/ai/parse/llamaparse"
)

func newJobServer(t *testing.T, statusHandler http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parsing upload form: %v", err)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("upload missing file part: %v", err)
		}
		w.Write([]byte(`{"id":"job-123","status":"PENDING"}`))
	})
	mux.HandleFunc("/job/job-123", statusHandler)
	mux.HandleFunc("/job/job-123/result/markdown", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"markdown":"# Referral\n\n| field | value |"}`))
	})
	return httptest.NewServer(mux)
}

func TestParseDocument_UploadPollFetch(t *testing.T) {
	server := newJobServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"job-123","status":"SUCCESS"}`))
	})
	defer server.Close()

	provider, err := llamaparse.NewLlamaParseProvider("test-key",
		llamaparse.WithBaseURL(server.URL),
		llamaparse.WithPollInterval(time.Millisecond),
	)
	if err != nil {
		t.Fatalf("NewLlamaParseProvider: %v", err)
	}

	result, err := provider.ParseDocument(context.Background(), parse.FromBytes([]byte("doc"), "referral.pdf"))
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if result.JobID != "job-123" {
		t.Fatalf("job id = %q, want job-123", result.JobID)
	}
	if !strings.HasPrefix(result.Markdown, "# Referral") {
		t.Fatalf("markdown = %q, want fetched result", result.Markdown)
	}
	if !result.Stats.HasTables || result.Stats.HeaderCount != 1 {
		t.Fatalf("unexpected stats %+v", result.Stats)
	}
}

func TestParseDocument_StatusPollSurvivesTransientFailure(t *testing.T) {
	var polls atomic.Int32
	server := newJobServer(t, func(w http.ResponseWriter, r *http.Request) {
		if polls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"id":"job-123","status":"SUCCESS"}`))
	})
	defer server.Close()

	provider, err := llamaparse.NewLlamaParseProvider("test-key",
		llamaparse.WithBaseURL(server.URL),
		llamaparse.WithPollInterval(time.Millisecond),
	)
	if err != nil {
		t.Fatalf("NewLlamaParseProvider: %v", err)
	}

	result, err := provider.ParseDocument(context.Background(), parse.FromBytes([]byte("doc"), "referral.pdf"))
	if err != nil {
		t.Fatalf("ParseDocument after transient poll failure: %v", err)
	}
	if result.Markdown == "" {
		t.Fatal("expected markdown despite one failed status poll")
	}
	if got := polls.Load(); got != 2 {
		t.Fatalf("server saw %d status polls, want 2", got)
	}
}

func TestParseDocument_JobError(t *testing.T) {
	server := newJobServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"job-123","status":"ERROR","error":"parse failed"}`))
	})
	defer server.Close()

	provider, err := llamaparse.NewLlamaParseProvider("test-key",
		llamaparse.WithBaseURL(server.URL),
		llamaparse.WithPollInterval(time.Millisecond),
	)
	if err != nil {
		t.Fatalf("NewLlamaParseProvider: %v", err)
	}

	if _, err := provider.ParseDocument(context.Background(), parse.FromBytes([]byte("doc"), "referral.pdf")); err == nil {
		t.Fatal("expected error for failed job")
	}
}

func TestParseDocument_EmptyInput(t *testing.T) {
	provider, err := llamaparse.NewLlamaParseProvider("test-key")
	if err != nil {
		t.Fatalf("NewLlamaParseProvider: %v", err)
	}
	if _, err := provider.ParseDocument(context.Background(), parse.Input{}); err == nil {
		t.Fatal("expected error for empty document")
	}
}
