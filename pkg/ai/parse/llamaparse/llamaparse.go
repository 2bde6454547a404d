// Package llamaparse implements parse.DocumentParser against the LlamaParse
// cloud API: upload the document, poll the job until it settles, then fetch
// the markdown result.
package llamaparse

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Nawaf-TBE/Pillbot/pkg/ai/parse"
	"github.com/Nawaf-TBE/Pillbot/pkg/asyncx"
	"github.com/Nawaf-TBE/Pillbot/pkg/errx"
	"github.com/Nawaf-TBE/Pillbot/pkg/logx"
)

const (
	DefaultBaseURL         = "https://api.cloud.llamaindex.ai/api/parsing"
	DefaultPollInterval    = 5 * time.Second
	DefaultMaxPollAttempts = 60

	// How many times a single status poll may fail before the job is
	// abandoned. A dropped connection mid-poll should not kill a job the
	// API is still running.
	statusRetryAttempts = 3
)

// Job status values returned by the API
const (
	jobStatusSuccess = "SUCCESS"
	jobStatusPending = "PENDING"
	jobStatusError   = "ERROR"
)

// LlamaParseProvider implements parse.DocumentParser
type LlamaParseProvider struct {
	apiKey          string
	baseURL         string
	httpClient      *http.Client
	pollInterval    time.Duration
	maxPollAttempts int
}

// ProviderOption configures the LlamaParse provider
type ProviderOption func(*LlamaParseProvider)

// WithBaseURL sets a custom base URL
func WithBaseURL(url string) ProviderOption {
	return func(p *LlamaParseProvider) {
		p.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) ProviderOption {
	return func(p *LlamaParseProvider) {
		p.httpClient = client
	}
}

// WithPollInterval sets the delay between job status polls
func WithPollInterval(interval time.Duration) ProviderOption {
	return func(p *LlamaParseProvider) {
		p.pollInterval = interval
	}
}

// WithMaxPollAttempts sets how many times to poll before giving up
func WithMaxPollAttempts(attempts int) ProviderOption {
	return func(p *LlamaParseProvider) {
		p.maxPollAttempts = attempts
	}
}

// NewLlamaParseProvider creates a new LlamaParse provider
func NewLlamaParseProvider(apiKey string, opts ...ProviderOption) (*LlamaParseProvider, error) {
	if apiKey == "" {
		apiKey = os.Getenv("LLAMAPARSE_API_KEY")
	}

	if apiKey == "" {
		return nil, errorRegistry.New(ErrMissingAPIKey)
	}

	p := &LlamaParseProvider{
		apiKey:          apiKey,
		baseURL:         DefaultBaseURL,
		httpClient:      &http.Client{Timeout: 2 * time.Minute},
		pollInterval:    DefaultPollInterval,
		maxPollAttempts: DefaultMaxPollAttempts,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// ============================================================================
// DocumentParser Implementation
// ============================================================================

// ParseDocument uploads the document, waits for the parse job to finish and
// returns the markdown result
func (p *LlamaParseProvider) ParseDocument(ctx context.Context, input parse.Input) (*parse.Result, error) {
	if len(input.Data) == 0 {
		return nil, errorRegistry.New(ErrInvalidInput).
			WithDetail("error", "document data cannot be empty")
	}

	jobID, err := p.upload(ctx, input)
	if err != nil {
		return nil, err
	}

	logx.WithField("job_id", jobID).Debug("LlamaParse job submitted")

	if err := p.waitForJob(ctx, jobID); err != nil {
		return nil, err
	}

	markdown, err := p.fetchMarkdown(ctx, jobID)
	if err != nil {
		return nil, err
	}

	markdown = strings.TrimSpace(markdown)

	return &parse.Result{
		Markdown: markdown,
		JobID:    jobID,
		Stats:    parse.AnalyzeMarkdown(markdown),
		Metadata: map[string]any{
			"provider": "llamaparse",
		},
	}, nil
}

// ============================================================================
// API Calls
// ============================================================================

type uploadResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type jobResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type markdownResponse struct {
	Markdown string `json:"markdown"`
}

func (p *LlamaParseProvider) upload(ctx context.Context, input parse.Input) (string, *errx.Error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	filename := input.Filename
	if filename == "" {
		filename = "document.pdf"
	}

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", WrapError(err, ErrUploadFailed).
			WithDetail("error", "failed to build multipart body")
	}
	if _, err := part.Write(input.Data); err != nil {
		return "", WrapError(err, ErrUploadFailed).
			WithDetail("error", "failed to write document data")
	}
	if err := writer.Close(); err != nil {
		return "", WrapError(err, ErrUploadFailed).
			WithDetail("error", "failed to finalize multipart body")
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/upload", &buf)
	if err != nil {
		return "", WrapError(err, ErrUploadFailed).
			WithDetail("error", "failed to create upload request")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	body, apiErr := p.do(req)
	if apiErr != nil {
		return "", apiErr
	}

	var resp uploadResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", WrapError(err, ErrAPIResponse).
			WithDetail("error", "failed to parse upload response")
	}
	if resp.ID == "" {
		return "", errorRegistry.New(ErrAPIResponse).
			WithDetail("error", "upload response missing job id")
	}

	return resp.ID, nil
}

func (p *LlamaParseProvider) waitForJob(ctx context.Context, jobID string) *errx.Error {
	for attempt := 0; attempt < p.maxPollAttempts; attempt++ {
		select {
		case <-time.After(p.pollInterval):
		case <-ctx.Done():
			return WrapError(ctx.Err(), ErrAPIRequest).
				WithDetail("error", "context cancelled while polling job").
				WithDetail("job_id", jobID)
		}

		status, err := asyncx.Retry(ctx, statusRetryAttempts, func(ctx context.Context) (string, error) {
			s, statusErr := p.jobStatus(ctx, jobID)
			if statusErr != nil {
				return "", statusErr
			}
			return s, nil
		})
		if err != nil {
			var apiErr *errx.Error
			if errx.As(err, &apiErr) {
				return apiErr
			}
			return WrapError(err, ErrAPIRequest).
				WithDetail("error", "job status poll failed").
				WithDetail("job_id", jobID)
		}

		switch status {
		case jobStatusSuccess:
			return nil
		case jobStatusError:
			return errorRegistry.New(ErrJobFailed).
				WithDetail("job_id", jobID)
		}
	}

	return errorRegistry.New(ErrJobTimeout).
		WithDetail("job_id", jobID).
		WithDetail("attempts", p.maxPollAttempts)
}

func (p *LlamaParseProvider) jobStatus(ctx context.Context, jobID string) (string, *errx.Error) {
	req, err := http.NewRequestWithContext(ctx, "GET", p.baseURL+"/job/"+jobID, nil)
	if err != nil {
		return "", WrapError(err, ErrAPIRequest).
			WithDetail("error", "failed to create status request")
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	body, apiErr := p.do(req)
	if apiErr != nil {
		return "", apiErr
	}

	var resp jobResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", WrapError(err, ErrAPIResponse).
			WithDetail("error", "failed to parse job status response")
	}

	return resp.Status, nil
}

func (p *LlamaParseProvider) fetchMarkdown(ctx context.Context, jobID string) (string, *errx.Error) {
	req, err := http.NewRequestWithContext(ctx, "GET", p.baseURL+"/job/"+jobID+"/result/markdown", nil)
	if err != nil {
		return "", WrapError(err, ErrAPIRequest).
			WithDetail("error", "failed to create result request")
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	body, apiErr := p.do(req)
	if apiErr != nil {
		return "", apiErr
	}

	var resp markdownResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", WrapError(err, ErrAPIResponse).
			WithDetail("error", "failed to parse markdown result")
	}

	return resp.Markdown, nil
}

func (p *LlamaParseProvider) do(req *http.Request) ([]byte, *errx.Error) {
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, WrapError(err, ErrAPIRequest).
			WithDetail("error", "HTTP request failed").
			WithDetail("url", req.URL.String())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, WrapError(err, ErrAPIResponse).
			WithDetail("error", "failed to read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, ParseAPIError(resp.StatusCode, body)
	}

	return body, nil
}
