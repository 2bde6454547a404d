package ocrmistral

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/Nawaf-TBE/Pillbot/pkg/asyncx"
	"github.com/Nawaf-TBE/Pillbot/pkg/errx"
)

const (
	DefaultBaseURL = "https://api.mistral.ai/v1"
	DefaultTimeout = 5 * time.Minute // OCR can take a while
	MaxRetries     = 3
	DefaultModel   = "mistral-ocr-latest"
)

// HTTPClient handles all HTTP communication with the Mistral API
type HTTPClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	maxRetries int
}

// NewHTTPClient creates a new HTTP client for the Mistral API
func NewHTTPClient(apiKey, baseURL string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: DefaultTimeout,
		}
	}

	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &HTTPClient{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		maxRetries: MaxRetries,
	}
}

// Post makes a POST request to the Mistral API
func (c *HTTPClient) Post(ctx context.Context, endpoint string, payload any) ([]byte, *errx.Error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, WrapError(err, ErrInvalidInput).
			WithDetail("error", "failed to marshal request payload")
	}

	// Cancelling the retry context is how the closure signals a
	// non-retryable error to RetryWithBackoff.
	retryCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var lastErr *errx.Error

	body, retryErr := asyncx.RetryWithBackoff(retryCtx, c.maxRetries+1, time.Second,
		func(reqCtx context.Context) ([]byte, error) {
			respBody, reqErr := c.doRequest(reqCtx, endpoint, jsonData)
			if reqErr == nil {
				return respBody, nil
			}
			lastErr = reqErr
			if !c.shouldRetry(reqErr) {
				cancel()
			}
			return nil, reqErr
		})
	if retryErr == nil {
		return body, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, WrapError(ctxErr, ErrAPIRequest).
			WithDetail("error", "context cancelled during retry")
	}

	return nil, lastErr
}

// doRequest performs the actual HTTP request
func (c *HTTPClient) doRequest(ctx context.Context, endpoint string, body []byte) ([]byte, *errx.Error) {
	url := c.baseURL + endpoint

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, WrapError(err, ErrAPIRequest).
			WithDetail("error", "failed to create HTTP request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", "pillbot-ocr/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, WrapError(err, ErrAPIRequest).
			WithDetail("error", "HTTP request failed").
			WithDetail("url", url)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, WrapError(err, ErrAPIResponse).
			WithDetail("error", "failed to read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, ParseAPIError(resp.StatusCode, respBody)
	}

	return respBody, nil
}

// shouldRetry determines if an error is retryable
func (c *HTTPClient) shouldRetry(err *errx.Error) bool {
	// Retry on rate limits and temporary failures
	if err.Code == ErrAPIRateLimit.Code {
		return true
	}

	// Don't retry on validation errors or auth errors
	if err.Type == errx.TypeValidation || err.Type == errx.TypeAuthorization {
		return false
	}

	// Retry on 5xx errors
	if statusCode, ok := err.Details["status_code"].(int); ok {
		return statusCode >= 500 && statusCode < 600
	}

	return false
}
