// Package ocrmistral implements the ocr interfaces against the Mistral
// Document AI OCR API.
package ocrmistral

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/Nawaf-TBE/Pillbot/pkg/ai/ocr"
	"github.com/Nawaf-TBE/Pillbot/pkg/errx"
)

// ============================================================================
// OCR API Types
// ============================================================================

// OCRRequest represents a request to the Mistral OCR API
type OCRRequest struct {
	Model              string        `json:"model"`
	Document           DocumentInput `json:"document"`
	IncludeImageBase64 bool          `json:"include_image_base64,omitempty"`
	Pages              []int         `json:"pages,omitempty"`
}

// DocumentInput represents different ways to provide a document
type DocumentInput struct {
	Type        string `json:"type"` // "document_url" or "image_url"
	DocumentURL string `json:"document_url,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// OCRResponse represents the response from the Mistral OCR API
type OCRResponse struct {
	Pages     []PageData `json:"pages"`
	Model     string     `json:"model"`
	UsageInfo UsageInfo  `json:"usage_info"`
}

// PageData represents a single page in the OCR response
type PageData struct {
	Index      int            `json:"index"`
	Markdown   string         `json:"markdown"`
	Dimensions map[string]any `json:"dimensions"`
}

// UsageInfo represents API usage information
type UsageInfo struct {
	PagesProcessed int `json:"pages_processed"`
	DocSizeBytes   int `json:"doc_size_bytes"`
}

// ============================================================================
// Provider
// ============================================================================

// MistralProvider implements OCR capabilities for Mistral AI
type MistralProvider struct {
	apiKey       string
	baseURL      string
	httpClient   *http.Client
	client       *HTTPClient
	maxRetries   int
	defaultModel string
}

// NewMistralProvider creates a new Mistral OCR provider
func NewMistralProvider(apiKey string, opts ...ProviderOption) (*MistralProvider, error) {
	if apiKey == "" {
		apiKey = os.Getenv("MISTRAL_API_KEY")
	}

	if apiKey == "" {
		return nil, errorRegistry.New(ErrMissingAPIKey)
	}

	provider := &MistralProvider{
		apiKey:       apiKey,
		baseURL:      DefaultBaseURL,
		maxRetries:   MaxRetries,
		defaultModel: DefaultModel,
	}

	for _, opt := range opts {
		opt(provider)
	}

	provider.client = NewHTTPClient(provider.apiKey, provider.baseURL, provider.httpClient)
	provider.client.maxRetries = provider.maxRetries

	return provider, nil
}

// ============================================================================
// TextRecognizer Implementation
// ============================================================================

// RecognizeText implements the core OCR functionality
func (m *MistralProvider) RecognizeText(ctx context.Context, input ocr.Input, opts ...ocr.Option) (*ocr.Result, error) {
	options := ocr.ApplyOptions(opts...)

	if options.Model == "" {
		options.Model = m.defaultModel
	}

	if err := m.validateInput(input); err != nil {
		return nil, err
	}

	req := m.buildOCRRequest(input, options)

	respBody, err := m.client.Post(ctx, "/ocr", req)
	if err != nil {
		return nil, err
	}

	var resp OCRResponse
	if parseErr := json.Unmarshal(respBody, &resp); parseErr != nil {
		return nil, WrapError(parseErr, ErrAPIResponse).
			WithDetail("error", "failed to parse OCR response")
	}

	return m.convertToResult(&resp), nil
}

// RecognizeURL is a convenience method for URL inputs
func (m *MistralProvider) RecognizeURL(ctx context.Context, url string, opts ...ocr.Option) (*ocr.Result, error) {
	return m.RecognizeText(ctx, ocr.FromURL(url), opts...)
}

// ConvertToMarkdown implements MarkdownConverter
func (m *MistralProvider) ConvertToMarkdown(ctx context.Context, input ocr.Input, opts ...ocr.Option) (string, error) {
	result, err := m.RecognizeText(ctx, input, opts...)
	if err != nil {
		return "", err
	}
	return result.Markdown(), nil
}

// ============================================================================
// Request Building
// ============================================================================

func (m *MistralProvider) buildOCRRequest(input ocr.Input, options *ocr.Options) *OCRRequest {
	req := &OCRRequest{
		Model:    options.Model,
		Document: m.convertInputToDocument(input),
	}

	req.IncludeImageBase64 = options.IncludeImageBase64
	if len(options.Pages) > 0 {
		req.Pages = options.Pages
	}

	return req
}

func (m *MistralProvider) convertInputToDocument(input ocr.Input) DocumentInput {
	switch input.Type {
	case ocr.InputTypeURL, ocr.InputTypeDocumentURL:
		return DocumentInput{
			Type:        "document_url",
			DocumentURL: input.URL,
		}
	case ocr.InputTypeImageURL:
		return DocumentInput{
			Type:     "image_url",
			ImageURL: input.URL,
		}
	case ocr.InputTypeBase64:
		mimeType := input.MimeType
		if mimeType == "" {
			mimeType = "application/pdf"
		}
		encoded := base64.StdEncoding.EncodeToString(input.Data)
		dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, encoded)
		return DocumentInput{
			Type:        "document_url",
			DocumentURL: dataURL,
		}
	default:
		return DocumentInput{
			Type:        "document_url",
			DocumentURL: input.URL,
		}
	}
}

// ============================================================================
// Response Conversion
// ============================================================================

func (m *MistralProvider) convertToResult(resp *OCRResponse) *ocr.Result {
	var fullText strings.Builder
	pages := make([]ocr.Page, len(resp.Pages))

	for i, mistralPage := range resp.Pages {
		pages[i] = ocr.Page{
			Number:     mistralPage.Index,
			Text:       mistralPage.Markdown,
			Markdown:   mistralPage.Markdown,
			Dimensions: m.convertDimensions(mistralPage.Dimensions),
		}

		fullText.WriteString(mistralPage.Markdown)
		fullText.WriteString("\n\n")
	}

	return ocr.NewResultBuilder().
		WithText(fullText.String()).
		WithPages(pages).
		WithMarkdown(fullText.String()).
		WithUsage(ocr.Usage{
			PagesProcessed: resp.UsageInfo.PagesProcessed,
			ProviderData: map[string]any{
				"doc_size_bytes": resp.UsageInfo.DocSizeBytes,
			},
		}).
		WithMetadata("model", resp.Model).
		Build()
}

func (m *MistralProvider) convertDimensions(dims map[string]any) ocr.Dimensions {
	return ocr.Dimensions{
		Width:  getFloat32(dims, "width"),
		Height: getFloat32(dims, "height"),
		Unit:   "px",
	}
}

func (m *MistralProvider) validateInput(input ocr.Input) *errx.Error {
	switch input.Type {
	case ocr.InputTypeReader:
		return errorRegistry.New(ErrInvalidInput).
			WithDetail("error", "io.Reader input not directly supported, use base64 encoding")
	case ocr.InputTypeURL, ocr.InputTypeDocumentURL, ocr.InputTypeImageURL:
		if input.URL == "" {
			return errorRegistry.New(ErrInvalidInput).
				WithDetail("error", "URL cannot be empty")
		}
	case ocr.InputTypeBase64:
		if len(input.Data) == 0 {
			return errorRegistry.New(ErrInvalidInput).
				WithDetail("error", "base64 data cannot be empty")
		}
		// 50MB API limit
		if len(input.Data) > 50*1024*1024 {
			return errorRegistry.New(ErrDocumentTooLarge)
		}
	default:
		return errorRegistry.New(ErrInvalidInput).
			WithDetail("error", "unsupported input type").
			WithDetail("type", string(input.Type))
	}

	return nil
}

func getFloat32(m map[string]interface{}, key string) float32 {
	if v, ok := m[key]; ok {
		if f, ok := v.(float64); ok {
			return float32(f)
		}
	}
	return 0
}
