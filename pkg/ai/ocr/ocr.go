// Package ocr defines the provider-agnostic OCR interfaces used by the
// document pipeline. Providers live in subdirectories and adapt vendor
// APIs to these interfaces.
package ocr

import (
	"context"
	"io"
)

// ============================================================================
// Core Capabilities
// ============================================================================

// TextRecognizer is the minimal OCR interface - all providers must implement this
type TextRecognizer interface {
	RecognizeText(ctx context.Context, input Input, opts ...Option) (*Result, error)
}

// MarkdownConverter converts documents to markdown preserving structure
type MarkdownConverter interface {
	ConvertToMarkdown(ctx context.Context, input Input, opts ...Option) (string, error)
}

// ============================================================================
// Input Abstraction
// ============================================================================

// Input represents various input sources
type Input struct {
	// Source type
	Type InputType

	// Data based on type
	Reader io.Reader // For file uploads
	URL    string    // For URLs
	Data   []byte    // Raw document bytes; providers encode as needed
	Path   string    // For local file paths

	// Metadata
	MimeType string
	Metadata map[string]any
}

type InputType string

const (
	InputTypeReader      InputType = "reader"
	InputTypeURL         InputType = "url"
	InputTypeImageURL    InputType = "image_url"
	InputTypeDocumentURL InputType = "document_url"
	InputTypeBase64      InputType = "base64"
	InputTypePath        InputType = "path"
)

// Input builders for convenience
func FromReader(r io.Reader, mimeType string) Input {
	return Input{Type: InputTypeReader, Reader: r, MimeType: mimeType}
}

func FromURL(url string) Input {
	return Input{Type: InputTypeURL, URL: url}
}

// FromBase64 takes raw document bytes; the provider handles the encoding.
func FromBase64(data []byte, mimeType string) Input {
	return Input{Type: InputTypeBase64, Data: data, MimeType: mimeType}
}

func FromPath(path string, mimeType string) Input {
	return Input{Type: InputTypePath, Path: path, MimeType: mimeType}
}

// ============================================================================
// Result Model
// ============================================================================

// Result is the unified OCR result
type Result struct {
	id       string
	text     string
	pages    []Page
	markdown string
	usage    Usage
	metadata map[string]any
}

// Getters (immutable access)
func (r *Result) ID() string               { return r.id }
func (r *Result) Text() string             { return r.text }
func (r *Result) Pages() []Page            { return r.pages }
func (r *Result) Markdown() string         { return r.markdown }
func (r *Result) Usage() Usage             { return r.usage }
func (r *Result) Metadata() map[string]any { return r.metadata }

func (r *Result) HasMarkdown() bool { return r.markdown != "" }

// ============================================================================
// Result Builder
// ============================================================================

// ResultBuilder constructs Results with a fluent API
type ResultBuilder struct {
	result Result
}

func NewResultBuilder() *ResultBuilder {
	return &ResultBuilder{
		result: Result{
			metadata: make(map[string]any),
		},
	}
}

func (b *ResultBuilder) WithID(id string) *ResultBuilder {
	b.result.id = id
	return b
}

func (b *ResultBuilder) WithText(text string) *ResultBuilder {
	b.result.text = text
	return b
}

func (b *ResultBuilder) WithPages(pages []Page) *ResultBuilder {
	b.result.pages = pages
	return b
}

func (b *ResultBuilder) WithMarkdown(markdown string) *ResultBuilder {
	b.result.markdown = markdown
	return b
}

func (b *ResultBuilder) WithUsage(usage Usage) *ResultBuilder {
	b.result.usage = usage
	return b
}

func (b *ResultBuilder) WithMetadata(key string, value any) *ResultBuilder {
	b.result.metadata[key] = value
	return b
}

func (b *ResultBuilder) Build() *Result {
	return &b.result
}

// ============================================================================
// Core Data Models
// ============================================================================

// Page represents a single page of OCR output
type Page struct {
	Number     int
	Text       string
	Markdown   string
	Dimensions Dimensions
	Metadata   map[string]any
}

// Dimensions represents page dimensions
type Dimensions struct {
	Width  float32
	Height float32
	Unit   string // "px", "pt", "in"
}

// Usage represents processing usage
type Usage struct {
	PagesProcessed int
	ProcessingTime int // milliseconds
	ProviderData   map[string]any
}
