// Package llm defines the provider-agnostic chat interface used by the
// extraction and form population components. Providers live under
// pkg/ai/llm/providers and adapt vendor SDKs to this interface.
package llm

import "context"

// Client is the interface implemented by every chat provider
type Client interface {
	// Chat sends a conversation to the model and returns its reply
	Chat(ctx context.Context, messages []Message, opts ...Option) (Response, error)
}

// Response represents a chat completion response
type Response struct {
	Message      Message `json:"message"`
	Usage        Usage   `json:"usage"`
	Model        string  `json:"model,omitempty"`
	FinishReason string  `json:"finish_reason,omitempty"`
}

// ChatOptions holds the tunable parameters for a chat request
type ChatOptions struct {
	Model          string
	Temperature    float32
	TopP           float32
	MaxTokens      int
	Stop           []string
	ResponseFormat *ResponseFormat
}

// Option configures a chat request
type Option func(*ChatOptions)

// DefaultOptions returns chat options with conservative defaults. Providers
// fill in their own default model when Model is left empty.
func DefaultOptions() *ChatOptions {
	return &ChatOptions{
		Temperature: 0.7,
		MaxTokens:   2048,
	}
}

// WithModel sets the model identifier
func WithModel(model string) Option {
	return func(o *ChatOptions) {
		o.Model = model
	}
}

// WithTemperature sets the sampling temperature
func WithTemperature(temperature float32) Option {
	return func(o *ChatOptions) {
		o.Temperature = temperature
	}
}

// WithTopP sets the nucleus sampling parameter
func WithTopP(topP float32) Option {
	return func(o *ChatOptions) {
		o.TopP = topP
	}
}

// WithMaxTokens sets the maximum number of tokens to generate
func WithMaxTokens(maxTokens int) Option {
	return func(o *ChatOptions) {
		o.MaxTokens = maxTokens
	}
}

// WithStop sets stop sequences that end generation
func WithStop(stop []string) Option {
	return func(o *ChatOptions) {
		o.Stop = stop
	}
}
