package llmgemini

import (
	"context"
	"os"

	"github.com/Nawaf-TBE/Pillbot/pkg/ai/llm"
	"google.golang.org/genai"
)

// ProviderOption configures the Gemini provider
type ProviderOption func(*GeminiProvider)

// WithDefaultModel sets the model used when a request does not name one
func WithDefaultModel(model string) ProviderOption {
	return func(p *GeminiProvider) {
		p.defaultModel = model
	}
}

// GeminiProvider implements the llm.Client interface for Google Gemini
type GeminiProvider struct {
	client       *genai.Client
	apiKey       string
	defaultModel string
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(ctx context.Context, apiKey string, opts ...ProviderOption) (*GeminiProvider, error) {
	p := &GeminiProvider{
		apiKey:       apiKey,
		defaultModel: "gemini-2.0-flash",
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.apiKey == "" {
		p.apiKey = os.Getenv("GEMINI_API_KEY")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, WrapError(err, ErrMissingAPIKey).
			WithDetail("error", "failed to create Gemini client")
	}

	p.client = client
	return p, nil
}

// ============================================================================
// Chat Implementation
// ============================================================================

// Chat implements the llm.Client interface
func (p *GeminiProvider) Chat(ctx context.Context, messages []llm.Message, opts ...llm.Option) (llm.Response, error) {
	if len(messages) == 0 {
		return llm.Response{}, errorRegistry.New(ErrEmptyMessages)
	}

	options := llm.DefaultOptions()
	options.Model = p.defaultModel
	for _, opt := range opts {
		opt(options)
	}

	// Gemini takes the system prompt outside the conversation turns
	systemContent, contents := convertMessages(messages)

	config := buildGenerateConfig(options, systemContent)

	result, err := p.client.Models.GenerateContent(ctx, options.Model, contents, config)
	if err != nil {
		return llm.Response{}, ParseGeminiError(err).
			WithDetail("model", options.Model).
			WithDetail("num_messages", len(messages))
	}

	response, err := convertFromGeminiResponse(result)
	if err != nil {
		return llm.Response{}, err
	}
	response.Model = options.Model
	return response, nil
}

// ============================================================================
// Conversion Helpers
// ============================================================================

func convertMessages(messages []llm.Message) (*genai.Content, []*genai.Content) {
	var systemContent *genai.Content
	var contents []*genai.Content

	for _, msg := range messages {
		switch msg.Role {
		case llm.RoleSystem:
			systemContent = &genai.Content{
				Parts: []*genai.Part{genai.NewPartFromText(msg.Content)},
			}
		case llm.RoleUser:
			contents = append(contents, &genai.Content{
				Role:  "user",
				Parts: []*genai.Part{genai.NewPartFromText(msg.Content)},
			})
		case llm.RoleAssistant:
			contents = append(contents, &genai.Content{
				Role:  "model",
				Parts: []*genai.Part{genai.NewPartFromText(msg.Content)},
			})
		}
	}

	return systemContent, contents
}

func buildGenerateConfig(options *llm.ChatOptions, systemContent *genai.Content) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		SystemInstruction: systemContent,
		Temperature:       genai.Ptr(options.Temperature),
	}

	if options.TopP > 0 {
		config.TopP = genai.Ptr(options.TopP)
	}
	if options.MaxTokens > 0 {
		config.MaxOutputTokens = int32(options.MaxTokens)
	}
	if len(options.Stop) > 0 {
		config.StopSequences = options.Stop
	}
	if options.ResponseFormat != nil && options.ResponseFormat.Type == llm.JSONObject {
		config.ResponseMIMEType = "application/json"
	}

	return config
}

func convertFromGeminiResponse(result *genai.GenerateContentResponse) (llm.Response, error) {
	if result == nil || len(result.Candidates) == 0 {
		return llm.Response{}, errorRegistry.New(ErrAPIResponse).
			WithDetail("error", "no candidates in response")
	}

	candidate := result.Candidates[0]
	if candidate.Content == nil {
		return llm.Response{
			Message: llm.Message{Role: llm.RoleAssistant},
		}, nil
	}

	var content string
	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			content += part.Text
		}
	}

	usage := llm.Usage{}
	if result.UsageMetadata != nil {
		usage.PromptTokens = int(result.UsageMetadata.PromptTokenCount)
		usage.CompletionTokens = int(result.UsageMetadata.CandidatesTokenCount)
		usage.TotalTokens = int(result.UsageMetadata.TotalTokenCount)
	}

	return llm.Response{
		Message: llm.Message{
			Role:    llm.RoleAssistant,
			Content: content,
		},
		Usage:        usage,
		FinishReason: string(candidate.FinishReason),
	}, nil
}
