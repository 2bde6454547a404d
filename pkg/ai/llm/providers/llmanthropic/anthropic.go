package llmanthropic

import (
	"context"
	"os"

	"github.com/Nawaf-TBE/Pillbot/pkg/ai/llm"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProvider implements the llm.Client interface for Anthropic Claude
type AnthropicProvider struct {
	client       anthropic.Client
	apiKey       string
	defaultModel string
}

// ProviderOption configures the Anthropic provider
type ProviderOption func(*AnthropicProvider)

// WithDefaultModel sets the model used when a request does not name one
func WithDefaultModel(model string) ProviderOption {
	return func(p *AnthropicProvider) {
		p.defaultModel = model
	}
}

// NewAnthropicProvider creates a new Anthropic provider
func NewAnthropicProvider(apiKey string, opts ...ProviderOption) *AnthropicProvider {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}

	p := &AnthropicProvider{
		client:       anthropic.NewClient(option.WithAPIKey(apiKey)),
		apiKey:       apiKey,
		defaultModel: "claude-sonnet-4-20250514",
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// ============================================================================
// Chat Implementation
// ============================================================================

// Chat implements the llm.Client interface
func (p *AnthropicProvider) Chat(ctx context.Context, messages []llm.Message, opts ...llm.Option) (llm.Response, error) {
	if p.apiKey == "" {
		return llm.Response{}, errorRegistry.New(ErrMissingAPIKey)
	}
	if len(messages) == 0 {
		return llm.Response{}, errorRegistry.New(ErrEmptyMessages)
	}

	options := llm.DefaultOptions()
	options.Model = p.defaultModel
	for _, opt := range opts {
		opt(options)
	}

	// Anthropic takes the system prompt outside the conversation turns
	systemBlocks, nonSystemMsgs := extractSystemPrompt(messages)
	anthropicMsgs := convertMessages(nonSystemMsgs)

	maxTokens := int64(4096)
	if options.MaxTokens > 0 {
		maxTokens = int64(options.MaxTokens)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(options.Model),
		MaxTokens: maxTokens,
		Messages:  anthropicMsgs,
	}

	if len(systemBlocks) > 0 {
		params.System = systemBlocks
	}
	if options.Temperature != 0 {
		params.Temperature = anthropic.Float(float64(options.Temperature))
	}
	if options.TopP != 0 {
		params.TopP = anthropic.Float(float64(options.TopP))
	}
	if len(options.Stop) > 0 {
		params.StopSequences = options.Stop
	}

	message, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return llm.Response{}, ParseAnthropicError(err).
			WithDetail("model", options.Model).
			WithDetail("num_messages", len(messages))
	}

	return convertFromAnthropicResponse(message), nil
}

// ============================================================================
// Conversion Helpers
// ============================================================================

func extractSystemPrompt(messages []llm.Message) ([]anthropic.TextBlockParam, []llm.Message) {
	var system []anthropic.TextBlockParam
	var rest []llm.Message

	for _, msg := range messages {
		if msg.Role == llm.RoleSystem {
			system = append(system, anthropic.TextBlockParam{
				Text: msg.Content,
			})
		} else {
			rest = append(rest, msg)
		}
	}

	return system, rest
}

func convertMessages(messages []llm.Message) []anthropic.MessageParam {
	var result []anthropic.MessageParam

	for _, msg := range messages {
		switch msg.Role {
		case llm.RoleUser:
			result = append(result, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case llm.RoleAssistant:
			result = append(result, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}

	return result
}

func convertFromAnthropicResponse(msg *anthropic.Message) llm.Response {
	var content string
	for _, block := range msg.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}

	return llm.Response{
		Message: llm.Message{
			Role:    llm.RoleAssistant,
			Content: content,
		},
		Usage: llm.Usage{
			PromptTokens:     int(msg.Usage.InputTokens),
			CompletionTokens: int(msg.Usage.OutputTokens),
			TotalTokens:      int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
		Model:        string(msg.Model),
		FinishReason: string(msg.StopReason),
	}
}
