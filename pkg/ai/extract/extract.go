// Package extract turns parsed document text into structured medical
// entities using a chat model with JSON output.
package extract

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/Nawaf-TBE/Pillbot/pkg/ai/llm"
	"github.com/Nawaf-TBE/Pillbot/pkg/logx"
)

// Extractor extracts structured entities from document content
type Extractor struct {
	client      llm.Client
	model       string
	temperature float32
	maxTokens   int
}

// ExtractorOption configures the Extractor
type ExtractorOption func(*Extractor)

// WithModel sets the model used for extraction requests
func WithModel(model string) ExtractorOption {
	return func(e *Extractor) {
		e.model = model
	}
}

// WithTemperature sets the sampling temperature
func WithTemperature(temperature float32) ExtractorOption {
	return func(e *Extractor) {
		e.temperature = temperature
	}
}

// WithMaxTokens sets the maximum output tokens
func WithMaxTokens(maxTokens int) ExtractorOption {
	return func(e *Extractor) {
		e.maxTokens = maxTokens
	}
}

// NewExtractor creates an Extractor backed by the given chat client
func NewExtractor(client llm.Client, opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		client:      client,
		temperature: 0.1,
		maxTokens:   2048,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Result holds extracted entities plus request metadata
type Result struct {
	Entities       map[string]any `json:"entities"`
	Model          string         `json:"model"`
	ProcessingTime time.Duration  `json:"processing_time"`
	Usage          llm.Usage      `json:"usage"`
}

// ExtractEntities extracts the full medical entity set from document content
func (e *Extractor) ExtractEntities(ctx context.Context, documentContent string) (*Result, error) {
	return e.extract(ctx, documentContent, MedicalEntityPrompt())
}

// ExtractSpecific extracts only the named entities from document content
func (e *Extractor) ExtractSpecific(ctx context.Context, documentContent string, entityNames []string) (*Result, error) {
	if len(entityNames) == 0 {
		return &Result{Entities: map[string]any{}}, nil
	}
	return e.extract(ctx, documentContent, CustomEntityPrompt(entityNames))
}

func (e *Extractor) extract(ctx context.Context, documentContent, systemPrompt string) (*Result, error) {
	if strings.TrimSpace(documentContent) == "" {
		return nil, errorRegistry.New(ErrEmptyDocument)
	}

	start := time.Now()

	logx.WithFields(logx.Fields{
		"content_length": len(documentContent),
	}).Info("Starting entity extraction")

	opts := []llm.Option{
		llm.WithTemperature(e.temperature),
		llm.WithMaxTokens(e.maxTokens),
		llm.WithJSONResponseFormat(),
	}
	if e.model != "" {
		opts = append(opts, llm.WithModel(e.model))
	}

	response, err := e.client.Chat(ctx, []llm.Message{
		llm.NewSystemMessage(systemPrompt),
		llm.NewUserMessage(documentContent),
	}, opts...)
	if err != nil {
		return nil, WrapError(err, ErrInferenceFailed)
	}

	entities, err := parseEntityJSON(response.Message.Content)
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	logx.WithFields(logx.Fields{
		"entity_count": len(entities),
		"duration":     elapsed.String(),
	}).Info("Entity extraction completed")

	return &Result{
		Entities:       entities,
		Model:          response.Model,
		ProcessingTime: elapsed,
		Usage:          response.Usage,
	}, nil
}

// parseEntityJSON decodes the model output, tolerating markdown code fences
func parseEntityJSON(content string) (map[string]any, error) {
	trimmed := strings.TrimSpace(content)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var entities map[string]any
	if err := json.Unmarshal([]byte(trimmed), &entities); err != nil {
		return nil, WrapError(err, ErrInvalidJSON).
			WithDetail("response_prefix", truncate(trimmed, 200))
	}

	return entities, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
