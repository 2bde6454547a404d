package extract_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Nawaf-TBE/Pillbot/pkg/ai/extract"
	"github.com/Nawaf-TBE/Pillbot/pkg/ai/llm"
	"github.com/Nawaf-TBE/Pillbot/pkg/errx"
)

// mockLLM returns scripted responses and records the requests it saw.
type mockLLM struct {
	response string
	err      error

	lastMessages []llm.Message
	lastOptions  llm.ChatOptions
}

func (m *mockLLM) Chat(_ context.Context, messages []llm.Message, opts ...llm.Option) (llm.Response, error) {
	m.lastMessages = messages

	options := llm.DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	m.lastOptions = *options

	if m.err != nil {
		return llm.Response{}, m.err
	}
	return llm.Response{
		Message: llm.NewAssistantMessage(m.response),
		Model:   options.Model,
	}, nil
}

func TestExtractEntities_ParsesJSON(t *testing.T) {
	mock := &mockLLM{response: `{"patient_name": "Sarah Johnson", "a1c_value": "10.2%"}`}
	e := extract.NewExtractor(mock, extract.WithModel("test-model"))

	result, err := e.ExtractEntities(context.Background(), "some document text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Entities["patient_name"] != "Sarah Johnson" {
		t.Fatalf("expected patient_name extracted, got %+v", result.Entities)
	}
	if len(mock.lastMessages) != 2 || mock.lastMessages[0].Role != llm.RoleSystem {
		t.Fatalf("expected system + user messages, got %+v", mock.lastMessages)
	}
	if mock.lastOptions.ResponseFormat == nil || mock.lastOptions.ResponseFormat.Type != llm.JSONObject {
		t.Fatal("expected JSON response format to be requested")
	}
	if mock.lastOptions.Model != "test-model" {
		t.Fatalf("expected model override, got %q", mock.lastOptions.Model)
	}
}

func TestExtractEntities_StripsCodeFences(t *testing.T) {
	mock := &mockLLM{response: "```json\n{\"member_id\": \"BC12345\"}\n```"}
	e := extract.NewExtractor(mock)

	result, err := e.ExtractEntities(context.Background(), "doc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Entities["member_id"] != "BC12345" {
		t.Fatalf("expected fenced JSON parsed, got %+v", result.Entities)
	}
}

func TestExtractEntities_InvalidJSON(t *testing.T) {
	mock := &mockLLM{response: "not json at all"}
	e := extract.NewExtractor(mock)

	_, err := e.ExtractEntities(context.Background(), "doc")
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}

	var xerr *errx.Error
	if !errors.As(err, &xerr) || xerr.Code != extract.ErrInvalidJSON.Code {
		t.Fatalf("expected invalid JSON error, got %v", err)
	}
}

func TestExtractEntities_EmptyDocument(t *testing.T) {
	e := extract.NewExtractor(&mockLLM{})

	_, err := e.ExtractEntities(context.Background(), "   ")
	if err == nil {
		t.Fatal("expected error for empty document")
	}
}

func TestExtractSpecific_EmptyList(t *testing.T) {
	mock := &mockLLM{response: `{}`}
	e := extract.NewExtractor(mock)

	result, err := e.ExtractSpecific(context.Background(), "doc", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Entities) != 0 {
		t.Fatalf("expected no entities, got %+v", result.Entities)
	}
	if mock.lastMessages != nil {
		t.Fatal("expected no chat call for empty entity list")
	}
}

func TestValidateEntities(t *testing.T) {
	entities := map[string]any{
		"patient_name":  "Sarah Johnson",
		"date_of_birth": "1985",
		"member_id":     "AB",
		"phone":         "555-123",
		"allergies":     nil,
		"medications":   []any{},
	}

	cleaned, report := extract.ValidateEntities(entities)

	if report.TotalFields != 6 {
		t.Fatalf("expected 6 total fields, got %d", report.TotalFields)
	}
	if report.PopulatedFields != 4 || report.EmptyFields != 2 {
		t.Fatalf("expected 4 populated / 2 empty, got %d / %d",
			report.PopulatedFields, report.EmptyFields)
	}
	if len(cleaned) != 4 {
		t.Fatalf("expected 4 cleaned entities, got %d", len(cleaned))
	}
	// short date, short ID, incomplete phone
	if len(report.Issues) != 3 {
		t.Fatalf("expected 3 validation issues, got %+v", report.Issues)
	}
	if report.ConfidenceScore != 4.0/6.0 {
		t.Fatalf("unexpected confidence score %v", report.ConfidenceScore)
	}
}

func TestValidateEntities_Empty(t *testing.T) {
	cleaned, report := extract.ValidateEntities(map[string]any{})
	if len(cleaned) != 0 || report.ConfidenceScore != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
}
