package formx_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Nawaf-TBE/Pillbot/pkg/errx"
	"github.com/Nawaf-TBE/Pillbot/pkg/formx"
	"github.com/Nawaf-TBE/Pillbot/pkg/fsx/fsxlocal"
)

func validSchema() *formx.Schema {
	return &formx.Schema{
		SchemaName: "test",
		FieldMappings: map[string]formx.FieldMapping{
			"diagnosis": {SourceField: "diagnosis"},
			"a1c_value": {SourceField: "a1c_value"},
		},
		ConditionalRules: formx.ConditionalRules{
			SimpleRules: []formx.ConditionalRule{
				{
					Name:      "r1",
					Condition: formx.Condition{Type: formx.ConditionContains, Field: "diagnosis", Value: "E11"},
					Actions:   []formx.Action{{Type: formx.ActionMakeRequired, Field: "a1c_value"}},
				},
			},
		},
	}
}

func TestSchemaValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*formx.Schema)
		wantErr bool
	}{
		{"valid schema", func(s *formx.Schema) {}, false},
		{"missing schema name", func(s *formx.Schema) { s.SchemaName = "" }, true},
		{"no field mappings", func(s *formx.Schema) { s.FieldMappings = nil }, true},
		{"condition without field", func(s *formx.Schema) {
			s.ConditionalRules.SimpleRules[0].Condition.Field = ""
		}, true},
		{"condition references unknown field", func(s *formx.Schema) {
			s.ConditionalRules.SimpleRules[0].Condition.Field = "nope"
		}, true},
		{"action targets unknown field", func(s *formx.Schema) {
			s.ConditionalRules.SimpleRules[0].Actions[0].Field = "nope"
		}, true},
		{"unknown action type", func(s *formx.Schema) {
			s.ConditionalRules.SimpleRules[0].Actions[0].Type = "delete_field"
		}, true},
		{"add_note without note", func(s *formx.Schema) {
			s.ConditionalRules.SimpleRules[0].Actions = []formx.Action{{Type: formx.ActionAddNote}}
		}, true},
		// Unknown condition types only warn; the rule fails closed at runtime.
		{"unknown condition type", func(s *formx.Schema) {
			s.ConditionalRules.SimpleRules[0].Condition.Type = "fuzzy_match"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema := validSchema()
			tt.mutate(schema)

			err := schema.Validate()
			if tt.wantErr {
				if !formx.IsConfigurationError(err) {
					t.Fatalf("expected configuration error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestSchemaValidate_InferenceRules(t *testing.T) {
	schema := validSchema()
	schema.ConditionalRules.ComplexInferenceRules = []formx.InferenceRule{
		{
			Name: "infer",
			LLMInference: formx.Inference{
				PromptTemplate: "Does {diagnosis} need review?",
				ContextFields:  []string{"diagnosis"},
				ResultField:    "a1c_value",
			},
			Actions: []formx.Action{{Type: formx.ActionMakeRequired, Field: "a1c_value"}},
		},
	}
	if err := schema.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	schema.ConditionalRules.ComplexInferenceRules[0].LLMInference.PromptTemplate = ""
	if err := schema.Validate(); !formx.IsConfigurationError(err) {
		t.Fatalf("expected configuration error for empty prompt, got %v", err)
	}

	schema.ConditionalRules.ComplexInferenceRules[0].LLMInference.PromptTemplate = "x"
	schema.ConditionalRules.ComplexInferenceRules[0].LLMInference.ResultField = "nope"
	if err := schema.Validate(); !formx.IsConfigurationError(err) {
		t.Fatalf("expected configuration error for unknown result field, got %v", err)
	}
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	schemaJSON := `{
		"schema_name": "InsureCo_Ozempic",
		"field_mappings": {
			"diagnosis": {"source_field": "diagnosis"},
			"a1c_value": {"source_field": "a1c_value"}
		},
		"conditional_rules": {
			"simple_rules": [
				{
					"name": "require_a1c",
					"condition": {"type": "contains", "field": "diagnosis", "value": "E11"},
					"actions": [{"type": "make_required", "field": "a1c_value"}]
				}
			]
		}
	}`
	if err := os.WriteFile(filepath.Join(dir, "InsureCo_Ozempic.json"), []byte(schemaJSON), 0o644); err != nil {
		t.Fatalf("failed to write schema file: %v", err)
	}

	fs, err := fsxlocal.NewLocalFileSystem(dir)
	if err != nil {
		t.Fatalf("failed to create file system: %v", err)
	}
	loader := formx.NewLoader(fs, ".")

	schema, err := loader.Load(context.Background(), "InsureCo_Ozempic")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if schema.SchemaName != "InsureCo_Ozempic" {
		t.Fatalf("unexpected schema name: %q", schema.SchemaName)
	}
	if len(schema.ConditionalRules.SimpleRules) != 1 {
		t.Fatalf("expected 1 simple rule, got %d", len(schema.ConditionalRules.SimpleRules))
	}
}

func TestLoader_NotFound(t *testing.T) {
	fs, err := fsxlocal.NewLocalFileSystem(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create file system: %v", err)
	}
	loader := formx.NewLoader(fs, ".")

	_, err = loader.Load(context.Background(), "missing")
	var xerr *errx.Error
	if !errx.As(err, &xerr) || xerr.Code != formx.ErrSchemaNotFound.Code {
		t.Fatalf("expected SCHEMA_NOT_FOUND, got %v", err)
	}
}

func TestLoader_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	fs, err := fsxlocal.NewLocalFileSystem(dir)
	if err != nil {
		t.Fatalf("failed to create file system: %v", err)
	}
	loader := formx.NewLoader(fs, ".")

	_, err = loader.Load(context.Background(), "broken")
	var xerr *errx.Error
	if !errx.As(err, &xerr) || xerr.Code != formx.ErrInvalidSchema.Code {
		t.Fatalf("expected INVALID_SCHEMA, got %v", err)
	}
}
