package formx_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/Nawaf-TBE/Pillbot/pkg/formx"
)

func diabetesSchema() *formx.Schema {
	conf := 0.9
	return &formx.Schema{
		SchemaName: "InsureCo_Ozempic",
		FieldMappings: map[string]formx.FieldMapping{
			"primary_diagnosis_code": {SourceField: "primary_diagnosis_code"},
			"a1c_value":              {SourceField: "a1c_value"},
			"priority_level":         {},
		},
		ConditionalRules: formx.ConditionalRules{
			SimpleRules: []formx.ConditionalRule{
				{
					Name: "require_a1c_for_diabetes",
					Condition: formx.Condition{
						Type:  formx.ConditionContains,
						Field: "primary_diagnosis_code",
						Value: "E11",
					},
					Actions: []formx.Action{
						{Type: formx.ActionMakeRequired, Field: "a1c_value"},
						{Type: formx.ActionAddNote, Note: "A1C value is required for diabetes patients"},
					},
				},
				{
					Name: "high_a1c_priority",
					Condition: formx.Condition{
						Type:  formx.ConditionGreaterThan,
						Field: "a1c_value",
						Value: "9.0",
					},
					Actions: []formx.Action{
						{Type: formx.ActionSetValue, Field: "priority_level", Value: "High", Confidence: &conf},
					},
				},
			},
		},
	}
}

func entityMap() map[string]formx.ExtractedEntity {
	return map[string]formx.ExtractedEntity{
		"primary_diagnosis_code": {
			Name:       "primary_diagnosis_code",
			Value:      formx.StringValue("E11.9"),
			Confidence: 0.95,
		},
		"a1c_value": {
			Name:       "a1c_value",
			Value:      formx.ValueFromAny("10.2%"),
			Confidence: 0.9,
		},
	}
}

func TestPopulate_DiabetesScenario(t *testing.T) {
	p := formx.NewPopulator(nil)

	result, err := p.Populate(context.Background(), entityMap(), diabetesSchema())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a1c := result.FormData["a1c_value"]
	if !a1c.Required || !a1c.ConditionalRequirement {
		t.Fatal("expected a1c_value marked conditionally required")
	}

	noteCount := 0
	for _, note := range result.Metadata.ConditionalNotes {
		if note == "A1C value is required for diabetes patients" {
			noteCount++
		}
	}
	if noteCount != 1 {
		t.Fatalf("expected diabetes note exactly once, got %d", noteCount)
	}

	priority := result.FormData["priority_level"]
	if priority.Value.Text() != "High" {
		t.Fatalf("expected priority High, got %q", priority.Value.Text())
	}
	if priority.Confidence != 0.9 {
		t.Fatalf("expected confidence 0.9, got %v", priority.Confidence)
	}
	if !priority.ConditionalValue {
		t.Fatal("expected conditional_value flag on priority_level")
	}

	counters := result.Metadata.Counters
	if counters.RulesEvaluated != 2 || counters.RulesTriggered != 2 {
		t.Fatalf("expected 2/2 rules, got %d/%d", counters.RulesEvaluated, counters.RulesTriggered)
	}
}

func TestPopulate_UnknownFieldIsConfigurationError(t *testing.T) {
	schema := diabetesSchema()
	schema.ConditionalRules.SimpleRules = append(schema.ConditionalRules.SimpleRules,
		formx.ConditionalRule{
			Name: "bad-rule",
			Condition: formx.Condition{
				Type:  formx.ConditionNotEmpty,
				Field: "xyz_unknown",
			},
			Actions: []formx.Action{{Type: formx.ActionMakeRequired, Field: "a1c_value"}},
		})

	p := formx.NewPopulator(nil)
	result, err := p.Populate(context.Background(), entityMap(), schema)
	if err == nil {
		t.Fatal("expected configuration error for unknown field")
	}
	if !formx.IsConfigurationError(err) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if result != nil {
		t.Fatal("no result may be produced on configuration error")
	}
}

func TestPopulate_UnknownActionTargetIsConfigurationError(t *testing.T) {
	schema := diabetesSchema()
	schema.ConditionalRules.SimpleRules[0].Actions[0].Field = "xyz_unknown"

	p := formx.NewPopulator(nil)
	if _, err := p.Populate(context.Background(), entityMap(), schema); !formx.IsConfigurationError(err) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestPopulate_CompletionRate(t *testing.T) {
	schema := &formx.Schema{
		SchemaName:    "completion",
		FieldMappings: map[string]formx.FieldMapping{},
	}
	entities := map[string]formx.ExtractedEntity{}

	for i := 0; i < 20; i++ {
		name := fmt.Sprintf("field_%02d", i)
		schema.FieldMappings[name] = formx.FieldMapping{SourceField: name}
		if i < 9 {
			entities[name] = formx.ExtractedEntity{
				Name:       name,
				Value:      formx.StringValue("filled"),
				Confidence: 1,
			}
		}
	}

	p := formx.NewPopulator(nil)
	result, err := p.Populate(context.Background(), entities, schema)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Metadata.CompletionRate != 0.45 {
		t.Fatalf("expected completion rate 0.45, got %v", result.Metadata.CompletionRate)
	}
	if result.Metadata.PopulatedFields != 9 || result.Metadata.TotalFields != 20 {
		t.Fatalf("expected 9/20 populated, got %d/%d",
			result.Metadata.PopulatedFields, result.Metadata.TotalFields)
	}
}

func TestPopulate_MissingFieldsListsUnfilledRequired(t *testing.T) {
	schema := &formx.Schema{
		SchemaName: "required",
		FieldMappings: map[string]formx.FieldMapping{
			"present": {SourceField: "present", Required: true},
			"absent":  {SourceField: "absent", Required: true},
		},
	}
	entities := map[string]formx.ExtractedEntity{
		"present": {Name: "present", Value: formx.StringValue("x"), Confidence: 1},
	}

	p := formx.NewPopulator(nil)
	result, err := p.Populate(context.Background(), entities, schema)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Metadata.MissingFields) != 1 || result.Metadata.MissingFields[0] != "absent" {
		t.Fatalf("expected [absent], got %v", result.Metadata.MissingFields)
	}
}

func TestPopulate_WithInferenceAdapter(t *testing.T) {
	mock := &mockLLM{response: "Yes, step therapy documented."}
	adapter := formx.NewInferenceAdapter(mock)

	schema := diabetesSchema()
	schema.FieldMappings["prior_therapy_docs"] = formx.FieldMapping{}
	schema.ConditionalRules.ComplexInferenceRules = []formx.InferenceRule{
		{
			Name: "step-therapy-check",
			LLMInference: formx.Inference{
				PromptTemplate: "Context:\n{context}\nIs prior therapy documented?",
				ContextFields:  []string{"primary_diagnosis_code"},
				ExpectedResult: "yes",
			},
			Actions: []formx.Action{
				{Type: formx.ActionMakeRequired, Field: "prior_therapy_docs"},
			},
		},
	}

	p := formx.NewPopulator(adapter)
	result, err := p.Populate(context.Background(), entityMap(), schema)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.FormData["prior_therapy_docs"].Required {
		t.Fatal("expected inference rule to mark field required")
	}
	if result.Metadata.Counters.LLMInferences != 1 {
		t.Fatalf("expected 1 inference, got %d", result.Metadata.Counters.LLMInferences)
	}
	// two simple rules plus the attempted inference rule
	if result.Metadata.Counters.RulesEvaluated != 3 {
		t.Fatalf("expected 3 rules evaluated, got %d", result.Metadata.Counters.RulesEvaluated)
	}
}

func TestPopulate_NilEntities(t *testing.T) {
	p := formx.NewPopulator(nil)
	if _, err := p.Populate(context.Background(), nil, diabetesSchema()); err == nil {
		t.Fatal("expected error for nil entity map")
	}
}
