package formx

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Nawaf-TBE/Pillbot/pkg/fsx"
	"github.com/Nawaf-TBE/Pillbot/pkg/logx"
)

// ConditionalRules groups the two rule families of a schema
type ConditionalRules struct {
	SimpleRules           []ConditionalRule `json:"simple_rules,omitempty"`
	ComplexInferenceRules []InferenceRule   `json:"complex_inference_rules,omitempty"`
}

// Schema is a form definition: field mappings plus conditional rules
type Schema struct {
	SchemaName       string                  `json:"schema_name"`
	Description      string                  `json:"description,omitempty"`
	FieldMappings    map[string]FieldMapping `json:"field_mappings"`
	ConditionalRules ConditionalRules        `json:"conditional_rules,omitempty"`
}

var knownConditionTypes = map[ConditionType]bool{
	ConditionEquals:      true,
	ConditionNotEquals:   true,
	ConditionContains:    true,
	ConditionNotEmpty:    true,
	ConditionEmpty:       true,
	ConditionGreaterThan: true,
	ConditionLessThan:    true,
	ConditionRegex:       true,
}

// Validate checks every rule against the field-mapping set. Unknown field
// references and malformed actions are fatal. Unknown condition types only
// log a warning here; such conditions fail closed at evaluation time.
func (s *Schema) Validate() error {
	if s.SchemaName == "" {
		return errorRegistry.NewWithMessage(ErrConfiguration, "schema_name is required")
	}
	if len(s.FieldMappings) == 0 {
		return errorRegistry.NewWithMessage(ErrConfiguration, "field_mappings cannot be empty")
	}

	for _, rule := range s.ConditionalRules.SimpleRules {
		if rule.Condition.Field == "" {
			return configErr("rule %q has no condition field", rule.Name)
		}
		if _, ok := s.FieldMappings[rule.Condition.Field]; !ok {
			return configErr("rule %q condition references unknown field %q",
				rule.Name, rule.Condition.Field)
		}
		if !knownConditionTypes[rule.Condition.Type] {
			logx.WithFields(logx.Fields{
				"rule":           rule.Name,
				"condition_type": string(rule.Condition.Type),
			}).Warn("Unknown condition type, rule will never trigger")
		}
		if err := s.validateActions(rule.Name, rule.Actions); err != nil {
			return err
		}
	}

	for _, rule := range s.ConditionalRules.ComplexInferenceRules {
		if rule.LLMInference.PromptTemplate == "" {
			return configErr("inference rule %q has no prompt template", rule.Name)
		}
		if rf := rule.LLMInference.ResultField; rf != "" {
			if _, ok := s.FieldMappings[rf]; !ok {
				return configErr("inference rule %q result_field references unknown field %q",
					rule.Name, rf)
			}
		}
		if err := s.validateActions(rule.Name, rule.Actions); err != nil {
			return err
		}
	}

	return nil
}

func (s *Schema) validateActions(ruleName string, actions []Action) error {
	for _, action := range actions {
		switch action.Type {
		case ActionMakeRequired, ActionSetValue:
			if action.Field == "" {
				return configErr("rule %q action %s has no target field", ruleName, action.Type)
			}
			if _, ok := s.FieldMappings[action.Field]; !ok {
				return configErr("rule %q action %s targets unknown field %q",
					ruleName, action.Type, action.Field)
			}
		case ActionAddNote:
			if action.Note == "" {
				return configErr("rule %q add_note action has no note", ruleName)
			}
		default:
			return configErr("rule %q has unknown action type %q", ruleName, action.Type)
		}
	}
	return nil
}

func configErr(format string, args ...any) error {
	return errorRegistry.NewWithMessage(ErrConfiguration, fmt.Sprintf(format, args...))
}

// ============================================================================
// Schema Loading
// ============================================================================

// Loader reads schemas from a directory of JSON files, one file per schema
type Loader struct {
	fs  fsx.FileReader
	dir string
}

// NewLoader creates a schema loader rooted at dir
func NewLoader(fs fsx.FileReader, dir string) *Loader {
	return &Loader{fs: fs, dir: dir}
}

// Load reads and validates the named schema (filename without extension)
func (l *Loader) Load(ctx context.Context, name string) (*Schema, error) {
	path := l.dir + "/" + name + ".json"

	exists, err := l.fs.Exists(ctx, path)
	if err != nil {
		return nil, errorRegistry.NewWithCause(ErrSchemaNotFound, err).
			WithDetail("schema", name)
	}
	if !exists {
		return nil, errorRegistry.New(ErrSchemaNotFound).
			WithDetail("schema", name).
			WithDetail("path", path)
	}

	data, err := l.fs.ReadFile(ctx, path)
	if err != nil {
		return nil, errorRegistry.NewWithCause(ErrSchemaNotFound, err).
			WithDetail("schema", name)
	}

	var schema Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, errorRegistry.NewWithCause(ErrInvalidSchema, err).
			WithDetail("schema", name)
	}

	if err := schema.Validate(); err != nil {
		return nil, err
	}

	logx.WithFields(logx.Fields{
		"schema":          schema.SchemaName,
		"fields":          len(schema.FieldMappings),
		"simple_rules":    len(schema.ConditionalRules.SimpleRules),
		"inference_rules": len(schema.ConditionalRules.ComplexInferenceRules),
	}).Info("Loaded form schema")

	return &schema, nil
}
