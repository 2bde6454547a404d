// Package formx implements conditional-rule driven form population: a
// condition evaluator, an action applier, a forward-pass rule engine, an
// LLM-backed inference adapter and the orchestrating Populator.
package formx

// ============================================================================
// Schema-Side Models (immutable configuration)
// ============================================================================

// FieldMapping associates a form field with the entity that feeds it
type FieldMapping struct {
	SourceField string   `json:"source_field,omitempty"`
	Confidence  float64  `json:"confidence,omitempty"`
	Notes       string   `json:"notes,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	Required    bool     `json:"required,omitempty"`
	DataType    string   `json:"data_type,omitempty"`
}

// ValidationStatus classifies an extracted entity
type ValidationStatus string

const (
	ValidationValid   ValidationStatus = "valid"
	ValidationUnclear ValidationStatus = "unclear"
	ValidationMissing ValidationStatus = "missing"
)

// ExtractedEntity is a named value pulled from a source document. Produced
// by the extraction stage; immutable input to population.
type ExtractedEntity struct {
	Name             string           `json:"name"`
	Value            Value            `json:"value"`
	FieldType        string           `json:"field_type,omitempty"`
	Confidence       float64          `json:"confidence"`
	SourceLocation   string           `json:"source_location,omitempty"`
	ValidationStatus ValidationStatus `json:"validation_status,omitempty"`
}

// ConditionType names a condition evaluation strategy
type ConditionType string

const (
	ConditionEquals      ConditionType = "equals"
	ConditionNotEquals   ConditionType = "not_equals"
	ConditionContains    ConditionType = "contains"
	ConditionNotEmpty    ConditionType = "not_empty"
	ConditionEmpty       ConditionType = "empty"
	ConditionGreaterThan ConditionType = "greater_than"
	ConditionLessThan    ConditionType = "less_than"
	ConditionRegex       ConditionType = "regex"
)

// Condition is the trigger half of a simple rule
type Condition struct {
	Type  ConditionType `json:"type"`
	Field string        `json:"field"`
	Value string        `json:"value,omitempty"`
}

// ActionType names what a triggered rule does to the form
type ActionType string

const (
	ActionMakeRequired ActionType = "make_required"
	ActionSetValue     ActionType = "set_value"
	ActionAddNote      ActionType = "add_note"
)

// Action is one effect of a triggered rule
type Action struct {
	Type       ActionType `json:"type"`
	Field      string     `json:"field,omitempty"`
	Value      string     `json:"value,omitempty"`
	Confidence *float64   `json:"confidence,omitempty"`
	Note       string     `json:"note,omitempty"`
}

// ConditionalRule is a simple rule: condition plus actions, no external calls
type ConditionalRule struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Condition   Condition `json:"condition"`
	Actions     []Action  `json:"actions"`
}

// Inference configures the model call of an inference rule
type Inference struct {
	PromptTemplate string   `json:"prompt_template"`
	ContextFields  []string `json:"context_fields"`
	ResultField    string   `json:"result_field,omitempty"`
	ExpectedResult string   `json:"expected_result"`
}

// InferenceRule is a complex rule whose condition is resolved by an external
// text-generation call
type InferenceRule struct {
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	LLMInference Inference `json:"llm_inference"`
	Actions      []Action  `json:"actions"`
}

// ============================================================================
// Population-Side Models (mutable during a run)
// ============================================================================

// FormFieldRecord tracks one form field through a population run
type FormFieldRecord struct {
	Value                  Value   `json:"value"`
	Confidence             float64 `json:"confidence"`
	Required               bool    `json:"required"`
	ConditionalRequirement bool    `json:"conditional_requirement"`
	ConditionalValue       bool    `json:"conditional_value"`
	Source                 string  `json:"source,omitempty"`
	DataType               string  `json:"data_type,omitempty"`
}

// FormData is the in-progress population state, keyed by form field name
type FormData map[string]*FormFieldRecord

// Counters aggregates conditional-logic activity across a run
type Counters struct {
	RulesEvaluated               int `json:"rules_evaluated"`
	RulesTriggered               int `json:"rules_triggered"`
	LLMInferences                int `json:"llm_inferences"`
	ConditionalRequirementsAdded int `json:"conditional_requirements_added"`
	ConditionalValuesSet         int `json:"conditional_values_set"`
}

// Metadata summarizes a population run
type Metadata struct {
	SchemaName       string   `json:"schema_name"`
	TotalFields      int      `json:"total_fields"`
	PopulatedFields  int      `json:"populated_fields"`
	CompletionRate   float64  `json:"completion_rate"`
	MissingFields    []string `json:"missing_fields"`
	Counters         Counters `json:"conditional_logic"`
	ConditionalNotes []string `json:"conditional_notes"`
}

// PopulationResult is the finalized output of one population run
type PopulationResult struct {
	FormData FormData `json:"form_data"`
	Metadata Metadata `json:"metadata"`
}
