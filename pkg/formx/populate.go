package formx

import (
	"context"
	"sort"

	"github.com/Nawaf-TBE/Pillbot/pkg/logx"
)

// Populator orchestrates one population run: initialize field records from
// entities, run simple rules, resolve inference rules, then summarize.
type Populator struct {
	adapter *InferenceAdapter
}

// NewPopulator creates a Populator. The adapter may be nil, in which case
// inference rules are skipped entirely.
func NewPopulator(adapter *InferenceAdapter) *Populator {
	return &Populator{adapter: adapter}
}

// Populate builds a finalized PopulationResult from extracted entities and a
// validated schema. A single rule's or inference's failure never aborts the
// run; only schema validation errors are fatal.
func (p *Populator) Populate(ctx context.Context, entities map[string]ExtractedEntity, schema *Schema) (*PopulationResult, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	if entities == nil {
		return nil, errorRegistry.New(ErrNoEntities)
	}

	form := initFormData(entities, schema)

	counters := Counters{}
	notes := []string{}

	RunSimpleRules(schema.ConditionalRules.SimpleRules, form, &counters, &notes)

	if p.adapter != nil {
		p.adapter.RunInferenceRules(ctx, schema.ConditionalRules.ComplexInferenceRules,
			form, &counters, &notes)
	} else if len(schema.ConditionalRules.ComplexInferenceRules) > 0 {
		logx.Warn("No inference adapter configured, skipping inference rules")
	}

	metadata := summarize(schema, form, counters, notes)

	logx.WithFields(logx.Fields{
		"schema":          schema.SchemaName,
		"completion_rate": metadata.CompletionRate,
		"rules_triggered": counters.RulesTriggered,
		"rules_evaluated": counters.RulesEvaluated,
	}).Info("Form population completed")

	return &PopulationResult{
		FormData: form,
		Metadata: metadata,
	}, nil
}

// initFormData creates one record per schema field, seeded from the matching
// entity when present
func initFormData(entities map[string]ExtractedEntity, schema *Schema) FormData {
	form := make(FormData, len(schema.FieldMappings))

	for fieldName, mapping := range schema.FieldMappings {
		record := &FormFieldRecord{
			Value:      Missing(),
			Required:   mapping.Required,
			DataType:   mapping.DataType,
			Source:     mapping.SourceField,
			Confidence: 0,
		}

		sourceName := mapping.SourceField
		if sourceName == "" {
			sourceName = fieldName
		}

		if entity, ok := entities[sourceName]; ok && !entity.Value.IsMissing() {
			record.Value = entity.Value
			record.Confidence = entity.Confidence
		}

		form[fieldName] = record
	}

	return form
}

// summarize computes the completion rate and missing-field list after all
// rules have settled
func summarize(schema *Schema, form FormData, counters Counters, notes []string) Metadata {
	populated := 0
	var missing []string

	for fieldName, record := range form {
		if !record.Value.IsMissing() && record.Value.Text() != "" {
			populated++
		} else if record.Required {
			missing = append(missing, fieldName)
		}
	}
	sort.Strings(missing)

	completionRate := 0.0
	if len(form) > 0 {
		completionRate = float64(populated) / float64(len(form))
	}

	return Metadata{
		SchemaName:       schema.SchemaName,
		TotalFields:      len(form),
		PopulatedFields:  populated,
		CompletionRate:   completionRate,
		MissingFields:    missing,
		Counters:         counters,
		ConditionalNotes: notes,
	}
}
