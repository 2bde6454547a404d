package formx

// DefaultSetValueConfidence is used when a set_value action does not declare
// its own confidence.
const DefaultSetValueConfidence = 0.8

// ApplyAction applies one action to the form state. Counter increments track
// state changes, so re-applying an idempotent action leaves both the record
// and the counters untouched.
func ApplyAction(action Action, form FormData, counters *Counters, notes *[]string) {
	switch action.Type {
	case ActionMakeRequired:
		record := form[action.Field]
		if record == nil {
			return
		}
		if !record.Required || !record.ConditionalRequirement {
			counters.ConditionalRequirementsAdded++
		}
		record.Required = true
		record.ConditionalRequirement = true

	case ActionSetValue:
		record := form[action.Field]
		if record == nil {
			return
		}
		confidence := DefaultSetValueConfidence
		if action.Confidence != nil {
			confidence = *action.Confidence
		}
		// last-applied-wins: a later rule's set_value overwrites freely
		record.Value = StringValue(action.Value)
		record.Confidence = confidence
		record.ConditionalValue = true
		counters.ConditionalValuesSet++

	case ActionAddNote:
		*notes = append(*notes, action.Note)
	}
}
