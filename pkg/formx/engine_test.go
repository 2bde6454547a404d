package formx_test

import (
	"testing"

	"github.com/Nawaf-TBE/Pillbot/pkg/formx"
)

func TestRunSimpleRules_LastAppliedWins(t *testing.T) {
	form := formx.FormData{
		"trigger":  &formx.FormFieldRecord{Value: formx.StringValue("yes")},
		"priority": &formx.FormFieldRecord{Value: formx.Missing()},
	}

	rules := []formx.ConditionalRule{
		{
			Name:      "first",
			Condition: formx.Condition{Type: formx.ConditionEquals, Field: "trigger", Value: "yes"},
			Actions:   []formx.Action{{Type: formx.ActionSetValue, Field: "priority", Value: "Low"}},
		},
		{
			Name:      "second",
			Condition: formx.Condition{Type: formx.ConditionEquals, Field: "trigger", Value: "yes"},
			Actions:   []formx.Action{{Type: formx.ActionSetValue, Field: "priority", Value: "High"}},
		},
	}

	counters := formx.Counters{}
	notes := []string{}
	formx.RunSimpleRules(rules, form, &counters, &notes)

	if got := form["priority"].Value.Text(); got != "High" {
		t.Fatalf("expected later rule's value to win, got %q", got)
	}
	if counters.RulesEvaluated != 2 || counters.RulesTriggered != 2 {
		t.Fatalf("expected 2/2 evaluated/triggered, got %d/%d",
			counters.RulesEvaluated, counters.RulesTriggered)
	}
	if counters.ConditionalValuesSet != 2 {
		t.Fatalf("expected both set_value applications counted, got %d",
			counters.ConditionalValuesSet)
	}
}

func TestRunSimpleRules_SingleForwardPass(t *testing.T) {
	// the first rule populates the field the second rule's condition reads;
	// the second rule must see the mutation, but the first rule is never
	// re-evaluated after later mutation
	form := formx.FormData{
		"stage":  &formx.FormFieldRecord{Value: formx.StringValue("start")},
		"result": &formx.FormFieldRecord{Value: formx.Missing()},
	}

	rules := []formx.ConditionalRule{
		{
			Name:      "advance",
			Condition: formx.Condition{Type: formx.ConditionEquals, Field: "stage", Value: "start"},
			Actions:   []formx.Action{{Type: formx.ActionSetValue, Field: "stage", Value: "done"}},
		},
		{
			Name:      "observe",
			Condition: formx.Condition{Type: formx.ConditionEquals, Field: "stage", Value: "done"},
			Actions:   []formx.Action{{Type: formx.ActionSetValue, Field: "result", Value: "saw-mutation"}},
		},
	}

	counters := formx.Counters{}
	notes := []string{}
	formx.RunSimpleRules(rules, form, &counters, &notes)

	if form["result"].Value.Text() != "saw-mutation" {
		t.Fatal("later rule must observe earlier rule's mutation")
	}
	if counters.RulesEvaluated != 2 {
		t.Fatalf("expected exactly one evaluation per rule, got %d", counters.RulesEvaluated)
	}
}

func TestRunSimpleRules_UntriggeredRuleAppliesNothing(t *testing.T) {
	form := formx.FormData{
		"f": &formx.FormFieldRecord{Value: formx.StringValue("")},
	}

	rules := []formx.ConditionalRule{{
		Name:      "blank-never-triggers",
		Condition: formx.Condition{Type: formx.ConditionNotEmpty, Field: "f"},
		Actions:   []formx.Action{{Type: formx.ActionMakeRequired, Field: "f"}},
	}}

	counters := formx.Counters{}
	notes := []string{}
	formx.RunSimpleRules(rules, form, &counters, &notes)

	if form["f"].Required {
		t.Fatal("untriggered rule must not mutate the form")
	}
	if counters.RulesEvaluated != 1 || counters.RulesTriggered != 0 {
		t.Fatalf("expected 1/0 evaluated/triggered, got %d/%d",
			counters.RulesEvaluated, counters.RulesTriggered)
	}
}
