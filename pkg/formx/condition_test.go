package formx_test

import (
	"testing"

	"github.com/Nawaf-TBE/Pillbot/pkg/formx"
)

func formWith(field string, value formx.Value) formx.FormData {
	return formx.FormData{
		field: &formx.FormFieldRecord{Value: value},
	}
}

func TestEvaluateCondition_Equals(t *testing.T) {
	cases := []struct {
		name  string
		cond  formx.Condition
		value formx.Value
		want  bool
	}{
		{"exact match", formx.Condition{Type: formx.ConditionEquals, Field: "status", Value: "Approved"}, formx.StringValue("Approved"), true},
		{"case sensitive", formx.Condition{Type: formx.ConditionEquals, Field: "status", Value: "approved"}, formx.StringValue("Approved"), false},
		{"missing equals empty string", formx.Condition{Type: formx.ConditionEquals, Field: "status", Value: ""}, formx.Missing(), true},
		{"not_equals", formx.Condition{Type: formx.ConditionNotEquals, Field: "status", Value: "Denied"}, formx.StringValue("Approved"), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			form := formWith("status", tc.value)
			if got := formx.EvaluateCondition(tc.cond, form); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestEvaluateCondition_Contains(t *testing.T) {
	form := formWith("diagnosis", formx.StringValue("E11.9"))

	cond := formx.Condition{Type: formx.ConditionContains, Field: "diagnosis", Value: "E11"}
	if !formx.EvaluateCondition(cond, form) {
		t.Fatal("expected contains to match")
	}

	form["diagnosis"].Value = formx.Missing()
	if formx.EvaluateCondition(cond, form) {
		t.Fatal("contains on missing value must be false")
	}
}

func TestEvaluateCondition_NotEmptyNeverTriggersOnBlank(t *testing.T) {
	cond := formx.Condition{Type: formx.ConditionNotEmpty, Field: "f"}

	for _, v := range []formx.Value{
		formx.StringValue(""),
		formx.Missing(),
		formx.StringValue("   "),
	} {
		form := formWith("f", v)
		if formx.EvaluateCondition(cond, form) {
			t.Fatalf("not_empty must be false for %q", v.Text())
		}
	}

	form := formWith("f", formx.StringValue("x"))
	if !formx.EvaluateCondition(cond, form) {
		t.Fatal("not_empty must be true for non-blank value")
	}
}

func TestEvaluateCondition_Empty(t *testing.T) {
	cond := formx.Condition{Type: formx.ConditionEmpty, Field: "f"}

	form := formWith("f", formx.Missing())
	if !formx.EvaluateCondition(cond, form) {
		t.Fatal("empty must be true for missing value")
	}

	form["f"].Value = formx.StringValue("x")
	if formx.EvaluateCondition(cond, form) {
		t.Fatal("empty must be false for populated value")
	}
}

func TestEvaluateCondition_PercentComparison(t *testing.T) {
	form := formWith("a1c", formx.StringValue("10.2%"))

	gt := formx.Condition{Type: formx.ConditionGreaterThan, Field: "a1c", Value: "9.0%"}
	if !formx.EvaluateCondition(gt, form) {
		t.Fatal("10.2% must be greater than 9.0%")
	}

	lt := formx.Condition{Type: formx.ConditionLessThan, Field: "a1c", Value: "9.0%"}
	if formx.EvaluateCondition(lt, form) {
		t.Fatal("10.2% must not be less than 9.0%")
	}
}

func TestEvaluateCondition_NonNumericFailsClosed(t *testing.T) {
	form := formWith("a1c", formx.StringValue("not a number"))

	cond := formx.Condition{Type: formx.ConditionGreaterThan, Field: "a1c", Value: "9.0"}
	if formx.EvaluateCondition(cond, form) {
		t.Fatal("non-numeric comparison must evaluate to false")
	}

	form["a1c"].Value = formx.StringValue("10.2")
	cond.Value = "garbage"
	if formx.EvaluateCondition(cond, form) {
		t.Fatal("non-numeric operand must evaluate to false")
	}
}

func TestEvaluateCondition_Regex(t *testing.T) {
	form := formWith("code", formx.StringValue("ICD: E11.9 confirmed"))

	cond := formx.Condition{Type: formx.ConditionRegex, Field: "code", Value: `E1[0-9]`}
	if !formx.EvaluateCondition(cond, form) {
		t.Fatal("expected unanchored regex match")
	}

	// invalid pattern fails closed, never panics
	cond.Value = `[unclosed`
	if formx.EvaluateCondition(cond, form) {
		t.Fatal("invalid regex must evaluate to false")
	}
}

func TestEvaluateCondition_UnknownTypeAndField(t *testing.T) {
	form := formWith("f", formx.StringValue("x"))

	if formx.EvaluateCondition(formx.Condition{Type: "fuzzy_match", Field: "f", Value: "x"}, form) {
		t.Fatal("unknown condition type must evaluate to false")
	}
	if formx.EvaluateCondition(formx.Condition{Type: formx.ConditionEquals, Field: "absent", Value: "x"}, form) {
		t.Fatal("absent field must evaluate to false")
	}
}
