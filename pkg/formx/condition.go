package formx

import (
	"regexp"
	"strings"

	"github.com/Nawaf-TBE/Pillbot/pkg/logx"
)

// EvaluateCondition evaluates one condition against the current form state.
// It never fails: unparsable numbers, invalid regular expressions and
// unknown condition types all evaluate to false.
func EvaluateCondition(cond Condition, form FormData) bool {
	record, ok := form[cond.Field]
	if !ok {
		return false
	}

	value := record.Value

	switch cond.Type {
	case ConditionEquals:
		// absent compares as empty string
		return value.Text() == cond.Value

	case ConditionNotEquals:
		return value.Text() != cond.Value

	case ConditionContains:
		if value.IsMissing() {
			return false
		}
		return strings.Contains(value.Text(), cond.Value)

	case ConditionNotEmpty:
		return !value.IsEmpty()

	case ConditionEmpty:
		return value.IsEmpty()

	case ConditionGreaterThan:
		actual, ok1 := value.Numeric()
		expected, ok2 := parseNumeric(cond.Value)
		return ok1 && ok2 && actual > expected

	case ConditionLessThan:
		actual, ok1 := value.Numeric()
		expected, ok2 := parseNumeric(cond.Value)
		return ok1 && ok2 && actual < expected

	case ConditionRegex:
		if value.IsMissing() {
			return false
		}
		re, err := regexp.Compile(cond.Value)
		if err != nil {
			logx.WithFields(logx.Fields{
				"field":   cond.Field,
				"pattern": cond.Value,
			}).WithError(err).Warn("Invalid regex pattern in condition")
			return false
		}
		return re.MatchString(value.Text())

	default:
		return false
	}
}

// parseNumeric parses a condition operand, stripping a trailing "%"
func parseNumeric(s string) (float64, bool) {
	return StringValue(s).Numeric()
}
