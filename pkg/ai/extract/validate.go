package extract

import (
	"fmt"
	"strings"
	"unicode"
)

// ValidationReport summarizes the quality of an extraction pass
type ValidationReport struct {
	TotalFields     int      `json:"total_fields"`
	PopulatedFields int      `json:"populated_fields"`
	EmptyFields     int      `json:"empty_fields"`
	Issues          []string `json:"validation_issues"`
	ConfidenceScore float64  `json:"confidence_score"`
}

// ValidateEntities drops empty fields and flags suspicious values. It returns
// the cleaned entity map and a report covering the whole pass.
func ValidateEntities(entities map[string]any) (map[string]any, ValidationReport) {
	report := ValidationReport{
		TotalFields: len(entities),
	}

	cleaned := make(map[string]any)

	for key, value := range entities {
		if isEmpty(value) {
			report.EmptyFields++
			continue
		}

		report.PopulatedFields++
		cleaned[key] = value

		str, ok := value.(string)
		if !ok {
			continue
		}

		switch {
		case key == "date_of_birth":
			if len(str) < 8 || len(str) > 12 {
				report.Issues = append(report.Issues,
					fmt.Sprintf("Suspicious date format for %s: %s", key, str))
			}
		case key == "member_id" || key == "patient_id" || key == "authorization_number":
			if len(str) < 3 {
				report.Issues = append(report.Issues,
					fmt.Sprintf("Suspiciously short ID for %s: %s", key, str))
			}
		case strings.Contains(key, "phone"):
			if countDigits(str) < 10 {
				report.Issues = append(report.Issues,
					fmt.Sprintf("Incomplete phone number for %s: %s", key, str))
			}
		}
	}

	if report.TotalFields > 0 {
		report.ConfidenceScore = float64(report.PopulatedFields) / float64(report.TotalFields)
	}

	return cleaned, report
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	default:
		return false
	}
}

func countDigits(s string) int {
	count := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			count++
		}
	}
	return count
}
