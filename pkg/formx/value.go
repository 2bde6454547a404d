package formx

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Kind discriminates the variants of Value
type Kind int

const (
	KindMissing Kind = iota
	KindString
	KindNumber
	KindPercent
	KindBoolean
)

// Value is a tagged field value. Form fields mix free text, numbers,
// percentages and booleans; Value makes the coercion rules explicit instead
// of inspecting runtime types ad hoc.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
}

// Missing returns the absent value
func Missing() Value {
	return Value{kind: KindMissing}
}

// StringValue returns a string value
func StringValue(s string) Value {
	return Value{kind: KindString, str: s}
}

// NumberValue returns a numeric value
func NumberValue(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// PercentValue returns a percentage value; f is the percentage itself
// (10.2 for "10.2%"), not a fraction.
func PercentValue(f float64) Value {
	return Value{kind: KindPercent, num: f}
}

// BooleanValue returns a boolean value
func BooleanValue(b bool) Value {
	return Value{kind: KindBoolean, b: b}
}

// ValueFromAny coerces a decoded JSON value into a Value. Strings ending in
// "%" that parse as numbers become percentages.
func ValueFromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return Missing()
	case string:
		if strings.HasSuffix(strings.TrimSpace(t), "%") {
			trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(t), "%"))
			if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
				return PercentValue(f)
			}
		}
		return StringValue(t)
	case float64:
		return NumberValue(t)
	case int:
		return NumberValue(float64(t))
	case bool:
		return BooleanValue(t)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return Missing()
		}
		return StringValue(string(data))
	}
}

// Kind returns the variant tag
func (v Value) Kind() Kind {
	return v.kind
}

// IsMissing reports whether the value is absent
func (v Value) IsMissing() bool {
	return v.kind == KindMissing
}

// IsEmpty reports whether the value is absent, an empty string, or
// whitespace-only
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindMissing:
		return true
	case KindString:
		return strings.TrimSpace(v.str) == ""
	default:
		return false
	}
}

// Text renders the value as a string. Missing renders as the empty string so
// equality comparisons treat absent and empty alike.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindPercent:
		return strconv.FormatFloat(v.num, 'f', -1, 64) + "%"
	case KindBoolean:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

// Numeric returns the value as a float64. String values are parsed after
// stripping a trailing "%"; percent values yield the percentage itself.
func (v Value) Numeric() (float64, bool) {
	switch v.kind {
	case KindNumber, KindPercent:
		return v.num, true
	case KindString:
		trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v.str), "%"))
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// MarshalJSON renders Missing as null and keeps the natural JSON type for
// the other variants
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindMissing:
		return []byte("null"), nil
	case KindNumber:
		return json.Marshal(v.num)
	case KindBoolean:
		return json.Marshal(v.b)
	default:
		return json.Marshal(v.Text())
	}
}

// UnmarshalJSON is the inverse of MarshalJSON via ValueFromAny
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = ValueFromAny(raw)
	return nil
}
