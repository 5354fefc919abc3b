package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Flex is a numeric field from an untrusted upstream payload. APIs in this
// corpus return numbers as JSON numbers, quoted strings, null, or garbage;
// Flex keeps the raw string form for display and a parsed value when one
// exists, so formatting can degrade to the literal instead of failing.
type Flex struct {
	Raw string
	Val float64
	OK  bool
}

func (f *Flex) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		*f = Flex{}
		return nil
	}
	if strings.HasPrefix(raw, "\"") {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*f = Flex{Raw: raw}
			return nil
		}
		*f = FlexFromString(s)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		*f = Flex{Raw: raw}
		return nil
	}
	*f = Flex{Raw: raw, Val: v, OK: true}
	return nil
}

func (f Flex) MarshalJSON() ([]byte, error) {
	if !f.OK {
		return json.Marshal(f.Raw)
	}
	return json.Marshal(f.Val)
}

// FlexFromString parses s as a float, keeping the original text either way.
func FlexFromString(s string) Flex {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return Flex{Raw: s}
	}
	return Flex{Raw: s, Val: v, OK: true}
}

// FlexFloat wraps a known-good float.
func FlexFloat(v float64) Flex {
	return Flex{Raw: strconv.FormatFloat(v, 'f', -1, 64), Val: v, OK: true}
}

// Or returns the parsed value or fallback when the field never parsed.
func (f Flex) Or(fallback float64) float64 {
	if f.OK {
		return f.Val
	}
	return fallback
}

// IsZero reports a field that was absent or empty.
func (f Flex) IsZero() bool {
	return !f.OK && f.Raw == ""
}
