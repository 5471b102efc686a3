package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is a lenient JSON numeric field. It accepts numbers, numeric
// strings, empty strings and null; anything unparseable reads as absent.
type Number struct {
	raw string
	set bool
}

// UnmarshalJSON implements json.Unmarshaler. It never fails so that one bad
// field does not reject a whole template.
func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		if s = strings.TrimSpace(s); s == "" {
			return nil
		}
		n.raw, n.set = s, true
		return nil
	}
	n.raw, n.set = string(data), true
	return nil
}

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	if f, ok := n.Float(); ok {
		return json.Marshal(f)
	}
	return []byte("null"), nil
}

// NumberOf builds a Number from a float.
func NumberOf(f float64) Number {
	return Number{raw: strconv.FormatFloat(f, 'f', -1, 64), set: true}
}

// ParseNumber builds a Number from user-typed text. Blank text is absent.
func ParseNumber(s string) Number {
	if s = strings.TrimSpace(s); s == "" {
		return Number{}
	}
	return Number{raw: s, set: true}
}

// Present reports whether the field carried a non-null, non-empty value.
func (n Number) Present() bool {
	return n.set
}

// Float returns the value as a finite float.
func (n Number) Float() (float64, bool) {
	if !n.set {
		return 0, false
	}
	f, err := strconv.ParseFloat(n.raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Int returns the value truncated toward zero, so "10" and 10.7 both read as 10.
func (n Number) Int() (int, bool) {
	f, ok := n.Float()
	if !ok {
		return 0, false
	}
	f = math.Max(math.Min(math.Trunc(f), math.MaxInt32), math.MinInt32)
	return int(f), true
}

// ExerciseInput is an exercise as submitted by the manual form or the generator.
type ExerciseInput struct {
	Name   string `json:"name"`
	Sets   Number `json:"sets"`
	Reps   Number `json:"reps"`
	Rest   Number `json:"rest"`
	Weight Number `json:"weight"`
}

// WorkoutInput is a workout template as submitted by a creation collaborator.
type WorkoutInput struct {
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Exercises   []ExerciseInput `json:"exercises"`
}
