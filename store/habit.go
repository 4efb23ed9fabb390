package store

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// HabitType is the kind of value a habit records each day.
type HabitType string

const (
	// HabitTypeBoolean habits record done/not-done.
	HabitTypeBoolean HabitType = "boolean"
	// HabitTypeNumeric habits record a measured quantity.
	HabitTypeNumeric HabitType = "numeric"
	// HabitTypeRating habits record a bounded score.
	HabitTypeRating HabitType = "rating"
)

// IsNumeric returns true for habit types whose completions are numbers.
func (t HabitType) IsNumeric() bool {
	return t == HabitTypeNumeric || t == HabitTypeRating
}

// CompletionValue is one recorded daily value for a habit. Boolean
// habits store true/false, numeric and rating habits store a number.
// The JSON encoding preserves the original shape: `true` vs `3.5`.
type CompletionValue struct {
	numeric bool
	b       bool
	n       float64
}

// BoolValue returns a boolean completion value.
func BoolValue(v bool) CompletionValue {
	return CompletionValue{b: v}
}

// NumberValue returns a numeric completion value.
func NumberValue(v float64) CompletionValue {
	return CompletionValue{numeric: true, n: v}
}

// DefaultValue returns the gap-fill value for a habit type: 0 for
// numeric and rating habits, false otherwise. Unknown types fall back
// to boolean defaulting; the historical data evolved from boolean-only
// records and that remains the safe interpretation.
func DefaultValue(t HabitType) CompletionValue {
	if t.IsNumeric() {
		return NumberValue(0)
	}
	return BoolValue(false)
}

// IsNumber reports whether the value holds a number.
func (v CompletionValue) IsNumber() bool {
	return v.numeric
}

// Bool returns the boolean value; false for numeric values.
func (v CompletionValue) Bool() bool {
	return !v.numeric && v.b
}

// Number returns the numeric value; 0 for boolean values.
func (v CompletionValue) Number() float64 {
	if v.numeric {
		return v.n
	}
	return 0
}

func (v CompletionValue) MarshalJSON() ([]byte, error) {
	if v.numeric {
		return json.Marshal(v.n)
	}
	return json.Marshal(v.b)
}

func (v *CompletionValue) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*v = BoolValue(b)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*v = NumberValue(n)
		return nil
	}
	return errors.Errorf("completion value must be a boolean or a number, got %s", string(data))
}

// HabitConfig holds type-specific settings. Numeric habits use Goal,
// Unit and HigherIsBetter; rating habits use Min, Max and a goal score.
type HabitConfig struct {
	Goal           *float64 `json:"goal,omitempty"`
	Unit           string   `json:"unit,omitempty"`
	HigherIsBetter *bool    `json:"higherIsBetter,omitempty"`
	Min            *int     `json:"min,omitempty"`
	Max            *int     `json:"max,omitempty"`
}

// Habit is a personal habit owned by one user. Completions map an ISO
// date (YYYY-MM-DD) to the value recorded that day.
type Habit struct {
	ID          int32
	UID         string
	CreatorID   int32
	Name        string
	Category    string
	Type        HabitType
	Config      *HabitConfig
	Completions map[string]CompletionValue
	CreatedTs   int64
}

// FindHabit is the find condition for habits.
type FindHabit struct {
	ID        *int32
	UID       *string
	CreatorID *int32
}

// UpdateHabit is the update request for a habit. Nil fields are left unchanged.
type UpdateHabit struct {
	ID          int32
	Name        *string
	Category    *string
	Config      *HabitConfig
	Completions map[string]CompletionValue
}

// DeleteHabit is the delete request for a habit.
type DeleteHabit struct {
	ID int32
}
