package ai

import "encoding/json"

// Schema implements json.Marshaler for OpenAI's JSON Schema format.
// Only the subset of keywords used by the insight contracts is modeled.
type Schema struct {
	Type                 string             `json:"type"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Items                *Schema            `json:"items,omitempty"`
	Required             []string           `json:"required,omitempty"`
	Enum                 []string           `json:"enum,omitempty"`
	Description          string             `json:"description,omitempty"`
	Minimum              *float64           `json:"minimum,omitempty"`
	Maximum              *float64           `json:"maximum,omitempty"`
	MinItems             *int               `json:"minItems,omitempty"`
	MaxItems             *int               `json:"maxItems,omitempty"`
	AdditionalProperties bool               `json:"additionalProperties"`
}

func (s *Schema) MarshalJSON() ([]byte, error) {
	type alias Schema
	return json.Marshal((*alias)(s))
}

// Float is a convenience for schema bound literals.
func Float(v float64) *float64 {
	return &v
}

// Int is a convenience for schema item-count literals.
func Int(v int) *int {
	return &v
}
