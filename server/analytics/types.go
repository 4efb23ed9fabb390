// Package analytics derives natural-language insights about a user's
// habits from their completion history via an LLM, on a weekly cadence.
package analytics

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/amanjaiman/habit-server/store"
)

// KeyInsight is one scored observation about a habit or habit set.
type KeyInsight struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Explanation string `json:"explanation"`
	Score       int    `json:"score"`
	ImpactScore int    `json:"impact_score"`
	Confidence  int    `json:"confidence"`
	Polarity    string `json:"polarity"`
}

// SuccessFailurePattern is one recurring pattern in a habit's history.
type SuccessFailurePattern struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	TimePeriod  string `json:"time_period"`
	Confidence  int    `json:"confidence"`
	Success     bool   `json:"success"`
}

// ActionableRecommendation is one suggested behavior change.
type ActionableRecommendation struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	ExpectedImpact int    `json:"expected_impact"`
}

// CorrelationInsight relates the habit of interest to one other habit.
// CorrelatingHabit is a name reference, not an owning relationship.
type CorrelationInsight struct {
	CorrelatingHabit string   `json:"correlating_habit"`
	Insights         []string `json:"insights"`
	Recommendations  []string `json:"recommendations"`
}

// Snapshot is one immutable analytics bundle for a user. The JSON tags
// match the stored document shape consumed by clients.
type Snapshot struct {
	PublishedAt                time.Time                             `json:"publishedAt"`
	KeyInsights                []KeyInsight                          `json:"keyInsights"`
	IndividualHabitKeyInsights map[string][]KeyInsight               `json:"individualHabitKeyInsights"`
	SuccessFailurePatterns     map[string][]SuccessFailurePattern    `json:"successFailurePatterns"`
	ActionableRecommendations  map[string][]ActionableRecommendation `json:"actionableRecommendations"`
	CorrelationInsights        map[string][]CorrelationInsight       `json:"correlationInsights"`
}

// DatePoint is one day's value in a normalized series.
type DatePoint struct {
	Date  string
	Value store.CompletionValue
}

// DateSeries is a dense, date-ascending completion series. It marshals
// to a JSON object keyed by date, in series order, so prompt payloads
// are deterministic.
type DateSeries []DatePoint

func (s DateSeries) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, point := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(point.Date)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(point.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Get returns the value recorded for date, if present.
func (s DateSeries) Get(date string) (store.CompletionValue, bool) {
	for _, point := range s {
		if point.Date == date {
			return point.Value, true
		}
	}
	return store.CompletionValue{}, false
}

// HabitForAnalytics is the normalized, ephemeral view of one habit fed
// to the insight generators. It is reconstructed on every run and
// never persisted.
type HabitForAnalytics struct {
	Name        string             `json:"name"`
	Category    string             `json:"category,omitempty"`
	Type        store.HabitType    `json:"type"`
	Config      *store.HabitConfig `json:"config,omitempty"`
	Completions DateSeries         `json:"completions"`
}
