package analytics

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/amanjaiman/habit-server/server/ai"
)

// LLM is the structured-completion surface the generators need.
// *ai.Provider satisfies it; tests substitute a fake.
type LLM interface {
	StructuredCompletion(ctx context.Context, category ai.Category, systemPrompt, userPrompt, schemaName string, schema *ai.Schema) (string, error)
}

// Generator produces insight records from normalized habit data. Every
// operation degrades to an empty (non-nil) result plus an error on
// failure, so one bad call never takes down a whole run.
type Generator struct {
	llm LLM
}

// NewGenerator creates a new insight generator.
func NewGenerator(llm LLM) *Generator {
	return &Generator{llm: llm}
}

// AggregateKeyInsights generates up to 6 key insights across all of a
// user's habits.
func (g *Generator) AggregateKeyInsights(ctx context.Context, habits []*HabitForAnalytics) ([]KeyInsight, error) {
	payload, err := serializeHabits(habits)
	if err != nil {
		return []KeyInsight{}, errors.Wrap(err, "failed to serialize habit data")
	}

	start := time.Now()
	content, err := g.llm.StructuredCompletion(ctx, ai.CategoryAggregate, systemPrompt, aggregatePrompt(payload), "key_insights", keyInsightListSchema(6))
	if err != nil {
		slog.Warn("aggregate key insights failed", "error", err)
		return []KeyInsight{}, errors.Wrap(err, "aggregate key insights")
	}

	var parsed keyInsightList
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		slog.Warn("aggregate key insights returned malformed JSON", "error", err)
		return []KeyInsight{}, errors.Wrap(err, "failed to parse aggregate key insights")
	}
	slog.Debug("aggregate key insights generated", "count", len(parsed.KeyInsights), "latency", time.Since(start))
	return nonNil(parsed.KeyInsights), nil
}

// IndividualHabitKeyInsights generates up to 3 key insights for one habit.
func (g *Generator) IndividualHabitKeyInsights(ctx context.Context, habit *HabitForAnalytics) ([]KeyInsight, error) {
	payload, err := serializeHabit(habit)
	if err != nil {
		return []KeyInsight{}, errors.Wrap(err, "failed to serialize habit data")
	}

	content, err := g.llm.StructuredCompletion(ctx, ai.CategoryIndividual, systemPrompt, individualHabitPrompt(payload), "key_insights", keyInsightListSchema(3))
	if err != nil {
		slog.Warn("individual habit key insights failed", "habit", habit.Name, "error", err)
		return []KeyInsight{}, errors.Wrapf(err, "individual key insights for %q", habit.Name)
	}

	var parsed keyInsightList
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		slog.Warn("individual habit key insights returned malformed JSON", "habit", habit.Name, "error", err)
		return []KeyInsight{}, errors.Wrapf(err, "failed to parse individual key insights for %q", habit.Name)
	}
	return nonNil(parsed.KeyInsights), nil
}

// SuccessFailurePatterns generates up to 3 success and 3 failure
// patterns for the habit of interest, with the user's other habits
// available as context.
func (g *Generator) SuccessFailurePatterns(ctx context.Context, habits []*HabitForAnalytics, habitOfInterest string) ([]SuccessFailurePattern, error) {
	payload, err := serializeHabits(habits)
	if err != nil {
		return []SuccessFailurePattern{}, errors.Wrap(err, "failed to serialize habit data")
	}

	content, err := g.llm.StructuredCompletion(ctx, ai.CategoryPatterns, systemPrompt, successPatternsPrompt(payload, habitOfInterest), "success_failure_patterns", patternListSchema())
	if err != nil {
		slog.Warn("success/failure patterns failed", "habit", habitOfInterest, "error", err)
		return []SuccessFailurePattern{}, errors.Wrapf(err, "success/failure patterns for %q", habitOfInterest)
	}

	var parsed patternList
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		slog.Warn("success/failure patterns returned malformed JSON", "habit", habitOfInterest, "error", err)
		return []SuccessFailurePattern{}, errors.Wrapf(err, "failed to parse patterns for %q", habitOfInterest)
	}
	return nonNil(parsed.Patterns), nil
}

// ActionableRecommendations generates 1-3 recommendations for one habit.
func (g *Generator) ActionableRecommendations(ctx context.Context, habit *HabitForAnalytics) ([]ActionableRecommendation, error) {
	payload, err := serializeHabit(habit)
	if err != nil {
		return []ActionableRecommendation{}, errors.Wrap(err, "failed to serialize habit data")
	}

	content, err := g.llm.StructuredCompletion(ctx, ai.CategoryIndividual, systemPrompt, recommendationsPrompt(payload), "actionable_recommendations", recommendationListSchema())
	if err != nil {
		slog.Warn("actionable recommendations failed", "habit", habit.Name, "error", err)
		return []ActionableRecommendation{}, errors.Wrapf(err, "recommendations for %q", habit.Name)
	}

	var parsed recommendationList
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		slog.Warn("actionable recommendations returned malformed JSON", "habit", habit.Name, "error", err)
		return []ActionableRecommendation{}, errors.Wrapf(err, "failed to parse recommendations for %q", habit.Name)
	}
	return nonNil(parsed.Recommendations), nil
}

// CorrelationInsights relates the habit of interest to each of the
// user's other habits.
func (g *Generator) CorrelationInsights(ctx context.Context, habits []*HabitForAnalytics, habitOfInterest string) ([]CorrelationInsight, error) {
	payload, err := serializeHabits(habits)
	if err != nil {
		return []CorrelationInsight{}, errors.Wrap(err, "failed to serialize habit data")
	}

	content, err := g.llm.StructuredCompletion(ctx, ai.CategoryCorrelations, systemPrompt, correlationPrompt(payload, habitOfInterest), "correlation_insights", correlationListSchema())
	if err != nil {
		slog.Warn("correlation insights failed", "habit", habitOfInterest, "error", err)
		return []CorrelationInsight{}, errors.Wrapf(err, "correlations for %q", habitOfInterest)
	}

	var parsed correlationList
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		slog.Warn("correlation insights returned malformed JSON", "habit", habitOfInterest, "error", err)
		return []CorrelationInsight{}, errors.Wrapf(err, "failed to parse correlations for %q", habitOfInterest)
	}
	return nonNil(parsed.Correlations), nil
}

type keyInsightList struct {
	KeyInsights []KeyInsight `json:"key_insights"`
}

type patternList struct {
	Patterns []SuccessFailurePattern `json:"patterns"`
}

type recommendationList struct {
	Recommendations []ActionableRecommendation `json:"recommendations"`
}

type correlationList struct {
	Correlations []CorrelationInsight `json:"correlations"`
}

func keyInsightListSchema(maxItems int) *ai.Schema {
	return &ai.Schema{
		Type: "object",
		Properties: map[string]*ai.Schema{
			"key_insights": {
				Type:     "array",
				MaxItems: ai.Int(maxItems),
				Items: &ai.Schema{
					Type: "object",
					Properties: map[string]*ai.Schema{
						"title":        {Type: "string"},
						"description":  {Type: "string"},
						"explanation":  {Type: "string"},
						"score":        {Type: "integer", Minimum: ai.Float(0), Maximum: ai.Float(100)},
						"impact_score": {Type: "integer", Minimum: ai.Float(0), Maximum: ai.Float(100)},
						"confidence":   {Type: "integer", Minimum: ai.Float(0), Maximum: ai.Float(100)},
						"polarity":     {Type: "string", Enum: []string{"positive", "negative"}},
					},
					Required: []string{"title", "description", "explanation", "score", "impact_score", "confidence", "polarity"},
				},
			},
		},
		Required: []string{"key_insights"},
	}
}

func patternListSchema() *ai.Schema {
	return &ai.Schema{
		Type: "object",
		Properties: map[string]*ai.Schema{
			"patterns": {
				Type:     "array",
				MaxItems: ai.Int(6),
				Items: &ai.Schema{
					Type: "object",
					Properties: map[string]*ai.Schema{
						"title":       {Type: "string"},
						"description": {Type: "string"},
						"time_period": {Type: "string"},
						"confidence":  {Type: "integer", Minimum: ai.Float(0), Maximum: ai.Float(100)},
						"success":     {Type: "boolean"},
					},
					Required: []string{"title", "description", "time_period", "confidence", "success"},
				},
			},
		},
		Required: []string{"patterns"},
	}
}

func recommendationListSchema() *ai.Schema {
	return &ai.Schema{
		Type: "object",
		Properties: map[string]*ai.Schema{
			"recommendations": {
				Type:     "array",
				MinItems: ai.Int(1),
				MaxItems: ai.Int(3),
				Items: &ai.Schema{
					Type: "object",
					Properties: map[string]*ai.Schema{
						"title":           {Type: "string"},
						"description":     {Type: "string"},
						"expected_impact": {Type: "integer", Minimum: ai.Float(0), Maximum: ai.Float(100)},
					},
					Required: []string{"title", "description", "expected_impact"},
				},
			},
		},
		Required: []string{"recommendations"},
	}
}

func correlationListSchema() *ai.Schema {
	return &ai.Schema{
		Type: "object",
		Properties: map[string]*ai.Schema{
			"correlations": {
				Type: "array",
				Items: &ai.Schema{
					Type: "object",
					Properties: map[string]*ai.Schema{
						"correlating_habit": {Type: "string"},
						"insights":          {Type: "array", MinItems: ai.Int(1), MaxItems: ai.Int(2), Items: &ai.Schema{Type: "string"}},
						"recommendations":   {Type: "array", MinItems: ai.Int(1), MaxItems: ai.Int(2), Items: &ai.Schema{Type: "string"}},
					},
					Required: []string{"correlating_habit", "insights", "recommendations"},
				},
			},
		},
		Required: []string{"correlations"},
	}
}

func serializeHabits(habits []*HabitForAnalytics) (string, error) {
	buf, err := json.Marshal(map[string]any{"habits": habits})
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

func serializeHabit(habit *HabitForAnalytics) (string, error) {
	buf, err := json.Marshal(habit)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// nonNil keeps the empty-versus-absent distinction out of stored
// snapshots: a successful call with no findings is an empty list.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
