package analytics

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/amanjaiman/habit-server/server/ai"
	"github.com/amanjaiman/habit-server/store"
)

// fakeLLM returns a canned response per category, or an error.
type fakeLLM struct {
	responses map[ai.Category]string
	err       error
	calls     []ai.Category
}

func (f *fakeLLM) StructuredCompletion(_ context.Context, category ai.Category, _, _, _ string, _ *ai.Schema) (string, error) {
	f.calls = append(f.calls, category)
	if f.err != nil {
		return "", f.err
	}
	return f.responses[category], nil
}

func sampleHabit() *HabitForAnalytics {
	return &HabitForAnalytics{
		Name: "Exercise",
		Type: store.HabitTypeBoolean,
		Completions: DateSeries{
			{Date: "2024-01-01", Value: store.BoolValue(true)},
			{Date: "2024-01-02", Value: store.BoolValue(false)},
		},
	}
}

func TestAggregateKeyInsights(t *testing.T) {
	llm := &fakeLLM{responses: map[ai.Category]string{
		ai.CategoryAggregate: `{"key_insights":[{"title":"Consistency","description":"d","explanation":"e","score":80,"impact_score":70,"confidence":90,"polarity":"positive"}]}`,
	}}
	g := NewGenerator(llm)

	insights, err := g.AggregateKeyInsights(context.Background(), []*HabitForAnalytics{sampleHabit()})
	require.NoError(t, err)
	require.Len(t, insights, 1)
	require.Equal(t, "Consistency", insights[0].Title)
	require.Equal(t, 80, insights[0].Score)
	require.Equal(t, []ai.Category{ai.CategoryAggregate}, llm.calls)
}

func TestGeneratorFailureYieldsEmptyAndError(t *testing.T) {
	llm := &fakeLLM{err: errors.New("rate limited")}
	g := NewGenerator(llm)
	ctx := context.Background()
	habit := sampleHabit()

	insights, err := g.AggregateKeyInsights(ctx, []*HabitForAnalytics{habit})
	require.Error(t, err)
	require.NotNil(t, insights)
	require.Empty(t, insights)

	individual, err := g.IndividualHabitKeyInsights(ctx, habit)
	require.Error(t, err)
	require.NotNil(t, individual)
	require.Empty(t, individual)

	patterns, err := g.SuccessFailurePatterns(ctx, []*HabitForAnalytics{habit}, habit.Name)
	require.Error(t, err)
	require.NotNil(t, patterns)
	require.Empty(t, patterns)

	recommendations, err := g.ActionableRecommendations(ctx, habit)
	require.Error(t, err)
	require.NotNil(t, recommendations)
	require.Empty(t, recommendations)

	correlations, err := g.CorrelationInsights(ctx, []*HabitForAnalytics{habit}, habit.Name)
	require.Error(t, err)
	require.NotNil(t, correlations)
	require.Empty(t, correlations)
}

func TestGeneratorMalformedResponse(t *testing.T) {
	llm := &fakeLLM{responses: map[ai.Category]string{
		ai.CategoryAggregate: `not json`,
	}}
	g := NewGenerator(llm)

	insights, err := g.AggregateKeyInsights(context.Background(), []*HabitForAnalytics{sampleHabit()})
	require.Error(t, err)
	require.Empty(t, insights)
}

func TestSuccessFailurePatternsParsing(t *testing.T) {
	llm := &fakeLLM{responses: map[ai.Category]string{
		ai.CategoryPatterns: `{"patterns":[{"title":"Weekend dip","description":"d","time_period":"weekends","confidence":75,"success":false}]}`,
	}}
	g := NewGenerator(llm)

	patterns, err := g.SuccessFailurePatterns(context.Background(), []*HabitForAnalytics{sampleHabit()}, "Exercise")
	require.NoError(t, err)
	require.Len(t, patterns, 1)
	require.False(t, patterns[0].Success)
	require.Equal(t, "weekends", patterns[0].TimePeriod)
}

func TestRecommendationsUseIndividualCredential(t *testing.T) {
	llm := &fakeLLM{responses: map[ai.Category]string{
		ai.CategoryIndividual: `{"recommendations":[{"title":"Earlier alarm","description":"d","expected_impact":60}]}`,
	}}
	g := NewGenerator(llm)

	recommendations, err := g.ActionableRecommendations(context.Background(), sampleHabit())
	require.NoError(t, err)
	require.Len(t, recommendations, 1)
	require.Equal(t, []ai.Category{ai.CategoryIndividual}, llm.calls)
}

func TestCorrelationInsightsParsing(t *testing.T) {
	llm := &fakeLLM{responses: map[ai.Category]string{
		ai.CategoryCorrelations: `{"correlations":[{"correlating_habit":"Sleep","insights":["You exercise more after a good night's sleep."],"recommendations":["Protect your bedtime."]}]}`,
	}}
	g := NewGenerator(llm)

	correlations, err := g.CorrelationInsights(context.Background(), []*HabitForAnalytics{sampleHabit()}, "Exercise")
	require.NoError(t, err)
	require.Len(t, correlations, 1)
	require.Equal(t, "Sleep", correlations[0].CorrelatingHabit)
	require.Len(t, correlations[0].Insights, 1)
}
