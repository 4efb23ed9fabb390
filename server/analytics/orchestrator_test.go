package analytics

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/amanjaiman/habit-server/store"
)

type fakeSelector struct {
	userIDs []int32
	err     error
}

func (f *fakeSelector) ListPremiumUserIDs(context.Context) ([]int32, error) {
	return f.userIDs, f.err
}

type fakeStorage struct {
	habits    map[int32][]*store.Habit
	groups    map[int32][]*store.Group
	created   []*store.Analytics
	createErr map[int32]error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		habits:    map[int32][]*store.Habit{},
		groups:    map[int32][]*store.Group{},
		createErr: map[int32]error{},
	}
}

func (f *fakeStorage) ListHabits(_ context.Context, find *store.FindHabit) ([]*store.Habit, error) {
	return f.habits[*find.CreatorID], nil
}

func (f *fakeStorage) ListGroups(_ context.Context, find *store.FindGroup) ([]*store.Group, error) {
	return f.groups[*find.MemberID], nil
}

func (f *fakeStorage) CreateAnalytics(_ context.Context, create *store.Analytics) (*store.Analytics, error) {
	if err := f.createErr[create.UserID]; err != nil {
		return nil, err
	}
	f.created = append(f.created, create)
	return create, nil
}

// fakeSource returns fixed insights; patternsErr simulates one failing
// section.
type fakeSource struct {
	calls       int
	patternsErr error
}

func (f *fakeSource) AggregateKeyInsights(context.Context, []*HabitForAnalytics) ([]KeyInsight, error) {
	f.calls++
	return []KeyInsight{{Title: "Aggregate"}}, nil
}

func (f *fakeSource) IndividualHabitKeyInsights(_ context.Context, habit *HabitForAnalytics) ([]KeyInsight, error) {
	f.calls++
	return []KeyInsight{{Title: "Individual " + habit.Name}}, nil
}

func (f *fakeSource) SuccessFailurePatterns(_ context.Context, _ []*HabitForAnalytics, name string) ([]SuccessFailurePattern, error) {
	f.calls++
	if f.patternsErr != nil {
		return []SuccessFailurePattern{}, f.patternsErr
	}
	return []SuccessFailurePattern{{Title: "Pattern " + name, Success: true}}, nil
}

func (f *fakeSource) ActionableRecommendations(_ context.Context, habit *HabitForAnalytics) ([]ActionableRecommendation, error) {
	f.calls++
	return []ActionableRecommendation{{Title: "Recommend " + habit.Name}}, nil
}

func (f *fakeSource) CorrelationInsights(_ context.Context, _ []*HabitForAnalytics, name string) ([]CorrelationInsight, error) {
	f.calls++
	return []CorrelationInsight{{CorrelatingHabit: name}}, nil
}

func fixedNow() time.Time {
	return time.Date(2024, 1, 8, 5, 0, 0, 0, time.UTC)
}

func testOrchestrator(storage Storage, selector PremiumSelector, source InsightSource) *Orchestrator {
	return NewOrchestrator(storage, selector, source, NewCallLimiter(1000), Options{
		LookbackDays: 3,
		Now:          fixedNow,
	})
}

func TestGenerateAllSkipsUserWithoutHabits(t *testing.T) {
	storage := newFakeStorage()
	source := &fakeSource{}
	o := testOrchestrator(storage, &fakeSelector{userIDs: []int32{1}}, source)

	report, err := o.GenerateAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Users)
	require.Equal(t, 1, report.Skipped)
	require.Equal(t, 0, report.Snapshots)
	require.Equal(t, 0, report.Calls)
	require.Equal(t, 0, source.calls)
	require.Empty(t, storage.created)
}

func TestGenerateAllSkipsUserWithoutHistory(t *testing.T) {
	storage := newFakeStorage()
	storage.habits[1] = []*store.Habit{{Name: "Exercise", Type: store.HabitTypeBoolean}}
	source := &fakeSource{}
	o := testOrchestrator(storage, &fakeSelector{userIDs: []int32{1}}, source)

	report, err := o.GenerateAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Skipped)
	require.Equal(t, 0, source.calls)
}

func TestGenerateAllProducesSnapshot(t *testing.T) {
	storage := newFakeStorage()
	storage.habits[1] = []*store.Habit{{
		Name: "Exercise",
		Type: store.HabitTypeBoolean,
		Completions: map[string]store.CompletionValue{
			"2024-01-06": store.BoolValue(true),
		},
	}}
	source := &fakeSource{}
	o := testOrchestrator(storage, &fakeSelector{userIDs: []int32{1}}, source)

	report, err := o.GenerateAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Snapshots)
	require.Equal(t, 0, report.Degraded)
	// One aggregate plus four per-habit calls.
	require.Equal(t, 5, report.Calls)
	require.Len(t, storage.created, 1)
	require.Equal(t, int32(1), storage.created[0].UserID)
	require.Equal(t, fixedNow().Unix(), storage.created[0].PublishedTs)

	var snapshot Snapshot
	require.NoError(t, json.Unmarshal([]byte(storage.created[0].Payload), &snapshot))
	require.Len(t, snapshot.KeyInsights, 1)
	require.Len(t, snapshot.IndividualHabitKeyInsights["Exercise"], 1)
	require.Len(t, snapshot.SuccessFailurePatterns["Exercise"], 1)
	require.Len(t, snapshot.ActionableRecommendations["Exercise"], 1)
	require.Len(t, snapshot.CorrelationInsights["Exercise"], 1)
}

func TestGenerateAllDegradesOnFailedSection(t *testing.T) {
	storage := newFakeStorage()
	storage.habits[1] = []*store.Habit{{
		Name: "Exercise",
		Type: store.HabitTypeBoolean,
		Completions: map[string]store.CompletionValue{
			"2024-01-06": store.BoolValue(true),
		},
	}}
	source := &fakeSource{patternsErr: errors.New("model unavailable")}
	o := testOrchestrator(storage, &fakeSelector{userIDs: []int32{1}}, source)

	report, err := o.GenerateAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Snapshots)
	require.Equal(t, 1, report.Degraded)
	require.Equal(t, 0, report.Failed)

	var snapshot Snapshot
	require.NoError(t, json.Unmarshal([]byte(storage.created[0].Payload), &snapshot))
	// Failed section is present and empty; the rest is populated.
	require.Contains(t, snapshot.SuccessFailurePatterns, "Exercise")
	require.Empty(t, snapshot.SuccessFailurePatterns["Exercise"])
	require.Len(t, snapshot.IndividualHabitKeyInsights["Exercise"], 1)
}

func TestGenerateAllIsolatesUserFailures(t *testing.T) {
	storage := newFakeStorage()
	for _, userID := range []int32{1, 2} {
		storage.habits[userID] = []*store.Habit{{
			Name: "Exercise",
			Type: store.HabitTypeBoolean,
			Completions: map[string]store.CompletionValue{
				"2024-01-06": store.BoolValue(true),
			},
		}}
	}
	storage.createErr[1] = errors.New("disk full")
	source := &fakeSource{}
	o := testOrchestrator(storage, &fakeSelector{userIDs: []int32{1, 2}}, source)

	report, err := o.GenerateAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Failed)
	require.Equal(t, 1, report.Snapshots)
	require.Len(t, storage.created, 1)
	require.Equal(t, int32(2), storage.created[0].UserID)
}

func TestGenerateAllSelectorError(t *testing.T) {
	o := testOrchestrator(newFakeStorage(), &fakeSelector{err: errors.New("db down")}, &fakeSource{})
	_, err := o.GenerateAll(context.Background())
	require.Error(t, err)
}

func TestGenerateAllGroupHabits(t *testing.T) {
	storage := newFakeStorage()
	storage.groups[1] = []*store.Group{{
		Name:    "Crew",
		Members: []int32{1},
		Habits: []*store.GroupHabit{{
			Name: "Run",
			Type: store.HabitTypeBoolean,
			Completions: []store.GroupCompletion{
				{UserID: 1, Date: "2024-01-06", Value: store.BoolValue(true)},
			},
		}},
	}}
	source := &fakeSource{}
	o := testOrchestrator(storage, &fakeSelector{userIDs: []int32{1}}, source)

	report, err := o.GenerateAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Snapshots)

	var snapshot Snapshot
	require.NoError(t, json.Unmarshal([]byte(storage.created[0].Payload), &snapshot))
	require.Contains(t, snapshot.IndividualHabitKeyInsights, "Run")
}
