package analytics

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/amanjaiman/habit-server/store"
)

func TestWindow(t *testing.T) {
	today := time.Date(2024, 1, 4, 15, 30, 0, 0, time.UTC)
	start, end := Window(3, today)
	require.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), start)
	require.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), end)
}

func TestNormalizeHabitFillsGaps(t *testing.T) {
	habit := &store.Habit{
		Name: "Exercise",
		Type: store.HabitTypeBoolean,
		Completions: map[string]store.CompletionValue{
			"2024-01-01": store.BoolValue(true),
		},
	}
	today := time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)

	normalized := NormalizeHabit(habit, 3, today)
	require.Len(t, normalized.Completions, 3)
	require.Equal(t, "2024-01-01", normalized.Completions[0].Date)
	require.Equal(t, "2024-01-02", normalized.Completions[1].Date)
	require.Equal(t, "2024-01-03", normalized.Completions[2].Date)
	require.True(t, normalized.Completions[0].Value.Bool())
	require.False(t, normalized.Completions[1].Value.Bool())
	require.False(t, normalized.Completions[2].Value.Bool())

	buf, err := json.Marshal(normalized.Completions)
	require.NoError(t, err)
	require.JSONEq(t, `{"2024-01-01":true,"2024-01-02":false,"2024-01-03":false}`, string(buf))
}

func TestNormalizeHabitTruncatesOutsideWindow(t *testing.T) {
	habit := &store.Habit{
		Name: "Read",
		Type: store.HabitTypeBoolean,
		Completions: map[string]store.CompletionValue{
			"2023-12-25": store.BoolValue(true), // before the window
			"2024-01-04": store.BoolValue(true), // today, always excluded
			"2024-01-02": store.BoolValue(true),
		},
	}
	today := time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)

	normalized := NormalizeHabit(habit, 3, today)
	require.Len(t, normalized.Completions, 3)
	_, ok := normalized.Completions.Get("2023-12-25")
	require.False(t, ok)
	_, ok = normalized.Completions.Get("2024-01-04")
	require.False(t, ok)
	v, ok := normalized.Completions.Get("2024-01-02")
	require.True(t, ok)
	require.True(t, v.Bool())
}

func TestNormalizeHabitNumericDefaults(t *testing.T) {
	habit := &store.Habit{
		Name:        "Water",
		Type:        store.HabitTypeNumeric,
		Completions: map[string]store.CompletionValue{},
	}
	today := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)

	normalized := NormalizeHabit(habit, 2, today)
	buf, err := json.Marshal(normalized.Completions)
	require.NoError(t, err)
	require.JSONEq(t, `{"2024-01-01":0,"2024-01-02":0}`, string(buf))
}

func TestNormalizeHabitIdempotent(t *testing.T) {
	habit := &store.Habit{
		Name: "Meditate",
		Type: store.HabitTypeBoolean,
		Completions: map[string]store.CompletionValue{
			"2024-01-01": store.BoolValue(true),
			"2024-01-02": store.BoolValue(false),
			"2024-01-03": store.BoolValue(true),
		},
	}
	today := time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)

	first := NormalizeHabit(habit, 3, today)

	// Feed the dense series back through as if it had been stored.
	dense := &store.Habit{Name: habit.Name, Type: habit.Type, Completions: map[string]store.CompletionValue{}}
	for _, point := range first.Completions {
		dense.Completions[point.Date] = point.Value
	}
	second := NormalizeHabit(dense, 3, today)
	require.Equal(t, first.Completions, second.Completions)
}

func TestNormalizeGroupHabits(t *testing.T) {
	groups := []*store.Group{
		{
			Name:    "Morning Crew",
			Members: []int32{1, 2},
			Habits: []*store.GroupHabit{
				{
					Name: "Run",
					Type: store.HabitTypeBoolean,
					Completions: []store.GroupCompletion{
						{UserID: 1, Date: "2024-01-01", Value: store.BoolValue(true)},
						{UserID: 2, Date: "2024-01-02", Value: store.BoolValue(true)},
					},
				},
			},
		},
	}
	today := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)

	normalized := NormalizeGroupHabits(groups, 1, 2, today, false)
	require.Len(t, normalized, 1)
	require.Equal(t, "Run", normalized[0].Name)

	// Only user 1's tuples survive.
	buf, err := json.Marshal(normalized[0].Completions)
	require.NoError(t, err)
	require.JSONEq(t, `{"2024-01-01":true,"2024-01-02":false}`, string(buf))

	qualified := NormalizeGroupHabits(groups, 1, 2, today, true)
	require.Equal(t, "Morning Crew / Run", qualified[0].Name)
}

func TestHasAnyCompletions(t *testing.T) {
	require.False(t, HasAnyCompletions(nil, nil, 1))
	require.False(t, HasAnyCompletions([]*store.Habit{{Name: "Empty"}}, nil, 1))
	require.True(t, HasAnyCompletions([]*store.Habit{
		{Name: "Full", Completions: map[string]store.CompletionValue{"2024-01-01": store.BoolValue(true)}},
	}, nil, 1))

	groups := []*store.Group{
		{Habits: []*store.GroupHabit{
			{Completions: []store.GroupCompletion{{UserID: 2, Date: "2024-01-01", Value: store.BoolValue(true)}}},
		}},
	}
	require.False(t, HasAnyCompletions(nil, groups, 1))
	require.True(t, HasAnyCompletions(nil, groups, 2))
}
