package analytics

import (
	"time"

	"github.com/amanjaiman/habit-server/store"
)

const dateLayout = "2006-01-02"

// Window returns the analytics lookback window for a run: days
// calendar dates ending yesterday. The partially-elapsed current day
// is always excluded.
func Window(days int, today time.Time) (start, end time.Time) {
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -days), day.AddDate(0, 0, -1)
}

// NormalizeHabit builds the dense, date-ascending series for one
// personal habit over the lookback window. Every date in the window is
// present: recorded values are overlaid onto type-aware defaults, and
// completions outside the window are discarded.
func NormalizeHabit(habit *store.Habit, days int, today time.Time) *HabitForAnalytics {
	series := fillSeries(habit.Type, days, today)
	overlay(series, func(date string) (store.CompletionValue, bool) {
		v, ok := habit.Completions[date]
		return v, ok
	})

	return &HabitForAnalytics{
		Name:        habit.Name,
		Category:    habit.Category,
		Type:        habit.Type,
		Config:      habit.Config,
		Completions: series,
	}
}

// NormalizeHabits normalizes each of a user's personal habits.
func NormalizeHabits(habits []*store.Habit, days int, today time.Time) []*HabitForAnalytics {
	normalized := make([]*HabitForAnalytics, 0, len(habits))
	for _, habit := range habits {
		normalized = append(normalized, NormalizeHabit(habit, days, today))
	}
	return normalized
}

// NormalizeGroupHabits normalizes the habits of every group the user
// belongs to, keeping only that user's completion tuples. qualify
// prefixes habit names with the group name, which keeps per-habit maps
// collision-free when a personal habit shares a name.
func NormalizeGroupHabits(groups []*store.Group, userID int32, days int, today time.Time, qualify bool) []*HabitForAnalytics {
	var normalized []*HabitForAnalytics
	for _, group := range groups {
		for _, habit := range group.Habits {
			// Collapse the shared tuple list to this user's daily values
			// before overlaying, so group habits enter the pipeline in
			// the same shape as personal ones.
			userCompletions := make(map[string]store.CompletionValue)
			for _, completion := range habit.Completions {
				if completion.UserID == userID {
					userCompletions[completion.Date] = completion.Value
				}
			}

			series := fillSeries(habit.Type, days, today)
			overlay(series, func(date string) (store.CompletionValue, bool) {
				v, ok := userCompletions[date]
				return v, ok
			})

			name := habit.Name
			if qualify {
				name = group.Name + " / " + habit.Name
			}
			normalized = append(normalized, &HabitForAnalytics{
				Name:        name,
				Category:    habit.Category,
				Type:        habit.Type,
				Config:      habit.Config,
				Completions: series,
			})
		}
	}
	return normalized
}

// HasAnyCompletions reports whether any habit carries recorded history
// for the user. A user without any is skipped entirely: no LLM calls,
// no snapshot.
func HasAnyCompletions(habits []*store.Habit, groups []*store.Group, userID int32) bool {
	for _, habit := range habits {
		if len(habit.Completions) > 0 {
			return true
		}
	}
	for _, group := range groups {
		for _, habit := range group.Habits {
			for _, completion := range habit.Completions {
				if completion.UserID == userID {
					return true
				}
			}
		}
	}
	return false
}

func fillSeries(habitType store.HabitType, days int, today time.Time) DateSeries {
	start, end := Window(days, today)
	defaultValue := store.DefaultValue(habitType)

	series := make(DateSeries, 0, days)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		series = append(series, DatePoint{Date: d.Format(dateLayout), Value: defaultValue})
	}
	return series
}

func overlay(series DateSeries, lookup func(date string) (store.CompletionValue, bool)) {
	for i := range series {
		if v, ok := lookup(series[i].Date); ok {
			series[i].Value = v
		}
	}
}
