package test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amanjaiman/habit-server/store"
)

func TestUserStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	user, err := ts.CreateUser(ctx, &store.User{
		Email: "ada@example.com",
		Name:  "Ada",
	})
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	require.NotEmpty(t, user.UID)
	require.False(t, user.IsPremium)

	found, err := ts.GetUser(ctx, &store.FindUser{ID: &user.ID})
	require.NoError(t, err)
	require.Equal(t, user.Email, found.Email)

	premium := true
	updated, err := ts.UpdateUser(ctx, &store.UpdateUser{ID: user.ID, IsPremium: &premium})
	require.NoError(t, err)
	require.True(t, updated.IsPremium)

	premiumUsers, err := ts.ListUsers(ctx, &store.FindUser{IsPremium: &premium})
	require.NoError(t, err)
	require.Len(t, premiumUsers, 1)

	require.NoError(t, ts.DeleteUser(ctx, &store.DeleteUser{ID: user.ID}))
	missing, err := ts.GetUser(ctx, &store.FindUser{ID: &user.ID})
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestSubscriptionStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	user, err := ts.CreateUser(ctx, &store.User{Email: "sub@example.com"})
	require.NoError(t, err)

	subscription, err := ts.CreateSubscription(ctx, &store.Subscription{
		UserID:     user.ID,
		CustomerID: "cus_123",
		Status:     store.SubscriptionStatusActive,
	})
	require.NoError(t, err)

	status := store.SubscriptionStatusActive
	active, err := ts.ListSubscriptions(ctx, &store.FindSubscription{Status: &status})
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, user.ID, active[0].UserID)

	canceled := "canceled"
	_, err = ts.UpdateSubscription(ctx, &store.UpdateSubscription{ID: subscription.ID, Status: &canceled})
	require.NoError(t, err)

	active, err = ts.ListSubscriptions(ctx, &store.FindSubscription{Status: &status})
	require.NoError(t, err)
	require.Empty(t, active)
}

func TestHabitCompletions(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	user, err := ts.CreateUser(ctx, &store.User{Email: "habit@example.com"})
	require.NoError(t, err)

	goal := 8.0
	habit, err := ts.CreateHabit(ctx, &store.Habit{
		CreatorID: user.ID,
		Name:      "Water",
		Type:      store.HabitTypeNumeric,
		Config:    &store.HabitConfig{Goal: &goal, Unit: "glasses"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, habit.UID)

	value := store.NumberValue(6)
	_, err = ts.SetHabitCompletion(ctx, habit.ID, "2024-01-01", &value)
	require.NoError(t, err)

	boolHabit, err := ts.CreateHabit(ctx, &store.Habit{
		CreatorID: user.ID,
		Name:      "Exercise",
		Completions: map[string]store.CompletionValue{
			"2024-01-01": store.BoolValue(true),
		},
	})
	require.NoError(t, err)
	require.Equal(t, store.HabitTypeBoolean, boolHabit.Type)

	habits, err := ts.ListHabits(ctx, &store.FindHabit{CreatorID: &user.ID})
	require.NoError(t, err)
	require.Len(t, habits, 2)

	for _, h := range habits {
		switch h.Name {
		case "Water":
			v, ok := h.Completions["2024-01-01"]
			require.True(t, ok)
			require.True(t, v.IsNumber())
			require.Equal(t, 6.0, v.Number())
			require.Equal(t, 8.0, *h.Config.Goal)
		case "Exercise":
			v, ok := h.Completions["2024-01-01"]
			require.True(t, ok)
			require.True(t, v.Bool())
		}
	}

	// A nil value clears the date.
	_, err = ts.SetHabitCompletion(ctx, habit.ID, "2024-01-01", nil)
	require.NoError(t, err)
	habits, err = ts.ListHabits(ctx, &store.FindHabit{ID: &habit.ID})
	require.NoError(t, err)
	require.Empty(t, habits[0].Completions)
}

func TestGroupStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	admin, err := ts.CreateUser(ctx, &store.User{Email: "admin@example.com"})
	require.NoError(t, err)
	member, err := ts.CreateUser(ctx, &store.User{Email: "member@example.com"})
	require.NoError(t, err)

	group, err := ts.CreateGroup(ctx, &store.Group{
		Name:    "Morning Crew",
		AdminID: admin.ID,
		Members: []int32{admin.ID, member.ID},
		Habits: []*store.GroupHabit{{
			UID:  "run",
			Name: "Run",
			Type: store.HabitTypeBoolean,
			Completions: []store.GroupCompletion{
				{UserID: member.ID, Date: "2024-01-01", Value: store.BoolValue(true)},
			},
		}},
	})
	require.NoError(t, err)
	require.Len(t, group.JoinCode, 8)
	require.True(t, group.HasMember(member.ID))

	groups, err := ts.ListGroups(ctx, &store.FindGroup{MemberID: &member.ID})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Habits, 1)
	require.Equal(t, member.ID, groups[0].Habits[0].Completions[0].UserID)

	outsider := int32(9999)
	groups, err = ts.ListGroups(ctx, &store.FindGroup{MemberID: &outsider})
	require.NoError(t, err)
	require.Empty(t, groups)
}

func TestAnalyticsAppendOnly(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	user, err := ts.CreateUser(ctx, &store.User{Email: "analytics@example.com"})
	require.NoError(t, err)

	first, err := ts.CreateAnalytics(ctx, &store.Analytics{
		UserID:      user.ID,
		PublishedTs: 100,
		Payload:     `{"keyInsights":[]}`,
	})
	require.NoError(t, err)
	second, err := ts.CreateAnalytics(ctx, &store.Analytics{
		UserID:      user.ID,
		PublishedTs: 200,
		Payload:     `{"keyInsights":[]}`,
	})
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)

	list, err := ts.ListAnalytics(ctx, &store.FindAnalytics{UserID: &user.ID})
	require.NoError(t, err)
	require.Len(t, list, 2)
	// History is ordered oldest first.
	require.Equal(t, int64(100), list[0].PublishedTs)
	require.Equal(t, int64(200), list[1].PublishedTs)

	require.NoError(t, ts.DeleteAnalytics(ctx, &store.DeleteAnalytics{UserID: &user.ID}))
	list, err = ts.ListAnalytics(ctx, &store.FindAnalytics{UserID: &user.ID})
	require.NoError(t, err)
	require.Empty(t, list)
}
