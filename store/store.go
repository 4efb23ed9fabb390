package store

import (
	"context"
	"fmt"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"

	"github.com/amanjaiman/habit-server/internal/profile"
	"github.com/amanjaiman/habit-server/store/cache"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver

	// Cache settings
	cacheConfig cache.Config

	// Caches
	userCache *cache.Cache // cache for users
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	cacheConfig := cache.Config{
		DefaultTTL:      10 * time.Minute,
		CleanupInterval: 5 * time.Minute,
		MaxItems:        1000,
	}

	return &Store{
		driver:      driver,
		profile:     profile,
		cacheConfig: cacheConfig,
		userCache:   cache.New(cacheConfig),
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	s.userCache.Close()
	return s.driver.Close()
}

func userCacheKey(id int32) string {
	return fmt.Sprintf("user:%d", id)
}

func (s *Store) CreateUser(ctx context.Context, create *User) (*User, error) {
	if create.UID == "" {
		create.UID = shortuuid.New()
	}
	if create.CreatedTs == 0 {
		create.CreatedTs = time.Now().Unix()
	}
	user, err := s.driver.CreateUser(ctx, create)
	if err != nil {
		return nil, err
	}
	s.userCache.Set(userCacheKey(user.ID), user)
	return user, nil
}

// GetUser returns one user matching find, or nil when absent.
func (s *Store) GetUser(ctx context.Context, find *FindUser) (*User, error) {
	if find.ID != nil && find.UID == nil && find.Email == nil && find.IsPremium == nil {
		if v, ok := s.userCache.Get(userCacheKey(*find.ID)); ok {
			return v.(*User), nil
		}
	}
	users, err := s.driver.ListUsers(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	user := users[0]
	s.userCache.Set(userCacheKey(user.ID), user)
	return user, nil
}

func (s *Store) ListUsers(ctx context.Context, find *FindUser) ([]*User, error) {
	return s.driver.ListUsers(ctx, find)
}

func (s *Store) UpdateUser(ctx context.Context, update *UpdateUser) (*User, error) {
	user, err := s.driver.UpdateUser(ctx, update)
	if err != nil {
		return nil, err
	}
	s.userCache.Set(userCacheKey(user.ID), user)
	return user, nil
}

func (s *Store) DeleteUser(ctx context.Context, delete *DeleteUser) error {
	if err := s.driver.DeleteUser(ctx, delete); err != nil {
		return err
	}
	s.userCache.Delete(userCacheKey(delete.ID))
	return nil
}

func (s *Store) CreateSubscription(ctx context.Context, create *Subscription) (*Subscription, error) {
	if create.CreatedTs == 0 {
		create.CreatedTs = time.Now().Unix()
	}
	return s.driver.CreateSubscription(ctx, create)
}

func (s *Store) ListSubscriptions(ctx context.Context, find *FindSubscription) ([]*Subscription, error) {
	return s.driver.ListSubscriptions(ctx, find)
}

func (s *Store) UpdateSubscription(ctx context.Context, update *UpdateSubscription) (*Subscription, error) {
	return s.driver.UpdateSubscription(ctx, update)
}

func (s *Store) DeleteSubscription(ctx context.Context, delete *DeleteSubscription) error {
	return s.driver.DeleteSubscription(ctx, delete)
}

func (s *Store) CreateHabit(ctx context.Context, create *Habit) (*Habit, error) {
	if create.UID == "" {
		create.UID = shortuuid.New()
	}
	if create.CreatedTs == 0 {
		create.CreatedTs = time.Now().Unix()
	}
	if create.Type == "" {
		create.Type = HabitTypeBoolean
	}
	if create.Completions == nil {
		create.Completions = map[string]CompletionValue{}
	}
	return s.driver.CreateHabit(ctx, create)
}

func (s *Store) ListHabits(ctx context.Context, find *FindHabit) ([]*Habit, error) {
	return s.driver.ListHabits(ctx, find)
}

func (s *Store) UpdateHabit(ctx context.Context, update *UpdateHabit) (*Habit, error) {
	return s.driver.UpdateHabit(ctx, update)
}

func (s *Store) DeleteHabit(ctx context.Context, delete *DeleteHabit) error {
	return s.driver.DeleteHabit(ctx, delete)
}

// SetHabitCompletion records (or clears) the value for one date on a
// personal habit. A nil value removes the entry, matching the toggle
// semantics of the client API.
func (s *Store) SetHabitCompletion(ctx context.Context, habitID int32, date string, value *CompletionValue) (*Habit, error) {
	habits, err := s.driver.ListHabits(ctx, &FindHabit{ID: &habitID})
	if err != nil {
		return nil, err
	}
	if len(habits) == 0 {
		return nil, errors.Errorf("habit %d not found", habitID)
	}
	habit := habits[0]

	completions := make(map[string]CompletionValue, len(habit.Completions)+1)
	for k, v := range habit.Completions {
		completions[k] = v
	}
	if value == nil {
		delete(completions, date)
	} else {
		completions[date] = *value
	}

	return s.driver.UpdateHabit(ctx, &UpdateHabit{ID: habitID, Completions: completions})
}

func (s *Store) CreateGroup(ctx context.Context, create *Group) (*Group, error) {
	if create.UID == "" {
		create.UID = shortuuid.New()
	}
	if create.JoinCode == "" {
		create.JoinCode = shortuuid.New()[:8]
	}
	if create.CreatedTs == 0 {
		create.CreatedTs = time.Now().Unix()
	}
	return s.driver.CreateGroup(ctx, create)
}

func (s *Store) ListGroups(ctx context.Context, find *FindGroup) ([]*Group, error) {
	return s.driver.ListGroups(ctx, find)
}

func (s *Store) UpdateGroup(ctx context.Context, update *UpdateGroup) (*Group, error) {
	return s.driver.UpdateGroup(ctx, update)
}

func (s *Store) DeleteGroup(ctx context.Context, delete *DeleteGroup) error {
	return s.driver.DeleteGroup(ctx, delete)
}

func (s *Store) CreateAnalytics(ctx context.Context, create *Analytics) (*Analytics, error) {
	if create.PublishedTs == 0 {
		create.PublishedTs = time.Now().Unix()
	}
	return s.driver.CreateAnalytics(ctx, create)
}

func (s *Store) ListAnalytics(ctx context.Context, find *FindAnalytics) ([]*Analytics, error) {
	return s.driver.ListAnalytics(ctx, find)
}

func (s *Store) DeleteAnalytics(ctx context.Context, delete *DeleteAnalytics) error {
	return s.driver.DeleteAnalytics(ctx, delete)
}
