package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// User model related methods.
	CreateUser(ctx context.Context, create *User) (*User, error)
	ListUsers(ctx context.Context, find *FindUser) ([]*User, error)
	UpdateUser(ctx context.Context, update *UpdateUser) (*User, error)
	DeleteUser(ctx context.Context, delete *DeleteUser) error

	// Subscription model related methods.
	CreateSubscription(ctx context.Context, create *Subscription) (*Subscription, error)
	ListSubscriptions(ctx context.Context, find *FindSubscription) ([]*Subscription, error)
	UpdateSubscription(ctx context.Context, update *UpdateSubscription) (*Subscription, error)
	DeleteSubscription(ctx context.Context, delete *DeleteSubscription) error

	// Habit model related methods.
	CreateHabit(ctx context.Context, create *Habit) (*Habit, error)
	ListHabits(ctx context.Context, find *FindHabit) ([]*Habit, error)
	UpdateHabit(ctx context.Context, update *UpdateHabit) (*Habit, error)
	DeleteHabit(ctx context.Context, delete *DeleteHabit) error

	// Group model related methods.
	CreateGroup(ctx context.Context, create *Group) (*Group, error)
	ListGroups(ctx context.Context, find *FindGroup) ([]*Group, error)
	UpdateGroup(ctx context.Context, update *UpdateGroup) (*Group, error)
	DeleteGroup(ctx context.Context, delete *DeleteGroup) error

	// Analytics model related methods. Snapshots are append-only:
	// there is deliberately no update operation.
	CreateAnalytics(ctx context.Context, create *Analytics) (*Analytics, error)
	ListAnalytics(ctx context.Context, find *FindAnalytics) ([]*Analytics, error)
	DeleteAnalytics(ctx context.Context, delete *DeleteAnalytics) error
}
