package analytics

import (
	"context"

	"github.com/pkg/errors"

	"github.com/amanjaiman/habit-server/store"
)

// PremiumSelector decides which users receive an analytics run.
type PremiumSelector interface {
	ListPremiumUserIDs(ctx context.Context) ([]int32, error)
}

// SubscriptionSelector selects users holding an active subscription.
// Multiple active subscriptions for one user yield the user once.
type SubscriptionSelector struct {
	store *store.Store
}

// NewSubscriptionSelector creates a selector backed by subscription rows.
func NewSubscriptionSelector(s *store.Store) *SubscriptionSelector {
	return &SubscriptionSelector{store: s}
}

func (s *SubscriptionSelector) ListPremiumUserIDs(ctx context.Context) ([]int32, error) {
	status := store.SubscriptionStatusActive
	subscriptions, err := s.store.ListSubscriptions(ctx, &store.FindSubscription{Status: &status})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list active subscriptions")
	}

	seen := make(map[int32]bool, len(subscriptions))
	userIDs := make([]int32, 0, len(subscriptions))
	for _, subscription := range subscriptions {
		if seen[subscription.UserID] {
			continue
		}
		seen[subscription.UserID] = true
		userIDs = append(userIDs, subscription.UserID)
	}
	return userIDs, nil
}

// PremiumFlagSelector selects users whose premium flag is set,
// regardless of subscription state. Useful for deployments that manage
// entitlements out of band.
type PremiumFlagSelector struct {
	store *store.Store
}

// NewPremiumFlagSelector creates a selector backed by the user premium flag.
func NewPremiumFlagSelector(s *store.Store) *PremiumFlagSelector {
	return &PremiumFlagSelector{store: s}
}

func (s *PremiumFlagSelector) ListPremiumUserIDs(ctx context.Context) ([]int32, error) {
	premium := true
	users, err := s.store.ListUsers(ctx, &store.FindUser{IsPremium: &premium})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list premium users")
	}

	userIDs := make([]int32, 0, len(users))
	for _, user := range users {
		userIDs = append(userIDs, user.ID)
	}
	return userIDs, nil
}
