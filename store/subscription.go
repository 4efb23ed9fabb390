package store

// SubscriptionStatusActive marks a subscription that currently grants
// premium access.
const SubscriptionStatusActive = "active"

// Subscription is one payment-provider subscription record. CustomerID
// is the provider-side customer identifier, kept opaque here.
type Subscription struct {
	ID                   int32
	UserID               int32
	CustomerID           string
	Status               string
	CurrentPeriodStartTs int64
	CurrentPeriodEndTs   int64
	CancelAtPeriodEnd    bool
	CreatedTs            int64
}

// FindSubscription is the find condition for subscriptions.
type FindSubscription struct {
	ID         *int32
	UserID     *int32
	CustomerID *string
	Status     *string
}

// UpdateSubscription is the update request for a subscription.
type UpdateSubscription struct {
	ID                   int32
	Status               *string
	CurrentPeriodStartTs *int64
	CurrentPeriodEndTs   *int64
	CancelAtPeriodEnd    *bool
}

// DeleteSubscription is the delete request for a subscription.
type DeleteSubscription struct {
	ID int32
}
