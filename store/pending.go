package store

import (
	"time"

	"github.com/amanjaiman/habit-server/store/cache"
)

// PendingCustomers correlates a payment provider's two-step callback
// sequence: the first callback carries a customer id and a user id,
// the second only the customer id. Entries expire so an abandoned
// checkout cannot leak into a later request. The table is an explicit
// injectable value rather than package-level state.
type PendingCustomers struct {
	cache *cache.Cache
}

// NewPendingCustomers creates a correlation table whose entries expire
// after ttl.
func NewPendingCustomers(ttl time.Duration) *PendingCustomers {
	return &PendingCustomers{
		cache: cache.New(cache.Config{
			DefaultTTL:      ttl,
			CleanupInterval: ttl,
			MaxItems:        10000,
		}),
	}
}

// Link records that customerID belongs to userID.
func (p *PendingCustomers) Link(customerID string, userID int32) {
	p.cache.Set(customerID, userID)
}

// Resolve returns the user linked to customerID and removes the entry.
func (p *PendingCustomers) Resolve(customerID string) (int32, bool) {
	v, ok := p.cache.Get(customerID)
	if !ok {
		return 0, false
	}
	p.cache.Delete(customerID)
	return v.(int32), true
}

// Close stops the table's cleanup goroutine.
func (p *PendingCustomers) Close() {
	p.cache.Close()
}
