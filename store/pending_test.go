package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPendingCustomersResolve(t *testing.T) {
	p := NewPendingCustomers(time.Minute)
	defer p.Close()

	p.Link("cus_123", 42)

	userID, ok := p.Resolve("cus_123")
	require.True(t, ok)
	require.Equal(t, int32(42), userID)

	// Resolving consumes the entry.
	_, ok = p.Resolve("cus_123")
	require.False(t, ok)
}

func TestPendingCustomersExpiry(t *testing.T) {
	p := NewPendingCustomers(10 * time.Millisecond)
	defer p.Close()

	p.Link("cus_456", 7)
	time.Sleep(30 * time.Millisecond)

	_, ok := p.Resolve("cus_456")
	require.False(t, ok)
}

func TestPendingCustomersUnknown(t *testing.T) {
	p := NewPendingCustomers(time.Minute)
	defer p.Close()

	_, ok := p.Resolve("cus_missing")
	require.False(t, ok)
}
