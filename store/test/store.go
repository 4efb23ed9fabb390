package test

import (
	"context"
	"testing"

	"github.com/amanjaiman/habit-server/internal/profile"
	"github.com/amanjaiman/habit-server/internal/version"
	"github.com/amanjaiman/habit-server/store"
	"github.com/amanjaiman/habit-server/store/db"
)

// NewTestingStore opens a fresh sqlite-backed store in a temporary
// directory and applies the schema.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	dir := t.TempDir()
	testProfile := &profile.Profile{
		Mode:                  "dev",
		Data:                  dir,
		Driver:                "sqlite",
		Version:               version.GetCurrentVersion("dev"),
		AnalyticsLookbackDays: 14,
		PremiumPolicy:         "subscription",
	}
	if err := testProfile.Validate(); err != nil {
		t.Fatalf("failed to validate profile: %v", err)
	}

	dbDriver, err := db.NewDBDriver(testProfile)
	if err != nil {
		t.Fatalf("failed to create db driver: %v", err)
	}

	ts := store.New(dbDriver, testProfile)
	if err := ts.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	t.Cleanup(func() {
		if err := ts.Close(); err != nil {
			t.Logf("failed to close store: %v", err)
		}
	})
	return ts
}
