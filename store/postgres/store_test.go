package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/xraph/grove/drivers/pgdriver"

	"github.com/xraph/curve/store"
	"github.com/xraph/curve/store/postgres"
	"github.com/xraph/curve/store/storetest"
)

func TestMigrationsAreReversible(t *testing.T) {
	ms := postgres.Migrations.Migrations()
	if len(ms) != 4 {
		t.Fatalf("migrations = %d, want 4", len(ms))
	}
	for _, m := range ms {
		if m.Up == nil || m.Down == nil {
			t.Errorf("%s: up/down missing", m.Name)
		}
	}
}

// Set CURVE_TEST_POSTGRES_DSN to a throwaway database to run these tests.
// Each subtest drops and recreates the curve tables.
func TestConformance(t *testing.T) {
	dsn := os.Getenv("CURVE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("CURVE_TEST_POSTGRES_DSN not set")
	}

	storetest.Run(t, func(t *testing.T) store.Store {
		ctx := context.Background()
		s, err := postgres.Connect(ctx, dsn)
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { _ = s.Close() })
		_, err = pgdriver.Unwrap(s.DB()).NewRaw(
			`DROP TABLE IF EXISTS curve_holdings, curve_owners, curve_allowlist, curve_config, grove_migrations, grove_migration_locks`,
		).Exec(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if err := s.Migrate(ctx); err != nil {
			t.Fatal(err)
		}
		return s
	})
}
