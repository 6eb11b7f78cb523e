package mongo_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/curve/store"
	"github.com/xraph/curve/store/mongo"
	"github.com/xraph/curve/store/storetest"
)

// Set CURVE_TEST_MONGO_URI to a replica set (transactions need one) to run
// these tests. Each subtest uses its own database and drops it afterwards.
func TestConformance(t *testing.T) {
	uri := os.Getenv("CURVE_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("CURVE_TEST_MONGO_URI not set")
	}

	storetest.Run(t, func(t *testing.T) store.Store {
		ctx := context.Background()
		name := fmt.Sprintf("curve_test_%d", time.Now().UnixNano())
		s, err := mongo.Connect(ctx, uri, name)
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() {
			_ = mongodriver.Unwrap(s.DB()).Database().Drop(context.Background())
			_ = s.Close()
		})
		if err := s.Migrate(ctx); err != nil {
			t.Fatal(err)
		}
		return s
	})
}

func TestMigrationsAreReversible(t *testing.T) {
	for _, m := range mongo.Migrations.Migrations() {
		if m.Up == nil || m.Down == nil {
			t.Errorf("%s: up/down missing", m.Name)
		}
	}
}
