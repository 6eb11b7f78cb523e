package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove/drivers/mongodriver"
	"github.com/xraph/grove/drivers/mongodriver/mongomigrate"
	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the curve store (MongoDB).
// Collections appear on first write; the migrations only manage indexes.
var Migrations = migrate.NewGroup("curve")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "index_curve_owners",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				return createIndexes(ctx, exec, colOwners, mongo.IndexModel{
					Keys:    bson.D{{Key: "created_at", Value: 1}},
					Options: options.Index().SetName("idx_curve_owners_created_at"),
				})
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				return dropIndex(ctx, exec, colOwners, "idx_curve_owners_created_at")
			},
		},
		&migrate.Migration{
			Name:    "index_curve_holdings",
			Version: "20240101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				return createIndexes(ctx, exec, colHoldings, mongo.IndexModel{
					Keys:    bson.D{{Key: "owner", Value: 1}, {Key: "holder", Value: 1}},
					Options: options.Index().SetName("idx_curve_holdings_owner_holder").SetUnique(true),
				})
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				return dropIndex(ctx, exec, colHoldings, "idx_curve_holdings_owner_holder")
			},
		},
	)
}

func database(exec migrate.Executor) (*mongodriver.MongoDB, error) {
	me, ok := exec.(*mongomigrate.Executor)
	if !ok {
		return nil, fmt.Errorf("curve/mongo: unexpected migration executor %T", exec)
	}
	return me.DB(), nil
}

func createIndexes(ctx context.Context, exec migrate.Executor, col string, models ...mongo.IndexModel) error {
	mdb, err := database(exec)
	if err != nil {
		return err
	}
	if _, err := mdb.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("%s indexes: %w", col, err)
	}
	return nil
}

func dropIndex(ctx context.Context, exec migrate.Executor, col, name string) error {
	mdb, err := database(exec)
	if err != nil {
		return err
	}
	return mdb.Collection(col).Indexes().DropOne(ctx, name)
}
