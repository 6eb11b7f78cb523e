// Package mongo implements the curve store on MongoDB via Grove ORM.
// Mutations that touch more than one document run inside a session
// transaction, so the server must be a replica set or sharded cluster.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"lukechampine.com/uint128"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/curve"
	"github.com/xraph/curve/holding"
	"github.com/xraph/curve/owner"
	curvestore "github.com/xraph/curve/store"
	"github.com/xraph/curve/types"
)

// Collection name constants.
const (
	colOwners   = "curve_owners"
	colHoldings = "curve_holdings"
)

const adminKey = "administrator"

// compile-time interface check
var _ curvestore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// Connect dials uri and returns a store on database name.
func Connect(ctx context.Context, uri, name string) (*Store, error) {
	mdb := mongodriver.New()
	if err := mdb.Open(ctx, uri, mongodriver.WithDatabase(name)); err != nil {
		_ = mdb.Close() //nolint:errcheck // open error is more useful
		return nil, fmt.Errorf("curve/mongo: open: %w", err)
	}
	db, err := grove.Open(mdb)
	if err != nil {
		_ = mdb.Close() //nolint:errcheck // open error is more useful
		return nil, fmt.Errorf("curve/mongo: open: %w", err)
	}
	return New(db), nil
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all curve collections using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.mdb)
	if err != nil {
		return fmt.Errorf("%w: mongo: create migration executor: %w", curve.ErrMigrationFailed, err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("%w: mongo: %w", curve.ErrMigrationFailed, err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close disconnects the client.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Administrator / Allow-list ====================

func (s *Store) GetAdministrator(ctx context.Context) (string, error) {
	var m configModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": adminKey}).
		Scan(ctx)
	if isNoDocuments(err) {
		return "", curve.ErrNotInitialized
	}
	return m.Value, err
}

func (s *Store) SetAdministrator(ctx context.Context, admin string) error {
	_, err := s.mdb.NewInsert(&configModel{
		Key:       adminKey,
		Value:     admin,
		CreatedAt: time.Now().UTC(),
	}).Exec(ctx)
	if mongo.IsDuplicateKeyError(err) {
		return curve.ErrAlreadyInitialized
	}
	return err
}

func (s *Store) Allow(ctx context.Context, identity string) error {
	_, err := s.mdb.NewUpdate((*allowModel)(nil)).
		Filter(bson.M{"_id": identity}).
		SetUpdate(bson.M{"$setOnInsert": bson.M{"created_at": time.Now().UTC()}}).
		Upsert().
		Exec(ctx)
	return err
}

func (s *Store) IsAllowed(ctx context.Context, identity string) (bool, error) {
	n, err := s.mdb.NewFind(new(allowModel)).
		Filter(bson.M{"_id": identity}).
		Count(ctx)
	return n > 0, err
}

// ==================== Owners ====================

func (s *Store) RegisterOwner(ctx context.Context, o *owner.Owner) error {
	m := toOwnerModel(o)
	return s.withTx(ctx, func(ctx context.Context) error {
		n, err := s.mdb.NewFind(new(ownerModel)).
			Filter(bson.M{"_id": m.Address}).
			Count(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: %s", curve.ErrAlreadyRegistered, m.Address)
		}

		res, err := s.mdb.NewDelete((*allowModel)(nil)).
			Filter(bson.M{"_id": m.Address}).
			Exec(ctx)
		if err != nil {
			return err
		}
		if res.DeletedCount() == 0 {
			return fmt.Errorf("%w: %s", curve.ErrNotAllowListed, m.Address)
		}

		if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return fmt.Errorf("%w: %s", curve.ErrAlreadyRegistered, m.Address)
			}
			return err
		}
		return nil
	})
}

func (s *Store) GetOwner(ctx context.Context, address string) (*owner.Owner, error) {
	m, err := s.ownerModel(ctx, address)
	if err != nil {
		return nil, err
	}
	return fromOwnerModel(m)
}

func (s *Store) GetSupply(ctx context.Context, address string) (uint128.Uint128, error) {
	m, err := s.ownerModel(ctx, address)
	if err != nil {
		return uint128.Zero, err
	}
	return types.ParseAmount(m.Supply)
}

func (s *Store) ListOwners(ctx context.Context, opts owner.ListOpts) ([]*owner.Owner, error) {
	var models []ownerModel
	q := s.mdb.NewFind(&models).
		Sort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*owner.Owner, 0, len(models))
	for i := range models {
		o, err := fromOwnerModel(&models[i])
		if err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	return result, nil
}

// ==================== Holdings ====================

func (s *Store) GetHolding(ctx context.Context, holder, ownerAddr string) (*holding.Holding, error) {
	var m holdingModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": holdingID(holder, ownerAddr)}).
		Scan(ctx)
	if isNoDocuments(err) {
		return holding.Empty(holder, ownerAddr), nil
	}
	if err != nil {
		return nil, err
	}
	return fromHoldingModel(&m), nil
}

func (s *Store) ListHoldings(ctx context.Context, ownerAddr string) ([]*holding.Holding, error) {
	var models []holdingModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"owner": ownerAddr}).
		Sort(bson.D{{Key: "holder", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*holding.Holding, 0, len(models))
	for i := range models {
		result = append(result, fromHoldingModel(&models[i]))
	}
	return result, nil
}

func (s *Store) RecordPurchase(ctx context.Context, holder, ownerAddr string, at uint64, priced uint128.Uint128) error {
	return s.withTx(ctx, func(ctx context.Context) error {
		if _, err := s.bumpSupply(ctx, ownerAddr, priced, types.CheckedAdd); err != nil {
			return err
		}

		_, err := s.mdb.NewUpdate((*holdingModel)(nil)).
			Filter(bson.M{"_id": holdingID(holder, ownerAddr)}).
			SetUpdate(bson.M{
				"$push":        bson.M{"acquired": at},
				"$setOnInsert": bson.M{"holder": holder, "owner": ownerAddr},
			}).
			Upsert().
			Exec(ctx)
		return err
	})
}

func (s *Store) RecordSale(ctx context.Context, holder, ownerAddr string, priced uint128.Uint128) error {
	return s.withTx(ctx, func(ctx context.Context) error {
		res, err := s.mdb.NewUpdate((*holdingModel)(nil)).
			Filter(bson.M{"_id": holdingID(holder, ownerAddr), "acquired.0": bson.M{"$exists": true}}).
			SetUpdate(bson.M{"$pop": bson.M{"acquired": 1}}).
			Exec(ctx)
		if err != nil {
			return err
		}
		if res.MatchedCount() == 0 {
			// Distinguish an unknown owner from an empty holding.
			if _, err := s.ownerModel(ctx, ownerAddr); err != nil {
				return err
			}
			return fmt.Errorf("%w: %s holds no shares of %s", curve.ErrInsufficientHoldings, holder, ownerAddr)
		}

		_, err = s.bumpSupply(ctx, ownerAddr, priced, types.CheckedSub)
		return err
	})
}

// ==================== Helpers ====================

func (s *Store) ownerModel(ctx context.Context, address string) (*ownerModel, error) {
	var m ownerModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": address}).
		Scan(ctx)
	if isNoDocuments(err) {
		return nil, fmt.Errorf("%w: %s", curve.ErrOwnerNotFound, address)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// bumpSupply applies op(supply, 1) to the owner, but only if the stored
// supply still equals priced.
func (s *Store) bumpSupply(
	ctx context.Context,
	address string,
	priced uint128.Uint128,
	op func(a, b uint128.Uint128) (uint128.Uint128, error),
) (uint128.Uint128, error) {
	next, err := op(priced, uint128.From64(1))
	if err != nil {
		return uint128.Zero, err
	}

	res, err := s.mdb.NewUpdate((*ownerModel)(nil)).
		Filter(bson.M{"_id": address, "supply": priced.String()}).
		Set("supply", next.String()).
		Set("updated_at", time.Now().UTC()).
		Exec(ctx)
	if err != nil {
		return uint128.Zero, err
	}
	if res.MatchedCount() == 0 {
		m, err := s.ownerModel(ctx, address)
		if err != nil {
			return uint128.Zero, err
		}
		return uint128.Zero, fmt.Errorf("%w: %s supply is %s, priced at %s", curve.ErrConflict, address, m.Supply, priced)
	}
	return next, nil
}

// withTx runs fn in a session transaction; the builders pick the session
// up from ctx.
func (s *Store) withTx(ctx context.Context, fn func(ctx context.Context) error) error {
	sess, err := s.mdb.Client().StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		return nil, fn(ctx)
	})
	return err
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
