// Package sqlite implements the curve store on SQLite via Grove ORM.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"lukechampine.com/uint128"

	"github.com/xraph/grove"
	"github.com/xraph/grove/driver"
	"github.com/xraph/grove/drivers/sqlitedriver"
	_ "github.com/xraph/grove/drivers/sqlitedriver/sqlitemigrate"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/curve"
	"github.com/xraph/curve/holding"
	"github.com/xraph/curve/owner"
	curvestore "github.com/xraph/curve/store"
	"github.com/xraph/curve/types"
)

// compile-time interface check
var _ curvestore.Store = (*Store)(nil)

const adminKey = "administrator"

// Store implements store.Store using SQLite via Grove ORM.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// Open opens (or creates) the database at path. The pool holds a single
// connection; SQLite admits one writer at a time anyway.
func Open(ctx context.Context, path string) (*Store, error) {
	sdb := sqlitedriver.New()
	if err := sdb.Open(ctx, path, driver.WithPoolSize(1)); err != nil {
		return nil, fmt.Errorf("curve/sqlite: open: %w", err)
	}
	db, err := grove.Open(sdb)
	if err != nil {
		_ = sdb.Close() //nolint:errcheck // open error is more useful
		return nil, fmt.Errorf("curve/sqlite: open: %w", err)
	}
	return New(db), nil
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("%w: sqlite: create migration executor: %w", curve.ErrMigrationFailed, err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("%w: sqlite: %w", curve.ErrMigrationFailed, err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Administrator / Allow-list ====================

func (s *Store) GetAdministrator(ctx context.Context) (string, error) {
	m := new(configModel)
	err := s.sdb.NewSelect(m).
		Where("key = ?", adminKey).
		Scan(ctx)
	if isNoRows(err) {
		return "", curve.ErrNotInitialized
	}
	return m.Value, err
}

func (s *Store) SetAdministrator(ctx context.Context, admin string) error {
	res, err := s.sdb.NewInsert(&configModel{Key: adminKey, Value: admin, CreatedAt: now()}).
		OnConflict("(key) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return curve.ErrAlreadyInitialized
	}
	return nil
}

func (s *Store) Allow(ctx context.Context, identity string) error {
	_, err := s.sdb.NewInsert(&allowModel{Identity: identity, CreatedAt: now()}).
		OnConflict("(identity) DO NOTHING").
		Exec(ctx)
	return err
}

func (s *Store) IsAllowed(ctx context.Context, identity string) (bool, error) {
	n, err := s.sdb.NewSelect(new(allowModel)).
		Where("identity = ?", identity).
		Count(ctx)
	return n > 0, err
}

// ==================== Owners ====================

func (s *Store) RegisterOwner(ctx context.Context, o *owner.Owner) error {
	m, err := toOwnerModel(o)
	if err != nil {
		return err
	}

	return s.withTx(ctx, func(tx queries) error {
		exists, err := tx.NewSelect(new(ownerModel)).
			Where("address = ?", m.Address).
			Count(ctx)
		if err != nil {
			return err
		}
		if exists > 0 {
			return fmt.Errorf("%w: %s", curve.ErrAlreadyRegistered, m.Address)
		}

		res, err := tx.NewDelete((*allowModel)(nil)).
			Where("identity = ?", m.Address).
			Exec(ctx)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return fmt.Errorf("%w: %s", curve.ErrNotAllowListed, m.Address)
		}

		_, err = tx.NewInsert(m).Exec(ctx)
		return err
	})
}

func (s *Store) GetOwner(ctx context.Context, address string) (*owner.Owner, error) {
	m, err := ownerOf(ctx, s.sdb, address)
	if err != nil {
		return nil, err
	}
	return fromOwnerModel(m)
}

func (s *Store) GetSupply(ctx context.Context, address string) (uint128.Uint128, error) {
	m, err := ownerOf(ctx, s.sdb, address)
	if err != nil {
		return uint128.Zero, err
	}
	return types.ParseAmount(m.Supply)
}

func (s *Store) ListOwners(ctx context.Context, opts owner.ListOpts) ([]*owner.Owner, error) {
	var models []ownerModel
	q := s.sdb.NewSelect(&models).OrderExpr("seq ASC")
	switch {
	case opts.Limit > 0:
		q = q.Limit(opts.Limit)
	case opts.Offset > 0:
		// SQLite only accepts OFFSET after a LIMIT.
		q = q.Limit(math.MaxInt)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
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
	return holdingOf(ctx, s.sdb, holder, ownerAddr)
}

func (s *Store) ListHoldings(ctx context.Context, ownerAddr string) ([]*holding.Holding, error) {
	var models []holdingModel
	err := s.sdb.NewSelect(&models).
		Where("owner = ?", ownerAddr).
		OrderExpr("holder ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*holding.Holding, 0, len(models))
	for i := range models {
		h, err := fromHoldingModel(&models[i])
		if err != nil {
			return nil, err
		}
		result = append(result, h)
	}
	return result, nil
}

func (s *Store) RecordPurchase(ctx context.Context, holder, ownerAddr string, at uint64, priced uint128.Uint128) error {
	return s.withTx(ctx, func(tx queries) error {
		supply, err := supplyAt(ctx, tx, ownerAddr, priced)
		if err != nil {
			return err
		}
		next, err := types.CheckedAdd(supply, uint128.From64(1))
		if err != nil {
			return err
		}

		h, err := holdingOf(ctx, tx, holder, ownerAddr)
		if err != nil {
			return err
		}
		h.Acquired = append(h.Acquired, at)

		if err := putHolding(ctx, tx, h); err != nil {
			return err
		}
		return setSupply(ctx, tx, ownerAddr, supply, next)
	})
}

func (s *Store) RecordSale(ctx context.Context, holder, ownerAddr string, priced uint128.Uint128) error {
	return s.withTx(ctx, func(tx queries) error {
		supply, err := supplyAt(ctx, tx, ownerAddr, priced)
		if err != nil {
			return err
		}

		h, err := holdingOf(ctx, tx, holder, ownerAddr)
		if err != nil {
			return err
		}
		if h.Len() == 0 {
			return fmt.Errorf("%w: %s holds no shares of %s", curve.ErrInsufficientHoldings, holder, ownerAddr)
		}
		next, err := types.CheckedSub(supply, uint128.From64(1))
		if err != nil {
			return err
		}
		h.Acquired = h.Acquired[:len(h.Acquired)-1]

		if err := putHolding(ctx, tx, h); err != nil {
			return err
		}
		return setSupply(ctx, tx, ownerAddr, supply, next)
	})
}

// ==================== Helpers ====================

// queries is the builder surface shared by the pool and a transaction.
type queries interface {
	NewSelect(model ...any) *sqlitedriver.SelectQuery
	NewInsert(model any) *sqlitedriver.InsertQuery
	NewUpdate(model any) *sqlitedriver.UpdateQuery
	NewDelete(model any) *sqlitedriver.DeleteQuery
}

func (s *Store) withTx(ctx context.Context, fn func(tx queries) error) error {
	tx, err := s.sdb.BeginTxQuery(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback() //nolint:errcheck // original error is more useful
		return err
	}
	return tx.Commit()
}

func ownerOf(ctx context.Context, q queries, address string) (*ownerModel, error) {
	m := new(ownerModel)
	err := q.NewSelect(m).
		Where("address = ?", address).
		Scan(ctx)
	if isNoRows(err) {
		return nil, fmt.Errorf("%w: %s", curve.ErrOwnerNotFound, address)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func supplyAt(ctx context.Context, q queries, address string, priced uint128.Uint128) (uint128.Uint128, error) {
	m, err := ownerOf(ctx, q, address)
	if err != nil {
		return uint128.Zero, err
	}
	supply, err := types.ParseAmount(m.Supply)
	if err != nil {
		return uint128.Zero, err
	}
	if !supply.Equals(priced) {
		return uint128.Zero, fmt.Errorf("%w: %s supply is %s, priced at %s", curve.ErrConflict, address, supply, priced)
	}
	return supply, nil
}

// setSupply writes next only if the row still holds prev.
func setSupply(ctx context.Context, q queries, address string, prev, next uint128.Uint128) error {
	res, err := q.NewUpdate((*ownerModel)(nil)).
		Set("supply = ?", next.String()).
		Set("updated_at = ?", now()).
		Where("address = ?", address).
		Where("supply = ?", prev.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n != 1 {
		return fmt.Errorf("%w: %s", curve.ErrConflict, address)
	}
	return nil
}

func holdingOf(ctx context.Context, q queries, holder, ownerAddr string) (*holding.Holding, error) {
	m := new(holdingModel)
	err := q.NewSelect(m).
		Where("holder = ?", holder).
		Where("owner = ?", ownerAddr).
		Scan(ctx)
	if isNoRows(err) {
		return holding.Empty(holder, ownerAddr), nil
	}
	if err != nil {
		return nil, err
	}
	return fromHoldingModel(m)
}

func putHolding(ctx context.Context, q queries, h *holding.Holding) error {
	m, err := toHoldingModel(h)
	if err != nil {
		return err
	}
	_, err = q.NewInsert(m).
		OnConflict("(holder, owner) DO UPDATE").
		Set("acquired = excluded.acquired").
		Exec(ctx)
	return err
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func now() string {
	return formatTime(time.Now())
}
