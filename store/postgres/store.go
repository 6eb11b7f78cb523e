// Package postgres implements the curve store on PostgreSQL via Grove ORM.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"lukechampine.com/uint128"

	"github.com/xraph/grove"
	"github.com/xraph/grove/driver"
	"github.com/xraph/grove/drivers/pgdriver"
	_ "github.com/xraph/grove/drivers/pgdriver/pgmigrate"
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

// uniqueViolation is the SQLSTATE for a duplicate key.
const uniqueViolation = "23505"

// Store implements store.Store using PostgreSQL via Grove ORM.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// Connect opens a pool for dsn and verifies it.
func Connect(ctx context.Context, dsn string) (*Store, error) {
	pgdb := pgdriver.New()
	if err := pgdb.Open(ctx, dsn, driver.WithPoolSize(20)); err != nil {
		return nil, fmt.Errorf("curve/postgres: open: %w", err)
	}
	db, err := grove.Open(pgdb)
	if err != nil {
		_ = pgdb.Close() //nolint:errcheck // open error is more useful
		return nil, fmt.Errorf("curve/postgres: open: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		_ = db.Close() //nolint:errcheck // ping error is more useful
		return nil, fmt.Errorf("curve/postgres: ping database: %w", err)
	}
	return New(db), nil
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("%w: postgres: create migration executor: %w", curve.ErrMigrationFailed, err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("%w: postgres: %w", curve.ErrMigrationFailed, err)
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
	err := s.pg.NewSelect(m).
		Where("key = $1", adminKey).
		Scan(ctx)
	if isNoRows(err) {
		return "", curve.ErrNotInitialized
	}
	return m.Value, err
}

func (s *Store) SetAdministrator(ctx context.Context, admin string) error {
	res, err := s.pg.NewInsert(&configModel{Key: adminKey, Value: admin, CreatedAt: time.Now().UTC()}).
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
	_, err := s.pg.NewInsert(&allowModel{Identity: identity, CreatedAt: time.Now().UTC()}).
		OnConflict("(identity) DO NOTHING").
		Exec(ctx)
	return err
}

func (s *Store) IsAllowed(ctx context.Context, identity string) (bool, error) {
	n, err := s.pg.NewSelect(new(allowModel)).
		Where("identity = $1", identity).
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
			Where("address = $1", m.Address).
			Count(ctx)
		if err != nil {
			return err
		}
		if exists > 0 {
			return fmt.Errorf("%w: %s", curve.ErrAlreadyRegistered, m.Address)
		}

		res, err := tx.NewDelete((*allowModel)(nil)).
			Where("identity = $1", m.Address).
			Exec(ctx)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return fmt.Errorf("%w: %s", curve.ErrNotAllowListed, m.Address)
		}

		if _, err := tx.NewInsert(m).Exec(ctx); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %s", curve.ErrAlreadyRegistered, m.Address)
			}
			return err
		}
		return nil
	})
}

func (s *Store) GetOwner(ctx context.Context, address string) (*owner.Owner, error) {
	m, err := ownerOf(ctx, s.pg, address, false)
	if err != nil {
		return nil, err
	}
	return fromOwnerModel(m)
}

func (s *Store) GetSupply(ctx context.Context, address string) (uint128.Uint128, error) {
	m, err := ownerOf(ctx, s.pg, address, false)
	if err != nil {
		return uint128.Zero, err
	}
	return types.ParseAmount(m.Supply)
}

func (s *Store) ListOwners(ctx context.Context, opts owner.ListOpts) ([]*owner.Owner, error) {
	query := `SELECT ` + ownerColumns + ` FROM curve_owners ORDER BY seq OFFSET $1`
	args := []any{opts.Offset}
	if opts.Limit > 0 {
		query += ` LIMIT $2`
		args = append(args, opts.Limit)
	}

	var models []ownerModel
	if err := s.pg.NewRaw(query, args...).Scan(ctx, &models); err != nil {
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
	return holdingOf(ctx, s.pg, holder, ownerAddr)
}

func (s *Store) ListHoldings(ctx context.Context, ownerAddr string) ([]*holding.Holding, error) {
	var models []holdingModel
	err := s.pg.NewSelect(&models).
		Where("owner = $1", ownerAddr).
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
		return setSupply(ctx, tx, ownerAddr, next)
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
		return setSupply(ctx, tx, ownerAddr, next)
	})
}

// ==================== Helpers ====================

// queries is the builder surface shared by the pool and a transaction.
type queries interface {
	NewSelect(model ...any) *pgdriver.SelectQuery
	NewInsert(model any) *pgdriver.InsertQuery
	NewUpdate(model any) *pgdriver.UpdateQuery
	NewDelete(model any) *pgdriver.DeleteQuery
	NewRaw(query string, args ...any) *pgdriver.RawQuery
}

func (s *Store) withTx(ctx context.Context, fn func(tx queries) error) error {
	tx, err := s.pg.BeginTxQuery(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback() //nolint:errcheck // original error is more useful
		return err
	}
	return tx.Commit()
}

// ownerOf loads an owner row; lock takes a row lock for the rest of the
// transaction.
func ownerOf(ctx context.Context, q queries, address string, lock bool) (*ownerModel, error) {
	query := `SELECT ` + ownerColumns + ` FROM curve_owners WHERE address = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	m := new(ownerModel)
	err := q.NewRaw(query, address).Scan(ctx, m)
	if isNoRows(err) {
		return nil, fmt.Errorf("%w: %s", curve.ErrOwnerNotFound, address)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// supplyAt locks the owner row and checks it still holds priced.
func supplyAt(ctx context.Context, q queries, address string, priced uint128.Uint128) (uint128.Uint128, error) {
	m, err := ownerOf(ctx, q, address, true)
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

func setSupply(ctx context.Context, q queries, address string, next uint128.Uint128) error {
	_, err := q.NewUpdate((*ownerModel)(nil)).
		Set("supply = $1::numeric", next.String()).
		Set("updated_at = $2", time.Now().UTC()).
		Where("address = $3", address).
		Exec(ctx)
	return err
}

func holdingOf(ctx context.Context, q queries, holder, ownerAddr string) (*holding.Holding, error) {
	m := new(holdingModel)
	err := q.NewSelect(m).
		Where("holder = $1", holder).
		Where("owner = $2", ownerAddr).
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
		Set("acquired = EXCLUDED.acquired").
		Exec(ctx)
	return err
}

// isNoRows reports an empty result from either pgx or database/sql.
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
