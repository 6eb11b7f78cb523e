package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the curve store (PostgreSQL).
var Migrations = migrate.NewGroup("curve")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_curve_config",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS curve_config (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS curve_config`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_curve_allowlist",
			Version: "20240101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS curve_allowlist (
    identity   TEXT PRIMARY KEY,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS curve_allowlist`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_curve_owners",
			Version: "20240101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				if _, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS curve_owners (
    seq        BIGSERIAL,
    address    TEXT PRIMARY KEY,
    first_name TEXT NOT NULL DEFAULT '',
    last_name  TEXT NOT NULL DEFAULT '',
    supply     NUMERIC(39, 0) NOT NULL DEFAULT 0 CHECK (supply >= 0),
    perks      JSONB NOT NULL DEFAULT '[]',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`); err != nil {
					return err
				}
				_, err := exec.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_curve_owners_seq ON curve_owners (seq)`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS curve_owners`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_curve_holdings",
			Version: "20240101000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				if _, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS curve_holdings (
    holder   TEXT NOT NULL,
    owner    TEXT NOT NULL REFERENCES curve_owners (address),
    acquired JSONB NOT NULL DEFAULT '[]',
    PRIMARY KEY (holder, owner)
)`); err != nil {
					return err
				}
				_, err := exec.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_curve_holdings_owner ON curve_holdings (owner)`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS curve_holdings`)
				return err
			},
		},
	)
}
