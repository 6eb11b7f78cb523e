package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the curve store (SQLite).
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
    created_at TEXT NOT NULL
);`)
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
    created_at TEXT NOT NULL
);`)
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
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS curve_owners (
    seq        INTEGER PRIMARY KEY AUTOINCREMENT,
    address    TEXT NOT NULL UNIQUE,
    first_name TEXT NOT NULL DEFAULT '',
    last_name  TEXT NOT NULL DEFAULT '',
    supply     TEXT NOT NULL DEFAULT '0',
    perks      TEXT NOT NULL DEFAULT '[]',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`)
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
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS curve_holdings (
    holder   TEXT NOT NULL,
    owner    TEXT NOT NULL,
    acquired TEXT NOT NULL DEFAULT '[]',
    PRIMARY KEY (holder, owner)
);

CREATE INDEX IF NOT EXISTS idx_curve_holdings_owner ON curve_holdings (owner);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS curve_holdings`)
				return err
			},
		},
	)
}
