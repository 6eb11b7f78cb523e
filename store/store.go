package store

import (
	"context"

	"github.com/xraph/curve/allowlist"
	"github.com/xraph/curve/holding"
	"github.com/xraph/curve/owner"
)

// Store is the unified persistence interface for the curve.
//
// Reads never fail for absence of a holding: GetHolding returns an empty
// holding. Every mutating method is atomic; a failed call leaves no partial
// write behind.
type Store interface {
	allowlist.Store
	owner.Store
	holding.Store

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
