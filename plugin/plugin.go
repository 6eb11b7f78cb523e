// Package plugin provides an extensible plugin system for the curve engine.
// Plugins can hook into lifecycle and trade events to extend functionality.
package plugin

import (
	"context"

	"github.com/xraph/curve/holding"
	"github.com/xraph/curve/owner"
	"github.com/xraph/curve/perk"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the engine starts.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, c interface{}) error
}

// OnShutdown is called when the engine stops.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// OnAdministratorSet is called once, when the administrator is recorded.
type OnAdministratorSet interface {
	Plugin
	OnAdministratorSet(ctx context.Context, admin string) error
}

// ──────────────────────────────────────────────────
// Registration hooks
// ──────────────────────────────────────────────────

// OnAllowListed is called when the administrator allow-lists an identity.
type OnAllowListed interface {
	Plugin
	OnAllowListed(ctx context.Context, identity string) error
}

// OnOwnerRegistered is called when an allow-listed identity registers.
type OnOwnerRegistered interface {
	Plugin
	OnOwnerRegistered(ctx context.Context, o *owner.Owner) error
}

// ──────────────────────────────────────────────────
// Trade hooks
// ──────────────────────────────────────────────────

// OnSharesBought is called after a buy commits.
type OnSharesBought interface {
	Plugin
	OnSharesBought(ctx context.Context, t *holding.Trade) error
}

// OnSharesSold is called after a sell commits.
type OnSharesSold interface {
	Plugin
	OnSharesSold(ctx context.Context, t *holding.Trade) error
}

// ──────────────────────────────────────────────────
// Perk hooks
// ──────────────────────────────────────────────────

// OnPerkClaimed is called when a holder successfully claims a perk.
type OnPerkClaimed interface {
	Plugin
	OnPerkClaimed(ctx context.Context, c *perk.Claim) error
}

// ──────────────────────────────────────────────────
// Failure hooks
// ──────────────────────────────────────────────────

// OnCallRejected is called when an execute call fails. Nothing was written.
type OnCallRejected interface {
	Plugin
	OnCallRejected(ctx context.Context, op, sender string, err error) error
}
