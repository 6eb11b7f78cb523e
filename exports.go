package curve

import (
	"github.com/xraph/curve/holding"
	"github.com/xraph/curve/owner"
	"github.com/xraph/curve/perk"
	"github.com/xraph/curve/pricing"
	"github.com/xraph/curve/types"
)

// Re-export common types for convenience so users don't have to import the
// leaf packages.

// Coin is re-exported from types package.
type Coin = types.Coin

// Entity is re-exported from types package.
type Entity = types.Entity

// Owner is re-exported from owner package.
type Owner = owner.Owner

// Holding is re-exported from holding package.
type Holding = holding.Holding

// Trade is re-exported from holding package.
type Trade = holding.Trade

// PerkRule is re-exported from perk package.
type PerkRule = perk.Rule

// PerkRules is re-exported from perk package.
type PerkRules = perk.Rules

// Claim is re-exported from perk package.
type Claim = perk.Claim

// Mode is re-exported from pricing package.
type Mode = pricing.Mode

// Re-export constructors and constants.
var (
	NewCoin   = types.NewCoin
	CoinOf    = types.CoinOf
	ZeroCoin  = types.Zero
	NewEntity = types.NewEntity
)

const (
	DefaultDenom = types.DefaultDenom
	ModeBuy      = pricing.Buy
	ModeSell     = pricing.Sell
)
