package curve

import (
	"context"
	"fmt"

	"lukechampine.com/uint128"

	"github.com/xraph/curve/holding"
	"github.com/xraph/curve/owner"
	"github.com/xraph/curve/pricing"
	"github.com/xraph/curve/types"
)

// ──────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────

// Price quotes the next unit of ownerAddr.
func (c *Curve) Price(ctx context.Context, ownerAddr string) (uint128.Uint128, error) {
	return c.quote(ctx, ownerAddr, pricing.Buy)
}

// SellPrice quotes the top unit of ownerAddr, before the sell fee.
func (c *Curve) SellPrice(ctx context.Context, ownerAddr string) (uint128.Uint128, error) {
	return c.quote(ctx, ownerAddr, pricing.Sell)
}

func (c *Curve) quote(ctx context.Context, ownerAddr string, mode pricing.Mode) (uint128.Uint128, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	supply, err := c.store.GetSupply(ctx, ownerAddr)
	if err != nil {
		return uint128.Zero, err
	}
	return pricing.Price(supply, mode)
}

// Supply returns the outstanding units of ownerAddr.
func (c *Curve) Supply(ctx context.Context, ownerAddr string) (uint128.Uint128, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.store.GetSupply(ctx, ownerAddr)
}

// Balance returns how many units of ownerAddr holder has. A pair that has
// never traded has a balance of zero.
func (c *Curve) Balance(ctx context.Context, holder, ownerAddr string) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	h, err := c.store.GetHolding(ctx, holder, ownerAddr)
	if err != nil {
		return 0, err
	}
	return h.Len(), nil
}

// Owner returns the registered owner at address.
func (c *Curve) Owner(ctx context.Context, address string) (*owner.Owner, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.store.GetOwner(ctx, address)
}

// Owners pages through registered owners.
func (c *Curve) Owners(ctx context.Context, opts owner.ListOpts) ([]*owner.Owner, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.store.ListOwners(ctx, opts)
}

// Holding returns holder's acquisition history for ownerAddr.
func (c *Curve) Holding(ctx context.Context, holder, ownerAddr string) (*holding.Holding, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.store.GetHolding(ctx, holder, ownerAddr)
}

// Audit recomputes the supply of ownerAddr from its holdings and returns
// ErrInvariantViolated if the two disagree.
func (c *Curve) Audit(ctx context.Context, ownerAddr string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	supply, err := c.store.GetSupply(ctx, ownerAddr)
	if err != nil {
		return err
	}
	holdings, err := c.store.ListHoldings(ctx, ownerAddr)
	if err != nil {
		return err
	}

	sum := uint128.Zero
	for _, h := range holdings {
		if sum, err = types.CheckedAdd(sum, uint128.From64(h.Len())); err != nil {
			return err
		}
	}
	if !sum.Equals(supply) {
		c.logger.Error("supply invariant violated",
			"owner", ownerAddr,
			"supply", supply.String(),
			"held", sum.String(),
		)
		return fmt.Errorf("%w: %s has supply %s but holders hold %s", ErrInvariantViolated, ownerAddr, supply, sum)
	}
	return nil
}

// AuditAll runs Audit for every registered owner.
func (c *Curve) AuditAll(ctx context.Context) error {
	owners, err := c.Owners(ctx, owner.ListOpts{})
	if err != nil {
		return err
	}
	for _, o := range owners {
		if err := c.Audit(ctx, o.Address); err != nil {
			return err
		}
	}
	return nil
}
