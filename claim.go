package curve

import (
	"context"
	"strconv"

	"github.com/xraph/curve/id"
	"github.com/xraph/curve/perk"
)

// ──────────────────────────────────────────────────
// Perks
// ──────────────────────────────────────────────────

// ClaimPerk checks whether the sender may redeem perk perkID of ownerAddr at
// info.Time. Eligibility is evaluated fresh on every call and nothing is
// written, so an eligible holder may claim the same perk repeatedly.
func (c *Curve) ClaimPerk(ctx context.Context, info Info, ownerAddr string, perkID uint64) (*Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	resp, err := c.claimPerk(ctx, info, ownerAddr, perkID)
	if err != nil {
		return nil, c.reject(ctx, "claim_perk", info.Sender, err)
	}
	return resp, nil
}

func (c *Curve) claimPerk(ctx context.Context, info Info, ownerAddr string, perkID uint64) (*Response, error) {
	claimer, err := requireIdentity("sender", info.Sender)
	if err != nil {
		return nil, err
	}
	if ownerAddr, err = requireIdentity("owner", ownerAddr); err != nil {
		return nil, err
	}

	o, err := c.store.GetOwner(ctx, ownerAddr)
	if err != nil {
		return nil, err
	}
	h, err := c.store.GetHolding(ctx, claimer, ownerAddr)
	if err != nil {
		return nil, err
	}

	res, err := perk.Evaluate(h.Acquired, o.Perks, perkID, info.Time)
	if err != nil {
		return nil, err
	}

	cl := &perk.Claim{
		ID:         id.NewClaimID(),
		Owner:      ownerAddr,
		Claimer:    claimer,
		PerkID:     perkID,
		Rule:       res.Rule,
		Held:       res.Held,
		Qualifying: res.Qualifying,
		Time:       info.Time,
	}

	c.plugins.EmitPerkClaimed(ctx, cl)
	c.logger.Debug("perk claimed",
		"owner", ownerAddr,
		"claimer", claimer,
		"perk_id", perkID,
		"qualifying", res.Qualifying,
	)

	return &Response{
		Claim: cl,
		Events: []Event{newEvent(EventPerkClaimed,
			"owner", ownerAddr,
			"claimer", claimer,
			"perk_id", strconv.FormatUint(perkID, 10),
		)},
	}, nil
}

// CheckPerk evaluates perk perkID for holder without emitting anything.
// An ineligible holder gets a Result with Eligible false and a nil error.
func (c *Curve) CheckPerk(ctx context.Context, holder, ownerAddr string, perkID, now uint64) (*perk.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	o, err := c.store.GetOwner(ctx, ownerAddr)
	if err != nil {
		return nil, err
	}
	h, err := c.store.GetHolding(ctx, holder, ownerAddr)
	if err != nil {
		return nil, err
	}

	res, err := perk.Evaluate(h.Acquired, o.Perks, perkID, now)
	if res != nil {
		return res, nil
	}
	return nil, err
}
