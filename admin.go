package curve

import (
	"context"
	"fmt"
	"strconv"

	"lukechampine.com/uint128"

	"github.com/xraph/curve/owner"
	"github.com/xraph/curve/types"
)

// ──────────────────────────────────────────────────
// Allow-list and registration
// ──────────────────────────────────────────────────

// AllowJoin lets identity register as an owner. Only the administrator may
// call it.
func (c *Curve) AllowJoin(ctx context.Context, info Info, identity string) (*Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	resp, err := c.allowJoin(ctx, info, identity)
	if err != nil {
		return nil, c.reject(ctx, "allow_join", info.Sender, err)
	}
	return resp, nil
}

func (c *Curve) allowJoin(ctx context.Context, info Info, identity string) (*Response, error) {
	identity, err := requireIdentity("identity", identity)
	if err != nil {
		return nil, err
	}

	admin, err := c.store.GetAdministrator(ctx)
	if err != nil {
		return nil, err
	}
	if info.Sender != admin {
		return nil, fmt.Errorf("%w: %q is not the administrator", ErrUnauthorized, info.Sender)
	}

	if _, err := c.store.GetOwner(ctx, identity); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRegistered, identity)
	} else if !IsNotFound(err) {
		return nil, err
	}

	if err := c.store.Allow(ctx, identity); err != nil {
		return nil, err
	}

	c.plugins.EmitAllowListed(ctx, identity)
	c.logger.Debug("identity allow-listed", "identity", identity)

	return &Response{
		Events: []Event{newEvent(EventAllowListed, "identity", identity)},
	}, nil
}

// Register creates an owner for the sender, consuming its allow-list entry.
// The perk rules are fixed from here on.
func (c *Curve) Register(ctx context.Context, info Info, msg RegisterMsg) (*Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	resp, err := c.register(ctx, info, msg)
	if err != nil {
		return nil, c.reject(ctx, "register", info.Sender, err)
	}
	return resp, nil
}

func (c *Curve) register(ctx context.Context, info Info, msg RegisterMsg) (*Response, error) {
	address, err := requireIdentity("sender", info.Sender)
	if err != nil {
		return nil, err
	}

	// Registration state is checked before the message body.
	if _, err := c.store.GetOwner(ctx, address); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRegistered, address)
	} else if !IsNotFound(err) {
		return nil, err
	}
	allowed, err := c.store.IsAllowed(ctx, address)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s", ErrNotAllowListed, address)
	}

	if err := msg.Perks.Validate(); err != nil {
		return nil, err
	}

	o := &owner.Owner{
		Entity:    types.EntityAt(types.BlockTime(info.Time)),
		Address:   address,
		FirstName: msg.FirstName,
		LastName:  msg.LastName,
		Supply:    uint128.Zero,
		Perks:     msg.Perks.Clone(),
	}
	if err := c.store.RegisterOwner(ctx, o); err != nil {
		return nil, err
	}

	c.plugins.EmitOwnerRegistered(ctx, o)
	c.logger.Debug("owner registered",
		"owner", o.Address,
		"perks", len(o.Perks),
	)

	return &Response{
		Events: []Event{newEvent(EventOwnerRegistered,
			"owner", o.Address,
			"first_name", o.FirstName,
			"last_name", o.LastName,
			"perks", strconv.Itoa(len(o.Perks)),
		)},
	}, nil
}
