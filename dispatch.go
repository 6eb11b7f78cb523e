package curve

import (
	"context"
	"fmt"

	"lukechampine.com/uint128"
)

// Execute dispatches a state-changing call.
func (c *Curve) Execute(ctx context.Context, info Info, msg ExecuteMsg) (*Response, error) {
	switch m := msg.(type) {
	case AllowJoinMsg:
		return c.AllowJoin(ctx, info, m.Identity)
	case RegisterMsg:
		return c.Register(ctx, info, m)
	case BuyMsg:
		return c.Buy(ctx, info, m.Owner)
	case SellMsg:
		return c.Sell(ctx, info, m.Owner)
	case ClaimPerkMsg:
		return c.ClaimPerk(ctx, info, m.Owner, m.PerkID)
	default:
		return nil, fmt.Errorf("%w: unknown execute message %T", ErrInvalidInput, msg)
	}
}

// Query dispatches a read-only call.
func (c *Curve) Query(ctx context.Context, msg QueryMsg) (*NumResp, error) {
	var (
		n   uint128.Uint128
		err error
	)
	switch m := msg.(type) {
	case GetPrice:
		n, err = c.Price(ctx, m.Owner)
	case GetSellPrice:
		n, err = c.SellPrice(ctx, m.Owner)
	case GetSupply:
		n, err = c.Supply(ctx, m.Owner)
	case GetBalance:
		var held uint64
		held, err = c.Balance(ctx, m.Holder, m.Owner)
		n = uint128.From64(held)
	default:
		return nil, fmt.Errorf("%w: unknown query message %T", ErrInvalidInput, msg)
	}
	if err != nil {
		return nil, err
	}
	return &NumResp{Num: n}, nil
}
