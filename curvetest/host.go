// Package curvetest runs a curve engine the way a hosting chain would: funds
// attached to a call move into the contract account first, payment
// instructions are settled out of it after a successful call, and a failed
// call returns the attached funds.
package curvetest

import (
	"context"
	"fmt"

	"github.com/xraph/curve"
	"github.com/xraph/curve/store"
	"github.com/xraph/curve/store/memory"
	"github.com/xraph/curve/types"
)

// DefaultContract is the account that holds funds attached to calls.
const DefaultContract = "curve-contract"

// Host wires an engine to a bank and a clock.
type Host struct {
	Curve    *curve.Curve
	Bank     *Bank
	Clock    *Clock
	Contract string
}

// New starts an engine on a fresh memory store and initializes it with admin.
func New(ctx context.Context, admin string, opts ...curve.Option) (*Host, error) {
	return NewWithStore(ctx, memory.New(), admin, opts...)
}

// NewWithStore is New on a caller-supplied store.
func NewWithStore(ctx context.Context, s store.Store, admin string, opts ...curve.Option) (*Host, error) {
	h := &Host{
		Bank:     NewBank(),
		Clock:    NewClock(DefaultStart),
		Contract: DefaultContract,
	}
	opts = append([]curve.Option{curve.WithClock(h.Clock.Now)}, opts...)
	h.Curve = curve.New(s, opts...)

	if err := h.Curve.Start(ctx); err != nil {
		return nil, err
	}
	if err := h.Curve.Init(ctx, admin); err != nil {
		return nil, err
	}
	return h, nil
}

// Close stops the engine.
func (h *Host) Close() error { return h.Curve.Stop() }

// Denom is the engine's settlement denom.
func (h *Host) Denom() string { return h.Curve.Denom() }

// Coins builds a single-coin slice in the settlement denom.
func (h *Host) Coins(amount uint64) []types.Coin {
	return []types.Coin{types.NewCoin(h.Denom(), amount)}
}

// Fund mints amount of the settlement denom to addr.
func (h *Host) Fund(addr string, amount uint64) error {
	return h.Bank.Mint(addr, h.Coins(amount)...)
}

// Balance returns addr's bank balance in the settlement denom as a uint64.
// It panics if the balance does not fit.
func (h *Host) Balance(addr string) uint64 {
	b := h.Bank.Balance(addr, h.Denom())
	if b.Hi != 0 {
		panic(fmt.Sprintf("curvetest: balance of %s exceeds uint64", addr))
	}
	return b.Lo
}

// Execute runs msg as sender at the current clock reading with funds
// attached.
func (h *Host) Execute(ctx context.Context, sender string, msg curve.ExecuteMsg, funds ...types.Coin) (*curve.Response, error) {
	if len(funds) > 0 {
		if err := h.Bank.Send(sender, h.Contract, funds...); err != nil {
			return nil, err
		}
	}

	info := curve.Info{Sender: sender, Time: h.Clock.Now(), Funds: funds}
	resp, err := h.Curve.Execute(ctx, info, msg)
	if err != nil {
		if len(funds) > 0 {
			if refundErr := h.Bank.Send(h.Contract, sender, funds...); refundErr != nil {
				return nil, fmt.Errorf("%w (refund failed: %v)", err, refundErr)
			}
		}
		return nil, err
	}

	for _, p := range resp.Payments {
		if err := h.Bank.Send(h.Contract, p.Recipient, p.Amount); err != nil {
			return resp, fmt.Errorf("curvetest: settle %s: %w", p.ID, err)
		}
	}
	return resp, nil
}

// Query runs a read-only call.
func (h *Host) Query(ctx context.Context, msg curve.QueryMsg) (uint64, error) {
	resp, err := h.Curve.Query(ctx, msg)
	if err != nil {
		return 0, err
	}
	if resp.Num.Hi != 0 {
		return 0, fmt.Errorf("curvetest: %T result %s exceeds uint64", msg, resp.Num)
	}
	return resp.Num.Lo, nil
}

// Onboard allow-lists identity as the administrator and registers it with
// the given perk rules.
func (h *Host) Onboard(ctx context.Context, admin, identity string, perks curve.PerkRules) error {
	if _, err := h.Execute(ctx, admin, curve.AllowJoinMsg{Identity: identity}); err != nil {
		return err
	}
	_, err := h.Execute(ctx, identity, curve.RegisterMsg{FirstName: "First", LastName: "Last", Perks: perks})
	return err
}
