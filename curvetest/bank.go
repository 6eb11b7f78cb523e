package curvetest

import (
	"errors"
	"fmt"

	"github.com/sasha-s/go-deadlock"
	"lukechampine.com/uint128"

	"github.com/xraph/curve/types"
)

// ErrInsufficientBalance is returned when a transfer exceeds the sender's
// balance.
var ErrInsufficientBalance = errors.New("curvetest: insufficient balance")

// Bank holds per-account balances for every denom.
type Bank struct {
	mu       deadlock.Mutex
	balances map[string]map[string]uint128.Uint128
}

// NewBank returns an empty bank.
func NewBank() *Bank {
	return &Bank{balances: make(map[string]map[string]uint128.Uint128)}
}

// Mint credits coins to addr out of thin air.
func (b *Bank) Mint(addr string, coins ...types.Coin) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, c := range coins {
		if err := b.credit(addr, c); err != nil {
			return err
		}
	}
	return nil
}

// Balance returns addr's balance in denom.
func (b *Bank) Balance(addr, denom string) uint128.Uint128 {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.balances[addr][denom]
}

// Send moves coins from one account to another. Either every coin moves or
// none does.
func (b *Bank) Send(from, to string, coins ...types.Coin) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	need := make(map[string]uint128.Uint128)
	for _, c := range coins {
		sum, err := types.CheckedAdd(need[c.Denom], c.Amount)
		if err != nil {
			return err
		}
		need[c.Denom] = sum
	}
	for denom, amt := range need {
		if b.balances[from][denom].Cmp(amt) < 0 {
			return fmt.Errorf("%w: %s has %s%s, needs %s%s",
				ErrInsufficientBalance, from, b.balances[from][denom], denom, amt, denom)
		}
	}

	for _, c := range coins {
		if c.Amount.IsZero() {
			continue
		}
		b.balances[from][c.Denom] = b.balances[from][c.Denom].Sub(c.Amount)
		if err := b.credit(to, c); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bank) credit(addr string, c types.Coin) error {
	acct, ok := b.balances[addr]
	if !ok {
		acct = make(map[string]uint128.Uint128)
		b.balances[addr] = acct
	}
	sum, err := types.CheckedAdd(acct[c.Denom], c.Amount)
	if err != nil {
		return err
	}
	acct[c.Denom] = sum
	return nil
}
