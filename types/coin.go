// Package types provides the value types shared across the curve packages.
package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"lukechampine.com/uint128"
)

// ErrDenomMismatch is returned when arithmetic mixes two denominations.
var ErrDenomMismatch = errors.New("types: denom mismatch")

// DefaultDenom is the settlement denomination used when none is configured.
const DefaultDenom = "usei"

// Coin is an amount of a single currency in its smallest unit.
// All arithmetic is integer-only and checked: no floating point, no wraparound.
type Coin struct {
	Amount uint128.Uint128 `json:"amount"`
	Denom  string          `json:"denom"`
}

// NewCoin creates a Coin from a 64-bit amount.
func NewCoin(denom string, amount uint64) Coin {
	return Coin{Amount: uint128.From64(amount), Denom: normalizeDenom(denom)}
}

// CoinOf creates a Coin from a 128-bit amount.
func CoinOf(denom string, amount uint128.Uint128) Coin {
	return Coin{Amount: amount, Denom: normalizeDenom(denom)}
}

// Zero returns an empty Coin in the given denom.
func Zero(denom string) Coin { return Coin{Amount: uint128.Zero, Denom: normalizeDenom(denom)} }

// Add returns c+other. Fails on denom mismatch or overflow.
func (c Coin) Add(other Coin) (Coin, error) {
	if err := c.sameDenom(other); err != nil {
		return Coin{}, err
	}
	sum, err := CheckedAdd(c.Amount, other.Amount)
	if err != nil {
		return Coin{}, err
	}
	return Coin{Amount: sum, Denom: c.Denom}, nil
}

// Sub returns c-other. Fails on denom mismatch or underflow.
func (c Coin) Sub(other Coin) (Coin, error) {
	if err := c.sameDenom(other); err != nil {
		return Coin{}, err
	}
	diff, err := CheckedSub(c.Amount, other.Amount)
	if err != nil {
		return Coin{}, err
	}
	return Coin{Amount: diff, Denom: c.Denom}, nil
}

// IsZero reports whether the amount is zero.
func (c Coin) IsZero() bool { return c.Amount.IsZero() }

// IsPositive reports whether the amount is greater than zero.
func (c Coin) IsPositive() bool { return !c.Amount.IsZero() }

// LessThan reports whether c < other. Coins of a different denom never compare less.
func (c Coin) LessThan(other Coin) bool {
	return c.Denom == other.Denom && c.Amount.Cmp(other.Amount) < 0
}

// Equal reports whether both amount and denom match.
func (c Coin) Equal(other Coin) bool {
	return c.Denom == other.Denom && c.Amount.Equals(other.Amount)
}

// String formats the coin the way bank modules print it, e.g. "100usei".
func (c Coin) String() string {
	return c.Amount.String() + c.Denom
}

// MarshalJSON encodes the amount as a decimal string so 128-bit values survive
// JSON consumers that parse numbers as float64.
func (c Coin) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount string `json:"amount"`
		Denom  string `json:"denom"`
	}{
		Amount: c.Amount.String(),
		Denom:  c.Denom,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Coin) UnmarshalJSON(data []byte) error {
	var raw struct {
		Amount string `json:"amount"`
		Denom  string `json:"denom"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	amount := uint128.Zero
	if raw.Amount != "" {
		v, err := uint128.FromString(raw.Amount)
		if err != nil {
			return fmt.Errorf("types: parse coin amount %q: %w", raw.Amount, err)
		}
		amount = v
	}
	*c = Coin{Amount: amount, Denom: normalizeDenom(raw.Denom)}
	return nil
}

// AmountOf sums the coins of the given denom, ignoring every other denom.
func AmountOf(coins []Coin, denom string) (uint128.Uint128, error) {
	denom = normalizeDenom(denom)
	total := uint128.Zero
	for _, c := range coins {
		if c.Denom != denom {
			continue
		}
		var err error
		if total, err = CheckedAdd(total, c.Amount); err != nil {
			return uint128.Zero, err
		}
	}
	return total, nil
}

// ParseAmount parses a decimal string into a 128-bit amount.
func ParseAmount(s string) (uint128.Uint128, error) {
	if s == "" {
		return uint128.Zero, nil
	}
	v, err := uint128.FromString(s)
	if err != nil {
		return uint128.Zero, fmt.Errorf("types: parse amount %q: %w", s, err)
	}
	return v, nil
}

func (c Coin) sameDenom(other Coin) error {
	if c.Denom != other.Denom {
		return fmt.Errorf("%w: %s != %s", ErrDenomMismatch, c.Denom, other.Denom)
	}
	return nil
}

func normalizeDenom(denom string) string {
	return strings.ToLower(strings.TrimSpace(denom))
}
