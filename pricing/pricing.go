// Package pricing maps an owner's outstanding supply to a trade price.
//
// The curve is quadratic: the n-th unit costs n² × Scale. Buying quotes the
// next unit (supply+1), selling quotes the current top unit (supply). Every
// step is checked; a price that does not fit in 128 bits is an error, never a
// wrapped value.
package pricing

import (
	"errors"
	"fmt"

	"lukechampine.com/uint128"

	"github.com/xraph/curve/types"
)

// Scale is the per-unit multiplier applied to n².
const Scale = 100

// ErrOverflow is returned when n² × Scale exceeds 128 bits.
var ErrOverflow = fmt.Errorf("pricing: %w", types.ErrOverflow)

// Mode selects which side of the curve is quoted.
type Mode int

const (
	// Buy quotes the next unit to be issued.
	Buy Mode = iota
	// Sell quotes the most recently issued unit.
	Sell
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	switch m {
	case Buy, Sell:
		return []byte(m.String()), nil
	default:
		return nil, fmt.Errorf("pricing: unknown mode %d", int(m))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	switch string(b) {
	case "buy":
		*m = Buy
	case "sell":
		*m = Sell
	default:
		return fmt.Errorf("pricing: unknown mode %q", b)
	}
	return nil
}

// Quote is the ephemeral output of Price together with its inputs.
type Quote struct {
	Supply uint128.Uint128 `json:"supply"`
	Mode   Mode            `json:"mode"`
	Price  uint128.Uint128 `json:"price"`
}

// Price returns the trade price for the given supply.
func Price(supply uint128.Uint128, mode Mode) (uint128.Uint128, error) {
	n := supply
	switch mode {
	case Buy:
		var err error
		if n, err = types.CheckedAdd(supply, uint128.From64(1)); err != nil {
			return uint128.Zero, ErrOverflow
		}
	case Sell:
	default:
		return uint128.Zero, fmt.Errorf("pricing: unknown mode %d", int(mode))
	}

	sq, err := types.CheckedMul(n, n)
	if err != nil {
		return uint128.Zero, ErrOverflow
	}
	price, err := types.CheckedMul(sq, uint128.From64(Scale))
	if err != nil {
		return uint128.Zero, ErrOverflow
	}
	return price, nil
}

// QuoteFor computes a Quote. It is pure and may be called any number of times.
func QuoteFor(supply uint128.Uint128, mode Mode) (Quote, error) {
	price, err := Price(supply, mode)
	if err != nil {
		return Quote{}, err
	}
	return Quote{Supply: supply, Mode: mode, Price: price}, nil
}

// IsOverflow reports whether err came from an out-of-range price.
func IsOverflow(err error) bool {
	return errors.Is(err, types.ErrOverflow)
}
