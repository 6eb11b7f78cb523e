package types

import (
	"errors"
	"math/big"

	"lukechampine.com/uint128"
)

// Arithmetic errors. Every operation on supply, prices and fees goes through
// the checked helpers below; nothing wraps silently.
var (
	ErrOverflow  = errors.New("types: arithmetic overflow")
	ErrUnderflow = errors.New("types: arithmetic underflow")
	ErrDivByZero = errors.New("types: division by zero")
)

// CheckedAdd returns a+b or ErrOverflow.
func CheckedAdd(a, b uint128.Uint128) (uint128.Uint128, error) {
	if a.Cmp(uint128.Max.Sub(b)) > 0 {
		return uint128.Zero, ErrOverflow
	}
	return a.Add(b), nil
}

// CheckedSub returns a-b or ErrUnderflow.
func CheckedSub(a, b uint128.Uint128) (uint128.Uint128, error) {
	if a.Cmp(b) < 0 {
		return uint128.Zero, ErrUnderflow
	}
	return a.Sub(b), nil
}

// CheckedMul returns a*b or ErrOverflow when the product needs more than 128 bits.
func CheckedMul(a, b uint128.Uint128) (uint128.Uint128, error) {
	// Pre-check with big.Int so the panicking path in uint128.Mul is never hit.
	p := new(big.Int).Mul(a.Big(), b.Big())
	if p.BitLen() > 128 {
		return uint128.Zero, ErrOverflow
	}
	return uint128.FromBig(p), nil
}

// MulDiv returns floor(a*num/den).
func MulDiv(a uint128.Uint128, num, den uint64) (uint128.Uint128, error) {
	if den == 0 {
		return uint128.Zero, ErrDivByZero
	}
	p, err := CheckedMul(a, uint128.From64(num))
	if err != nil {
		return uint128.Zero, err
	}
	return p.Div64(den), nil
}

// PercentOf returns floor(a*pct/100).
func PercentOf(a uint128.Uint128, pct uint64) (uint128.Uint128, error) {
	return MulDiv(a, pct, 100)
}
