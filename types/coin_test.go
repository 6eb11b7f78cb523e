package types

import (
	"encoding/json"
	"errors"
	"testing"

	"lukechampine.com/uint128"
)

func TestCoinArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		op       func() (Coin, error)
		expected Coin
		err      error
	}{
		{"Add", func() (Coin, error) { return NewCoin("usei", 100).Add(NewCoin("usei", 200)) }, NewCoin("usei", 300), nil},
		{"Sub", func() (Coin, error) { return NewCoin("usei", 500).Sub(NewCoin("usei", 200)) }, NewCoin("usei", 300), nil},
		{"Sub to zero", func() (Coin, error) { return NewCoin("usei", 5).Sub(NewCoin("usei", 5)) }, Zero("usei"), nil},
		{"Sub underflow", func() (Coin, error) { return NewCoin("usei", 1).Sub(NewCoin("usei", 2)) }, Coin{}, ErrUnderflow},
		{"Add overflow", func() (Coin, error) { return CoinOf("usei", uint128.Max).Add(NewCoin("usei", 1)) }, Coin{}, ErrOverflow},
		{"Denom mismatch", func() (Coin, error) { return NewCoin("usei", 1).Add(NewCoin("uatom", 1)) }, Coin{}, ErrDenomMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.op()
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("expected %v, got %v", tt.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.expected) {
				t.Errorf("got %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestCoinDenomNormalized(t *testing.T) {
	c := NewCoin(" USEI ", 7)
	if c.Denom != "usei" {
		t.Errorf("denom: got %q", c.Denom)
	}
	if c.String() != "7usei" {
		t.Errorf("string: got %q", c.String())
	}
}

func TestCoinJSON(t *testing.T) {
	big := CoinOf("usei", uint128.New(0, 1)) // 2^64
	data, err := json.Marshal(big)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"amount":"18446744073709551616","denom":"usei"}` {
		t.Fatalf("unexpected encoding: %s", data)
	}

	var decoded Coin
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if !decoded.Equal(big) {
		t.Errorf("got %s, want %s", decoded, big)
	}
}

func TestAmountOf(t *testing.T) {
	coins := []Coin{NewCoin("usei", 40), NewCoin("uatom", 1000), NewCoin("usei", 60)}
	got, err := AmountOf(coins, "usei")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equals64(100) {
		t.Errorf("got %s, want 100", got)
	}

	none, err := AmountOf(coins, "uosmo")
	if err != nil {
		t.Fatal(err)
	}
	if !none.IsZero() {
		t.Errorf("expected zero for missing denom, got %s", none)
	}
}

func TestCheckedMul(t *testing.T) {
	if _, err := CheckedMul(uint128.Max, uint128.From64(2)); !errors.Is(err, ErrOverflow) {
		t.Errorf("expected overflow, got %v", err)
	}
	got, err := CheckedMul(uint128.From64(1<<63), uint128.From64(2))
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equals(uint128.New(0, 1)) {
		t.Errorf("got %s, want 2^64", got)
	}
}

func TestPercentOf(t *testing.T) {
	tests := []struct {
		amount uint64
		pct    uint64
		want   uint64
	}{
		{100, 5, 5},
		{19, 5, 0},
		{20, 5, 1},
		{399, 10, 39},
		{0, 10, 0},
	}
	for _, tt := range tests {
		got, err := PercentOf(uint128.From64(tt.amount), tt.pct)
		if err != nil {
			t.Fatal(err)
		}
		if !got.Equals64(tt.want) {
			t.Errorf("PercentOf(%d, %d) = %s, want %d", tt.amount, tt.pct, got, tt.want)
		}
	}
}

func TestMulDivByZero(t *testing.T) {
	if _, err := MulDiv(uint128.From64(1), 1, 0); !errors.Is(err, ErrDivByZero) {
		t.Errorf("expected ErrDivByZero, got %v", err)
	}
}
