package pricing_test

import (
	"errors"
	"testing"

	"lukechampine.com/uint128"

	"github.com/xraph/curve/pricing"
	"github.com/xraph/curve/types"
)

func TestPriceCurve(t *testing.T) {
	for s := uint64(0); s < 200; s++ {
		buy, err := pricing.Price(uint128.From64(s), pricing.Buy)
		if err != nil {
			t.Fatalf("buy at supply %d: %v", s, err)
		}
		if want := (s + 1) * (s + 1) * 100; !buy.Equals64(want) {
			t.Errorf("buy price at supply %d = %s, want %d", s, buy, want)
		}

		sell, err := pricing.Price(uint128.From64(s), pricing.Sell)
		if err != nil {
			t.Fatalf("sell at supply %d: %v", s, err)
		}
		if want := s * s * 100; !sell.Equals64(want) {
			t.Errorf("sell price at supply %d = %s, want %d", s, sell, want)
		}
	}
}

func TestPriceReferencePoints(t *testing.T) {
	tests := []struct {
		supply uint64
		mode   pricing.Mode
		want   uint64
	}{
		{0, pricing.Buy, 100},
		{1, pricing.Buy, 400},
		{1, pricing.Sell, 100},
		{0, pricing.Sell, 0},
		{9, pricing.Buy, 10000},
	}
	for _, tt := range tests {
		got, err := pricing.Price(uint128.From64(tt.supply), tt.mode)
		if err != nil {
			t.Fatal(err)
		}
		if !got.Equals64(tt.want) {
			t.Errorf("Price(%d, %s) = %s, want %d", tt.supply, tt.mode, got, tt.want)
		}
	}
}

func TestPriceIsPure(t *testing.T) {
	supply := uint128.From64(41)
	a, _ := pricing.Price(supply, pricing.Buy)
	b, _ := pricing.Price(supply, pricing.Buy)
	if !a.Equals(b) {
		t.Errorf("repeated quotes differ: %s != %s", a, b)
	}
	if !supply.Equals64(41) {
		t.Errorf("supply mutated: %s", supply)
	}
}

func TestPriceOverflow(t *testing.T) {
	tests := []struct {
		name   string
		supply uint128.Uint128
		mode   pricing.Mode
	}{
		{"max supply buy", uint128.Max, pricing.Buy},
		{"max supply sell", uint128.Max, pricing.Sell},
		{"square overflows", uint128.New(0, 1), pricing.Sell},           // (2^64)² = 2^128
		{"scale overflows", uint128.From64(1 << 62), pricing.Sell},      // 2^124 × 100
		{"successor overflows", uint128.From64(^uint64(0)), pricing.Buy}, // (2^64)²
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pricing.Price(tt.supply, tt.mode)
			if !errors.Is(err, types.ErrOverflow) {
				t.Fatalf("expected overflow, got %v", err)
			}
			if !pricing.IsOverflow(err) {
				t.Error("IsOverflow returned false")
			}
		})
	}
}

func TestPriceLargestRepresentable(t *testing.T) {
	// 2^59 squared is 2^118; times 100 stays below 2^125.
	got, err := pricing.Price(uint128.From64(1<<59), pricing.Sell)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.IsZero() {
		t.Error("expected non-zero price")
	}
}

func TestFeesForBuy(t *testing.T) {
	tests := []struct {
		price uint64
		owner uint64
		zero  bool
	}{
		{100, 5, false},
		{400, 20, false},
		{19, 0, true},
		{20, 1, false},
		{0, 0, true},
	}
	for _, tt := range tests {
		fees, err := pricing.FeesForBuy(uint128.From64(tt.price))
		if err != nil {
			t.Fatal(err)
		}
		if !fees.Owner.Equals64(tt.owner) || !fees.Platform.Equals64(tt.owner) {
			t.Errorf("price %d: fees %s/%s, want %d each", tt.price, fees.Owner, fees.Platform, tt.owner)
		}
		if fees.IsZero() != tt.zero {
			t.Errorf("price %d: IsZero = %v, want %v", tt.price, fees.IsZero(), tt.zero)
		}
		if !fees.Total().Equals64(2 * tt.owner) {
			t.Errorf("price %d: total %s", tt.price, fees.Total())
		}
	}
}

func TestPayoutForSell(t *testing.T) {
	tests := []struct {
		price  uint64
		seller uint64
		fee    uint64
	}{
		{100, 90, 10},
		{400, 360, 40},
		{9, 9, 0},
		{15, 14, 1},
		{0, 0, 0},
	}
	for _, tt := range tests {
		p, err := pricing.PayoutForSell(uint128.From64(tt.price))
		if err != nil {
			t.Fatal(err)
		}
		if !p.Seller.Equals64(tt.seller) || !p.Fee.Equals64(tt.fee) {
			t.Errorf("price %d: payout %s fee %s, want %d/%d", tt.price, p.Seller, p.Fee, tt.seller, tt.fee)
		}
	}
}
