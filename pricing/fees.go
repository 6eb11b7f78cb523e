package pricing

import (
	"lukechampine.com/uint128"

	"github.com/xraph/curve/types"
)

// Fee rates in whole percent of the quoted price.
const (
	OwnerFeePercent    = 5
	PlatformFeePercent = 5
	SellFeePercent     = 10
)

// BuyFees is the split of a buy price between the owner and the platform.
type BuyFees struct {
	Owner    uint128.Uint128 `json:"owner"`
	Platform uint128.Uint128 `json:"platform"`
}

// Total returns the sum of both legs.
func (f BuyFees) Total() uint128.Uint128 {
	// Each leg is at most 5% of a 128-bit price, so the sum cannot overflow.
	return f.Owner.Add(f.Platform)
}

// IsZero reports whether no fee is due (price below 20).
func (f BuyFees) IsZero() bool {
	return f.Owner.IsZero() && f.Platform.IsZero()
}

// FeesForBuy computes floor(price×5/100) for the owner and the same amount
// for the platform. Fees derive from the quoted price, never from the funds
// sent.
func FeesForBuy(price uint128.Uint128) (BuyFees, error) {
	owner, err := types.PercentOf(price, OwnerFeePercent)
	if err != nil {
		return BuyFees{}, err
	}
	return BuyFees{Owner: owner, Platform: owner}, nil
}

// SellPayout is the seller's share of a sell price and the retained fee.
type SellPayout struct {
	Seller uint128.Uint128 `json:"seller"`
	Fee    uint128.Uint128 `json:"fee"`
}

// PayoutForSell computes price - floor(price×10/100). The fee leg has no
// destination and is retained by the curve.
func PayoutForSell(price uint128.Uint128) (SellPayout, error) {
	fee, err := types.PercentOf(price, SellFeePercent)
	if err != nil {
		return SellPayout{}, err
	}
	seller, err := types.CheckedSub(price, fee)
	if err != nil {
		return SellPayout{}, err
	}
	return SellPayout{Seller: seller, Fee: fee}, nil
}
