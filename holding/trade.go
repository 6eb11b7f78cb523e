package holding

import (
	"encoding/json"

	"lukechampine.com/uint128"

	"github.com/xraph/curve/id"
	"github.com/xraph/curve/pricing"
	"github.com/xraph/curve/types"
)

// Trade is the receipt of one successful buy or sell.
//
// For a buy, OwnerFee and PlatformFee are the two fee payments and Excess is
// whatever was sent above Price. For a sell, Payout goes to the trader and
// Retained is the fee kept back from the quoted price. NewPrice is the buy
// price at SupplyAfter; it is zero when that price overflows.
type Trade struct {
	ID           id.ID           `json:"id"`
	Side         pricing.Mode    `json:"side"`
	Trader       string          `json:"trader"`
	Owner        string          `json:"owner"`
	Price        types.Coin      `json:"price"`
	NewPrice     types.Coin      `json:"new_price"`
	SupplyBefore uint128.Uint128 `json:"supply_before"`
	SupplyAfter  uint128.Uint128 `json:"supply_after"`
	Held         uint64          `json:"held"`
	Time         uint64          `json:"time"`

	Sent        types.Coin `json:"sent,omitzero"`
	Excess      types.Coin `json:"excess,omitzero"`
	OwnerFee    types.Coin `json:"owner_fee,omitzero"`
	PlatformFee types.Coin `json:"platform_fee,omitzero"`

	Payout   types.Coin `json:"payout,omitzero"`
	Retained types.Coin `json:"retained,omitzero"`
}

// MarshalJSON encodes the supply fields as decimal strings.
func (t Trade) MarshalJSON() ([]byte, error) {
	type plain Trade
	return json.Marshal(struct {
		plain
		SupplyBefore string `json:"supply_before"`
		SupplyAfter  string `json:"supply_after"`
	}{plain(t), t.SupplyBefore.String(), t.SupplyAfter.String()})
}
