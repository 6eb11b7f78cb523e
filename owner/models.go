// Package owner models accounts that issue units on the bonding curve.
package owner

import (
	"encoding/json"

	"lukechampine.com/uint128"

	"github.com/xraph/curve/perk"
	"github.com/xraph/curve/types"
)

// Owner is a registered issuer. Perks are fixed at registration; Supply is
// the number of outstanding units across all holders.
type Owner struct {
	types.Entity
	Address   string          `json:"address"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Supply    uint128.Uint128 `json:"supply"`
	Perks     perk.Rules      `json:"perks"`
}

// DisplayName joins the name fields given at registration.
func (o *Owner) DisplayName() string {
	switch {
	case o.FirstName == "":
		return o.LastName
	case o.LastName == "":
		return o.FirstName
	default:
		return o.FirstName + " " + o.LastName
	}
}

// MarshalJSON encodes Supply as a decimal string.
func (o Owner) MarshalJSON() ([]byte, error) {
	type plain Owner
	return json.Marshal(struct {
		plain
		Supply string `json:"supply"`
	}{plain(o), o.Supply.String()})
}

// ListOpts pages through registered owners in registration order.
type ListOpts struct {
	Limit  int
	Offset int
}
