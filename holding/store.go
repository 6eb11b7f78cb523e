package holding

import (
	"context"

	"lukechampine.com/uint128"
)

// Store persists holdings. RecordPurchase and RecordSale each change the
// holding and the owner's supply together or not at all. Both take the supply
// the trade was priced from and refuse to write if it has moved.
type Store interface {
	GetHolding(ctx context.Context, holder, owner string) (*Holding, error)
	ListHoldings(ctx context.Context, owner string) ([]*Holding, error)
	RecordPurchase(ctx context.Context, holder, owner string, at uint64, priced uint128.Uint128) error
	RecordSale(ctx context.Context, holder, owner string, priced uint128.Uint128) error
}
