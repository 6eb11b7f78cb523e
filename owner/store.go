package owner

import (
	"context"

	"lukechampine.com/uint128"
)

// Store persists owners. RegisterOwner consumes the owner's allow-list entry
// in the same atomic step that creates the record.
type Store interface {
	RegisterOwner(ctx context.Context, o *Owner) error
	GetOwner(ctx context.Context, address string) (*Owner, error)
	GetSupply(ctx context.Context, address string) (uint128.Uint128, error)
	ListOwners(ctx context.Context, opts ListOpts) ([]*Owner, error)
}
