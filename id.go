package curve

import "github.com/xraph/curve/id"

// ID is the identifier type carried by trades, payments, events and claims.
type ID = id.ID

// Prefix identifies the record type encoded in a TypeID.
type Prefix = id.Prefix
