// Package id issues the TypeIDs stamped on curve records.
//
// Every ID reads "prefix_suffix" where the suffix is a UUIDv7, so IDs of
// one kind sort by creation time.
package id

import (
	"errors"
	"fmt"

	"go.jetify.com/typeid/v2"
)

// Prefix names the record kind an ID belongs to.
type Prefix string

const (
	PrefixTrade   Prefix = "trd"
	PrefixPayment Prefix = "pay"
	PrefixEvent   Prefix = "evt"
	PrefixClaim   Prefix = "clm"
)

var errEmpty = errors.New("empty string")

// ID is a prefix-qualified record identifier. The zero value is the nil ID.
//
//nolint:recvcheck // UnmarshalText needs a pointer receiver.
type ID struct {
	tid typeid.TypeID
	ok  bool
}

// New returns a fresh ID. It panics on a malformed prefix, which only the
// constants above can supply.
func New(p Prefix) ID {
	tid, err := typeid.Generate(string(p))
	if err != nil {
		panic(fmt.Sprintf("id: generate %q: %v", p, err))
	}
	return ID{tid: tid, ok: true}
}

// Parse decodes any curve ID regardless of prefix.
func Parse(s string) (ID, error) {
	if s == "" {
		return ID{}, fmt.Errorf("id: parse: %w", errEmpty)
	}
	tid, err := typeid.Parse(s)
	if err != nil {
		return ID{}, fmt.Errorf("id: parse %q: %w", s, err)
	}
	return ID{tid: tid, ok: true}, nil
}

func parseAs(s string, want Prefix) (ID, error) {
	v, err := Parse(s)
	if err != nil {
		return ID{}, err
	}
	if got := v.Prefix(); got != want {
		return ID{}, fmt.Errorf("id: %q is a %s id, want %s", s, got, want)
	}
	return v, nil
}

func NewTradeID() ID   { return New(PrefixTrade) }
func NewPaymentID() ID { return New(PrefixPayment) }
func NewEventID() ID   { return New(PrefixEvent) }
func NewClaimID() ID   { return New(PrefixClaim) }

func ParseTradeID(s string) (ID, error)   { return parseAs(s, PrefixTrade) }
func ParsePaymentID(s string) (ID, error) { return parseAs(s, PrefixPayment) }
func ParseEventID(s string) (ID, error)   { return parseAs(s, PrefixEvent) }
func ParseClaimID(s string) (ID, error)   { return parseAs(s, PrefixClaim) }

// String is empty for the nil ID.
func (i ID) String() string {
	if !i.ok {
		return ""
	}
	return i.tid.String()
}

func (i ID) Prefix() Prefix {
	if !i.ok {
		return ""
	}
	return Prefix(i.tid.Prefix())
}

func (i ID) IsNil() bool { return !i.ok }

// MarshalText encodes the nil ID as an empty string so optional IDs
// serialize as "".
func (i ID) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

func (i *ID) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*i = ID{}
		return nil
	}
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*i = v
	return nil
}
