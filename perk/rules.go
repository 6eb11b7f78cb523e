// Package perk decides whether a holder may redeem an owner-defined perk.
//
// A perk rule names how many units must be held and for how long. Units
// qualify individually: a unit acquired at t qualifies at time now when
// t <= now - MinHoldSeconds. Evaluation is read-only.
package perk

import (
	"errors"
	"fmt"
)

// Errors returned by rule validation and evaluation.
var (
	ErrEmptyRules             = errors.New("perk: at least one perk rule is required")
	ErrInvalidID              = errors.New("perk: invalid perk id")
	ErrNoHoldings             = errors.New("perk: claimer holds no shares of owner")
	ErrInsufficientQualifying = errors.New("perk: not enough shares held long enough")
)

// Rule is one perk an owner offers, addressed by its index in Rules.
type Rule struct {
	RequiredShares uint16 `json:"required_shares" yaml:"required_shares" bson:"required_shares"`
	MinHoldSeconds uint64 `json:"min_hold_seconds" yaml:"min_hold_seconds" bson:"min_hold_seconds"`
}

// String implements fmt.Stringer.
func (r Rule) String() string {
	return fmt.Sprintf("%d shares for %ds", r.RequiredShares, r.MinHoldSeconds)
}

// Rules is the ordered, immutable perk list set at registration.
type Rules []Rule

// Validate checks the list can be registered.
func (r Rules) Validate() error {
	if len(r) == 0 {
		return ErrEmptyRules
	}
	return nil
}

// Get returns the rule at index perkID.
func (r Rules) Get(perkID uint64) (Rule, error) {
	if perkID >= uint64(len(r)) {
		return Rule{}, fmt.Errorf("%w: %d (owner defines %d)", ErrInvalidID, perkID, len(r))
	}
	return r[perkID], nil
}

// Clone returns a copy that does not alias r.
func (r Rules) Clone() Rules {
	if r == nil {
		return nil
	}
	out := make(Rules, len(r))
	copy(out, r)
	return out
}
