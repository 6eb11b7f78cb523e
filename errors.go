package curve

import (
	"errors"
	"fmt"

	"github.com/xraph/curve/perk"
	"github.com/xraph/curve/pricing"
	"github.com/xraph/curve/types"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrInvalidInput       = errors.New("curve: invalid input")
	ErrUnauthorized       = errors.New("curve: unauthorized")
	ErrNotInitialized     = errors.New("curve: administrator not set")
	ErrAlreadyInitialized = errors.New("curve: administrator already set")

	// Registration errors
	ErrOwnerNotFound     = errors.New("curve: owner not found")
	ErrNotAllowListed    = errors.New("curve: identity is not allow-listed")
	ErrAlreadyRegistered = errors.New("curve: owner already registered")
	ErrEmptyPerkRules    = perk.ErrEmptyRules

	// Trade errors
	ErrInsufficientFunds    = errors.New("curve: insufficient funds")
	ErrInsufficientHoldings = errors.New("curve: insufficient holdings")
	ErrConflict             = errors.New("curve: supply changed since price was quoted")

	// Perk errors
	ErrNoHoldings                   = perk.ErrNoHoldings
	ErrInvalidPerkID                = perk.ErrInvalidID
	ErrInsufficientQualifyingShares = perk.ErrInsufficientQualifying

	// Arithmetic errors
	ErrArithmeticOverflow  = types.ErrOverflow
	ErrArithmeticUnderflow = types.ErrUnderflow
	ErrPriceOverflow       = pricing.ErrOverflow

	// Store errors
	ErrStoreClosed       = errors.New("curve: store is closed")
	ErrMigrationFailed   = errors.New("curve: migration failed")
	ErrInvariantViolated = errors.New("curve: supply does not match holdings")
)

// Kind classifies an error for callers that need to branch on failure type
// without matching individual sentinels.
type Kind int

// Error kinds.
const (
	KindNone Kind = iota
	KindUnauthorized
	KindNotFound
	KindNotAllowListed
	KindAlreadyRegistered
	KindEmptyPerkRules
	KindInsufficientFunds
	KindInsufficientHoldings
	KindInvalidPerkID
	KindInsufficientQualifyingShares
	KindArithmeticOverflow
	KindArithmeticUnderflow
	KindNotInitialized
	KindAlreadyInitialized
	KindInvalidInput
	KindConflict
	KindInternal
)

var kindNames = [...]string{
	KindNone:                         "none",
	KindUnauthorized:                 "unauthorized",
	KindNotFound:                     "not_found",
	KindNotAllowListed:               "not_allow_listed",
	KindAlreadyRegistered:            "already_registered",
	KindEmptyPerkRules:               "empty_perk_rules",
	KindInsufficientFunds:            "insufficient_funds",
	KindInsufficientHoldings:         "insufficient_holdings",
	KindInvalidPerkID:                "invalid_perk_id",
	KindInsufficientQualifyingShares: "insufficient_qualifying_shares",
	KindArithmeticOverflow:           "arithmetic_overflow",
	KindArithmeticUnderflow:          "arithmetic_underflow",
	KindNotInitialized:               "not_initialized",
	KindAlreadyInitialized:           "already_initialized",
	KindInvalidInput:                 "invalid_input",
	KindConflict:                     "conflict",
	KindInternal:                     "internal",
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

var kindTable = []struct {
	err  error
	kind Kind
}{
	{ErrUnauthorized, KindUnauthorized},
	{ErrOwnerNotFound, KindNotFound},
	{ErrNoHoldings, KindNotFound},
	{ErrNotAllowListed, KindNotAllowListed},
	{ErrAlreadyRegistered, KindAlreadyRegistered},
	{ErrEmptyPerkRules, KindEmptyPerkRules},
	{ErrInsufficientFunds, KindInsufficientFunds},
	{ErrInsufficientHoldings, KindInsufficientHoldings},
	{ErrInvalidPerkID, KindInvalidPerkID},
	{ErrInsufficientQualifyingShares, KindInsufficientQualifyingShares},
	{ErrArithmeticOverflow, KindArithmeticOverflow},
	{ErrArithmeticUnderflow, KindArithmeticUnderflow},
	{ErrNotInitialized, KindNotInitialized},
	{ErrAlreadyInitialized, KindAlreadyInitialized},
	{ErrInvalidInput, KindInvalidInput},
	{types.ErrDenomMismatch, KindInvalidInput},
	{ErrConflict, KindConflict},
}

// KindOf returns the kind of err. Errors that match no known sentinel are
// KindInternal; a nil error is KindNone.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var ve ValidationError
	if errors.As(err, &ve) {
		return KindInvalidInput
	}
	for _, e := range kindTable {
		if errors.Is(err, e.err) {
			return e.kind
		}
	}
	return KindInternal
}

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("curve: validation failed for %s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is(err, ErrInvalidInput) match validation failures.
func (e ValidationError) Unwrap() error { return ErrInvalidInput }

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsRejection returns true if the call was refused because of its inputs or
// the current state, as opposed to a store or internal failure.
func IsRejection(err error) bool {
	switch KindOf(err) {
	case KindNone, KindInternal:
		return false
	default:
		return true
	}
}
