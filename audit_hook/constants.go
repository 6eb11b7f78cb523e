package audithook

// Action constants for audit events.
const (
	// Administration actions
	ActionAdministratorSet = "administrator.set"
	ActionAllowListed      = "allowlist.added"
	ActionOwnerRegistered  = "owner.registered"

	// Trade actions
	ActionSharesBought = "shares.bought"
	ActionSharesSold   = "shares.sold"

	// Perk actions
	ActionPerkClaimed = "perk.claimed"

	// Failure actions
	ActionCallRejected = "call.rejected"
)

// Resource constants for audit events.
const (
	ResourceAdministrator = "administrator"
	ResourceAllowList     = "allowlist"
	ResourceOwner         = "owner"
	ResourceTrade         = "trade"
	ResourcePerk          = "perk"
	ResourceCall          = "call"
)

// Category constants for audit events.
const (
	CategoryAdmin   = "admin"
	CategoryTrading = "trading"
	CategoryAccess  = "access"
	CategoryPayment = "payment"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
