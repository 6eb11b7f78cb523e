package audithook

import "log/slog"

// Option configures an Extension.
type Option func(*Extension)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Extension) { e.logger = logger }
}

// WithEnabledActions restricts the trail to the listed actions. Without it
// every action is recorded.
func WithEnabledActions(actions ...string) Option {
	return func(e *Extension) {
		e.enabled = setOf(actions)
	}
}

// WithDisabledActions drops the listed actions from whatever is currently
// enabled.
func WithDisabledActions(actions ...string) Option {
	return func(e *Extension) {
		if e.enabled == nil {
			e.enabled = setOf(knownActions[:])
		}
		for _, a := range actions {
			delete(e.enabled, a)
		}
	}
}

// WithMinSeverity drops events ranked below min. Passing SeverityWarning
// keeps rejected calls and skips successful trades.
func WithMinSeverity(min string) Option {
	return func(e *Extension) { e.minRank = severityRank[min] }
}

var knownActions = [...]string{
	ActionAdministratorSet,
	ActionAllowListed,
	ActionOwnerRegistered,
	ActionSharesBought,
	ActionSharesSold,
	ActionPerkClaimed,
	ActionCallRejected,
}

var severityRank = map[string]int{
	SeverityInfo:     0,
	SeverityWarning:  1,
	SeverityError:    2,
	SeverityCritical: 3,
}

func setOf(actions []string) map[string]bool {
	m := make(map[string]bool, len(actions))
	for _, a := range actions {
		m[a] = true
	}
	return m
}

// wants reports whether an event passes the configured filters.
func (e *Extension) wants(action, severity string) bool {
	if e.enabled != nil && !e.enabled[action] {
		return false
	}
	return severityRank[severity] >= e.minRank
}
