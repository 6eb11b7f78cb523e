// Package audithook bridges curve events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not depend on
// any particular audit store. Callers inject a RecorderFunc adapter at wiring
// time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/curve"
	"github.com/xraph/curve/holding"
	"github.com/xraph/curve/owner"
	"github.com/xraph/curve/perk"
	"github.com/xraph/curve/plugin"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin             = (*Extension)(nil)
	_ plugin.OnAdministratorSet = (*Extension)(nil)
	_ plugin.OnAllowListed      = (*Extension)(nil)
	_ plugin.OnOwnerRegistered  = (*Extension)(nil)
	_ plugin.OnSharesBought     = (*Extension)(nil)
	_ plugin.OnSharesSold       = (*Extension)(nil)
	_ plugin.OnPerkClaimed      = (*Extension)(nil)
	_ plugin.OnCallRejected     = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges curve events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	minRank  int
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Administration hooks
// ──────────────────────────────────────────────────

// OnAdministratorSet implements plugin.OnAdministratorSet.
func (e *Extension) OnAdministratorSet(ctx context.Context, admin string) error {
	return e.record(ctx, ActionAdministratorSet, SeverityInfo, OutcomeSuccess,
		ResourceAdministrator, admin, CategoryAdmin, nil,
		"administrator", admin,
	)
}

// OnAllowListed implements plugin.OnAllowListed.
func (e *Extension) OnAllowListed(ctx context.Context, identity string) error {
	return e.record(ctx, ActionAllowListed, SeverityInfo, OutcomeSuccess,
		ResourceAllowList, identity, CategoryAccess, nil,
		"identity", identity,
	)
}

// OnOwnerRegistered implements plugin.OnOwnerRegistered.
func (e *Extension) OnOwnerRegistered(ctx context.Context, o *owner.Owner) error {
	return e.record(ctx, ActionOwnerRegistered, SeverityInfo, OutcomeSuccess,
		ResourceOwner, o.Address, CategoryAccess, nil,
		"first_name", o.FirstName,
		"last_name", o.LastName,
		"perks", len(o.Perks),
	)
}

// ──────────────────────────────────────────────────
// Trade hooks
// ──────────────────────────────────────────────────

// OnSharesBought implements plugin.OnSharesBought.
func (e *Extension) OnSharesBought(ctx context.Context, t *holding.Trade) error {
	return e.record(ctx, ActionSharesBought, SeverityInfo, OutcomeSuccess,
		ResourceTrade, t.ID.String(), CategoryTrading, nil,
		"owner", t.Owner,
		"trader", t.Trader,
		"price", t.Price.String(),
		"owner_fee", t.OwnerFee.String(),
		"platform_fee", t.PlatformFee.String(),
		"excess", t.Excess.String(),
		"supply", t.SupplyAfter.String(),
	)
}

// OnSharesSold implements plugin.OnSharesSold.
func (e *Extension) OnSharesSold(ctx context.Context, t *holding.Trade) error {
	return e.record(ctx, ActionSharesSold, SeverityInfo, OutcomeSuccess,
		ResourceTrade, t.ID.String(), CategoryTrading, nil,
		"owner", t.Owner,
		"trader", t.Trader,
		"price", t.Price.String(),
		"payout", t.Payout.String(),
		"retained", t.Retained.String(),
		"supply", t.SupplyAfter.String(),
	)
}

// ──────────────────────────────────────────────────
// Perk hooks
// ──────────────────────────────────────────────────

// OnPerkClaimed implements plugin.OnPerkClaimed.
func (e *Extension) OnPerkClaimed(ctx context.Context, c *perk.Claim) error {
	return e.record(ctx, ActionPerkClaimed, SeverityInfo, OutcomeSuccess,
		ResourcePerk, c.ID.String(), CategoryAccess, nil,
		"owner", c.Owner,
		"claimer", c.Claimer,
		"perk_id", c.PerkID,
		"qualifying", c.Qualifying,
	)
}

// ──────────────────────────────────────────────────
// Failure hooks
// ──────────────────────────────────────────────────

// OnCallRejected implements plugin.OnCallRejected. Rejections caused by the
// caller are warnings; anything else is an error.
func (e *Extension) OnCallRejected(ctx context.Context, op, sender string, err error) error {
	severity := SeverityWarning
	if !curve.IsRejection(err) {
		severity = SeverityError
	}
	if curve.KindOf(err) == curve.KindUnauthorized {
		severity = SeverityCritical
	}
	return e.record(ctx, ActionCallRejected, severity, OutcomeFailure,
		ResourceCall, op, CategoryAccess, err,
		"sender", sender,
		"kind", curve.KindOf(err).String(),
	)
}

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if !e.wants(action, severity) {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
