package audithook_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	audithook "github.com/xraph/curve/audit_hook"

	"github.com/xraph/curve"
	"github.com/xraph/curve/curvetest"
)

type memoryRecorder struct {
	mu     sync.Mutex
	events []*audithook.AuditEvent
}

func (r *memoryRecorder) Record(_ context.Context, e *audithook.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *memoryRecorder) byAction(action string) []*audithook.AuditEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*audithook.AuditEvent
	for _, e := range r.events {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

func newHost(t *testing.T, ext *audithook.Extension) *curvetest.Host {
	t.Helper()
	ctx := context.Background()
	h, err := curvetest.New(ctx, "admin", curve.WithPlugin(ext))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = h.Close() })
	if err := h.Onboard(ctx, "admin", "athlete", curve.PerkRules{{RequiredShares: 1}}); err != nil {
		t.Fatal(err)
	}
	_ = h.Fund("fan", 10_000)
	return h
}

func TestAuditTrail(t *testing.T) {
	ctx := context.Background()
	rec := &memoryRecorder{}
	h := newHost(t, audithook.New(rec))

	if _, err := h.Execute(ctx, "fan", curve.BuyMsg{Owner: "athlete"}, h.Coins(100)...); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Execute(ctx, "fan", curve.ClaimPerkMsg{Owner: "athlete"}); err != nil {
		t.Fatal(err)
	}
	_, _ = h.Execute(ctx, "fan", curve.AllowJoinMsg{Identity: "fan"})
	_, _ = h.Execute(ctx, "fan", curve.BuyMsg{Owner: "athlete"}, h.Coins(1)...)

	for _, action := range []string{
		audithook.ActionAdministratorSet,
		audithook.ActionAllowListed,
		audithook.ActionOwnerRegistered,
		audithook.ActionSharesBought,
		audithook.ActionPerkClaimed,
	} {
		if n := len(rec.byAction(action)); n != 1 {
			t.Errorf("%s recorded %d times, want 1", action, n)
		}
	}

	buy := rec.byAction(audithook.ActionSharesBought)[0]
	if buy.Metadata["owner_fee"] != "5usei" || buy.Metadata["trader"] != "fan" {
		t.Errorf("buy metadata = %v", buy.Metadata)
	}

	rejected := rec.byAction(audithook.ActionCallRejected)
	if len(rejected) != 2 {
		t.Fatalf("rejections recorded = %d, want 2", len(rejected))
	}
	if rejected[0].Severity != audithook.SeverityCritical || rejected[0].ResourceID != "allow_join" {
		t.Errorf("unauthorized allow-join = %+v", rejected[0])
	}
	if rejected[1].Severity != audithook.SeverityWarning || rejected[1].Outcome != audithook.OutcomeFailure {
		t.Errorf("underfunded buy = %+v", rejected[1])
	}
	if rejected[1].Metadata["kind"] != "insufficient_funds" || rejected[1].Reason == "" {
		t.Errorf("underfunded buy metadata = %v", rejected[1].Metadata)
	}
}

func TestEnabledActions(t *testing.T) {
	ctx := context.Background()
	rec := &memoryRecorder{}
	h := newHost(t, audithook.New(rec, audithook.WithEnabledActions(audithook.ActionSharesBought)))

	if _, err := h.Execute(ctx, "fan", curve.BuyMsg{Owner: "athlete"}, h.Coins(100)...); err != nil {
		t.Fatal(err)
	}
	if len(rec.events) != 1 || rec.events[0].Action != audithook.ActionSharesBought {
		t.Errorf("events = %d", len(rec.events))
	}
}

func TestDisabledActions(t *testing.T) {
	rec := &memoryRecorder{}
	newHost(t, audithook.New(rec, audithook.WithDisabledActions(audithook.ActionAllowListed)))

	if n := len(rec.byAction(audithook.ActionAllowListed)); n != 0 {
		t.Errorf("disabled action recorded %d times", n)
	}
	if n := len(rec.byAction(audithook.ActionOwnerRegistered)); n != 1 {
		t.Errorf("owner.registered recorded %d times, want 1", n)
	}
}

func TestMinSeverity(t *testing.T) {
	ctx := context.Background()
	rec := &memoryRecorder{}
	h := newHost(t, audithook.New(rec, audithook.WithMinSeverity(audithook.SeverityCritical)))

	if _, err := h.Execute(ctx, "fan", curve.BuyMsg{Owner: "athlete"}, h.Coins(100)...); err != nil {
		t.Fatal(err)
	}
	_, _ = h.Execute(ctx, "fan", curve.BuyMsg{Owner: "athlete"}, h.Coins(1)...)
	_, _ = h.Execute(ctx, "fan", curve.AllowJoinMsg{Identity: "fan"})

	if len(rec.events) != 1 {
		t.Fatalf("events = %d, want only the unauthorized call", len(rec.events))
	}
	if e := rec.events[0]; e.Action != audithook.ActionCallRejected || e.Severity != audithook.SeverityCritical {
		t.Errorf("recorded %s/%s", e.Action, e.Severity)
	}
}

func TestRecorderFailureDoesNotFailCall(t *testing.T) {
	ctx := context.Background()
	failing := audithook.RecorderFunc(func(context.Context, *audithook.AuditEvent) error {
		return errors.New("backend down")
	})
	h := newHost(t, audithook.New(failing))

	if _, err := h.Execute(ctx, "fan", curve.BuyMsg{Owner: "athlete"}, h.Coins(100)...); err != nil {
		t.Fatalf("buy failed because of audit backend: %v", err)
	}
}
