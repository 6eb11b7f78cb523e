// Package observability provides a metrics plugin for the curve engine that
// records registration, trade and perk event counts through a MetricFactory.
package observability

import (
	"context"
	"math"
	"sync"

	"lukechampine.com/uint128"

	"github.com/xraph/curve"
	"github.com/xraph/curve/holding"
	"github.com/xraph/curve/owner"
	"github.com/xraph/curve/perk"
	"github.com/xraph/curve/plugin"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin             = (*MetricsExtension)(nil)
	_ plugin.OnInit             = (*MetricsExtension)(nil)
	_ plugin.OnAdministratorSet = (*MetricsExtension)(nil)
	_ plugin.OnAllowListed      = (*MetricsExtension)(nil)
	_ plugin.OnOwnerRegistered  = (*MetricsExtension)(nil)
	_ plugin.OnSharesBought     = (*MetricsExtension)(nil)
	_ plugin.OnSharesSold       = (*MetricsExtension)(nil)
	_ plugin.OnPerkClaimed      = (*MetricsExtension)(nil)
	_ plugin.OnCallRejected     = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide curve metrics.
// Register it as a curve plugin to track trading activity.
type MetricsExtension struct {
	factory MetricFactory

	// Administration metrics
	AdministratorSet Counter
	AllowListed      Counter
	OwnerRegistered  Counter

	// Trade metrics
	SharesBought   Counter
	SharesSold     Counter
	BuyPrice       Histogram
	SellPrice      Histogram
	FeesPaid       Histogram
	FeesRetained   Histogram
	ExcessRetained Histogram

	// Perk metrics
	PerkClaimed Counter

	// Error metrics
	CallsRejected Counter

	mu         sync.Mutex
	rejections map[curve.Kind]Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Administration metrics
		AdministratorSet: factory.Counter("curve.administrator.set"),
		AllowListed:      factory.Counter("curve.allowlist.added"),
		OwnerRegistered:  factory.Counter("curve.owner.registered"),

		// Trade metrics
		SharesBought:   factory.Counter("curve.shares.bought"),
		SharesSold:     factory.Counter("curve.shares.sold"),
		BuyPrice:       factory.Histogram("curve.buy.price"),
		SellPrice:      factory.Histogram("curve.sell.price"),
		FeesPaid:       factory.Histogram("curve.buy.fees_paid"),
		FeesRetained:   factory.Histogram("curve.sell.fees_retained"),
		ExcessRetained: factory.Histogram("curve.buy.excess_retained"),

		// Perk metrics
		PerkClaimed: factory.Counter("curve.perk.claimed"),

		// Error metrics
		CallsRejected: factory.Counter("curve.calls.rejected"),

		rejections: make(map[curve.Kind]Counter),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Administration hooks
// ──────────────────────────────────────────────────

// OnAdministratorSet implements plugin.OnAdministratorSet.
func (m *MetricsExtension) OnAdministratorSet(_ context.Context, _ string) error {
	m.AdministratorSet.Inc()
	return nil
}

// OnAllowListed implements plugin.OnAllowListed.
func (m *MetricsExtension) OnAllowListed(_ context.Context, _ string) error {
	m.AllowListed.Inc()
	return nil
}

// OnOwnerRegistered implements plugin.OnOwnerRegistered.
func (m *MetricsExtension) OnOwnerRegistered(_ context.Context, _ *owner.Owner) error {
	m.OwnerRegistered.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Trade hooks
// ──────────────────────────────────────────────────

// OnSharesBought implements plugin.OnSharesBought.
func (m *MetricsExtension) OnSharesBought(_ context.Context, t *holding.Trade) error {
	m.SharesBought.Inc()
	m.BuyPrice.Observe(toFloat(t.Price.Amount))
	m.FeesPaid.Observe(toFloat(t.OwnerFee.Amount) + toFloat(t.PlatformFee.Amount))
	if t.Excess.IsPositive() {
		m.ExcessRetained.Observe(toFloat(t.Excess.Amount))
	}
	return nil
}

// OnSharesSold implements plugin.OnSharesSold.
func (m *MetricsExtension) OnSharesSold(_ context.Context, t *holding.Trade) error {
	m.SharesSold.Inc()
	m.SellPrice.Observe(toFloat(t.Price.Amount))
	m.FeesRetained.Observe(toFloat(t.Retained.Amount))
	return nil
}

// ──────────────────────────────────────────────────
// Perk hooks
// ──────────────────────────────────────────────────

// OnPerkClaimed implements plugin.OnPerkClaimed.
func (m *MetricsExtension) OnPerkClaimed(_ context.Context, _ *perk.Claim) error {
	m.PerkClaimed.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Failure hooks
// ──────────────────────────────────────────────────

// OnCallRejected implements plugin.OnCallRejected. Besides the total, each
// error kind gets its own counter.
func (m *MetricsExtension) OnCallRejected(_ context.Context, _, _ string, err error) error {
	m.CallsRejected.Inc()
	m.rejectionCounter(curve.KindOf(err)).Inc()
	return nil
}

func (m *MetricsExtension) rejectionCounter(kind curve.Kind) Counter {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.rejections[kind]
	if !ok {
		c = m.factory.Counter("curve.calls.rejected." + kind.String())
		m.rejections[kind] = c
	}
	return c
}

// toFloat converts for observation only; precision loss above 2^53 is fine.
func toFloat(u uint128.Uint128) float64 {
	return math.Ldexp(float64(u.Hi), 64) + float64(u.Lo)
}
