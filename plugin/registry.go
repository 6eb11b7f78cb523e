package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/curve/holding"
	"github.com/xraph/curve/owner"
	"github.com/xraph/curve/perk"
)

// DefaultTimeout bounds a single hook call.
const DefaultTimeout = 5 * time.Second

// hooks holds each registered plugin once per hook interface it satisfies,
// so emission never type-asserts on the hot path.
type hooks struct {
	init       []OnInit
	shutdown   []OnShutdown
	admin      []OnAdministratorSet
	allowed    []OnAllowListed
	registered []OnOwnerRegistered
	bought     []OnSharesBought
	sold       []OnSharesSold
	claimed    []OnPerkClaimed
	rejected   []OnCallRejected
}

// hookTable lists every hook interface in emission order. attach files p
// under the hook when it implements it and reports whether it did.
var hookTable = []struct {
	name   string
	attach func(h *hooks, p Plugin) bool
}{
	{"OnInit", func(h *hooks, p Plugin) bool { return add(&h.init, p) }},
	{"OnShutdown", func(h *hooks, p Plugin) bool { return add(&h.shutdown, p) }},
	{"OnAdministratorSet", func(h *hooks, p Plugin) bool { return add(&h.admin, p) }},
	{"OnAllowListed", func(h *hooks, p Plugin) bool { return add(&h.allowed, p) }},
	{"OnOwnerRegistered", func(h *hooks, p Plugin) bool { return add(&h.registered, p) }},
	{"OnSharesBought", func(h *hooks, p Plugin) bool { return add(&h.bought, p) }},
	{"OnSharesSold", func(h *hooks, p Plugin) bool { return add(&h.sold, p) }},
	{"OnPerkClaimed", func(h *hooks, p Plugin) bool { return add(&h.claimed, p) }},
	{"OnCallRejected", func(h *hooks, p Plugin) bool { return add(&h.rejected, p) }},
}

func add[H Plugin](list *[]H, p Plugin) bool {
	v, ok := p.(H)
	if ok {
		*list = append(*list, v)
	}
	return ok
}

// Registry fans engine events out to plugins. Hook failures and timeouts
// are logged and never reach the caller.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	hooks   hooks
	logger  *slog.Logger
	timeout time.Duration
}

func NewRegistry() *Registry {
	return &Registry{
		logger:  slog.Default(),
		timeout: DefaultTimeout,
	}
}

func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// WithTimeout sets the per-hook timeout. Non-positive values are ignored.
func (r *Registry) WithTimeout(d time.Duration) *Registry {
	if d > 0 {
		r.timeout = d
	}
	return r
}

// Register adds p. Plugin names must be unique.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.lookup(p.Name()) != nil {
		return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
	}
	r.plugins = append(r.plugins, p)

	var names []string
	for _, e := range hookTable {
		if e.attach(&r.hooks, p) {
			names = append(names, e.name)
		}
	}
	r.logger.Info("plugin registered", "name", p.Name(), "interfaces", names)
	return nil
}

// Implemented returns the names of the hook interfaces p implements.
func Implemented(p Plugin) []string {
	var scratch hooks
	var names []string
	for _, e := range hookTable {
		if e.attach(&scratch, p) {
			names = append(names, e.name)
		}
	}
	return names
}

// Get returns the plugin registered under name, or nil.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(name)
}

func (r *Registry) lookup(name string) Plugin {
	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Emission
// ──────────────────────────────────────────────────

// emit snapshots one hook list under the read lock and calls each entry.
func emit[H Plugin](ctx context.Context, r *Registry, hook string, pick func(*hooks) []H, call func(H) error) {
	r.mu.RLock()
	list := pick(&r.hooks)
	r.mu.RUnlock()

	for _, p := range list {
		if err := r.callWithTimeout(ctx, p.Name(), func() error { return call(p) }); err != nil {
			r.logger.Warn("plugin "+hook+" failed", "plugin", p.Name(), "error", err)
		}
	}
}

func (r *Registry) EmitInit(ctx context.Context, c any) {
	emit(ctx, r, "OnInit", func(h *hooks) []OnInit { return h.init },
		func(p OnInit) error { return p.OnInit(ctx, c) })
}

func (r *Registry) EmitShutdown(ctx context.Context) {
	emit(ctx, r, "OnShutdown", func(h *hooks) []OnShutdown { return h.shutdown },
		func(p OnShutdown) error { return p.OnShutdown(ctx) })
}

func (r *Registry) EmitAdministratorSet(ctx context.Context, admin string) {
	emit(ctx, r, "OnAdministratorSet", func(h *hooks) []OnAdministratorSet { return h.admin },
		func(p OnAdministratorSet) error { return p.OnAdministratorSet(ctx, admin) })
}

func (r *Registry) EmitAllowListed(ctx context.Context, identity string) {
	emit(ctx, r, "OnAllowListed", func(h *hooks) []OnAllowListed { return h.allowed },
		func(p OnAllowListed) error { return p.OnAllowListed(ctx, identity) })
}

func (r *Registry) EmitOwnerRegistered(ctx context.Context, o *owner.Owner) {
	emit(ctx, r, "OnOwnerRegistered", func(h *hooks) []OnOwnerRegistered { return h.registered },
		func(p OnOwnerRegistered) error { return p.OnOwnerRegistered(ctx, o) })
}

func (r *Registry) EmitSharesBought(ctx context.Context, t *holding.Trade) {
	emit(ctx, r, "OnSharesBought", func(h *hooks) []OnSharesBought { return h.bought },
		func(p OnSharesBought) error { return p.OnSharesBought(ctx, t) })
}

func (r *Registry) EmitSharesSold(ctx context.Context, t *holding.Trade) {
	emit(ctx, r, "OnSharesSold", func(h *hooks) []OnSharesSold { return h.sold },
		func(p OnSharesSold) error { return p.OnSharesSold(ctx, t) })
}

func (r *Registry) EmitPerkClaimed(ctx context.Context, c *perk.Claim) {
	emit(ctx, r, "OnPerkClaimed", func(h *hooks) []OnPerkClaimed { return h.claimed },
		func(p OnPerkClaimed) error { return p.OnPerkClaimed(ctx, c) })
}

// EmitCallRejected reports a failed call. err is the error returned to the
// caller.
func (r *Registry) EmitCallRejected(ctx context.Context, op, sender string, err error) {
	emit(ctx, r, "OnCallRejected", func(h *hooks) []OnCallRejected { return h.rejected },
		func(p OnCallRejected) error { return p.OnCallRejected(ctx, op, sender, err) })
}

// callWithTimeout runs fn on its own goroutine so a stuck plugin cannot
// stall a trade.
func (r *Registry) callWithTimeout(ctx context.Context, name string, fn func() error) error {
	done := make(chan error, 1)
	go func() { done <- fn() }()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("plugin timeout: %s", name)
	case <-ctx.Done():
		return ctx.Err()
	}
}
