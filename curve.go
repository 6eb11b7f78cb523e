package curve

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/sasha-s/go-deadlock"

	"github.com/xraph/curve/plugin"
	"github.com/xraph/curve/store"
	"github.com/xraph/curve/types"
)

// Clock returns the current time in whole seconds.
type Clock func() uint64

// SystemClock reads the wall clock.
func SystemClock() uint64 { return uint64(time.Now().Unix()) }

// Curve is the bonding-curve engine. Every call runs to completion under a
// single lock, so no two calls ever observe each other's partial state.
type Curve struct {
	mu      deadlock.Mutex
	store   store.Store
	plugins *plugin.Registry
	logger  *slog.Logger

	denom string
	clock Clock
}

// New creates a new Curve instance.
func New(s store.Store, opts ...Option) *Curve {
	c := &Curve{
		store:   s,
		plugins: plugin.NewRegistry(),
		logger:  slog.Default(),
		denom:   types.DefaultDenom,
		clock:   SystemClock,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Option configures a Curve instance.
type Option func(*Curve)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Curve) {
		c.logger = logger
		c.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(c *Curve) {
		_ = c.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithPluginTimeout bounds how long a single plugin hook may run.
func WithPluginTimeout(d time.Duration) Option {
	return func(c *Curve) {
		c.plugins.WithTimeout(d)
	}
}

// WithDenom sets the denomination trades settle in. Attached funds in any
// other denom are ignored.
func WithDenom(denom string) Option {
	return func(c *Curve) {
		if d := strings.ToLower(strings.TrimSpace(denom)); d != "" {
			c.denom = d
		}
	}
}

// WithClock sets the clock used by NewInfo.
func WithClock(clock Clock) Option {
	return func(c *Curve) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// Denom returns the settlement denomination.
func (c *Curve) Denom() string { return c.denom }

// Store returns the underlying store.
func (c *Curve) Store() store.Store { return c.store }

// Plugins returns the plugin registry.
func (c *Curve) Plugins() *plugin.Registry { return c.plugins }

// NewInfo builds call info for sender stamped with the engine clock.
func (c *Curve) NewInfo(sender string, funds ...types.Coin) Info {
	return Info{Sender: sender, Time: c.clock(), Funds: funds}
}

// Start migrates the store and initializes plugins.
func (c *Curve) Start(ctx context.Context) error {
	if err := c.store.Migrate(ctx); err != nil {
		return err
	}

	c.plugins.EmitInit(ctx, c)

	c.logger.Info("curve started",
		"denom", c.denom,
		"plugins", c.plugins.Count(),
	)

	return nil
}

// Stop shuts down plugins and closes the store.
func (c *Curve) Stop() error {
	ctx := context.Background()
	c.plugins.EmitShutdown(ctx)

	return c.store.Close()
}

// Init records the administrator. It succeeds exactly once.
func (c *Curve) Init(ctx context.Context, admin string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	admin = strings.TrimSpace(admin)
	if admin == "" {
		return ValidationError{Field: "administrator", Message: "must not be empty"}
	}
	if err := c.store.SetAdministrator(ctx, admin); err != nil {
		return err
	}

	c.plugins.EmitAdministratorSet(ctx, admin)
	c.logger.Info("curve initialized", "administrator", admin)
	return nil
}

// Administrator returns the identity set by Init.
func (c *Curve) Administrator(ctx context.Context) (string, error) {
	return c.store.GetAdministrator(ctx)
}

// reject logs and broadcasts a failed call, then returns err unchanged.
func (c *Curve) reject(ctx context.Context, op, sender string, err error) error {
	kind := KindOf(err)
	if kind == KindInternal {
		c.logger.Error("call failed", "op", op, "sender", sender, "error", err)
	} else {
		c.logger.Warn("call rejected", "op", op, "sender", sender, "kind", kind.String(), "error", err)
	}
	c.plugins.EmitCallRejected(ctx, op, sender, err)
	return err
}

func requireIdentity(field, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", ValidationError{Field: field, Message: "must not be empty"}
	}
	return v, nil
}
