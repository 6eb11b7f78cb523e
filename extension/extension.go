// Package extension provides the Forge extension adapter for the curve
// engine.
//
// It implements the forge.Extension interface to integrate the engine into a
// Forge application with DI registration and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.curve" or "curve" keys.
package extension

import (
	"context"
	"errors"
	"fmt"

	"github.com/xraph/forge"
	"github.com/xraph/grove"
	"github.com/xraph/vessel"

	"github.com/xraph/curve"
	"github.com/xraph/curve/store"
	"github.com/xraph/curve/store/dial"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "curve"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Per-owner bonding-curve share ledger"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts the curve engine as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config    Config
	engine    *curve.Curve
	store     store.Store
	curveOpts []curve.Option
	useGrove  bool
}

// New creates a new curve Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying curve instance.
// This is nil until Register is called.
func (e *Extension) Engine() *curve.Curve { return e.engine }

// Config returns the resolved configuration.
func (e *Extension) Config() Config { return e.config }

// Register implements [forge.Extension]. It loads configuration,
// initializes the engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	// Resolve a store if none was provided programmatically: a grove.DB from
	// the container when asked for, otherwise the configured backend.
	if e.store == nil {
		var (
			s   store.Store
			err error
		)
		if e.useGrove || e.config.GroveDatabase != "" {
			s, err = groveStore(fapp.Container(), e.config.GroveDatabase)
		} else {
			s, err = dial.Open(context.Background(), e.config.Store)
		}
		if err != nil {
			return fmt.Errorf("curve: open store: %w", err)
		}
		e.store = s
	}

	e.engine = curve.New(e.store, e.engineOptions()...)

	return vessel.Provide(fapp.Container(), func() (*curve.Curve, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("curve: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.engine.Start(ctx); err != nil {
			return err
		}
	}

	if err := e.ensureAdministrator(ctx); err != nil {
		return err
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension]. It closes the store.
func (e *Extension) Stop(_ context.Context) error {
	defer e.MarkStopped()
	if e.engine == nil {
		return nil
	}
	return e.engine.Stop()
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("curve: store not initialized")
	}
	return e.store.Ping(ctx)
}

// groveStore resolves the named grove.DB (the unnamed one when name is
// empty) and wraps it in the store for its driver.
func groveStore(c vessel.Vessel, name string) (store.Store, error) {
	var (
		db  *grove.DB
		err error
	)
	if name != "" {
		db, err = vessel.InjectNamed[*grove.DB](c, name)
	} else {
		db, err = vessel.Inject[*grove.DB](c)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve grove database %q: %w", name, err)
	}
	return dial.FromGrove(db)
}

// ensureAdministrator records the configured administrator on first start.
func (e *Extension) ensureAdministrator(ctx context.Context) error {
	want := e.config.Administrator
	if want == "" {
		return nil
	}

	have, err := e.engine.Administrator(ctx)
	switch {
	case errors.Is(err, curve.ErrNotInitialized):
		return e.engine.Init(ctx, want)
	case err != nil:
		return err
	case have != want:
		return fmt.Errorf("%w: configured %q, store has %q", curve.ErrAlreadyInitialized, want, have)
	default:
		return nil
	}
}

// engineOptions derives engine options from the resolved config. Options
// passed with WithCurveOption come last and so override config.
func (e *Extension) engineOptions() []curve.Option {
	return append([]curve.Option{
		curve.WithDenom(e.config.Denom),
		curve.WithPluginTimeout(e.config.PluginTimeout),
	}, e.curveOpts...)
}

// ──────────────────────────────────────────────────
// Configuration
// ──────────────────────────────────────────────────

// configKeys are tried in order; the first bindable one wins.
var configKeys = []string{"extensions." + ExtensionName, ExtensionName}

// loadConfiguration resolves e.config from the app's config files and the
// programmatic options. File values win where both are set.
func (e *Extension) loadConfiguration() error {
	code := e.config

	file, ok := e.configFromFile()
	switch {
	case ok:
		e.config = e.mergeConfigurations(file, code)
	case code.RequireConfig:
		return fmt.Errorf("curve: configuration required but none of %v is set", configKeys)
	default:
		e.config = e.mergeWithDefaults(code)
	}

	e.Logger().Debug("curve: configuration loaded",
		forge.F("denom", e.config.Denom),
		forge.F("administrator", e.config.Administrator),
		forge.F("store_driver", e.config.Store.Driver),
		forge.F("grove_database", e.config.GroveDatabase),
		forge.F("plugin_timeout", e.config.PluginTimeout),
		forge.F("disable_migrate", e.config.DisableMigrate),
	)
	return nil
}

func (e *Extension) configFromFile() (Config, bool) {
	cm := e.App().Config()
	for _, key := range configKeys {
		if !cm.IsSet(key) {
			continue
		}
		var cfg Config
		if err := cm.Bind(key, &cfg); err != nil {
			e.Logger().Warn("curve: ignoring unbindable config", forge.F("key", key), forge.F("error", err))
			continue
		}
		e.Logger().Debug("curve: loaded config from file", forge.F("key", key))
		return cfg, true
	}
	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields from DefaultConfig.
func (e *Extension) mergeWithDefaults(cfg Config) Config {
	def := DefaultConfig()
	if cfg.Denom == "" {
		cfg.Denom = def.Denom
	}
	if cfg.PluginTimeout == 0 {
		cfg.PluginTimeout = def.PluginTimeout
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = def.Store.Driver
	}
	return cfg
}

// mergeConfigurations lays code over file. File values win; code fills
// the gaps, and DisableMigrate set in code always sticks.
func (e *Extension) mergeConfigurations(file, code Config) Config {
	file.DisableMigrate = file.DisableMigrate || code.DisableMigrate
	if file.Denom == "" {
		file.Denom = code.Denom
	}
	if file.Administrator == "" {
		file.Administrator = code.Administrator
	}
	if file.PluginTimeout == 0 {
		file.PluginTimeout = code.PluginTimeout
	}
	if file.GroveDatabase == "" {
		file.GroveDatabase = code.GroveDatabase
	}
	// A store block is never mixed across sources.
	if !storeConfigured(file.Store) && storeConfigured(code.Store) {
		file.Store = code.Store
	}
	return e.mergeWithDefaults(file)
}
