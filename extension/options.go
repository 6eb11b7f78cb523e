package extension

import (
	"time"

	"github.com/xraph/curve"
	"github.com/xraph/curve/plugin"
	"github.com/xraph/curve/store"
	"github.com/xraph/curve/store/dial"
)

// Option configures the curve Forge extension.
type Option func(*Extension)

// WithStore sets the store for the curve engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithCurveOption passes a curve.Option through to the underlying engine.
func WithCurveOption(opt curve.Option) Option {
	return func(e *Extension) {
		e.curveOpts = append(e.curveOpts, opt)
	}
}

// WithPlugin registers a curve plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.curveOpts = append(e.curveOpts, curve.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}

// WithDenom sets the settlement denomination.
func WithDenom(denom string) Option {
	return func(e *Extension) { e.config.Denom = denom }
}

// WithAdministrator sets the administrator recorded on start.
func WithAdministrator(admin string) Option {
	return func(e *Extension) { e.config.Administrator = admin }
}

// WithPluginTimeout bounds a single plugin hook call.
func WithPluginTimeout(d time.Duration) Option {
	return func(e *Extension) { e.config.PluginTimeout = d }
}

// WithStoreDriver selects the backend opened on Register when no store was
// set with WithStore.
func WithStoreDriver(driver, dsn string) Option {
	return func(e *Extension) {
		e.config.Store.Driver = driver
		e.config.Store.DSN = dsn
	}
}

// WithMongoDatabase names the mongo database used by the mongo driver.
func WithMongoDatabase(name string) Option {
	return func(e *Extension) { e.config.Store.Database = name }
}

// WithGroveDatabase sets the name of the grove.DB to resolve from the DI container.
// The extension builds the store backend (postgres/sqlite/mongo) matching the
// grove driver type. Pass an empty string to use the default (unnamed) grove.DB.
func WithGroveDatabase(name string) Option {
	return func(e *Extension) {
		e.config.GroveDatabase = name
		e.useGrove = true
	}
}

// storeConfigured reports whether cfg names a backend explicitly.
func storeConfigured(cfg dial.Config) bool {
	return cfg.Driver != "" || cfg.DSN != ""
}
