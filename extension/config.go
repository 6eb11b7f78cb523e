package extension

import (
	"time"

	"github.com/xraph/curve/store/dial"
	"github.com/xraph/curve/types"
)

// Config holds the curve extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.curve" or "curve" keys).
type Config struct {
	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// Denom is the settlement denomination (default: "usei").
	Denom string `json:"denom" mapstructure:"denom" yaml:"denom"`

	// Administrator, when set, is recorded on start if no administrator
	// exists yet. A different administrator already on record is an error.
	Administrator string `json:"administrator" mapstructure:"administrator" yaml:"administrator"`

	// PluginTimeout bounds a single plugin hook call (default: 5s).
	PluginTimeout time.Duration `json:"plugin_timeout" mapstructure:"plugin_timeout" yaml:"plugin_timeout"`

	// Store selects the backend when no store is passed with WithStore.
	// An empty driver means the in-memory store.
	Store dial.Config `json:"store" mapstructure:"store" yaml:"store"`

	// GroveDatabase is the name of a grove.DB registered in the DI container.
	// When set (or when WithGroveDatabase was called), the extension resolves
	// that DB and builds the matching store for its driver (pg, sqlite or
	// mongo) instead of dialing Store. Empty means the unnamed grove.DB.
	GroveDatabase string `json:"grove_database" mapstructure:"grove_database" yaml:"grove_database"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Denom:         types.DefaultDenom,
		PluginTimeout: 5 * time.Second,
		Store:         dial.Config{Driver: dial.DriverMemory},
	}
}
