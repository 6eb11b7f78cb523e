package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/xraph/curve/store/dial"
	"github.com/xraph/curve/types"
)

// config is resolved from flags, CURVE_* environment variables and an
// optional curvectl.yaml, in that order of precedence.
type config struct {
	Store    dial.Config `mapstructure:"store"`
	Denom    string      `mapstructure:"denom"`
	Sender   string      `mapstructure:"sender"`
	Time     uint64      `mapstructure:"time"`
	LogLevel string      `mapstructure:"log_level"`
	Output   string      `mapstructure:"output"`
}

func newFlagSet(stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet("curvectl", pflag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.String("config", "", "config file (default ./curvectl.yaml, then $HOME/.curve/curvectl.yaml)")
	fs.String("store.driver", dial.DriverSQLite, "store backend: memory, sqlite, postgres or mongo")
	fs.String("store.dsn", "curve.db", "sqlite path or postgres/mongo connection URI")
	fs.String("store.database", "", "mongo database name")
	fs.String("denom", types.DefaultDenom, "settlement denom")
	fs.StringP("sender", "s", "", "address making the call")
	fs.Uint64("time", 0, "block time in unix seconds (default now)")
	fs.String("log_level", "warn", "debug, info, warn or error")
	fs.StringP("output", "o", "yaml", "yaml or json")

	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: curvectl [flags] <command> [args]")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "commands:")
		for _, c := range commands {
			fmt.Fprintf(stderr, "  %-12s %s\n", c.name, c.usage)
		}
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "flags:")
		fs.PrintDefaults()
	}
	return fs
}

// loadConfig parses args and returns the merged config plus the remaining
// positional arguments.
func loadConfig(args []string, stderr io.Writer) (*config, []string, error) {
	fs := newFlagSet(stderr)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	v := viper.New()
	v.SetEnvPrefix("CURVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, nil, err
	}

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("curvectl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.curve")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, fs.Args(), nil
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log_level: %w", err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})), nil
}
