// Command curvectl operates a curve ledger stored in sqlite, postgres or
// mongo from the command line.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/pflag"

	"github.com/xraph/curve"
	"github.com/xraph/curve/store/dial"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "curvectl:", err)
		if k := curve.KindOf(err); k != curve.KindInternal {
			fmt.Fprintln(os.Stderr, "kind:", k)
		}
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, rest, err := loadConfig(args, stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(rest) == 0 {
		return fmt.Errorf("%w: curvectl [flags] <command> [args] (see --help)", errUsage)
	}

	cmd, ok := lookup(rest[0])
	if !ok {
		return fmt.Errorf("unknown command %q", rest[0])
	}
	if err := cmd.check(rest[1:]); err != nil {
		return err
	}

	logger, err := newLogger(stderr, cfg.LogLevel)
	if err != nil {
		return err
	}

	s, err := dial.Open(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	opts := []curve.Option{
		curve.WithLogger(logger),
		curve.WithDenom(cfg.Denom),
	}
	if cfg.Time != 0 {
		at := cfg.Time
		opts = append(opts, curve.WithClock(func() uint64 { return at }))
	}

	c := curve.New(s, opts...)
	if err := c.Start(ctx); err != nil {
		_ = s.Close()
		return err
	}
	defer func() {
		if err := c.Stop(); err != nil {
			logger.Error("stop", "error", err)
		}
	}()

	out, err := cmd.run(ctx, &env{curve: c, cfg: cfg}, rest[1:])
	if err != nil {
		return err
	}
	return write(stdout, cfg.Output, out)
}
