package plugin_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xraph/curve/holding"
	"github.com/xraph/curve/plugin"
)

type namedPlugin string

func (p namedPlugin) Name() string { return string(p) }

type buyCounter struct {
	namedPlugin
	n int
}

func (b *buyCounter) OnSharesBought(context.Context, *holding.Trade) error {
	b.n++
	return nil
}

type slowPlugin struct{ namedPlugin }

func (slowPlugin) OnSharesBought(ctx context.Context, _ *holding.Trade) error {
	time.Sleep(200 * time.Millisecond)
	return nil
}

type failingPlugin struct{ namedPlugin }

func (failingPlugin) OnSharesSold(context.Context, *holding.Trade) error {
	return errors.New("nope")
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := plugin.NewRegistry()
	if err := r.Register(namedPlugin("a")); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(namedPlugin("a")); err == nil {
		t.Fatal("duplicate registration accepted")
	}
	if r.Count() != 1 || r.Get("a") == nil || r.Get("b") != nil {
		t.Errorf("registry state: count=%d", r.Count())
	}
}

func TestImplemented(t *testing.T) {
	got := plugin.Implemented(&buyCounter{namedPlugin: "c"})
	if len(got) != 1 || got[0] != "OnSharesBought" {
		t.Errorf("Implemented = %v", got)
	}
	if got := plugin.Implemented(namedPlugin("bare")); len(got) != 0 {
		t.Errorf("bare plugin implements %v", got)
	}
}

func TestEmitOnlyReachesImplementers(t *testing.T) {
	r := plugin.NewRegistry()
	c := &buyCounter{namedPlugin: "counter"}
	_ = r.Register(c)
	_ = r.Register(failingPlugin{"failing"})

	ctx := context.Background()
	r.EmitSharesBought(ctx, &holding.Trade{})
	r.EmitSharesBought(ctx, &holding.Trade{})
	r.EmitSharesSold(ctx, &holding.Trade{})

	if c.n != 2 {
		t.Errorf("counter saw %d buys, want 2", c.n)
	}
}

func TestSlowPluginTimesOut(t *testing.T) {
	r := plugin.NewRegistry().WithTimeout(20 * time.Millisecond)
	_ = r.Register(slowPlugin{"slow"})

	start := time.Now()
	r.EmitSharesBought(context.Background(), &holding.Trade{})
	if elapsed := time.Since(start); elapsed > 150*time.Millisecond {
		t.Errorf("emit blocked for %s", elapsed)
	}
}
