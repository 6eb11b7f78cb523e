package memory_test

import (
	"context"
	"errors"
	"testing"

	"lukechampine.com/uint128"

	"github.com/xraph/curve"
	"github.com/xraph/curve/store"
	"github.com/xraph/curve/store/memory"
	"github.com/xraph/curve/store/storetest"
)

func TestConformance(t *testing.T) {
	storetest.Run(t, func(*testing.T) store.Store { return memory.New() })
}

func TestReadsDoNotAlias(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	_ = s.Allow(ctx, "athlete")
	_ = s.RegisterOwner(ctx, &curve.Owner{Address: "athlete", Perks: curve.PerkRules{{RequiredShares: 1}}})
	_ = s.RecordPurchase(ctx, "fan", "athlete", 10, uint128.Zero)

	h, _ := s.GetHolding(ctx, "fan", "athlete")
	h.Acquired[0] = 99
	o, _ := s.GetOwner(ctx, "athlete")
	o.Perks[0].RequiredShares = 7

	h2, _ := s.GetHolding(ctx, "fan", "athlete")
	o2, _ := s.GetOwner(ctx, "athlete")
	if h2.Acquired[0] != 10 || o2.Perks[0].RequiredShares != 1 {
		t.Error("mutating a returned value changed stored state")
	}
}

func TestClosed(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Ping(ctx); !errors.Is(err, curve.ErrStoreClosed) {
		t.Errorf("Ping after close: %v", err)
	}
	if _, err := s.GetOwner(ctx, "x"); !errors.Is(err, curve.ErrStoreClosed) {
		t.Errorf("GetOwner after close: %v", err)
	}
}

func TestListHoldingsSortedByHolder(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	_ = s.Allow(ctx, "athlete")
	_ = s.RegisterOwner(ctx, &curve.Owner{Address: "athlete", Perks: curve.PerkRules{{RequiredShares: 1}}})
	for i, holder := range []string{"zed", "amy", "kim"} {
		if err := s.RecordPurchase(ctx, holder, "athlete", 1, uint128.From64(uint64(i))); err != nil {
			t.Fatal(err)
		}
	}

	hs, err := s.ListHoldings(ctx, "athlete")
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, h := range hs {
		got = append(got, h.Holder)
	}
	if len(got) != 3 || got[0] != "amy" || got[1] != "kim" || got[2] != "zed" {
		t.Errorf("holders = %v, want [amy kim zed]", got)
	}
}
