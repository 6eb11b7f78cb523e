// Package storetest is a conformance suite run against every store.Store
// backend.
package storetest

import (
	"context"
	"errors"
	"testing"

	"lukechampine.com/uint128"

	"github.com/xraph/curve"
	"github.com/xraph/curve/owner"
	"github.com/xraph/curve/perk"
	"github.com/xraph/curve/store"
	"github.com/xraph/curve/types"
)

// Factory returns a fresh, migrated store. The suite closes it.
type Factory func(t *testing.T) store.Store

// Run exercises s against the behavior the engine relies on.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"Administrator", testAdministrator},
		{"Registration", testRegistration},
		{"ListOwners", testListOwners},
		{"PurchaseAndSale", testPurchaseAndSale},
		{"StaleSupplyConflicts", testStaleSupply},
		{"SaleWithoutHoldings", testSaleWithoutHoldings},
		{"UnknownOwner", testUnknownOwner},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s store.Store
			t.Cleanup(func() {
				if s != nil {
					_ = s.Close()
				}
			})
			s = newStore(t)
			tt.fn(t, s)
		})
	}
}

func register(t *testing.T, s store.Store, address string) {
	t.Helper()
	ctx := context.Background()
	if err := s.Allow(ctx, address); err != nil {
		t.Fatal(err)
	}
	o := &owner.Owner{
		Entity:    types.NewEntity(),
		Address:   address,
		FirstName: "First",
		LastName:  "Last",
		Perks:     perk.Rules{{RequiredShares: 2, MinHoldSeconds: 30}},
	}
	if err := s.RegisterOwner(ctx, o); err != nil {
		t.Fatal(err)
	}
}

func supply(n uint64) uint128.Uint128 { return uint128.From64(n) }

func testAdministrator(t *testing.T, s store.Store) {
	ctx := context.Background()

	if _, err := s.GetAdministrator(ctx); !errors.Is(err, curve.ErrNotInitialized) {
		t.Fatalf("before init: %v", err)
	}
	if err := s.SetAdministrator(ctx, "admin"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetAdministrator(ctx, "other"); !errors.Is(err, curve.ErrAlreadyInitialized) {
		t.Fatalf("second set: %v", err)
	}
	if got, err := s.GetAdministrator(ctx); err != nil || got != "admin" {
		t.Errorf("administrator = %q, %v", got, err)
	}
}

func testRegistration(t *testing.T, s store.Store) {
	ctx := context.Background()
	o := &owner.Owner{Entity: types.NewEntity(), Address: "athlete", Perks: perk.Rules{{RequiredShares: 1}}}

	if err := s.RegisterOwner(ctx, o); !errors.Is(err, curve.ErrNotAllowListed) {
		t.Fatalf("unlisted: %v", err)
	}
	if err := s.Allow(ctx, "athlete"); err != nil {
		t.Fatal(err)
	}
	if err := s.Allow(ctx, "athlete"); err != nil {
		t.Fatalf("allowing twice: %v", err)
	}
	if ok, err := s.IsAllowed(ctx, "athlete"); err != nil || !ok {
		t.Fatalf("IsAllowed = %v, %v", ok, err)
	}
	if err := s.RegisterOwner(ctx, o); err != nil {
		t.Fatal(err)
	}
	if ok, _ := s.IsAllowed(ctx, "athlete"); ok {
		t.Error("allow-list entry survived registration")
	}

	_ = s.Allow(ctx, "athlete")
	if err := s.RegisterOwner(ctx, o); !errors.Is(err, curve.ErrAlreadyRegistered) {
		t.Fatalf("re-register: %v", err)
	}

	got, err := s.GetOwner(ctx, "athlete")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Supply.IsZero() || len(got.Perks) != 1 || got.Perks[0].RequiredShares != 1 {
		t.Errorf("owner = %+v", got)
	}
}

func testListOwners(t *testing.T, s store.Store) {
	ctx := context.Background()
	for _, a := range []string{"a", "b", "c"} {
		register(t, s, a)
	}

	all, err := s.ListOwners(ctx, owner.ListOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[0].Address != "a" || all[2].Address != "c" {
		t.Fatalf("list = %d owners", len(all))
	}

	page, err := s.ListOwners(ctx, owner.ListOpts{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 1 || page[0].Address != "b" {
		t.Errorf("page = %+v", page)
	}
}

func testPurchaseAndSale(t *testing.T, s store.Store) {
	ctx := context.Background()
	register(t, s, "athlete")

	h, err := s.GetHolding(ctx, "fan", "athlete")
	if err != nil {
		t.Fatal(err)
	}
	if h.Len() != 0 {
		t.Fatalf("fresh holding = %v", h.Acquired)
	}

	for i, at := range []uint64{100, 200, 300} {
		if err := s.RecordPurchase(ctx, "fan", "athlete", at, supply(uint64(i))); err != nil {
			t.Fatalf("purchase %d: %v", i, err)
		}
	}
	if err := s.RecordPurchase(ctx, "other", "athlete", 400, supply(3)); err != nil {
		t.Fatal(err)
	}

	if got, _ := s.GetSupply(ctx, "athlete"); !got.Equals(supply(4)) {
		t.Fatalf("supply = %s, want 4", got)
	}

	if err := s.RecordSale(ctx, "fan", "athlete", supply(4)); err != nil {
		t.Fatal(err)
	}
	h, _ = s.GetHolding(ctx, "fan", "athlete")
	if len(h.Acquired) != 2 || h.Acquired[0] != 100 || h.Acquired[1] != 200 {
		t.Errorf("after sale acquired = %v, want [100 200]", h.Acquired)
	}
	if got, _ := s.GetSupply(ctx, "athlete"); !got.Equals(supply(3)) {
		t.Errorf("supply = %s, want 3", got)
	}

	list, err := s.ListHoldings(ctx, "athlete")
	if err != nil {
		t.Fatal(err)
	}
	var total uint64
	for _, h := range list {
		total += h.Len()
	}
	if total != 3 {
		t.Errorf("held across holders = %d, want 3", total)
	}
}

func testStaleSupply(t *testing.T, s store.Store) {
	ctx := context.Background()
	register(t, s, "athlete")
	if err := s.RecordPurchase(ctx, "fan", "athlete", 1, supply(0)); err != nil {
		t.Fatal(err)
	}

	if err := s.RecordPurchase(ctx, "fan", "athlete", 2, supply(0)); !errors.Is(err, curve.ErrConflict) {
		t.Fatalf("stale purchase: %v", err)
	}
	if err := s.RecordSale(ctx, "fan", "athlete", supply(5)); !errors.Is(err, curve.ErrConflict) {
		t.Fatalf("stale sale: %v", err)
	}

	h, _ := s.GetHolding(ctx, "fan", "athlete")
	if h.Len() != 1 {
		t.Errorf("conflicting writes changed holding: %v", h.Acquired)
	}
	if got, _ := s.GetSupply(ctx, "athlete"); !got.Equals(supply(1)) {
		t.Errorf("supply = %s, want 1", got)
	}
}

func testSaleWithoutHoldings(t *testing.T, s store.Store) {
	ctx := context.Background()
	register(t, s, "athlete")
	if err := s.RecordPurchase(ctx, "fan", "athlete", 1, supply(0)); err != nil {
		t.Fatal(err)
	}

	if err := s.RecordSale(ctx, "stranger", "athlete", supply(1)); !errors.Is(err, curve.ErrInsufficientHoldings) {
		t.Fatalf("stranger sale: %v", err)
	}
	if err := s.RecordSale(ctx, "fan", "athlete", supply(1)); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordSale(ctx, "fan", "athlete", supply(0)); !errors.Is(err, curve.ErrInsufficientHoldings) {
		t.Fatalf("emptied holder sale: %v", err)
	}
	if got, _ := s.GetSupply(ctx, "athlete"); !got.IsZero() {
		t.Errorf("supply = %s, want 0", got)
	}
}

func testUnknownOwner(t *testing.T, s store.Store) {
	ctx := context.Background()

	if _, err := s.GetOwner(ctx, "ghost"); !errors.Is(err, curve.ErrOwnerNotFound) {
		t.Errorf("GetOwner: %v", err)
	}
	if _, err := s.GetSupply(ctx, "ghost"); !errors.Is(err, curve.ErrOwnerNotFound) {
		t.Errorf("GetSupply: %v", err)
	}
	if err := s.RecordPurchase(ctx, "fan", "ghost", 1, supply(0)); !errors.Is(err, curve.ErrOwnerNotFound) {
		t.Errorf("RecordPurchase: %v", err)
	}
}
