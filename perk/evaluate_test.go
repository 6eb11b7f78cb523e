package perk_test

import (
	"errors"
	"testing"

	"github.com/xraph/curve/perk"
)

func TestRulesValidate(t *testing.T) {
	if err := perk.Rules(nil).Validate(); !errors.Is(err, perk.ErrEmptyRules) {
		t.Errorf("nil rules: got %v", err)
	}
	if err := (perk.Rules{}).Validate(); !errors.Is(err, perk.ErrEmptyRules) {
		t.Errorf("empty rules: got %v", err)
	}
	if err := (perk.Rules{{RequiredShares: 1, MinHoldSeconds: 2}}).Validate(); err != nil {
		t.Errorf("valid rules: got %v", err)
	}
}

func TestQualifyingCount(t *testing.T) {
	tests := []struct {
		name     string
		acquired []uint64
		minHold  uint64
		now      uint64
		want     uint64
	}{
		{"all old enough", []uint64{10, 11, 12}, 5, 20, 3},
		{"boundary is inclusive", []uint64{10, 11}, 5, 15, 1},
		{"none old enough", []uint64{18, 19}, 5, 20, 0},
		{"zero hold", []uint64{20, 21}, 0, 20, 1},
		{"now before hold period", []uint64{0, 1}, 100, 50, 0},
		{"now equals hold period", []uint64{0, 1}, 100, 100, 1},
		{"max hold never underflows", []uint64{0}, ^uint64(0), 1, 0},
		{"empty", nil, 0, 100, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := perk.QualifyingCount(tt.acquired, tt.minHold, tt.now); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEvaluate(t *testing.T) {
	rules := perk.Rules{
		{RequiredShares: 1, MinHoldSeconds: 2},
		{RequiredShares: 3, MinHoldSeconds: 60},
		{RequiredShares: 0, MinHoldSeconds: 0},
	}

	tests := []struct {
		name     string
		acquired []uint64
		perkID   uint64
		now      uint64
		err      error
		eligible bool
	}{
		{"eligible after hold", []uint64{1000}, 0, 1002, nil, true},
		{"not yet held long enough", []uint64{1000}, 0, 1001, perk.ErrInsufficientQualifying, false},
		{"needs more shares", []uint64{0, 0}, 1, 1000, perk.ErrInsufficientQualifying, false},
		{"enough shares", []uint64{0, 0, 0, 999}, 1, 1000, nil, true},
		{"zero requirement", []uint64{5}, 2, 5, nil, true},
		{"no holdings", nil, 0, 1000, perk.ErrNoHoldings, false},
		{"invalid perk id", []uint64{1}, 3, 1000, perk.ErrInvalidID, false},
		{"clock before hold period", []uint64{0}, 1, 10, perk.ErrInsufficientQualifying, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := perk.Evaluate(tt.acquired, rules, tt.perkID, tt.now)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("expected %v, got %v", tt.err, err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res != nil && res.Eligible != tt.eligible {
				t.Errorf("eligible = %v, want %v", res.Eligible, tt.eligible)
			}
			if tt.eligible && res == nil {
				t.Fatal("expected a result")
			}
		})
	}
}

func TestEvaluateNoHoldingsBeforeRuleLookup(t *testing.T) {
	// An out-of-range perk id still reports missing holdings first.
	_, err := perk.Evaluate(nil, perk.Rules{}, 7, 0)
	if !errors.Is(err, perk.ErrNoHoldings) {
		t.Errorf("expected ErrNoHoldings, got %v", err)
	}
}

func TestEvaluateIneligibleResult(t *testing.T) {
	res, err := perk.Evaluate([]uint64{10, 20}, perk.Rules{{RequiredShares: 2, MinHoldSeconds: 10}}, 0, 25)
	if !errors.Is(err, perk.ErrInsufficientQualifying) {
		t.Fatalf("expected ErrInsufficientQualifying, got %v", err)
	}
	if res == nil || res.Qualifying != 1 || res.Held != 2 || res.Reason == "" {
		t.Errorf("unexpected result: %+v", res)
	}
}
