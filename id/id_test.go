package id_test

import (
	"strings"
	"testing"

	"github.com/xraph/curve/id"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name    string
		newFn   func() id.ID
		parseFn func(string) (id.ID, error)
		prefix  string
	}{
		{"TradeID", id.NewTradeID, id.ParseTradeID, "trd_"},
		{"PaymentID", id.NewPaymentID, id.ParsePaymentID, "pay_"},
		{"EventID", id.NewEventID, id.ParseEventID, "evt_"},
		{"ClaimID", id.NewClaimID, id.ParseClaimID, "clm_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := tt.newFn()
			if !strings.HasPrefix(original.String(), tt.prefix) {
				t.Fatalf("expected prefix %q, got %q", tt.prefix, original.String())
			}
			parsed, err := tt.parseFn(original.String())
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			if parsed.String() != original.String() {
				t.Errorf("round-trip mismatch: %q != %q", parsed.String(), original.String())
			}
		})
	}
}

func TestCrossTypeRejection(t *testing.T) {
	if _, err := id.ParseTradeID(id.NewPaymentID().String()); err == nil {
		t.Error("ParseTradeID accepted a payment ID")
	}
	if _, err := id.ParseClaimID(id.NewEventID().String()); err == nil {
		t.Error("ParseClaimID accepted an event ID")
	}
}

func TestParseEmpty(t *testing.T) {
	if _, err := id.Parse(""); err == nil {
		t.Error("expected error for empty string")
	}
}

func TestNilID(t *testing.T) {
	var i id.ID
	if !i.IsNil() {
		t.Error("zero-value ID should be nil")
	}
	if i.String() != "" || i.Prefix() != "" {
		t.Errorf("expected empty string and prefix, got %q / %q", i.String(), i.Prefix())
	}
}

func TestTextRoundTrip(t *testing.T) {
	original := id.NewClaimID()
	b, err := original.MarshalText()
	if err != nil {
		t.Fatal(err)
	}

	var decoded id.ID
	if err := decoded.UnmarshalText(b); err != nil {
		t.Fatal(err)
	}
	if decoded.String() != original.String() || decoded.Prefix() != id.PrefixClaim {
		t.Errorf("decoded %q, want %q", decoded.String(), original.String())
	}

	var empty id.ID
	if err := empty.UnmarshalText(nil); err != nil {
		t.Fatal(err)
	}
	if !empty.IsNil() {
		t.Error("empty text should decode to the nil ID")
	}
	if b, _ := empty.MarshalText(); len(b) != 0 {
		t.Errorf("nil ID encoded as %q", b)
	}
}

func TestUniqueness(t *testing.T) {
	a := id.NewPaymentID()
	b := id.NewPaymentID()
	if a.String() == b.String() {
		t.Errorf("two consecutive NewPaymentID() calls returned the same ID: %q", a.String())
	}
}
