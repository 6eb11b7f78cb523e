package curvetest_test

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/curve"
	"github.com/xraph/curve/curvetest"
	"github.com/xraph/curve/types"
)

func TestBankSendIsAllOrNothing(t *testing.T) {
	b := curvetest.NewBank()
	_ = b.Mint("a", types.NewCoin("usei", 100), types.NewCoin("uatom", 5))

	err := b.Send("a", "b", types.NewCoin("usei", 50), types.NewCoin("uatom", 6))
	if !errors.Is(err, curvetest.ErrInsufficientBalance) {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}
	if got := b.Balance("a", "usei"); got.Lo != 100 {
		t.Errorf("partial send moved usei: a has %s", got)
	}
	if got := b.Balance("b", "usei"); !got.IsZero() {
		t.Errorf("b received %s", got)
	}

	if err := b.Send("a", "b", types.NewCoin("usei", 60), types.NewCoin("usei", 40)); err != nil {
		t.Fatal(err)
	}
	if got := b.Balance("b", "usei"); got.Lo != 100 {
		t.Errorf("b has %s, want 100", got)
	}
	if err := b.Send("nobody", "b", types.NewCoin("usei", 0)); err != nil {
		t.Errorf("zero send from empty account: %v", err)
	}
}

func TestClock(t *testing.T) {
	c := curvetest.NewClock(curvetest.DefaultStart)
	c.Advance(5)
	if got := c.Now(); got != curvetest.DefaultStart+5 {
		t.Errorf("Now = %d", got)
	}
	c.Set(1)
	if c.Now() != 1 {
		t.Errorf("Set did not move the clock")
	}
}

func TestExecuteRefundsOnRejection(t *testing.T) {
	ctx := context.Background()
	h, err := curvetest.New(ctx, "admin")
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	_ = h.Fund("fan", 500)
	_, err = h.Execute(ctx, "fan", curve.BuyMsg{Owner: "nobody"}, h.Coins(500)...)
	if !curve.IsNotFound(err) {
		t.Fatalf("err = %v, want not found", err)
	}
	if got := h.Balance("fan"); got != 500 {
		t.Errorf("fan has %d after refund, want 500", got)
	}
	if got := h.Balance(h.Contract); got != 0 {
		t.Errorf("contract kept %d", got)
	}

	_, err = h.Execute(ctx, "fan", curve.BuyMsg{Owner: "nobody"}, h.Coins(501)...)
	if !errors.Is(err, curvetest.ErrInsufficientBalance) {
		t.Errorf("overdrawn escrow: %v", err)
	}
}

func TestContractStaysSolvent(t *testing.T) {
	ctx := context.Background()
	h, err := curvetest.New(ctx, "admin")
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	if err := h.Onboard(ctx, "admin", "athlete", curve.PerkRules{{RequiredShares: 1}}); err != nil {
		t.Fatal(err)
	}
	fans := []string{"f1", "f2", "f3"}
	for _, f := range fans {
		_ = h.Fund(f, 1_000_000)
	}

	for _, f := range fans {
		price, _ := h.Query(ctx, curve.GetPrice{Owner: "athlete"})
		if _, err := h.Execute(ctx, f, curve.BuyMsg{Owner: "athlete"}, h.Coins(price)...); err != nil {
			t.Fatal(err)
		}
	}
	// Sell in the opposite order; every payout must be covered by reserve.
	for i := len(fans) - 1; i >= 0; i-- {
		if _, err := h.Execute(ctx, fans[i], curve.SellMsg{Owner: "athlete"}); err != nil {
			t.Fatalf("sell by %s: %v", fans[i], err)
		}
	}
	// Buys kept 90% of 100+400+900 and sells paid back 90% of the same.
	if got := h.Balance(h.Contract); got != 0 {
		t.Errorf("contract reserve = %d, want 0", got)
	}
}
