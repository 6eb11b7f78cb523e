package curve_test

import (
	"context"
	"sync"
	"testing"

	"github.com/xraph/curve"
	"github.com/xraph/curve/curvetest"
	"github.com/xraph/curve/holding"
	"github.com/xraph/curve/owner"
	"github.com/xraph/curve/perk"
	"github.com/xraph/curve/plugin"
)

type recorder struct {
	mu       sync.Mutex
	calls    []string
	trades   []*holding.Trade
	rejected []curve.Kind
}

var (
	_ plugin.OnAdministratorSet = (*recorder)(nil)
	_ plugin.OnAllowListed      = (*recorder)(nil)
	_ plugin.OnOwnerRegistered  = (*recorder)(nil)
	_ plugin.OnSharesBought     = (*recorder)(nil)
	_ plugin.OnSharesSold       = (*recorder)(nil)
	_ plugin.OnPerkClaimed      = (*recorder)(nil)
	_ plugin.OnCallRejected     = (*recorder)(nil)
)

func (r *recorder) Name() string { return "recorder" }

func (r *recorder) add(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *recorder) OnAdministratorSet(context.Context, string) error {
	r.add("admin")
	return nil
}

func (r *recorder) OnAllowListed(context.Context, string) error {
	r.add("allow")
	return nil
}

func (r *recorder) OnOwnerRegistered(context.Context, *owner.Owner) error {
	r.add("register")
	return nil
}

func (r *recorder) OnSharesBought(_ context.Context, t *holding.Trade) error {
	r.add("buy")
	r.mu.Lock()
	r.trades = append(r.trades, t)
	r.mu.Unlock()
	return nil
}

func (r *recorder) OnSharesSold(_ context.Context, t *holding.Trade) error {
	r.add("sell")
	r.mu.Lock()
	r.trades = append(r.trades, t)
	r.mu.Unlock()
	return nil
}

func (r *recorder) OnPerkClaimed(context.Context, *perk.Claim) error {
	r.add("claim")
	return nil
}

func (r *recorder) OnCallRejected(_ context.Context, _, _ string, err error) error {
	r.add("reject")
	r.mu.Lock()
	r.rejected = append(r.rejected, curve.KindOf(err))
	r.mu.Unlock()
	return nil
}

func TestPluginHooks(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}

	h, err := curvetest.New(ctx, admin, curve.WithPlugin(rec))
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	if err := h.Onboard(ctx, admin, athlete, curve.PerkRules{{RequiredShares: 1}}); err != nil {
		t.Fatal(err)
	}
	_ = h.Fund(user, 1000)
	if _, err := h.Execute(ctx, user, curve.BuyMsg{Owner: athlete}, h.Coins(100)...); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Execute(ctx, user, curve.ClaimPerkMsg{Owner: athlete}); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Execute(ctx, user, curve.SellMsg{Owner: athlete}); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Execute(ctx, user, curve.SellMsg{Owner: athlete}); err == nil {
		t.Fatal("selling with nothing held succeeded")
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	want := []string{"admin", "allow", "register", "buy", "claim", "sell", "reject"}
	if len(rec.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", rec.calls, want)
	}
	for i := range want {
		if rec.calls[i] != want[i] {
			t.Errorf("call %d = %s, want %s", i, rec.calls[i], want[i])
		}
	}

	if len(rec.trades) != 2 {
		t.Fatalf("trades = %d, want 2", len(rec.trades))
	}
	buy, sell := rec.trades[0], rec.trades[1]
	if buy.Side != curve.ModeBuy || buy.Price.Amount.Lo != 100 {
		t.Errorf("buy trade = %+v", buy)
	}
	if sell.Side != curve.ModeSell || sell.Payout.Amount.Lo != 90 || sell.Retained.Amount.Lo != 10 {
		t.Errorf("sell trade = %+v", sell)
	}
	if len(rec.rejected) != 1 || rec.rejected[0] != curve.KindInsufficientHoldings {
		t.Errorf("rejected = %v", rec.rejected)
	}
}
