package curve_test

import (
	"context"
	"log"
	"log/slog"
	"testing"

	"github.com/xraph/curve"
	"github.com/xraph/curve/store/memory"
	"github.com/xraph/curve/types"
)

// TestDocumentationExamples verifies that the package documentation examples work.
func TestDocumentationExamples(t *testing.T) {
	t.Run("QuickStartExample", func(t *testing.T) {
		// Memory for demo, use sqlite or postgres in production
		s := memory.New()

		c := curve.New(s,
			curve.WithLogger(slog.Default()),
			curve.WithDenom("usei"),
		)

		ctx := context.Background()
		if err := c.Start(ctx); err != nil {
			t.Fatal(err)
		}
		defer c.Stop()

		if err := c.Init(ctx, "admin"); err != nil {
			t.Fatal(err)
		}
		if _, err := c.AllowJoin(ctx, c.NewInfo("admin"), "athlete"); err != nil {
			t.Fatal(err)
		}
		_, err := c.Register(ctx, c.NewInfo("athlete"), curve.RegisterMsg{
			FirstName: "Jane",
			LastName:  "Doe",
			Perks:     curve.PerkRules{{RequiredShares: 1, MinHoldSeconds: 86400}},
		})
		if err != nil {
			t.Fatal(err)
		}

		price, err := c.Price(ctx, "athlete")
		if err != nil {
			t.Fatal(err)
		}

		resp, err := c.Buy(ctx, c.NewInfo("fan", curve.CoinOf("usei", price)), "athlete")
		if err != nil {
			t.Fatal(err)
		}
		for _, p := range resp.Payments {
			log.Printf("pay %s to %s (%s)\n", p.Amount, p.Recipient, p.Reason)
		}

		resp, err = c.Sell(ctx, c.NewInfo("fan"), "athlete")
		if err != nil {
			t.Fatal(err)
		}
		log.Printf("sold for %s, retained %s\n", resp.Trade.Payout, resp.Trade.Retained)
	})

	t.Run("CoinExamples", func(t *testing.T) {
		// Constructors
		a := types.NewCoin("usei", 100)
		b := types.NewCoin("usei", 250)
		_ = types.Zero("usei")

		// Checked arithmetic
		sum, err := a.Add(b) // 350usei
		if err != nil {
			t.Fatal(err)
		}
		if _, err := a.Sub(b); err == nil {
			t.Error("underflow not reported")
		}
		if _, err := a.Add(types.NewCoin("uatom", 1)); err == nil {
			t.Error("denom mismatch not reported")
		}

		// Comparison
		if !a.LessThan(sum) {
			t.Error("100usei should be less than 350usei")
		}

		// Formatting
		if got := sum.String(); got != "350usei" {
			t.Errorf("String() = %q", got)
		}
	})
}
