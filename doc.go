// Package curve is a per-owner bonding-curve share ledger.
//
// Owners are admitted by an administrator, register once with a list of
// perks, and from then on anyone may buy or sell units of that owner's
// supply. Prices follow a fixed quadratic curve, so nobody sets them:
//
//	price(n) = n² × 100
//
// A buy is priced at n = supply+1 and a sell at n = supply. Buyers pay the
// full price; 5% goes to the owner and 5% to the administrator, and the
// rest stays in the contract as reserve. Sellers receive 90% of the sell
// price and the remaining 10% is retained. Each holder's units carry their
// acquisition time, and a sale removes the most recent one.
//
// Perks are redeemed by holding enough units for long enough. Claiming is
// a read-only check that emits an event for off-chain fulfilment.
//
// # Quick Start
//
//	s := memory.New() // or sqlite.Open, postgres.Connect, mongo.Connect
//
//	c := curve.New(s, curve.WithLogger(slog.Default()), curve.WithDenom("usei"))
//	if err := c.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Stop()
//
//	_ = c.Init(ctx, "admin")
//	_, _ = c.AllowJoin(ctx, c.NewInfo("admin"), "athlete")
//	_, _ = c.Register(ctx, c.NewInfo("athlete"), curve.RegisterMsg{
//	    Perks: curve.PerkRules{{RequiredShares: 1, MinHoldSeconds: 86400}},
//	})
//
//	resp, err := c.Buy(ctx, c.NewInfo("fan", curve.NewCoin("usei", 100)), "athlete")
//
// Every successful call returns a Response holding the payments the host
// must settle and the events it should publish. A failed call returns an
// error and writes nothing; classify it with KindOf.
//
// # Integration
//
// Plugins observe the engine through small hook interfaces (see package
// plugin). The observability package records metrics, audit_hook forwards
// an audit trail, and extension mounts the engine into a Forge app.
//
// # TypeID
//
// Records the engine produces carry TypeIDs:
//
//	trd_01h2xcejqtf2nbrexx3vqjhp41  // Trade
//	pay_01h2xcejqtf2nbrexx3vqjhp41  // Payment
//	clm_01h455vb4pex5vsknk084sn02q  // Perk claim
package curve
