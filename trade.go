package curve

import (
	"context"
	"fmt"
	"strconv"

	"lukechampine.com/uint128"

	"github.com/xraph/curve/holding"
	"github.com/xraph/curve/id"
	"github.com/xraph/curve/pricing"
	"github.com/xraph/curve/types"
)

// ──────────────────────────────────────────────────
// Trading
// ──────────────────────────────────────────────────

// Buy issues one unit of ownerAddr to the sender at the current buy price.
//
// The funds attached in the settlement denom must cover the price. Anything
// sent above the price is kept and reported as Trade.Excess; it is neither
// refunded nor distributed. Ten percent of the price is paid out, split evenly
// between the owner and the administrator, when that split is non-zero.
func (c *Curve) Buy(ctx context.Context, info Info, ownerAddr string) (*Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	resp, err := c.buy(ctx, info, ownerAddr)
	if err != nil {
		return nil, c.reject(ctx, "buy", info.Sender, err)
	}
	return resp, nil
}

func (c *Curve) buy(ctx context.Context, info Info, ownerAddr string) (*Response, error) {
	buyer, err := requireIdentity("sender", info.Sender)
	if err != nil {
		return nil, err
	}
	if ownerAddr, err = requireIdentity("owner", ownerAddr); err != nil {
		return nil, err
	}

	o, err := c.store.GetOwner(ctx, ownerAddr)
	if err != nil {
		return nil, err
	}
	supply := o.Supply

	price, err := pricing.Price(supply, pricing.Buy)
	if err != nil {
		return nil, err
	}

	sent, err := types.AmountOf(info.Funds, c.denom)
	if err != nil {
		return nil, err
	}
	if sent.Cmp(price) < 0 {
		return nil, fmt.Errorf("%w: sent %s%s, price is %s%s", ErrInsufficientFunds, sent, c.denom, price, c.denom)
	}
	excess := sent.Sub(price)

	fees, err := pricing.FeesForBuy(price)
	if err != nil {
		return nil, err
	}

	admin, err := c.store.GetAdministrator(ctx)
	if err != nil {
		return nil, err
	}

	h, err := c.store.GetHolding(ctx, buyer, ownerAddr)
	if err != nil {
		return nil, err
	}
	supplyAfter, err := types.CheckedAdd(supply, uint128.From64(1))
	if err != nil {
		return nil, err
	}

	if err := c.store.RecordPurchase(ctx, buyer, ownerAddr, info.Time, supply); err != nil {
		return nil, err
	}
	newPrice := c.nextPrice(ownerAddr, supplyAfter)

	t := &holding.Trade{
		ID:           id.NewTradeID(),
		Side:         pricing.Buy,
		Trader:       buyer,
		Owner:        ownerAddr,
		Price:        types.CoinOf(c.denom, price),
		NewPrice:     newPrice,
		SupplyBefore: supply,
		SupplyAfter:  supplyAfter,
		Held:         h.Len() + 1,
		Time:         info.Time,
		Sent:         types.CoinOf(c.denom, sent),
		Excess:       types.CoinOf(c.denom, excess),
		OwnerFee:     types.CoinOf(c.denom, fees.Owner),
		PlatformFee:  types.CoinOf(c.denom, fees.Platform),
	}

	resp := &Response{Trade: t}
	if !fees.IsZero() {
		resp.Payments = []Payment{
			{ID: id.NewPaymentID(), Recipient: ownerAddr, Amount: t.OwnerFee, Reason: ReasonOwnerFee},
			{ID: id.NewPaymentID(), Recipient: admin, Amount: t.PlatformFee, Reason: ReasonPlatformFee},
		}
	}
	resp.Events = []Event{tradeEvent(EventSharesBought, t)}

	if !excess.IsZero() {
		c.logger.Warn("buy overpaid, excess retained",
			"owner", ownerAddr,
			"buyer", buyer,
			"price", price.String(),
			"excess", excess.String(),
		)
	}

	c.plugins.EmitSharesBought(ctx, t)
	c.logger.Debug("shares bought",
		"owner", ownerAddr,
		"buyer", buyer,
		"price", price.String(),
		"supply", supplyAfter.String(),
	)

	return resp, nil
}

// Sell removes the sender's most recently bought unit of ownerAddr and pays
// out the sell price less a ten percent fee. The fee is retained.
func (c *Curve) Sell(ctx context.Context, info Info, ownerAddr string) (*Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	resp, err := c.sell(ctx, info, ownerAddr)
	if err != nil {
		return nil, c.reject(ctx, "sell", info.Sender, err)
	}
	return resp, nil
}

func (c *Curve) sell(ctx context.Context, info Info, ownerAddr string) (*Response, error) {
	seller, err := requireIdentity("sender", info.Sender)
	if err != nil {
		return nil, err
	}
	if ownerAddr, err = requireIdentity("owner", ownerAddr); err != nil {
		return nil, err
	}

	o, err := c.store.GetOwner(ctx, ownerAddr)
	if err != nil {
		return nil, err
	}
	supply := o.Supply

	h, err := c.store.GetHolding(ctx, seller, ownerAddr)
	if err != nil {
		return nil, err
	}
	if h.Len() == 0 {
		return nil, fmt.Errorf("%w: %s holds no shares of %s", ErrInsufficientHoldings, seller, ownerAddr)
	}

	price, err := pricing.Price(supply, pricing.Sell)
	if err != nil {
		return nil, err
	}
	payout, err := pricing.PayoutForSell(price)
	if err != nil {
		return nil, err
	}
	supplyAfter, err := types.CheckedSub(supply, uint128.From64(1))
	if err != nil {
		return nil, err
	}

	if err := c.store.RecordSale(ctx, seller, ownerAddr, supply); err != nil {
		return nil, err
	}
	newPrice := c.nextPrice(ownerAddr, supplyAfter)

	t := &holding.Trade{
		ID:           id.NewTradeID(),
		Side:         pricing.Sell,
		Trader:       seller,
		Owner:        ownerAddr,
		Price:        types.CoinOf(c.denom, price),
		NewPrice:     newPrice,
		SupplyBefore: supply,
		SupplyAfter:  supplyAfter,
		Held:         h.Len() - 1,
		Time:         info.Time,
		Payout:       types.CoinOf(c.denom, payout.Seller),
		Retained:     types.CoinOf(c.denom, payout.Fee),
	}

	resp := &Response{Trade: t}
	if t.Payout.IsPositive() {
		resp.Payments = []Payment{
			{ID: id.NewPaymentID(), Recipient: seller, Amount: t.Payout, Reason: ReasonSaleProceeds},
		}
	}
	resp.Events = []Event{tradeEvent(EventSharesSold, t)}

	c.plugins.EmitSharesSold(ctx, t)
	c.logger.Debug("shares sold",
		"owner", ownerAddr,
		"seller", seller,
		"price", price.String(),
		"supply", supplyAfter.String(),
	)

	return resp, nil
}

// nextPrice is the buy price once supply has moved to supplyAfter. An
// overflow only means no further buy is possible, so the trade still stands.
func (c *Curve) nextPrice(ownerAddr string, supplyAfter uint128.Uint128) types.Coin {
	p, err := pricing.Price(supplyAfter, pricing.Buy)
	if err != nil {
		c.logger.Warn("next buy price unavailable",
			"owner", ownerAddr,
			"supply", supplyAfter.String(),
			"error", err,
		)
		return types.CoinOf(c.denom, uint128.Zero)
	}
	return types.CoinOf(c.denom, p)
}

func tradeEvent(typ string, t *holding.Trade) Event {
	return newEvent(typ,
		"owner", t.Owner,
		"trader", t.Trader,
		"price", t.Price.Amount.String(),
		"new_price", t.NewPrice.Amount.String(),
		"supply", t.SupplyAfter.String(),
		"held", strconv.FormatUint(t.Held, 10),
	)
}
