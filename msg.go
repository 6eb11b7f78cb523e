package curve

import (
	"encoding/json"

	"lukechampine.com/uint128"

	"github.com/xraph/curve/id"
	"github.com/xraph/curve/perk"
	"github.com/xraph/curve/types"
)

// Info describes who is calling, when, and with what funds attached.
// Time is in whole seconds and is the clock perk hold periods are measured
// against.
type Info struct {
	Sender string       `json:"sender"`
	Time   uint64       `json:"time"`
	Funds  []types.Coin `json:"funds,omitempty"`
}

// ──────────────────────────────────────────────────
// Execute messages
// ──────────────────────────────────────────────────

// ExecuteMsg is one state-changing call. The concrete types are the *Msg
// structs below.
type ExecuteMsg interface {
	executeMsg()
}

// AllowJoinMsg permits Identity to register. Administrator only.
type AllowJoinMsg struct {
	Identity string `json:"identity"`
}

// RegisterMsg registers the sender as an owner.
type RegisterMsg struct {
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Perks     perk.Rules `json:"perks"`
}

// BuyMsg buys one unit of Owner with the attached funds.
type BuyMsg struct {
	Owner string `json:"owner"`
}

// SellMsg sells the sender's most recently bought unit of Owner.
type SellMsg struct {
	Owner string `json:"owner"`
}

// ClaimPerkMsg redeems perk PerkID of Owner.
type ClaimPerkMsg struct {
	Owner  string `json:"owner"`
	PerkID uint64 `json:"perk_id"`
}

func (AllowJoinMsg) executeMsg() {}
func (RegisterMsg) executeMsg()  {}
func (BuyMsg) executeMsg()       {}
func (SellMsg) executeMsg()      {}
func (ClaimPerkMsg) executeMsg() {}

// ──────────────────────────────────────────────────
// Query messages
// ──────────────────────────────────────────────────

// QueryMsg is one read-only call.
type QueryMsg interface {
	queryMsg()
}

// GetPrice quotes the next unit of Owner.
type GetPrice struct {
	Owner string `json:"owner"`
}

// GetSellPrice quotes the top unit of Owner.
type GetSellPrice struct {
	Owner string `json:"owner"`
}

// GetSupply returns the outstanding units of Owner.
type GetSupply struct {
	Owner string `json:"owner"`
}

// GetBalance returns how many units of Owner that Holder has.
type GetBalance struct {
	Holder string `json:"holder"`
	Owner  string `json:"owner"`
}

func (GetPrice) queryMsg()     {}
func (GetSellPrice) queryMsg() {}
func (GetSupply) queryMsg()    {}
func (GetBalance) queryMsg()   {}

// NumResp is the answer to every query.
type NumResp struct {
	Num uint128.Uint128
}

// MarshalJSON encodes Num as a decimal string.
func (r NumResp) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Num string `json:"num"`
	}{r.Num.String()})
}

// ──────────────────────────────────────────────────
// Responses
// ──────────────────────────────────────────────────

// Payment reasons.
const (
	ReasonOwnerFee     = "owner_fee"
	ReasonPlatformFee  = "platform_fee"
	ReasonSaleProceeds = "sale_proceeds"
)

// Payment instructs the host to transfer Amount to Recipient.
type Payment struct {
	ID        id.ID      `json:"id"`
	Recipient string     `json:"recipient"`
	Amount    types.Coin `json:"amount"`
	Reason    string     `json:"reason"`
}

// Event types.
const (
	EventAllowListed     = "allow_listed"
	EventOwnerRegistered = "owner_registered"
	EventSharesBought    = "shares_bought"
	EventSharesSold      = "shares_sold"
	EventPerkClaimed     = "perk_claimed"
)

// Attribute is one key/value pair on an Event.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Event is an observable record of what a call did.
type Event struct {
	ID         id.ID       `json:"id"`
	Type       string      `json:"type"`
	Attributes []Attribute `json:"attributes"`
}

func newEvent(typ string, kv ...string) Event {
	ev := Event{ID: id.NewEventID(), Type: typ, Attributes: make([]Attribute, 0, len(kv)/2)}
	for i := 0; i+1 < len(kv); i += 2 {
		ev.Attributes = append(ev.Attributes, Attribute{Key: kv[i], Value: kv[i+1]})
	}
	return ev
}

// Attr returns the value of the first attribute named key.
func (e Event) Attr(key string) (string, bool) {
	for _, a := range e.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// Response is what a successful execute call produced. Payments are only
// instructions; the host performs the transfers.
type Response struct {
	Payments []Payment `json:"payments,omitempty"`
	Events   []Event   `json:"events,omitempty"`
	Trade    *Trade    `json:"trade,omitempty"`
	Claim    *Claim    `json:"claim,omitempty"`
}

// PaymentsTo sums the payments addressed to recipient in denom.
func (r *Response) PaymentsTo(recipient, denom string) (uint128.Uint128, error) {
	total := uint128.Zero
	for _, p := range r.Payments {
		if p.Recipient != recipient {
			continue
		}
		amt, err := types.AmountOf([]types.Coin{p.Amount}, denom)
		if err != nil {
			return uint128.Zero, err
		}
		if total, err = types.CheckedAdd(total, amt); err != nil {
			return uint128.Zero, err
		}
	}
	return total, nil
}
