package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xraph/curve"
	"github.com/xraph/curve/owner"
	"github.com/xraph/curve/perk"
	"github.com/xraph/curve/types"
)

var errUsage = errors.New("usage")

type env struct {
	curve *curve.Curve
	cfg   *config
}

type command struct {
	name  string
	usage string
	args  int // exact positional count; -1 for at least one
	run   func(ctx context.Context, e *env, args []string) (any, error)
}

var commands = []command{
	{"init", "<admin>  record the administrator (once)", 1, runInit},
	{"allow", "<identity>  allow-list an identity (administrator only)", 1, runAllow},
	{"register", "<first> <last> <shares:seconds>...  register the sender as an owner", -1, runRegister},
	{"buy", "<owner> <amount>  buy one unit, attaching amount in the settlement denom", 2, runBuy},
	{"sell", "<owner>  sell the sender's most recent unit", 1, runSell},
	{"claim", "<owner> <perk-id>  claim a perk as the sender", 2, runClaim},
	{"check", "<holder> <owner> <perk-id>  evaluate a perk without claiming", 3, runCheck},
	{"price", "<owner>  price of the next unit", 1, query(func(a []string) curve.QueryMsg { return curve.GetPrice{Owner: a[0]} })},
	{"sell-price", "<owner>  gross price of selling one unit", 1, query(func(a []string) curve.QueryMsg { return curve.GetSellPrice{Owner: a[0]} })},
	{"supply", "<owner>  outstanding units", 1, query(func(a []string) curve.QueryMsg { return curve.GetSupply{Owner: a[0]} })},
	{"balance", "<holder> <owner>  units held", 2, query(func(a []string) curve.QueryMsg { return curve.GetBalance{Holder: a[0], Owner: a[1]} })},
	{"owner", "<address>  show a registered owner", 1, runOwner},
	{"owners", "list registered owners", 0, runOwners},
	{"holding", "<holder> <owner>  show acquisition times", 2, runHolding},
	{"audit", "[owner]  check supply against holdings", -2, runAudit},
}

func lookup(name string) (*command, bool) {
	for i := range commands {
		if commands[i].name == name {
			return &commands[i], true
		}
	}
	return nil, false
}

// check validates the positional argument count. -2 accepts zero or one.
func (c *command) check(args []string) error {
	var ok bool
	switch c.args {
	case -1:
		ok = len(args) >= 1
	case -2:
		ok = len(args) <= 1
	default:
		ok = len(args) == c.args
	}
	if !ok {
		return fmt.Errorf("%w: curvectl %s %s", errUsage, c.name, c.usage)
	}
	return nil
}

func (e *env) info(funds ...types.Coin) (curve.Info, error) {
	if e.cfg.Sender == "" {
		return curve.Info{}, errors.New("--sender is required")
	}
	return e.curve.NewInfo(e.cfg.Sender, funds...), nil
}

func (e *env) execute(ctx context.Context, msg curve.ExecuteMsg, funds ...types.Coin) (any, error) {
	info, err := e.info(funds...)
	if err != nil {
		return nil, err
	}
	return e.curve.Execute(ctx, info, msg)
}

func runInit(ctx context.Context, e *env, args []string) (any, error) {
	if err := e.curve.Init(ctx, args[0]); err != nil {
		return nil, err
	}
	return map[string]string{"administrator": args[0]}, nil
}

func runAllow(ctx context.Context, e *env, args []string) (any, error) {
	return e.execute(ctx, curve.AllowJoinMsg{Identity: args[0]})
}

func runRegister(ctx context.Context, e *env, args []string) (any, error) {
	if len(args) < 3 {
		return nil, fmt.Errorf("%w: curvectl register <first> <last> <shares:seconds>...", errUsage)
	}
	rules, err := parseRules(args[2:])
	if err != nil {
		return nil, err
	}
	return e.execute(ctx, curve.RegisterMsg{FirstName: args[0], LastName: args[1], Perks: rules})
}

// parseRules reads perk rules written as shares:seconds.
func parseRules(specs []string) (perk.Rules, error) {
	rules := make(perk.Rules, 0, len(specs))
	for _, s := range specs {
		shares, secs, ok := strings.Cut(s, ":")
		if !ok {
			return nil, fmt.Errorf("perk %q: want shares:seconds", s)
		}
		n, err := strconv.ParseUint(shares, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("perk %q: shares: %w", s, err)
		}
		d, err := strconv.ParseUint(secs, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("perk %q: seconds: %w", s, err)
		}
		rules = append(rules, perk.Rule{RequiredShares: uint16(n), MinHoldSeconds: d})
	}
	return rules, nil
}

func runBuy(ctx context.Context, e *env, args []string) (any, error) {
	amount, err := types.ParseAmount(args[1])
	if err != nil {
		return nil, fmt.Errorf("amount: %w", err)
	}
	return e.execute(ctx, curve.BuyMsg{Owner: args[0]}, types.CoinOf(e.curve.Denom(), amount))
}

func runSell(ctx context.Context, e *env, args []string) (any, error) {
	return e.execute(ctx, curve.SellMsg{Owner: args[0]})
}

func runClaim(ctx context.Context, e *env, args []string) (any, error) {
	id, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("perk-id: %w", err)
	}
	return e.execute(ctx, curve.ClaimPerkMsg{Owner: args[0], PerkID: id})
}

func runCheck(ctx context.Context, e *env, args []string) (any, error) {
	id, err := strconv.ParseUint(args[2], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("perk-id: %w", err)
	}
	return e.curve.CheckPerk(ctx, args[0], args[1], id, e.curve.NewInfo("").Time)
}

func query(build func(args []string) curve.QueryMsg) func(context.Context, *env, []string) (any, error) {
	return func(ctx context.Context, e *env, args []string) (any, error) {
		return e.curve.Query(ctx, build(args))
	}
}

func runOwner(ctx context.Context, e *env, args []string) (any, error) {
	return e.curve.Owner(ctx, args[0])
}

func runOwners(ctx context.Context, e *env, _ []string) (any, error) {
	return e.curve.Owners(ctx, owner.ListOpts{})
}

func runHolding(ctx context.Context, e *env, args []string) (any, error) {
	return e.curve.Holding(ctx, args[0], args[1])
}

func runAudit(ctx context.Context, e *env, args []string) (any, error) {
	var err error
	if len(args) == 1 {
		err = e.curve.Audit(ctx, args[0])
	} else {
		err = e.curve.AuditAll(ctx)
	}
	if err != nil {
		return nil, err
	}
	return map[string]bool{"consistent": true}, nil
}
