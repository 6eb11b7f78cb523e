package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/xraph/curve"
)

type cli struct {
	t    *testing.T
	base []string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "curve.db")
	return &cli{t: t, base: []string{"--store.driver", "sqlite", "--store.dsn", dsn, "--time", "1000"}}
}

func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), append(append([]string{}, c.base...), args...), &stdout, &stderr)
	return stdout.String(), err
}

func (c *cli) must(args ...string) map[string]any {
	c.t.Helper()
	out, err := c.run(args...)
	if err != nil {
		c.t.Fatalf("curvectl %s: %v", strings.Join(args, " "), err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal([]byte(out), &doc); err != nil {
		c.t.Fatalf("curvectl %s: output is not yaml: %v\n%s", strings.Join(args, " "), err, out)
	}
	return doc
}

func TestSession(t *testing.T) {
	c := newCLI(t)

	c.must("init", "admin")
	c.must("--sender", "admin", "allow", "athlete")
	c.must("--sender", "athlete", "register", "Jane", "Doe", "1:0", "2:3600")

	if got := c.must("price", "athlete")["num"]; got != "100" {
		t.Fatalf("price = %v, want \"100\"", got)
	}

	resp := c.must("--sender", "fan", "buy", "athlete", "100")
	trade, _ := resp["trade"].(map[string]any)
	if trade["supply_after"] != "1" || trade["side"] != "buy" {
		t.Errorf("trade = %v", trade)
	}
	if payments, _ := resp["payments"].([]any); len(payments) != 2 {
		t.Errorf("payments = %v", resp["payments"])
	}

	if got := c.must("balance", "fan", "athlete")["num"]; got != "1" {
		t.Errorf("balance = %v", got)
	}
	c.must("--sender", "fan", "claim", "athlete", "0")
	if res := c.must("check", "fan", "athlete", "1"); res["eligible"] != false {
		t.Errorf("check = %v", res)
	}
	c.must("audit")

	c.must("--sender", "fan", "sell", "athlete")
	if got := c.must("supply", "athlete")["num"]; got != "0" {
		t.Errorf("supply after sell = %v", got)
	}
}

func TestErrors(t *testing.T) {
	c := newCLI(t)
	c.must("init", "admin")

	_, err := c.run("--sender", "admin", "buy", "ghost", "100")
	if !curve.IsNotFound(err) {
		t.Errorf("buy from unknown owner: %v", err)
	}
	if _, err := c.run("allow", "x"); err == nil || !strings.Contains(err.Error(), "--sender") {
		t.Errorf("missing sender: %v", err)
	}
	if _, err := c.run("price"); !errors.Is(err, errUsage) {
		t.Errorf("missing argument: %v", err)
	}
	if _, err := c.run("frobnicate"); err == nil {
		t.Error("unknown command accepted")
	}
	if _, err := c.run("--sender", "x", "register", "a", "b", "nope"); err == nil {
		t.Error("malformed perk rule accepted")
	}
}

func TestEnvironmentOverridesDefaults(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "env.db")
	t.Setenv("CURVE_STORE_DSN", dsn)
	t.Setenv("CURVE_DENOM", "uatom")

	cfg, rest, err := loadConfig([]string{"supply", "x"}, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Store.DSN != dsn || cfg.Denom != "uatom" || cfg.Store.Driver != "sqlite" {
		t.Errorf("config = %+v", cfg)
	}
	if len(rest) != 2 || rest[0] != "supply" {
		t.Errorf("args = %v", rest)
	}
}

func TestParseRules(t *testing.T) {
	rules, err := parseRules([]string{"1:0", "5:86400"})
	if err != nil {
		t.Fatal(err)
	}
	if len(rules) != 2 || rules[1].RequiredShares != 5 || rules[1].MinHoldSeconds != 86400 {
		t.Errorf("rules = %v", rules)
	}
	for _, bad := range []string{"1", "x:1", "1:y", "70000:1"} {
		if _, err := parseRules([]string{bad}); err == nil {
			t.Errorf("parseRules(%q) accepted", bad)
		}
	}
}
