package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/curve/holding"
	"github.com/xraph/curve/owner"
	"github.com/xraph/curve/perk"
	"github.com/xraph/curve/types"
)

// Timestamps are RFC 3339 TEXT and amounts are decimal TEXT; SQLite has no
// native time or 128-bit integer type.

// ==================== Config models ====================

type configModel struct {
	grove.BaseModel `grove:"table:curve_config"`

	Key       string `grove:"key,pk"`
	Value     string `grove:"value,notnull"`
	CreatedAt string `grove:"created_at,notnull"`
}

type allowModel struct {
	grove.BaseModel `grove:"table:curve_allowlist"`

	Identity  string `grove:"identity,pk"`
	CreatedAt string `grove:"created_at,notnull"`
}

// ==================== Owner models ====================

type ownerModel struct {
	grove.BaseModel `grove:"table:curve_owners"`

	Seq       int64  `grove:"seq,pk,autoincrement"`
	Address   string `grove:"address,notnull,unique"`
	FirstName string `grove:"first_name,notnull"`
	LastName  string `grove:"last_name,notnull"`
	Supply    string `grove:"supply,notnull"`
	Perks     string `grove:"perks,notnull"`
	CreatedAt string `grove:"created_at,notnull"`
	UpdatedAt string `grove:"updated_at,notnull"`
}

func toOwnerModel(o *owner.Owner) (*ownerModel, error) {
	perks, err := json.Marshal(o.Perks)
	if err != nil {
		return nil, fmt.Errorf("curve/sqlite: encode perks: %w", err)
	}
	return &ownerModel{
		Address:   o.Address,
		FirstName: o.FirstName,
		LastName:  o.LastName,
		Supply:    o.Supply.String(),
		Perks:     string(perks),
		CreatedAt: formatTime(o.CreatedAt),
		UpdatedAt: formatTime(o.UpdatedAt),
	}, nil
}

func fromOwnerModel(m *ownerModel) (*owner.Owner, error) {
	supply, err := types.ParseAmount(m.Supply)
	if err != nil {
		return nil, err
	}
	perks := perk.Rules{}
	if err := json.Unmarshal([]byte(m.Perks), &perks); err != nil {
		return nil, fmt.Errorf("curve/sqlite: decode perks for %s: %w", m.Address, err)
	}
	return &owner.Owner{
		Entity:    types.Entity{CreatedAt: parseTime(m.CreatedAt), UpdatedAt: parseTime(m.UpdatedAt)},
		Address:   m.Address,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Supply:    supply,
		Perks:     perks,
	}, nil
}

// ==================== Holding models ====================

// Acquired holds the JSON array of acquisition times, oldest first.
type holdingModel struct {
	grove.BaseModel `grove:"table:curve_holdings"`

	Holder   string `grove:"holder,pk"`
	Owner    string `grove:"owner,pk"`
	Acquired string `grove:"acquired,notnull"`
}

func toHoldingModel(h *holding.Holding) (*holdingModel, error) {
	acquired := h.Acquired
	if acquired == nil {
		acquired = []uint64{}
	}
	raw, err := json.Marshal(acquired)
	if err != nil {
		return nil, err
	}
	return &holdingModel{Holder: h.Holder, Owner: h.Owner, Acquired: string(raw)}, nil
}

func fromHoldingModel(m *holdingModel) (*holding.Holding, error) {
	h := holding.Empty(m.Holder, m.Owner)
	if m.Acquired == "" {
		return h, nil
	}
	if err := json.Unmarshal([]byte(m.Acquired), &h.Acquired); err != nil {
		return nil, fmt.Errorf("curve/sqlite: decode holding %s/%s: %w", m.Holder, m.Owner, err)
	}
	return h, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s) //nolint:errcheck // written by formatTime
	return t
}
