package postgres

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

// ==================== Config models ====================

type configModel struct {
	grove.BaseModel `grove:"table:curve_config"`

	Key       string    `grove:"key,pk"`
	Value     string    `grove:"value,notnull"`
	CreatedAt time.Time `grove:"created_at,notnull"`
}

type allowModel struct {
	grove.BaseModel `grove:"table:curve_allowlist"`

	Identity  string    `grove:"identity,pk"`
	CreatedAt time.Time `grove:"created_at,notnull"`
}

// ==================== Owner models ====================

// Supply travels as decimal text; the column is NUMERIC(39, 0).
type ownerModel struct {
	grove.BaseModel `grove:"table:curve_owners"`

	Seq       int64           `grove:"seq,autoincrement"`
	Address   string          `grove:"address,pk"`
	FirstName string          `grove:"first_name,notnull"`
	LastName  string          `grove:"last_name,notnull"`
	Supply    string          `grove:"supply,type:numeric"`
	Perks     json.RawMessage `grove:"perks,type:jsonb"`
	CreatedAt time.Time       `grove:"created_at,notnull"`
	UpdatedAt time.Time       `grove:"updated_at,notnull"`
}

// ownerColumns lists ownerModel's columns in field order, casting supply
// so it scans into a string.
const ownerColumns = `seq, address, first_name, last_name, supply::text AS supply, perks, created_at, updated_at`

func toOwnerModel(o *owner.Owner) (*ownerModel, error) {
	perks, err := json.Marshal(o.Perks)
	if err != nil {
		return nil, fmt.Errorf("curve/postgres: encode perks: %w", err)
	}
	return &ownerModel{
		Address:   o.Address,
		FirstName: o.FirstName,
		LastName:  o.LastName,
		Supply:    o.Supply.String(),
		Perks:     perks,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}, nil
}

func fromOwnerModel(m *ownerModel) (*owner.Owner, error) {
	supply, err := types.ParseAmount(m.Supply)
	if err != nil {
		return nil, err
	}
	perks := perk.Rules{}
	if len(m.Perks) > 0 {
		if err := json.Unmarshal(m.Perks, &perks); err != nil {
			return nil, fmt.Errorf("curve/postgres: decode perks for %s: %w", m.Address, err)
		}
	}
	return &owner.Owner{
		Entity:    types.Entity{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		Address:   m.Address,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Supply:    supply,
		Perks:     perks,
	}, nil
}

// ==================== Holding models ====================

type holdingModel struct {
	grove.BaseModel `grove:"table:curve_holdings"`

	Holder   string          `grove:"holder,pk"`
	Owner    string          `grove:"owner,pk"`
	Acquired json.RawMessage `grove:"acquired,type:jsonb"`
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
	return &holdingModel{Holder: h.Holder, Owner: h.Owner, Acquired: raw}, nil
}

func fromHoldingModel(m *holdingModel) (*holding.Holding, error) {
	h := holding.Empty(m.Holder, m.Owner)
	if len(m.Acquired) == 0 {
		return h, nil
	}
	if err := json.Unmarshal(m.Acquired, &h.Acquired); err != nil {
		return nil, fmt.Errorf("curve/postgres: decode holding %s/%s: %w", m.Holder, m.Owner, err)
	}
	return h, nil
}
