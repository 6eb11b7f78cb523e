package mongo

import (
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

	Key       string    `grove:"id,pk"      bson:"_id"`
	Value     string    `grove:"value"      bson:"value"`
	CreatedAt time.Time `grove:"created_at" bson:"created_at"`
}

type allowModel struct {
	grove.BaseModel `grove:"table:curve_allowlist"`

	Identity  string    `grove:"id,pk"      bson:"_id"`
	CreatedAt time.Time `grove:"created_at" bson:"created_at"`
}

// ==================== Owner models ====================

// Supply is stored as a decimal string; BSON has no unsigned 128-bit type.
type ownerModel struct {
	grove.BaseModel `grove:"table:curve_owners"`

	Address   string      `grove:"id,pk"      bson:"_id"`
	FirstName string      `grove:"first_name" bson:"first_name"`
	LastName  string      `grove:"last_name"  bson:"last_name"`
	Supply    string      `grove:"supply"     bson:"supply"`
	Perks     []perk.Rule `grove:"perks"      bson:"perks"`
	CreatedAt time.Time   `grove:"created_at" bson:"created_at"`
	UpdatedAt time.Time   `grove:"updated_at" bson:"updated_at"`
}

func toOwnerModel(o *owner.Owner) *ownerModel {
	return &ownerModel{
		Address:   o.Address,
		FirstName: o.FirstName,
		LastName:  o.LastName,
		Supply:    o.Supply.String(),
		Perks:     o.Perks.Clone(),
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func fromOwnerModel(m *ownerModel) (*owner.Owner, error) {
	supply, err := types.ParseAmount(m.Supply)
	if err != nil {
		return nil, err
	}
	perks := perk.Rules(m.Perks)
	if perks == nil {
		perks = perk.Rules{}
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

	ID       string   `grove:"id,pk"    bson:"_id"`
	Holder   string   `grove:"holder"   bson:"holder"`
	Owner    string   `grove:"owner"    bson:"owner"`
	Acquired []uint64 `grove:"acquired" bson:"acquired"`
}

func holdingID(holder, ownerAddr string) string {
	return ownerAddr + "/" + holder
}

func fromHoldingModel(m *holdingModel) *holding.Holding {
	h := holding.Empty(m.Holder, m.Owner)
	h.Acquired = append(h.Acquired, m.Acquired...)
	return h
}
