package perk

import "github.com/xraph/curve/id"

// Claim records a successful perk redemption. Nothing is persisted; a perk
// may be claimed again for as long as the holder stays eligible.
type Claim struct {
	ID         id.ID  `json:"id"`
	Owner      string `json:"owner"`
	Claimer    string `json:"claimer"`
	PerkID     uint64 `json:"perk_id"`
	Rule       Rule   `json:"rule"`
	Held       uint64 `json:"held"`
	Qualifying uint64 `json:"qualifying"`
	Time       uint64 `json:"time"`
}
