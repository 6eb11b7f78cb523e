// Package holding models the units one holder owns of one owner.
package holding

// Holding is keyed by (Holder, Owner). Acquired has one entry per held unit,
// in purchase order; a sale removes the last entry. A record that drops to
// zero units is kept, not deleted.
type Holding struct {
	Holder   string   `json:"holder"`
	Owner    string   `json:"owner"`
	Acquired []uint64 `json:"acquired"`
}

// Empty returns the zero-unit holding for a pair that has never traded.
func Empty(holder, owner string) *Holding {
	return &Holding{Holder: holder, Owner: owner, Acquired: []uint64{}}
}

// Len returns the number of units held.
func (h *Holding) Len() uint64 {
	if h == nil {
		return 0
	}
	return uint64(len(h.Acquired))
}

// Latest returns the most recent acquisition time.
func (h *Holding) Latest() (uint64, bool) {
	if h.Len() == 0 {
		return 0, false
	}
	return h.Acquired[len(h.Acquired)-1], true
}
