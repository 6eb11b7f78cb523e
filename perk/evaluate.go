package perk

import "fmt"

// Result describes one eligibility evaluation.
type Result struct {
	PerkID     uint64 `json:"perk_id"`
	Rule       Rule   `json:"rule"`
	Held       uint64 `json:"held"`
	Qualifying uint64 `json:"qualifying"`
	Eligible   bool   `json:"eligible"`
	Reason     string `json:"reason,omitempty"`
}

// QualifyingCount counts acquisitions with t <= now - minHold. When now is
// earlier than minHold nothing can have been held long enough, so the count
// is zero rather than a wrapped cutoff.
func QualifyingCount(acquired []uint64, minHold, now uint64) uint64 {
	if now < minHold {
		return 0
	}
	cutoff := now - minHold
	var n uint64
	for _, t := range acquired {
		if t <= cutoff {
			n++
		}
	}
	return n
}

// Evaluate checks perk perkID against a holder's acquisition timestamps.
//
// Checks run in order: the holder must hold at least one unit, the perk id
// must exist, then enough units must have been held for the minimum time.
// An ineligible holder gets both a populated Result and an error wrapping
// ErrInsufficientQualifying.
func Evaluate(acquired []uint64, rules Rules, perkID, now uint64) (*Result, error) {
	if len(acquired) == 0 {
		return nil, ErrNoHoldings
	}
	rule, err := rules.Get(perkID)
	if err != nil {
		return nil, err
	}

	res := &Result{
		PerkID:     perkID,
		Rule:       rule,
		Held:       uint64(len(acquired)),
		Qualifying: QualifyingCount(acquired, rule.MinHoldSeconds, now),
	}
	if res.Qualifying < uint64(rule.RequiredShares) {
		res.Reason = fmt.Sprintf("%d of %d required shares held for %ds", res.Qualifying, rule.RequiredShares, rule.MinHoldSeconds)
		return res, fmt.Errorf("%w: %s", ErrInsufficientQualifying, res.Reason)
	}
	res.Eligible = true
	return res, nil
}
