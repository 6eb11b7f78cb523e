package types

import (
	"math"
	"time"
)

// Entity carries the timestamps persisted alongside a record.
type Entity struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewEntity() Entity { return EntityAt(time.Now()) }

// EntityAt stamps both fields with t in UTC.
func EntityAt(t time.Time) Entity {
	t = t.UTC()
	return Entity{CreatedAt: t, UpdatedAt: t}
}

// BlockTime converts a block time in whole Unix seconds. Values past the
// int64 range clamp to its maximum.
func BlockTime(seconds uint64) time.Time {
	if seconds > math.MaxInt64 {
		seconds = math.MaxInt64
	}
	return time.Unix(int64(seconds), 0).UTC()
}

func (e *Entity) Touch() { e.UpdatedAt = time.Now().UTC() }
