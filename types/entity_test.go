package types

import (
	"math"
	"testing"
	"time"
)

func TestBlockTime(t *testing.T) {
	if got := BlockTime(1_700_000_000); !got.Equal(time.Unix(1_700_000_000, 0)) || got.Location() != time.UTC {
		t.Errorf("BlockTime = %v", got)
	}
	if got := BlockTime(math.MaxUint64).Unix(); got != math.MaxInt64 {
		t.Errorf("BlockTime(max) = %d, want clamp", got)
	}
}

func TestEntityAt(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("x", 3600))
	e := EntityAt(at)
	if !e.CreatedAt.Equal(at) || e.CreatedAt != e.UpdatedAt || e.CreatedAt.Location() != time.UTC {
		t.Errorf("entity = %+v", e)
	}
	e.Touch()
	if !e.UpdatedAt.After(e.CreatedAt) {
		t.Error("Touch did not advance UpdatedAt")
	}
}
