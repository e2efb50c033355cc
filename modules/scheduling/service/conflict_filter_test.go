package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syncme/modules/scheduling/entity"
)

func slotAt(day time.Time, hour, min int, d time.Duration) entity.TimeSlot {
	start := time.Date(day.Year(), day.Month(), day.Day(), hour, min, 0, 0, time.UTC)
	return entity.TimeSlot{Start: start, End: start.Add(d)}
}

func busyAt(day time.Time, hour, min int, d time.Duration) entity.BusyInterval {
	start := time.Date(day.Year(), day.Month(), day.Day(), hour, min, 0, 0, time.UTC)
	return entity.BusyInterval{Start: start, End: start.Add(d), Status: entity.StatusScheduled}
}

func TestFilterRemovesOverlaps(t *testing.T) {
	f := NewConflictFilter()
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	slots := []entity.TimeSlot{
		slotAt(day, 9, 0, time.Hour),
		slotAt(day, 11, 0, time.Hour),
		slotAt(day, 14, 0, time.Hour),
	}
	busy := []entity.BusyInterval{busyAt(day, 10, 30, time.Hour)}

	free := f.Filter(slots, busy, 0)
	require.Len(t, free, 2)
	assert.Equal(t, 9, free[0].Start.Hour())
	assert.Equal(t, 14, free[1].Start.Hour())
}

func TestFilterTouchingEdge(t *testing.T) {
	f := NewConflictFilter()
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	// Slot ends exactly when the busy interval starts, so the gap is zero.
	slots := []entity.TimeSlot{slotAt(day, 9, 0, time.Hour)}
	busy := []entity.BusyInterval{busyAt(day, 10, 0, time.Hour)}

	assert.Empty(t, f.Filter(slots, busy, 15*time.Minute), "zero gap is smaller than the buffer")
	assert.Len(t, f.Filter(slots, busy, 0), 1, "a zero gap equals a zero buffer, which is acceptable")
}

func TestFilterBufferDistance(t *testing.T) {
	f := NewConflictFilter()
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	buffer := 15 * time.Minute

	tests := []struct {
		name string
		slot entity.TimeSlot
		keep bool
	}{
		{name: "gap smaller than buffer before busy", slot: slotAt(day, 8, 50, time.Hour), keep: false},
		{name: "gap equal to buffer before busy", slot: slotAt(day, 8, 45, time.Hour), keep: true},
		{name: "gap smaller than buffer after busy", slot: slotAt(day, 11, 5, time.Hour), keep: false},
		{name: "gap equal to buffer after busy", slot: slotAt(day, 11, 15, time.Hour), keep: true},
		{name: "well clear of busy", slot: slotAt(day, 14, 0, time.Hour), keep: true},
	}
	busy := []entity.BusyInterval{busyAt(day, 10, 0, time.Hour)}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			free := f.Filter([]entity.TimeSlot{tt.slot}, busy, buffer)
			if tt.keep {
				assert.Len(t, free, 1)
			} else {
				assert.Empty(t, free)
			}
		})
	}
}

func TestFilterIgnoresCancelledIntervals(t *testing.T) {
	f := NewConflictFilter()
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	slots := []entity.TimeSlot{slotAt(day, 10, 0, time.Hour)}
	busy := []entity.BusyInterval{{
		Start:  time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
		End:    time.Date(2024, 1, 15, 11, 0, 0, 0, time.UTC),
		Status: entity.StatusCancelled,
	}}

	assert.Len(t, f.Filter(slots, busy, 15*time.Minute), 1)
}

func TestOverlaps(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	slot := slotAt(day, 10, 0, time.Hour)

	assert.True(t, Overlaps(slot, busyAt(day, 10, 30, time.Hour)))
	assert.True(t, Overlaps(slot, busyAt(day, 9, 30, time.Hour)))
	assert.False(t, Overlaps(slot, busyAt(day, 11, 0, time.Hour)), "touching endpoints do not overlap")
	assert.False(t, Overlaps(slot, busyAt(day, 12, 0, time.Hour)))
}
