package service

import (
	"time"

	"syncme/modules/scheduling/entity"
)

// ConflictFilter drops slots that overlap a busy interval or sit closer to
// one than the buffer on either side.
type ConflictFilter struct{}

func NewConflictFilter() *ConflictFilter {
	return &ConflictFilter{}
}

func (f *ConflictFilter) Filter(slots []entity.TimeSlot, busy []entity.BusyInterval, buffer time.Duration) []entity.TimeSlot {
	free := make([]entity.TimeSlot, 0, len(slots))
	for _, slot := range slots {
		if !f.hasConflict(slot, busy, buffer) {
			free = append(free, slot)
		}
	}
	return free
}

func (f *ConflictFilter) hasConflict(slot entity.TimeSlot, busy []entity.BusyInterval, buffer time.Duration) bool {
	for _, b := range busy {
		if !b.Blocks() {
			continue
		}
		if Overlaps(slot, b) {
			return true
		}
		// A gap exactly equal to the buffer is acceptable, so a touching
		// edge only conflicts when a buffer is in effect.
		if !slot.End.After(b.Start) && b.Start.Sub(slot.End) < buffer {
			return true
		}
		if !b.End.After(slot.Start) && slot.Start.Sub(b.End) < buffer {
			return true
		}
	}
	return false
}

// Overlaps reports strict interval overlap. Touching endpoints do not
// overlap.
func Overlaps(slot entity.TimeSlot, b entity.BusyInterval) bool {
	return slot.Start.Before(b.End) && b.Start.Before(slot.End)
}
