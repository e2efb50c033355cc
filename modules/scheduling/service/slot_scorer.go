package service

import (
	"math"
	"sort"
	"time"

	"syncme/modules/scheduling/entity"
)

// SlotScorer ranks free slots. Ranking uses the raw additive score so two
// slots clamped to the same confidence still order by their true quality.
// Ties fall back to chronological order via the stable sort.
type SlotScorer struct{}

func NewSlotScorer() *SlotScorer {
	return &SlotScorer{}
}

func (s *SlotScorer) Rank(slots []entity.TimeSlot, preferred *time.Time, prefs entity.ResolvedPreferences) []entity.TimeSlot {
	type scored struct {
		slot entity.TimeSlot
		raw  float64
	}

	ranked := make([]scored, len(slots))
	for i, slot := range slots {
		ranked[i] = scored{slot: slot, raw: s.score(slot, preferred, prefs)}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].raw > ranked[j].raw
	})

	out := make([]entity.TimeSlot, len(ranked))
	for i, r := range ranked {
		r.slot.Confidence = clamp01(r.raw)
		out[i] = r.slot
	}
	return out
}

func (s *SlotScorer) score(slot entity.TimeSlot, preferred *time.Time, prefs entity.ResolvedPreferences) float64 {
	score := 0.5

	local := slot.Start.In(prefs.Location)
	minuteOfDay := local.Hour()*60 + local.Minute()

	if preferred != nil {
		diffHours := math.Abs(slot.Start.Sub(*preferred).Hours())
		score += math.Max(0, 0.5-diffHours/24)
	}

	if minuteOfDay >= prefs.WorkStart.Minutes() && minuteOfDay <= prefs.WorkEnd.Minutes() {
		score += 0.2
	}

	hour := local.Hour()
	if hour < 12 {
		score += 0.1
	}
	if hour < 8 || hour > 17 {
		score -= 0.2
	}
	if hour >= 11 && hour <= 13 {
		score -= 0.1
	}

	if !isWeekend(local) {
		score += 0.1
	}

	return score
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
