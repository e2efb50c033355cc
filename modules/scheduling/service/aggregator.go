package service

import (
	"context"
	"sync"
	"time"

	"syncme/core/logger"
	"syncme/modules/scheduling/entity"
)

// BusyAggregator fans out to every registered provider concurrently and
// merges the busy intervals. A failed provider is logged and skipped so a
// single outage degrades results instead of failing the request.
type BusyAggregator struct {
	providers ProviderRegistry
}

func NewBusyAggregator(providers ProviderRegistry) *BusyAggregator {
	return &BusyAggregator{providers: providers}
}

func (a *BusyAggregator) Aggregate(ctx context.Context, identity string, start, end time.Time, userCtx *entity.UserContext) []entity.BusyInterval {
	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		busy []entity.BusyInterval
	)

	for _, p := range a.providers.All() {
		wg.Add(1)
		go func(p CalendarProvider) {
			defer wg.Done()
			intervals, err := p.GetBusyIntervals(ctx, identity, start, end)
			if err != nil {
				logger.Warn("BusyAggregator:Aggregate:ProviderFailed",
					"provider", p.Name(),
					"error", err,
				)
				return
			}
			mu.Lock()
			busy = append(busy, intervals...)
			mu.Unlock()
		}(p)
	}
	wg.Wait()

	if userCtx != nil {
		busy = append(busy, userCtx.ExistingEvents...)
	}

	return busy
}
