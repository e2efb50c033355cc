package service

import (
	"context"
	"time"

	"syncme/modules/scheduling/entity"
)

// CalendarProvider is the contract a calendar backend must satisfy for the
// scheduling engine. Identity is the owning user's id; every operation that
// touches a user calendar takes it explicitly.
type CalendarProvider interface {
	Name() string
	GetBusyIntervals(ctx context.Context, identity string, start, end time.Time) ([]entity.BusyInterval, error)
	CreateEvent(ctx context.Context, identity string, spec *entity.EventSpec) (*entity.Event, error)
	UpdateEvent(ctx context.Context, identity, eventID string, changes *entity.EventChanges) (*entity.Event, error)
	CancelEvent(ctx context.Context, identity, eventID string) (bool, error)
	GetEvent(ctx context.Context, identity, eventID string) (*entity.Event, error)
}

// ProviderRegistry resolves providers by name. Resolution happens once per
// request, never inside the slot pipeline.
type ProviderRegistry interface {
	Get(name string) (CalendarProvider, bool)
	All() []CalendarProvider
}
