package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"syncme/core/constants"
	"syncme/core/errors"
	"syncme/core/logger"
	"syncme/modules/scheduling/entity"
	"syncme/modules/scheduling/repository"
)

type FindSlotsInput struct {
	DurationMinutes int
	StartDate       *time.Time
	EndDate         *time.Time
	PreferredTime   *time.Time
	IncludeWeekends bool
	UserContext     *entity.UserContext
}

type ScheduleInput struct {
	Title           string
	Description     string
	Location        string
	Attendees       []string
	DurationMinutes int
	PreferredTime   *time.Time
	Provider        string
	SuggestOnly     bool
}

type ScheduleOutcome struct {
	Booked      bool
	Event       *entity.Event
	Suggestions []entity.TimeSlot
}

type SchedulerInterface interface {
	FindAvailableSlots(ctx context.Context, userID string, input *FindSlotsInput) ([]entity.TimeSlot, *errors.AppError)
	Schedule(ctx context.Context, userID string, input *ScheduleInput) (*ScheduleOutcome, *errors.AppError)
	CheckAvailability(ctx context.Context, userID string, start, end time.Time) (bool, *errors.AppError)
	SuggestRescheduleOptions(ctx context.Context, userID, providerName, eventID string, newDurationMinutes int) ([]entity.TimeSlot, *errors.AppError)
	CancelEvent(ctx context.Context, userID, providerName, eventID string) *errors.AppError
	ListScheduledEvents(ctx context.Context, userID string) ([]entity.Event, *errors.AppError)
	OptimalDuration(meetingType string, attendeeCount int, prefs *entity.UserPreferences) int
	GetPreferences(ctx context.Context, userID string) (*entity.UserPreferences, *errors.AppError)
	UpdatePreferences(ctx context.Context, userID string, prefs entity.UserPreferences) (*entity.UserPreferences, *errors.AppError)
}

// SchedulerService is the facade over the slot pipeline: aggregate busy
// intervals, generate candidates, filter conflicts, rank.
type SchedulerService struct {
	providers  ProviderRegistry
	repo       repository.SchedulingRepositoryInterface
	aggregator *BusyAggregator
	generator  *SlotGenerator
	filter     *ConflictFilter
	scorer     *SlotScorer
}

func NewSchedulerService(providers ProviderRegistry, repo repository.SchedulingRepositoryInterface) SchedulerInterface {
	return &SchedulerService{
		providers:  providers,
		repo:       repo,
		aggregator: NewBusyAggregator(providers),
		generator:  NewSlotGenerator(),
		filter:     NewConflictFilter(),
		scorer:     NewSlotScorer(),
	}
}

func (s *SchedulerService) FindAvailableSlots(ctx context.Context, userID string, input *FindSlotsInput) ([]entity.TimeSlot, *errors.AppError) {
	userCtx, prefs, appErr := s.resolveContext(ctx, userID, input.UserContext)
	if appErr != nil {
		return nil, appErr
	}

	duration := time.Duration(input.DurationMinutes) * time.Minute
	if duration <= 0 {
		duration = time.Duration(prefs.PreferredDurationMinutes) * time.Minute
	}

	now := time.Now().In(prefs.Location)
	startDate := now
	if input.StartDate != nil {
		startDate = input.StartDate.In(prefs.Location)
	}
	endDate := startDate.AddDate(0, 0, constants.DefaultLookaheadDays)
	if input.EndDate != nil {
		endDate = input.EndDate.In(prefs.Location)
	}

	candidates, appErr := s.generator.Generate(startDate, endDate, duration, prefs, !input.IncludeWeekends)
	if appErr != nil {
		return nil, appErr
	}

	busy := s.aggregator.Aggregate(ctx, userID, startDate, endDate.AddDate(0, 0, 1), userCtx)
	buffer := time.Duration(prefs.BufferMinutes) * time.Minute
	free := s.filter.Filter(candidates, busy, buffer)

	ranked := s.scorer.Rank(free, input.PreferredTime, prefs)
	if len(ranked) > constants.MaxSuggestions {
		ranked = ranked[:constants.MaxSuggestions]
	}

	logger.Info("SchedulerService:FindAvailableSlots:Done",
		"user_id", userID,
		"candidates", len(candidates),
		"busy", len(busy),
		"returned", len(ranked),
	)
	return ranked, nil
}

func (s *SchedulerService) Schedule(ctx context.Context, userID string, input *ScheduleInput) (*ScheduleOutcome, *errors.AppError) {
	if input.Title == "" {
		return nil, errors.NewAppError(errors.ErrInvalidRequestData, "title is required", nil)
	}

	_, prefs, appErr := s.resolveContext(ctx, userID, nil)
	if appErr != nil {
		return nil, appErr
	}

	slots, appErr := s.FindAvailableSlots(ctx, userID, &FindSlotsInput{
		DurationMinutes: input.DurationMinutes,
		PreferredTime:   input.PreferredTime,
	})
	if appErr != nil {
		return nil, appErr
	}
	if len(slots) == 0 {
		return nil, errors.NewAppError(errors.ErrNotFound, "no available slots in the search window", nil)
	}

	if input.SuggestOnly {
		return &ScheduleOutcome{Suggestions: slots}, nil
	}

	providerName := input.Provider
	if providerName == "" {
		providerName = prefs.PreferredProvider
	}
	provider, ok := s.providers.Get(providerName)
	if !ok {
		return nil, errors.NewAppError(errors.ErrUnsupportedProvider, "unsupported provider "+providerName, nil)
	}

	top := slots[0]

	count, err := s.repo.CountEventsOnDay(ctx, userID, top.Start)
	if err != nil {
		logger.Warn("SchedulerService:Schedule:CountEventsOnDay", "error", err)
	} else if count >= prefs.MaxMeetingsPerDay {
		return nil, errors.NewAppError(errors.ErrAlreadyExists,
			fmt.Sprintf("daily meeting limit of %d reached", prefs.MaxMeetingsPerDay), nil)
	}

	event, err := provider.CreateEvent(ctx, userID, &entity.EventSpec{
		Title:       input.Title,
		Description: input.Description,
		Location:    input.Location,
		Attendees:   input.Attendees,
		Start:       top.Start,
		End:         top.End,
		Timezone:    prefs.Timezone,
	})
	if err != nil {
		return nil, errors.NewAppError(errors.ErrProviderUnavailable, "failed to create event", err)
	}

	if err := s.repo.InsertScheduledEvent(ctx, userID, event); err != nil {
		logger.Warn("SchedulerService:Schedule:InsertScheduledEvent", "error", err)
	}
	s.audit(ctx, userID, "schedule", providerName, event.ID)

	return &ScheduleOutcome{Booked: true, Event: event, Suggestions: slots}, nil
}

func (s *SchedulerService) CheckAvailability(ctx context.Context, userID string, start, end time.Time) (bool, *errors.AppError) {
	if !end.After(start) {
		return false, errors.NewAppError(errors.ErrInvalidInput, "end must be after start", nil)
	}

	userCtx, _, appErr := s.resolveContext(ctx, userID, nil)
	if appErr != nil {
		return false, appErr
	}

	busy := s.aggregator.Aggregate(ctx, userID, start, end, userCtx)
	slot := entity.TimeSlot{Start: start, End: end}
	for _, b := range busy {
		if b.Blocks() && Overlaps(slot, b) {
			return false, nil
		}
	}
	return true, nil
}

func (s *SchedulerService) SuggestRescheduleOptions(ctx context.Context, userID, providerName, eventID string, newDurationMinutes int) ([]entity.TimeSlot, *errors.AppError) {
	_, prefs, appErr := s.resolveContext(ctx, userID, nil)
	if appErr != nil {
		return nil, appErr
	}

	if providerName == "" {
		providerName = prefs.PreferredProvider
	}
	provider, ok := s.providers.Get(providerName)
	if !ok {
		return nil, errors.NewAppError(errors.ErrUnsupportedProvider, "unsupported provider "+providerName, nil)
	}

	event, err := provider.GetEvent(ctx, userID, eventID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrProviderUnavailable, "failed to load event", err)
	}
	if event == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "event not found", nil)
	}

	duration := int(event.End.Sub(event.Start).Minutes())
	if newDurationMinutes > 0 {
		duration = newDurationMinutes
	}

	now := time.Now().In(prefs.Location)
	end := now.AddDate(0, 0, constants.RescheduleLookaheadDays)
	preferred := event.Start

	slots, appErr := s.FindAvailableSlots(ctx, userID, &FindSlotsInput{
		DurationMinutes: duration,
		StartDate:       &now,
		EndDate:         &end,
		PreferredTime:   &preferred,
	})
	if appErr != nil {
		return nil, appErr
	}

	s.audit(ctx, userID, "reschedule_options", providerName, eventID)
	return slots, nil
}

func (s *SchedulerService) CancelEvent(ctx context.Context, userID, providerName, eventID string) *errors.AppError {
	_, prefs, appErr := s.resolveContext(ctx, userID, nil)
	if appErr != nil {
		return appErr
	}

	if providerName == "" {
		providerName = prefs.PreferredProvider
	}
	provider, ok := s.providers.Get(providerName)
	if !ok {
		return errors.NewAppError(errors.ErrUnsupportedProvider, "unsupported provider "+providerName, nil)
	}

	cancelled, err := provider.CancelEvent(ctx, userID, eventID)
	if err != nil {
		return errors.NewAppError(errors.ErrProviderUnavailable, "failed to cancel event", err)
	}
	if !cancelled {
		return errors.NewAppError(errors.ErrNotFound, "event not found", nil)
	}

	if err := s.repo.UpdateScheduledEventStatus(ctx, eventID, entity.StatusCancelled); err != nil {
		logger.Warn("SchedulerService:CancelEvent:UpdateStatus", "error", err)
	}
	s.audit(ctx, userID, "cancel", providerName, eventID)
	return nil
}

// ListScheduledEvents returns the user's upcoming booked events in
// chronological order.
func (s *SchedulerService) ListScheduledEvents(ctx context.Context, userID string) ([]entity.Event, *errors.AppError) {
	events, err := s.repo.ListScheduledEvents(ctx, userID, time.Now())
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to load scheduled events", err)
	}
	return events, nil
}

// OptimalDuration suggests a meeting length from its type and headcount.
// Unrecognized types fall back to the user's preferred duration.
func (s *SchedulerService) OptimalDuration(meetingType string, attendeeCount int, prefs *entity.UserPreferences) int {
	base, ok := map[string]int{
		"standup":      15,
		"one_on_one":   30,
		"team_meeting": 60,
		"review":       90,
		"presentation": 60,
		"workshop":     120,
		"all_hands":    60,
	}[strings.ToLower(meetingType)]
	if !ok {
		base = constants.DefaultMeetingDurationMinutes
		if prefs != nil && prefs.PreferredDurationMinutes > 0 {
			base = prefs.PreferredDurationMinutes
		}
	}

	switch {
	case attendeeCount > 10:
		base += 15
	case attendeeCount > 5:
		base += 10
	}
	return base
}

func (s *SchedulerService) GetPreferences(ctx context.Context, userID string) (*entity.UserPreferences, *errors.AppError) {
	prefs, err := s.repo.GetPreferences(ctx, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to load preferences", err)
	}
	if prefs == nil {
		defaults := entity.DefaultPreferences()
		return &defaults, nil
	}
	return prefs, nil
}

func (s *SchedulerService) UpdatePreferences(ctx context.Context, userID string, prefs entity.UserPreferences) (*entity.UserPreferences, *errors.AppError) {
	resolved, appErr := prefs.Resolve()
	if appErr != nil {
		return nil, appErr
	}
	if err := s.repo.UpsertPreferences(ctx, userID, resolved.UserPreferences); err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to save preferences", err)
	}
	return &resolved.UserPreferences, nil
}

func (s *SchedulerService) resolveContext(ctx context.Context, userID string, userCtx *entity.UserContext) (*entity.UserContext, entity.ResolvedPreferences, *errors.AppError) {
	if userCtx == nil {
		prefs, appErr := s.GetPreferences(ctx, userID)
		if appErr != nil {
			return nil, entity.ResolvedPreferences{}, appErr
		}
		userCtx = &entity.UserContext{UserID: userID, Preferences: *prefs}
	}

	resolved, appErr := userCtx.Preferences.Resolve()
	if appErr != nil {
		return nil, entity.ResolvedPreferences{}, appErr
	}
	return userCtx, resolved, nil
}

func (s *SchedulerService) audit(ctx context.Context, userID, action, provider, detail string) {
	if err := s.repo.InsertActionLog(ctx, &repository.ActionLog{
		UserID:   userID,
		Action:   action,
		Provider: provider,
		Detail:   detail,
	}); err != nil {
		logger.Warn("SchedulerService:Audit:Insert", "action", action, "error", err)
	}
}
