package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"syncme/core/errors"
	"syncme/core/logger"
	"syncme/core/queue"
	"syncme/modules/calendar/dto"
	"syncme/modules/calendar/entity"
	"syncme/modules/calendar/repository"
	schedservice "syncme/modules/scheduling/service"
)

type CalendarServiceInterface interface {
	ListConnections(ctx context.Context, userID string) ([]dto.ConnectionResponse, *errors.AppError)
	Disconnect(ctx context.Context, userID, providerName string) *errors.AppError
	EnqueueSync(ctx context.Context, userID string, providerNames []string, days int) (int, *errors.AppError)
	HandleSyncTask(ctx context.Context, t *asynq.Task) error
}

type CalendarService struct {
	repo      repository.CalendarRepositoryInterface
	providers schedservice.ProviderRegistry
	enqueuer  queue.Enqueuer
}

func NewCalendarService(repo repository.CalendarRepositoryInterface, providers schedservice.ProviderRegistry, enqueuer queue.Enqueuer) CalendarServiceInterface {
	return &CalendarService{
		repo:      repo,
		providers: providers,
		enqueuer:  enqueuer,
	}
}

func (s *CalendarService) ListConnections(ctx context.Context, userID string) ([]dto.ConnectionResponse, *errors.AppError) {
	conns, err := s.repo.GetConnectionsByUserID(ctx, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to load calendar connections", err)
	}

	out := make([]dto.ConnectionResponse, 0, len(conns))
	for _, c := range conns {
		out = append(out, dto.NewConnectionResponse(c))
	}
	return out, nil
}

func (s *CalendarService) Disconnect(ctx context.Context, userID, providerName string) *errors.AppError {
	if _, ok := s.providers.Get(providerName); !ok {
		return errors.NewAppError(errors.ErrUnsupportedProvider, "unsupported provider "+providerName, nil)
	}

	conn, err := s.repo.GetConnectionByUserAndProvider(ctx, userID, providerName)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to load connection", err)
	}
	if conn == nil {
		return errors.NewAppError(errors.ErrNotFound, "no active connection for "+providerName, nil)
	}

	if err := s.repo.DeactivateConnection(ctx, userID, providerName); err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to disconnect", err)
	}

	logger.Info("CalendarService:Disconnect:Done", "user_id", userID, "provider", providerName)
	return nil
}

// EnqueueSync schedules one background sync task per requested provider and
// returns how many were queued.
func (s *CalendarService) EnqueueSync(ctx context.Context, userID string, providerNames []string, days int) (int, *errors.AppError) {
	if len(providerNames) == 0 {
		for _, p := range s.providers.All() {
			providerNames = append(providerNames, p.Name())
		}
	}
	if days <= 0 {
		days = 30
	}

	queued := 0
	for _, name := range providerNames {
		if _, ok := s.providers.Get(name); !ok {
			return queued, errors.NewAppError(errors.ErrUnsupportedProvider, "unsupported provider "+name, nil)
		}
		task, err := queue.NewCalendarSyncTask(userID, name, days)
		if err != nil {
			return queued, errors.NewAppError(errors.ErrInternalServer, "failed to build sync task", err)
		}
		if _, err := s.enqueuer.EnqueueContext(ctx, task, asynq.Queue("sync")); err != nil {
			return queued, errors.NewAppError(errors.ErrInternalServer, "failed to enqueue sync task", err)
		}
		queued++
	}

	logger.Info("CalendarService:EnqueueSync:Done", "user_id", userID, "queued", queued)
	return queued, nil
}

// HandleSyncTask runs one background sync: pull the busy window from the
// provider and record the outcome.
func (s *CalendarService) HandleSyncTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.CalendarSyncPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}

	provider, ok := s.providers.Get(payload.Provider)
	if !ok {
		logger.Error("CalendarService:HandleSyncTask:UnknownProvider", "provider", payload.Provider)
		return nil
	}

	now := time.Now()
	intervals, err := provider.GetBusyIntervals(ctx, payload.UserID, now, now.AddDate(0, 0, payload.Days))

	log := &entity.SyncLog{
		UserID:   payload.UserID,
		Provider: payload.Provider,
		Status:   entity.SyncStatusSuccess,
	}
	if err != nil {
		log.Status = entity.SyncStatusFailed
		log.Error = err.Error()
	} else {
		log.EventCount = len(intervals)
	}

	if insertErr := s.repo.InsertSyncLog(ctx, log); insertErr != nil {
		logger.Warn("CalendarService:HandleSyncTask:InsertSyncLog", "error", insertErr)
	}

	if err != nil {
		logger.Warn("CalendarService:HandleSyncTask:Failed",
			"user_id", payload.UserID,
			"provider", payload.Provider,
			"error", err,
		)
		return err
	}

	logger.Info("CalendarService:HandleSyncTask:Done",
		"user_id", payload.UserID,
		"provider", payload.Provider,
		"events", len(intervals),
	)
	return nil
}
