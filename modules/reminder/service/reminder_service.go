package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"syncme/core/errors"
	"syncme/core/logger"
	"syncme/core/queue"
	"syncme/modules/reminder/dto"
	"syncme/modules/reminder/entity"
	"syncme/modules/reminder/repository"
)

type ReminderServiceInterface interface {
	Create(ctx context.Context, userID, message string, remindAt time.Time) (*dto.ReminderResponse, *errors.AppError)
	ListPending(ctx context.Context, userID string) ([]dto.ReminderResponse, *errors.AppError)
	Cancel(ctx context.Context, userID, reminderID string) *errors.AppError
	HandleDeliverTask(ctx context.Context, t *asynq.Task) error
}

type ReminderService struct {
	repo     repository.ReminderRepositoryInterface
	enqueuer queue.Enqueuer
}

func NewReminderService(repo repository.ReminderRepositoryInterface, enqueuer queue.Enqueuer) ReminderServiceInterface {
	return &ReminderService{repo: repo, enqueuer: enqueuer}
}

func (s *ReminderService) Create(ctx context.Context, userID, message string, remindAt time.Time) (*dto.ReminderResponse, *errors.AppError) {
	if message == "" {
		return nil, errors.NewAppError(errors.ErrInvalidRequestData, "message is required", nil)
	}
	if !remindAt.After(time.Now()) {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "remind_at must be in the future", nil)
	}

	reminder := &entity.Reminder{
		UserID:   userID,
		Message:  message,
		RemindAt: remindAt,
		Status:   entity.ReminderPending,
	}
	if err := s.repo.Create(ctx, reminder); err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to save reminder", err)
	}

	task, err := queue.NewReminderDeliverTask(reminder.ID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to build reminder task", err)
	}
	if _, err := s.enqueuer.EnqueueContext(ctx, task, asynq.ProcessAt(remindAt), asynq.Queue("reminders")); err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to queue reminder", err)
	}

	logger.Info("ReminderService:Create:Done", "reminder_id", reminder.ID, "remind_at", remindAt)
	return toResponse(reminder), nil
}

func (s *ReminderService) ListPending(ctx context.Context, userID string) ([]dto.ReminderResponse, *errors.AppError) {
	reminders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to load reminders", err)
	}

	out := make([]dto.ReminderResponse, 0, len(reminders))
	for i := range reminders {
		out = append(out, *toResponse(&reminders[i]))
	}
	return out, nil
}

func (s *ReminderService) Cancel(ctx context.Context, userID, reminderID string) *errors.AppError {
	reminder, err := s.repo.GetByID(ctx, reminderID)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to load reminder", err)
	}
	if reminder == nil || reminder.UserID != userID {
		return errors.NewAppError(errors.ErrNotFound, "reminder not found", nil)
	}
	if reminder.Status != entity.ReminderPending {
		return errors.NewAppError(errors.ErrInvalidInput, "reminder is not pending", nil)
	}

	if err := s.repo.UpdateStatus(ctx, reminderID, entity.ReminderCancelled); err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to cancel reminder", err)
	}
	return nil
}

// HandleDeliverTask fires when a reminder comes due. Delivery is a log line
// for now; the task skips reminders cancelled after enqueueing.
func (s *ReminderService) HandleDeliverTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.ReminderDeliverPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}

	reminder, err := s.repo.GetByID(ctx, payload.ReminderID)
	if err != nil {
		return err
	}
	if reminder == nil || reminder.Status != entity.ReminderPending {
		return nil
	}

	logger.Info("ReminderService:Deliver",
		"reminder_id", reminder.ID,
		"user_id", reminder.UserID,
		"message", reminder.Message,
	)
	return s.repo.UpdateStatus(ctx, reminder.ID, entity.ReminderSent)
}

func toResponse(r *entity.Reminder) *dto.ReminderResponse {
	return &dto.ReminderResponse{
		ID:       r.ID,
		Message:  r.Message,
		RemindAt: r.RemindAt,
		Status:   string(r.Status),
	}
}
