package repository

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/google/uuid"

	"syncme/core/database"
	"syncme/core/logger"
	"syncme/modules/reminder/entity"
)

type ReminderRepositoryInterface interface {
	Create(ctx context.Context, reminder *entity.Reminder) error
	GetByID(ctx context.Context, id string) (*entity.Reminder, error)
	ListByUser(ctx context.Context, userID string) ([]entity.Reminder, error)
	UpdateStatus(ctx context.Context, id string, status entity.ReminderStatus) error
}

type ReminderRepository struct {
	DB database.Database
}

func NewReminderRepository(db database.Database) ReminderRepositoryInterface {
	return &ReminderRepository{DB: db}
}

func (r *ReminderRepository) Create(ctx context.Context, reminder *entity.Reminder) error {
	if reminder.ID == "" {
		reminder.ID = uuid.NewString()
	}
	query := `
		INSERT INTO reminders (id, user_id, message, remind_at, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	err := r.DB.ExecContext(ctx, query, reminder.ID, reminder.UserID, reminder.Message, reminder.RemindAt, string(reminder.Status))
	if err != nil {
		logger.Error("ReminderRepository:Create:Error", "error", err)
	}
	return err
}

func (r *ReminderRepository) GetByID(ctx context.Context, id string) (*entity.Reminder, error) {
	query := `
		SELECT id, user_id, message, remind_at, status, created_at, updated_at
		FROM reminders
		WHERE id = $1
	`
	var reminder entity.Reminder
	err := r.DB.GetContext(ctx, &reminder, query, id)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reminder, nil
}

func (r *ReminderRepository) ListByUser(ctx context.Context, userID string) ([]entity.Reminder, error) {
	query := `
		SELECT id, user_id, message, remind_at, status, created_at, updated_at
		FROM reminders
		WHERE user_id = $1 AND status = 'pending'
		ORDER BY remind_at
	`
	var reminders []entity.Reminder
	if err := r.DB.SelectContext(ctx, &reminders, query, userID); err != nil {
		return nil, err
	}
	return reminders, nil
}

func (r *ReminderRepository) UpdateStatus(ctx context.Context, id string, status entity.ReminderStatus) error {
	query := `UPDATE reminders SET status = $2, updated_at = NOW() WHERE id = $1`
	return r.DB.ExecContext(ctx, query, id, string(status))
}
