package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"syncme/core/database"
	"syncme/modules/calendar/entity"
)

type CalendarRepositoryInterface interface {
	GetConnectionByUserAndProvider(ctx context.Context, userID, provider string) (*entity.CalendarConnection, error)
	GetConnectionsByUserID(ctx context.Context, userID string) ([]entity.CalendarConnection, error)
	UpdateConnectionTokens(ctx context.Context, connectionID, accessToken, refreshToken string, expiresAt time.Time) error
	DeactivateConnection(ctx context.Context, userID, provider string) error
	InsertSyncLog(ctx context.Context, log *entity.SyncLog) error
}

type CalendarRepository struct {
	DB database.Database
}

func NewCalendarRepository(db database.Database) CalendarRepositoryInterface {
	return &CalendarRepository{DB: db}
}

// GetConnectionByUserAndProvider returns (nil, nil) when the user has no
// active connection for the provider.
func (r *CalendarRepository) GetConnectionByUserAndProvider(ctx context.Context, userID, provider string) (*entity.CalendarConnection, error) {
	query := `
		SELECT id, user_id, provider, access_token, refresh_token,
		       token_expires_at, calendar_email, is_active, created_at, updated_at
		FROM calendar_connections
		WHERE user_id = $1 AND provider = $2 AND is_active = true
	`
	var conn entity.CalendarConnection
	err := r.DB.GetContext(ctx, &conn, query, userID, provider)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *CalendarRepository) GetConnectionsByUserID(ctx context.Context, userID string) ([]entity.CalendarConnection, error) {
	query := `
		SELECT id, user_id, provider, access_token, refresh_token,
		       token_expires_at, calendar_email, is_active, created_at, updated_at
		FROM calendar_connections
		WHERE user_id = $1 AND is_active = true
		ORDER BY provider
	`
	var conns []entity.CalendarConnection
	if err := r.DB.SelectContext(ctx, &conns, query, userID); err != nil {
		return nil, err
	}
	return conns, nil
}

func (r *CalendarRepository) UpdateConnectionTokens(ctx context.Context, connectionID, accessToken, refreshToken string, expiresAt time.Time) error {
	query := `
		UPDATE calendar_connections
		SET access_token = $2, refresh_token = $3, token_expires_at = $4, updated_at = NOW()
		WHERE id = $1
	`
	return r.DB.ExecContext(ctx, query, connectionID, accessToken, refreshToken, expiresAt)
}

func (r *CalendarRepository) DeactivateConnection(ctx context.Context, userID, provider string) error {
	query := `
		UPDATE calendar_connections
		SET is_active = false, updated_at = NOW()
		WHERE user_id = $1 AND provider = $2
	`
	return r.DB.ExecContext(ctx, query, userID, provider)
}

func (r *CalendarRepository) InsertSyncLog(ctx context.Context, log *entity.SyncLog) error {
	query := `
		INSERT INTO calendar_sync_logs (id, user_id, provider, status, event_count, error, synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	id := log.ID
	if id == "" {
		id = uuid.NewString()
	}
	syncedAt := log.SyncedAt
	if syncedAt.IsZero() {
		syncedAt = time.Now()
	}
	return r.DB.ExecContext(ctx, query, id, log.UserID, log.Provider, log.Status, log.EventCount, log.Error, syncedAt)
}
