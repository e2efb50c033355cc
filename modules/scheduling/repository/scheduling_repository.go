package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"syncme/core/database"
	"syncme/modules/scheduling/entity"
)

type SchedulingRepositoryInterface interface {
	GetPreferences(ctx context.Context, userID string) (*entity.UserPreferences, error)
	UpsertPreferences(ctx context.Context, userID string, prefs entity.UserPreferences) error
	InsertActionLog(ctx context.Context, log *ActionLog) error
	CountEventsOnDay(ctx context.Context, userID string, day time.Time) (int, error)
	InsertScheduledEvent(ctx context.Context, userID string, ev *entity.Event) error
	UpdateScheduledEventStatus(ctx context.Context, eventID string, status entity.EventStatus) error
	ListScheduledEvents(ctx context.Context, userID string, from time.Time) ([]entity.Event, error)
}

// ActionLog is an audit row for booking and rescheduling requests.
type ActionLog struct {
	UserID   string `db:"user_id"`
	Action   string `db:"action"`
	Provider string `db:"provider"`
	Detail   string `db:"detail"`
}

type preferencesRow struct {
	UserID                   string `db:"user_id"`
	PreferredDurationMinutes int    `db:"preferred_duration_minutes"`
	WorkStart                string `db:"work_start"`
	WorkEnd                  string `db:"work_end"`
	Timezone                 string `db:"timezone"`
	BufferMinutes            int    `db:"buffer_minutes"`
	MaxMeetingsPerDay        int    `db:"max_meetings_per_day"`
	PreferredProvider        string `db:"preferred_provider"`
}

type SchedulingRepository struct {
	DB database.Database
}

func NewSchedulingRepository(db database.Database) SchedulingRepositoryInterface {
	return &SchedulingRepository{DB: db}
}

// GetPreferences returns (nil, nil) when the user has never saved
// preferences. Callers fall back to defaults.
func (r *SchedulingRepository) GetPreferences(ctx context.Context, userID string) (*entity.UserPreferences, error) {
	query := `
		SELECT user_id, preferred_duration_minutes, work_start, work_end,
		       timezone, buffer_minutes, max_meetings_per_day, preferred_provider
		FROM user_preferences
		WHERE user_id = $1
	`
	var row preferencesRow
	err := r.DB.GetContext(ctx, &row, query, userID)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	workStart, err := entity.ParseTimeOfDay(row.WorkStart)
	if err != nil {
		return nil, err
	}
	workEnd, err := entity.ParseTimeOfDay(row.WorkEnd)
	if err != nil {
		return nil, err
	}

	return &entity.UserPreferences{
		PreferredDurationMinutes: row.PreferredDurationMinutes,
		WorkStart:                workStart,
		WorkEnd:                  workEnd,
		Timezone:                 row.Timezone,
		BufferMinutes:            row.BufferMinutes,
		MaxMeetingsPerDay:        row.MaxMeetingsPerDay,
		PreferredProvider:        row.PreferredProvider,
	}, nil
}

func (r *SchedulingRepository) UpsertPreferences(ctx context.Context, userID string, prefs entity.UserPreferences) error {
	query := `
		INSERT INTO user_preferences (
			user_id, preferred_duration_minutes, work_start, work_end,
			timezone, buffer_minutes, max_meetings_per_day, preferred_provider, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			preferred_duration_minutes = EXCLUDED.preferred_duration_minutes,
			work_start = EXCLUDED.work_start,
			work_end = EXCLUDED.work_end,
			timezone = EXCLUDED.timezone,
			buffer_minutes = EXCLUDED.buffer_minutes,
			max_meetings_per_day = EXCLUDED.max_meetings_per_day,
			preferred_provider = EXCLUDED.preferred_provider,
			updated_at = NOW()
	`
	return r.DB.ExecContext(ctx, query, userID,
		prefs.PreferredDurationMinutes,
		prefs.WorkStart.String(),
		prefs.WorkEnd.String(),
		prefs.Timezone,
		prefs.BufferMinutes,
		prefs.MaxMeetingsPerDay,
		prefs.PreferredProvider,
	)
}

func (r *SchedulingRepository) InsertActionLog(ctx context.Context, log *ActionLog) error {
	query := `
		INSERT INTO scheduling_logs (user_id, action, provider, detail, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`
	return r.DB.ExecContext(ctx, query, log.UserID, log.Action, log.Provider, log.Detail)
}

func (r *SchedulingRepository) CountEventsOnDay(ctx context.Context, userID string, day time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM scheduled_events
		WHERE user_id = $1
		  AND status = 'scheduled'
		  AND start_time >= $2
		  AND start_time < $3
	`
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	var count int
	err := r.DB.GetContext(ctx, &count, query, userID, dayStart, dayStart.AddDate(0, 0, 1))
	return count, err
}

func (r *SchedulingRepository) InsertScheduledEvent(ctx context.Context, userID string, ev *entity.Event) error {
	query := `
		INSERT INTO scheduled_events (
			event_id, user_id, title, provider, status, start_time, end_time, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (event_id) DO UPDATE SET
			status = EXCLUDED.status,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time
	`
	return r.DB.ExecContext(ctx, query, ev.ID, userID, ev.Title, ev.Provider, string(ev.Status), ev.Start, ev.End)
}

func (r *SchedulingRepository) UpdateScheduledEventStatus(ctx context.Context, eventID string, status entity.EventStatus) error {
	query := `UPDATE scheduled_events SET status = $2 WHERE event_id = $1`
	return r.DB.ExecContext(ctx, query, eventID, string(status))
}

type scheduledEventRow struct {
	EventID   string    `db:"event_id"`
	Title     string    `db:"title"`
	Provider  string    `db:"provider"`
	Status    string    `db:"status"`
	StartTime time.Time `db:"start_time"`
	EndTime   time.Time `db:"end_time"`
}

func (r *SchedulingRepository) ListScheduledEvents(ctx context.Context, userID string, from time.Time) ([]entity.Event, error) {
	query := `
		SELECT event_id, title, provider, status, start_time, end_time
		FROM scheduled_events
		WHERE user_id = $1
		  AND status = 'scheduled'
		  AND start_time >= $2
		ORDER BY start_time
	`
	var rows []scheduledEventRow
	if err := r.DB.SelectContext(ctx, &rows, query, userID, from); err != nil {
		return nil, err
	}

	events := make([]entity.Event, len(rows))
	for i, row := range rows {
		events[i] = entity.Event{
			ID:       row.EventID,
			Title:    row.Title,
			Provider: row.Provider,
			Status:   entity.EventStatus(row.Status),
			Start:    row.StartTime,
			End:      row.EndTime,
		}
	}
	return events, nil
}
