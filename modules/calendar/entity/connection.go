package entity

import "time"

// CalendarConnection stores a user's OAuth link to one provider.
type CalendarConnection struct {
	ID             string    `db:"id"`
	UserID         string    `db:"user_id"`
	Provider       string    `db:"provider"`
	AccessToken    string    `db:"access_token"`
	RefreshToken   string    `db:"refresh_token"`
	TokenExpiresAt time.Time `db:"token_expires_at"`
	CalendarEmail  string    `db:"calendar_email"`
	IsActive       bool      `db:"is_active"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// SyncLog records one background sync run.
type SyncLog struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	Provider   string    `db:"provider"`
	Status     string    `db:"status"`
	EventCount int       `db:"event_count"`
	Error      string    `db:"error"`
	SyncedAt   time.Time `db:"synced_at"`
}

const (
	SyncStatusSuccess = "success"
	SyncStatusFailed  = "failed"
)
