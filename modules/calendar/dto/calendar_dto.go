package dto

import (
	"time"

	"syncme/modules/calendar/entity"
)

type ConnectionResponse struct {
	ID            string    `json:"id"`
	Provider      string    `json:"provider"`
	CalendarEmail string    `json:"calendar_email"`
	ConnectedAt   time.Time `json:"connected_at"`
}

func NewConnectionResponse(c entity.CalendarConnection) ConnectionResponse {
	return ConnectionResponse{
		ID:            c.ID,
		Provider:      c.Provider,
		CalendarEmail: c.CalendarEmail,
		ConnectedAt:   c.CreatedAt,
	}
}

type SyncRequest struct {
	Providers []string `json:"providers"`
	Days      int      `json:"days"`
}

type SyncResponse struct {
	Queued int `json:"queued"`
}
