package dto

import "time"

type CreateReminderRequest struct {
	Message  string `json:"message"`
	RemindAt string `json:"remind_at"`
}

type ReminderResponse struct {
	ID       string    `json:"id"`
	Message  string    `json:"message"`
	RemindAt time.Time `json:"remind_at"`
	Status   string    `json:"status"`
}
