package queue

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"

	"syncme/core/config"
)

// Task types
const (
	TypeCalendarSync    = "calendar:sync"
	TypeReminderDeliver = "reminder:deliver"
)

// Enqueuer is the producer side of the task queue. Services depend on this
// interface so tests can swap in a recorder.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type CalendarSyncPayload struct {
	UserID   string `json:"user_id"`
	Provider string `json:"provider"`
	Days     int    `json:"days"`
}

type ReminderDeliverPayload struct {
	ReminderID string `json:"reminder_id"`
}

func NewCalendarSyncTask(userID, provider string, days int) (*asynq.Task, error) {
	payload, err := json.Marshal(CalendarSyncPayload{UserID: userID, Provider: provider, Days: days})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeCalendarSync, payload), nil
}

func NewReminderDeliverTask(reminderID string) (*asynq.Task, error) {
	payload, err := json.Marshal(ReminderDeliverPayload{ReminderID: reminderID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeReminderDeliver, payload), nil
}

func redisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

func NewClient(cfg config.RedisConfig) *asynq.Client {
	return asynq.NewClient(redisOpt(cfg))
}

func NewServer(cfg config.RedisConfig) *asynq.Server {
	return asynq.NewServer(redisOpt(cfg), asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			"default":   5,
			"sync":      3,
			"reminders": 2,
		},
	})
}
