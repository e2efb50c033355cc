package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syncme/core/errors"
	"syncme/core/queue"
	"syncme/modules/calendar/entity"
	schedentity "syncme/modules/scheduling/entity"
	schedservice "syncme/modules/scheduling/service"
)

type stubProvider struct {
	schedservice.CalendarProvider

	name    string
	busy    []schedentity.BusyInterval
	busyErr error
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) GetBusyIntervals(_ context.Context, _ string, _, _ time.Time) ([]schedentity.BusyInterval, error) {
	return p.busy, p.busyErr
}

type stubRegistry struct {
	providers []*stubProvider
}

func (r *stubRegistry) Get(name string) (schedservice.CalendarProvider, bool) {
	for _, p := range r.providers {
		if p.name == name {
			return p, true
		}
	}
	return nil, false
}

func (r *stubRegistry) All() []schedservice.CalendarProvider {
	out := make([]schedservice.CalendarProvider, len(r.providers))
	for i, p := range r.providers {
		out[i] = p
	}
	return out
}

type stubCalendarRepo struct {
	conns    []entity.CalendarConnection
	syncLogs []*entity.SyncLog
	inactive []string
}

func (r *stubCalendarRepo) GetConnectionByUserAndProvider(_ context.Context, _, provider string) (*entity.CalendarConnection, error) {
	for i := range r.conns {
		if r.conns[i].Provider == provider && r.conns[i].IsActive {
			return &r.conns[i], nil
		}
	}
	return nil, nil
}

func (r *stubCalendarRepo) GetConnectionsByUserID(_ context.Context, _ string) ([]entity.CalendarConnection, error) {
	return r.conns, nil
}

func (r *stubCalendarRepo) UpdateConnectionTokens(_ context.Context, _, _, _ string, _ time.Time) error {
	return nil
}

func (r *stubCalendarRepo) DeactivateConnection(_ context.Context, _, provider string) error {
	r.inactive = append(r.inactive, provider)
	return nil
}

func (r *stubCalendarRepo) InsertSyncLog(_ context.Context, log *entity.SyncLog) error {
	r.syncLogs = append(r.syncLogs, log)
	return nil
}

type stubEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (e *stubEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if e.err != nil {
		return nil, e.err
	}
	e.tasks = append(e.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func activeConn(provider string) entity.CalendarConnection {
	return entity.CalendarConnection{
		ID:            "conn-" + provider,
		UserID:        "user-1",
		Provider:      provider,
		CalendarEmail: "user@example.com",
		IsActive:      true,
	}
}

func TestListConnections(t *testing.T) {
	repo := &stubCalendarRepo{conns: []entity.CalendarConnection{activeConn("google"), activeConn("outlook")}}
	svc := NewCalendarService(repo, &stubRegistry{}, &stubEnqueuer{})

	conns, appErr := svc.ListConnections(context.Background(), "user-1")
	require.Nil(t, appErr)
	require.Len(t, conns, 2)
	assert.Equal(t, "google", conns[0].Provider)
}

func TestDisconnect(t *testing.T) {
	repo := &stubCalendarRepo{conns: []entity.CalendarConnection{activeConn("google")}}
	registry := &stubRegistry{providers: []*stubProvider{{name: "google"}}}
	svc := NewCalendarService(repo, registry, &stubEnqueuer{})

	appErr := svc.Disconnect(context.Background(), "user-1", "google")
	require.Nil(t, appErr)
	assert.Equal(t, []string{"google"}, repo.inactive)
}

func TestDisconnectUnsupportedProvider(t *testing.T) {
	svc := NewCalendarService(&stubCalendarRepo{}, &stubRegistry{}, &stubEnqueuer{})

	appErr := svc.Disconnect(context.Background(), "user-1", "caldav")
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrUnsupportedProvider, appErr.Code)
}

func TestDisconnectWithoutConnection(t *testing.T) {
	registry := &stubRegistry{providers: []*stubProvider{{name: "google"}}}
	svc := NewCalendarService(&stubCalendarRepo{}, registry, &stubEnqueuer{})

	appErr := svc.Disconnect(context.Background(), "user-1", "google")
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrNotFound, appErr.Code)
}

func TestEnqueueSyncAllProviders(t *testing.T) {
	registry := &stubRegistry{providers: []*stubProvider{{name: "google"}, {name: "outlook"}}}
	enq := &stubEnqueuer{}
	svc := NewCalendarService(&stubCalendarRepo{}, registry, enq)

	queued, appErr := svc.EnqueueSync(context.Background(), "user-1", nil, 0)
	require.Nil(t, appErr)
	assert.Equal(t, 2, queued)
	require.Len(t, enq.tasks, 2)
	assert.Equal(t, queue.TypeCalendarSync, enq.tasks[0].Type())
}

func TestEnqueueSyncUnknownProvider(t *testing.T) {
	registry := &stubRegistry{providers: []*stubProvider{{name: "google"}}}
	svc := NewCalendarService(&stubCalendarRepo{}, registry, &stubEnqueuer{})

	_, appErr := svc.EnqueueSync(context.Background(), "user-1", []string{"caldav"}, 7)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrUnsupportedProvider, appErr.Code)
}

func TestHandleSyncTaskRecordsSuccess(t *testing.T) {
	now := time.Now()
	provider := &stubProvider{name: "google", busy: []schedentity.BusyInterval{
		{Start: now, End: now.Add(time.Hour)},
		{Start: now.Add(2 * time.Hour), End: now.Add(3 * time.Hour)},
	}}
	repo := &stubCalendarRepo{}
	svc := NewCalendarService(repo, &stubRegistry{providers: []*stubProvider{provider}}, &stubEnqueuer{})

	task, err := queue.NewCalendarSyncTask("user-1", "google", 30)
	require.NoError(t, err)

	require.NoError(t, svc.HandleSyncTask(context.Background(), task))
	require.Len(t, repo.syncLogs, 1)
	assert.Equal(t, entity.SyncStatusSuccess, repo.syncLogs[0].Status)
	assert.Equal(t, 2, repo.syncLogs[0].EventCount)
}

func TestHandleSyncTaskRecordsFailure(t *testing.T) {
	provider := &stubProvider{name: "google", busyErr: fmt.Errorf("token revoked")}
	repo := &stubCalendarRepo{}
	svc := NewCalendarService(repo, &stubRegistry{providers: []*stubProvider{provider}}, &stubEnqueuer{})

	task, err := queue.NewCalendarSyncTask("user-1", "google", 30)
	require.NoError(t, err)

	require.Error(t, svc.HandleSyncTask(context.Background(), task))
	require.Len(t, repo.syncLogs, 1)
	assert.Equal(t, entity.SyncStatusFailed, repo.syncLogs[0].Status)
	assert.Equal(t, "token revoked", repo.syncLogs[0].Error)
}

func TestHandleSyncTaskUnknownProviderIsDropped(t *testing.T) {
	repo := &stubCalendarRepo{}
	svc := NewCalendarService(repo, &stubRegistry{}, &stubEnqueuer{})

	task, err := queue.NewCalendarSyncTask("user-1", "caldav", 30)
	require.NoError(t, err)

	// unknown providers are logged and dropped, not retried
	require.NoError(t, svc.HandleSyncTask(context.Background(), task))
	assert.Empty(t, repo.syncLogs)
}
