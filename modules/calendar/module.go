package calendar

import (
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"

	"syncme/core/config"
	"syncme/core/database"
	"syncme/core/middleware"
	"syncme/core/queue"
	"syncme/modules/calendar/controller"
	"syncme/modules/calendar/provider"
	"syncme/modules/calendar/repository"
	"syncme/modules/calendar/router"
	"syncme/modules/calendar/service"
	schedservice "syncme/modules/scheduling/service"
)

// Init wires the calendar module: providers, connection management, and the
// background sync worker. The returned registry is shared with the
// scheduling module.
func Init(e *echo.Echo, db database.Database, cfg *config.Config, enqueuer queue.Enqueuer, mux *asynq.ServeMux, mw *middleware.Middleware) schedservice.ProviderRegistry {
	repo := repository.NewCalendarRepository(db)

	backoff := provider.DefaultBackoff()
	registry := provider.NewRegistry(
		provider.NewGoogleProvider(repo, cfg.GoogleAPI, backoff),
		provider.NewOutlookProvider(repo, cfg.MicrosoftAPI, backoff),
	)

	svc := service.NewCalendarService(repo, registry, enqueuer)
	ctrl := controller.NewCalendarController(svc)
	rtr := router.NewCalendarRouter(ctrl)

	rtr.Setup(e, mw)
	mux.HandleFunc(queue.TypeCalendarSync, svc.HandleSyncTask)

	return registry
}
