package reminder

import (
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"

	"syncme/core/database"
	"syncme/core/middleware"
	"syncme/core/queue"
	"syncme/modules/reminder/controller"
	"syncme/modules/reminder/repository"
	"syncme/modules/reminder/router"
	"syncme/modules/reminder/service"
)

// Init wires the reminder module and its delivery worker.
func Init(e *echo.Echo, db database.Database, enqueuer queue.Enqueuer, mux *asynq.ServeMux, mw *middleware.Middleware) service.ReminderServiceInterface {
	repo := repository.NewReminderRepository(db)
	svc := service.NewReminderService(repo, enqueuer)
	ctrl := controller.NewReminderController(svc)
	rtr := router.NewReminderRouter(ctrl)

	rtr.Setup(e, mw)
	mux.HandleFunc(queue.TypeReminderDeliver, svc.HandleDeliverTask)

	return svc
}
