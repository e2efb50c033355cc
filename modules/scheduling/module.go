package scheduling

import (
	"github.com/labstack/echo/v4"

	"syncme/core/database"
	"syncme/core/middleware"
	"syncme/modules/scheduling/controller"
	"syncme/modules/scheduling/repository"
	"syncme/modules/scheduling/router"
	"syncme/modules/scheduling/service"
)

// Init wires the scheduling module and registers its routes. The provider
// registry comes from the calendar module.
func Init(e *echo.Echo, db database.Database, providers service.ProviderRegistry, mw *middleware.Middleware) service.SchedulerInterface {
	repo := repository.NewSchedulingRepository(db)
	svc := service.NewSchedulerService(providers, repo)
	ctrl := controller.NewSchedulingController(svc)
	rtr := router.NewSchedulingRouter(ctrl)

	rtr.Setup(e, mw)
	return svc
}
