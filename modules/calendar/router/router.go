package router

import (
	"github.com/labstack/echo/v4"

	"syncme/core/middleware"
	"syncme/modules/calendar/controller"
)

type CalendarRouter struct {
	controller *controller.CalendarController
}

func NewCalendarRouter(ctrl *controller.CalendarController) *CalendarRouter {
	return &CalendarRouter{controller: ctrl}
}

func (r *CalendarRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	calendarRoutes := e.Group("/api/v1/private/calendar", mw.AuthMiddleware())

	calendarRoutes.GET("/connections", r.controller.GetConnections)
	calendarRoutes.DELETE("/connections/:provider", r.controller.Disconnect)
	calendarRoutes.POST("/sync", r.controller.Sync)
}
