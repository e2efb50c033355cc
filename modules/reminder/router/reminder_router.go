package router

import (
	"github.com/labstack/echo/v4"

	"syncme/core/middleware"
	"syncme/modules/reminder/controller"
)

type ReminderRouter struct {
	controller *controller.ReminderController
}

func NewReminderRouter(ctrl *controller.ReminderController) *ReminderRouter {
	return &ReminderRouter{controller: ctrl}
}

func (r *ReminderRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	private := e.Group("/api/v1/private/reminders", mw.AuthMiddleware())

	private.POST("", r.controller.Create)
	private.GET("", r.controller.List)
	private.DELETE("/:id", r.controller.Cancel)
}
