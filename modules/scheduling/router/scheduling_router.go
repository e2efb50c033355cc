package router

import (
	"github.com/labstack/echo/v4"

	"syncme/core/middleware"
	"syncme/modules/scheduling/controller"
)

type SchedulingRouter struct {
	controller *controller.SchedulingController
}

func NewSchedulingRouter(ctrl *controller.SchedulingController) *SchedulingRouter {
	return &SchedulingRouter{controller: ctrl}
}

func (r *SchedulingRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	private := e.Group("/api/v1/private", mw.AuthMiddleware())

	private.GET("/schedule", r.controller.GetSchedule)
	private.POST("/schedule", r.controller.Schedule)
	private.DELETE("/schedule/:id", r.controller.CancelEvent)
	private.POST("/schedule/:id/reschedule-options", r.controller.RescheduleOptions)
	private.POST("/schedule/optimal-duration", r.controller.OptimalDuration)

	private.GET("/availability", r.controller.FindSlots)
	private.POST("/availability/check", r.controller.CheckAvailability)

	private.GET("/preferences", r.controller.GetPreferences)
	private.PUT("/preferences", r.controller.UpdatePreferences)
}
