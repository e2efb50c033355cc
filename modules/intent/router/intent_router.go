package router

import (
	"github.com/labstack/echo/v4"

	"syncme/core/middleware"
	"syncme/modules/intent/controller"
)

type IntentRouter struct {
	controller *controller.IntentController
}

func NewIntentRouter(ctrl *controller.IntentController) *IntentRouter {
	return &IntentRouter{controller: ctrl}
}

func (r *IntentRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	private := e.Group("/api/v1/private/nlp", mw.AuthMiddleware())
	private.POST("/parse-intent", r.controller.ParseIntent)
}
