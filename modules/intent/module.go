package intent

import (
	"github.com/labstack/echo/v4"

	"syncme/core/config"
	"syncme/core/middleware"
	"syncme/modules/intent/controller"
	"syncme/modules/intent/router"
	"syncme/modules/intent/service"
)

// Init wires the intent module and returns the parser for the voice
// pipeline.
func Init(e *echo.Echo, cfg *config.Config, mw *middleware.Middleware) service.IntentParserInterface {
	svc := service.NewIntentParser(cfg.OpenAI)
	ctrl := controller.NewIntentController(svc)
	rtr := router.NewIntentRouter(ctrl)

	rtr.Setup(e, mw)
	return svc
}
