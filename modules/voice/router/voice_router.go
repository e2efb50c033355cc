package router

import (
	"github.com/labstack/echo/v4"

	"syncme/core/middleware"
	"syncme/modules/voice/controller"
)

type VoiceRouter struct {
	controller *controller.VoiceController
}

func NewVoiceRouter(ctrl *controller.VoiceController) *VoiceRouter {
	return &VoiceRouter{controller: ctrl}
}

func (r *VoiceRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	private := e.Group("/api/v1/private", mw.AuthMiddleware())

	private.POST("/voice/transcribe", r.controller.Transcribe)
	private.POST("/voice/process", r.controller.Process)

	private.POST("/tts/generate", r.controller.GenerateSpeech)
	private.GET("/tts/voices", r.controller.GetVoices)
}
