package voice

import (
	"github.com/labstack/echo/v4"

	"syncme/core/cache"
	"syncme/core/config"
	"syncme/core/middleware"
	intentservice "syncme/modules/intent/service"
	reminderservice "syncme/modules/reminder/service"
	schedservice "syncme/modules/scheduling/service"
	"syncme/modules/voice/controller"
	"syncme/modules/voice/router"
	"syncme/modules/voice/service"
)

// Init wires the voice module on top of the intent, scheduling, and
// reminder services.
func Init(
	e *echo.Echo,
	cfg *config.Config,
	c *cache.Cache,
	intents intentservice.IntentParserInterface,
	scheduler schedservice.SchedulerInterface,
	reminders reminderservice.ReminderServiceInterface,
	mw *middleware.Middleware,
) {
	transcriber := service.NewTranscriber(cfg.Whisper)
	store := service.NewAudioStore(cfg.S3)
	tts := service.NewTTSService(cfg.ElevenLabs, store, c)
	voice := service.NewVoiceService(transcriber, intents, scheduler, reminders, tts)

	ctrl := controller.NewVoiceController(voice, transcriber, tts)
	rtr := router.NewVoiceRouter(ctrl)

	rtr.Setup(e, mw)
}
