package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"syncme/core/cache"
	"syncme/core/config"
	"syncme/core/database"
	"syncme/core/logger"
	"syncme/core/middleware"
	"syncme/core/queue"
	"syncme/modules/calendar"
	"syncme/modules/intent"
	"syncme/modules/reminder"
	"syncme/modules/scheduling"
	"syncme/modules/voice"
)

// Run boots the API server and the background worker, blocks until a
// shutdown signal, and drains both.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Init(cfg.Server.LogLevel, cfg.Server.LogFormat)

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		return err
	}

	c, err := cache.New(cfg.Redis)
	if err != nil {
		logger.Warn("Server:Run:CacheUnavailable", "error", err)
		c = nil
	}

	client := queue.NewClient(cfg.Redis)
	defer client.Close()

	e := echo.New()
	e.HideBanner = true

	mw := middleware.NewMiddleware()
	e.Use(echomw.Recover())
	e.Use(mw.CORS())
	e.Use(mw.RequestLogger())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	mux := asynq.NewServeMux()

	registry := calendar.Init(e, db, cfg, client, mux, mw)
	scheduler := scheduling.Init(e, db, registry, mw)
	intents := intent.Init(e, cfg, mw)
	reminders := reminder.Init(e, db, client, mux, mw)
	voice.Init(e, cfg, c, intents, scheduler, reminders, mw)

	worker := queue.NewServer(cfg.Redis)
	go func() {
		if err := worker.Run(mux); err != nil {
			logger.Error("Server:Run:Worker", "error", err)
		}
	}()

	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			logger.Error("Server:Run:Echo", "error", err)
		}
	}()
	logger.Info("Server:Run:Started", "port", cfg.Server.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server:Run:ShuttingDown")
	worker.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(ctx)
}
