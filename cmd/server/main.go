package main // Entry point package

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/openmow/mower-fleet/internal/config"
	"github.com/openmow/mower-fleet/internal/database"
	"github.com/openmow/mower-fleet/internal/handler"
	"github.com/openmow/mower-fleet/internal/middleware"
	"github.com/openmow/mower-fleet/internal/queue"
	"github.com/openmow/mower-fleet/internal/repository"
	"github.com/openmow/mower-fleet/internal/router"
)

func main() {
	_ = godotenv.Load() // optional .env for local development

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	zlog.Logger = logger
	cfg := config.Load()

	// Open the store; builds the database and schema on first boot.
	db, err := database.OpenOrProvision(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open database failed")
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	areas := repository.NewAreaRepo(db)
	mowers := repository.NewMowerRepo(db)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			logger.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", time.Since(v.StartTime)).
				Msg("request")
			return nil
		},
	}))

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), config.NewRedisClient())
	router.RegisterRoutes(e,
		handler.NewAuthHandler(users),
		handler.NewAreaHandler(areas),
		handler.NewMowerHandler(mowers),
		users, limiter)

	// Telemetry log consumer runs for the life of the process.
	go queue.StartTelemetryConsumer()

	addr := ":" + cfg.Port
	logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
	if err := e.Start(addr); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
