package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/filmorate/internal/config"
	"github.com/iliyamo/filmorate/internal/handler"
	"github.com/iliyamo/filmorate/internal/logger"
	"github.com/iliyamo/filmorate/internal/middleware"
	"github.com/iliyamo/filmorate/internal/queue"
	"github.com/iliyamo/filmorate/internal/router"
	"github.com/iliyamo/filmorate/internal/service"
	"github.com/iliyamo/filmorate/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("config load failed")
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")
	} else if cfg.Redis.Addr != "" {
		log.Warn().Str("addr", cfg.Redis.Addr).Msg("redis unavailable, using in-process rate limiting without cache")
	}

	var events queue.Publisher = queue.NopPublisher{}
	if cfg.Queue.Enabled {
		p := queue.NewAMQPPublisher(cfg.Queue.URL, cfg.Queue.Name, cfg.Queue.Buffer, log)
		go p.Run(ctx)
		events = p
		if cfg.Queue.Consume {
			go queue.StartActivityConsumer(ctx, cfg.Queue.URL, cfg.Queue.Name, cfg.Queue.LogDir, log)
		}
	}

	films := storage.NewFilmStore(log)
	users := storage.NewUserStore(log, time.Now)
	filmHandler := handler.NewFilmHandler(
		films,
		service.NewLikeService(films, users, log),
		service.NewRankingService(films, log),
		events,
	)
	userHandler := handler.NewUserHandler(users, service.NewSocialService(users, log), events)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler(log)
	e.Use(
		middleware.RequestLogger(log),
		middleware.Recover(log),
		middleware.NewTokenBucket(cfg.RateLimit, rdb, log),
		middleware.Serialize(&sync.RWMutex{}),
		middleware.NewRedisCache(cfg.Cache, rdb, log),
	)
	router.RegisterRoutes(e)
	router.RegisterFilms(e, filmHandler)
	router.RegisterUsers(e, userHandler)

	addr := ":" + cfg.Port
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
	log.Info().Msg("server stopped")
}
