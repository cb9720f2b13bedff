package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"usermgmt/internal/auth"
	"usermgmt/internal/cache"
	"usermgmt/internal/client"
	"usermgmt/internal/config"
	"usermgmt/internal/handler"
	"usermgmt/internal/logger"
	"usermgmt/internal/router"
	"usermgmt/internal/service"
	"usermgmt/internal/session"
	"usermgmt/internal/view"
)

const (
	redisPingTimeout = 3 * time.Second
	// shutdownGrace is added to the backend timeout so in-flight console
	// operations can reach their final save.
	shutdownGrace = 5 * time.Second
)

// @title User Management Console API
// @version 1.0
// @description JSON endpoints of the user management console. Requests carry the console session cookie.
// @host localhost:8080
// @BasePath /api
// @schemes http
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.ValidateSession(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logr, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logr.Sync() }()

	sessions := auth.NewJWTService(cfg.SessionSecret, cfg.SessionTTL)

	backend, closeBackend := newSessionBackend(ctx, cfg, logr)
	defer closeBackend()
	store := session.NewStore(backend, sessions.TTL())

	// Backend clients talk to the internal addresses; pages link to the public ones.
	userClient := client.NewUserClient(cfg.Crud().URL(config.ContextServer), cfg.BackendTimeout, logr)
	emailClient := client.NewEmailClient(cfg.Email().URL(config.ContextServer), cfg.BackendTimeout, logr)

	validate := service.NewValidator()
	console := service.NewConsole(userClient, emailClient, store, validate, logr, cfg.UserPageSize)

	renderer, err := view.NewRenderer()
	if err != nil {
		logr.Fatalw("templates", "error", err)
	}
	pages := view.NewPageBuilder(cfg.Email().URL(config.ContextBrowser))

	pageHandler := handler.NewPageHandler(console, pages, logr)
	apiHandler := handler.NewAPIHandler(console)

	e := echo.New()
	e.HideBanner = true
	e.Renderer = renderer

	router.Register(e, cfg, logr, validate.Engine(), sessions, pageHandler, apiHandler)

	swaggerHost := cfg.SwaggerHost
	if swaggerHost == "" {
		swaggerHost = "localhost:" + cfg.ServerPort
	}
	logr.Infow("swagger documentation available", "url", "http://"+swaggerHost+"/swagger/index.html")

	go func() {
		addr := ":" + cfg.ServerPort
		logr.Infow("starting server", "addr", addr, "session_store", cfg.SessionStore)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Errorw("server start", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.BackendTimeout+shutdownGrace)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logr.Warnw("server shutdown", "error", err)
	}
}

// newSessionBackend selects where console sessions live. The Redis client
// swallows errors, which would silently drop session writes, so an
// unreachable Redis falls back to the in-process store.
func newSessionBackend(ctx context.Context, cfg *config.Config, logr *zap.SugaredLogger) (session.Backend, func()) {
	if cfg.SessionStore != "redis" {
		return session.NewMemory(), func() {}
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, logr)
	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := cacheClient.Ping(pingCtx); err != nil {
		logr.Errorw("redis unavailable, keeping sessions in memory", "addr", cfg.RedisAddr, "error", err)
		_ = cacheClient.Close()
		return session.NewMemory(), func() {}
	}
	return cacheClient, func() { _ = cacheClient.Close() }
}
