package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kalagasite/internal/auth"
	"github.com/kalagasite/internal/db"
	"github.com/kalagasite/internal/handler"
	"github.com/kalagasite/internal/metrics"
	"github.com/kalagasite/internal/middleware"
	"github.com/kalagasite/internal/router"
	"github.com/kalagasite/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	sweepInterval  = time.Minute
	workspaceIdle  = 30 * time.Minute
	shutdownPeriod = 10 * time.Second
	limiterIdle    = 15 * time.Minute
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())
	log := a.log

	created, err := db.EnsureUser(a.users, cfg.AdminUserName, cfg.AdminPassword)
	if err != nil {
		return err
	}
	if created {
		log.Info("created admin user", zap.String("username", cfg.AdminUserName))
	}

	uploader, err := a.uploader(ctx)
	if err != nil {
		return err
	}

	m := metrics.New()
	hub := auth.NewHub(cfg.SessionTTL, log)
	retry := store.DefaultRetry
	retry.OnRetry = func(attempt int, err error) {
		log.Warn("store unavailable, retrying", zap.Int("attempt", attempt), zap.Error(err))
	}

	loginLimiter := middleware.NewRateLimiter("login", 0.2, 5, m)
	contactLimiter := middleware.NewRateLimiter("contact", cfg.ContactRateLimit, cfg.ContactRateBurst, m)

	api := handler.NewAPI(handler.Options{
		Store:        a.store,
		Hub:          hub,
		Credentials:  auth.NewCredentials(a.users),
		Uploader:     uploader,
		Metrics:      m,
		Logger:       log,
		Retry:        retry,
		LoginLimiter: loginLimiter,
	})

	r, err := router.SetupRouter(router.Options{
		API:            api,
		SessionSecret:  cfg.SessionSecret,
		Metrics:        m,
		Logger:         log,
		UploadDir:      cfg.UploadDir,
		UploadURLPath:  cfg.UploadURLPath,
		ContactLimiter: contactLimiter,
	})
	if err != nil {
		return err
	}

	go hub.Run(ctx, sweepInterval)
	go evictIdle(ctx, api, log, loginLimiter, contactLimiter)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownPeriod)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func evictIdle(ctx context.Context, api *handler.API, log *zap.Logger, limiters ...*middleware.RateLimiter) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := api.Workspaces().Evict(workspaceIdle); n > 0 {
				log.Debug("evicted idle editor workspaces", zap.Int("count", n))
			}
			for _, l := range limiters {
				l.Prune(limiterIdle)
			}
		}
	}
}
