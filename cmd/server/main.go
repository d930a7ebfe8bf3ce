package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/quillpress/backend/internal/middleware"
	"github.com/anonto42/quillpress/backend/internal/router"
	"github.com/anonto42/quillpress/backend/internal/services"
	"github.com/anonto42/quillpress/backend/pkg/config"
	"github.com/anonto42/quillpress/backend/pkg/firebase"
	"github.com/anonto42/quillpress/backend/pkg/logger"
	"github.com/anonto42/quillpress/backend/pkg/validators"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "engagement",
		Short:        "Blog engagement API: comments, likes, notifications and counters",
		SilenceUsage: true,
		RunE:         runServe,
	}
	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP API (default)",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create tables or indexes for the configured store",
			RunE:  runMigrate,
		},
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup() (*config.Config, *config.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger.Setup(cfg.LogLevel, cfg.Env)

	db, err := config.InitDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	_, db, err := setup()
	if err != nil {
		return err
	}
	defer db.CloseDB()

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()
	if err := db.Migrate(ctx); err != nil {
		return err
	}
	log.Info("[server] migration completed")
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, db, err := setup()
	if err != nil {
		return err
	}
	defer db.CloseDB()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := db.Migrate(ctx); err != nil {
		return err
	}

	store := db.Store(cfg)
	publisher := config.NewPublisher(cfg)
	defer publisher.Close()

	runner := services.NewRunner(store.Ledger, cfg.BookkeepingAsync, cfg.BookkeepingTimeout)
	svc := services.New(store, runner, publisher, services.Config{
		CommentPageSize:      cfg.CommentPageSize,
		NotificationPageSize: cfg.NotificationPageSize,
		BlogPageSize:         cfg.BlogPageSize,
	})

	verify := middleware.JWTVerifier(cfg.JWTSecret)
	if cfg.FirebaseCredentialsPath != "" {
		client, err := firebase.NewAuthClient(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			return err
		}
		verify = middleware.FirebaseVerifier(client)
	}

	e := echo.New()
	e.HideBanner = true
	config.SetupMiddleware(e)
	e.Validator = validators.NewValidator()
	router.SetupRoutes(e, svc, verify)

	metricsServer := &http.Server{
		Addr:    ":" + cfg.MetricsPort,
		Handler: promhttp.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("[server] metrics server error: %v", err)
		}
	}()

	go func() {
		log.Infof("[server] listening on :%s (store=%s)", cfg.Port, cfg.StoreDriver)
		if err := e.Start(":" + cfg.Port); !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("[server] HTTP server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("[server] shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Errorf("[server] HTTP shutdown error: %v", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Errorf("[server] metrics shutdown error: %v", err)
	}
	runner.Wait()
	log.Info("[server] stopped")
	return nil
}
