package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/deppfellow/customers-api/internal/config"
	"github.com/deppfellow/customers-api/internal/database"
	"github.com/deppfellow/customers-api/internal/handler"
	"github.com/deppfellow/customers-api/internal/logger"
	"github.com/deppfellow/customers-api/internal/repository"
	"github.com/deppfellow/customers-api/internal/router"
	"github.com/deppfellow/customers-api/internal/server"
	"github.com/deppfellow/customers-api/internal/service"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const (
	shutdownTimeout = 30 * time.Second
	migrateTimeout  = 2 * time.Minute
)

// bootstrap loads the configuration and builds the root logger.
func bootstrap() (*config.Config, *logger.LoggerService, *zerolog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	loggerService, err := logger.NewLoggerService(cfg.Observability)
	if err != nil {
		return nil, nil, nil, err
	}

	log := logger.NewLoggerWithService(cfg.Observability, loggerService)
	return cfg, loggerService, &log, nil
}

func migrate(cfg *config.Config, log *zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
	defer cancel()
	return database.Migrate(ctx, log, cfg)
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, loggerService, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer loggerService.Shutdown()

			return migrate(cfg, log)
		},
	}
}

func newServeCmd() *cobra.Command {
	var runMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, loggerService, log, err := bootstrap()
			if err != nil {
				return err
			}

			if runMigrations {
				if err := migrate(cfg, log); err != nil {
					log.Error().Err(err).Msg("failed to migrate database")
					loggerService.Shutdown()
					return err
				}
			}

			return serve(cfg, loggerService, log)
		},
	}

	cmd.Flags().BoolVar(&runMigrations, "migrate", false, "apply database migrations before serving")
	return cmd
}

func serve(cfg *config.Config, loggerService *logger.LoggerService, log *zerolog.Logger) error {
	srv, err := server.New(cfg, log, loggerService)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize server")
		loggerService.Shutdown()
		return err
	}

	services, err := service.NewServices(srv, repository.NewRepositories(srv))
	if err != nil {
		_ = srv.Shutdown(context.Background())
		return err
	}

	handlers := handler.NewHandlers(srv, services)
	srv.SetupHTTPServer(router.NewRouter(srv, handlers, services))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()

	var runErr error
	select {
	case runErr = <-serverErrors:
		if runErr != nil {
			log.Error().Err(runErr).Msg("server stopped unexpectedly")
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
		return errors.Join(runErr, err)
	}

	log.Info().Msg("server stopped gracefully")
	return runErr
}
