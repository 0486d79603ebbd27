package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"orderflow/cmd"
	httpin "orderflow/internal/adapters/in/http"
	"orderflow/internal/adapters/out/postgres"
	"orderflow/internal/jobs"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"go.uber.org/zap"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	configs, err := cmd.LoadConfig()
	if err != nil {
		return err
	}

	logger, err := cmd.NewLogger(configs.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	gormDB, err := gorm.Open(gormpg.Open(configs.DSN()), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	if err := postgres.Migrate(gormDB); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	app, err := cmd.NewCompositionRoot(configs, gormDB, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app.Start(ctx)

	var jobManager *jobs.JobManager
	if configs.JobsEnabled {
		jobManager = app.NewJobManager()
		if err := jobManager.StartAll(); err != nil {
			return err
		}
	}

	e, err := newWebServer(app, configs, logger)
	if err != nil {
		return err
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("port", configs.HTTPPort))
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			logger.Error("http server stopped", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), configs.ShutdownTimeout)
	defer cancel()

	var errList []error
	if err := e.Shutdown(shutdownCtx); err != nil {
		errList = append(errList, fmt.Errorf("shutdown http server: %w", err))
	}
	if jobManager != nil {
		jobManager.StopAll(shutdownCtx)
	}
	if err := app.Close(shutdownCtx); err != nil {
		errList = append(errList, err)
	}
	return errors.Join(errList...)
}

func newWebServer(app *cmd.CompositionRoot, configs cmd.Config, logger *zap.Logger) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(log.INFO)

	if err := httpin.Mount(e, app.NewHTTPServer(), configs.CronSecret, logger); err != nil {
		return nil, fmt.Errorf("mount http routes: %w", err)
	}
	return e, nil
}
