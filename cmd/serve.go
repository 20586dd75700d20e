package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/chxlky/wekan-sync/api"
	"github.com/chxlky/wekan-sync/database"
	"github.com/chxlky/wekan-sync/internal/config"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the synchronized cards and hours reports over HTTP",
	RunE:  runServe,
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return err
	}

	db, err := database.Init(cfg.Database)
	if err != nil {
		return err
	}

	logger := zap.L()
	router := gin.New()
	router.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(logger, true))

	handler := &api.Handler{Store: database.NewStore(db, cfg.Database.MaxRecordBytes)}
	handler.Register(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	zap.L().Info("Starting server", zap.String("port", cfg.Server.Port))
	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	var (
		once   sync.Once
		runErr error
	)

	cleanup := func(reason string) {
		zap.L().Info("Shutdown initiated", zap.String("reason", reason))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		zap.L().Info("Shutting down HTTP server...")
		if err := srv.Shutdown(ctx); err != nil {
			zap.L().Error("Error shutting down server", zap.Error(err))
		} else {
			zap.L().Info("HTTP server shut down gracefully.")
		}

		if err := database.Close(db); err != nil {
			zap.L().Error("Error closing database", zap.Error(err))
		} else {
			zap.L().Info("Database connection closed.")
		}
		close(done)
	}

	go func() {
		select {
		case sig := <-sigCh:
			once.Do(func() { cleanup(sig.String()) })
		case err := <-serverErr:
			runErr = err
			once.Do(func() { cleanup("server error") })
			return
		}

		// if a second signal is caught, exit immediately
		<-sigCh
		zap.L().Info("Second interrupt signal received. Exiting immediately.")
		os.Exit(1)
	}()

	<-done
	zap.L().Info("Exiting...")
	return runErr
}
