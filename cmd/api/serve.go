package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abduss/filevault/internal/config"
	"github.com/abduss/filevault/internal/file"
	"github.com/abduss/filevault/internal/server"
)

func newServeCmd(cfg config.Config, log *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the FileVault HTTP API (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfg, log)
		},
	}
}

func serve(parent context.Context, cfg config.Config, log *zap.Logger) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catalog, err := openCatalog(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer catalog.close()

	blobs, err := openBlobStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}

	fileService := file.NewService(catalog.catalog, blobs, cfg.Blob.MaxUploadBytes, log)

	gin.SetMode(gin.ReleaseMode)
	router := server.NewRouter(server.Dependencies{
		Config:      cfg,
		Logger:      log,
		Catalog:     catalog.catalog,
		Blobs:       blobs,
		FileService: fileService,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("FileVault API listening", zap.String("addr", cfg.Server.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	log.Info("shutting down gracefully")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
