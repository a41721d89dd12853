package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/tallyreview/internal/core"
	"github.com/JonMunkholm/tallyreview/internal/export"
	"github.com/JonMunkholm/tallyreview/internal/extract"
	"github.com/JonMunkholm/tallyreview/internal/store"
	"github.com/JonMunkholm/tallyreview/internal/web"
	"github.com/spf13/cobra"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the review server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if servePort > 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		slog.Info("configuration loaded",
			"port", cfg.Server.Port,
			"database", cfg.Database.Enabled(),
			"upload_max_concurrent", cfg.Upload.MaxConcurrent,
			"rate_limit_enabled", cfg.Rate.Enabled,
			"default_preset", cfg.Session.DefaultPreset,
		)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		files := store.NewFiles(cfg.Storage)
		if err := files.Init(); err != nil {
			return fmt.Errorf("init storage: %w", err)
		}

		changes := store.MultiChangeLog{store.NewFileChangeLog(cfg.Storage.LogDir)}
		if cfg.Database.Enabled() {
			pool, err := store.OpenPool(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer pool.Close()

			pg := store.NewPostgresChangeLog(pool)
			if err := pg.EnsureSchema(ctx); err != nil {
				return err
			}
			changes = append(changes, pg)
		}

		service, err := core.NewService(core.Dependencies{
			Extractor: extract.New(cfg.Extract),
			Exporter:  export.New(),
			Changes:   changes,
		}, cfg)
		if err != nil {
			return fmt.Errorf("create service: %w", err)
		}

		slog.Info("presets registered",
			"count", core.PresetCount(),
			"groups", len(core.Groups()),
		)

		server := web.NewServer(service, files, cfg)

		jobCtx, cancelJobs := context.WithCancel(context.Background())
		defer cancelJobs()
		go service.StartSessionSweeper(jobCtx, core.SweepConfig{
			TTL:      cfg.Session.TTL,
			Interval: cfg.Session.SweepInterval,
		})

		errCh := make(chan error, 1)
		go func() { errCh <- server.Start() }()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := service.LimiterStatus(); status.Active > 0 {
			slog.Info("waiting for conversions to complete", "active", status.Active)
			if err := service.WaitForConversions(shutdownCtx); err != nil {
				slog.Warn("conversions did not complete in time", "error", err)
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		slog.Info("server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (0 = SERVER_PORT)")
	rootCmd.AddCommand(serveCmd)
}
