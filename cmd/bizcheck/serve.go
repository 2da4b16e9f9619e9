package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/bizcheck/internal/config"
	"github.com/JonMunkholm/bizcheck/internal/core"
	"github.com/JonMunkholm/bizcheck/internal/web"
)

func createServeCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the validation API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			slog.Info("configuration loaded",
				"port", cfg.Server.Port,
				"reference_source", cfg.Reference.Source,
				"zip_mode", cfg.Validation.ZipMode,
				"max_concurrent_runs", cfg.Validation.MaxConcurrentRuns,
				"rate_limit_enabled", cfg.Rate.Enabled,
			)

			reg, err := loadRegistry(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			ds := reg.Dataset()
			slog.Info("reference loaded",
				"geo_rows", ds.Geo.Len(),
				"category_codes", ds.Codes.Len(),
				"fields", len(core.Fields()),
			)

			server := web.NewServer(reg, cfg)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				slog.Info("server starting", "addr", cfg.Server.Addr())
				errCh <- server.Start()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			slog.Info("shutting down...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()

			if active := server.ActiveRuns(); active > 0 {
				slog.Info("waiting for runs to complete", "active", active)
				if err := server.WaitForRuns(shutdownCtx); err != nil {
					slog.Warn("runs did not complete in time", "error", err)
				} else {
					slog.Info("all runs completed")
				}
			}

			if err := server.Shutdown(shutdownCtx); err != nil {
				slog.Error("shutdown error", "error", err)
				return err
			}
			slog.Info("server stopped")
			return nil
		},
	}
}
