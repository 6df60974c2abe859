package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vietddude/paramretry/internal/control"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve health, run reports and metrics over HTTP",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := loadConfig(cmd)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	app, err := control.NewApp(ctx, control.Config{
		Port:      cfg.Server.Port,
		Retention: cfg.Reports.Retention,
		Redis:     cfg.Redis,
		Database:  cfg.Database,
	})
	if err != nil {
		slog.Error("Failed to initialize", "error", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if err := app.Start(ctx); err != nil {
		slog.Error("Failed to start", "error", err)
		os.Exit(1)
	}
	slog.Info("Server started", "config", cfgPath, "port", cfg.Server.Port)

	sig := <-sigChan
	slog.Info("Received signal, shutting down...", "signal", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.Stop(shutdownCtx); err != nil {
		slog.Error("Error during shutdown", "error", err)
		os.Exit(1)
	}
}
