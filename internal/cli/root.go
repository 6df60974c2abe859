package cli

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/vietddude/stylelog"

	"github.com/vietddude/paramretry/internal/core/config"
)

var (
	cfgPath string
	isDebug bool
)

var rootCmd = &cobra.Command{
	Use:   "paramretry",
	Short: "Retry engine for parameterized tests",
	Long: `paramretry repeats parameterized test invocations that fail with a retryable error,
records run reports and tracks tuples that only pass after retrying.`,
	PersistentPreRun: setupLogging,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
}

func setupLogging(cmd *cobra.Command, args []string) {
	_ = godotenv.Load()

	slogLevel := slog.LevelInfo
	if isDebug {
		slogLevel = slog.LevelDebug
	}
	stylelog.InitDefault(&tint.Options{
		Level:      slogLevel,
		TimeFormat: time.RFC3339,
	})
}

// loadConfig reads the config file. A missing default config file yields the
// defaults; an explicitly named one must exist.
func loadConfig(cmd *cobra.Command) *config.AppConfig {
	cfg, err := config.Load(cfgPath)
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		return config.Default()
	}
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	if !isDebug && cfg.Logging.Level == "debug" {
		stylelog.InitDefault(&tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.RFC3339,
		})
	}
	return cfg
}
