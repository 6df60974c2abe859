package cli

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	redisclient "github.com/vietddude/paramretry/internal/infra/redis"
)

var (
	flakyMethod string
	flakyLimit  int64
)

var flakyCmd = &cobra.Command{
	Use:   "flaky",
	Short: "List tuples that most often pass only after retrying",
	Run:   runFlaky,
}

var resetFlakyCmd = &cobra.Command{
	Use:   "reset-flaky [method]",
	Short: "Clear flaky tuple tracking for a test method",
	Args:  cobra.ExactArgs(1),
	Run:   runResetFlaky,
}

func init() {
	flakyCmd.Flags().StringVar(&flakyMethod, "method", "", "test method")
	flakyCmd.Flags().Int64Var(&flakyLimit, "limit", 10, "maximum number of tuples")
	_ = flakyCmd.MarkFlagRequired("method")
	rootCmd.AddCommand(flakyCmd)
	rootCmd.AddCommand(resetFlakyCmd)
}

func redisFromConfig(cmd *cobra.Command) *redisclient.Client {
	cfg := loadConfig(cmd)
	if cfg.Redis.URL == "" {
		slog.Error("No redis configured")
		os.Exit(1)
	}
	client, err := redisclient.NewClient(cfg.Redis)
	if err != nil {
		slog.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	return client
}

func runFlaky(cmd *cobra.Command, args []string) {
	client := redisFromConfig(cmd)
	defer func() {
		_ = client.Close()
	}()

	tuples, err := client.TopFlaky(cmd.Context(), flakyMethod, flakyLimit)
	if err != nil {
		slog.Error("Failed to list flaky tuples", "error", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "INDEX\tNAME\tRUNS")
	for _, t := range tuples {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%d\n", t.Index+1, t.Name, t.Count)
	}
	_ = w.Flush()
}

func runResetFlaky(cmd *cobra.Command, args []string) {
	client := redisFromConfig(cmd)
	defer func() {
		_ = client.Close()
	}()

	if err := client.ClearFlaky(cmd.Context(), args[0]); err != nil {
		slog.Error("Failed to reset flaky tuples", "error", err)
		os.Exit(1)
	}
	fmt.Printf("Successfully cleared flaky tuples for %s\n", args[0])
}
