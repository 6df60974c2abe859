package cli

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vietddude/paramretry/internal/infra/storage/postgres"
)

var (
	statusMethod string
	statusLimit  int
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent run reports",
	Run:   runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusMethod, "method", "", "only show runs of this test method")
	statusCmd.Flags().IntVar(&statusLimit, "limit", 20, "maximum number of runs")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg := loadConfig(cmd)
	if cfg.Database.URL == "" {
		slog.Error("No database configured")
		os.Exit(1)
	}

	ctx := cmd.Context()
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	runs, err := postgres.NewReportRepo(db).ListRuns(ctx, statusMethod, statusLimit)
	if err != nil {
		slog.Error("Failed to list runs", "error", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "RUN\tMETHOD\tTUPLES\tINVOCATIONS\tRETRIES\tFAILED\tFINISHED")
	for _, run := range runs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			run.ID,
			run.Method,
			len(run.Summary.Tuples),
			run.Summary.Invocations,
			run.Summary.Retries,
			run.Summary.Failed,
			run.FinishedAt.Format(time.RFC3339),
		)
	}
	_ = w.Flush()
}
