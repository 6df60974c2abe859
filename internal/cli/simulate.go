package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vietddude/paramretry/internal/control"
	"github.com/vietddude/paramretry/internal/core/classify"
	"github.com/vietddude/paramretry/internal/core/config"
	"github.com/vietddude/paramretry/internal/core/domain"
	"github.com/vietddude/paramretry/internal/params"
	"github.com/vietddude/paramretry/internal/runner"
)

var (
	scenarioPath string
	publishRuns  bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a scripted scenario through the retry engine",
	Run:   runSimulate,
}

func init() {
	simulateCmd.Flags().StringVar(&scenarioPath, "scenario", "", "scenario file")
	simulateCmd.Flags().BoolVar(&publishRuns, "publish", false, "save the report to the configured database and redis")
	_ = simulateCmd.MarkFlagRequired("scenario")
	rootCmd.AddCommand(simulateCmd)
}

// errSimulated is returned for plain "fail" steps.
var errSimulated = errors.New("simulated failure")

// sampleErrors produce a failure matching each built-in kind.
var sampleErrors = map[string]error{
	"deadline_exceeded":  context.DeadlineExceeded,
	"canceled":           context.Canceled,
	"timeout":            &net.DNSError{Err: "i/o timeout", Name: "simulated", IsTimeout: true},
	"eof":                io.EOF,
	"unexpected_eof":     io.ErrUnexpectedEOF,
	"connection_reset":   &net.OpError{Op: "read", Net: "tcp", Err: syscall.ECONNRESET},
	"connection_refused": &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED},
	"closed":             net.ErrClosed,
	"net":                &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("no route to host")},
}

// stepError returns the error scripted for one attempt step.
func stepError(step string) error {
	switch step {
	case "", config.StepPass:
		return nil
	case config.StepAbort:
		return domain.Abortf("simulated abort")
	case config.StepFail:
		return errSimulated
	}

	kind := strings.TrimPrefix(step, config.StepFail+":")
	if sample, ok := sampleErrors[kind]; ok {
		return fmt.Errorf("simulated %s: %w", kind, sample)
	}
	return fmt.Errorf("simulated %s: %w", kind, errSimulated)
}

// simulatedAttempt is one row of the simulation table.
type simulatedAttempt struct {
	Name     string
	Attempt  int
	Step     string
	Outcome  domain.Outcome
	Kind     string
	Decision string
}

// simulate runs sc through the engine using the scripted step of every
// attempt. Attempts past the end of a tuple's script pass.
func simulate(ctx context.Context, sc *config.Scenario, registry *classify.Registry, opts ...runner.Option) ([]simulatedAttempt, *domain.RunReport, error) {
	policy, pattern, err := sc.Policy.Build(registry)
	if err != nil {
		return nil, nil, err
	}

	var rows []simulatedAttempt
	opts = append(opts, runner.WithAttemptCallback(func(a runner.Attempt) {
		decision := "advance"
		if a.Verdict.Retry {
			decision = "retry"
		}
		rows = append(rows, simulatedAttempt{
			Name:     a.Name,
			Attempt:  a.Invocation.Attempt,
			Step:     scriptedStep(sc, a.Invocation),
			Outcome:  a.Verdict.Outcome,
			Kind:     a.Verdict.Kind,
			Decision: decision,
		})
	}))

	r, err := runner.New(runner.Config{
		Method:  sc.Method,
		Policy:  policy,
		Pattern: pattern,
	}, opts...)
	if err != nil {
		return nil, nil, err
	}

	report, err := r.Run(ctx, func(ctx context.Context, inv domain.Invocation) error {
		return stepError(scriptedStep(sc, inv))
	}, params.Values(sc.Args()))
	if err != nil {
		return nil, nil, err
	}
	return rows, report, nil
}

func scriptedStep(sc *config.Scenario, inv domain.Invocation) string {
	outcomes := sc.Tuples[inv.Tuple.Index].Outcomes
	if inv.Attempt > len(outcomes) {
		return config.StepPass
	}
	return outcomes[inv.Attempt-1]
}

func runSimulate(cmd *cobra.Command, args []string) {
	cfg := loadConfig(cmd)

	sc, err := config.LoadScenario(scenarioPath)
	if err != nil {
		slog.Error("Failed to load scenario", "error", err)
		os.Exit(1)
	}

	ctx := cmd.Context()
	var opts []runner.Option
	if publishRuns {
		app, err := control.NewApp(ctx, control.Config{
			Redis:    cfg.Redis,
			Database: cfg.Database,
		})
		if err != nil {
			slog.Error("Failed to initialize", "error", err)
			os.Exit(1)
		}
		defer app.Close()
		opts = app.RunnerOptions()
	}

	rows, report, err := simulate(ctx, sc, classify.DefaultRegistry(), opts...)
	if err != nil {
		slog.Error("Simulation failed", "error", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "INVOCATION\tATTEMPT\tSTEP\tOUTCOME\tKIND\tDECISION")
	for _, row := range rows {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\n",
			row.Name, row.Attempt, row.Step, row.Outcome, row.Kind, row.Decision)
	}
	_ = w.Flush()

	s := report.Summary
	fmt.Printf("\nRun %s: %d tuples, %d invocations, %d retries, %d passed, %d failed, %d aborted\n",
		report.ID, len(s.Tuples), s.Invocations, s.Retries, s.Passed, s.Failed, s.Aborted)
	if !s.OK() {
		os.Exit(2)
	}
}
