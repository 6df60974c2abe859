package runner

import (
	"context"
	"strconv"
	"time"

	"github.com/vietddude/paramretry/internal/core/domain"
	"github.com/vietddude/paramretry/internal/core/engine"
	"github.com/vietddude/paramretry/internal/metrics"
	"github.com/vietddude/paramretry/internal/naming"
)

// Session is one run in progress. Hosts that run bodies themselves, such as
// Go subtests, drive it with Next and Report.
type Session struct {
	runner  *Runner
	it      *engine.Iterator
	id      string
	started time.Time
	names   map[int]string   // display name of each tuple's first attempt
	args    map[int][]string // rendered arguments per tuple
}

// ID returns the run ID.
func (s *Session) ID() string {
	return s.id
}

// Len returns the number of tuples in the run.
func (s *Session) Len() int {
	return s.it.Len()
}

// Next returns the next invocation and its display name.
func (s *Session) Next() (domain.Invocation, string, bool, error) {
	inv, ok, err := s.it.Next()
	if err != nil || !ok {
		return inv, "", ok, err
	}

	name := s.runner.formatter.Format(inv)
	if inv.Attempt == 1 {
		s.names[inv.Tuple.Index] = name
		s.args[inv.Tuple.Index] = naming.Strings(inv.Tuple.Args)
	}
	metrics.InvocationsTotal.WithLabelValues(s.runner.cfg.Method).Inc()
	return inv, name, true, nil
}

// Report records the outcome of inv. attemptErr stays the caller's terminal
// error for the attempt; the verdict tells whether the tuple will be retried.
func (s *Session) Report(inv domain.Invocation, name string, attemptErr error, d time.Duration) (engine.Verdict, error) {
	v, err := s.it.Report(attemptErr)
	if err != nil {
		return v, err
	}

	r := s.runner
	metrics.AttemptDuration.WithLabelValues(r.cfg.Method).Observe(d.Seconds())

	switch {
	case v.Retry:
		kind := v.Kind
		if kind == "" {
			kind = "none" // retried to fill the success window
		}
		metrics.RetriesTotal.WithLabelValues(r.cfg.Method, kind).Inc()
		r.log.Info("Retrying tuple", "name", name, "attempt", inv.Attempt,
			"max", r.cfg.Policy.Repeats, "kind", v.Kind, "error", attemptErr)
	case attemptErr != nil:
		r.log.Debug("Attempt failed", "name", name, "attempt", inv.Attempt,
			"outcome", v.Outcome, "error", attemptErr)
	default:
		r.log.Debug("Attempt passed", "name", name, "attempt", inv.Attempt, "duration", d)
	}

	if r.onAttempt != nil {
		r.onAttempt(Attempt{Invocation: inv, Name: name, Err: attemptErr, Verdict: v, Duration: d})
	}
	return v, nil
}

// Summary returns the tuples committed so far.
func (s *Session) Summary() domain.RunSummary {
	return s.decorate(s.it.Summary())
}

// Finish builds the run report and hands it to the configured sinks. Sink
// failures are logged and do not change the run's result.
func (s *Session) Finish(ctx context.Context) (*domain.RunReport, error) {
	r := s.runner
	summary := s.Summary()

	report := &domain.RunReport{
		ID:         s.id,
		Method:     r.cfg.Method,
		Repeats:    r.cfg.Policy.Repeats,
		MinSuccess: r.cfg.Policy.MinSuccess,
		Retryable:  r.cfg.Policy.KindNames(),
		StartedAt:  s.started,
		FinishedAt: time.Now(),
		Summary:    summary,
	}

	for _, t := range summary.Tuples {
		metrics.TuplesTotal.WithLabelValues(r.cfg.Method, string(t.Status)).Inc()
		metrics.AttemptsPerTuple.WithLabelValues(r.cfg.Method).Observe(float64(t.Attempts))
		if t.Status == domain.TupleStatusFailed {
			r.log.Warn("Tuple failed", "name", t.Name, "attempts", t.Attempts, "error", t.Error)
		}
	}

	if r.reports != nil {
		if err := r.reports.SaveRun(ctx, report); err != nil {
			r.log.Error("Failed to save run report", "run_id", s.id, "error", err)
		}
	}
	if r.flaky != nil {
		if err := r.flaky.RecordFlaky(ctx, report); err != nil {
			r.log.Error("Failed to record flaky tuples", "run_id", s.id, "error", err)
		}
	}

	r.log.Info("Run finished",
		"run_id", s.id,
		"tuples", len(summary.Tuples),
		"invocations", summary.Invocations,
		"retries", summary.Retries,
		"failed", summary.Failed,
		"duration", report.FinishedAt.Sub(report.StartedAt),
	)
	return report, nil
}

func (s *Session) decorate(summary domain.RunSummary) domain.RunSummary {
	for i := range summary.Tuples {
		t := &summary.Tuples[i]
		t.Name = s.names[t.Index]
		if t.Name == "" {
			t.Name = strconv.Itoa(t.Index + 1)
		}
		t.Args = s.args[t.Index]
	}
	return summary
}
