// Package runner is the default host for the retry engine. It runs a test
// body synchronously for every invocation the engine hands out, reports each
// outcome back, and publishes the finished run.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vietddude/paramretry/internal/core/domain"
	"github.com/vietddude/paramretry/internal/core/engine"
	"github.com/vietddude/paramretry/internal/infra/storage"
	"github.com/vietddude/paramretry/internal/naming"
	"github.com/vietddude/paramretry/internal/params"
)

// Body is the parameterized test body. A nil error means the attempt passed.
type Body func(ctx context.Context, inv domain.Invocation) error

// FlakySink receives reports so tuples that needed retries can be tracked.
type FlakySink interface {
	RecordFlaky(ctx context.Context, report *domain.RunReport) error
}

// Config describes one parameterized test method.
type Config struct {
	Method    string
	Policy    domain.Policy
	Pattern   string // invocation name pattern, naming.DefaultPattern when empty
	Signature params.Signature
}

// Attempt describes one finished invocation.
type Attempt struct {
	Invocation domain.Invocation
	Name       string
	Err        error
	Verdict    engine.Verdict
	Duration   time.Duration
}

// Runner drives runs of one method.
type Runner struct {
	cfg       Config
	formatter *naming.Formatter
	log       *slog.Logger
	reports   storage.ReportRepository
	flaky     FlakySink
	onAttempt func(Attempt)
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger. slog.Default() is used otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.log = l }
}

// WithReports saves every finished run to repo.
func WithReports(repo storage.ReportRepository) Option {
	return func(r *Runner) { r.reports = repo }
}

// WithFlakySink sends every finished run to sink.
func WithFlakySink(sink FlakySink) Option {
	return func(r *Runner) { r.flaky = sink }
}

// WithAttemptCallback registers a callback invoked after every attempt.
func WithAttemptCallback(fn func(Attempt)) Option {
	return func(r *Runner) { r.onAttempt = fn }
}

// New validates cfg and creates a runner. Configuration errors surface here,
// before any invocation is produced.
func New(cfg Config, opts ...Option) (*Runner, error) {
	if err := cfg.Policy.Validate(); err != nil {
		return nil, err
	}
	if cfg.Pattern == "" {
		cfg.Pattern = naming.DefaultPattern
	}
	formatter, err := naming.New(cfg.Pattern, cfg.Method)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		cfg:       cfg,
		formatter: formatter,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.With("method", cfg.Method)
	return r, nil
}

// Begin drains sources and starts a session. Source failures are
// configuration errors and no invocation is produced.
func (r *Runner) Begin(ctx context.Context, sources ...params.Source) (*Session, error) {
	tuples, err := params.Collect(ctx, r.cfg.Signature, sources...)
	if err != nil {
		return nil, err
	}

	it, err := engine.Begin(r.cfg.Policy, tuples,
		engine.WithTransitionCallback(func(t engine.Transition) {
			r.log.Debug("Iterator state changed", "from", t.From, "to", t.To, "reason", t.Reason)
		}),
	)
	if err != nil {
		return nil, err
	}

	r.log.Debug("Run started", "tuples", len(tuples),
		"repeats", r.cfg.Policy.Repeats, "min_success", r.cfg.Policy.MinSuccess)

	return &Session{
		runner:  r,
		it:      it,
		id:      uuid.NewString(),
		started: time.Now(),
		names:   make(map[int]string, len(tuples)),
		args:    make(map[int][]string, len(tuples)),
	}, nil
}

// Run executes body for every invocation until the engine is exhausted and
// returns the finished report. A failing tuple does not make Run return an
// error; check report.Summary.OK().
func (r *Runner) Run(ctx context.Context, body Body, sources ...params.Source) (*domain.RunReport, error) {
	s, err := r.Begin(ctx, sources...)
	if err != nil {
		return nil, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run canceled: %w", err)
		}

		inv, name, ok, err := s.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}

		start := time.Now()
		attemptErr := Invoke(ctx, body, inv)
		if _, err := s.Report(inv, name, attemptErr, time.Since(start)); err != nil {
			return nil, err
		}
	}

	return s.Finish(ctx)
}
