// Package paramtest runs a parameterized Go test with per-tuple retries.
//
// Every invocation becomes a subtest. A tuple whose attempt fails with a
// retryable error is run again, up to Options.Repeats attempts, until the
// last Options.MinSuccess attempts pass:
//
//	var errFlaky = errors.New("flaky")
//
//	func TestCheckout(t *testing.T) {
//	    paramtest.Run(t, paramtest.Options{
//	        Repeats:    3,
//	        MinSuccess: 1,
//	        Retryable:  []paramtest.Kind{paramtest.On(errFlaky)},
//	    }, func(t *testing.T, args []any) error {
//	        return checkout(args[0].(string))
//	    }, paramtest.Single("visa", "amex"))
//	}
//
// Attempts that will be retried are reported as skipped subtests. Calling
// t.Skip inside the body aborts the attempt, which is always retryable.
// t.Fatal and t.Error fail the attempt without retry.
package paramtest

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"runtime/debug"
	"testing"
	"time"

	"github.com/vietddude/paramretry/internal/core/classify"
	"github.com/vietddude/paramretry/internal/core/domain"
	"github.com/vietddude/paramretry/internal/params"
	"github.com/vietddude/paramretry/internal/runner"
)

type (
	// Kind identifies a class of retryable failures.
	Kind = domain.Kind
	// Source supplies argument lists.
	Source = params.Source
	// Report is the result of a finished run.
	Report = domain.RunReport
)

// ErrFailed stands in for a body that failed through t.Error or t.Fatal.
var ErrFailed = errors.New("test body failed")

// Options configures a run.
type Options struct {
	Repeats    int    // attempt budget per tuple, at least 1
	MinSuccess int    // passes required among the most recent attempts, at least 1
	Retryable  []Kind // failure kinds that trigger another attempt
	Name       string // subtest name pattern, "[{index}] {arguments}" when empty
	Params     int    // declared parameters; longer argument lists are truncated
	Aggregates bool   // the body consumes all remaining arguments
	Logger     *slog.Logger
}

// Body is the test body. A returned error is classified against
// Options.Retryable.
type Body func(t *testing.T, args []any) error

// TB is the part of *testing.T used by Run.
type TB interface {
	Helper()
	Name() string
	Fatalf(format string, args ...any)
	Run(name string, f func(t *testing.T)) bool
}

// On returns a kind matching target and any error wrapping it.
func On(target error) Kind {
	return classify.Sentinel(target.Error(), target)
}

// OnType returns a kind matching any error in the chain assignable to T.
func OnType[T error]() Kind {
	return classify.Type[T](reflect.TypeFor[T]().String())
}

// Values builds a source from explicit argument lists.
func Values(rows ...[]any) Source {
	return params.Values(rows)
}

// Single builds a source with one argument per tuple.
func Single(args ...any) Source {
	return params.Single(args...)
}

// YAMLFile builds a source reading a YAML list of argument lists.
func YAMLFile(path string) Source {
	return params.YAMLFile(path)
}

// Run executes body as subtests of t, one per invocation, and returns the
// run report. Configuration errors fail t before any subtest starts.
func Run(t TB, opts Options, body Body, sources ...Source) *Report {
	t.Helper()

	cfg := runner.Config{
		Method: t.Name(),
		Policy: domain.Policy{
			Repeats:    opts.Repeats,
			MinSuccess: opts.MinSuccess,
			Retryable:  opts.Retryable,
		},
		Pattern:   opts.Name,
		Signature: params.Signature{Params: opts.Params, Aggregates: opts.Aggregates},
	}
	var ropts []runner.Option
	if opts.Logger != nil {
		ropts = append(ropts, runner.WithLogger(opts.Logger))
	}

	r, err := runner.New(cfg, ropts...)
	if err != nil {
		t.Fatalf("paramtest: %v", err)
		return nil
	}
	ctx := context.Background()
	s, err := r.Begin(ctx, sources...)
	if err != nil {
		t.Fatalf("paramtest: %v", err)
		return nil
	}

	for {
		inv, name, ok, err := s.Next()
		if err != nil {
			t.Fatalf("paramtest: %v", err)
			return nil
		}
		if !ok {
			break
		}
		t.Run(name, func(st *testing.T) {
			attempt(st, s, inv, name, body)
		})
	}

	report, err := s.Finish(ctx)
	if err != nil {
		t.Fatalf("paramtest: %v", err)
		return nil
	}
	return report
}

func attempt(t *testing.T, s *runner.Session, inv domain.Invocation, name string, body Body) {
	start := time.Now()
	reported := false

	// The body may leave through runtime.Goexit (SkipNow, FailNow); the
	// outcome is then reported here.
	defer func() {
		if reported {
			return
		}
		err := error(ErrFailed)
		if t.Skipped() {
			err = domain.Abortf("attempt %d skipped", inv.Attempt)
		}
		if _, rerr := s.Report(inv, name, err, time.Since(start)); rerr != nil {
			t.Errorf("paramtest: %v", rerr)
		}
	}()

	err := invoke(t, body, inv.Tuple.Args)
	if err == nil && t.Failed() {
		err = ErrFailed
	}

	v, rerr := s.Report(inv, name, err, time.Since(start))
	reported = true
	if rerr != nil {
		t.Fatalf("paramtest: %v", rerr)
	}

	switch {
	case err == nil, errors.Is(err, ErrFailed):
	case v.Retry:
		t.Skipf("attempt %d failed, retrying: %v", inv.Attempt, err)
	case domain.IsAbort(err):
		t.Skip(err)
	default:
		t.Fatal(err)
	}
}

func invoke(t *testing.T, body Body, args []any) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &runner.PanicError{Value: p, Stack: debug.Stack()}
		}
	}()
	return body(t, args)
}
