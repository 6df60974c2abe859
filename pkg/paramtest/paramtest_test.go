package paramtest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietddude/paramretry/internal/core/domain"
)

var errFlaky = errors.New("flaky")

type timeoutError struct{}

func (timeoutError) Error() string { return "timeout" }

// fakeT records fatal calls without running subtests.
type fakeT struct {
	mu     sync.Mutex
	fatals []string
	runs   int
}

func (f *fakeT) Helper() {}

func (f *fakeT) Name() string { return "TestFake" }

func (f *fakeT) Fatalf(format string, args ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fatals = append(f.fatals, fmt.Sprintf(format, args...))
}

func (f *fakeT) Run(name string, fn func(t *testing.T)) bool {
	f.runs++
	return true
}

func TestRun_RetriesUntilPass(t *testing.T) {
	calls := map[string]int{}
	report := Run(t, Options{
		Repeats:    3,
		MinSuccess: 1,
		Retryable:  []Kind{On(errFlaky)},
	}, func(t *testing.T, args []any) error {
		key := args[0].(string)
		calls[key]++
		if key == "b" && calls[key] < 3 {
			return fmt.Errorf("attempt %d: %w", calls[key], errFlaky)
		}
		return nil
	}, Single("a", "b"))

	require.NotNil(t, report)
	assert.Equal(t, map[string]int{"a": 1, "b": 3}, calls)
	assert.Equal(t, 4, report.Summary.Invocations)
	assert.Equal(t, 2, report.Summary.Retries)
	assert.True(t, report.Summary.OK())
	require.Len(t, report.Summary.Tuples, 2)
	assert.True(t, report.Summary.Tuples[1].Flaky())
}

func TestRun_SkipIsRetried(t *testing.T) {
	calls := 0
	report := Run(t, Options{Repeats: 2, MinSuccess: 1}, func(t *testing.T, args []any) error {
		calls++
		if calls == 1 {
			t.Skip("environment not ready")
		}
		return nil
	}, Single(1))

	require.NotNil(t, report)
	assert.Equal(t, 2, calls)
	assert.Equal(t, domain.TupleStatusPassed, report.Summary.Tuples[0].Status)
}

func TestRun_PanicWithRetryableError(t *testing.T) {
	calls := 0
	report := Run(t, Options{
		Repeats:    2,
		MinSuccess: 1,
		Retryable:  []Kind{OnType[timeoutError]()},
	}, func(t *testing.T, args []any) error {
		calls++
		if calls == 1 {
			panic(timeoutError{})
		}
		return nil
	}, Values([]any{"x", 1}))

	require.NotNil(t, report)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []string{"paramtest.timeoutError"}, report.Retryable)
}

func TestRun_MinSuccessWindow(t *testing.T) {
	calls := 0
	report := Run(t, Options{
		Repeats:    5,
		MinSuccess: 2,
		Retryable:  []Kind{On(errFlaky)},
	}, func(t *testing.T, args []any) error {
		calls++
		if calls == 1 {
			return errFlaky
		}
		return nil
	}, Single("only"))

	require.NotNil(t, report)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, report.Summary.Tuples[0].Attempts)
}

func TestRun_NamesAndArity(t *testing.T) {
	var seen [][]any
	report := Run(t, Options{
		Repeats:    1,
		MinSuccess: 1,
		Name:       "{displayName} {index}: {0}",
		Params:     1,
	}, func(t *testing.T, args []any) error {
		seen = append(seen, args)
		return nil
	}, Values([]any{"a", "dropped"}, []any{"b"}))

	require.NotNil(t, report)
	assert.Equal(t, [][]any{{"a"}, {"b"}}, seen)
	assert.Equal(t, "TestRun_NamesAndArity 1: a", report.Summary.Tuples[0].Name)
	assert.Equal(t, "TestRun_NamesAndArity 2: b", report.Summary.Tuples[1].Name)
}

func TestRun_YAMLSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuples.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- [1, one]\n- [2, two]\n"), 0o644))

	var got []string
	Run(t, Options{Repeats: 1, MinSuccess: 1}, func(t *testing.T, args []any) error {
		got = append(got, args[1].(string))
		return nil
	}, YAMLFile(path))

	assert.Equal(t, []string{"one", "two"}, got)
}

func TestRun_ConfigErrors(t *testing.T) {
	cases := []struct {
		name    string
		opts    Options
		sources []Source
	}{
		{"zero repeats", Options{Repeats: 0, MinSuccess: 1}, []Source{Single(1)}},
		{"zero min success", Options{Repeats: 1, MinSuccess: 0}, []Source{Single(1)}},
		{"blank name", Options{Repeats: 1, MinSuccess: 1, Name: "   "}, []Source{Single(1)}},
		{"missing yaml", Options{Repeats: 1, MinSuccess: 1}, []Source{YAMLFile("does-not-exist.yaml")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ft := &fakeT{}
			report := Run(ft, tc.opts, func(t *testing.T, args []any) error {
				return nil
			}, tc.sources...)

			assert.Nil(t, report)
			assert.Len(t, ft.fatals, 1)
			assert.Zero(t, ft.runs)
		})
	}
}
