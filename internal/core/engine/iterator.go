package engine

import (
	"errors"
	"fmt"
	"sync"

	"github.com/vietddude/paramretry/internal/core/classify"
	"github.com/vietddude/paramretry/internal/core/domain"
	"github.com/vietddude/paramretry/internal/core/history"
)

var (
	// ErrOutcomeMissing is returned by Next when the previous invocation has
	// no reported outcome.
	ErrOutcomeMissing = errors.New("outcome of previous invocation not reported")

	// ErrOutcomeReported is returned by Report when the current invocation
	// already has an outcome.
	ErrOutcomeReported = errors.New("outcome already reported")

	// ErrNoInvocation is returned by Report when nothing has been handed out.
	ErrNoInvocation = errors.New("no invocation in progress")
)

// Verdict is the engine's reading of one reported outcome.
type Verdict struct {
	Outcome domain.Outcome
	Kind    string // matched kind name, empty when settled
	Attempt int
	Retry   bool // the next pull will re-yield the same tuple
}

// Iterator is the pull-based retry state machine. It is owned by one run and
// never reused.
type Iterator struct {
	mu           sync.Mutex
	policy       domain.Policy
	classifier   *classify.Classifier
	tuples       []domain.Tuple
	history      *history.Tracker
	onTransition func(Transition)

	state            State
	tupleCursor      int
	attemptCursor    int
	retryablePending bool
	awaiting         bool  // handed out an invocation without an outcome yet
	lastErr          error // terminal error of the latest attempt

	results []domain.TupleResult
	stats   *Stats
}

// Next returns the next invocation. ok is false once every tuple is committed.
func (it *Iterator) Next() (inv domain.Invocation, ok bool, err error) {
	it.mu.Lock()
	defer it.mu.Unlock()

	switch it.state {
	case StateExhausted:
		return domain.Invocation{}, false, nil
	case StateReady:
		if len(it.tuples) == 0 {
			return domain.Invocation{}, false, it.transition(StateExhausted, "no tuples")
		}
		if err := it.transition(StateHasMore, "first pull"); err != nil {
			return domain.Invocation{}, false, err
		}
		it.tupleCursor = 0
		it.attemptCursor = 1
		return it.yield(), true, nil
	}

	if it.awaiting {
		return domain.Invocation{}, false, ErrOutcomeMissing
	}

	if it.shouldRetry() {
		it.attemptCursor++
		it.retryablePending = false
		it.stats.Retries++
		return it.yield(), true, nil
	}

	// Budget exhausted, nothing retryable pending, or the success threshold
	// was met: the tuple is resolved either way.
	it.commit()
	it.tupleCursor++
	it.history.Clear()
	it.retryablePending = false
	it.attemptCursor = 0

	if it.tupleCursor >= len(it.tuples) {
		return domain.Invocation{}, false, it.transition(StateExhausted, "all tuples committed")
	}
	it.attemptCursor = 1
	return it.yield(), true, nil
}

// Report records the outcome of the invocation most recently returned by
// Next. err is nil for success, an abort signal for a skipped attempt, or the
// failure raised by the body. The error is never swallowed; the caller still
// owns it as the attempt's terminal error.
func (it *Iterator) Report(err error) (Verdict, error) {
	it.mu.Lock()
	defer it.mu.Unlock()

	if it.state != StateHasMore {
		return Verdict{}, ErrNoInvocation
	}
	if !it.awaiting {
		return Verdict{}, fmt.Errorf("%w: tuple %d attempt %d", ErrOutcomeReported, it.tupleCursor, it.attemptCursor)
	}

	kind, retryable := it.classifier.Match(err)
	outcome := domain.Outcome(retryable)

	it.history.Record(outcome)
	it.retryablePending = retryable
	it.awaiting = false
	it.lastErr = err

	return Verdict{
		Outcome: outcome,
		Kind:    kind,
		Attempt: it.attemptCursor,
		Retry:   it.shouldRetry(),
	}, nil
}

// shouldRetry is the single retry predicate. Caller holds mu.
func (it *Iterator) shouldRetry() bool {
	failures := it.history.Failures()
	recentSuccesses := it.history.RecentSuccesses(it.policy.MinSuccess)
	return failures >= 1 && it.attemptCursor < it.policy.Repeats && recentSuccesses != it.policy.MinSuccess
}

func (it *Iterator) yield() domain.Invocation {
	it.awaiting = true
	it.stats.Invocations++
	return domain.Invocation{
		Tuple:   it.tuples[it.tupleCursor],
		Attempt: it.attemptCursor,
	}
}

func (it *Iterator) commit() {
	res := domain.TupleResult{
		Index:    it.tupleCursor,
		Attempts: it.attemptCursor,
		Retries:  it.attemptCursor - 1,
		Status:   domain.StatusOf(it.lastErr),
	}
	if it.lastErr != nil {
		res.Error = it.lastErr.Error()
	}
	if it.retryablePending && it.attemptCursor == it.policy.Repeats {
		it.stats.BudgetExhausted++
	}
	it.stats.Committed++
	it.results = append(it.results, res)
	it.lastErr = nil
}

func (it *Iterator) transition(to State, reason string) error {
	t := NewTransition(it.state, to, reason)
	if !t.IsValid() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.From, t.To)
	}
	it.state = to
	it.stats.recordTransition(t)
	if it.onTransition != nil {
		it.onTransition(t)
	}
	return nil
}

// State returns a snapshot of the iterator's cursors.
func (it *Iterator) State() IterationState {
	it.mu.Lock()
	defer it.mu.Unlock()

	return IterationState{
		State:            it.state,
		TupleCursor:      it.tupleCursor,
		AttemptCursor:    it.attemptCursor,
		RetryablePending: it.retryablePending,
	}
}

// Policy returns the policy governing this run.
func (it *Iterator) Policy() domain.Policy {
	return it.policy
}

// Len returns the number of tuples in the run.
func (it *Iterator) Len() int {
	return len(it.tuples)
}

// History returns the outcomes recorded for the current tuple, oldest first.
func (it *Iterator) History() []domain.Outcome {
	return it.history.Outcomes()
}

// Stats returns a copy of the run counters.
func (it *Iterator) Stats() Stats {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.stats.snapshot()
}

// Summary aggregates the committed tuples. Before exhaustion it only covers
// tuples committed so far.
func (it *Iterator) Summary() domain.RunSummary {
	it.mu.Lock()
	defer it.mu.Unlock()

	s := domain.RunSummary{
		Tuples:      make([]domain.TupleResult, len(it.results)),
		Invocations: it.stats.Invocations,
		Retries:     it.stats.Retries,
	}
	copy(s.Tuples, it.results)
	for _, r := range it.results {
		switch r.Status {
		case domain.TupleStatusPassed:
			s.Passed++
		case domain.TupleStatusFailed:
			s.Failed++
		case domain.TupleStatusAborted:
			s.Aborted++
		}
	}
	return s
}
