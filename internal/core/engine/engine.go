// Package engine decides, one pull at a time, which parameter tuple the host
// should run next.
//
// # Purpose
//
// A parameterized test runs its body once per tuple. When an attempt fails
// with a retryable kind (or is aborted), the same tuple is handed out again,
// up to Policy.Repeats attempts, until the most recent Policy.MinSuccess
// attempts all succeed. Then the engine commits the tuple and moves on.
//
// # Decision rule
//
// On every pull after the first, with R = Repeats and M = MinSuccess:
//
//	retry   if failures >= 1 && attempt < R && recentSuccesses(M) != M
//	advance otherwise (clear history, move the cursor, attempt = 1)
//
// A retry always re-yields the tuple at the cursor position that was active
// when the retry was decided. The cursor only moves on advance.
//
// # Quick Start
//
//	it, err := engine.Begin(policy, tuples)
//	if err != nil {
//	    return err // configuration error, nothing was run
//	}
//	for {
//	    inv, ok, err := it.Next()
//	    if err != nil || !ok {
//	        break
//	    }
//	    verdict, _ := it.Report(body(inv.Tuple.Args))
//	    if verdict.Retry {
//	        log.Printf("tuple %d will be retried", inv.Tuple.Index)
//	    }
//	}
//	summary := it.Summary()
//
// # Package Structure
//
//   - state.go    - lifecycle states and valid transitions
//   - iterator.go - the pull-based state machine
//   - stats.go    - counters and transition history
package engine

import (
	"fmt"

	"github.com/vietddude/paramretry/internal/core/classify"
	"github.com/vietddude/paramretry/internal/core/domain"
	"github.com/vietddude/paramretry/internal/core/history"
)

// Option configures an Iterator.
type Option func(*Iterator)

// WithClassifier overrides the classifier built from the policy's kinds.
func WithClassifier(c *classify.Classifier) Option {
	return func(it *Iterator) {
		it.classifier = c
	}
}

// WithTransitionCallback registers a callback for lifecycle state changes.
func WithTransitionCallback(fn func(Transition)) Option {
	return func(it *Iterator) {
		it.onTransition = fn
	}
}

// Begin validates the policy and creates a fresh iterator over tuples. A
// policy error is returned before any invocation exists.
func Begin(policy domain.Policy, tuples []domain.Tuple, opts ...Option) (*Iterator, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	buf := make([]domain.Tuple, len(tuples))
	for i, t := range tuples {
		if t.Index != i {
			return nil, fmt.Errorf("%w: tuple at position %d has index %d", domain.ErrInvalidConfig, i, t.Index)
		}
		buf[i] = t
	}

	it := &Iterator{
		policy:     policy,
		classifier: classify.ForPolicy(policy),
		tuples:     buf,
		history:    history.NewTracker(policy.Repeats),
		state:      StateReady,
		stats:      newStats(),
	}
	for _, opt := range opts {
		opt(it)
	}
	return it, nil
}
