// Package history keeps the attempt outcomes of the tuple currently being run.
package history

import (
	"sync"

	"github.com/vietddude/paramretry/internal/core/domain"
)

// Tracker is a ring buffer of attempt outcomes for a single tuple. Capacity
// is the policy's attempt budget, so a tuple's history never grows past it.
type Tracker struct {
	mu       sync.Mutex
	outcomes []domain.Outcome // ring storage
	start    int              // index of the oldest entry
	size     int
}

// NewTracker creates a tracker holding at most capacity outcomes.
func NewTracker(capacity int) *Tracker {
	if capacity <= 0 {
		capacity = 1
	}
	return &Tracker{outcomes: make([]domain.Outcome, capacity)}
}

// Record appends an outcome. When full, the oldest outcome is dropped.
func (t *Tracker) Record(o domain.Outcome) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.size == len(t.outcomes) {
		t.outcomes[t.start] = o
		t.start = (t.start + 1) % len(t.outcomes)
		return
	}
	t.outcomes[(t.start+t.size)%len(t.outcomes)] = o
	t.size++
}

// Clear empties the history.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.start = 0
	t.size = 0
}

// Len returns the number of recorded outcomes.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.size
}

// Failures counts retryable outcomes.
func (t *Tracker) Failures() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for i := 0; i < t.size; i++ {
		if t.at(i) == domain.Retryable {
			n++
		}
	}
	return n
}

// RecentSuccesses counts settled outcomes among the last min(window, Len())
// entries.
func (t *Tracker) RecentSuccesses(window int) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if window > t.size {
		window = t.size
	}
	n := 0
	for i := t.size - window; i < t.size; i++ {
		if t.at(i) == domain.Settled {
			n++
		}
	}
	return n
}

// Outcomes returns a copy of the history, oldest first.
func (t *Tracker) Outcomes() []domain.Outcome {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]domain.Outcome, t.size)
	for i := range out {
		out[i] = t.at(i)
	}
	return out
}

// at returns the i-th oldest entry. Caller holds mu.
func (t *Tracker) at(i int) domain.Outcome {
	return t.outcomes[(t.start+i)%len(t.outcomes)]
}
