package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned for policies or sources that cannot produce a run.
var ErrInvalidConfig = errors.New("invalid configuration")

// Policy governs one run over one ordered sequence of tuples.
type Policy struct {
	Repeats    int    // attempt budget per tuple
	MinSuccess int    // successes required within the most recent attempts
	Retryable  []Kind // failure kinds that trigger another attempt
}

// Validate checks the attempt budget and success threshold.
func (p Policy) Validate() error {
	if p.Repeats < 1 {
		return fmt.Errorf("%w: repeats must be at least 1, got %d", ErrInvalidConfig, p.Repeats)
	}
	if p.MinSuccess < 1 {
		return fmt.Errorf("%w: min success must be at least 1, got %d", ErrInvalidConfig, p.MinSuccess)
	}
	return nil
}

// KindNames returns the names of the retryable kinds in configured order.
func (p Policy) KindNames() []string {
	names := make([]string, 0, len(p.Retryable))
	for _, k := range p.Retryable {
		names = append(names, k.Name())
	}
	return names
}
