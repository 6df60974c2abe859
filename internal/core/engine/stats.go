package engine

// Stats holds counters for one run.
type Stats struct {
	Invocations     int
	Retries         int
	Committed       int
	BudgetExhausted int // tuples committed while their last attempt was still retryable
	Transitions     []Transition
}

func newStats() *Stats {
	return &Stats{Transitions: make([]Transition, 0, 2)}
}

func (s *Stats) recordTransition(t Transition) {
	s.Transitions = append(s.Transitions, t)
}

func (s *Stats) snapshot() Stats {
	c := *s
	c.Transitions = make([]Transition, len(s.Transitions))
	copy(c.Transitions, s.Transitions)
	return c
}
