package domain

import "time"

// TupleResult is recorded when the engine commits a tuple and moves on.
type TupleResult struct {
	Index    int         `json:"index"`
	Name     string      `json:"name,omitempty"`
	Args     []string    `json:"args,omitempty"`
	Attempts int         `json:"attempts"`
	Retries  int         `json:"retries"`
	Status   TupleStatus `json:"status"`
	Error    string      `json:"error,omitempty"`
}

// Flaky reports whether the tuple passed only after at least one retry.
func (r TupleResult) Flaky() bool {
	return r.Status == TupleStatusPassed && r.Retries > 0
}

// RunSummary aggregates the committed tuples of one run.
type RunSummary struct {
	Tuples      []TupleResult `json:"tuples"`
	Invocations int           `json:"invocations"`
	Retries     int           `json:"retries"`
	Passed      int           `json:"passed"`
	Failed      int           `json:"failed"`
	Aborted     int           `json:"aborted"`
}

// OK is true when no committed tuple failed.
func (s RunSummary) OK() bool {
	return s.Failed == 0
}

// RunReport is the persisted record of a completed run.
type RunReport struct {
	ID         string     `json:"id"`
	Method     string     `json:"method"`
	Repeats    int        `json:"repeats"`
	MinSuccess int        `json:"min_success"`
	Retryable  []string   `json:"retryable"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`
	Summary    RunSummary `json:"summary"`
}
