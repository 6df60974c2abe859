package domain

// Outcome is the classified result of one attempt, as stored in attempt history.
type Outcome bool

const (
	// Settled means the attempt succeeded or failed with a non-retryable error.
	Settled Outcome = false
	// Retryable means the attempt failed with a retryable kind or was aborted.
	Retryable Outcome = true
)

func (o Outcome) String() string {
	if o == Retryable {
		return "retryable"
	}
	return "settled"
}

// TupleStatus is the final status of a tuple, taken from its last committed attempt.
type TupleStatus string

const (
	TupleStatusPassed  TupleStatus = "passed"
	TupleStatusFailed  TupleStatus = "failed"
	TupleStatusAborted TupleStatus = "aborted"
)

// StatusOf maps the terminal error of an attempt to a tuple status.
func StatusOf(err error) TupleStatus {
	switch {
	case err == nil:
		return TupleStatusPassed
	case IsAbort(err):
		return TupleStatusAborted
	default:
		return TupleStatusFailed
	}
}
