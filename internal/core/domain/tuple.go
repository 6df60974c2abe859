package domain

// Tuple is one ordered set of arguments fed to one invocation of the test body.
type Tuple struct {
	Index int // zero-based position in the parameter sequence
	Args  []any
}

// Invocation is a ready-to-run attempt of a tuple.
type Invocation struct {
	Tuple   Tuple
	Attempt int // 1-based attempt number for this tuple
}

// IsRetry returns true for every attempt after the first.
func (i Invocation) IsRetry() bool {
	return i.Attempt > 1
}
