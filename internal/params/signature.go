package params

// Signature describes the parameters the test body declares.
type Signature struct {
	// Params is the number of indexed parameters. Zero disables truncation.
	Params int
	// Aggregates is set when a trailing parameter consumes all remaining
	// arguments.
	Aggregates bool
}

// Fit truncates args to the declared arity. Argument lists are passed through
// unchanged when the body aggregates or when they are not longer than Params.
func (s Signature) Fit(args []any) []any {
	if s.Aggregates || s.Params <= 0 || len(args) <= s.Params {
		return args
	}
	out := make([]any, s.Params)
	copy(out, args)
	return out
}
