// Package classify decides whether a failed attempt qualifies for retry.
//
// A failure is retryable when it matches one of the configured kinds, or when
// it is an abort signal. Aborts are always retryable so that skipped attempts
// do not count against a tuple. Everything else, including nil, is settled.
//
//	c := classify.New(classify.Sentinel("timeout", context.DeadlineExceeded))
//	c.Classify(fmt.Errorf("dial: %w", context.DeadlineExceeded)) // domain.Retryable
//	c.Classify(errors.New("assertion failed"))                    // domain.Settled
package classify

import (
	"github.com/vietddude/paramretry/internal/core/domain"
)

// AbortKind is the label reported for abort signals.
const AbortKind = "abort"

// Classifier matches failures against an ordered list of retryable kinds.
type Classifier struct {
	kinds []domain.Kind
}

// New creates a classifier for the given kinds. Order decides which kind is
// reported when several match.
func New(kinds ...domain.Kind) *Classifier {
	return &Classifier{kinds: append([]domain.Kind(nil), kinds...)}
}

// ForPolicy creates a classifier for the retryable kinds of a policy.
func ForPolicy(p domain.Policy) *Classifier {
	return New(p.Retryable...)
}

// Classify returns the history outcome for err.
func (c *Classifier) Classify(err error) domain.Outcome {
	_, ok := c.Match(err)
	return domain.Outcome(ok)
}

// Match returns the name of the first kind matching err. Abort signals match
// as AbortKind regardless of configuration.
func (c *Classifier) Match(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	if domain.IsAbort(err) {
		return AbortKind, true
	}
	for _, k := range c.kinds {
		if k.Match(err) {
			return k.Name(), true
		}
	}
	return "", false
}

// Kinds returns the configured kinds.
func (c *Classifier) Kinds() []domain.Kind {
	return append([]domain.Kind(nil), c.kinds...)
}
