// Package naming renders display names for invocations.
//
// Supported placeholders:
//
//	{displayName}  name of the test method
//	{index}        1-based position of the tuple
//	{attempt}      1-based attempt number
//	{arguments}    all arguments, comma separated
//	{0}, {1}, ...  a single argument
package naming

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/vietddude/paramretry/internal/core/domain"
)

// DefaultPattern is used when no name pattern is configured.
const DefaultPattern = "[{index}] {arguments}"

// maxArgLength caps the rendering of a single argument.
const maxArgLength = 512

// ErrBlankPattern is returned for an empty or whitespace-only pattern.
var ErrBlankPattern = errors.New("name pattern must not be blank")

var placeholder = regexp.MustCompile(`\{(displayName|index|attempt|arguments|[0-9]+)\}`)

// Formatter renders invocation names from a pattern.
type Formatter struct {
	pattern     string
	displayName string
	hasAttempt  bool
}

// New validates pattern and returns a formatter for the given method.
func New(pattern, displayName string) (*Formatter, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidConfig, ErrBlankPattern)
	}
	return &Formatter{
		pattern:     pattern,
		displayName: displayName,
		hasAttempt:  strings.Contains(pattern, "{attempt}"),
	}, nil
}

// Format renders the name of inv. Retries of a pattern without {attempt} get
// an " (attempt N)" suffix so each invocation stays distinguishable.
func (f *Formatter) Format(inv domain.Invocation) string {
	name := placeholder.ReplaceAllStringFunc(f.pattern, func(m string) string {
		key := m[1 : len(m)-1]
		switch key {
		case "displayName":
			return f.displayName
		case "index":
			return strconv.Itoa(inv.Tuple.Index + 1)
		case "attempt":
			return strconv.Itoa(inv.Attempt)
		case "arguments":
			return Arguments(inv.Tuple.Args)
		}
		i, err := strconv.Atoi(key)
		if err != nil || i >= len(inv.Tuple.Args) {
			return m
		}
		return argString(inv.Tuple.Args[i])
	})

	if inv.IsRetry() && !f.hasAttempt {
		name = fmt.Sprintf("%s (attempt %d)", name, inv.Attempt)
	}
	return name
}

// Arguments renders args as a comma separated list.
func Arguments(args []any) string {
	return strings.Join(Strings(args), ", ")
}

// Strings renders each argument.
func Strings(args []any) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = argString(a)
	}
	return out
}

func argString(a any) string {
	var s string
	switch v := a.(type) {
	case nil:
		s = "null"
	case string:
		s = v
	case fmt.Stringer:
		s = v.String()
	default:
		s = fmt.Sprintf("%v", v)
	}
	if len(s) > maxArgLength {
		s = s[:maxArgLength-3] + "..."
	}
	return s
}
