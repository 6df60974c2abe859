package naming

import (
	"errors"
	"strings"
	"testing"

	"github.com/vietddude/paramretry/internal/core/domain"
)

func inv(index, attempt int, args ...any) domain.Invocation {
	return domain.Invocation{Tuple: domain.Tuple{Index: index, Args: args}, Attempt: attempt}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		inv     domain.Invocation
		want    string
	}{
		{"default", DefaultPattern, inv(0, 1, 42, "x"), "[1] 42, x"},
		{"retry suffix", DefaultPattern, inv(2, 3, "a"), "[3] a (attempt 3)"},
		{"explicit attempt", "{index}#{attempt}", inv(1, 2), "2#2"},
		{"positional", "{1} then {0}", inv(0, 1, "a", "b"), "b then a"},
		{"positional out of range", "{5}", inv(0, 1, "a"), "{5}"},
		{"display name", "{displayName}: {0}", inv(0, 1, nil), "TestLogin: null"},
		{"literal braces", "{unknown} {index}", inv(0, 1), "{unknown} 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(tt.pattern, "TestLogin")
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			if got := f.Format(tt.inv); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNew_BlankPattern(t *testing.T) {
	for _, p := range []string{"", "   ", "\t\n"} {
		if _, err := New(p, "TestX"); !errors.Is(err, domain.ErrInvalidConfig) || !errors.Is(err, ErrBlankPattern) {
			t.Errorf("New(%q): expected blank pattern config error, got %v", p, err)
		}
	}
}

func TestArguments_Truncates(t *testing.T) {
	long := strings.Repeat("x", 1000)
	got := Arguments([]any{long})
	if len(got) != maxArgLength || !strings.HasSuffix(got, "...") {
		t.Errorf("expected truncated argument of length %d, got %d", maxArgLength, len(got))
	}
}
