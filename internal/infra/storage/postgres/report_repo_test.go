package postgres

import (
	"testing"
	"time"

	"github.com/lib/pq"

	"github.com/vietddude/paramretry/internal/core/domain"
)

func TestRunRowToDomain(t *testing.T) {
	now := time.Now()
	row := runRow{
		ID:          "7f9c",
		Method:      "TestLogin",
		Repeats:     3,
		MinSuccess:  1,
		Retryable:   pq.StringArray{"timeout"},
		Invocations: 4,
		Retries:     1,
		Passed:      2,
		Failed:      1,
		StartedAt:   now.Add(-time.Second),
		FinishedAt:  now,
	}
	tuples := []domain.TupleResult{{Index: 0, Attempts: 2, Retries: 1, Status: domain.TupleStatusPassed}}

	report := row.toDomain(tuples)

	if report.ID != "7f9c" || report.Method != "TestLogin" || report.Repeats != 3 {
		t.Errorf("unexpected report header: %+v", report)
	}
	if len(report.Retryable) != 1 || report.Retryable[0] != "timeout" {
		t.Errorf("unexpected retryable kinds: %v", report.Retryable)
	}
	if report.Summary.Invocations != 4 || report.Summary.Failed != 1 {
		t.Errorf("unexpected summary: %+v", report.Summary)
	}
	if len(report.Summary.Tuples) != 1 || !report.Summary.Tuples[0].Flaky() {
		t.Errorf("expected one flaky tuple, got %+v", report.Summary.Tuples)
	}
}

func TestEncodeArgs(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{nil, "{}"},
		{[]string{}, "{}"},
		{[]string{"a", "b c"}, `{"a","b c"}`},
		{[]string{`quo"te`}, `{"quo\"te"}`},
	}
	for _, tt := range tests {
		if got := encodeArgs(tt.args); got != tt.want {
			t.Errorf("encodeArgs(%q) = %s, want %s", tt.args, got, tt.want)
		}
	}
}
