package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/vietddude/paramretry/internal/core/classify"
	"github.com/vietddude/paramretry/internal/core/config"
	"github.com/vietddude/paramretry/internal/core/domain"
)

func intPtr(v int) *int { return &v }

func TestStepError_MatchesBuiltinKinds(t *testing.T) {
	registry := classify.DefaultRegistry()
	for name := range sampleErrors {
		kind, err := registry.Lookup(name)
		if err != nil {
			t.Fatalf("Lookup(%s): %v", name, err)
		}
		if !kind.Match(stepError("fail:" + name)) {
			t.Errorf("step fail:%s does not match kind %s", name, name)
		}
	}
}

func TestStepError_Plain(t *testing.T) {
	if err := stepError("pass"); err != nil {
		t.Errorf("expected nil for pass, got %v", err)
	}
	if err := stepError("abort"); !domain.IsAbort(err) {
		t.Errorf("expected abort, got %v", err)
	}
	if err := stepError("fail"); !errors.Is(err, errSimulated) {
		t.Errorf("expected simulated failure, got %v", err)
	}
	if err := stepError("fail:custom"); !errors.Is(err, errSimulated) {
		t.Errorf("expected simulated failure for unknown kind, got %v", err)
	}
}

func TestSimulate(t *testing.T) {
	sc := &config.Scenario{
		Method: "TestScenario",
		Policy: config.PolicyConfig{
			Repeats:    intPtr(3),
			MinSuccess: intPtr(1),
			Retryable:  []string{"timeout"},
		},
		Tuples: []config.ScenarioTuple{
			{Args: []any{"a"}, Outcomes: []string{"fail:timeout"}},
			{Args: []any{"b"}, Outcomes: []string{"fail"}},
			{Args: []any{"c"}, Outcomes: []string{"abort", "abort", "abort"}},
		},
	}

	rows, report, err := simulate(context.Background(), sc, classify.DefaultRegistry())
	if err != nil {
		t.Fatalf("simulate failed: %v", err)
	}

	want := []struct {
		attempt  int
		step     string
		kind     string
		decision string
	}{
		{1, "fail:timeout", "timeout", "retry"},
		{2, "pass", "", "advance"},
		{1, "fail", "", "advance"},
		{1, "abort", classify.AbortKind, "retry"},
		{2, "abort", classify.AbortKind, "retry"},
		{3, "abort", classify.AbortKind, "advance"},
	}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d: %+v", len(want), len(rows), rows)
	}
	for i, w := range want {
		got := rows[i]
		if got.Attempt != w.attempt || got.Step != w.step || got.Kind != w.kind || got.Decision != w.decision {
			t.Errorf("row %d: expected %+v, got %+v", i, w, got)
		}
	}

	s := report.Summary
	if s.Invocations != 6 || s.Retries != 3 {
		t.Errorf("expected 6 invocations and 3 retries, got %d and %d", s.Invocations, s.Retries)
	}
	if s.Passed != 1 || s.Failed != 1 || s.Aborted != 1 {
		t.Errorf("unexpected summary %+v", s)
	}
}

func TestSimulate_InvalidPolicy(t *testing.T) {
	sc := &config.Scenario{
		Method: "TestScenario",
		Policy: config.PolicyConfig{
			Repeats:   intPtr(0),
			Retryable: []string{"no_such_kind"},
		},
		Tuples: []config.ScenarioTuple{{Args: []any{1}}},
	}

	_, _, err := simulate(context.Background(), sc, classify.DefaultRegistry())
	if !errors.Is(err, domain.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if !errors.Is(err, classify.ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind in %v", err)
	}
}
