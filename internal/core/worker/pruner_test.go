package worker

import (
	"context"
	"testing"
	"time"

	"github.com/vietddude/paramretry/internal/core/domain"
	"github.com/vietddude/paramretry/internal/infra/storage/memory"
)

func TestPruner_Prune(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo := memory.NewReportRepo()

	_ = repo.SaveRun(ctx, &domain.RunReport{ID: "expired", FinishedAt: now.Add(-8 * 24 * time.Hour)})
	_ = repo.SaveRun(ctx, &domain.RunReport{ID: "kept", FinishedAt: now.Add(-time.Hour)})

	p := NewPruner(7*24*time.Hour, repo)
	p.now = func() time.Time { return now }

	if n := p.Prune(ctx); n != 1 {
		t.Errorf("expected 1 pruned run, got %d", n)
	}
	runs, _ := repo.ListRuns(ctx, "", 0)
	if len(runs) != 1 || runs[0].ID != "kept" {
		t.Errorf("unexpected remaining runs: %+v", runs)
	}
}

func TestPruner_Interval(t *testing.T) {
	tests := []struct {
		retention time.Duration
		want      time.Duration
	}{
		{5 * time.Minute, time.Minute},
		{2 * time.Hour, 12 * time.Minute},
		{30 * 24 * time.Hour, time.Hour},
	}
	for _, tt := range tests {
		if got := NewPruner(tt.retention, nil).Interval(); got != tt.want {
			t.Errorf("Interval(%v) = %v, want %v", tt.retention, got, tt.want)
		}
	}
}

func TestPruner_DisabledReturnsImmediately(t *testing.T) {
	done := make(chan struct{})
	go func() {
		NewPruner(0, memory.NewReportRepo()).Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pruner with zero retention did not return")
	}
}
