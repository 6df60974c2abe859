// Package worker holds background jobs of the report server.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/vietddude/paramretry/internal/infra/storage"
)

// Pruner deletes run reports based on a retention period.
type Pruner struct {
	retention time.Duration
	reports   storage.ReportRepository
	log       *slog.Logger
	now       func() time.Time
}

// NewPruner creates a new Pruner worker. A zero retention disables pruning.
func NewPruner(retention time.Duration, reports storage.ReportRepository) *Pruner {
	return &Pruner{
		retention: retention,
		reports:   reports,
		log:       slog.Default().With("component", "pruner"),
		now:       time.Now,
	}
}

// Interval returns how often the pruner runs: a tenth of the retention
// period, between one minute and one hour.
func (p *Pruner) Interval() time.Duration {
	interval := min(p.retention/10, 1*time.Hour)
	return max(interval, 1*time.Minute)
}

// Start runs the pruner loop until ctx is done.
func (p *Pruner) Start(ctx context.Context) {
	if p.retention <= 0 {
		return // Retention disabled
	}

	ticker := time.NewTicker(p.Interval())
	defer ticker.Stop()

	// Initial prune
	p.Prune(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Prune(ctx)
		}
	}
}

// Prune deletes the runs that finished before the retention window.
func (p *Pruner) Prune(ctx context.Context) int64 {
	threshold := p.now().Add(-p.retention)

	n, err := p.reports.DeleteRunsBefore(ctx, threshold)
	if err != nil {
		p.log.Error("Failed to prune run reports", "error", err)
		return 0
	}
	if n > 0 {
		p.log.Info("Pruned run reports", "count", n, "before", threshold)
	}
	return n
}
