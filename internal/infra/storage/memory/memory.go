package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vietddude/paramretry/internal/core/domain"
	"github.com/vietddude/paramretry/internal/infra/storage"
)

// ReportRepo keeps run reports in memory.
type ReportRepo struct {
	mu   sync.RWMutex
	runs map[string]*domain.RunReport
}

func NewReportRepo() *ReportRepo {
	return &ReportRepo{runs: make(map[string]*domain.RunReport)}
}

func (r *ReportRepo) SaveRun(ctx context.Context, report *domain.RunReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[report.ID] = cloneReport(report)
	return nil
}

func (r *ReportRepo) GetRun(ctx context.Context, id string) (*domain.RunReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	report, ok := r.runs[id]
	if !ok {
		return nil, storage.ErrRunNotFound
	}
	return cloneReport(report), nil
}

func (r *ReportRepo) ListRuns(ctx context.Context, method string, limit int) ([]*domain.RunReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.RunReport
	for _, report := range r.runs {
		if method != "" && report.Method != method {
			continue
		}
		out = append(out, cloneReport(report))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].FinishedAt.After(out[j].FinishedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *ReportRepo) DeleteRunsBefore(ctx context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, report := range r.runs {
		if report.FinishedAt.Before(before) {
			delete(r.runs, id)
			n++
		}
	}
	return n, nil
}

func cloneReport(report *domain.RunReport) *domain.RunReport {
	c := *report
	c.Retryable = append([]string(nil), report.Retryable...)
	c.Summary.Tuples = append([]domain.TupleResult(nil), report.Summary.Tuples...)
	return &c
}
