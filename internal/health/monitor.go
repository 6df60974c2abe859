package health

import (
	"context"
	"sync"
	"time"

	"github.com/vietddude/paramretry/internal/core/domain"
	"github.com/vietddude/paramretry/internal/infra/storage"
)

const (
	// checkInterval rate limits storage queries.
	checkInterval = 10 * time.Second
	// recentRuns bounds how many runs are scanned per check.
	recentRuns = 200
)

// Pinger checks a backing store.
type Pinger interface {
	Health(ctx context.Context) error
}

// Monitor derives health from the most recent run of each method.
type Monitor struct {
	reports    storage.ReportRepository
	pinger     Pinger
	lastCheck  time.Time
	lastReport *HealthReport
	mu         sync.Mutex
}

// NewMonitor creates a new health monitor. pinger may be nil.
func NewMonitor(reports storage.ReportRepository, pinger Pinger) *Monitor {
	return &Monitor{
		reports: reports,
		pinger:  pinger,
	}
}

// CheckHealth builds a health report, reusing the previous one when it is
// recent enough.
func (m *Monitor) CheckHealth(ctx context.Context) *HealthReport {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.lastReport != nil && time.Since(m.lastCheck) < checkInterval {
		return m.lastReport
	}

	report := &HealthReport{
		Storage: "ok",
		Methods: make(map[string]MethodHealth),
	}

	storageStatus := StatusHealthy
	if m.pinger != nil {
		if err := m.pinger.Health(ctx); err != nil {
			report.Storage = err.Error()
			storageStatus = StatusCritical
		}
	}

	runs, err := m.reports.ListRuns(ctx, "", recentRuns)
	if err != nil {
		report.Storage = err.Error()
		storageStatus = StatusCritical
	}

	statuses := []SystemStatus{storageStatus}
	for _, run := range runs {
		// Runs are newest first; keep the latest per method.
		if _, seen := report.Methods[run.Method]; seen {
			continue
		}
		h := methodHealth(run)
		report.Methods[run.Method] = h
		statuses = append(statuses, h.Status)
	}
	report.SystemStatus = Worst(statuses...)

	m.lastCheck = time.Now()
	m.lastReport = report
	return report
}

func methodHealth(run *domain.RunReport) MethodHealth {
	h := MethodHealth{
		Method:     run.Method,
		Status:     StatusHealthy,
		LastRunID:  run.ID,
		FinishedAt: run.FinishedAt,
		Tuples:     len(run.Summary.Tuples),
		Failed:     run.Summary.Failed,
		Retries:    run.Summary.Retries,
	}
	for _, t := range run.Summary.Tuples {
		if t.Flaky() {
			h.Flaky++
		}
	}

	switch {
	case h.Failed > 0:
		h.Status = StatusCritical
	case h.Flaky > 0 || run.Summary.Aborted > 0:
		h.Status = StatusDegraded
	}
	return h
}
