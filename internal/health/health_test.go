package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vietddude/paramretry/internal/core/domain"
	"github.com/vietddude/paramretry/internal/infra/storage/memory"
)

// =============================================================================
// Stubs
// =============================================================================

type stubPinger struct {
	err error
}

func (s *stubPinger) Health(ctx context.Context) error { return s.err }

func saveRun(t *testing.T, repo *memory.ReportRepo, id, method string, finished time.Time, tuples ...domain.TupleResult) {
	t.Helper()
	report := &domain.RunReport{
		ID:         id,
		Method:     method,
		Repeats:    3,
		MinSuccess: 1,
		StartedAt:  finished.Add(-time.Second),
		FinishedAt: finished,
		Summary:    domain.RunSummary{Tuples: tuples},
	}
	for _, tr := range tuples {
		report.Summary.Invocations += tr.Attempts
		report.Summary.Retries += tr.Retries
		switch tr.Status {
		case domain.TupleStatusPassed:
			report.Summary.Passed++
		case domain.TupleStatusFailed:
			report.Summary.Failed++
		case domain.TupleStatusAborted:
			report.Summary.Aborted++
		}
	}
	if err := repo.SaveRun(context.Background(), report); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
}

var (
	passed = domain.TupleResult{Index: 0, Attempts: 1, Status: domain.TupleStatusPassed}
	flaky  = domain.TupleResult{Index: 1, Attempts: 2, Retries: 1, Status: domain.TupleStatusPassed}
	failed = domain.TupleResult{Index: 2, Attempts: 3, Retries: 2, Status: domain.TupleStatusFailed, Error: "boom"}
)

// =============================================================================
// Tests
// =============================================================================

func TestMonitor_Statuses(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name   string
		tuples []domain.TupleResult
		want   SystemStatus
	}{
		{"healthy", []domain.TupleResult{passed}, StatusHealthy},
		{"flaky is degraded", []domain.TupleResult{passed, flaky}, StatusDegraded},
		{"failure is critical", []domain.TupleResult{passed, flaky, failed}, StatusCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := memory.NewReportRepo()
			saveRun(t, repo, "run-1", "TestCheckout", now, tt.tuples...)

			report := NewMonitor(repo, nil).CheckHealth(context.Background())

			if report.SystemStatus != tt.want {
				t.Errorf("expected %s, got %s", tt.want, report.SystemStatus)
			}
			if got := report.Methods["TestCheckout"].Status; got != tt.want {
				t.Errorf("expected method status %s, got %s", tt.want, got)
			}
		})
	}
}

func TestMonitor_LatestRunPerMethod(t *testing.T) {
	repo := memory.NewReportRepo()
	now := time.Now()
	saveRun(t, repo, "old", "TestCheckout", now.Add(-time.Hour), failed)
	saveRun(t, repo, "new", "TestCheckout", now, passed)
	saveRun(t, repo, "other", "TestRefund", now, passed, flaky)

	report := NewMonitor(repo, nil).CheckHealth(context.Background())

	checkout := report.Methods["TestCheckout"]
	if checkout.LastRunID != "new" || checkout.Status != StatusHealthy {
		t.Errorf("expected latest healthy run, got %+v", checkout)
	}
	refund := report.Methods["TestRefund"]
	if refund.Flaky != 1 || refund.Retries != 1 {
		t.Errorf("expected one flaky tuple, got %+v", refund)
	}
	if report.SystemStatus != StatusDegraded {
		t.Errorf("expected degraded, got %s", report.SystemStatus)
	}
}

func TestMonitor_StorageDown(t *testing.T) {
	repo := memory.NewReportRepo()
	monitor := NewMonitor(repo, &stubPinger{err: errors.New("connection refused")})

	report := monitor.CheckHealth(context.Background())

	if report.SystemStatus != StatusCritical {
		t.Errorf("expected critical, got %s", report.SystemStatus)
	}
	if report.Storage != "connection refused" {
		t.Errorf("unexpected storage status %q", report.Storage)
	}
}

func TestMonitor_CachesReport(t *testing.T) {
	repo := memory.NewReportRepo()
	monitor := NewMonitor(repo, nil)

	first := monitor.CheckHealth(context.Background())
	saveRun(t, repo, "run-1", "TestCheckout", time.Now(), failed)
	second := monitor.CheckHealth(context.Background())

	if first != second {
		t.Error("expected cached report within the check interval")
	}
}

func TestServer_Endpoints(t *testing.T) {
	repo := memory.NewReportRepo()
	now := time.Now()
	saveRun(t, repo, "run-1", "TestCheckout", now.Add(-time.Minute), passed)
	saveRun(t, repo, "run-2", "TestCheckout", now, passed, failed)
	saveRun(t, repo, "run-3", "TestRefund", now.Add(-time.Hour), passed)

	srv := httptest.NewServer(NewServer(NewMonitor(repo, nil), repo, 0).Handler())
	defer srv.Close()

	t.Run("health", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/health")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("expected 503, got %d", resp.StatusCode)
		}
		var body map[string]string
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body["status"] != string(StatusCritical) {
			t.Errorf("expected critical, got %q", body["status"])
		}
	})

	t.Run("runs by method", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/runs?method=TestCheckout&limit=1")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()

		var runs []domain.RunReport
		if err := json.NewDecoder(resp.Body).Decode(&runs); err != nil {
			t.Fatal(err)
		}
		if len(runs) != 1 || runs[0].ID != "run-2" {
			t.Errorf("expected latest TestCheckout run, got %+v", runs)
		}
	})

	t.Run("bad limit", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/runs?limit=zero")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("run by id", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/runs/run-3")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()

		var run domain.RunReport
		if err := json.NewDecoder(resp.Body).Decode(&run); err != nil {
			t.Fatal(err)
		}
		if run.Method != "TestRefund" {
			t.Errorf("expected TestRefund, got %q", run.Method)
		}
	})

	t.Run("unknown run", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/runs/missing")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("metrics", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/metrics")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200, got %d", resp.StatusCode)
		}
	})
}
