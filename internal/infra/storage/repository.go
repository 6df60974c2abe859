package storage

import (
	"context"
	"errors"
	"time"

	"github.com/vietddude/paramretry/internal/core/domain"
)

var (
	// ErrRunNotFound is returned when a run report doesn't exist
	ErrRunNotFound = errors.New("run not found")
)

// ReportRepository stores completed run reports
type ReportRepository interface {
	// SaveRun saves a completed run with its tuple results
	SaveRun(ctx context.Context, report *domain.RunReport) error

	// GetRun retrieves a run by ID
	GetRun(ctx context.Context, id string) (*domain.RunReport, error)

	// ListRuns returns the most recent runs, newest first. An empty method
	// matches every method.
	ListRuns(ctx context.Context, method string, limit int) ([]*domain.RunReport, error)

	// DeleteRunsBefore removes runs finished before the threshold and
	// returns how many were removed
	DeleteRunsBefore(ctx context.Context, before time.Time) (int64, error)
}
