package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/vietddude/paramretry/internal/core/domain"
	"github.com/vietddude/paramretry/internal/infra/storage"
)

// ReportRepo implements storage.ReportRepository using PostgreSQL.
type ReportRepo struct {
	db *DB
}

// NewReportRepo creates a new PostgreSQL report repository.
func NewReportRepo(db *DB) *ReportRepo {
	return &ReportRepo{db: db}
}

type runRow struct {
	ID          string         `db:"id"`
	Method      string         `db:"method"`
	Repeats     int            `db:"repeats"`
	MinSuccess  int            `db:"min_success"`
	Retryable   pq.StringArray `db:"retryable"`
	Invocations int            `db:"invocations"`
	Retries     int            `db:"retries"`
	Passed      int            `db:"passed"`
	Failed      int            `db:"failed"`
	Aborted     int            `db:"aborted"`
	StartedAt   time.Time      `db:"started_at"`
	FinishedAt  time.Time      `db:"finished_at"`
}

type tupleRow struct {
	RunID    string         `db:"run_id"`
	Index    int            `db:"tuple_index"`
	Name     string         `db:"name"`
	Args     pq.StringArray `db:"args"`
	Attempts int            `db:"attempts"`
	Retries  int            `db:"retries"`
	Status   string         `db:"status"`
	ErrorMsg string         `db:"error_msg"`
}

// SaveRun inserts the run and its tuple results in one transaction.
func (r *ReportRepo) SaveRun(ctx context.Context, report *domain.RunReport) error {
	uow, err := r.db.NewUnitOfWork(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback()
	}()

	if err := uow.InsertRun(ctx, report); err != nil {
		return err
	}
	if err := uow.InsertTuples(ctx, report.ID, report.Summary.Tuples); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// DeleteRunsBefore removes runs finished before the threshold.
func (r *ReportRepo) DeleteRunsBefore(ctx context.Context, before time.Time) (int64, error) {
	uow, err := r.db.NewUnitOfWork(ctx)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = uow.Rollback()
	}()

	n, err := uow.DeleteRunsBefore(ctx, before)
	if err != nil {
		return 0, err
	}
	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit delete: %w", err)
	}
	return n, nil
}

// GetRun retrieves a run with its tuple results.
func (r *ReportRepo) GetRun(ctx context.Context, id string) (*domain.RunReport, error) {
	var row runRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM runs WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	reports, err := r.attachTuples(ctx, []runRow{row})
	if err != nil {
		return nil, err
	}
	return reports[0], nil
}

// ListRuns returns the latest runs, newest first.
func (r *ReportRepo) ListRuns(ctx context.Context, method string, limit int) ([]*domain.RunReport, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows []runRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT * FROM runs
		WHERE $1 = '' OR method = $1
		ORDER BY finished_at DESC
		LIMIT $2
	`, method, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return r.attachTuples(ctx, rows)
}

func (r *ReportRepo) attachTuples(ctx context.Context, rows []runRow) ([]*domain.RunReport, error) {
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}

	query, args, err := sqlx.In(`
		SELECT * FROM tuple_results WHERE run_id IN (?) ORDER BY run_id, tuple_index
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build tuple query: %w", err)
	}

	var tuples []tupleRow
	if err := r.db.SelectContext(ctx, &tuples, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get tuple results: %w", err)
	}

	byRun := make(map[string][]domain.TupleResult, len(rows))
	for _, t := range tuples {
		byRun[t.RunID] = append(byRun[t.RunID], domain.TupleResult{
			Index:    t.Index,
			Name:     t.Name,
			Args:     []string(t.Args),
			Attempts: t.Attempts,
			Retries:  t.Retries,
			Status:   domain.TupleStatus(t.Status),
			Error:    t.ErrorMsg,
		})
	}

	out := make([]*domain.RunReport, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain(byRun[row.ID])
	}
	return out, nil
}

func (row runRow) toDomain(tuples []domain.TupleResult) *domain.RunReport {
	return &domain.RunReport{
		ID:         row.ID,
		Method:     row.Method,
		Repeats:    row.Repeats,
		MinSuccess: row.MinSuccess,
		Retryable:  []string(row.Retryable),
		StartedAt:  row.StartedAt,
		FinishedAt: row.FinishedAt,
		Summary: domain.RunSummary{
			Tuples:      tuples,
			Invocations: row.Invocations,
			Retries:     row.Retries,
			Passed:      row.Passed,
			Failed:      row.Failed,
			Aborted:     row.Aborted,
		},
	}
}
