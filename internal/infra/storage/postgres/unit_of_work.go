package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/vietddude/paramretry/internal/core/domain"
)

// UnitOfWork bundles persistence operations into a single database transaction,
// ensuring atomicity (all succeed or all fail).
type UnitOfWork struct {
	tx *sqlx.Tx
}

// NewUnitOfWork creates a new unit of work with an active transaction.
func (db *DB) NewUnitOfWork(ctx context.Context) (*UnitOfWork, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &UnitOfWork{tx: tx}, nil
}

// Commit commits the transaction.
func (u *UnitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("transaction already completed")
	}
	err := u.tx.Commit()
	u.tx = nil
	return err
}

// Rollback rolls back the transaction. Safe to call multiple times.
func (u *UnitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Already committed or rolled back
	}
	err := u.tx.Rollback()
	u.tx = nil
	return err
}

// InsertRun inserts the run header.
func (u *UnitOfWork) InsertRun(ctx context.Context, report *domain.RunReport) error {
	s := report.Summary
	_, err := u.tx.ExecContext(ctx, `
		INSERT INTO runs (id, method, repeats, min_success, retryable, invocations, retries,
		                  passed, failed, aborted, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		report.ID, report.Method, report.Repeats, report.MinSuccess, pq.Array(report.Retryable),
		s.Invocations, s.Retries, s.Passed, s.Failed, s.Aborted,
		report.StartedAt, report.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// InsertTuples saves the tuple results of a run using a multi-row INSERT.
func (u *UnitOfWork) InsertTuples(ctx context.Context, runID string, tuples []domain.TupleResult) error {
	if len(tuples) == 0 {
		return nil
	}

	indexes := make([]int64, len(tuples))
	names := make([]string, len(tuples))
	args := make([]string, len(tuples))
	attempts := make([]int64, len(tuples))
	retries := make([]int64, len(tuples))
	statuses := make([]string, len(tuples))
	errorMsgs := make([]string, len(tuples))

	for i, t := range tuples {
		indexes[i] = int64(t.Index)
		names[i] = t.Name
		args[i] = encodeArgs(t.Args)
		attempts[i] = int64(t.Attempts)
		retries[i] = int64(t.Retries)
		statuses[i] = string(t.Status)
		errorMsgs[i] = t.Error
	}

	// args travel as array literals since unnest cannot return ragged arrays.
	_, err := u.tx.ExecContext(ctx, `
		INSERT INTO tuple_results (run_id, tuple_index, name, args, attempts, retries, status, error_msg)
		SELECT $1, t.idx, t.name, t.args::text[], t.attempts, t.retries, t.status, t.error_msg
		FROM unnest($2::int[], $3::text[], $4::text[], $5::int[], $6::int[], $7::text[], $8::text[])
		     AS t(idx, name, args, attempts, retries, status, error_msg)
	`,
		runID,
		pq.Array(indexes), pq.Array(names), pq.Array(args),
		pq.Array(attempts), pq.Array(retries), pq.Array(statuses), pq.Array(errorMsgs),
	)
	if err != nil {
		return fmt.Errorf("failed to insert tuple results: %w", err)
	}
	return nil
}

// DeleteRunsBefore removes runs finished before the threshold. Tuple results
// are removed by the foreign key cascade.
func (u *UnitOfWork) DeleteRunsBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := u.tx.ExecContext(ctx, `DELETE FROM runs WHERE finished_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete runs: %w", err)
	}
	return res.RowsAffected()
}

// encodeArgs renders args as a PostgreSQL array literal.
func encodeArgs(args []string) string {
	v, _ := pq.StringArray(args).Value()
	if v == nil {
		return "{}"
	}
	return v.(string)
}
