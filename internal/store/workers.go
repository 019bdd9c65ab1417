// Package store persists workers in PostgreSQL through pgx.
package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/workerdesk/internal/core"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

//go:embed schema.sql
var schemaSQL string

// uniqueViolation is the PostgreSQL SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

// MaxBatchRows is the largest batch that fits PostgreSQL's 65535 bind parameter limit.
var MaxBatchRows = 65535 / len(core.WorkerColumns)

// DB is the subset of a connection pool the store needs.
// Satisfied by *pgxpool.Pool and by pgxmock pools in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

// Workers implements core.WorkerStore on the workers table.
type Workers struct {
	db DB
}

var _ core.WorkerStore = (*Workers)(nil)

// NewWorkers returns a store bound to db.
func NewWorkers(db DB) *Workers {
	return &Workers{db: db}
}

var (
	columnList = strings.Join(core.WorkerColumns, ", ")

	listSQL = "SELECT id, " + columnList + " FROM workers ORDER BY id"

	createSQL = "INSERT INTO workers (" + columnList + ") VALUES (" + placeholders(1, len(core.WorkerColumns)) + ") RETURNING id"

	updateSQL = buildUpdateSQL()

	deleteSQL = "DELETE FROM workers WHERE id = $1"
)

// placeholders renders "$from, $from+1, ..." for n parameters.
func placeholders(from, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "$%d", from+i)
	}
	return b.String()
}

func buildUpdateSQL() string {
	sets := make([]string, len(core.WorkerColumns))
	for i, col := range core.WorkerColumns {
		sets[i] = fmt.Sprintf("%s = $%d", col, i+1)
	}
	return fmt.Sprintf("UPDATE workers SET %s WHERE id = $%d", strings.Join(sets, ", "), len(core.WorkerColumns)+1)
}

// insertSQL builds a multi-row INSERT for n rows.
func insertSQL(n int) string {
	cols := len(core.WorkerColumns)

	var b strings.Builder
	b.WriteString("INSERT INTO workers (")
	b.WriteString(columnList)
	b.WriteString(") VALUES ")
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		b.WriteString(placeholders(i*cols+1, cols))
		b.WriteString(")")
	}
	return b.String()
}

// EnsureSchema creates the workers table when it does not exist yet.
func (w *Workers) EnsureSchema(ctx context.Context) error {
	if _, err := w.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// ListWorkers returns every worker ordered by id.
func (w *Workers) ListWorkers(ctx context.Context) ([]core.Worker, error) {
	rows, err := w.db.Query(ctx, listSQL)
	if err != nil {
		return nil, fmt.Errorf("list workers: %w", err)
	}
	defer rows.Close()

	workers := []core.Worker{}
	for rows.Next() {
		var (
			wk       core.Worker
			dob, doj pgtype.Date
		)
		if err := rows.Scan(
			&wk.ID,
			&wk.Name,
			&wk.EmployeeID,
			&wk.Email,
			&wk.PhoneNumber,
			&wk.Department,
			&dob,
			&doj,
			&wk.Role,
		); err != nil {
			return nil, fmt.Errorf("scan worker: %w", err)
		}
		wk.DateOfBirth = core.FormatDate(dob)
		wk.DateOfJoining = core.FormatDate(doj)
		workers = append(workers, wk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list workers: %w", err)
	}

	return workers, nil
}

// CreateWorker inserts one worker and returns its generated id.
func (w *Workers) CreateWorker(ctx context.Context, f core.WorkerFields) (int64, error) {
	var id int64
	if err := w.db.QueryRow(ctx, createSQL, f.Args()...).Scan(&id); err != nil {
		return 0, fmt.Errorf("create worker: %w", classify(err))
	}
	return id, nil
}

// UpdateWorker overwrites all attributes of worker id.
func (w *Workers) UpdateWorker(ctx context.Context, id int64, f core.WorkerFields) (int64, error) {
	args := append(f.Args(), id)
	tag, err := w.db.Exec(ctx, updateSQL, args...)
	if err != nil {
		return 0, fmt.Errorf("update worker %d: %w", id, classify(err))
	}
	return tag.RowsAffected(), nil
}

// DeleteWorker removes worker id.
func (w *Workers) DeleteWorker(ctx context.Context, id int64) (int64, error) {
	tag, err := w.db.Exec(ctx, deleteSQL, id)
	if err != nil {
		return 0, fmt.Errorf("delete worker %d: %w", id, err)
	}
	return tag.RowsAffected(), nil
}

// InsertWorkers writes rows in one transaction, batchSize rows per
// statement. Either every row is stored or none is.
func (w *Workers) InsertWorkers(ctx context.Context, rows []core.WorkerFields, batchSize int) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if batchSize <= 0 || batchSize > MaxBatchRows {
		batchSize = MaxBatchRows
	}

	tx, err := w.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}

	var inserted int64
	for start := 0; start < len(rows); start += batchSize {
		end := min(start+batchSize, len(rows))
		chunk := rows[start:end]

		args := make([]any, 0, len(chunk)*len(core.WorkerColumns))
		for _, f := range chunk {
			args = append(args, f.Args()...)
		}

		tag, err := tx.Exec(ctx, insertSQL(len(chunk)), args...)
		if err != nil {
			rollback(ctx, tx)
			return 0, fmt.Errorf("insert rows %d-%d: %w", start+1, end, classify(err))
		}
		inserted += tag.RowsAffected()
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", classify(err))
	}
	return inserted, nil
}

// Ping checks database connectivity.
func (w *Workers) Ping(ctx context.Context) error {
	return w.db.Ping(ctx)
}

func rollback(ctx context.Context, tx pgx.Tx) {
	// The statement error is what the caller reports.
	_ = tx.Rollback(ctx)
}

// classify tags unique violations with core.ErrDuplicate so callers can
// match them with errors.Is and still see the driver detail.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %w", core.ErrDuplicate, err)
	}
	return err
}
