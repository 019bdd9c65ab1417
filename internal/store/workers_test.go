package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/JonMunkholm/workerdesk/internal/core"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (pgxmock.PgxPoolIface, *Workers) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock, NewWorkers(mock)
}

func jane() core.WorkerFields {
	return core.WorkerInput{
		Name:          "Jane Doe",
		EmployeeID:    "E001",
		Email:         "j@x.io",
		PhoneNumber:   "5551234567",
		Department:    "Ops",
		DateOfBirth:   "1990-01-05",
		DateOfJoining: "",
		Role:          "Lead",
	}.Fields()
}

func TestInsertSQL(t *testing.T) {
	assert.Equal(t,
		"INSERT INTO workers (name, employee_id, email, phone_number, department, date_of_birth, date_of_joining, role) VALUES "+
			"($1, $2, $3, $4, $5, $6, $7, $8), ($9, $10, $11, $12, $13, $14, $15, $16)",
		insertSQL(2))
	assert.Equal(t,
		"UPDATE workers SET name = $1, employee_id = $2, email = $3, phone_number = $4, department = $5, "+
			"date_of_birth = $6, date_of_joining = $7, role = $8 WHERE id = $9",
		updateSQL)
}

func TestWorkers_List(t *testing.T) {
	mock, store := newMock(t)

	dob := pgtype.Date{Time: time.Date(1990, 1, 5, 0, 0, 0, 0, time.UTC), Valid: true}
	rows := pgxmock.NewRows([]string{"id", "name", "employee_id", "email", "phone_number", "department", "date_of_birth", "date_of_joining", "role"}).
		AddRow(int64(1), "Jane Doe", "E001", "j@x.io", "5551234567", "Ops", dob, pgtype.Date{}, "Lead").
		AddRow(int64(2), "Al Smith", "E002", "a@x.io", "5551234568", "Eng", pgtype.Date{}, pgtype.Date{}, "Dev")

	mock.ExpectQuery(regexp.QuoteMeta(listSQL)).WillReturnRows(rows)

	workers, err := store.ListWorkers(context.Background())
	require.NoError(t, err)
	require.Len(t, workers, 2)

	assert.Equal(t, int64(1), workers[0].ID)
	require.NotNil(t, workers[0].DateOfBirth)
	assert.Equal(t, "1990-01-05", *workers[0].DateOfBirth)
	assert.Nil(t, workers[0].DateOfJoining)
	assert.Equal(t, "Al Smith", workers[1].Name)
}

func TestWorkers_ListEmptyIsNotNil(t *testing.T) {
	mock, store := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(listSQL)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	workers, err := store.ListWorkers(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, workers)
	assert.Empty(t, workers)
}

func TestWorkers_Create(t *testing.T) {
	mock, store := newMock(t)
	f := jane()

	mock.ExpectQuery(regexp.QuoteMeta(createSQL)).
		WithArgs(f.Args()...).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))

	id, err := store.CreateWorker(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
}

func TestWorkers_CreateDuplicate(t *testing.T) {
	mock, store := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(createSQL)).
		WithArgs(jane().Args()...).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: `duplicate key value violates unique constraint "workers_employee_id_key"`})

	_, err := store.CreateWorker(context.Background(), jane())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrDuplicate)

	var pgErr *pgconn.PgError
	assert.ErrorAs(t, err, &pgErr, "driver error stays reachable")
}

func TestWorkers_UpdateAndDeleteReportRowsAffected(t *testing.T) {
	mock, store := newMock(t)
	f := jane()

	mock.ExpectExec(regexp.QuoteMeta(updateSQL)).
		WithArgs(append(f.Args(), int64(3))...).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(regexp.QuoteMeta(deleteSQL)).
		WithArgs(int64(99)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	n, err := store.UpdateWorker(context.Background(), 3, f)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = store.DeleteWorker(context.Background(), 99)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestWorkers_InsertWorkersBatches(t *testing.T) {
	mock, store := newMock(t)

	rows := []core.WorkerFields{jane(), jane(), jane()}
	rows[1].EmployeeID = "E002"
	rows[2].EmployeeID = "E003"

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(insertSQL(2))).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectExec(regexp.QuoteMeta(insertSQL(1)) + "$").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	n, err := store.InsertWorkers(context.Background(), rows, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestWorkers_InsertWorkersRollsBackOnFailure(t *testing.T) {
	mock, store := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(insertSQL(2))).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	_, err := store.InsertWorkers(context.Background(), []core.WorkerFields{jane(), jane()}, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrDuplicate)
	assert.Contains(t, err.Error(), "insert rows 1-2")
}

func TestWorkers_InsertWorkersNothingToDo(t *testing.T) {
	_, store := newMock(t)

	n, err := store.InsertWorkers(context.Background(), nil, 10)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestWorkers_InsertWorkersBeginFails(t *testing.T) {
	mock, store := newMock(t)
	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	_, err := store.InsertWorkers(context.Background(), []core.WorkerFields{jane()}, 10)
	require.Error(t, err)
	assert.Equal(t, "DB004", core.MapError(err).Code)
}

func TestWorkers_EnsureSchema(t *testing.T) {
	mock, store := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS workers")).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	require.NoError(t, store.EnsureSchema(context.Background()))
}
