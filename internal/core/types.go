package core

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// WorkerColumns lists the worker attributes in storage and CSV order.
// Import headers are matched against these names case-insensitively.
var WorkerColumns = []string{
	"name",
	"employee_id",
	"email",
	"phone_number",
	"department",
	"date_of_birth",
	"date_of_joining",
	"role",
}

// Worker is a stored worker record as returned to clients.
// Dates are canonical YYYY-MM-DD strings, or nil when unknown.
type Worker struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	EmployeeID    string  `json:"employee_id"`
	Email         string  `json:"email"`
	PhoneNumber   string  `json:"phone_number"`
	Department    string  `json:"department"`
	DateOfBirth   *string `json:"date_of_birth"`
	DateOfJoining *string `json:"date_of_joining"`
	Role          string  `json:"role"`
}

// WorkerInput carries raw worker attributes from a request body or CLI.
// Dates are in whatever form the client sent.
type WorkerInput struct {
	Name          string
	EmployeeID    string
	Email         string
	PhoneNumber   string
	Department    string
	DateOfBirth   string
	DateOfJoining string
	Role          string
}

// Fields normalizes the input into the storable tuple. Unparsable dates
// become NULL.
func (in WorkerInput) Fields() WorkerFields {
	return WorkerFields{
		Name:          in.Name,
		EmployeeID:    in.EmployeeID,
		Email:         in.Email,
		PhoneNumber:   in.PhoneNumber,
		Department:    in.Department,
		DateOfBirth:   ToPgDate(in.DateOfBirth),
		DateOfJoining: ToPgDate(in.DateOfJoining),
		Role:          in.Role,
	}
}

// WorkerFields is the normalized 8-attribute tuple written to storage.
type WorkerFields struct {
	Name          string
	EmployeeID    string
	Email         string
	PhoneNumber   string
	Department    string
	DateOfBirth   pgtype.Date
	DateOfJoining pgtype.Date
	Role          string
}

// Args returns the values in WorkerColumns order, ready to bind to a statement.
func (f WorkerFields) Args() []any {
	return []any{
		f.Name,
		f.EmployeeID,
		f.Email,
		f.PhoneNumber,
		f.Department,
		f.DateOfBirth,
		f.DateOfJoining,
		f.Role,
	}
}

// WorkerStore is the persistence boundary used by Service.
// Implemented by store.Workers on top of a pgx pool.
type WorkerStore interface {
	ListWorkers(ctx context.Context) ([]Worker, error)
	CreateWorker(ctx context.Context, f WorkerFields) (int64, error)
	// UpdateWorker and DeleteWorker return the number of rows affected.
	UpdateWorker(ctx context.Context, id int64, f WorkerFields) (int64, error)
	DeleteWorker(ctx context.Context, id int64) (int64, error)
	// InsertWorkers writes all rows atomically, batchSize rows per statement.
	InsertWorkers(ctx context.Context, rows []WorkerFields, batchSize int) (int64, error)
	Ping(ctx context.Context) error
}

// HeaderIndex maps column names to their position in the CSV row.
type HeaderIndex map[string]int

// RejectedRow describes one CSV data row that failed validation.
type RejectedRow struct {
	Row    int    `json:"row"`  // 1-based data row, header excluded
	Line   int    `json:"line"` // line in the file where the record starts
	Reason string `json:"reason"`
}

// ImportResult contains the outcome of one CSV import.
type ImportResult struct {
	ImportID      string        `json:"import_id"`
	FileName      string        `json:"file_name"`
	Message       string        `json:"message"`
	AcceptedCount int           `json:"accepted_count"`
	InsertedCount int64         `json:"inserted_count"`
	RejectedCount int           `json:"rejected_count"`
	RejectedRows  []RejectedRow `json:"rejected_rows"`
	// Truncated is set when more rows were rejected than are listed.
	Truncated bool  `json:"truncated,omitempty"`
	BytesRead int64 `json:"bytes_read"`
	// InvalidUTF8Bytes counts bytes that were not UTF-8. Rows containing
	// them are rejected with an encoding reason.
	InvalidUTF8Bytes int64         `json:"invalid_utf8_bytes,omitempty"`
	Duration         time.Duration `json:"-"`
	DurationMS       int64         `json:"duration_ms"`
}

// Messages returned to clients for import outcomes.
const (
	MsgImportSucceeded = "Workers added successfully."
	MsgNoFile          = "No file uploaded."
	MsgNoValidRows     = "No valid rows in CSV file."
	MsgParseFailed     = "Error processing the CSV file."
	MsgInsertFailed    = "Bulk insert failed. Check for duplicates."
)
