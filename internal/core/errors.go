package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNoFile means the upload request carried no file.
	ErrNoFile = errors.New("no file uploaded")

	// ErrNoValidRows means every data row of an import was rejected.
	ErrNoValidRows = errors.New("no valid rows in csv file")

	// ErrWorkerNotFound means no worker has the requested id.
	ErrWorkerNotFound = errors.New("worker not found")

	// ErrDuplicate marks a write rejected by a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate key")
)

// ParseError reports CSV that encoding/csv could not read.
type ParseError struct {
	Row int // data row being read when parsing failed; 0 for the header
	Err error
}

func (e *ParseError) Error() string {
	if e.Row == 0 {
		return fmt.Sprintf("parse csv header: %v", e.Err)
	}
	return fmt.Sprintf("parse csv row %d: %v", e.Row, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// InsertError reports a failed batch insert. None of the rows were stored.
type InsertError struct {
	Rows int
	Err  error
}

func (e *InsertError) Error() string {
	return fmt.Sprintf("bulk insert of %d rows: %v", e.Rows, e.Err)
}

func (e *InsertError) Unwrap() error { return e.Err }
