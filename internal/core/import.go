package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/workerdesk/internal/logging"
	"github.com/JonMunkholm/workerdesk/internal/metrics"
)

// ImportWorkers runs one CSV upload through the import pipeline: it stages
// src under fileName, stream-parses and validates it, and inserts every
// accepted row in a single atomic batch.
//
// The returned result is non-nil whenever the file was staged, including
// on ErrNoValidRows, *ParseError and *InsertError, so callers can report
// rejected rows. The staged file is removed before ImportWorkers returns.
func (s *Service) ImportWorkers(ctx context.Context, fileName string, src io.Reader) (result *ImportResult, err error) {
	if src == nil {
		return nil, ErrNoFile
	}

	start := time.Now()
	result = &ImportResult{
		ImportID:     uuid.NewString(),
		FileName:     StagedName(fileName),
		RejectedRows: []RejectedRow{},
	}
	logger := logging.WithFields(ctx, "import_id", result.ImportID, "file", result.FileName)

	outcome := metrics.OutcomeError
	defer func() {
		result.Duration = time.Since(start)
		result.DurationMS = result.Duration.Milliseconds()
		metrics.ObserveImport(outcome, result.AcceptedCount, result.RejectedCount, result.Duration.Seconds())
	}()

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	if err := s.limiter.Acquire(ctx); err != nil {
		if errors.Is(err, ErrTooManyUploads) {
			outcome = metrics.OutcomeBusy
		}
		logger.Warn("import slot unavailable", "error", err)
		return result, err
	}
	defer s.limiter.Release()

	staged, err := s.staging.Stage(fileName, src)
	if err != nil {
		return result, err
	}
	defer func() {
		if relErr := staged.Release(); relErr != nil {
			logger.Error("staged file not removed", "path", staged.Path, "error", relErr)
		}
	}()

	logger.Info("import started", "bytes", staged.Size)

	accepted, err := s.readStaged(ctx, staged, result)
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			outcome = metrics.OutcomeParseError
			result.Message = MsgParseFailed
		}
		logger.Error("import aborted while reading", "error", err)
		return result, err
	}

	if len(accepted) == 0 {
		outcome = metrics.OutcomeNoValidRows
		result.Message = MsgNoValidRows
		logger.Warn("import has no valid rows", "rejected", result.RejectedCount)
		return result, ErrNoValidRows
	}

	inserted, err := s.store.InsertWorkers(ctx, accepted, s.opts.BatchSize)
	if err != nil {
		outcome = metrics.OutcomeInsertError
		result.Message = MsgInsertFailed
		logger.Error("import insert failed", "rows", len(accepted), "error", err)
		return result, &InsertError{Rows: len(accepted), Err: err}
	}

	outcome = metrics.OutcomeSuccess
	result.InsertedCount = inserted
	result.Message = MsgImportSucceeded
	logger.Info("import completed",
		"accepted", result.AcceptedCount,
		"rejected", result.RejectedCount,
		"inserted", inserted,
	)
	return result, nil
}

// readStaged parses and validates the staged file, filling in the row
// counts and rejected rows of result. It returns the accepted rows.
func (s *Service) readStaged(ctx context.Context, staged *StagedFile, result *ImportResult) ([]WorkerFields, error) {
	f, err := staged.Open()
	if err != nil {
		return nil, fmt.Errorf("open staged %s: %w", staged.Name, err)
	}
	defer f.Close()

	reader, counter := WrapForStreaming(f)
	defer func() {
		result.BytesRead = counter.BytesRead()
		result.InvalidUTF8Bytes = reader.Replaced()
	}()

	parser, err := NewRowParser(reader)
	if err != nil {
		return nil, err
	}

	// A header missing worker columns rejects every row with the same reason;
	// log it once rather than per row.
	if missing := ValidateHeaders(parser.Header()); len(missing) > 0 && len(parser.Header()) > 0 {
		logging.FromContext(ctx).Warn("csv header is missing worker columns",
			"import_id", result.ImportID, "missing", missing)
	}

	var accepted []WorkerFields
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := parser.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		v := ValidateRow(row.Fields)
		if !v.Valid {
			s.reject(result, RejectedRow{Row: row.Index, Line: row.Line, Reason: v.Reason()})
			continue
		}

		accepted = append(accepted, RowToFields(row.Fields))
		result.AcceptedCount++
	}

	if n := reader.Replaced(); n > 0 {
		logging.FromContext(ctx).Warn("csv contains invalid UTF-8",
			"import_id", result.ImportID, "bytes", n)
	}

	return accepted, nil
}

func (s *Service) reject(result *ImportResult, r RejectedRow) {
	result.RejectedCount++
	if len(result.RejectedRows) < s.opts.MaxRejectedReported {
		result.RejectedRows = append(result.RejectedRows, r)
	} else {
		result.Truncated = true
	}
}
