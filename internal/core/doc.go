// Package core provides the business logic for worker records and CSV imports.
//
// This package has no transport dependencies: the HTTP server and the
// workerctl CLI both drive it through [Service]. Storage is injected as a
// [WorkerStore], so the package never owns a database connection.
//
// # Import pipeline
//
// [Service.ImportWorkers] runs one upload through these stages:
//
//  1. Acquire a slot from the [UploadLimiter]
//  2. Stage the upload to disk under its base filename (see [Staging])
//  3. Stream-parse the staged file with a [RowParser] (BOM skipping, invalid UTF-8 marking)
//  4. Validate each row with [ValidateRow] and normalize its dates with [ToPgDate]
//  5. Insert every accepted row through [WorkerStore.InsertWorkers] as one batch
//
// The staged file is released on every exit path. Rejected rows are reported
// back in the [ImportResult] with the reason they failed.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a code for support reference:
//
//   - DB001-DB006: Database errors (duplicates, constraints, connections)
//   - VAL001-VAL004: Validation errors (formats, missing columns, encoding)
//   - FILE001-FILE004: File errors (size, format, staging, missing file)
//   - IMP001-IMP003: Import errors (no valid rows, busy, timeout)
//   - REQ001-REQ003: Request errors (bad body, bad id, unknown worker)
//   - RATE001: Rate limit exceeded
package core
