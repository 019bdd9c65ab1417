package core

// error_messages.go maps technical errors to messages a client can act on.
//
// Each message has a code that can be quoted to support:
//
//	DB001  duplicate key                 DB004  connection refused
//	DB002  unique constraint             DB005  connection reset
//	DB003  not-null constraint           DB006  database timeout
//	VAL001 missing required column       VAL002 required field empty
//	VAL003 field format                  VAL004 invalid UTF-8
//	FILE001 file too large               FILE002 invalid csv
//	FILE003 upload could not be staged   FILE004 no file
//	IMP001 no valid rows                 IMP002 too many imports
//	IMP003 request timed out
//	REQ001 invalid request body          REQ002 invalid worker id
//	REQ003 worker not found
//	RATE001 rate limited
//	ERR000 anything else; check the logs for the technical error
//
// Sentinel and typed errors are matched first with errors.Is/As. The
// remaining patterns are matched case-insensitively against the error text,
// first match wins, so specific patterns come before general ones.

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgDuplicate = UserMessage{
		Message: "A worker with this employee ID already exists",
		Action:  "Remove duplicate employee IDs and try again",
		Code:    "DB001",
	}
	msgInvalidCSV = UserMessage{
		Message: "File is not a valid CSV",
		Action:  "Ensure the file is comma-separated with properly quoted fields",
		Code:    "FILE002",
	}
)

// sentinelMessages is checked with errors.Is before any text matching.
var sentinelMessages = []struct {
	target error
	msg    UserMessage
}{
	{ErrDuplicate, msgDuplicate},
	{ErrNoFile, UserMessage{
		Message: "No file was selected",
		Action:  "Please select a CSV file to upload",
		Code:    "FILE004",
	}},
	{ErrNoValidRows, UserMessage{
		Message: "No valid rows in CSV file",
		Action:  "Check the rejected rows and fix the listed fields",
		Code:    "IMP001",
	}},
	{ErrTooManyUploads, UserMessage{
		Message: "System is busy processing other imports",
		Action:  "Please wait a moment and try again",
		Code:    "IMP002",
	}},
	{context.DeadlineExceeded, UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller file or try again later",
		Code:    "IMP003",
	}},
	{ErrWorkerNotFound, UserMessage{
		Message: "Worker not found",
		Action:  "Refresh the worker list and try again",
		Code:    "REQ003",
	}},
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Database constraints
	{"duplicate key", msgDuplicate},
	{"violates unique", UserMessage{
		Message: "A duplicate value was found",
		Action:  "Review your data for duplicate values",
		Code:    "DB002",
	}},
	{"violates not-null", UserMessage{
		Message: "A required value is missing",
		Action:  "Fill in every worker field",
		Code:    "DB003",
	}},

	// Database connectivity
	{"connection refused", UserMessage{
		Message: "Unable to connect to database",
		Action:  "Please try again in a few moments",
		Code:    "DB004",
	}},
	{"connection reset", UserMessage{
		Message: "Database connection was interrupted",
		Action:  "Please try again",
		Code:    "DB005",
	}},
	{"timeout", UserMessage{
		Message: "Database operation timed out",
		Action:  "Please try again later",
		Code:    "DB006",
	}},

	// Row validation
	{"missing required column", UserMessage{
		Message: "Required column is missing from CSV",
		Action:  "Include every worker column in the header row",
		Code:    "VAL001",
	}},
	{"required field is empty", UserMessage{
		Message: "Required field is empty",
		Action:  "Ensure all required columns have values",
		Code:    "VAL002",
	}},
	{"invalid utf-8", UserMessage{
		Message: "The file is not UTF-8 encoded",
		Action:  "Save the CSV as UTF-8 and upload it again",
		Code:    "VAL004",
	}},
	{"must ", UserMessage{
		Message: "A field has the wrong format",
		Action:  "Check names, employee IDs, emails and phone numbers",
		Code:    "VAL003",
	}},

	// Files
	{"request body too large", UserMessage{
		Message: "File exceeds the maximum size limit",
		Action:  "Split the file into smaller chunks",
		Code:    "FILE001",
	}},
	{"parse csv", msgInvalidCSV},
	{"stage ", UserMessage{
		Message: "The uploaded file could not be saved",
		Action:  "Please try again",
		Code:    "FILE003",
	}},

	// Requests
	{"invalid request body", UserMessage{
		Message: "Request body is not valid JSON",
		Action:  "Send the worker fields as a JSON object",
		Code:    "REQ001",
	}},
	{"invalid worker id", UserMessage{
		Message: "Worker id is missing or not a number",
		Action:  "Send the numeric id of an existing worker",
		Code:    "REQ002",
	}},
	{"rate limit", UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It returns the zero UserMessage for a nil error and ERR000 when nothing
// matches.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, s := range sentinelMessages {
		if errors.Is(err, s.target) {
			return s.msg
		}
	}

	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return msgInvalidCSV
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError renders "Message (Code: XXX). Action" for display.
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}
