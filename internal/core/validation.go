package core

// validation.go decides whether an imported CSV row may become a worker.
//
// Every worker column is required. Four of them also carry a format rule;
// dates only need to be present, since unparsable dates are stored as NULL.
// Values are checked exactly as they appear in the file. A cell holding the
// replacement character came from bytes that were not UTF-8 and is rejected
// for its encoding before any format rule runs.
// ValidateRow reports every failure for the import result; ValidateRowFirst
// stops at the first one.

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ValidationError represents a single validation error for a field.
type ValidationError struct {
	Field   string // Field/column name
	Value   string // The invalid value
	Message string // Human-readable error message
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ValidationResult contains the result of validating a row.
type ValidationResult struct {
	Valid  bool              // True if all validations passed
	Errors []ValidationError // List of validation errors (empty if Valid)
}

// Reason joins the errors into one line suitable for a rejected-row report.
func (r ValidationResult) Reason() string {
	parts := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

// FieldRule is the acceptance rule for one worker column.
type FieldRule struct {
	Field   string
	Pattern *regexp.Regexp // nil means presence is enough
	Message string         // shown when Pattern does not match
}

var (
	namePattern       = regexp.MustCompile(`^[a-zA-Z ]+$`)
	employeeIDPattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	emailPattern      = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	phonePattern      = regexp.MustCompile(`^\d{10}$`)
)

const msgInvalidUTF8 = "contains invalid UTF-8 (save the file as UTF-8)"

// WorkerRules are the import acceptance rules, in WorkerColumns order.
var WorkerRules = []FieldRule{
	{Field: "name", Pattern: namePattern, Message: "must contain only letters and spaces"},
	{Field: "employee_id", Pattern: employeeIDPattern, Message: "must contain only letters and digits"},
	{Field: "email", Pattern: emailPattern, Message: "must be a valid email address"},
	{Field: "phone_number", Pattern: phonePattern, Message: "must be exactly 10 digits"},
	{Field: "department"},
	{Field: "date_of_birth"},
	{Field: "date_of_joining"},
	{Field: "role"},
}

// ValidateRow checks a parsed row against WorkerRules and returns all errors.
// A column missing from fields means the CSV header lacked it.
func ValidateRow(fields map[string]string) ValidationResult {
	result := ValidationResult{Valid: true}

	for _, rule := range WorkerRules {
		if err := checkRule(rule, fields); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, *err)
		}
	}

	return result
}

// ValidateRowFirst validates a row and returns the first error only.
func ValidateRowFirst(fields map[string]string) error {
	for _, rule := range WorkerRules {
		if err := checkRule(rule, fields); err != nil {
			return *err
		}
	}
	return nil
}

func checkRule(rule FieldRule, fields map[string]string) *ValidationError {
	raw, ok := fields[rule.Field]
	if !ok {
		return &ValidationError{Field: rule.Field, Message: "missing required column"}
	}

	if raw == "" {
		return &ValidationError{Field: rule.Field, Message: "required field is empty"}
	}

	if !utf8.ValidString(raw) || strings.ContainsRune(raw, utf8.RuneError) {
		return &ValidationError{Field: rule.Field, Value: raw, Message: msgInvalidUTF8}
	}

	if rule.Pattern != nil && !rule.Pattern.MatchString(raw) {
		return &ValidationError{Field: rule.Field, Value: raw, Message: rule.Message}
	}

	return nil
}

// ValidateHeaders reports the worker columns absent from a CSV header.
// Missing columns don't abort an import; every row is rejected instead.
func ValidateHeaders(idx HeaderIndex) []string {
	var missing []string
	for _, col := range WorkerColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

// RowToFields builds the storable tuple from a validated row.
func RowToFields(fields map[string]string) WorkerFields {
	return WorkerInput{
		Name:          fields["name"],
		EmployeeID:    fields["employee_id"],
		Email:         fields["email"],
		PhoneNumber:   fields["phone_number"],
		Department:    fields["department"],
		DateOfBirth:   fields["date_of_birth"],
		DateOfJoining: fields["date_of_joining"],
		Role:          fields["role"],
	}.Fields()
}
