package core

// convert.go turns user-supplied date strings into canonical calendar dates.
//
// Clients and spreadsheets send dates in many shapes (ISO, US slashes,
// JavaScript timestamps, "Jan 2, 2006"). Everything that parses is reduced to
// a bare calendar date; everything else becomes NULL rather than an error.

import (
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// DateLayout is the canonical rendering of a worker date.
const DateLayout = "2006-01-02"

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would result in dates more than this many years in the future
// are assumed to be in the previous century.
var TwoDigitYearPivot = 20

// Date layouts split by year format for proper 2-digit year handling.
var (
	// timestampLayouts carry a time of day; only the calendar date is kept,
	// read in the timestamp's own offset.
	timestampLayouts = []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
	}
	fourDigitYearLayouts = []string{
		DateLayout, "2006/01/02", "2006.01.02",
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"Jan 2, 2006", "January 2, 2006", "2 Jan 2006", "2 January 2006",
		"20060102",
	}
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
)

// ToPgDate converts a string to pgtype.Date at UTC midnight.
// Returns Valid=false for empty or unparsable input.
func ToPgDate(s string) pgtype.Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Date{Valid: false}
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return pgtype.Date{Time: dateOnly(t), Valid: true}
		}
	}

	// 4-digit year layouts are unambiguous about the century
	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return pgtype.Date{Time: dateOnly(t), Valid: true}
		}
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot

	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return pgtype.Date{Time: dateOnly(t), Valid: true}
		}
	}

	return pgtype.Date{Valid: false}
}

// NormalizeDate renders s as YYYY-MM-DD. The second result is false when s is
// empty or not a recognizable date. NormalizeDate is idempotent on its output.
func NormalizeDate(s string) (string, bool) {
	d := ToPgDate(s)
	if !d.Valid {
		return "", false
	}
	return d.Time.Format(DateLayout), true
}

// FormatDate renders a stored date for clients; NULL and infinite dates map to nil.
func FormatDate(d pgtype.Date) *string {
	if !d.Valid || d.InfinityModifier != pgtype.Finite {
		return nil
	}
	s := d.Time.Format(DateLayout)
	return &s
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MakeHeaderIndex creates a HeaderIndex from a CSV header row.
// Names are matched exactly as written; the first occurrence of a repeated
// column wins.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		if _, dup := idx[h]; dup {
			continue
		}
		idx[h] = i
	}
	return idx
}
