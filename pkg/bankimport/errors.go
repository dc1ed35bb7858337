package bankimport

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatError reports malformed statement input: a bad currency code, an
// unparseable date or amount, an unknown bank account or wrongly ordered
// rows. It aborts the whole import; nothing is persisted.
type FormatError struct {
	Message string
	// Record is the offending record restored to its delimited form, empty
	// when the error concerns the file as a whole.
	Record string
	// Index is the 1-based record number including the header, zero when
	// the error concerns the file as a whole.
	Index int
	Cause error
}

func (e *FormatError) Error() string {
	msg := e.Message
	if e.Record != "" {
		msg = fmt.Sprintf("%s. Record %d: %s", msg, e.Index, strings.TrimSuffix(e.Record, "\n"))
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s\nCaused by:\n%v", msg, e.Cause)
	}
	return msg
}

func (e *FormatError) Unwrap() error {
	return e.Cause
}

// ConflictError reports a replace range found while aligning the statement
// file against already-stored activities. It aborts the whole import.
type ConflictError struct {
	// Stored are the database-side activities of the conflicting range.
	Stored []Activity
	// Incoming are the file-side activities of the conflicting range.
	Incoming []Activity
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("import conflict:\ndatabase bank account activities:\n%s\nfile bank account activities:\n%s",
		activityLines(e.Stored), activityLines(e.Incoming))
}

func activityLines(activities []Activity) string {
	lines := make([]string, len(activities))
	for i, a := range activities {
		lines[i] = a.String()
	}
	return strings.Join(lines, "\n")
}

// BalanceMismatchError reports that the computed balance after the import
// disagrees with the externally supplied expected balance. It aborts the
// whole import, including already-aligned inserts.
type BalanceMismatchError struct {
	Computed decimal.Decimal
	Expected decimal.Decimal
}

func (e *BalanceMismatchError) Error() string {
	return fmt.Sprintf("balance after import does not equal expected balance: %s != %s",
		e.Computed.String(), e.Expected.String())
}
