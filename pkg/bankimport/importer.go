// Package bankimport parses external bank statement files, normalizes their
// bank-proprietary reference fields and merges them into the stored activity
// rows via diff-based reconciliation, with an all-or-nothing balance check.
package bankimport

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/memberfin/memberfin/pkg/diff"
)

// Importer merges statement files into the activity store.
type Importer struct {
	store    *Store
	currency string
}

// NewImporter creates an importer accepting only the given currency code.
func NewImporter(store *Store, currency string) *Importer {
	return &Importer{store: store, currency: currency}
}

// Result summarizes a successful import.
type Result struct {
	BatchID string
	// Rows is the number of data rows in the file.
	Rows int
	// Inserted is the number of new activity rows.
	Inserted int
	// Known is the number of rows that were already stored.
	Known int
}

// Import reads a statement file and merges it with the stored activities.
//
// The file must be semicolon-delimited, fully quoted, with a header row and
// data rows in descending order of valid_on. New rows are inserted, rows
// already stored are suppressed, conflicting rows abort the import. The
// balance just before the earliest imported date plus all inserted amounts
// must equal expectedBalance; any failure aborts the import as a single
// unit with nothing persisted.
func (imp *Importer) Import(r io.Reader, fileName string, expectedBalance decimal.Decimal, importedAt time.Time) (*Result, error) {
	activities, err := imp.parse(r)
	if err != nil {
		return nil, err
	}

	// activities is in file order, newest first. The overlapping window of
	// stored rows starts at the earliest imported date.
	earliest := activities[len(activities)-1].ValidOn
	balance, err := imp.store.BalanceBefore(earliest)
	if err != nil {
		return nil, err
	}
	stored, err := imp.store.ActivitiesSince(earliest)
	if err != nil {
		return nil, err
	}

	incoming := make([]Activity, len(activities))
	for i, a := range activities {
		incoming[len(activities)-1-i] = a
	}

	var inserts []Activity
	for _, op := range diff.Align(stored, incoming, Activity.EqualFact) {
		switch op.Tag {
		case diff.Insert:
			inserts = append(inserts, incoming[op.J1:op.J2]...)
		case diff.Delete:
			// Stored rows missing from the file are kept without complaint.
		case diff.Replace:
			return nil, &ConflictError{
				Stored:   stored[op.I1:op.I2],
				Incoming: incoming[op.J1:op.J2],
			}
		}
	}

	// The expected balance covers everything up to the newest imported date:
	// the stored window rows plus whatever this import adds.
	for _, a := range stored {
		balance = balance.Add(a.Amount)
	}
	for _, a := range inserts {
		balance = balance.Add(a.Amount)
	}
	if !balance.Equal(expectedBalance) {
		return nil, &BalanceMismatchError{Computed: balance, Expected: expectedBalance}
	}

	batch := Batch{
		ID:            uuid.NewString(),
		FileName:      fileName,
		RowCount:      len(activities),
		InsertedCount: len(inserts),
		ImportedAt:    importedAt,
	}
	if err := imp.store.CommitBatch(batch, inserts); err != nil {
		return nil, err
	}

	slog.Info("imported bank statement",
		"file", fileName,
		"batch", batch.ID,
		"rows", len(activities),
		"inserted", len(inserts))
	return &Result{
		BatchID:  batch.ID,
		Rows:     len(activities),
		Inserted: len(inserts),
		Known:    len(activities) - len(inserts),
	}, nil
}

// parse reads the raw file into activities, newest first, and validates the
// ordering precondition.
func (imp *Importer) parse(r io.Reader) ([]Activity, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = fieldCount

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, &FormatError{Message: "could not read statement file", Cause: err}
	}
	// The first record is the header.
	if len(rows) < 2 {
		return nil, &FormatError{Message: "no data present"}
	}

	activities := make([]Activity, 0, len(rows)-1)
	for i, fields := range rows[1:] {
		record := recordFromFields(fields)
		activity, err := imp.processRecord(i+2, record)
		if err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}

	for i := 1; i < len(activities); i++ {
		if activities[i].ValidOn.After(activities[i-1].ValidOn) {
			return nil, &FormatError{
				Message: "rows are not sorted by transaction date in descending order",
			}
		}
	}
	return activities, nil
}

// processRecord validates and converts one data row. index is the 1-based
// record number including the header.
func (imp *Importer) processRecord(index int, record Record) (Activity, error) {
	if record.Currency != imp.currency {
		return Activity{}, &FormatError{
			Message: fmt.Sprintf("unsupported currency %q", record.Currency),
			Record:  record.Restore(),
			Index:   index,
		}
	}

	bankAccount, err := imp.store.BankAccountByNumber(record.OurAccountNumber)
	if err != nil {
		return Activity{}, err
	}
	if bankAccount == nil {
		return Activity{}, &FormatError{
			Message: fmt.Sprintf("no bank account with account number %q", record.OurAccountNumber),
			Record:  record.Restore(),
			Index:   index,
		}
	}

	validOn, err := time.Parse(statementDateFormat, record.ValidOn)
	if err != nil {
		return Activity{}, &FormatError{
			Message: "illegal date format",
			Record:  record.Restore(),
			Index:   index,
			Cause:   err,
		}
	}
	postedOn, err := time.Parse(statementDateFormat, record.PostedOn)
	if err != nil {
		return Activity{}, &FormatError{
			Message: "illegal date format",
			Record:  record.Restore(),
			Index:   index,
			Cause:   err,
		}
	}

	amount, err := parseAmount(record.Amount)
	if err != nil {
		return Activity{}, &FormatError{
			Message: fmt.Sprintf("illegal amount format %q", record.Amount),
			Record:  record.Restore(),
			Index:   index,
			Cause:   err,
		}
	}

	return Activity{
		BankAccountID:      bankAccount.ID,
		Amount:             amount,
		Reference:          CleanupReference(record.Reference),
		OriginalReference:  record.Reference,
		OtherName:          record.OtherName,
		OtherAccountNumber: record.OtherAccountNumber,
		OtherRoutingNumber: record.OtherRoutingNumber,
		PostedOn:           postedOn,
		ValidOn:            validOn,
	}, nil
}

// parseAmount parses the localized decimal format with a comma separator and
// requires whole minor units.
func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
	if err != nil {
		return decimal.Zero, err
	}
	if !amount.Shift(2).IsInteger() {
		return decimal.Zero, fmt.Errorf("amount %s has fractional cents", amount.String())
	}
	return amount, nil
}
