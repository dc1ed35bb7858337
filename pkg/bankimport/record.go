package bankimport

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const dateFormat = "2006-01-02"

// statementDateFormat is the localized date format of statement files.
const statementDateFormat = "02.01.06"

// fieldCount is the fixed number of columns in a statement record.
const fieldCount = 11

// Record is one raw statement row in file order: semicolon-delimited, fully
// quoted, exactly these eleven fields.
type Record struct {
	OurAccountNumber   string
	PostedOn           string
	ValidOn            string
	Type               string
	Reference          string
	OtherName          string
	OtherAccountNumber string
	OtherRoutingNumber string
	Amount             string
	Currency           string
	Info               string
}

func recordFromFields(fields []string) Record {
	return Record{
		OurAccountNumber:   fields[0],
		PostedOn:           fields[1],
		ValidOn:            fields[2],
		Type:               fields[3],
		Reference:          fields[4],
		OtherName:          fields[5],
		OtherAccountNumber: fields[6],
		OtherRoutingNumber: fields[7],
		Amount:             fields[8],
		Currency:           fields[9],
		Info:               fields[10],
	}
}

// Restore reconstructs the record in the original delimited format, for
// error messages.
func (r Record) Restore() string {
	fields := []string{
		r.OurAccountNumber, r.PostedOn, r.ValidOn, r.Type, r.Reference,
		r.OtherName, r.OtherAccountNumber, r.OtherRoutingNumber,
		r.Amount, r.Currency, r.Info,
	}
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ";") + "\n"
}

// Activity is one observed posting on a bank account. Activities are created
// only by the importer and never edited.
type Activity struct {
	ID                 int64
	BankAccountID      int64
	Amount             decimal.Decimal
	Reference          string
	OriginalReference  string
	OtherName          string
	OtherAccountNumber string
	OtherRoutingNumber string
	PostedOn           time.Time
	ValidOn            time.Time
	ImportedAt         time.Time
	BatchID            string
}

// EqualFact reports whether two activities describe the same observed
// posting. Import bookkeeping fields (id, imported_at, batch) are excluded
// so that re-imports recognize previously stored rows.
func (a Activity) EqualFact(other Activity) bool {
	return a.BankAccountID == other.BankAccountID &&
		a.Amount.Equal(other.Amount) &&
		a.Reference == other.Reference &&
		a.OriginalReference == other.OriginalReference &&
		a.OtherName == other.OtherName &&
		a.OtherAccountNumber == other.OtherAccountNumber &&
		a.OtherRoutingNumber == other.OtherRoutingNumber &&
		a.PostedOn.Equal(other.PostedOn) &&
		a.ValidOn.Equal(other.ValidOn)
}

func (a Activity) String() string {
	return strings.Join([]string{
		a.ValidOn.Format(dateFormat),
		a.PostedOn.Format(dateFormat),
		a.Amount.StringFixed(2),
		a.OtherName,
		a.OtherAccountNumber,
		a.OtherRoutingNumber,
		a.Reference,
	}, " | ")
}
