// Package ledger implements the double-entry ledger: accounts, transactions
// and balanced splits, together with the atomic posting primitives.
//
// Transactions are immutable after creation; corrections are new
// transactions, never edits. The one consistency check that is never
// bypassed is that the signed amounts of a transaction's splits sum to zero.
package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AccountType tags an account with its role in the books.
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// Account is a ledger account. Its balance is always derived from its
// splits, never stored.
type Account struct {
	ID   int64
	Name string
	Type AccountType
}

// Split is one signed leg of a transaction, attributed to one account.
// A debit is represented as a negative amount, a credit as a positive one.
type Split struct {
	ID            int64
	TransactionID int64
	AccountID     int64
	Amount        decimal.Decimal
}

// Transaction is an immutable set of splits summing to zero.
type Transaction struct {
	ID          int64
	Description string
	Author      string
	ValidOn     time.Time
	PostedAt    time.Time
	Splits      []Split
}

// Posting is the (description, valid_on, amount) view of a fee-relevant
// transaction, as seen from one account. The fee engine computes and
// reconciles sequences of these.
type Posting struct {
	Description string
	ValidOn     time.Time
	Amount      decimal.Decimal
}

// Equal reports whether two postings describe the same accounting fact.
func (p Posting) Equal(other Posting) bool {
	return p.Description == other.Description &&
		p.ValidOn.Equal(other.ValidOn) &&
		p.Amount.Equal(other.Amount)
}

// DatedAmount is a per-transaction amount on one account, used for running
// balance scans.
type DatedAmount struct {
	ValidOn time.Time
	Amount  decimal.Decimal
}

// ImbalanceError reports a posting whose splits do not sum to zero, or an
// amount that is not representable in whole minor units. It is always fatal
// to that posting and never auto-corrected.
type ImbalanceError struct {
	Description string
	Residual    decimal.Decimal
}

func (e *ImbalanceError) Error() string {
	return fmt.Sprintf("imbalanced posting %q: splits sum to %s, want 0",
		e.Description, e.Residual.String())
}

// centsFromDecimal converts an amount to integer cents. It fails when the
// amount carries fractional minor units.
func centsFromDecimal(description string, amount decimal.Decimal) (int64, error) {
	cents := amount.Shift(2)
	if !cents.IsInteger() {
		return 0, &ImbalanceError{Description: description, Residual: amount}
	}
	return cents.IntPart(), nil
}

// decimalFromCents converts integer cents back to a decimal amount.
func decimalFromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
