package fee

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/memberfin/memberfin/pkg/ledger"
	"github.com/memberfin/memberfin/pkg/semester"
)

// LateFee charges a fee when a member's debt stays above the allowed
// overdraft past the payment deadline.
type LateFee struct {
	base
	terms *semester.Terms
	// calculateUntil is the date up to which late fees are evaluated,
	// usually the date of the last bank import.
	calculateUntil time.Time
}

// NewLateFee creates the late fee bound to a revenue account. Late fees are
// evaluated up to calculateUntil.
func NewLateFee(store *ledger.Store, account *ledger.Account, terms *semester.Terms, calculateUntil time.Time) *LateFee {
	return &LateFee{
		base:           base{account: account, store: store},
		terms:          terms,
		calculateUntil: calculateUntil,
	}
}

// Compute scans all transactions on the member's account that are not
// transfers to or from this fee's own account, ordered by date, accumulating
// a running balance (positive means the member owes money). Whenever the gap
// after the last charge exceeds the payment deadline while the balance
// exceeds the allowed overdraft of the semester covering the gap's start, a
// late fee is due one day after the deadline, provided that date falls into
// the member's late_fee liability.
func (f *LateFee) Compute(m Member) ([]ledger.Posting, error) {
	entries, err := f.store.NonFeePostings(m.AccountID(), f.account.ID)
	if err != nil {
		return nil, err
	}
	// Sentinel entry so that an overdue gap still open at the cutoff date is
	// evaluated as well.
	entries = append(entries, ledger.DatedAmount{ValidOn: f.calculateUntil, Amount: decimal.Zero})

	liability, err := m.PropertyIntervals(PropertyLateFee)
	if err != nil {
		return nil, err
	}

	var debts []ledger.Posting
	balance := decimal.Zero
	lastCharge := entries[0].ValidOn
	for _, entry := range entries {
		if entry.Amount.IsPositive() {
			lastCharge = entry.ValidOn
			balance = balance.Add(entry.Amount)
			continue
		}

		gap := entry.ValidOn.Sub(lastCharge)
		sem, err := f.terms.ForDate(lastCharge)
		if err != nil {
			// Unlike the registration fee, a semester gap here is a
			// configuration error and propagates.
			return nil, err
		}
		if balance.GreaterThan(sem.AllowedOverdraft) && gap > sem.PaymentDeadline {
			validOn := lastCharge.Add(sem.PaymentDeadline + 24*time.Hour)
			if liability.Contains(validOn) && sem.LateFee.IsPositive() {
				debts = append(debts, ledger.Posting{
					Description: fmt.Sprintf("Late fee for overdue payment from %s", lastCharge.Format("2006-01-02")),
					ValidOn:     validOn,
					Amount:      sem.LateFee,
				})
			}
		}
		balance = balance.Add(entry.Amount)
	}
	return debts, nil
}
