package fee

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/memberfin/memberfin/pkg/interval"
	"github.com/memberfin/memberfin/pkg/ledger"
	"github.com/memberfin/memberfin/pkg/semester"
)

// SemesterFee charges the per-semester fee according to how long the member
// was liable during each semester.
type SemesterFee struct {
	base
	terms *semester.Terms
}

// NewSemesterFee creates the semester fee bound to a revenue account.
func NewSemesterFee(store *ledger.Store, account *ledger.Account, terms *semester.Terms) *SemesterFee {
	return &SemesterFee{base: base{account: account, store: store}, terms: terms}
}

// Compute intersects the member's liability history with every known
// semester. A reduced-fee liability trumps a regular one on overlap. The
// decision table, first match wins:
//
//  1. regular liability longer than the reduced-fee threshold: regular fee
//  2. regular liability longer than the grace period: reduced fee
//  3. reduced liability longer than the grace period: reduced fee
//  4. otherwise no charge
func (f *SemesterFee) Compute(m Member) ([]ledger.Posting, error) {
	regularIntervals, err := m.PropertyIntervals(PropertySemesterFee)
	if err != nil {
		return nil, err
	}
	reducedIntervals, err := m.PropertyIntervals(PropertyReducedSemesterFee)
	if err != nil {
		return nil, err
	}

	var debts []ledger.Posting
	for _, sem := range f.terms.All() {
		span := interval.NewSet(sem.Interval())
		regular := regularIntervals.Intersect(span)
		reduced := reducedIntervals.Intersect(span)

		// Reduced fee trumps regular fee on overlap.
		regular = regular.Difference(reduced)

		var amount decimal.Decimal
		var chargeable interval.Set
		switch {
		case !regular.IsEmpty() && regular.Length() > sem.ReducedSemesterFeeThreshold:
			amount = sem.RegularSemesterFee
			chargeable = regular
		case !regular.IsEmpty() && regular.Length() > sem.GracePeriod:
			amount = sem.ReducedSemesterFee
			chargeable = regular
		case !reduced.IsEmpty() && reduced.Length() > sem.GracePeriod:
			amount = sem.ReducedSemesterFee
			chargeable = reduced
		default:
			continue
		}
		if !amount.IsPositive() {
			continue
		}
		debts = append(debts, ledger.Posting{
			Description: fmt.Sprintf("Semester fee %s", sem.Name),
			ValidOn:     chargeable.Intervals()[0].Lower.Value(),
			Amount:      amount,
		})
	}
	return debts, nil
}
