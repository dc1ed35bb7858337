package fee

import (
	"errors"

	"github.com/memberfin/memberfin/pkg/ledger"
	"github.com/memberfin/memberfin/pkg/semester"
)

const registrationFeeDescription = "Registration fee"

// RegistrationFee charges a one-off fee at the member's registration date.
type RegistrationFee struct {
	base
	terms *semester.Terms
}

// NewRegistrationFee creates the registration fee bound to a revenue account.
func NewRegistrationFee(store *ledger.Store, account *ledger.Account, terms *semester.Terms) *RegistrationFee {
	return &RegistrationFee{base: base{account: account, store: store}, terms: terms}
}

// Compute emits one debt dated at registration when the member held the
// registration_fee property at that instant and the covering semester
// charges a positive registration fee. When no semester covers the
// registration date, the fee is simply not assessed.
func (f *RegistrationFee) Compute(m Member) ([]ledger.Posting, error) {
	held, err := m.HasProperty(PropertyRegistrationFee, m.RegisteredAt())
	if err != nil {
		return nil, err
	}
	if !held {
		return nil, nil
	}

	sem, err := f.terms.ForDate(m.RegisteredAt())
	if errors.Is(err, semester.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !sem.RegistrationFee.IsPositive() {
		return nil, nil
	}
	return []ledger.Posting{{
		Description: registrationFeeDescription,
		ValidOn:     m.RegisteredAt(),
		Amount:      sem.RegistrationFee,
	}}, nil
}
