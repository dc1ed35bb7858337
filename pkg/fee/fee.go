// Package fee implements the idempotent fee-assessment engine: fee variants
// that compute debt sequences from member property history, and the
// diff-based reconciliation that posts only what is missing.
//
// Compute on any variant is a pure function of persisted state: running it
// twice against unchanged history yields identical sequences. That property
// is what makes repeated, possibly interrupted, batch runs safe.
package fee

import (
	"time"

	"github.com/memberfin/memberfin/pkg/interval"
	"github.com/memberfin/memberfin/pkg/ledger"
)

// Member property names evaluated by the fee variants.
const (
	PropertyRegistrationFee    = "registration_fee"
	PropertySemesterFee        = "semester_fee"
	PropertyReducedSemesterFee = "reduced_semester_fee"
	PropertyLateFee            = "late_fee"
)

// Member is the read-only collaborator the fee engine needs from the member
// subsystem.
type Member interface {
	// AccountID is the member's ledger account.
	AccountID() int64
	// RegisteredAt is the member's registration date.
	RegisteredAt() time.Time
	// HasProperty reports whether a named boolean property held at an instant.
	HasProperty(name string, at time.Time) (bool, error)
	// PropertyIntervals returns the ranges during which a property held.
	PropertyIntervals(name string) (interval.Set, error)
}

// Fee is one assessable fee kind, bound to a revenue account.
type Fee interface {
	// Account is the revenue account this fee posts against.
	Account() *ledger.Account
	// Compute returns every debt the member currently owes for this fee,
	// computed from first principles over all time, ascending by valid_on.
	// Zero amounts are never emitted.
	Compute(m Member) ([]ledger.Posting, error)
	// PostedTransactions returns the already-posted transactions between the
	// member's account and this fee's account, ascending by valid_on.
	PostedTransactions(m Member) ([]ledger.Posting, error)
}

// base carries the state shared by all fee variants.
type base struct {
	account *ledger.Account
	store   *ledger.Store
}

func (b *base) Account() *ledger.Account {
	return b.account
}

func (b *base) PostedTransactions(m Member) ([]ledger.Posting, error) {
	return b.store.FeePostings(m.AccountID(), b.account.ID)
}
