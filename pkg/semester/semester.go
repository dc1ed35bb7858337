// Package semester provides the semester table: date intervals with the fee
// parameters attached to them. The table is configured externally and is
// read-only here.
package semester

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/memberfin/memberfin/pkg/interval"
)

// ErrNotFound is returned when no semester covers a queried date.
var ErrNotFound = errors.New("no semester covers the given date")

// Semester is one term with its fee parameters.
type Semester struct {
	Name     string
	BeginsOn time.Time
	EndsOn   time.Time

	RegistrationFee    decimal.Decimal
	RegularSemesterFee decimal.Decimal
	ReducedSemesterFee decimal.Decimal
	// ReducedSemesterFeeThreshold is the liability duration above which the
	// regular fee applies instead of the reduced one.
	ReducedSemesterFeeThreshold time.Duration
	// GracePeriod is the liability duration below which no fee applies.
	GracePeriod time.Duration
	LateFee     decimal.Decimal
	// PaymentDeadline is how long a member may owe money before a late fee.
	PaymentDeadline time.Duration
	// AllowedOverdraft is the debt that never triggers a late fee.
	AllowedOverdraft decimal.Decimal
}

// Interval returns the closed date interval [BeginsOn, EndsOn].
func (s Semester) Interval() interval.Interval {
	return interval.ClosedInterval(s.BeginsOn, s.EndsOn)
}

// Contains reports whether the given date falls into the semester.
func (s Semester) Contains(date time.Time) bool {
	return s.Interval().Contains(date)
}

// Terms is the ordered collection of all configured semesters.
type Terms struct {
	semesters []Semester
}

// NewTerms builds a Terms collection, ordered ascending by BeginsOn.
func NewTerms(semesters []Semester) *Terms {
	sorted := make([]Semester, len(semesters))
	copy(sorted, semesters)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].BeginsOn.Before(sorted[j].BeginsOn)
	})
	return &Terms{semesters: sorted}
}

// All returns every semester in ascending order of BeginsOn.
func (t *Terms) All() []Semester {
	return t.semesters
}

// ForDate returns the semester covering the given date.
// It returns an error wrapping ErrNotFound when no semester covers it.
func (t *Terms) ForDate(date time.Time) (Semester, error) {
	for _, s := range t.semesters {
		if s.Contains(date) {
			return s, nil
		}
	}
	return Semester{}, fmt.Errorf("%w: %s", ErrNotFound, date.Format("2006-01-02"))
}
