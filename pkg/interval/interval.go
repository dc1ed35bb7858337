// Package interval provides bounded and unbounded intervals over dates and a
// normalized interval-set algebra (intersection, union, difference, length).
//
// Dates are carried as time.Time values; callers are expected to pass civil
// dates (midnight UTC). Open and closed endpoints are kept distinct, so the
// length of a set is independent of how its intervals are bounded.
package interval

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// Bound is one endpoint of an interval: unbounded, or a closed/open value.
type Bound struct {
	value   time.Time
	closed  bool
	bounded bool
}

// Closed returns a bound that includes its endpoint value.
func Closed(t time.Time) Bound {
	return Bound{value: t, closed: true, bounded: true}
}

// Open returns a bound that excludes its endpoint value.
func Open(t time.Time) Bound {
	return Bound{value: t, bounded: true}
}

// Unbounded returns the bound without an endpoint.
func Unbounded() Bound {
	return Bound{}
}

// Value returns the endpoint value. It is only meaningful for bounded bounds.
func (b Bound) Value() time.Time { return b.value }

// IsClosed reports whether the bound includes its endpoint.
func (b Bound) IsClosed() bool { return b.closed }

// IsBounded reports whether the bound has an endpoint at all.
func (b Bound) IsBounded() bool { return b.bounded }

// Interval is a pair of bounds over dates.
type Interval struct {
	Lower Bound
	Upper Bound
}

// New returns the interval between the two given bounds.
func New(lower, upper Bound) Interval {
	return Interval{Lower: lower, Upper: upper}
}

// ClosedInterval returns [begin, end].
func ClosedInterval(begin, end time.Time) Interval {
	return Interval{Lower: Closed(begin), Upper: Closed(end)}
}

// Single returns the degenerate interval [t, t].
func Single(t time.Time) Interval {
	return ClosedInterval(t, t)
}

// All returns the interval that is unbounded on both sides.
func All() Interval {
	return Interval{}
}

// Empty reports whether the interval contains no point.
func (iv Interval) Empty() bool {
	if !iv.Lower.bounded || !iv.Upper.bounded {
		return false
	}
	if iv.Lower.value.Before(iv.Upper.value) {
		return false
	}
	if iv.Lower.value.Equal(iv.Upper.value) {
		// A single point only if both endpoints include it.
		return !(iv.Lower.closed && iv.Upper.closed)
	}
	return true
}

// Contains reports whether t lies inside the interval.
func (iv Interval) Contains(t time.Time) bool {
	if iv.Lower.bounded {
		if t.Before(iv.Lower.value) {
			return false
		}
		if t.Equal(iv.Lower.value) && !iv.Lower.closed {
			return false
		}
	}
	if iv.Upper.bounded {
		if t.After(iv.Upper.value) {
			return false
		}
		if t.Equal(iv.Upper.value) && !iv.Upper.closed {
			return false
		}
	}
	return true
}

// Length returns upper minus lower. Unbounded intervals report the maximum
// representable duration; whether the endpoints are open or closed does not
// change the result.
func (iv Interval) Length() time.Duration {
	if iv.Empty() {
		return 0
	}
	if !iv.Lower.bounded || !iv.Upper.bounded {
		return math.MaxInt64
	}
	return iv.Upper.value.Sub(iv.Lower.value)
}

// Intersect returns the overlap of two intervals and whether it is non-empty.
func (iv Interval) Intersect(other Interval) (Interval, bool) {
	res := Interval{
		Lower: maxLower(iv.Lower, other.Lower),
		Upper: minUpper(iv.Upper, other.Upper),
	}
	if res.Empty() {
		return Interval{}, false
	}
	return res, true
}

func (iv Interval) String() string {
	var sb strings.Builder
	if !iv.Lower.bounded {
		sb.WriteString("(-inf")
	} else if iv.Lower.closed {
		sb.WriteString("[" + iv.Lower.value.Format("2006-01-02"))
	} else {
		sb.WriteString("(" + iv.Lower.value.Format("2006-01-02"))
	}
	sb.WriteString(", ")
	if !iv.Upper.bounded {
		sb.WriteString("inf)")
	} else if iv.Upper.closed {
		sb.WriteString(iv.Upper.value.Format("2006-01-02") + "]")
	} else {
		sb.WriteString(iv.Upper.value.Format("2006-01-02") + ")")
	}
	return sb.String()
}

// compareLower orders two bounds interpreted as lower bounds: an unbounded
// lower bound precedes everything, an open bound starts just after a closed
// bound at the same value.
func compareLower(a, b Bound) int {
	switch {
	case !a.bounded && !b.bounded:
		return 0
	case !a.bounded:
		return -1
	case !b.bounded:
		return 1
	}
	if c := compareTimes(a.value, b.value); c != 0 {
		return c
	}
	switch {
	case a.closed == b.closed:
		return 0
	case a.closed:
		return -1
	default:
		return 1
	}
}

// compareUpper orders two bounds interpreted as upper bounds: an unbounded
// upper bound follows everything, an open bound ends just before a closed
// bound at the same value.
func compareUpper(a, b Bound) int {
	switch {
	case !a.bounded && !b.bounded:
		return 0
	case !a.bounded:
		return 1
	case !b.bounded:
		return -1
	}
	if c := compareTimes(a.value, b.value); c != 0 {
		return c
	}
	switch {
	case a.closed == b.closed:
		return 0
	case a.closed:
		return 1
	default:
		return -1
	}
}

func compareTimes(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

func maxLower(a, b Bound) Bound {
	if compareLower(a, b) >= 0 {
		return a
	}
	return b
}

func minUpper(a, b Bound) Bound {
	if compareUpper(a, b) <= 0 {
		return a
	}
	return b
}

// touching reports whether an interval ending at upper meets one starting at
// lower with no gap in between, so that the two can be merged.
func touching(upper, lower Bound) bool {
	if !upper.bounded || !lower.bounded {
		return false
	}
	if !upper.value.Equal(lower.value) {
		return false
	}
	return upper.closed || lower.closed
}

// invert turns an interval bound into the adjacent bound of the neighbouring
// gap, flipping closedness: the gap before [a, ...] ends at a), the gap after
// [..., b] starts at (b.
func invert(b Bound) Bound {
	return Bound{value: b.value, closed: !b.closed, bounded: true}
}

// Set is a normalized sequence of non-empty, non-overlapping intervals in
// ascending order. The zero value is the empty set.
type Set struct {
	intervals []Interval
}

// NewSet builds a normalized set from arbitrary intervals: empty intervals
// are dropped, overlapping or touching intervals are merged.
func NewSet(intervals ...Interval) Set {
	kept := make([]Interval, 0, len(intervals))
	for _, iv := range intervals {
		if !iv.Empty() {
			kept = append(kept, iv)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return compareLower(kept[i].Lower, kept[j].Lower) < 0
	})
	var merged []Interval
	for _, iv := range kept {
		if len(merged) == 0 {
			merged = append(merged, iv)
			continue
		}
		last := &merged[len(merged)-1]
		if overlaps(*last, iv) || touching(last.Upper, iv.Lower) {
			last.Upper = maxUpper(last.Upper, iv.Upper)
		} else {
			merged = append(merged, iv)
		}
	}
	return Set{intervals: merged}
}

func overlaps(a, b Interval) bool {
	_, ok := a.Intersect(b)
	return ok
}

func maxUpper(a, b Bound) Bound {
	if compareUpper(a, b) >= 0 {
		return a
	}
	return b
}

// Intervals returns the intervals of the set in ascending order.
func (s Set) Intervals() []Interval {
	return s.intervals
}

// IsEmpty reports whether the set contains no interval.
func (s Set) IsEmpty() bool {
	return len(s.intervals) == 0
}

// Contains reports whether t lies in any interval of the set.
func (s Set) Contains(t time.Time) bool {
	for _, iv := range s.intervals {
		if iv.Contains(t) {
			return true
		}
	}
	return false
}

// Length is the sum of the lengths of all intervals in the set.
func (s Set) Length() time.Duration {
	var total time.Duration
	for _, iv := range s.intervals {
		l := iv.Length()
		if l == math.MaxInt64 {
			return math.MaxInt64
		}
		total += l
	}
	return total
}

// Intersect returns the set of points contained in both sets.
func (s Set) Intersect(other Set) Set {
	var result []Interval
	for _, a := range s.intervals {
		for _, b := range other.intervals {
			if iv, ok := a.Intersect(b); ok {
				result = append(result, iv)
			}
		}
	}
	return NewSet(result...)
}

// Union returns the set of points contained in either set.
func (s Set) Union(other Set) Set {
	all := make([]Interval, 0, len(s.intervals)+len(other.intervals))
	all = append(all, s.intervals...)
	all = append(all, other.intervals...)
	return NewSet(all...)
}

// Difference returns the set of points contained in s but not in other.
func (s Set) Difference(other Set) Set {
	return s.Intersect(other.complement())
}

// complement returns the gaps of a normalized set, including the unbounded
// ranges before the first and after the last interval.
func (s Set) complement() Set {
	if len(s.intervals) == 0 {
		return Set{intervals: []Interval{All()}}
	}
	var gaps []Interval
	lower := Unbounded()
	for _, iv := range s.intervals {
		if iv.Lower.bounded {
			gap := Interval{Lower: lower, Upper: invert(iv.Lower)}
			if !gap.Empty() {
				gaps = append(gaps, gap)
			}
		}
		if !iv.Upper.bounded {
			return Set{intervals: gaps}
		}
		lower = invert(iv.Upper)
	}
	gaps = append(gaps, Interval{Lower: lower, Upper: Unbounded()})
	return Set{intervals: gaps}
}

// Equal reports whether two sets contain exactly the same points.
func (s Set) Equal(other Set) bool {
	if len(s.intervals) != len(other.intervals) {
		return false
	}
	for i, a := range s.intervals {
		b := other.intervals[i]
		if compareLower(a.Lower, b.Lower) != 0 || compareUpper(a.Upper, b.Upper) != 0 {
			return false
		}
	}
	return true
}

func (s Set) String() string {
	parts := make([]string, len(s.intervals))
	for i, iv := range s.intervals {
		parts[i] = iv.String()
	}
	return fmt.Sprintf("{%s}", strings.Join(parts, ", "))
}
