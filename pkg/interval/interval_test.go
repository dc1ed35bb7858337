package interval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIntervalEmpty(t *testing.T) {
	tests := []struct {
		name  string
		iv    Interval
		empty bool
	}{
		{"closed range", ClosedInterval(date(2024, 1, 1), date(2024, 1, 31)), false},
		{"single point", Single(date(2024, 1, 1)), false},
		{"reversed", ClosedInterval(date(2024, 2, 1), date(2024, 1, 1)), true},
		{"open point", New(Open(date(2024, 1, 1)), Open(date(2024, 1, 1))), true},
		{"half-open point", New(Closed(date(2024, 1, 1)), Open(date(2024, 1, 1))), true},
		{"unbounded", All(), false},
		{"half-unbounded", New(Closed(date(2024, 1, 1)), Unbounded()), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.empty, tt.iv.Empty())
		})
	}
}

func TestIntervalContains(t *testing.T) {
	iv := New(Closed(date(2024, 1, 1)), Open(date(2024, 2, 1)))

	assert.True(t, iv.Contains(date(2024, 1, 1)))
	assert.True(t, iv.Contains(date(2024, 1, 15)))
	assert.False(t, iv.Contains(date(2024, 2, 1)))
	assert.False(t, iv.Contains(date(2023, 12, 31)))

	unbounded := New(Unbounded(), Closed(date(2024, 1, 1)))
	assert.True(t, unbounded.Contains(date(1970, 1, 1)))
	assert.False(t, unbounded.Contains(date(2024, 1, 2)))
}

func TestIntervalIntersect(t *testing.T) {
	a := ClosedInterval(date(2024, 1, 1), date(2024, 3, 31))
	b := ClosedInterval(date(2024, 3, 1), date(2024, 6, 30))

	got, ok := a.Intersect(b)
	require.True(t, ok)
	assert.Equal(t, ClosedInterval(date(2024, 3, 1), date(2024, 3, 31)), got)

	c := ClosedInterval(date(2024, 7, 1), date(2024, 8, 1))
	_, ok = a.Intersect(c)
	assert.False(t, ok)

	// Touching closed endpoints intersect in a single point.
	d := ClosedInterval(date(2024, 3, 31), date(2024, 4, 30))
	got, ok = a.Intersect(d)
	require.True(t, ok)
	assert.Equal(t, Single(date(2024, 3, 31)), got)
}

func TestIntervalLength(t *testing.T) {
	iv := ClosedInterval(date(2024, 1, 1), date(2024, 1, 31))
	assert.Equal(t, 30*24*time.Hour, iv.Length())

	// Endpoint closedness does not change the length.
	open := New(Open(date(2024, 1, 1)), Open(date(2024, 1, 31)))
	assert.Equal(t, 30*24*time.Hour, open.Length())

	assert.Equal(t, time.Duration(0), Single(date(2024, 1, 1)).Length())
}

func TestNewSetNormalizes(t *testing.T) {
	s := NewSet(
		ClosedInterval(date(2024, 3, 1), date(2024, 4, 30)),
		ClosedInterval(date(2024, 1, 1), date(2024, 2, 1)),
		ClosedInterval(date(2024, 1, 15), date(2024, 3, 10)),
		New(Open(date(2024, 6, 1)), Open(date(2024, 6, 1))), // empty, dropped
	)
	require.Len(t, s.Intervals(), 1)
	assert.Equal(t, ClosedInterval(date(2024, 1, 1), date(2024, 4, 30)), s.Intervals()[0])
}

func TestNewSetMergesTouching(t *testing.T) {
	s := NewSet(
		ClosedInterval(date(2024, 1, 1), date(2024, 1, 31)),
		New(Open(date(2024, 1, 31)), Closed(date(2024, 2, 29))),
	)
	require.Len(t, s.Intervals(), 1)
	assert.Equal(t, ClosedInterval(date(2024, 1, 1), date(2024, 2, 29)), s.Intervals()[0])

	// A genuine gap is preserved.
	gapped := NewSet(
		ClosedInterval(date(2024, 1, 1), date(2024, 1, 31)),
		ClosedInterval(date(2024, 2, 2), date(2024, 2, 29)),
	)
	assert.Len(t, gapped.Intervals(), 2)
}

func TestSetIntersect(t *testing.T) {
	a := NewSet(
		ClosedInterval(date(2024, 1, 1), date(2024, 2, 1)),
		ClosedInterval(date(2024, 5, 1), date(2024, 6, 1)),
	)
	b := NewSet(ClosedInterval(date(2024, 1, 20), date(2024, 5, 10)))

	got := a.Intersect(b)
	want := NewSet(
		ClosedInterval(date(2024, 1, 20), date(2024, 2, 1)),
		ClosedInterval(date(2024, 5, 1), date(2024, 5, 10)),
	)
	assert.True(t, got.Equal(want), "got %s, want %s", got, want)
}

func TestSetDifference(t *testing.T) {
	a := NewSet(ClosedInterval(date(2024, 1, 1), date(2024, 3, 31)))
	b := NewSet(ClosedInterval(date(2024, 2, 1), date(2024, 2, 29)))

	got := a.Difference(b)
	want := NewSet(
		New(Closed(date(2024, 1, 1)), Open(date(2024, 2, 1))),
		New(Open(date(2024, 2, 29)), Closed(date(2024, 3, 31))),
	)
	assert.True(t, got.Equal(want), "got %s, want %s", got, want)

	// Removing everything leaves the empty set.
	assert.True(t, a.Difference(a).IsEmpty())
	// Removing nothing changes nothing.
	assert.True(t, a.Difference(NewSet()).Equal(a))
}

// (A ∩ B) ∪ (A − B) == A must hold for any interval sets.
func TestSetPartitionLaw(t *testing.T) {
	cases := []struct {
		name string
		a, b Set
	}{
		{
			"overlapping",
			NewSet(ClosedInterval(date(2024, 1, 1), date(2024, 3, 31))),
			NewSet(ClosedInterval(date(2024, 2, 1), date(2024, 4, 30))),
		},
		{
			"disjoint",
			NewSet(ClosedInterval(date(2024, 1, 1), date(2024, 1, 31))),
			NewSet(ClosedInterval(date(2024, 3, 1), date(2024, 3, 31))),
		},
		{
			"b inside a",
			NewSet(ClosedInterval(date(2024, 1, 1), date(2024, 12, 31))),
			NewSet(
				ClosedInterval(date(2024, 2, 1), date(2024, 2, 29)),
				ClosedInterval(date(2024, 6, 1), date(2024, 6, 30)),
			),
		},
		{
			"a empty",
			NewSet(),
			NewSet(ClosedInterval(date(2024, 1, 1), date(2024, 1, 31))),
		},
		{
			"unbounded a",
			NewSet(New(Unbounded(), Closed(date(2024, 6, 30)))),
			NewSet(ClosedInterval(date(2024, 1, 1), date(2024, 12, 31))),
		},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.Intersect(tt.b).Union(tt.a.Difference(tt.b))
			assert.True(t, got.Equal(tt.a), "got %s, want %s", got, tt.a)
		})
	}
}

func TestSetIdempotentIntersection(t *testing.T) {
	a := NewSet(
		ClosedInterval(date(2024, 1, 1), date(2024, 2, 1)),
		ClosedInterval(date(2024, 5, 1), date(2024, 6, 1)),
	)
	assert.True(t, a.Intersect(a).Equal(a))
}

func TestSetLength(t *testing.T) {
	assert.Equal(t, time.Duration(0), NewSet().Length())

	s := NewSet(
		ClosedInterval(date(2024, 1, 1), date(2024, 1, 11)),
		ClosedInterval(date(2024, 2, 1), date(2024, 2, 21)),
	)
	assert.Equal(t, 30*24*time.Hour, s.Length())
}

func TestSetContains(t *testing.T) {
	s := NewSet(
		ClosedInterval(date(2024, 1, 1), date(2024, 1, 31)),
		ClosedInterval(date(2024, 3, 1), date(2024, 3, 31)),
	)
	assert.True(t, s.Contains(date(2024, 1, 15)))
	assert.True(t, s.Contains(date(2024, 3, 1)))
	assert.False(t, s.Contains(date(2024, 2, 15)))
	assert.False(t, NewSet().Contains(date(2024, 1, 1)))
}
