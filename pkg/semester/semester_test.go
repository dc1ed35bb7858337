package semester

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testSemesters() []Semester {
	return []Semester{
		{
			Name:     "Winter 2023/24",
			BeginsOn: date(2023, 10, 1),
			EndsOn:   date(2024, 3, 31),
		},
		{
			Name:     "Summer 2024",
			BeginsOn: date(2024, 4, 1),
			EndsOn:   date(2024, 9, 30),
		},
	}
}

func TestForDate(t *testing.T) {
	terms := NewTerms(testSemesters())

	s, err := terms.ForDate(date(2024, 4, 1))
	require.NoError(t, err)
	assert.Equal(t, "Summer 2024", s.Name)

	// The end date is inclusive.
	s, err = terms.ForDate(date(2024, 3, 31))
	require.NoError(t, err)
	assert.Equal(t, "Winter 2023/24", s.Name)

	_, err = terms.ForDate(date(2025, 1, 1))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewTermsSorts(t *testing.T) {
	unsorted := testSemesters()
	unsorted[0], unsorted[1] = unsorted[1], unsorted[0]
	terms := NewTerms(unsorted)

	all := terms.All()
	require.Len(t, all, 2)
	assert.Equal(t, "Winter 2023/24", all[0].Name)
	assert.Equal(t, "Summer 2024", all[1].Name)
}

func TestLoad(t *testing.T) {
	data := []byte(`semesters:
  - name: "Summer 2024"
    begins_on: "2024-04-01"
    ends_on: "2024-09-30"
    registration_fee: "5.00"
    regular_semester_fee: "20.00"
    reduced_semester_fee: "10.00"
    reduced_semester_fee_threshold_days: 62
    grace_period_days: 14
    late_fee: "2.50"
    payment_deadline_days: 31
    allowed_overdraft: "5.00"
`)

	terms, err := Load(data)
	require.NoError(t, err)
	all := terms.All()
	require.Len(t, all, 1)

	s := all[0]
	assert.Equal(t, "Summer 2024", s.Name)
	assert.Equal(t, date(2024, 4, 1), s.BeginsOn)
	assert.Equal(t, date(2024, 9, 30), s.EndsOn)
	assert.True(t, s.RegistrationFee.Equal(decimal.RequireFromString("5.00")))
	assert.True(t, s.RegularSemesterFee.Equal(decimal.RequireFromString("20.00")))
	assert.True(t, s.ReducedSemesterFee.Equal(decimal.RequireFromString("10.00")))
	assert.Equal(t, 62*24*time.Hour, s.ReducedSemesterFeeThreshold)
	assert.Equal(t, 14*24*time.Hour, s.GracePeriod)
	assert.True(t, s.LateFee.Equal(decimal.RequireFromString("2.50")))
	assert.Equal(t, 31*24*time.Hour, s.PaymentDeadline)
	assert.True(t, s.AllowedOverdraft.Equal(decimal.RequireFromString("5.00")))
}

func TestLoadRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"bad date", `semesters:
  - name: "X"
    begins_on: "01.04.2024"
    ends_on: "2024-09-30"
    registration_fee: "5.00"
    regular_semester_fee: "20.00"
    reduced_semester_fee: "10.00"
    late_fee: "2.50"
    allowed_overdraft: "5.00"
`},
		{"reversed dates", `semesters:
  - name: "X"
    begins_on: "2024-09-30"
    ends_on: "2024-04-01"
    registration_fee: "5.00"
    regular_semester_fee: "20.00"
    reduced_semester_fee: "10.00"
    late_fee: "2.50"
    allowed_overdraft: "5.00"
`},
		{"bad amount", `semesters:
  - name: "X"
    begins_on: "2024-04-01"
    ends_on: "2024-09-30"
    registration_fee: "five"
    regular_semester_fee: "20.00"
    reduced_semester_fee: "10.00"
    late_fee: "2.50"
    allowed_overdraft: "5.00"
`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load([]byte(tc.data))
			assert.Error(t, err)
		})
	}
}
