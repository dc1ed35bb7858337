package semester

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// semesterFile mirrors the YAML layout of the semester table.
type semesterFile struct {
	Semesters []semesterEntry `yaml:"semesters"`
}

type semesterEntry struct {
	Name                            string `yaml:"name"`
	BeginsOn                        string `yaml:"begins_on"`
	EndsOn                          string `yaml:"ends_on"`
	RegistrationFee                 string `yaml:"registration_fee"`
	RegularSemesterFee              string `yaml:"regular_semester_fee"`
	ReducedSemesterFee              string `yaml:"reduced_semester_fee"`
	ReducedSemesterFeeThresholdDays int    `yaml:"reduced_semester_fee_threshold_days"`
	GracePeriodDays                 int    `yaml:"grace_period_days"`
	LateFee                         string `yaml:"late_fee"`
	PaymentDeadlineDays             int    `yaml:"payment_deadline_days"`
	AllowedOverdraft                string `yaml:"allowed_overdraft"`
}

// LoadFile reads the semester table from a YAML configuration file.
func LoadFile(path string) (*Terms, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read semester file: %w", err)
	}
	return Load(data)
}

// Load parses the semester table from YAML data.
func Load(data []byte) (*Terms, error) {
	var file semesterFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse semester file: %w", err)
	}

	semesters := make([]Semester, 0, len(file.Semesters))
	for i, entry := range file.Semesters {
		s, err := entry.toSemester()
		if err != nil {
			return nil, fmt.Errorf("semester %d (%s): %w", i+1, entry.Name, err)
		}
		semesters = append(semesters, s)
	}
	return NewTerms(semesters), nil
}

func (e semesterEntry) toSemester() (Semester, error) {
	beginsOn, err := parseDate(e.BeginsOn)
	if err != nil {
		return Semester{}, fmt.Errorf("invalid begins_on: %w", err)
	}
	endsOn, err := parseDate(e.EndsOn)
	if err != nil {
		return Semester{}, fmt.Errorf("invalid ends_on: %w", err)
	}
	if endsOn.Before(beginsOn) {
		return Semester{}, fmt.Errorf("ends_on %s precedes begins_on %s", e.EndsOn, e.BeginsOn)
	}

	amounts := make(map[string]decimal.Decimal, 5)
	for name, raw := range map[string]string{
		"registration_fee":     e.RegistrationFee,
		"regular_semester_fee": e.RegularSemesterFee,
		"reduced_semester_fee": e.ReducedSemesterFee,
		"late_fee":             e.LateFee,
		"allowed_overdraft":    e.AllowedOverdraft,
	} {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return Semester{}, fmt.Errorf("invalid %s %q: %w", name, raw, err)
		}
		amounts[name] = amount
	}

	return Semester{
		Name:                        e.Name,
		BeginsOn:                    beginsOn,
		EndsOn:                      endsOn,
		RegistrationFee:             amounts["registration_fee"],
		RegularSemesterFee:          amounts["regular_semester_fee"],
		ReducedSemesterFee:          amounts["reduced_semester_fee"],
		ReducedSemesterFeeThreshold: days(e.ReducedSemesterFeeThresholdDays),
		GracePeriod:                 days(e.GracePeriodDays),
		LateFee:                     amounts["late_fee"],
		PaymentDeadline:             days(e.PaymentDeadlineDays),
		AllowedOverdraft:            amounts["allowed_overdraft"],
	}, nil
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}
