package model

import (
	"fmt"
	"strings"
	"time"
)

// DatePrecision is how much of a Date is known.
type DatePrecision int

const (
	// PrecisionNone means the date is unknown.
	PrecisionNone DatePrecision = iota

	// PrecisionYear means only the year is known.
	PrecisionYear

	// PrecisionMonth means year and month are known.
	PrecisionMonth

	// PrecisionDay means the full date is known.
	PrecisionDay
)

// Date is a calendar date that may be only partially known, as with
// Spotify's release_date_precision.
type Date struct {
	time.Time
	Precision DatePrecision
}

var dateLayouts = []struct {
	layout    string
	precision DatePrecision
}{
	{"2006-01-02", PrecisionDay},
	{"2006-01", PrecisionMonth},
	{"2006", PrecisionYear},
	{"02 Jan 2006", PrecisionDay},
	{time.RFC3339, PrecisionDay},
}

// ParseDate parses "2006", "2006-01" or "2006-01-02" (and a few looser
// forms). An empty string is the zero Date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l.layout, s); err == nil {
			return Date{Time: t, Precision: l.precision}, nil
		}
	}
	return Date{}, fmt.Errorf("unable to parse date: %s", s)
}

// IsZero reports whether the date is unknown.
func (d Date) IsZero() bool {
	return d.Precision == PrecisionNone
}

// String formats the date at its precision, or "" when unknown.
func (d Date) String() string {
	switch d.Precision {
	case PrecisionYear:
		return d.Format("2006")
	case PrecisionMonth:
		return d.Format("2006-01")
	case PrecisionDay:
		return d.Format("2006-01-02")
	default:
		return ""
	}
}
