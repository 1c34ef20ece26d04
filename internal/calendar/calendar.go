// Package calendar converts compact YYYYMMDD dates into epoch timestamps and
// advert period specs into durations. Dates are interpreted as midnight UTC.
package calendar

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/hireledger/internal/common"
)

const (
	MinYear = 1970
	MaxYear = 9999

	// MaxPeriodDays bounds an advert's submission period.
	MaxPeriodDays = 3650
)

var daysInMonth = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// IsLeap reports whether year is a Gregorian leap year.
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysIn returns the number of days in month (1-12) of year, or 0 for an
// invalid month.
func DaysIn(year, month int) int {
	if month < 1 || month > 12 {
		return 0
	}
	if month == 2 && IsLeap(year) {
		return 29
	}
	return daysInMonth[month-1]
}

// Split breaks a compact date into its components without validating them.
func Split(compact uint32) (year, month, day int) {
	return int(compact / 10000), int(compact / 100 % 100), int(compact % 100)
}

// ToTime validates compact and returns the corresponding midnight UTC.
// The day is checked against the real length of the month, so 20230230 is
// rejected rather than rolling over into March.
func ToTime(compact uint32) (time.Time, error) {
	year, month, day := Split(compact)
	if year < MinYear || year > MaxYear {
		return time.Time{}, fmt.Errorf("%w: year %d out of range", common.ErrInvalidCalendarDate, year)
	}
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("%w: month %d out of range", common.ErrInvalidCalendarDate, month)
	}
	if day < 1 || day > DaysIn(year, month) {
		return time.Time{}, fmt.Errorf("%w: day %d out of range for %04d-%02d", common.ErrInvalidCalendarDate, day, year, month)
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

// ToEpoch is ToTime expressed in epoch seconds.
func ToEpoch(compact uint32) (int64, error) {
	t, err := ToTime(compact)
	if err != nil {
		return 0, err
	}
	return t.Unix(), nil
}

// FromTime renders t (in UTC) as a compact date.
func FromTime(t time.Time) uint32 {
	t = t.UTC()
	return uint32(t.Year())*10000 + uint32(t.Month())*100 + uint32(t.Day())
}

// Period converts an advert period, expressed in whole days, into a
// duration to be added to the creation time.
func Period(days uint32) (time.Duration, error) {
	if days == 0 || days > MaxPeriodDays {
		return 0, fmt.Errorf("%w: %d days", common.ErrInvalidPeriod, days)
	}
	return time.Duration(days) * 24 * time.Hour, nil
}
