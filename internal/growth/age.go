// Package growth derives trend, age and life-stage annotations from raw
// weight readings. Everything here is pure: no I/O, no shared state.
package growth

import (
	"strings"
	"time"
)

// Age is a calendar duration since birth.
type Age struct {
	Years  int `json:"years"`
	Months int `json:"months"`
	Days   int `json:"days"`
}

// TotalMonths returns years*12 + months.
func (a Age) TotalMonths() int {
	return a.Years*12 + a.Months
}

var dobLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"}

// parseDOB returns the calendar date of birth, or false when dob is empty
// or not a recognised date. A bad date of birth is treated as absent.
func parseDOB(dob string) (time.Time, bool) {
	dob = strings.TrimSpace(dob)
	if dob == "" {
		return time.Time{}, false
	}
	for _, layout := range dobLayouts {
		if t, err := time.Parse(layout, dob); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CalculateAge computes the calendar age at ref of an animal born on dob.
//
// Fields are subtracted component-wise. A negative day count borrows a
// month and adds the length of the month preceding ref's month; a
// negative month count borrows a year. Birth dates after ref are not
// clamped and yield a negative year count.
func CalculateAge(dob string, ref time.Time) (Age, bool) {
	born, ok := parseDOB(dob)
	if !ok {
		return Age{}, false
	}

	ry, rm, rd := ref.Date()
	by, bm, bd := born.Date()

	age := Age{
		Years:  ry - by,
		Months: int(rm) - int(bm),
		Days:   rd - bd,
	}
	if age.Days < 0 {
		age.Months--
		// Day 0 of ref's month is the last day of the previous month.
		age.Days += time.Date(ry, rm, 0, 0, 0, 0, 0, time.UTC).Day()
	}
	if age.Months < 0 {
		age.Years--
		age.Months += 12
	}
	return age, true
}
