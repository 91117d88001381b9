package picker

import (
	"fmt"
	"strconv"
	"time"
)

// Part names one column of the date picker
type Part int

const (
	PartMonth Part = iota
	PartDay
	PartYear
)

func (p Part) String() string {
	switch p {
	case PartMonth:
		return "Month"
	case PartDay:
		return "Day"
	case PartYear:
		return "Year"
	default:
		return "?"
	}
}

// YearSpan is how many years the year column offers, starting at the current one
const YearSpan = 10

// DatePicker composes month, day and year columns into one date.
//
// A confirmed column overwrites only its own component of the held date.
// Combinations are not cross-checked: day 31 in February rolls over the way
// time.Date normalizes it.
type DatePicker struct {
	date     time.Time
	columns  [3]*Column
	onChange func(time.Time)
}

// NewDatePicker builds the three columns around date. now anchors the year range.
func NewDatePicker(date, now time.Time, opts Options, onChange func(time.Time)) *DatePicker {
	dp := &DatePicker{date: date, onChange: onChange}

	// items are never empty, NewColumn cannot fail here
	dp.columns[PartMonth], _ = NewColumn(MonthItems(), monthValue(date), opts, func(v string) { dp.update(PartMonth, v) })
	dp.columns[PartDay], _ = NewColumn(DayItems(), dayValue(date), opts, func(v string) { dp.update(PartDay, v) })
	dp.columns[PartYear], _ = NewColumn(YearItems(now.Year()), yearValue(date), opts, func(v string) { dp.update(PartYear, v) })
	return dp
}

// MonthItems returns "01".."12"
func MonthItems() []string {
	return paddedRange(1, 12)
}

// DayItems returns "01".."31"
func DayItems() []string {
	return paddedRange(1, 31)
}

// YearItems returns from..from+YearSpan-1
func YearItems(from int) []string {
	out := make([]string, YearSpan)
	for i := range out {
		out[i] = strconv.Itoa(from + i)
	}
	return out
}

func paddedRange(from, to int) []string {
	out := make([]string, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, fmt.Sprintf("%02d", i))
	}
	return out
}

// Date returns the composed date
func (dp *DatePicker) Date() time.Time {
	return dp.date
}

// Column returns the column for part
func (dp *DatePicker) Column(p Part) *Column {
	return dp.columns[p]
}

// SetDate replaces the held date without notifying
func (dp *DatePicker) SetDate(date time.Time) {
	dp.date = date
	dp.sync()
}

func (dp *DatePicker) update(p Part, val string) {
	n, err := strconv.Atoi(val)
	if err != nil {
		return
	}

	d := dp.date
	year, month, day := d.Year(), d.Month(), d.Day()
	switch p {
	case PartMonth:
		month = time.Month(n)
	case PartDay:
		day = n
	case PartYear:
		year = n
	}
	dp.date = time.Date(year, month, day, d.Hour(), d.Minute(), d.Second(), d.Nanosecond(), d.Location())
	dp.sync()

	if dp.onChange != nil {
		dp.onChange(dp.date)
	}
}

// sync re-positions every column on the held date, which may have rolled over
func (dp *DatePicker) sync() {
	dp.columns[PartMonth].SetValue(monthValue(dp.date))
	dp.columns[PartDay].SetValue(dayValue(dp.date))
	dp.columns[PartYear].SetValue(yearValue(dp.date))
}

func monthValue(t time.Time) string { return fmt.Sprintf("%02d", int(t.Month())) }
func dayValue(t time.Time) string   { return fmt.Sprintf("%02d", t.Day()) }
func yearValue(t time.Time) string  { return strconv.Itoa(t.Year()) }
