package table

import (
	"encoding/json"
	"time"
)

const DateLayout = "2006-01-02"

// DateValue is a calendar date without time of day or zone
type DateValue struct {
	Year  int
	Month time.Month
	Day   int
}

func NewDate(year int, month time.Month, day int) DateValue {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf takes the calendar date of t in t's location
func DateOf(t time.Time) DateValue {
	y, m, d := t.Date()
	return DateValue{Year: y, Month: m, Day: d}
}

func ParseDate(layout, s string) (DateValue, error) {
	t, err := time.Parse(layout, s)
	if err != nil {
		return DateValue{}, err
	}
	return DateOf(t), nil
}

func (d DateValue) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d DateValue) Format(layout string) string {
	return d.Time().Format(layout)
}

func (d DateValue) String() string {
	return d.Format(DateLayout)
}

func (d DateValue) AddDate(years, months, days int) DateValue {
	return DateOf(d.Time().AddDate(years, months, days))
}

func (d DateValue) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Compare returns -1, 0 or 1
func (d DateValue) Compare(other DateValue) int {
	return d.Time().Compare(other.Time())
}

func (d DateValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *DateValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(DateLayout, s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
