package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Weekday is the three letter lowercase day name used by schedules.
type Weekday string

const (
	Sunday    Weekday = "sun"
	Monday    Weekday = "mon"
	Tuesday   Weekday = "tue"
	Wednesday Weekday = "wed"
	Thursday  Weekday = "thu"
	Friday    Weekday = "fri"
	Saturday  Weekday = "sat"
)

// Indexed like time.Weekday: Sunday is 0.
var weekdays = [7]Weekday{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

func WeekdayOf(d time.Weekday) Weekday {
	return weekdays[d]
}

func ParseWeekday(s string) (Weekday, error) {
	w := Weekday(strings.ToLower(strings.TrimSpace(s)))
	if !w.Valid() {
		return "", fmt.Errorf("invalid day_of_week %q: want one of mon, tue, wed, thu, fri, sat, sun", s)
	}
	return w, nil
}

func (w Weekday) Valid() bool {
	_, ok := w.index()
	return ok
}

// Index returns the 0 (Sunday) to 6 (Saturday) position. It panics on an
// invalid value, which callers exclude by validating on input.
func (w Weekday) Index() int {
	i, ok := w.index()
	if !ok {
		panic(fmt.Sprintf("invalid weekday %q", string(w)))
	}
	return i
}

func (w Weekday) index() (int, bool) {
	for i, d := range weekdays {
		if d == w {
			return i, true
		}
	}
	return 0, false
}

func (w *Weekday) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("day_of_week must be a string: %w", err)
	}
	v, err := ParseWeekday(s)
	if err != nil {
		return err
	}
	*w = v
	return nil
}

// Flag is a boolean that also accepts the strings "true" and "false" on input
// and is written back as a string.
type Flag bool

func (f Flag) MarshalJSON() ([]byte, error) {
	if f {
		return []byte(`"true"`), nil
	}
	return []byte(`"false"`), nil
}

func (f *Flag) UnmarshalJSON(b []byte) error {
	switch strings.ToLower(strings.Trim(string(b), `"`)) {
	case "true", "1":
		*f = true
	case "false", "0":
		*f = false
	default:
		return fmt.Errorf("invalid flag %s: want true or false", b)
	}
	return nil
}
