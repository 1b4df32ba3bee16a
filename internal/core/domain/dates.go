package domain

import (
	"strings"
	"time"
)

// DateRange holds concrete ISO start/end dates resolved from a preset.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

const isoDate = "2006-01-02"

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ResolveDatePreset turns a preset name ("today", a weekday name, or
// "weekend") into concrete dates relative to ref.
//
// Weekday names resolve to the next occurrence strictly after ref's day:
// if today is Saturday, "saturday" means next week's Saturday ("today" is
// the way to ask for the current day). "weekend" resolves to the nearest
// Saturday-Sunday pair, including the current day when ref already falls
// on a weekend.
func ResolveDatePreset(preset string, ref time.Time) (DateRange, error) {
	day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())

	switch p := strings.ToLower(strings.TrimSpace(preset)); p {
	case "today":
		d := day.Format(isoDate)
		return DateRange{Start: d, End: d}, nil

	case "weekend", "this weekend", "this-weekend":
		switch day.Weekday() {
		case time.Saturday:
			return DateRange{Start: day.Format(isoDate), End: day.AddDate(0, 0, 1).Format(isoDate)}, nil
		case time.Sunday:
			// Saturday already passed; the remaining weekend is today.
			d := day.Format(isoDate)
			return DateRange{Start: d, End: d}, nil
		default:
			sat := day.AddDate(0, 0, int(time.Saturday-day.Weekday()))
			return DateRange{Start: sat.Format(isoDate), End: sat.AddDate(0, 0, 1).Format(isoDate)}, nil
		}

	default:
		wd, ok := weekdayNames[p]
		if !ok {
			return DateRange{}, &ValidationError{Field: "date_preset", Reason: "unknown preset " + preset}
		}
		delta := (int(wd) - int(day.Weekday()) + 7) % 7
		if delta == 0 {
			delta = 7 // same weekday wraps to next week
		}
		d := day.AddDate(0, 0, delta).Format(isoDate)
		return DateRange{Start: d, End: d}, nil
	}
}
