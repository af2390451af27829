package model

import (
	"fmt"
	"strings"
	"time"
)

// EventKind is the closed set of scheduled occurrence categories.
type EventKind int

const (
	// KindDerby is a high-attendance home fixture that replaces demand with
	// a fixed floor on overlapped bands and triggers mandatory staffing.
	KindDerby EventKind = iota
	// KindHighAttendance adds a fixed increment to overlapped bands.
	KindHighAttendance
	// KindManual is an ad-hoc event with explicit window and extra headcount.
	KindManual
	// KindRivalAway marks fixtures that do not change demand but may ban
	// individual workers via overrides.
	KindRivalAway
)

func (k EventKind) String() string {
	switch k {
	case KindDerby:
		return "derby"
	case KindHighAttendance:
		return "high_attendance"
	case KindManual:
		return "manual"
	case KindRivalAway:
		return "rival_away"
	default:
		return "unknown"
	}
}

// ParseEventKind converts a wire-level event category tag.
func ParseEventKind(s string) (EventKind, error) {
	switch strings.ToLower(s) {
	case "derby":
		return KindDerby, nil
	case "high_attendance":
		return KindHighAttendance, nil
	case "manual":
		return KindManual, nil
	case "rival_away":
		return KindRivalAway, nil
	default:
		return 0, fmt.Errorf("unknown event kind %q", s)
	}
}

// Event is a dated, timed occurrence that adjusts demand for the bands its
// window overlaps. Window margins and headcount effects per kind are
// deployment configuration resolved by the demand resolver.
type Event struct {
	Kind EventKind
	Date time.Time
	// KickoffHour is the start clock hour for derby and high-attendance
	// events.
	KickoffHour int
	// HighImportance gates the demand effect of high-attendance events.
	HighImportance bool
	// Manual events carry their own window and increment.
	StartHour      int
	DurationHours  int
	ExtraHeadcount int
	// Label is reported alongside affected days in the output.
	Label string
}

// DisplayLabel returns the label to report for this event.
func (e Event) DisplayLabel() string {
	if e.Label != "" {
		return e.Label
	}
	return e.Kind.String()
}

// Validate checks event fields that are independent of deployment rules.
func (e Event) Validate() error {
	if e.Date.IsZero() {
		return fmt.Errorf("event %s: missing date", e.DisplayLabel())
	}
	if e.Kind == KindManual {
		if e.DurationHours <= 0 {
			return fmt.Errorf("event %s: manual event needs a positive duration", e.DisplayLabel())
		}
		if e.ExtraHeadcount < 0 {
			return fmt.Errorf("event %s: negative extra headcount", e.DisplayLabel())
		}
	}
	return nil
}

// Overlaps reports whether two half-open hour intervals intersect.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return max(aStart, bStart) < min(aEnd, bEnd)
}

// SameDate reports whether a and b fall on the same calendar day.
func SameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
