package model

import (
	"fmt"
	"strings"
	"time"
)

// Role classifies a worker's contract type.
type Role int

const (
	RolePermanent Role = iota
	RoleOnCall
)

// String returns a human-readable representation of the role.
func (r Role) String() string {
	switch r {
	case RolePermanent:
		return "permanent"
	case RoleOnCall:
		return "on_call"
	default:
		return "unknown"
	}
}

// ParseRole converts a wire-level role tag to its closed variant.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(s) {
	case "permanent", "fixed":
		return RolePermanent, nil
	case "on_call", "oncall", "extra":
		return RoleOnCall, nil
	default:
		return 0, fmt.Errorf("unknown role %q", s)
	}
}

// Pattern describes how a worker's bands within one day may be arranged.
type Pattern int

const (
	PatternIndifferent Pattern = iota
	PatternContiguous
	PatternSplit
)

func (p Pattern) String() string {
	switch p {
	case PatternContiguous:
		return "contiguous"
	case PatternSplit:
		return "split"
	default:
		return "indifferent"
	}
}

// ParsePattern converts a wire-level pattern tag. Empty means indifferent.
func ParsePattern(s string) (Pattern, error) {
	switch strings.ToLower(s) {
	case "", "indifferent":
		return PatternIndifferent, nil
	case "contiguous":
		return PatternContiguous, nil
	case "split":
		return PatternSplit, nil
	default:
		return 0, fmt.Errorf("unknown pattern %q", s)
	}
}

// Specialization marks workers who must open or close on the days they work.
type Specialization int

const (
	SpecNone Specialization = iota
	SpecOpener
	SpecCloser
)

func (s Specialization) String() string {
	switch s {
	case SpecOpener:
		return "opener"
	case SpecCloser:
		return "closer"
	default:
		return "none"
	}
}

// ParseSpecialization converts a wire-level specialization tag.
func ParseSpecialization(s string) (Specialization, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return SpecNone, nil
	case "opener":
		return SpecOpener, nil
	case "closer":
		return SpecCloser, nil
	default:
		return 0, fmt.Errorf("unknown specialization %q", s)
	}
}

// ShiftType records the kind of shift last worked, for rotation preference.
type ShiftType int

const (
	ShiftNone ShiftType = iota
	ShiftMorning
	ShiftEvening
)

func (s ShiftType) String() string {
	switch s {
	case ShiftMorning:
		return "morning"
	case ShiftEvening:
		return "evening"
	default:
		return "none"
	}
}

// ParseShiftType converts a wire-level shift tag. Empty means none.
func ParseShiftType(s string) (ShiftType, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return ShiftNone, nil
	case "morning":
		return ShiftMorning, nil
	case "evening":
		return ShiftEvening, nil
	default:
		return 0, fmt.Errorf("unknown shift type %q", s)
	}
}

// dayCodes maps day-of-week codes to indices, Monday = 0.
var dayCodes = map[string]int{
	"mon": 0, "tue": 1, "wed": 2, "thu": 3, "fri": 4, "sat": 5, "sun": 6,
}

// ParseDayCode maps a day-of-week code (mon..sun) to its index, Monday = 0.
func ParseDayCode(s string) (int, error) {
	if d, ok := dayCodes[strings.ToLower(s)]; ok {
		return d, nil
	}
	return 0, fmt.Errorf("unknown day code %q", s)
}

// Weekday returns the Monday-based weekday index of t.
func Weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// Worker is one schedulable person with role, hour bounds and availability.
type Worker struct {
	Name string
	Role Role

	// Weekly hour window. For permanent workers the minimum is superseded
	// by the deployment's target policy; the maximum always applies.
	MinWeekHours int
	MaxWeekHours int

	// UnavailableDates lists explicit dates the worker cannot work.
	UnavailableDates []time.Time
	// UnavailableDays lists recurring day-of-week indices, Monday = 0.
	UnavailableDays []int

	Pattern        Pattern
	Specialization Specialization

	// Rotation context from the previous horizon.
	LastShift    ShiftType
	CarriedHours int
}

// Validate checks that the worker record is sound.
func (w Worker) Validate() error {
	if w.Name == "" {
		return fmt.Errorf("worker name is empty")
	}
	if w.MinWeekHours < 0 || w.MaxWeekHours < 0 {
		return fmt.Errorf("worker %s: negative hour bound", w.Name)
	}
	if w.MaxWeekHours > 0 && w.MinWeekHours > w.MaxWeekHours {
		return fmt.Errorf("worker %s: min week hours %d above max %d", w.Name, w.MinWeekHours, w.MaxWeekHours)
	}
	for _, d := range w.UnavailableDays {
		if d < 0 || d > 6 {
			return fmt.Errorf("worker %s: day index %d out of range", w.Name, d)
		}
	}
	return nil
}

// UnavailableOn reports whether the worker cannot work the given date.
func (w Worker) UnavailableOn(date time.Time) bool {
	for _, d := range w.UnavailableDates {
		if SameDate(d, date) {
			return true
		}
	}
	wd := Weekday(date)
	for _, d := range w.UnavailableDays {
		if d == wd {
			return true
		}
	}
	return false
}

// WorkerOverride carries per-name rules supplied as input data rather than
// baked into engine logic: a forced daily pattern and event kinds on whose
// dates the worker may not be scheduled.
type WorkerOverride struct {
	Name             string
	Pattern          *Pattern
	BannedEventKinds []EventKind
}
