package calendar

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"calman/src-server/timezone"

	"golang.org/x/text/cases"
)

// Property names an editable field of an event.
type Property string

const (
	PropertySubject     Property = "subject"
	PropertyDescription Property = "description"
	PropertyLocation    Property = "location"
	PropertyStart       Property = "start"
	PropertyEnd         Property = "end"
	PropertyVisibility  Property = "visibility"
)

var Properties = []Property{
	PropertySubject,
	PropertyDescription,
	PropertyLocation,
	PropertyStart,
	PropertyEnd,
	PropertyVisibility,
}

// ParseProperty matches a property name case-insensitively.
func ParseProperty(s string) (Property, error) {
	folded := Property(cases.Fold().String(strings.TrimSpace(s)))
	if !slices.Contains(Properties, folded) {
		return "", fmt.Errorf("ParseProperty: %w: %q", ErrUnsupportedProperty, s)
	}
	return folded, nil
}

func (p Property) isTime() bool {
	return p == PropertyStart || p == PropertyEnd
}

// mutator applies value to a stored event; loc is the calendar's zone.
type mutator func(e *Event, value string, loc *time.Location) error

var mutators = make(map[Property]mutator)

func registerMutator(p Property, fn mutator) {
	if !slices.Contains(Properties, p) {
		panic(fmt.Sprintf("registerMutator: %q is not a known property", p))
	}
	if _, ok := mutators[p]; ok {
		panic(fmt.Sprintf("registerMutator: %q registered twice", p))
	}
	mutators[p] = fn
}

func init() {
	registerMutator(PropertySubject, func(e *Event, value string, _ *time.Location) error {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: subject is blank", ErrInvalidEvent)
		}
		e.Subject = value
		return nil
	})
	registerMutator(PropertyDescription, func(e *Event, value string, _ *time.Location) error {
		e.Description = value
		return nil
	})
	registerMutator(PropertyLocation, func(e *Event, value string, _ *time.Location) error {
		e.Location = value
		return nil
	})
	registerMutator(PropertyStart, func(e *Event, value string, loc *time.Location) error {
		t, err := parseEditTime(value, e.Start.In(loc), loc)
		if err != nil {
			return err
		}
		e.Start = t
		e.AllDay = false
		return nil
	})
	registerMutator(PropertyEnd, func(e *Event, value string, loc *time.Location) error {
		t, err := parseEditTime(value, e.End.In(loc), loc)
		if err != nil {
			return err
		}
		e.End = t
		e.AllDay = false
		return nil
	})
	registerMutator(PropertyVisibility, func(e *Event, value string, _ *time.Location) error {
		switch cases.Fold().String(strings.TrimSpace(value)) {
		case "public":
			e.Private = false
		case "private":
			e.Private = true
		default:
			return fmt.Errorf("%w: visibility must be public or private, got %q", ErrInvalidEvent, value)
		}
		return nil
	})
}

// CivilLayouts are the accepted date-time forms for edits.
var CivilLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// parseEditTime accepts a full civil date-time, or a clock time that keeps the
// local date of current. The result is UTC.
func parseEditTime(value string, current time.Time, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range CivilLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t.UTC(), nil
		}
	}
	for _, layout := range []string{"15:04:05", "15:04"} {
		if clock, err := time.Parse(layout, value); err == nil {
			y, m, d := current.Date()
			return time.Date(y, m, d, clock.Hour(), clock.Minute(), clock.Second(), 0, loc).UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: can't read %q as a date-time", ErrInvalidEvent, value)
}

// ParseCivil reads a civil date-time in one of CivilLayouts, labelled UTC.
func ParseCivil(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range append(slices.Clone(CivilLayouts), time.DateOnly) {
		if t, err := time.Parse(layout, value); err == nil {
			return timezone.Civil(t, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("ParseCivil: %w: can't read %q as a date-time", ErrInvalidEvent, value)
}
