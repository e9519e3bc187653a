package ical

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"calman/src-server/calendar"
	"calman/src-server/timezone"

	ics "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"
)

var (
	ErrUnsupportedRule = errors.New("unsupported recurrence rule")
	ErrMultiDayEvent   = errors.New("all-day event spans more than one day")
)

type ImportResult struct {
	Added     int
	Recurring int
	Skipped   []*ImportError
}

// Import reads VEVENTs from r into cal. A VEVENT that cannot be admitted is
// recorded in the result and does not stop the import; only an unreadable
// stream is an error.
func Import(r io.Reader, cal *calendar.Calendar, policy calendar.ConflictPolicy) (ImportResult, error) {
	parsed, err := ics.ParseCalendar(r)
	if err != nil {
		return ImportResult{}, fmt.Errorf("ical.Import: %w", err)
	}

	var result ImportResult
	for i, vevent := range parsed.Events() {
		skip := func(msg string, err error) {
			ierr := NewImportError(msg, err, map[string]any{
				"index": i,
				"uid":   vevent.Id(),
			})
			slog.Warn("skipping vevent", "calendar", cal.Name(), "error", ierr)
			result.Skipped = append(result.Skipped, ierr)
		}

		if prop := vevent.GetProperty(ics.ComponentPropertyRrule); prop != nil {
			rule, err := recurringFromVEvent(vevent, prop.Value, cal.Location())
			if err != nil {
				skip("invalid recurring event", err)
				continue
			}
			occurrences, err := cal.AddRecurringEvent(rule, policy)
			if err != nil {
				skip("recurring event rejected", err)
				continue
			}
			result.Recurring++
			result.Added += len(occurrences)
			continue
		}

		e, err := eventFromVEvent(vevent, cal.Location())
		if err != nil {
			skip("invalid event", err)
			continue
		}
		if _, err := cal.AddEvent(e, policy); err != nil {
			skip("event rejected", err)
			continue
		}
		result.Added++
	}

	slog.Info("ical imported", "calendar", cal.Name(), "added", result.Added, "recurring", result.Recurring, "skipped", len(result.Skipped))
	return result, nil
}

func propValue(vevent *ics.VEvent, p ics.ComponentProperty) string {
	if prop := vevent.GetProperty(p); prop != nil {
		return prop.Value
	}
	return ""
}

func isAllDay(vevent *ics.VEvent) bool {
	prop := vevent.GetProperty(ics.ComponentPropertyDtStart)
	if prop == nil {
		return false
	}
	if v, ok := prop.ICalParameters[string(ics.ParameterValue)]; ok && len(v) == 1 && v[0] == "DATE" {
		return true
	}
	return len(prop.Value) == len("20060102")
}

// veventCivil reads a VEVENT time as a wall clock reading in loc. Floating
// times already are one; zoned times are projected first.
func veventCivil(vevent *ics.VEvent, p ics.ComponentProperty, t time.Time, loc *time.Location) time.Time {
	prop := vevent.GetProperty(p)
	_, zoned := prop.ICalParameters["TZID"]
	if zoned || strings.HasSuffix(prop.Value, "Z") {
		t = t.In(loc)
	}
	return timezone.Civil(t, loc)
}

type times struct {
	start, end time.Time
	allDay     bool
}

func veventTimes(vevent *ics.VEvent, loc *time.Location) (times, error) {
	if isAllDay(vevent) {
		start, err := vevent.GetAllDayStartAt()
		if err != nil {
			return times{}, err
		}
		// DTEND is exclusive, one day past the start for a single day
		if end, err := vevent.GetAllDayEndAt(); err == nil && timezone.Midnight(end, time.UTC).After(timezone.Midnight(start, time.UTC).AddDate(0, 0, 1)) {
			return times{}, fmt.Errorf("%w: %s to %s", ErrMultiDayEvent, start.Format(time.DateOnly), end.Format(time.DateOnly))
		}
		return times{start: timezone.Civil(start, loc), end: timezone.Civil(start, loc), allDay: true}, nil
	}

	start, err := vevent.GetStartAt()
	if err != nil {
		return times{}, err
	}
	end, err := vevent.GetEndAt()
	if err != nil {
		return times{}, err
	}
	return times{
		start: veventCivil(vevent, ics.ComponentPropertyDtStart, start, loc),
		end:   veventCivil(vevent, ics.ComponentPropertyDtEnd, end, loc),
	}, nil
}

func eventFromVEvent(vevent *ics.VEvent, loc *time.Location) (calendar.Event, error) {
	t, err := veventTimes(vevent, loc)
	if err != nil {
		return calendar.Event{}, err
	}

	var e calendar.Event
	if id := vevent.Id(); id != "" {
		e = calendar.NewEventWithID(id, propValue(vevent, ics.ComponentPropertySummary), t.start, t.end)
	} else {
		e = calendar.NewEvent(propValue(vevent, ics.ComponentPropertySummary), t.start, t.end)
	}
	e.Description = propValue(vevent, ics.ComponentPropertyDescription)
	e.Location = propValue(vevent, ics.ComponentPropertyLocation)
	e.Private = propValue(vevent, ics.ComponentPropertyClass) == string(ics.ClassificationPrivate)
	e.AllDay = t.allDay
	return e, nil
}

func recurringFromVEvent(vevent *ics.VEvent, value string, loc *time.Location) (*calendar.RecurringEvent, error) {
	opt, err := rrule.StrToROption(value)
	if err != nil {
		return nil, err
	}
	if opt.Freq != rrule.WEEKLY {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedRule, opt.Freq)
	}

	t, err := veventTimes(vevent, loc)
	if err != nil {
		return nil, err
	}

	weekdays := make([]time.Weekday, 0, len(opt.Byweekday))
	for i := range opt.Byweekday {
		// rrule counts from Monday
		weekdays = append(weekdays, time.Weekday((opt.Byweekday[i].Day()+1)%7))
	}
	if len(weekdays) == 0 {
		weekdays = append(weekdays, t.start.Weekday())
	}

	opts := []calendar.RecurringOption{
		calendar.WithDescription(propValue(vevent, ics.ComponentPropertyDescription)),
		calendar.WithLocation(propValue(vevent, ics.ComponentPropertyLocation)),
		calendar.WithPrivate(propValue(vevent, ics.ComponentPropertyClass) == string(ics.ClassificationPrivate)),
	}
	switch {
	case opt.Count > 0:
		opts = append(opts, calendar.WithCount(opt.Count))
	case !opt.Until.IsZero():
		opts = append(opts, calendar.WithUntil(opt.Until.In(loc)))
	}
	if t.allDay {
		opts = append(opts, calendar.WithAllDay())
	}

	return calendar.NewRecurringEvent(propValue(vevent, ics.ComponentPropertySummary), t.start, t.end, weekdays, opts...)
}
