package calendar

import (
	"fmt"
	"log/slog"
	"slices"
	"time"
)

// EditSingleEvent edits the event with the given subject starting at the
// civil time start. It reports false when no event matches.
func (c *Calendar) EditSingleEvent(subject string, start time.Time, property Property, value string) (bool, error) {
	t := c.canonical(start)
	n, err := c.edit("EditSingleEvent", property, value, 1, func(e *Event) bool {
		return e.Subject == subject && e.Start.Equal(t)
	})
	return n == 1, err
}

// EditEventsFromDate edits every event with the subject starting at or after
// the civil time from.
func (c *Calendar) EditEventsFromDate(subject string, from time.Time, property Property, value string) (int, error) {
	t := c.canonical(from)
	return c.edit("EditEventsFromDate", property, value, 0, func(e *Event) bool {
		return e.Subject == subject && !e.Start.Before(t)
	})
}

func (c *Calendar) EditAllEvents(subject string, property Property, value string) (int, error) {
	return c.edit("EditAllEvents", property, value, 0, func(e *Event) bool {
		return e.Subject == subject
	})
}

// edit applies one mutation to every match, or to none of them when any
// target fails validation or, for time edits, conflicts with an event outside
// the target set.
func (c *Calendar) edit(op string, property Property, value string, limit int, match func(e *Event) bool) (int, error) {
	mutate, ok := mutators[property]
	if !ok {
		return 0, fmt.Errorf("Calendar.%s: %w: %q", op, ErrUnsupportedProperty, property)
	}

	targets := make([]*Event, 0)
	for _, e := range c.events {
		if match(e) {
			targets = append(targets, e)
			if limit > 0 && len(targets) == limit {
				break
			}
		}
	}
	if len(targets) == 0 {
		return 0, nil
	}

	backup := make([]Event, len(targets))
	for i, e := range targets {
		backup[i] = *e
	}
	rollback := func(err error) (int, error) {
		for i, e := range targets {
			*e = backup[i]
		}
		slog.Debug("edit rolled back", "calendar", c.name, "property", property, "error", err)
		return 0, err
	}

	for _, e := range targets {
		if err := mutate(e, value, c.loc); err != nil {
			return rollback(fmt.Errorf("Calendar.%s: %w", op, err))
		}
		if err := e.Validate(); err != nil {
			return rollback(fmt.Errorf("Calendar.%s: %w", op, err))
		}
	}

	if property.isTime() {
		edited := func(id string) bool {
			return slices.ContainsFunc(targets, func(e *Event) bool { return e.id == id })
		}
		for i, e := range targets {
			if existing, ok := c.conflictWith(*e, edited); ok {
				return rollback(c.conflictError(op, *e, existing))
			}
			for _, sibling := range targets[:i] {
				if sibling.Overlaps(*e) {
					return rollback(c.conflictError(op, *e, *sibling))
				}
			}
		}
	}

	slog.Debug("events edited", "calendar", c.name, "property", property, "count", len(targets))
	return len(targets), nil
}
