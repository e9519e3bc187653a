package calendar

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"calman/src-server/timezone"
)

func sortEvents(events []Event) {
	slices.SortFunc(events, func(a, b Event) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Subject, b.Subject); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	})
}

func (c *Calendar) observe(op string, started time.Time) {
	c.recorder.QueryObserved(op, time.Since(started))
}

// known reports whether an occurrence id is already decided by stored state,
// either materialized or deleted.
func (c *Calendar) known(id string) bool {
	if _, ok := c.index[id]; ok {
		return true
	}
	_, ok := c.tombstones[id]
	return ok
}

// localDay returns [00:00 of date, 00:00 of the next date) in the calendar's
// zone, as UTC instants.
func (c *Calendar) localDay(date time.Time) (time.Time, time.Time) {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.loc).UTC(), time.Date(y, m, d+1, 0, 0, 0, 0, c.loc).UTC()
}

// onLocalDay decides whether a stored event belongs to the local day
// [dayStart, dayEnd).
func (c *Calendar) onLocalDay(e Event, dayStart, dayEnd time.Time) bool {
	localStart, localEnd := e.Start.In(c.loc), e.End.In(c.loc)
	localDay := dayStart.In(c.loc)
	switch {
	case localStart.Equal(localDay):
		return true
	case timezone.SameDate(localStart, localDay):
		return true
	case timezone.SameDate(localEnd, localDay) && localEnd.After(localDay):
		// ending exactly at midnight belongs to the previous day only
		return true
	case e.Start.Before(dayStart) && !e.End.Before(dayEnd):
		return true
	}
	return false
}

func (c *Calendar) GetAllEvents() []Event {
	events := make([]Event, 0, len(c.events))
	for _, e := range c.events {
		events = append(events, *e)
	}
	sortEvents(events)
	return events
}

// GetAllRecurringEvents returns copies of the stored rules.
func (c *Calendar) GetAllRecurringEvents() []*RecurringEvent {
	rules := make([]*RecurringEvent, 0, len(c.rules))
	for _, r := range c.rules {
		rules = append(rules, r.clone())
	}
	return rules
}

// GetEventsOnDate returns the events touching the local date of date.
func (c *Calendar) GetEventsOnDate(date time.Time) []Event {
	defer c.observe("date", time.Now())

	dayStart, dayEnd := c.localDay(date)
	canonicalDay := timezone.Midnight(date, time.UTC)
	windowStart, windowEnd := canonicalDay.AddDate(0, 0, -1), canonicalDay.AddDate(0, 0, 2)

	found := make(map[string]Event)
	for _, e := range c.events {
		if !e.Start.Before(windowEnd) || e.End.Before(windowStart) {
			continue
		}
		if c.onLocalDay(*e, dayStart, dayEnd) {
			found[e.id] = *e
		}
	}

	// AddRecurringEvent stores every occurrence, so expanding the rules is a
	// fallback for a rule held without its occurrences; anything stored or
	// deleted is skipped through known.
	civilDay := timezone.Midnight(date, time.UTC)
	for _, r := range c.rules {
		for _, day := range []time.Time{civilDay, civilDay.AddDate(0, 0, -1)} {
			occ, ok := r.OccurrenceOn(day)
			if !ok || c.known(occ.id) {
				continue
			}
			occ = c.canonicalEvent(occ)
			if c.onLocalDay(occ, dayStart, dayEnd) {
				found[occ.id] = occ
			}
		}
	}

	return collect(found)
}

// GetEventsInRange returns the events touching any local date from start to
// end, both inclusive.
func (c *Calendar) GetEventsInRange(start, end time.Time) []Event {
	defer c.observe("range", time.Now())

	from, _ := c.localDay(start)
	_, to := c.localDay(end)
	if !to.After(from) {
		return []Event{}
	}

	found := make(map[string]Event)
	for _, e := range c.events {
		if e.Start.Before(to) && e.End.After(from) {
			found[e.id] = *e
		}
	}

	// same fallback as in GetEventsOnDate
	civilFrom := timezone.Midnight(start, time.UTC)
	civilTo := timezone.Midnight(end, time.UTC).AddDate(0, 0, 1)
	for _, r := range c.rules {
		for _, occ := range r.OccurrencesBetween(civilFrom, civilTo) {
			if c.known(occ.id) {
				continue
			}
			occ = c.canonicalEvent(occ)
			if occ.Start.Before(to) && occ.End.After(from) {
				found[occ.id] = occ
			}
		}
	}

	return collect(found)
}

func collect(found map[string]Event) []Event {
	events := make([]Event, 0, len(found))
	for _, e := range found {
		events = append(events, e)
	}
	sortEvents(events)
	return events
}

// IsBusy reports whether the civil instant falls inside any event or any
// occurrence of a recurring event.
func (c *Calendar) IsBusy(instant time.Time) bool {
	defer c.observe("busy", time.Now())

	t := c.canonical(instant)
	for _, e := range c.events {
		if e.Contains(t) {
			return true
		}
	}

	// same fallback as in GetEventsOnDate
	civilDay := timezone.Midnight(instant, time.UTC)
	for _, r := range c.rules {
		// an occurrence from the day before can run past midnight
		for _, day := range []time.Time{civilDay, civilDay.AddDate(0, 0, -1)} {
			occ, ok := r.OccurrenceOn(day)
			if !ok || c.known(occ.id) {
				continue
			}
			if c.canonicalEvent(occ).Contains(t) {
				return true
			}
		}
	}
	return false
}

// FindEvent looks up an event by subject and civil start time.
func (c *Calendar) FindEvent(subject string, start time.Time) (Event, error) {
	t := c.canonical(start)
	for _, e := range c.events {
		if e.Subject == subject && e.Start.Equal(t) {
			return *e, nil
		}
	}
	return Event{}, fmt.Errorf("Calendar.FindEvent: %w: %q at %s", ErrEventNotFound, subject, start.Format(time.DateTime))
}
