package calendar

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"calman/src-server/timezone"
)

// ConflictPolicy decides what an overlap does to an admission.
type ConflictPolicy int

const (
	// ConflictStrict rejects the admission with ErrConflict.
	ConflictStrict ConflictPolicy = iota
	// ConflictAllow admits the event regardless of overlaps.
	ConflictAllow
)

func (p ConflictPolicy) String() string {
	switch p {
	case ConflictStrict:
		return "strict"
	case ConflictAllow:
		return "allow"
	default:
		return fmt.Sprintf("ConflictPolicy(%d)", int(p))
	}
}

// Calendar stores every event in UTC and reads caller times as civil times in
// its own zone. It is not safe for concurrent use.
type Calendar struct {
	name     string
	timezone string
	loc      *time.Location

	converter    *timezone.Converter
	recorder     Recorder
	defaultCount int

	events []*Event
	index  map[string]*Event
	rules  []*RecurringEvent

	// occurrences removed from their series, never regenerated
	tombstones map[string]struct{}
}

func newCalendar(name, tz string, s settings) (*Calendar, error) {
	loc, err := s.converter.Location(tz)
	if err != nil {
		return nil, fmt.Errorf("newCalendar: %w", err)
	}
	return &Calendar{
		name:         name,
		timezone:     tz,
		loc:          loc,
		converter:    s.converter,
		recorder:     s.recorder,
		defaultCount: s.defaultCount,
		index:        make(map[string]*Event),
		tombstones:   make(map[string]struct{}),
	}, nil
}

func (c *Calendar) Name() string {
	return c.name
}

func (c *Calendar) Timezone() string {
	return c.timezone
}

func (c *Calendar) Location() *time.Location {
	return c.loc
}

// Local projects a stored instant into the calendar's zone.
func (c *Calendar) Local(t time.Time) time.Time {
	return t.In(c.loc)
}

func (c *Calendar) Len() int {
	return len(c.events)
}

func (c *Calendar) canonical(civil time.Time) time.Time {
	return timezone.Civil(civil, c.loc).UTC()
}

// canonicalEvent converts a civil event into UTC, pinning all-day events to
// their local day first.
func (c *Calendar) canonicalEvent(e Event) Event {
	if e.AllDay {
		e.Start, e.End = allDayBounds(timezone.Civil(e.Start, time.UTC))
	}
	e.Start = c.canonical(e.Start)
	e.End = c.canonical(e.End)
	return e
}

// conflictWith scans every stored event not excluded by skip.
func (c *Calendar) conflictWith(e Event, skip func(id string) bool) (Event, bool) {
	for _, existing := range c.events {
		if skip != nil && skip(existing.id) {
			continue
		}
		if existing.Overlaps(e) {
			return *existing, true
		}
	}
	return Event{}, false
}

func (c *Calendar) conflictError(op string, e, existing Event) error {
	c.recorder.ConflictDetected(op)
	slog.Debug("conflict detected", "calendar", c.name, "subject", e.Subject, "with", existing.Subject, "id", existing.id)
	return fmt.Errorf("Calendar.%s: %w: %q overlaps %q (%s)", op, ErrConflict, e.Subject, existing.Subject, existing.id)
}

func (c *Calendar) position(id string) int {
	return slices.IndexFunc(c.events, func(e *Event) bool { return e.id == id })
}

func (c *Calendar) insert(pos int, e *Event) {
	if pos < 0 || pos > len(c.events) {
		pos = len(c.events)
	}
	c.events = slices.Insert(c.events, pos, e)
	c.index[e.id] = e
}

func (c *Calendar) remove(id string) (*Event, int) {
	pos := c.position(id)
	if pos < 0 {
		return nil, -1
	}
	e := c.events[pos]
	c.events = slices.Delete(c.events, pos, pos+1)
	delete(c.index, id)
	return e, pos
}

// AddEvent admits e, whose times are civil in the calendar's zone, and returns
// the stored UTC copy.
func (c *Calendar) AddEvent(e Event, policy ConflictPolicy) (Event, error) {
	return c.addEvent("AddEvent", "single", e, policy)
}

func (c *Calendar) addEvent(op, kind string, e Event, policy ConflictPolicy) (Event, error) {
	stored, err := c.admit(op, e, policy)
	if err != nil {
		return Event{}, err
	}
	c.recorder.EventAdmitted(kind, 1)
	return stored, nil
}

// admit stores e without reporting it, for callers that report in bulk.
func (c *Calendar) admit(op string, e Event, policy ConflictPolicy) (Event, error) {
	if e.AllDay && e.End.IsZero() {
		e.End = e.Start
	}
	if e.AllDay {
		e.Start, e.End = allDayBounds(e.Start)
	}
	if err := e.Validate(); err != nil {
		return Event{}, fmt.Errorf("Calendar.%s: %w", op, err)
	}
	if _, exists := c.index[e.id]; exists {
		return Event{}, fmt.Errorf("Calendar.%s: %w: id %s already stored", op, ErrInvalidEvent, e.id)
	}
	stored := c.canonicalEvent(e)
	if policy == ConflictStrict {
		if existing, ok := c.conflictWith(stored, nil); ok {
			return Event{}, c.conflictError(op, stored, existing)
		}
	}
	c.insert(len(c.events), &stored)
	slog.Debug("event admitted", "calendar", c.name, "id", stored.id, "subject", stored.Subject, "start", stored.Start)
	return stored, nil
}

// AddRecurringEvent materializes every occurrence of r and admits them all or
// none of them. The calendar keeps its own copy of r; a rule can be admitted
// to one calendar only.
func (c *Calendar) AddRecurringEvent(r *RecurringEvent, policy ConflictPolicy) ([]Event, error) {
	if r == nil {
		return nil, fmt.Errorf("Calendar.AddRecurringEvent: %w: nil rule", ErrInvalidEvent)
	}
	if r.admitted {
		return nil, fmt.Errorf("Calendar.AddRecurringEvent: %w: series %s already stored", ErrInvalidEvent, r.SeriesID())
	}
	stored := r.clone()
	stored.setDefaultCount(c.defaultCount)

	occurrences := stored.AllOccurrences()
	if len(occurrences) == 0 {
		return nil, fmt.Errorf("Calendar.AddRecurringEvent: %w: rule yields no occurrences", ErrInvalidEvent)
	}
	for i := range occurrences {
		occurrences[i] = c.canonicalEvent(occurrences[i])
	}

	if policy == ConflictStrict {
		for i, occ := range occurrences {
			if existing, ok := c.conflictWith(occ, nil); ok {
				return nil, c.conflictError("AddRecurringEvent", occ, existing)
			}
			for _, sibling := range occurrences[:i] {
				if sibling.Overlaps(occ) {
					return nil, c.conflictError("AddRecurringEvent", occ, sibling)
				}
			}
		}
	}

	for i := range occurrences {
		c.insert(len(c.events), &occurrences[i])
	}
	r.admitted = true
	stored.admitted = true
	c.rules = append(c.rules, stored)
	c.recorder.EventAdmitted("recurring", len(occurrences))
	slog.Debug("recurring event admitted", "calendar", c.name, "series", stored.SeriesID(), "subject", stored.Subject, "occurrences", len(occurrences))
	return slices.Clone(occurrences), nil
}

// GetRecurringEvent returns a copy of the stored rule of a series.
func (c *Calendar) GetRecurringEvent(seriesID string) (*RecurringEvent, error) {
	for _, r := range c.rules {
		if r.SeriesID() == seriesID {
			return r.clone(), nil
		}
	}
	return nil, fmt.Errorf("Calendar.GetRecurringEvent: %w: series %s", ErrEventNotFound, seriesID)
}

// UpdateEvent replaces the event stored under id, keeping the id and series.
// The replacement is checked strictly against every other event; on failure
// the original stays exactly as it was.
func (c *Calendar) UpdateEvent(id string, replacement Event) (Event, error) {
	original, pos := c.remove(id)
	if original == nil {
		return Event{}, fmt.Errorf("Calendar.UpdateEvent: %w: %s", ErrEventNotFound, id)
	}

	next := replacement
	next.id = original.id
	next.seriesID = original.seriesID
	if next.AllDay {
		next.Start, next.End = allDayBounds(next.Start)
	}
	rollback := func(err error) (Event, error) {
		c.insert(pos, original)
		slog.Debug("update rolled back", "calendar", c.name, "id", id, "error", err)
		return Event{}, err
	}

	if err := next.Validate(); err != nil {
		return rollback(fmt.Errorf("Calendar.UpdateEvent: %w", err))
	}
	next = c.canonicalEvent(next)
	if existing, ok := c.conflictWith(next, nil); ok {
		return rollback(c.conflictError("UpdateEvent", next, existing))
	}

	c.insert(pos, &next)
	slog.Debug("event updated", "calendar", c.name, "id", id, "subject", next.Subject)
	return next, nil
}

// DeleteEvent removes one event. A removed occurrence stays removed even
// though its series still describes it.
func (c *Calendar) DeleteEvent(id string) error {
	e, _ := c.remove(id)
	if e == nil {
		return fmt.Errorf("Calendar.DeleteEvent: %w: %s", ErrEventNotFound, id)
	}
	if e.seriesID != "" {
		c.tombstones[id] = struct{}{}
	}
	slog.Debug("event deleted", "calendar", c.name, "id", id)
	return nil
}

// DeleteSeries removes a recurring event and all of its stored occurrences.
func (c *Calendar) DeleteSeries(seriesID string) (int, error) {
	ruleFound := false
	c.rules = slices.DeleteFunc(c.rules, func(r *RecurringEvent) bool {
		if r.SeriesID() == seriesID {
			ruleFound = true
			return true
		}
		return false
	})
	removed := 0
	c.events = slices.DeleteFunc(c.events, func(e *Event) bool {
		if e.seriesID != seriesID {
			return false
		}
		delete(c.index, e.id)
		delete(c.tombstones, e.id)
		removed++
		return true
	})
	if !ruleFound && removed == 0 {
		return 0, fmt.Errorf("Calendar.DeleteSeries: %w: series %s", ErrEventNotFound, seriesID)
	}
	slog.Debug("series deleted", "calendar", c.name, "series", seriesID, "occurrences", removed)
	return removed, nil
}

// SetTimezone moves the calendar to tz. Stored events keep their local wall
// clock reading, so their UTC values shift.
func (c *Calendar) SetTimezone(tz string) error {
	loc, err := c.converter.Location(tz)
	if err != nil {
		return fmt.Errorf("Calendar.SetTimezone: %w", err)
	}
	for _, e := range c.events {
		e.Start = timezone.Civil(e.Start.In(c.loc), loc).UTC()
		e.End = timezone.Civil(e.End.In(c.loc), loc).UTC()
	}
	slog.Debug("timezone changed", "calendar", c.name, "from", c.timezone, "to", tz, "events", len(c.events))
	c.timezone = tz
	c.loc = loc
	return nil
}

func (c *Calendar) GetEvent(id string) (Event, error) {
	e, ok := c.index[id]
	if !ok {
		return Event{}, fmt.Errorf("Calendar.GetEvent: %w: %s", ErrEventNotFound, id)
	}
	return *e, nil
}
