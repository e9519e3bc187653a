package calendar

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"calman/src-server/timezone"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
)

// DefaultOccurrenceCount applies when a recurring event has neither a count
// nor an end date.
const DefaultOccurrenceCount = 10

// RecurringEvent is a weekly template. Start, End and Until are civil values
// labelled UTC; the calendar holding the rule decides which zone they mean.
type RecurringEvent struct {
	seriesID uuid.UUID

	Subject     string
	Description string
	Location    string
	Private     bool
	AllDay      bool

	start    time.Time
	end      time.Time
	weekdays []time.Weekday
	count    int
	until    time.Time

	hasCount bool
	// set once a calendar holds the rule; occurrence ids would repeat otherwise
	admitted bool
}

type RecurringOption func(r *RecurringEvent)

func WithCount(n int) RecurringOption {
	return func(r *RecurringEvent) {
		r.count = n
		r.hasCount = true
	}
}

// WithUntil ends the series on date, inclusive.
func WithUntil(date time.Time) RecurringOption {
	return func(r *RecurringEvent) {
		r.until = timezone.Midnight(date, time.UTC)
	}
}

func WithDescription(description string) RecurringOption {
	return func(r *RecurringEvent) { r.Description = description }
}

func WithLocation(location string) RecurringOption {
	return func(r *RecurringEvent) { r.Location = location }
}

func WithPrivate(private bool) RecurringOption {
	return func(r *RecurringEvent) { r.Private = private }
}

func WithAllDay() RecurringOption {
	return func(r *RecurringEvent) { r.AllDay = true }
}

// NewRecurringEvent repeats the start/end pair on every listed weekday, starting
// from the date of start.
func NewRecurringEvent(subject string, start, end time.Time, weekdays []time.Weekday, opts ...RecurringOption) (*RecurringEvent, error) {
	r := &RecurringEvent{
		seriesID: uuid.New(),
		Subject:  subject,
		start:    timezone.Civil(start, time.UTC),
		end:      timezone.Civil(end, time.UTC),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.AllDay {
		r.start, r.end = allDayBounds(r.start)
	}

	for _, wd := range weekdays {
		if wd < time.Sunday || wd > time.Saturday {
			return nil, fmt.Errorf("NewRecurringEvent: %w: weekday %d out of range", ErrInvalidEvent, wd)
		}
		if !slices.Contains(r.weekdays, wd) {
			r.weekdays = append(r.weekdays, wd)
		}
	}
	slices.Sort(r.weekdays)

	switch {
	case strings.TrimSpace(r.Subject) == "":
		return nil, fmt.Errorf("NewRecurringEvent: %w: subject is blank", ErrInvalidEvent)
	case start.IsZero() || (!r.AllDay && end.IsZero()):
		return nil, fmt.Errorf("NewRecurringEvent: %w: start and end are required", ErrInvalidEvent)
	case !r.end.After(r.start):
		return nil, fmt.Errorf("NewRecurringEvent: %w: end is not after start", ErrInvalidEvent)
	case len(r.weekdays) == 0:
		return nil, fmt.Errorf("NewRecurringEvent: %w: no weekdays", ErrInvalidEvent)
	case r.hasCount && !r.until.IsZero():
		return nil, fmt.Errorf("NewRecurringEvent: %w: count and end date are mutually exclusive", ErrInvalidEvent)
	case r.hasCount && r.count <= 0:
		return nil, fmt.Errorf("NewRecurringEvent: %w: count must be positive, got %d", ErrInvalidEvent, r.count)
	case !r.until.IsZero() && r.until.Before(timezone.Midnight(r.start, time.UTC)):
		return nil, fmt.Errorf("NewRecurringEvent: %w: end date is before the first occurrence", ErrInvalidEvent)
	}
	if !r.hasCount && r.until.IsZero() {
		r.count = DefaultOccurrenceCount
	}
	return r, nil
}

func (r *RecurringEvent) SeriesID() string {
	return r.seriesID.String()
}

func (r *RecurringEvent) Start() time.Time {
	return r.start
}

func (r *RecurringEvent) End() time.Time {
	return r.end
}

func (r *RecurringEvent) Duration() time.Duration {
	return r.end.Sub(r.start)
}

func (r *RecurringEvent) Weekdays() []time.Weekday {
	return slices.Clone(r.weekdays)
}

// Count is zero when the series ends on a date instead.
func (r *RecurringEvent) Count() int {
	return r.count
}

// Until is the zero time when the series is bounded by a count.
func (r *RecurringEvent) Until() time.Time {
	return r.until
}

// setDefaultCount replaces the package default when the caller gave no
// termination at all.
func (r *RecurringEvent) setDefaultCount(n int) {
	if r.hasCount || !r.until.IsZero() || n <= 0 {
		return
	}
	r.count = n
}

func (r *RecurringEvent) clone() *RecurringEvent {
	c := *r
	c.weekdays = slices.Clone(r.weekdays)
	return &c
}

var rruleWeekdays = map[time.Weekday]rrule.Weekday{
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
	time.Sunday:    rrule.SU,
}

func (r *RecurringEvent) option() rrule.ROption {
	opt := rrule.ROption{
		Freq:    rrule.WEEKLY,
		Dtstart: r.start,
		Wkst:    rrule.MO,
	}
	for _, wd := range r.weekdays {
		opt.Byweekday = append(opt.Byweekday, rruleWeekdays[wd])
	}
	if r.until.IsZero() {
		opt.Count = r.count
	} else {
		opt.Until = r.until.Add(24*time.Hour - time.Second)
	}
	return opt
}

func (r *RecurringEvent) rrule() (*rrule.RRule, error) {
	rule, err := rrule.NewRRule(r.option())
	if err != nil {
		return nil, fmt.Errorf("RecurringEvent.rrule: %w", err)
	}
	return rule, nil
}

// RRule renders the rule as an RFC 5545 RRULE value.
func (r *RecurringEvent) RRule() string {
	opt := r.option()
	return opt.RRuleString()
}

// occurrenceID is stable per series and date, so regenerating an occurrence
// yields the identifier of the one already stored.
func (r *RecurringEvent) occurrenceID(start time.Time) string {
	return uuid.NewSHA1(r.seriesID, []byte(start.Format(time.DateOnly))).String()
}

func (r *RecurringEvent) occurrence(start time.Time) Event {
	return Event{
		id:          r.occurrenceID(start),
		seriesID:    r.SeriesID(),
		Subject:     r.Subject,
		Description: r.Description,
		Location:    r.Location,
		Private:     r.Private,
		AllDay:      r.AllDay,
		Start:       start,
		End:         start.Add(r.Duration()),
	}
}

// AllOccurrences returns every occurrence in civil time.
func (r *RecurringEvent) AllOccurrences() []Event {
	rule, err := r.rrule()
	if err != nil {
		return nil
	}
	starts := rule.All()
	events := make([]Event, 0, len(starts))
	for _, start := range starts {
		events = append(events, r.occurrence(start))
	}
	return events
}

// OccurrencesBetween returns the occurrences overlapping [from, to), both
// read as civil times.
func (r *RecurringEvent) OccurrencesBetween(from, to time.Time) []Event {
	from, to = timezone.Civil(from, time.UTC), timezone.Civil(to, time.UTC)
	if !to.After(from) {
		return nil
	}
	rule, err := r.rrule()
	if err != nil {
		return nil
	}
	events := make([]Event, 0)
	for _, start := range rule.Between(from.Add(-r.Duration()), to, true) {
		e := r.occurrence(start)
		if e.Start.Before(to) && e.End.After(from) {
			events = append(events, e)
		}
	}
	return events
}

// OccurrenceOn returns the occurrence starting on the civil date of day.
func (r *RecurringEvent) OccurrenceOn(day time.Time) (Event, bool) {
	if !slices.Contains(r.weekdays, day.Weekday()) {
		return Event{}, false
	}
	rule, err := r.rrule()
	if err != nil {
		return Event{}, false
	}
	midnight := timezone.Midnight(day, time.UTC)
	next := midnight.AddDate(0, 0, 1)
	for _, start := range rule.Between(midnight, next, true) {
		if start.Before(next) {
			return r.occurrence(start), true
		}
	}
	return Event{}, false
}
