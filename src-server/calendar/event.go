package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Event struct {
	id       string
	seriesID string

	Subject     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	Private     bool
	AllDay      bool
}

func NewEvent(subject string, start, end time.Time) Event {
	return NewEventWithID(uuid.NewString(), subject, start, end)
}

// NewEventWithID builds an event that takes over an existing identifier, used
// when replacing an event in place.
func NewEventWithID(id, subject string, start, end time.Time) Event {
	return Event{
		id:      id,
		Subject: subject,
		Start:   start,
		End:     end,
	}
}

// NewAllDayEvent spans 00:00:00 to 23:59:59 of date.
func NewAllDayEvent(subject string, date time.Time) Event {
	e := NewEvent(subject, time.Time{}, time.Time{})
	e.AllDay = true
	e.Start, e.End = allDayBounds(date)
	return e
}

func allDayBounds(date time.Time) (time.Time, time.Time) {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, date.Location()),
		time.Date(y, m, d, 23, 59, 59, 0, date.Location())
}

func (e Event) ID() string {
	return e.id
}

// SeriesID is shared by every occurrence of one recurring event, empty for
// single events.
func (e Event) SeriesID() string {
	return e.seriesID
}

func (e Event) IsRecurring() bool {
	return e.seriesID != ""
}

func (e Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// Overlaps is a half-open test, touching intervals do not overlap.
func (e Event) Overlaps(other Event) bool {
	return e.Start.Before(other.End) && other.Start.Before(e.End)
}

func (e Event) Contains(t time.Time) bool {
	return !t.Before(e.Start) && t.Before(e.End)
}

func (e Event) Validate() error {
	switch {
	case e.id == "":
		return fmt.Errorf("Event.Validate: %w: missing id", ErrInvalidEvent)
	case strings.TrimSpace(e.Subject) == "":
		return fmt.Errorf("Event.Validate: %w: subject is blank", ErrInvalidEvent)
	case e.Start.IsZero() || e.End.IsZero():
		return fmt.Errorf("Event.Validate: %w: start and end are required", ErrInvalidEvent)
	case !e.End.After(e.Start):
		return fmt.Errorf("Event.Validate: %w: end %s is not after start %s", ErrInvalidEvent,
			e.End.Format(time.DateTime), e.Start.Format(time.DateTime))
	}
	return nil
}

func (e Event) String() string {
	return fmt.Sprintf("%s [%s - %s]", e.Subject, e.Start.Format(time.DateTime), e.End.Format(time.DateTime))
}
