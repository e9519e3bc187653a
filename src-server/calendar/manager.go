package calendar

import (
	"fmt"
	"log/slog"
	"time"

	"calman/src-server/timezone"
)

// Manager fronts a Registry with the timezone checks and the operations that
// span two calendars.
type Manager struct {
	registry  *Registry
	converter *timezone.Converter
	recorder  Recorder
}

func NewManager(opts ...Option) *Manager {
	registry := NewRegistry(opts...)
	return &Manager{
		registry:  registry,
		converter: registry.settings.converter,
		recorder:  registry.settings.recorder,
	}
}

func (m *Manager) Converter() *timezone.Converter {
	return m.converter
}

func (m *Manager) CreateCalendar(name, tz string) (*Calendar, error) {
	if !m.converter.IsValidTimezone(tz) {
		return nil, fmt.Errorf("Manager.CreateCalendar: %w: %q", ErrInvalidTimezone, tz)
	}
	cal, err := m.registry.Register(name, tz)
	if err != nil {
		return nil, fmt.Errorf("Manager.CreateCalendar: %w", err)
	}
	slog.Info("calendar created", "name", name, "timezone", tz)
	return cal, nil
}

func (m *Manager) GetCalendar(name string) (*Calendar, error) {
	return m.registry.Get(name)
}

// Calendars returns every calendar in registration order.
func (m *Manager) Calendars() []*Calendar {
	calendars := make([]*Calendar, 0, m.registry.Len())
	for _, name := range m.registry.Names() {
		calendars = append(calendars, m.registry.calendars[name])
	}
	return calendars
}

func (m *Manager) SetActive(name string) error {
	return m.registry.SetActive(name)
}

func (m *Manager) Active() (*Calendar, error) {
	return m.registry.Active()
}

func (m *Manager) RenameCalendar(oldName, newName string) error {
	return m.registry.Rename(oldName, newName)
}

func (m *Manager) RemoveCalendar(name string) error {
	return m.registry.Remove(name)
}

func (m *Manager) EditCalendarTimezone(name, tz string) error {
	cal, err := m.registry.Get(name)
	if err != nil {
		return fmt.Errorf("Manager.EditCalendarTimezone: %w", err)
	}
	if err := cal.SetTimezone(tz); err != nil {
		return fmt.Errorf("Manager.EditCalendarTimezone: %w", err)
	}
	return nil
}

// CopyEvent copies the event found by subject and civil start in srcName to
// dstName, starting at the civil time dstStart in the target calendar. The
// copy is a new single event.
func (m *Manager) CopyEvent(srcName, subject string, start time.Time, dstName string, dstStart time.Time, policy ConflictPolicy) (Event, error) {
	src, err := m.registry.Get(srcName)
	if err != nil {
		return Event{}, fmt.Errorf("Manager.CopyEvent: %w", err)
	}
	dst, err := m.registry.Get(dstName)
	if err != nil {
		return Event{}, fmt.Errorf("Manager.CopyEvent: %w", err)
	}
	e, err := src.FindEvent(subject, start)
	if err != nil {
		return Event{}, fmt.Errorf("Manager.CopyEvent: %w", err)
	}

	dstStart = timezone.Civil(dstStart, time.UTC)
	copied, err := dst.addEvent("CopyEvent", "copy", duplicate(e, dstStart, dstStart.Add(e.Duration())), policy)
	if err != nil {
		return Event{}, fmt.Errorf("Manager.CopyEvent: %w", err)
	}
	return copied, nil
}

// CopyEventsInRange copies every event touching the local dates from..to of
// srcName into dstName. Times are carried over in the target zone and shifted
// so that from lands on dstFrom. Either every event is copied or none.
func (m *Manager) CopyEventsInRange(srcName string, from, to time.Time, dstName string, dstFrom time.Time, policy ConflictPolicy) (int, error) {
	src, err := m.registry.Get(srcName)
	if err != nil {
		return 0, fmt.Errorf("Manager.CopyEventsInRange: %w", err)
	}
	dst, err := m.registry.Get(dstName)
	if err != nil {
		return 0, fmt.Errorf("Manager.CopyEventsInRange: %w", err)
	}

	shift := timezone.Midnight(dstFrom, time.UTC).Sub(timezone.Midnight(from, time.UTC))
	days := int(shift.Hours() / 24)

	copied := make([]string, 0)
	for _, e := range src.GetEventsInRange(from, to) {
		localStart := e.Start.In(dst.loc)
		if e.AllDay {
			localStart = e.Start.In(src.loc)
		}
		y, mo, d := localStart.Date()
		start := time.Date(y, mo, d+days, localStart.Hour(), localStart.Minute(), localStart.Second(), 0, time.UTC)

		added, err := dst.admit("CopyEventsInRange", duplicate(e, start, start.Add(e.Duration())), policy)
		if err != nil {
			for _, id := range copied {
				dst.remove(id)
			}
			return 0, fmt.Errorf("Manager.CopyEventsInRange: %w", err)
		}
		copied = append(copied, added.id)
	}
	if len(copied) > 0 {
		dst.recorder.EventAdmitted("copy", len(copied))
	}
	slog.Debug("events copied", "from", srcName, "to", dstName, "count", len(copied))
	return len(copied), nil
}

// duplicate builds an independent single event with e's fields and new civil
// times.
func duplicate(e Event, start, end time.Time) Event {
	dup := NewEvent(e.Subject, start, end)
	dup.Description = e.Description
	dup.Location = e.Location
	dup.Private = e.Private
	dup.AllDay = e.AllDay
	return dup
}
