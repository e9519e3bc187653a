package calendar

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

// Registry is a directory of uniquely named calendars with one of them
// marked active.
type Registry struct {
	settings settings

	calendars map[string]*Calendar
	order     []string
	active    string
}

func NewRegistry(opts ...Option) *Registry {
	return &Registry{
		settings:  newSettings(opts),
		calendars: make(map[string]*Calendar),
	}
}

func validateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: name is empty", ErrInvalidCalendarName)
	case strings.TrimSpace(name) != name:
		return fmt.Errorf("%w: %q has surrounding spaces", ErrInvalidCalendarName, name)
	}
	return nil
}

// Register creates a calendar. The first calendar ever registered becomes
// active.
func (r *Registry) Register(name, tz string) (*Calendar, error) {
	if err := validateName(name); err != nil {
		return nil, fmt.Errorf("Registry.Register: %w", err)
	}
	if _, exists := r.calendars[name]; exists {
		return nil, fmt.Errorf("Registry.Register: %w: %q", ErrDuplicateName, name)
	}
	cal, err := newCalendar(name, tz, r.settings)
	if err != nil {
		return nil, fmt.Errorf("Registry.Register: %w", err)
	}

	r.calendars[name] = cal
	r.order = append(r.order, name)
	if r.active == "" {
		r.active = name
	}
	r.settings.recorder.CalendarsChanged(len(r.calendars))
	slog.Debug("calendar registered", "name", name, "timezone", tz, "active", r.active == name)
	return cal, nil
}

func (r *Registry) Get(name string) (*Calendar, error) {
	cal, ok := r.calendars[name]
	if !ok {
		return nil, fmt.Errorf("Registry.Get: %w: %q", ErrCalendarNotFound, name)
	}
	return cal, nil
}

// Remove deletes a calendar. When it was active, the oldest remaining
// calendar takes over.
func (r *Registry) Remove(name string) error {
	if _, ok := r.calendars[name]; !ok {
		return fmt.Errorf("Registry.Remove: %w: %q", ErrCalendarNotFound, name)
	}
	delete(r.calendars, name)
	r.order = slices.DeleteFunc(r.order, func(n string) bool { return n == name })
	if r.active == name {
		r.active = ""
		if len(r.order) > 0 {
			r.active = r.order[0]
		}
	}
	r.settings.recorder.CalendarsChanged(len(r.calendars))
	slog.Debug("calendar removed", "name", name, "active", r.active)
	return nil
}

func (r *Registry) SetActive(name string) error {
	if _, ok := r.calendars[name]; !ok {
		return fmt.Errorf("Registry.SetActive: %w: %q", ErrCalendarNotFound, name)
	}
	r.active = name
	return nil
}

func (r *Registry) Active() (*Calendar, error) {
	cal, ok := r.calendars[r.active]
	if !ok {
		return nil, fmt.Errorf("Registry.Active: %w: no active calendar", ErrCalendarNotFound)
	}
	return cal, nil
}

// Rename relabels the calendar in place; its events and position are kept.
func (r *Registry) Rename(oldName, newName string) error {
	cal, ok := r.calendars[oldName]
	if !ok {
		return fmt.Errorf("Registry.Rename: %w: %q", ErrCalendarNotFound, oldName)
	}
	if err := validateName(newName); err != nil {
		return fmt.Errorf("Registry.Rename: %w", err)
	}
	if oldName == newName {
		return nil
	}
	if _, exists := r.calendars[newName]; exists {
		return fmt.Errorf("Registry.Rename: %w: %q", ErrDuplicateName, newName)
	}

	delete(r.calendars, oldName)
	cal.name = newName
	r.calendars[newName] = cal
	r.order[slices.Index(r.order, oldName)] = newName
	if r.active == oldName {
		r.active = newName
	}
	slog.Debug("calendar renamed", "from", oldName, "to", newName)
	return nil
}

// Names lists calendars in registration order.
func (r *Registry) Names() []string {
	return slices.Clone(r.order)
}

func (r *Registry) Len() int {
	return len(r.calendars)
}
