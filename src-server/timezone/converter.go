package timezone

import (
	"errors"
	"fmt"
	"sync"
	"time"
	_ "time/tzdata"
)

var ErrInvalidTimezone = errors.New("invalid timezone")

// Converter maps civil date-times between IANA zones. Loaded locations are
// cached, conversion itself has no state.
type Converter struct {
	locations sync.Map // map[string]*time.Location
}

func NewConverter() *Converter {
	return &Converter{}
}

// Location resolves an IANA zone name. Empty names and "Local" are rejected
// since they depend on the host rather than on the zone database.
func (c *Converter) Location(tz string) (*time.Location, error) {
	if loc, ok := c.locations.Load(tz); ok {
		return loc.(*time.Location), nil
	}
	switch tz {
	case "", "Local":
		return nil, fmt.Errorf("Converter.Location: %w: %q", ErrInvalidTimezone, tz)
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("Converter.Location: %w: %q: %s", ErrInvalidTimezone, tz, err.Error())
	}
	c.locations.Store(tz, loc)
	return loc, nil
}

func (c *Converter) IsValidTimezone(tz string) bool {
	_, err := c.Location(tz)
	return err == nil
}

// Convert reads the wall clock of dt as a civil time in zone from and returns
// the same instant as a civil time in zone to.
func (c *Converter) Convert(dt time.Time, from, to string) (time.Time, error) {
	fromLoc, err := c.Location(from)
	if err != nil {
		return time.Time{}, fmt.Errorf("Converter.Convert: %w", err)
	}
	toLoc, err := c.Location(to)
	if err != nil {
		return time.Time{}, fmt.Errorf("Converter.Convert: %w", err)
	}
	return Civil(dt, fromLoc).In(toLoc), nil
}

// ToUTC turns a civil time in zone tz into a canonical UTC instant.
func (c *Converter) ToUTC(dt time.Time, tz string) (time.Time, error) {
	return c.Convert(dt, tz, "UTC")
}

// FromUTC projects an instant into zone tz.
func (c *Converter) FromUTC(t time.Time, tz string) (time.Time, error) {
	loc, err := c.Location(tz)
	if err != nil {
		return time.Time{}, fmt.Errorf("Converter.FromUTC: %w", err)
	}
	return t.In(loc), nil
}

// Civil re-reads the wall clock of t in loc, discarding t's own location.
func Civil(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

// Midnight returns 00:00 of t's civil date in loc.
func Midnight(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// SameDate reports whether a and b share year, month and day on their own
// wall clocks.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
