package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gymCalendar(t *testing.T, tz string) (*Calendar, []Event) {
	t.Helper()
	cal := newTestCalendar(t, tz)
	r, err := NewRecurringEvent("Gym", civil(2024, 6, 3, 7, 0), civil(2024, 6, 3, 8, 0), mwf, WithCount(3))
	require.NoError(t, err)
	occ, err := cal.AddRecurringEvent(r, ConflictStrict)
	require.NoError(t, err)
	return cal, occ
}

func TestParseProperty(t *testing.T) {
	p, err := ParseProperty("  Subject ")
	require.NoError(t, err)
	assert.Equal(t, PropertySubject, p)

	p, err = ParseProperty("VISIBILITY")
	require.NoError(t, err)
	assert.Equal(t, PropertyVisibility, p)

	_, err = ParseProperty("color")
	assert.ErrorIs(t, err, ErrUnsupportedProperty)
	assert.ErrorIs(t, err, ErrInvalidEvent)
}

func TestEditSingleEvent(t *testing.T) {
	cal := newTestCalendar(t, "America/New_York")
	e := mustAdd(t, cal, "Standup", civil(2024, 6, 3, 9, 0), civil(2024, 6, 3, 9, 30))

	ok, err := cal.EditSingleEvent("Standup", civil(2024, 6, 3, 9, 0), PropertyLocation, "Room 4")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = cal.EditSingleEvent("Standup", civil(2024, 6, 3, 9, 0), PropertyVisibility, "Private")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = cal.EditSingleEvent("Standup", civil(2024, 6, 3, 9, 0), PropertySubject, "Daily")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := cal.GetEvent(e.ID())
	require.NoError(t, err)
	assert.Equal(t, "Daily", got.Subject)
	assert.Equal(t, "Room 4", got.Location)
	assert.True(t, got.Private)

	ok, err = cal.EditSingleEvent("Standup", civil(2024, 6, 3, 9, 0), PropertyLocation, "x")
	assert.NoError(t, err)
	assert.False(t, ok, "no longer named Standup")
}

func TestEditUnknownPropertyIsNoop(t *testing.T) {
	cal := newTestCalendar(t, "UTC")
	e := mustAdd(t, cal, "Standup", civil(2024, 6, 3, 9, 0), civil(2024, 6, 3, 9, 30))

	ok, err := cal.EditSingleEvent("Standup", civil(2024, 6, 3, 9, 0), Property("color"), "red")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrUnsupportedProperty)

	n, err := cal.EditAllEvents("Standup", Property("color"), "red")
	assert.Zero(t, n)
	assert.ErrorIs(t, err, ErrInvalidEvent)

	got, _ := cal.GetEvent(e.ID())
	assert.Equal(t, e, got)
}

func TestEditInvalidValueRollsBack(t *testing.T) {
	cal := newTestCalendar(t, "UTC")
	e := mustAdd(t, cal, "Standup", civil(2024, 6, 3, 9, 0), civil(2024, 6, 3, 9, 30))

	for prop, value := range map[Property]string{
		PropertySubject:    " ",
		PropertyVisibility: "secret",
		PropertyStart:      "tomorrow-ish",
		PropertyEnd:        "08:00",
	} {
		ok, err := cal.EditSingleEvent("Standup", civil(2024, 6, 3, 9, 0), prop, value)
		assert.False(t, ok, prop)
		assert.ErrorIs(t, err, ErrInvalidEvent, prop)
	}
	got, _ := cal.GetEvent(e.ID())
	assert.Equal(t, e, got)
}

func TestEditEventsFromDate(t *testing.T) {
	cal, occ := gymCalendar(t, "America/New_York")

	n, err := cal.EditEventsFromDate("Gym", date(2024, 6, 5), PropertyLocation, "Pool")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	first, _ := cal.GetEvent(occ[0].ID())
	assert.Empty(t, first.Location)
	for _, e := range occ[1:] {
		got, _ := cal.GetEvent(e.ID())
		assert.Equal(t, "Pool", got.Location)
	}
}

func TestEditAllEventsTimes(t *testing.T) {
	cal, occ := gymCalendar(t, "America/New_York")

	n, err := cal.EditAllEvents("Gym", PropertyEnd, "10:00")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	n, err = cal.EditAllEvents("Gym", PropertyStart, "09:00")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	for i, e := range occ {
		got, err := cal.GetEvent(e.ID())
		require.NoError(t, err)
		local := cal.Local(got.Start)
		assert.Equal(t, 9, local.Hour())
		assert.Equal(t, cal.Local(e.Start).Day(), local.Day(), "occurrence %d keeps its date", i)
		assert.Equal(t, time.Hour, got.Duration())
	}
	assert.True(t, cal.IsBusy(civil(2024, 6, 5, 9, 30)))
	assert.False(t, cal.IsBusy(civil(2024, 6, 5, 7, 30)))
}

func TestEditAllEventsIsAllOrNothing(t *testing.T) {
	cal, occ := gymCalendar(t, "UTC")
	mustAdd(t, cal, "Dentist", civil(2024, 6, 7, 8, 30), civil(2024, 6, 7, 9, 30))

	n, err := cal.EditAllEvents("Gym", PropertyEnd, "09:00")
	assert.Zero(t, n)
	assert.ErrorIs(t, err, ErrConflict)
	for _, e := range occ {
		got, _ := cal.GetEvent(e.ID())
		assert.Equal(t, e, got)
	}
}

func TestEditStartWithFullDateTime(t *testing.T) {
	cal := newTestCalendar(t, "Asia/Tokyo")
	e := mustAdd(t, cal, "Call", civil(2024, 6, 3, 8, 0), civil(2024, 6, 3, 9, 0))

	ok, err := cal.EditSingleEvent("Call", civil(2024, 6, 3, 8, 0), PropertyStart, "2024-06-03T08:30")
	require.NoError(t, err)
	assert.True(t, ok)
	got, _ := cal.GetEvent(e.ID())
	assert.Equal(t, time.Date(2024, 6, 2, 23, 30, 0, 0, time.UTC), got.Start)

	_, err = cal.FindEvent("Call", civil(2024, 6, 3, 8, 30))
	assert.NoError(t, err)
}

func TestEditNoMatch(t *testing.T) {
	cal := newTestCalendar(t, "UTC")
	n, err := cal.EditAllEvents("Nothing", PropertySubject, "x")
	assert.NoError(t, err)
	assert.Zero(t, n)
}
