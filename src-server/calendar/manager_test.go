package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerCreateCalendar(t *testing.T) {
	m := NewManager()
	cal, err := m.CreateCalendar("Work", "America/New_York")
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", cal.Timezone())

	_, err = m.CreateCalendar("Bad", "America/Gotham")
	assert.ErrorIs(t, err, ErrInvalidTimezone)
	_, err = m.CreateCalendar("Work", "UTC")
	assert.ErrorIs(t, err, ErrDuplicateName)

	got, err := m.GetCalendar("Work")
	require.NoError(t, err)
	assert.Same(t, cal, got)
	_, err = m.GetCalendar("Bad")
	assert.ErrorIs(t, err, ErrCalendarNotFound)
	assert.Len(t, m.Calendars(), 1)
}

func TestManagerEditCalendarTimezone(t *testing.T) {
	m := NewManager()
	cal, err := m.CreateCalendar("Work", "America/New_York")
	require.NoError(t, err)
	e := mustAdd(t, cal, "Standup", civil(2024, 6, 3, 9, 0), civil(2024, 6, 3, 9, 30))

	require.NoError(t, m.EditCalendarTimezone("Work", "Asia/Tokyo"))
	got, err := cal.GetEvent(e.ID())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), got.Start)

	assert.ErrorIs(t, m.EditCalendarTimezone("Work", "nope"), ErrInvalidTimezone)
	assert.ErrorIs(t, m.EditCalendarTimezone("Home", "UTC"), ErrCalendarNotFound)
}

func TestManagerActiveAndRename(t *testing.T) {
	rec := newFakeRecorder()
	m := NewManager(WithRecorder(rec))
	_, err := m.CreateCalendar("Work", "UTC")
	require.NoError(t, err)
	_, err = m.CreateCalendar("Home", "UTC")
	require.NoError(t, err)
	assert.Equal(t, 2, rec.calendars)

	require.NoError(t, m.SetActive("Home"))
	require.NoError(t, m.RenameCalendar("Home", "House"))
	active, err := m.Active()
	require.NoError(t, err)
	assert.Equal(t, "House", active.Name())

	require.NoError(t, m.RemoveCalendar("House"))
	active, err = m.Active()
	require.NoError(t, err)
	assert.Equal(t, "Work", active.Name())
	assert.Equal(t, 1, rec.calendars)
}

func TestManagerCopyEvent(t *testing.T) {
	rec := newFakeRecorder()
	m := NewManager(WithRecorder(rec))
	work, err := m.CreateCalendar("Work", "America/New_York")
	require.NoError(t, err)
	home, err := m.CreateCalendar("Home", "Asia/Tokyo")
	require.NoError(t, err)
	src := mustAdd(t, work, "Standup", civil(2024, 6, 3, 9, 0), civil(2024, 6, 3, 9, 30))

	copied, err := m.CopyEvent("Work", "Standup", civil(2024, 6, 3, 9, 0), "Home", civil(2024, 6, 10, 10, 0), ConflictStrict)
	require.NoError(t, err)
	assert.NotEqual(t, src.ID(), copied.ID())
	assert.Equal(t, "Standup", copied.Subject)
	assert.Equal(t, 30*time.Minute, copied.Duration())
	local := home.Local(copied.Start)
	assert.Equal(t, "2024-06-10 10:00", local.Format("2006-01-02 15:04"))
	assert.Equal(t, 1, work.Len())
	assert.Equal(t, 1, rec.admitted["copy"])

	_, err = m.CopyEvent("Work", "Standup", civil(2024, 6, 3, 9, 0), "Home", civil(2024, 6, 10, 10, 15), ConflictStrict)
	assert.ErrorIs(t, err, ErrConflict)
	_, err = m.CopyEvent("Work", "Missing", civil(2024, 6, 3, 9, 0), "Home", civil(2024, 6, 10, 10, 0), ConflictStrict)
	assert.ErrorIs(t, err, ErrEventNotFound)
	_, err = m.CopyEvent("Work", "Standup", civil(2024, 6, 3, 9, 0), "Nowhere", civil(2024, 6, 10, 10, 0), ConflictStrict)
	assert.ErrorIs(t, err, ErrCalendarNotFound)
}

func TestManagerCopyEventsInRange(t *testing.T) {
	m := NewManager()
	work, err := m.CreateCalendar("Work", "America/New_York")
	require.NoError(t, err)
	home, err := m.CreateCalendar("Home", "Europe/London")
	require.NoError(t, err)
	mustAdd(t, work, "Standup", civil(2024, 6, 3, 9, 0), civil(2024, 6, 3, 9, 30))
	mustAdd(t, work, "Review", civil(2024, 6, 4, 14, 0), civil(2024, 6, 4, 15, 0))
	mustAdd(t, work, "Outside", civil(2024, 6, 6, 14, 0), civil(2024, 6, 6, 15, 0))

	n, err := m.CopyEventsInRange("Work", date(2024, 6, 3), date(2024, 6, 4), "Home", date(2024, 6, 10), ConflictStrict)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got := home.GetAllEvents()
	require.Len(t, got, 2)
	assert.Equal(t, "2024-06-10 14:00", home.Local(got[0].Start).Format("2006-01-02 15:04"))
	assert.Equal(t, "2024-06-11 19:00", home.Local(got[1].Start).Format("2006-01-02 15:04"))
	assert.Equal(t, []string{"Standup", "Review"}, subjects(got))
}

func TestManagerCopyEventsInRangeRollsBack(t *testing.T) {
	rec := newFakeRecorder()
	m := NewManager(WithRecorder(rec))
	work, err := m.CreateCalendar("Work", "America/New_York")
	require.NoError(t, err)
	home, err := m.CreateCalendar("Home", "Europe/London")
	require.NoError(t, err)
	mustAdd(t, work, "Standup", civil(2024, 6, 3, 9, 0), civil(2024, 6, 3, 9, 30))
	mustAdd(t, work, "Review", civil(2024, 6, 4, 14, 0), civil(2024, 6, 4, 15, 0))
	block := mustAdd(t, home, "Block", civil(2024, 6, 11, 18, 30), civil(2024, 6, 11, 19, 30))

	n, err := m.CopyEventsInRange("Work", date(2024, 6, 3), date(2024, 6, 4), "Home", date(2024, 6, 10), ConflictStrict)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Zero(t, n)
	assert.Equal(t, []string{block.ID()}, ids(home.GetAllEvents()))
	assert.Zero(t, rec.admitted["copy"], "rolled back copies are not admitted")

	require.NoError(t, home.DeleteEvent(block.ID()))
	n, err = m.CopyEventsInRange("Work", date(2024, 6, 3), date(2024, 6, 4), "Home", date(2024, 6, 10), ConflictStrict)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, rec.admitted["copy"])
}
