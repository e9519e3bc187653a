package calendar

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventsOnDateLateEveningInNegativeOffset(t *testing.T) {
	// UTC-5 without daylight saving
	cal := newTestCalendar(t, "Etc/GMT+5")
	e := mustAdd(t, cal, "Dinner", civil(2024, 6, 3, 18, 30), civil(2024, 6, 3, 19, 15))
	require.Equal(t, time.Date(2024, 6, 3, 23, 30, 0, 0, time.UTC), e.Start)
	require.Equal(t, time.Date(2024, 6, 4, 0, 15, 0, 0, time.UTC), e.End)

	assert.Equal(t, []string{e.ID()}, ids(cal.GetEventsOnDate(date(2024, 6, 3))))
	assert.Empty(t, cal.GetEventsOnDate(date(2024, 6, 4)))
	assert.Empty(t, cal.GetEventsOnDate(date(2024, 6, 2)))
}

func TestEventsOnDateMorningInPositiveOffset(t *testing.T) {
	cal := newTestCalendar(t, "Asia/Tokyo")
	e := mustAdd(t, cal, "Breakfast", civil(2024, 6, 3, 8, 0), civil(2024, 6, 3, 9, 0))
	require.Equal(t, 2, e.Start.Day(), "stored on the previous UTC day")

	assert.Equal(t, []string{"Breakfast"}, subjects(cal.GetEventsOnDate(date(2024, 6, 3))))
	assert.Empty(t, cal.GetEventsOnDate(date(2024, 6, 2)))
}

func TestEventsOnDateMidnightBoundaries(t *testing.T) {
	cal := newTestCalendar(t, "America/New_York")
	endsAtMidnight := mustAdd(t, cal, "Late", civil(2024, 6, 2, 22, 0), civil(2024, 6, 3, 0, 0))
	startsAtMidnight := mustAdd(t, cal, "Early", civil(2024, 6, 3, 0, 0), civil(2024, 6, 3, 1, 0))
	crossesMidnight := mustAdd(t, cal, "Party", civil(2024, 6, 3, 23, 0), civil(2024, 6, 4, 2, 0))

	assert.Equal(t, []string{endsAtMidnight.ID()}, ids(cal.GetEventsOnDate(date(2024, 6, 2))))
	assert.Equal(t, []string{startsAtMidnight.ID(), crossesMidnight.ID()}, ids(cal.GetEventsOnDate(date(2024, 6, 3))))
	assert.Equal(t, []string{crossesMidnight.ID()}, ids(cal.GetEventsOnDate(date(2024, 6, 4))))
	assert.Empty(t, cal.GetEventsOnDate(date(2024, 6, 5)))
}

func TestEventsOnDateMultiDaySpan(t *testing.T) {
	cal := newTestCalendar(t, "Australia/Sydney")
	trip := mustAdd(t, cal, "Trip", civil(2024, 6, 1, 10, 0), civil(2024, 6, 5, 10, 0))
	for _, d := range []int{1, 2, 3, 4, 5} {
		assert.Equal(t, []string{trip.ID()}, ids(cal.GetEventsOnDate(date(2024, 6, d))), "day %d", d)
	}
	assert.Empty(t, cal.GetEventsOnDate(date(2024, 5, 31)))
	assert.Empty(t, cal.GetEventsOnDate(date(2024, 6, 6)))
}

func TestEventsOnDateRecurrenceInLocalTerms(t *testing.T) {
	// 21:00 on Mondays in New York is Tuesday in UTC
	cal := newTestCalendar(t, "America/New_York")
	r, err := NewRecurringEvent("Book club", civil(2024, 6, 3, 21, 0), civil(2024, 6, 3, 22, 30),
		[]time.Weekday{time.Monday}, WithCount(2))
	require.NoError(t, err)
	_, err = cal.AddRecurringEvent(r, ConflictStrict)
	require.NoError(t, err)

	assert.Equal(t, []string{"Book club"}, subjects(cal.GetEventsOnDate(date(2024, 6, 3))))
	assert.Empty(t, cal.GetEventsOnDate(date(2024, 6, 4)))
	assert.Equal(t, []string{"Book club"}, subjects(cal.GetEventsOnDate(date(2024, 6, 10))))
	assert.Empty(t, cal.GetEventsOnDate(date(2024, 6, 17)))
}

func TestEventsOnDateDoesNotDoubleCountOccurrences(t *testing.T) {
	cal := newTestCalendar(t, "UTC")
	r, err := NewRecurringEvent("Gym", civil(2024, 6, 3, 7, 0), civil(2024, 6, 3, 8, 0), mwf, WithCount(3))
	require.NoError(t, err)
	_, err = cal.AddRecurringEvent(r, ConflictStrict)
	require.NoError(t, err)

	assert.Len(t, cal.GetEventsOnDate(date(2024, 6, 3)), 1)
	assert.Len(t, cal.GetEventsInRange(date(2024, 6, 1), date(2024, 6, 30)), 3)
}

func TestEventsInRange(t *testing.T) {
	cal := newTestCalendar(t, "America/New_York")
	a := mustAdd(t, cal, "A", civil(2024, 6, 3, 9, 0), civil(2024, 6, 3, 10, 0))
	b := mustAdd(t, cal, "B", civil(2024, 6, 4, 23, 0), civil(2024, 6, 5, 1, 0))
	mustAdd(t, cal, "C", civil(2024, 6, 6, 0, 0), civil(2024, 6, 6, 1, 0))

	assert.Equal(t, []string{a.ID(), b.ID()}, ids(cal.GetEventsInRange(date(2024, 6, 3), date(2024, 6, 4))))
	assert.Equal(t, []string{b.ID()}, ids(cal.GetEventsInRange(date(2024, 6, 5), date(2024, 6, 5))))
	assert.Len(t, cal.GetEventsInRange(date(2024, 6, 1), date(2024, 6, 30)), 3)
	assert.Empty(t, cal.GetEventsInRange(date(2024, 6, 5), date(2024, 6, 4)))
}

func TestDateBucketsMatchRange(t *testing.T) {
	for _, tz := range []string{"UTC", "America/New_York", "Asia/Tokyo", "Etc/GMT+5", "Pacific/Kiritimati"} {
		cal := newTestCalendar(t, tz)
		mustAdd(t, cal, "late", civil(2024, 6, 3, 23, 30), civil(2024, 6, 4, 0, 15))
		mustAdd(t, cal, "midnight", civil(2024, 6, 5, 0, 0), civil(2024, 6, 5, 0, 30))
		mustAdd(t, cal, "ends at midnight", civil(2024, 6, 5, 22, 0), civil(2024, 6, 6, 0, 0))
		mustAdd(t, cal, "long", civil(2024, 6, 7, 12, 0), civil(2024, 6, 10, 12, 0))
		mustAdd(t, cal, "morning", civil(2024, 6, 4, 6, 0), civil(2024, 6, 4, 7, 0))
		r, err := NewRecurringEvent("evening", civil(2024, 6, 3, 20, 0), civil(2024, 6, 3, 21, 0),
			[]time.Weekday{time.Monday, time.Thursday}, WithCount(4))
		require.NoError(t, err)
		_, err = cal.AddRecurringEvent(r, ConflictStrict)
		require.NoError(t, err)

		for day := 1; day <= 12; day++ {
			d := date(2024, 6, day)
			union := append(ids(cal.GetEventsOnDate(d)), ids(cal.GetEventsOnDate(d.AddDate(0, 0, 1)))...)
			slices.Sort(union)
			union = slices.Compact(union)

			ranged := ids(cal.GetEventsInRange(d, d.AddDate(0, 0, 1)))
			slices.Sort(ranged)
			assert.Equal(t, ranged, union, "%s on %s", tz, d.Format(time.DateOnly))
		}
	}
}

func TestIsBusy(t *testing.T) {
	cal := newTestCalendar(t, "America/New_York")
	mustAdd(t, cal, "Standup", civil(2024, 6, 3, 9, 0), civil(2024, 6, 3, 9, 30))

	assert.True(t, cal.IsBusy(civil(2024, 6, 3, 9, 0)))
	assert.True(t, cal.IsBusy(civil(2024, 6, 3, 9, 29)))
	assert.False(t, cal.IsBusy(civil(2024, 6, 3, 9, 30)))
	assert.False(t, cal.IsBusy(civil(2024, 6, 3, 8, 59)))
	assert.False(t, cal.IsBusy(civil(2024, 6, 3, 13, 0)), "13:00 is the UTC reading, not local")
}

func TestIsBusyRecurring(t *testing.T) {
	cal := newTestCalendar(t, "Europe/Paris")
	r, err := NewRecurringEvent("Gym", civil(2024, 6, 3, 7, 0), civil(2024, 6, 3, 8, 0), mwf, WithCount(3))
	require.NoError(t, err)
	_, err = cal.AddRecurringEvent(r, ConflictStrict)
	require.NoError(t, err)

	assert.True(t, cal.IsBusy(civil(2024, 6, 5, 7, 30)))
	assert.False(t, cal.IsBusy(civil(2024, 6, 4, 7, 30)), "tuesday")
	assert.False(t, cal.IsBusy(civil(2024, 6, 5, 8, 0)), "end is exclusive")
	assert.False(t, cal.IsBusy(civil(2024, 6, 10, 7, 30)), "past the count")
}

func TestQueriesExpandRuleWithoutStoredOccurrences(t *testing.T) {
	cal := newTestCalendar(t, "America/New_York")
	r, err := NewRecurringEvent("Gym", civil(2024, 6, 3, 7, 0), civil(2024, 6, 3, 8, 0), mwf, WithCount(3))
	require.NoError(t, err)
	cal.rules = append(cal.rules, r.clone())

	monday, ok := r.OccurrenceOn(date(2024, 6, 3))
	require.True(t, ok)
	moved := cal.canonicalEvent(monday)
	moved.Subject = "Gym (moved)"
	cal.insert(len(cal.events), &moved)
	wednesday, ok := r.OccurrenceOn(date(2024, 6, 5))
	require.True(t, ok)
	cal.tombstones[wednesday.ID()] = struct{}{}

	assert.Equal(t, []string{"Gym (moved)"}, subjects(cal.GetEventsOnDate(date(2024, 6, 3))))
	assert.Empty(t, cal.GetEventsOnDate(date(2024, 6, 5)))
	friday := cal.GetEventsOnDate(date(2024, 6, 7))
	require.Len(t, friday, 1)
	assert.Equal(t, time.Date(2024, 6, 7, 11, 0, 0, 0, time.UTC), friday[0].Start)
	assert.Equal(t, r.SeriesID(), friday[0].SeriesID())

	week := cal.GetEventsInRange(date(2024, 6, 3), date(2024, 6, 9))
	assert.Equal(t, []string{"Gym (moved)", "Gym"}, subjects(week))

	assert.True(t, cal.IsBusy(civil(2024, 6, 7, 7, 30)))
	assert.False(t, cal.IsBusy(civil(2024, 6, 5, 7, 30)), "deleted occurrence")
}
