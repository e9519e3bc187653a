package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func civil(y, m, d, h, min int) time.Time {
	return time.Date(y, time.Month(m), d, h, min, 0, 0, time.UTC)
}

func date(y, m, d int) time.Time {
	return civil(y, m, d, 0, 0)
}

func newTestCalendar(t *testing.T, tz string, opts ...Option) *Calendar {
	t.Helper()
	cal, err := NewRegistry(opts...).Register("Test", tz)
	require.NoError(t, err)
	return cal
}

func mustAdd(t *testing.T, cal *Calendar, subject string, start, end time.Time) Event {
	t.Helper()
	e, err := cal.AddEvent(NewEvent(subject, start, end), ConflictStrict)
	require.NoError(t, err)
	return e
}

func ids(events []Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.ID())
	}
	return out
}

func subjects(events []Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Subject)
	}
	return out
}

type fakeRecorder struct {
	admitted  map[string]int
	conflicts map[string]int
	calendars int
	queries   map[string]int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{
		admitted:  make(map[string]int),
		conflicts: make(map[string]int),
		queries:   make(map[string]int),
	}
}

func (f *fakeRecorder) EventAdmitted(kind string, n int)         { f.admitted[kind] += n }
func (f *fakeRecorder) ConflictDetected(op string)               { f.conflicts[op]++ }
func (f *fakeRecorder) CalendarsChanged(n int)                   { f.calendars = n }
func (f *fakeRecorder) QueryObserved(op string, _ time.Duration) { f.queries[op]++ }
