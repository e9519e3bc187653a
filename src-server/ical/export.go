package ical

import (
	"time"

	"calman/src-server/calendar"

	ics "github.com/arran4/golang-ical"
)

// Export renders every stored event of cal as a VEVENT. Recurring events are
// written occurrence by occurrence, linked through RELATED-TO, so edits and
// deletions of single occurrences survive the round trip.
func Export(cal *calendar.Calendar) string {
	out := ics.NewCalendar()
	out.SetProductId("-//calman//EN")
	out.SetMethod(ics.MethodPublish)
	out.SetXWRCalName(cal.Name())
	out.SetXWRTimezone(cal.Timezone())

	stamp := time.Now().UTC()
	for _, e := range cal.GetAllEvents() {
		vevent := out.AddEvent(e.ID())
		vevent.SetDtStampTime(stamp)
		vevent.SetSummary(e.Subject)
		if e.Description != "" {
			vevent.SetDescription(e.Description)
		}
		if e.Location != "" {
			vevent.SetLocation(e.Location)
		}
		if e.Private {
			vevent.SetClass(ics.ClassificationPrivate)
		} else {
			vevent.SetClass(ics.ClassificationPublic)
		}
		if e.IsRecurring() {
			vevent.AddProperty(ics.ComponentPropertyRelatedTo, e.SeriesID())
		}

		if e.AllDay {
			local := cal.Local(e.Start)
			vevent.SetAllDayStartAt(local)
			vevent.SetAllDayEndAt(local.AddDate(0, 0, 1))
			continue
		}
		vevent.SetStartAt(e.Start)
		vevent.SetEndAt(e.End)
	}
	return out.Serialize()
}
