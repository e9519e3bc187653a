package route

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"calman/src-server/calendar"
	"calman/src-server/utils"
)

// withCalendar resolves the calendar by name and runs fn on it under the
// app lock.
func withCalendar(as *utils.AppState, name string, fn func(cal *calendar.Calendar) error) error {
	return as.Do(func(m *calendar.Manager) error {
		cal, err := m.GetCalendar(name)
		if err != nil {
			return err
		}
		return fn(cal)
	})
}

type EventReqBody struct {
	Subject     string `json:"subject"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Private     bool   `json:"private"`
	AllDay      bool   `json:"allDay"`
	Strict      *bool  `json:"strict"`
}

func (b EventReqBody) times() (time.Time, time.Time, error) {
	start, err := requireCivil("start", b.Start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if b.AllDay {
		end, err := parseCivil("end", b.End)
		return start, end, err
	}
	end, err := requireCivil("end", b.End)
	return start, end, err
}

func (b EventReqBody) event() (calendar.Event, error) {
	start, end, err := b.times()
	if err != nil {
		return calendar.Event{}, err
	}
	e := calendar.NewEvent(b.Subject, start, end)
	e.Description = b.Description
	e.Location = b.Location
	e.Private = b.Private
	e.AllDay = b.AllDay
	return e, nil
}

// parseWeekday accepts full english names and their three letter forms.
func parseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		name := strings.ToLower(wd.String())
		if s == name || (len(s) == 3 && strings.HasPrefix(name, s)) {
			return wd, nil
		}
	}
	return 0, badRequest("unknown weekday " + s)
}

func Events(muxer *http.ServeMux, as *utils.AppState) {
	type RecurringReqBody struct {
		EventReqBody
		Weekdays []string `json:"weekdays"`
		Count    int      `json:"count"`
		Until    string   `json:"until"`
	}

	type RecurringRespBody struct {
		SeriesID    string          `json:"seriesId"`
		RRule       string          `json:"rrule"`
		Occurrences []EventRespBody `json:"occurrences"`
	}

	type QuickAddReqBody struct {
		Text   string `json:"text"`
		Strict *bool  `json:"strict"`
	}

	type EditEventsReqBody struct {
		Scope    string `json:"scope"`
		Subject  string `json:"subject"`
		Start    string `json:"start"`
		From     string `json:"from"`
		Property string `json:"property"`
		Value    string `json:"value"`
	}

	type CountRespBody struct {
		Count int `json:"count"`
	}

	// all events, the events of one local date, or of an inclusive date range
	muxer.HandleFunc("GET /calendars/{name}/events", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		// #region - parse dates
		date, err := parseCivil("date", query.Get("date"))
		if err != nil {
			writeError(w, err)
			return
		}
		from, err := parseCivil("from", query.Get("from"))
		if err != nil {
			writeError(w, err)
			return
		}
		to, err := parseCivil("to", query.Get("to"))
		if err != nil {
			writeError(w, err)
			return
		}
		if to.IsZero() {
			to = from
		}
		// #endregion

		var respBody []EventRespBody
		if err := withCalendar(as, r.PathValue("name"), func(cal *calendar.Calendar) error {
			var events []calendar.Event
			switch {
			case !date.IsZero():
				events = cal.GetEventsOnDate(date)
			case !from.IsZero():
				events = cal.GetEventsInRange(from, to)
			default:
				events = cal.GetAllEvents()
			}
			respBody = toEventResps(cal, events)
			return nil
		}); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, respBody)
	})

	muxer.HandleFunc("POST /calendars/{name}/events", func(w http.ResponseWriter, r *http.Request) {
		var reqBody EventReqBody
		if err := decodeBody(r, &reqBody); err != nil {
			writeError(w, err)
			return
		}
		e, err := reqBody.event()
		if err != nil {
			writeError(w, err)
			return
		}

		var respBody EventRespBody
		if err := withCalendar(as, r.PathValue("name"), func(cal *calendar.Calendar) error {
			added, err := cal.AddEvent(e, policyFor(as, reqBody.Strict))
			if err != nil {
				return err
			}
			respBody = toEventResp(cal, added)
			return nil
		}); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, respBody)
	})

	muxer.HandleFunc("POST /calendars/{name}/recurring", func(w http.ResponseWriter, r *http.Request) {
		var reqBody RecurringReqBody
		if err := decodeBody(r, &reqBody); err != nil {
			writeError(w, err)
			return
		}

		// #region - build the rule
		start, end, err := reqBody.times()
		if err != nil {
			writeError(w, err)
			return
		}
		if end.IsZero() {
			end = start
		}
		weekdays := make([]time.Weekday, 0, len(reqBody.Weekdays))
		for _, s := range reqBody.Weekdays {
			wd, err := parseWeekday(s)
			if err != nil {
				writeError(w, err)
				return
			}
			weekdays = append(weekdays, wd)
		}
		opts := []calendar.RecurringOption{
			calendar.WithDescription(reqBody.Description),
			calendar.WithLocation(reqBody.Location),
			calendar.WithPrivate(reqBody.Private),
		}
		if reqBody.Count != 0 {
			opts = append(opts, calendar.WithCount(reqBody.Count))
		}
		if reqBody.Until != "" {
			until, err := parseCivil("until", reqBody.Until)
			if err != nil {
				writeError(w, err)
				return
			}
			opts = append(opts, calendar.WithUntil(until))
		}
		if reqBody.AllDay {
			opts = append(opts, calendar.WithAllDay())
		}
		rule, err := calendar.NewRecurringEvent(reqBody.Subject, start, end, weekdays, opts...)
		if err != nil {
			writeError(w, err)
			return
		}
		// #endregion

		var respBody RecurringRespBody
		if err := withCalendar(as, r.PathValue("name"), func(cal *calendar.Calendar) error {
			occurrences, err := cal.AddRecurringEvent(rule, policyFor(as, reqBody.Strict))
			if err != nil {
				return err
			}
			// the stored copy carries the calendar's default count
			stored, err := cal.GetRecurringEvent(rule.SeriesID())
			if err != nil {
				return err
			}
			respBody = RecurringRespBody{
				SeriesID:    stored.SeriesID(),
				RRule:       stored.RRule(),
				Occurrences: toEventResps(cal, occurrences),
			}
			return nil
		}); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, respBody)
	})

	// natural language, e.g. "lunch with Bob tomorrow at 1pm"
	muxer.HandleFunc("POST /calendars/{name}/quick-add", func(w http.ResponseWriter, r *http.Request) {
		var reqBody QuickAddReqBody
		if err := decodeBody(r, &reqBody); err != nil {
			writeError(w, err)
			return
		}

		var respBody EventRespBody
		if err := withCalendar(as, r.PathValue("name"), func(cal *calendar.Calendar) error {
			quick, err := as.Natural.Parse(reqBody.Text, time.Now().In(cal.Location()))
			if err != nil {
				return err
			}
			added, err := cal.AddEvent(calendar.NewEvent(quick.Subject, quick.Start, quick.End), policyFor(as, reqBody.Strict))
			if err != nil {
				return err
			}
			respBody = toEventResp(cal, added)
			return nil
		}); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, respBody)
	})

	// replace an event, keeping its id
	muxer.HandleFunc("PUT /calendars/{name}/events/{id}", func(w http.ResponseWriter, r *http.Request) {
		var reqBody EventReqBody
		if err := decodeBody(r, &reqBody); err != nil {
			writeError(w, err)
			return
		}
		replacement, err := reqBody.event()
		if err != nil {
			writeError(w, err)
			return
		}

		var respBody EventRespBody
		if err := withCalendar(as, r.PathValue("name"), func(cal *calendar.Calendar) error {
			updated, err := cal.UpdateEvent(r.PathValue("id"), replacement)
			if err != nil {
				return err
			}
			respBody = toEventResp(cal, updated)
			return nil
		}); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, respBody)
	})

	muxer.HandleFunc("PATCH /calendars/{name}/events", func(w http.ResponseWriter, r *http.Request) {
		var reqBody EditEventsReqBody
		if err := decodeBody(r, &reqBody); err != nil {
			writeError(w, err)
			return
		}
		property, err := calendar.ParseProperty(reqBody.Property)
		if err != nil {
			writeError(w, err)
			return
		}

		var respBody CountRespBody
		if err := withCalendar(as, r.PathValue("name"), func(cal *calendar.Calendar) error {
			switch reqBody.Scope {
			case "single", "":
				start, err := requireCivil("start", reqBody.Start)
				if err != nil {
					return err
				}
				edited, err := cal.EditSingleEvent(reqBody.Subject, start, property, reqBody.Value)
				if err != nil {
					return err
				}
				if !edited {
					return fmt.Errorf("%w: %q at %s", calendar.ErrEventNotFound, reqBody.Subject, reqBody.Start)
				}
				respBody.Count = 1
			case "from":
				from, err := requireCivil("from", reqBody.From)
				if err != nil {
					return err
				}
				respBody.Count, err = cal.EditEventsFromDate(reqBody.Subject, from, property, reqBody.Value)
				return err
			case "all":
				respBody.Count, err = cal.EditAllEvents(reqBody.Subject, property, reqBody.Value)
				return err
			default:
				return badRequest("scope must be single, from or all")
			}
			return nil
		}); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, respBody)
	})

	muxer.HandleFunc("DELETE /calendars/{name}/events/{id}", func(w http.ResponseWriter, r *http.Request) {
		if err := withCalendar(as, r.PathValue("name"), func(cal *calendar.Calendar) error {
			return cal.DeleteEvent(r.PathValue("id"))
		}); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	muxer.HandleFunc("DELETE /calendars/{name}/series/{id}", func(w http.ResponseWriter, r *http.Request) {
		var respBody CountRespBody
		if err := withCalendar(as, r.PathValue("name"), func(cal *calendar.Calendar) error {
			var err error
			respBody.Count, err = cal.DeleteSeries(r.PathValue("id"))
			return err
		}); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, respBody)
	})

	muxer.HandleFunc("GET /calendars/{name}/busy", func(w http.ResponseWriter, r *http.Request) {
		at, err := requireCivil("at", r.URL.Query().Get("at"))
		if err != nil {
			writeError(w, err)
			return
		}

		var busy bool
		if err := withCalendar(as, r.PathValue("name"), func(cal *calendar.Calendar) error {
			busy = cal.IsBusy(at)
			return nil
		}); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"busy": busy})
	})
}
