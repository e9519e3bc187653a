package route

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"calman/src-server/calendar"
	"calman/src-server/utils"
)

// CivilLayout is the form of every civil time in request and response bodies.
const CivilLayout = "2006-01-02T15:04"

var errBadRequest = errors.New("bad request")

func badRequest(msg string) error {
	return fmt.Errorf("%w: %s", errBadRequest, msg)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, calendar.ErrCalendarNotFound),
		errors.Is(err, calendar.ErrEventNotFound):
		return http.StatusNotFound
	case errors.Is(err, calendar.ErrDuplicateName),
		errors.Is(err, calendar.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, calendar.ErrInvalidEvent),
		errors.Is(err, calendar.ErrInvalidTimezone),
		errors.Is(err, calendar.ErrInvalidCalendarName),
		errors.Is(err, utils.ErrNoDate),
		errors.Is(err, utils.ErrNoSubject),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Can't marshal response body", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		slog.Warn("can't write to response", "where", "route/response.go", "error", err)
	}
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return badRequest("invalid request body: " + err.Error())
	}
	return nil
}

// parseCivil reads an optional civil time; empty yields the zero time.
func parseCivil(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := calendar.ParseCivil(value)
	if err != nil {
		return time.Time{}, badRequest(field + ": " + err.Error())
	}
	return t, nil
}

func requireCivil(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, badRequest("please provide " + field)
	}
	return parseCivil(field, value)
}

func policyFor(as *utils.AppState, strict *bool) calendar.ConflictPolicy {
	switch {
	case strict == nil:
		return as.DefaultPolicy()
	case *strict:
		return calendar.ConflictStrict
	default:
		return calendar.ConflictAllow
	}
}

type CalendarRespBody struct {
	Name     string `json:"name"`
	Timezone string `json:"timezone"`
	Events   int    `json:"events"`
	Active   bool   `json:"active"`
}

func toCalendarResp(cal *calendar.Calendar, active bool) CalendarRespBody {
	return CalendarRespBody{
		Name:     cal.Name(),
		Timezone: cal.Timezone(),
		Events:   cal.Len(),
		Active:   active,
	}
}

type EventRespBody struct {
	ID          string    `json:"id"`
	SeriesID    string    `json:"seriesId,omitempty"`
	Subject     string    `json:"subject"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Start       string    `json:"start"`
	End         string    `json:"end"`
	StartUTC    time.Time `json:"startUTC"`
	EndUTC      time.Time `json:"endUTC"`
	Private     bool      `json:"private"`
	AllDay      bool      `json:"allDay"`
}

func toEventResp(cal *calendar.Calendar, e calendar.Event) EventRespBody {
	return EventRespBody{
		ID:          e.ID(),
		SeriesID:    e.SeriesID(),
		Subject:     e.Subject,
		Description: e.Description,
		Location:    e.Location,
		Start:       cal.Local(e.Start).Format(CivilLayout),
		End:         cal.Local(e.End).Format(CivilLayout),
		StartUTC:    e.Start,
		EndUTC:      e.End,
		Private:     e.Private,
		AllDay:      e.AllDay,
	}
}

func toEventResps(cal *calendar.Calendar, events []calendar.Event) []EventRespBody {
	resp := make([]EventRespBody, 0, len(events))
	for _, e := range events {
		resp = append(resp, toEventResp(cal, e))
	}
	return resp
}
