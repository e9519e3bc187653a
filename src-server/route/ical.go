package route

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"calman/src-server/calendar"
	"calman/src-server/ical"
	"calman/src-server/utils"
)

// MaxImportBytes caps the size of an uploaded ICS stream.
var MaxImportBytes int64 = 10 << 20

func Ical(muxer *http.ServeMux, as *utils.AppState) {
	type ImportRespBody struct {
		Added     int      `json:"added"`
		Recurring int      `json:"recurring"`
		Skipped   []string `json:"skipped"`
	}

	muxer.HandleFunc("GET /calendars/{name}/export.ics", func(w http.ResponseWriter, r *http.Request) {
		var body string
		if err := withCalendar(as, r.PathValue("name"), func(cal *calendar.Calendar) error {
			body = ical.Export(cal)
			return nil
		}); err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := io.WriteString(w, body); err != nil {
			slog.Warn("can't write to response", "where", "route/ical.go", "error", err)
		}
	})

	// the body is an ICS stream, ?strict=false admits overlapping events
	muxer.HandleFunc("POST /calendars/{name}/import", func(w http.ResponseWriter, r *http.Request) {
		var strict *bool
		if s := r.URL.Query().Get("strict"); s != "" {
			v, err := strconv.ParseBool(s)
			if err != nil {
				writeError(w, badRequest("strict: "+err.Error()))
				return
			}
			strict = &v
		}

		// read before taking the app lock so a slow upload blocks no one
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxImportBytes))
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				http.Error(w, fmt.Sprintf("ICS body exceeds %d bytes", maxErr.Limit), http.StatusRequestEntityTooLarge)
				return
			}
			writeError(w, badRequest("can't read body: "+err.Error()))
			return
		}

		var result ical.ImportResult
		if err := withCalendar(as, r.PathValue("name"), func(cal *calendar.Calendar) error {
			var err error
			result, err = ical.Import(bytes.NewReader(body), cal, policyFor(as, strict))
			if err != nil {
				return badRequest(err.Error())
			}
			return nil
		}); err != nil {
			writeError(w, err)
			return
		}

		respBody := ImportRespBody{
			Added:     result.Added,
			Recurring: result.Recurring,
			Skipped:   make([]string, 0, len(result.Skipped)),
		}
		for _, skipped := range result.Skipped {
			respBody.Skipped = append(respBody.Skipped, skipped.Error())
		}
		writeJSON(w, http.StatusOK, respBody)
	})
}
