package route

import (
	"fmt"
	"net/http"

	"calman/src-server/calendar"
	"calman/src-server/utils"
)

func Calendars(muxer *http.ServeMux, as *utils.AppState) {
	type CreateCalendarReqBody struct {
		Name     string `json:"name"`
		Timezone string `json:"timezone"`
	}

	type ModifyCalendarReqBody struct {
		Name     string `json:"name"`
		Timezone string `json:"timezone"`
	}

	type SetActiveReqBody struct {
		Name string `json:"name"`
	}

	// list calendars in creation order
	muxer.HandleFunc("GET /calendars", func(w http.ResponseWriter, r *http.Request) {
		var respBody []CalendarRespBody
		_ = as.Do(func(m *calendar.Manager) error {
			active, _ := m.Active()
			respBody = make([]CalendarRespBody, 0)
			for _, cal := range m.Calendars() {
				respBody = append(respBody, toCalendarResp(cal, cal == active))
			}
			return nil
		})
		writeJSON(w, http.StatusOK, respBody)
	})

	muxer.HandleFunc("POST /calendars", func(w http.ResponseWriter, r *http.Request) {
		var reqBody CreateCalendarReqBody
		if err := decodeBody(r, &reqBody); err != nil {
			writeError(w, err)
			return
		}

		var respBody CalendarRespBody
		if err := as.Do(func(m *calendar.Manager) error {
			cal, err := m.CreateCalendar(reqBody.Name, reqBody.Timezone)
			if err != nil {
				return err
			}
			active, _ := m.Active()
			respBody = toCalendarResp(cal, cal == active)
			return nil
		}); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, respBody)
	})

	muxer.HandleFunc("GET /calendars/active", func(w http.ResponseWriter, r *http.Request) {
		var respBody CalendarRespBody
		if err := as.Do(func(m *calendar.Manager) error {
			cal, err := m.Active()
			if err != nil {
				return err
			}
			respBody = toCalendarResp(cal, true)
			return nil
		}); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, respBody)
	})

	muxer.HandleFunc("PUT /calendars/active", func(w http.ResponseWriter, r *http.Request) {
		var reqBody SetActiveReqBody
		if err := decodeBody(r, &reqBody); err != nil {
			writeError(w, err)
			return
		}

		var respBody CalendarRespBody
		if err := as.Do(func(m *calendar.Manager) error {
			if err := m.SetActive(reqBody.Name); err != nil {
				return err
			}
			cal, err := m.Active()
			if err != nil {
				return err
			}
			respBody = toCalendarResp(cal, true)
			return nil
		}); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, respBody)
	})

	// rename and/or move to another timezone
	muxer.HandleFunc("PATCH /calendars/{name}", func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		var reqBody ModifyCalendarReqBody
		if err := decodeBody(r, &reqBody); err != nil {
			writeError(w, err)
			return
		}
		if reqBody.Name == "" && reqBody.Timezone == "" {
			writeError(w, badRequest("please provide a new name or timezone"))
			return
		}

		var respBody CalendarRespBody
		if err := as.Do(func(m *calendar.Manager) error {
			cal, err := m.GetCalendar(name)
			if err != nil {
				return err
			}
			// checked up front so a rename never lands without its timezone
			if reqBody.Timezone != "" && !m.Converter().IsValidTimezone(reqBody.Timezone) {
				return fmt.Errorf("%w: %q", calendar.ErrInvalidTimezone, reqBody.Timezone)
			}
			if reqBody.Name != "" {
				if err := m.RenameCalendar(name, reqBody.Name); err != nil {
					return err
				}
			}
			if reqBody.Timezone != "" {
				if err := m.EditCalendarTimezone(cal.Name(), reqBody.Timezone); err != nil {
					return err
				}
			}
			active, _ := m.Active()
			respBody = toCalendarResp(cal, cal == active)
			return nil
		}); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, respBody)
	})

	muxer.HandleFunc("DELETE /calendars/{name}", func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		if err := as.Do(func(m *calendar.Manager) error {
			return m.RemoveCalendar(name)
		}); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}
