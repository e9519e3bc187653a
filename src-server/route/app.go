package route

import (
	"net/http"

	"calman/src-server/calendar"
	"calman/src-server/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// New mounts every route on a fresh mux, wrapped in LogMiddleware.
func New(as *utils.AppState, gatherer prometheus.Gatherer) http.Handler {
	muxer := http.NewServeMux()
	muxer.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	Ping(muxer)
	Calendars(muxer, as)
	Events(muxer, as)
	Ical(muxer, as)
	Copy(muxer, as)
	return LogMiddleware(muxer)
}

func Ping(muxer *http.ServeMux) {
	muxer.HandleFunc("GET /ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})
}

func Copy(muxer *http.ServeMux, as *utils.AppState) {
	type CopyReqBody struct {
		From      string `json:"from"`
		To        string `json:"to"`
		Subject   string `json:"subject"`
		Start     string `json:"start"`
		DstStart  string `json:"dstStart"`
		RangeFrom string `json:"rangeFrom"`
		RangeTo   string `json:"rangeTo"`
		Strict    *bool  `json:"strict"`
	}

	type CopyRespBody struct {
		Copied int            `json:"copied"`
		Event  *EventRespBody `json:"event,omitempty"`
	}

	// one event by subject and start, or every event of a date range
	muxer.HandleFunc("POST /copy", func(w http.ResponseWriter, r *http.Request) {
		var reqBody CopyReqBody
		if err := decodeBody(r, &reqBody); err != nil {
			writeError(w, err)
			return
		}

		// #region - parse dates
		dstStart, err := requireCivil("dstStart", reqBody.DstStart)
		if err != nil {
			writeError(w, err)
			return
		}
		rangeFrom, err := parseCivil("rangeFrom", reqBody.RangeFrom)
		if err != nil {
			writeError(w, err)
			return
		}
		rangeTo, err := parseCivil("rangeTo", reqBody.RangeTo)
		if err != nil {
			writeError(w, err)
			return
		}
		if rangeTo.IsZero() {
			rangeTo = rangeFrom
		}
		start, err := parseCivil("start", reqBody.Start)
		if err != nil {
			writeError(w, err)
			return
		}
		if rangeFrom.IsZero() && start.IsZero() {
			writeError(w, badRequest("please provide start or rangeFrom"))
			return
		}
		// #endregion

		var respBody CopyRespBody
		if err := as.Do(func(m *calendar.Manager) error {
			policy := policyFor(as, reqBody.Strict)
			if !rangeFrom.IsZero() {
				var err error
				respBody.Copied, err = m.CopyEventsInRange(reqBody.From, rangeFrom, rangeTo, reqBody.To, dstStart, policy)
				return err
			}

			copied, err := m.CopyEvent(reqBody.From, reqBody.Subject, start, reqBody.To, dstStart, policy)
			if err != nil {
				return err
			}
			dst, err := m.GetCalendar(reqBody.To)
			if err != nil {
				return err
			}
			resp := toEventResp(dst, copied)
			respBody.Copied, respBody.Event = 1, &resp
			return nil
		}); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, respBody)
	})
}
