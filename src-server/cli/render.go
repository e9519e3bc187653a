package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"calman/src-server/calendar"

	"gopkg.in/yaml.v3"
)

const (
	FormatText = "text"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

var ErrUnknownFormat = errors.New("unknown output format")

type AgendaItem struct {
	Date     string `json:"date" yaml:"date"`
	Start    string `json:"start,omitempty" yaml:"start,omitempty"`
	End      string `json:"end,omitempty" yaml:"end,omitempty"`
	AllDay   bool   `json:"allDay,omitempty" yaml:"allDay,omitempty"`
	Subject  string `json:"subject" yaml:"subject"`
	Location string `json:"location,omitempty" yaml:"location,omitempty"`
	Private  bool   `json:"private,omitempty" yaml:"private,omitempty"`
	ID       string `json:"id" yaml:"id"`
}

func agendaItems(events []calendar.Event, loc *time.Location) []AgendaItem {
	items := make([]AgendaItem, 0, len(events))
	for _, e := range events {
		start, end := e.Start.In(loc), e.End.In(loc)
		item := AgendaItem{
			Date:     start.Format(time.DateOnly),
			AllDay:   e.AllDay,
			Subject:  e.Subject,
			Location: e.Location,
			Private:  e.Private,
			ID:       e.ID(),
		}
		if !e.AllDay {
			item.Start = start.Format("15:04")
			item.End = end.Format("15:04")
			if start.YearDay() != end.YearDay() || start.Year() != end.Year() {
				item.End = end.Format("2006-01-02 15:04")
			}
		}
		items = append(items, item)
	}
	return items
}

// RenderAgenda writes events, which must be sorted, as seen from loc.
func RenderAgenda(w io.Writer, events []calendar.Event, loc *time.Location, format string) error {
	items := agendaItems(events, loc)
	switch strings.ToLower(format) {
	case FormatText, "":
		return renderText(w, items)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(items); err != nil {
			return fmt.Errorf("RenderAgenda: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(items); err != nil {
			return fmt.Errorf("RenderAgenda: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("RenderAgenda: %w: %q", ErrUnknownFormat, format)
	}
}

func renderText(w io.Writer, items []AgendaItem) error {
	var sb strings.Builder
	if len(items) == 0 {
		sb.WriteString("No events.\n")
	}
	lastDate := ""
	for _, item := range items {
		if item.Date != lastDate {
			if lastDate != "" {
				sb.WriteString("\n")
			}
			date, _ := time.Parse(time.DateOnly, item.Date)
			sb.WriteString(date.Format("Mon 2006-01-02") + "\n")
			lastDate = item.Date
		}

		when := "all day"
		if !item.AllDay {
			when = item.Start + "-" + item.End
		}
		line := fmt.Sprintf("  %-11s %s", when, item.Subject)
		if item.Location != "" {
			line += " @ " + item.Location
		}
		if item.Private {
			line += " (private)"
		}
		sb.WriteString(line + "\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
