package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var (
	ErrNoDate    = errors.New("no date found in text")
	ErrNoSubject = errors.New("no subject left after removing the date")
)

// Natural turns sentences like "lunch with Bob tomorrow at 1pm" into an event.
type Natural struct {
	parser   *when.Parser
	duration time.Duration
}

type QuickEvent struct {
	Subject string
	Start   time.Time
	End     time.Time
}

func NewNatural(duration time.Duration) *Natural {
	parser := when.New(nil)
	parser.Add(en.All...)
	parser.Add(common.All...)
	return &Natural{
		parser:   parser,
		duration: duration,
	}
}

// Parse resolves relative phrases against base. The returned times carry
// base's location.
func (n *Natural) Parse(text string, base time.Time) (QuickEvent, error) {
	if strings.TrimSpace(text) == "" {
		return QuickEvent{}, fmt.Errorf("Natural.Parse: %w", ErrNoSubject)
	}
	result, err := n.parser.Parse(text, base)
	switch {
	case err != nil:
		return QuickEvent{}, fmt.Errorf("Natural.Parse: %w", err)
	case result == nil:
		return QuickEvent{}, fmt.Errorf("Natural.Parse: %w: %q", ErrNoDate, text)
	}

	subject := CleanupString(text[:result.Index] + " " + text[result.Index+len(result.Text):])
	if subject == "" {
		return QuickEvent{}, fmt.Errorf("Natural.Parse: %w: %q", ErrNoSubject, text)
	}
	return QuickEvent{
		Subject: subject,
		Start:   result.Time,
		End:     result.Time.Add(n.duration),
	}, nil
}
