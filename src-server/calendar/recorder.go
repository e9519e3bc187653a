package calendar

import (
	"time"

	"calman/src-server/timezone"
)

// Recorder receives engine activity, implemented by the metrics layer.
type Recorder interface {
	EventAdmitted(kind string, n int)
	ConflictDetected(op string)
	CalendarsChanged(n int)
	QueryObserved(op string, d time.Duration)
}

type NopRecorder struct{}

func (NopRecorder) EventAdmitted(string, int)           {}
func (NopRecorder) ConflictDetected(string)             {}
func (NopRecorder) CalendarsChanged(int)                {}
func (NopRecorder) QueryObserved(string, time.Duration) {}

type settings struct {
	converter    *timezone.Converter
	recorder     Recorder
	defaultCount int
}

type Option func(s *settings)

func WithConverter(converter *timezone.Converter) Option {
	return func(s *settings) {
		if converter != nil {
			s.converter = converter
		}
	}
}

func WithRecorder(recorder Recorder) Option {
	return func(s *settings) {
		if recorder != nil {
			s.recorder = recorder
		}
	}
}

// WithDefaultOccurrenceCount overrides DefaultOccurrenceCount for recurring
// events admitted without a termination rule.
func WithDefaultOccurrenceCount(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.defaultCount = n
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{
		converter:    timezone.NewConverter(),
		recorder:     NopRecorder{},
		defaultCount: DefaultOccurrenceCount,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
