package utils

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"calman/src-server/calendar"
	"calman/src-server/metric"

	"github.com/prometheus/client_golang/prometheus"
)

type AppState struct {
	Config  *Config
	Metrics *metric.Metrics
	Natural *Natural

	// the engine is single-threaded; every request goes through Do
	manager *calendar.Manager
	mu      sync.Mutex

	AppCloseSignalChan chan os.Signal
	shutdownChans      []chan struct{}
	shutdownMu         sync.Mutex
}

// NewAppState wires the calendar manager to the metrics on reg and creates the
// default calendar.
func NewAppState(cfg *Config, reg prometheus.Registerer) (*AppState, error) {
	as := &AppState{
		Config:             cfg,
		Metrics:            metric.New(reg),
		Natural:            NewNatural(cfg.GetQuickAddDuration()),
		AppCloseSignalChan: make(chan os.Signal, 1),
	}
	as.manager = calendar.NewManager(
		calendar.WithRecorder(as.Metrics),
		calendar.WithDefaultOccurrenceCount(cfg.GetRecurrenceDefaultCount()),
	)
	if _, err := as.manager.CreateCalendar(cfg.GetDefaultCalendar(), cfg.GetTimezone()); err != nil {
		return nil, fmt.Errorf("NewAppState: can't create default calendar: %w", err)
	}
	return as, nil
}

// Do runs fn while holding the manager, one caller at a time.
func (as *AppState) Do(fn func(m *calendar.Manager) error) error {
	as.mu.Lock()
	defer as.mu.Unlock()
	return fn(as.manager)
}

// DefaultPolicy is the conflict policy for requests that don't pick one.
func (as *AppState) DefaultPolicy() calendar.ConflictPolicy {
	if as.Config.GetStrictConflicts() {
		return calendar.ConflictStrict
	}
	return calendar.ConflictAllow
}

// CreateGracefulShutdownChan returns a channel closed by GracefulShutdown.
func (as *AppState) CreateGracefulShutdownChan() <-chan struct{} {
	as.shutdownMu.Lock()
	defer as.shutdownMu.Unlock()
	ch := make(chan struct{})
	as.shutdownChans = append(as.shutdownChans, ch)
	return ch
}

func (as *AppState) GracefulShutdown() {
	as.shutdownMu.Lock()
	defer as.shutdownMu.Unlock()
	for _, ch := range as.shutdownChans {
		close(ch)
	}
	slog.Debug("shutdown signalled", "listeners", len(as.shutdownChans))
	as.shutdownChans = nil
}
