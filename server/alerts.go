// server/alerts.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/mmp/airsep/conflict"
	"github.com/mmp/airsep/log"
	"github.com/mmp/airsep/sim"
	"github.com/mmp/airsep/util"
)

type AlertEventKind int

const (
	AlertRaised AlertEventKind = iota
	AlertLevelChanged
	AlertCleared
)

func (k AlertEventKind) String() string {
	switch k {
	case AlertRaised:
		return "raised"
	case AlertLevelChanged:
		return "changed"
	case AlertCleared:
		return "cleared"
	default:
		return fmt.Sprintf("AlertEventKind(%d)", int(k))
	}
}

func (k AlertEventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *AlertEventKind) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "raised":
		*k = AlertRaised
	case "changed":
		*k = AlertLevelChanged
	case "cleared":
		*k = AlertCleared
	default:
		return fmt.Errorf("%q: unknown alert event kind", string(b))
	}
	return nil
}

// AlertEvent records a change in the alert level of a pair of aircraft
// between two detection passes.
type AlertEvent struct {
	Kind     AlertEventKind
	Time     time.Time
	Tick     int64
	Previous conflict.AlertLevel
	// Assessment is the most recent one for the pair; for a cleared alert
	// whose pair is no longer evaluated (e.g., one of the aircraft was
	// removed), it is the last one that was reported.
	Assessment conflict.RiskAssessment
}

func (e AlertEvent) Level() conflict.AlertLevel {
	if e.Kind == AlertCleared {
		return conflict.Safe
	}
	return e.Assessment.AlertLevel
}

func (e AlertEvent) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", e.Kind.String()),
		slog.String("pair", string(e.Assessment.PairID)),
		slog.String("level", e.Level().String()),
		slog.String("previous", e.Previous.String()),
		slog.Float64("risk", float64(e.Assessment.RiskLevel)),
		slog.Int64("tick", e.Tick))
}

// AlertSink receives the alert transitions found by each detection pass.
// Publish is called with the events sorted by pair and is never called
// concurrently for the same sink.
type AlertSink interface {
	Publish(ctx context.Context, events []AlertEvent) error
	Close() error
}

// AlertMonitor runs the conflict detector over the store and reports
// pairs whose alert level changes.
type AlertMonitor struct {
	store    *sim.Store
	detector *conflict.Detector
	interval time.Duration
	lg       *log.Logger

	// passMu serializes passes so that sinks see events in order; it is
	// held while publishing. mu protects current, sinks, and passes.
	passMu  sync.Mutex
	mu      sync.Mutex
	current map[conflict.PairID]conflict.RiskAssessment
	sinks   []AlertSink
	passes  int64
}

func NewAlertMonitor(store *sim.Store, detector *conflict.Detector, interval time.Duration,
	lg *log.Logger) *AlertMonitor {
	return &AlertMonitor{
		store:    store,
		detector: detector,
		interval: interval,
		lg:       lg,
		current:  make(map[conflict.PairID]conflict.RiskAssessment),
	}
}

func (m *AlertMonitor) AddSink(s AlertSink) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sinks = append(m.sinks, s)
}

// Check runs a single detection pass, updates the set of active alerts,
// and publishes any changes to the sinks. The events are returned as
// well. A sink that fails doesn't keep the others from seeing the events.
func (m *AlertMonitor) Check(ctx context.Context) ([]AlertEvent, error) {
	m.passMu.Lock()
	defer m.passMu.Unlock()

	tick := m.store.Tick()
	assessments, err := m.detector.AssessAll(m.store.Tracks())
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	events := diffAlerts(m.current, assessments, time.Now(), tick)
	clear(m.current)
	for id, ra := range assessments {
		if ra.AlertLevel != conflict.Safe {
			m.current[id] = ra
		}
	}
	m.passes++
	sinks := slices.Clone(m.sinks)
	m.mu.Unlock()

	// A slow sink mustn't block Active and Counts.
	var errs []error
	if len(events) > 0 {
		for _, s := range sinks {
			if err := s.Publish(ctx, events); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return events, errors.Join(errs...)
}

// diffAlerts compares the active (non-Safe) alerts from the previous
// pass to the latest assessments.
func diffAlerts(prev map[conflict.PairID]conflict.RiskAssessment,
	latest map[conflict.PairID]conflict.RiskAssessment, now time.Time, tick int64) []AlertEvent {
	var events []AlertEvent

	for id, ra := range latest {
		if ra.AlertLevel == conflict.Safe {
			continue
		}
		if old, ok := prev[id]; !ok {
			events = append(events, AlertEvent{Kind: AlertRaised, Time: now, Tick: tick,
				Previous: conflict.Safe, Assessment: ra})
		} else if old.AlertLevel != ra.AlertLevel {
			events = append(events, AlertEvent{Kind: AlertLevelChanged, Time: now, Tick: tick,
				Previous: old.AlertLevel, Assessment: ra})
		}
	}
	for id, old := range prev {
		ra, ok := latest[id]
		if ok && ra.AlertLevel != conflict.Safe {
			continue
		}
		if !ok {
			ra = old
		}
		events = append(events, AlertEvent{Kind: AlertCleared, Time: now, Tick: tick,
			Previous: old.AlertLevel, Assessment: ra})
	}

	slices.SortFunc(events, func(a, b AlertEvent) int {
		return strings.Compare(string(a.Assessment.PairID), string(b.Assessment.PairID))
	})
	return events
}

// Active returns the current alerts, most dangerous first.
func (m *AlertMonitor) Active() []conflict.RiskAssessment {
	m.mu.Lock()
	defer m.mu.Unlock()

	active := make([]conflict.RiskAssessment, 0, len(m.current))
	for _, id := range util.SortedMapKeys(m.current) {
		active = append(active, m.current[id])
	}
	slices.SortStableFunc(active, func(a, b conflict.RiskAssessment) int {
		if a.RiskLevel > b.RiskLevel {
			return -1
		} else if a.RiskLevel < b.RiskLevel {
			return 1
		}
		return 0
	})
	return active
}

// Counts returns the number of white and red alerts from the latest pass.
func (m *AlertMonitor) Counts() (white, red int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, ra := range m.current {
		switch ra.AlertLevel {
		case conflict.WhiteConflict:
			white++
		case conflict.RedConflict:
			red++
		}
	}
	return
}

func (m *AlertMonitor) Passes() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.passes
}

// Run calls Check at the monitor's interval until ctx is canceled.
func (m *AlertMonitor) Run(ctx context.Context) error {
	m.lg.Info("alert monitor starting", slog.Duration("interval", m.interval))

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.lg.Info("alert monitor stopping")
			return ctx.Err()
		case <-ticker.C:
		}

		if _, err := m.Check(ctx); err != nil {
			m.lg.Warn("alert pass", slog.Any("error", err))
		}
	}
}

// Close closes all of the sinks.
func (m *AlertMonitor) Close() error {
	m.passMu.Lock()
	defer m.passMu.Unlock()
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	m.sinks = nil
	return errors.Join(errs...)
}

///////////////////////////////////////////////////////////////////////////
// LogAlertSink

// LogAlertSink writes alert transitions to the log; red alerts are logged
// as warnings.
type LogAlertSink struct {
	lg *log.Logger
}

func NewLogAlertSink(lg *log.Logger) *LogAlertSink {
	return &LogAlertSink{lg: lg}
}

func (s *LogAlertSink) Publish(ctx context.Context, events []AlertEvent) error {
	for _, e := range events {
		if e.Level() == conflict.RedConflict {
			s.lg.Warn("conflict alert", slog.Any("alert", e), slog.Any("assessment", e.Assessment))
		} else {
			s.lg.Info("conflict alert", slog.Any("alert", e))
		}
	}
	return nil
}

func (s *LogAlertSink) Close() error { return nil }
