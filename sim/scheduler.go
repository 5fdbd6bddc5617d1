// sim/scheduler.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mmp/airsep/log"
	"github.com/mmp/airsep/util"
)

// Warn when a late wakeup leaves more than this many ticks to catch up.
const maxCatchUpTicks = 10

// Scheduler advances a Store at a fixed rate. Ticks are never dropped or
// run concurrently: if the scheduler falls behind, the missed ticks run
// back to back.
type Scheduler struct {
	store    *Store
	interval time.Duration
	running  util.AtomicBool

	// tickMu is held for the duration of each tick so that Run and Step
	// can't interleave.
	tickMu sync.Mutex

	advanced atomic.Int64
	paused   atomic.Int64

	events *EventStream
	lg     *log.Logger
}

func NewScheduler(store *Store, events *EventStream, lg *log.Logger) *Scheduler {
	cfg := store.Config()
	s := &Scheduler{
		store:    store,
		interval: cfg.TickInterval(),
		events:   events,
		lg:       lg,
	}
	s.running.Store(!cfg.StartPaused)
	return s
}

func (s *Scheduler) Running() bool {
	return s.running.Load()
}

func (s *Scheduler) Start() {
	s.SetRunning(true)
}

func (s *Scheduler) Pause() {
	s.SetRunning(false)
}

// Toggle flips between running and paused and returns the new state.
func (s *Scheduler) Toggle() bool {
	for {
		r := s.running.Load()
		if s.running.CompareAndSwap(r, !r) {
			s.announce(!r)
			return !r
		}
	}
}

func (s *Scheduler) SetRunning(r bool) {
	if s.running.Swap(r) != r {
		s.announce(r)
	}
}

func (s *Scheduler) announce(running bool) {
	e := Event{Type: SchedulerPausedEvent, Tick: s.store.Tick()}
	if running {
		e.Type = SchedulerStartedEvent
	}
	s.lg.Info("scheduler", slog.Bool("running", running), slog.Int64("tick", e.Tick))
	s.events.Post(e)
}

// Ticks returns the number of ticks that advanced the store and the
// number that were skipped because the scheduler was paused.
func (s *Scheduler) Ticks() (advanced, paused int64) {
	return s.advanced.Load(), s.paused.Load()
}

func (s *Scheduler) tick() {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	if !s.running.Load() {
		s.paused.Add(1)
		return
	}
	s.store.AdvanceAll()
	s.advanced.Add(1)
}

// Step advances the store n times immediately, whether or not the
// scheduler is running.
func (s *Scheduler) Step(n int) {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	for range n {
		s.store.AdvanceAll()
		s.advanced.Add(1)
	}
}

// Run ticks at the configured rate until ctx is canceled. Deadlines are
// computed from the start time rather than from when each tick finished
// so that the rate doesn't drift.
func (s *Scheduler) Run(ctx context.Context) error {
	s.lg.Info("scheduler starting", slog.Duration("interval", s.interval), slog.Bool("running", s.Running()))

	next := time.Now().Add(s.interval)
	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.lg.Info("scheduler stopping", slog.Int64("tick", s.store.Tick()))
			return ctx.Err()
		case <-timer.C:
		}

		now := time.Now()
		due := 0
		for !next.After(now) {
			due++
			next = next.Add(s.interval)
		}
		if due > maxCatchUpTicks {
			s.lg.Warn("scheduler fell behind", slog.Int("ticks", due), slog.Duration("interval", s.interval))
		}

		for range due {
			if ctx.Err() != nil {
				break
			}
			s.tick()
		}

		timer.Reset(time.Until(next))
	}
}
