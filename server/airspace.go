// server/airspace.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package server

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"time"

	av "github.com/mmp/airsep/aviation"
	"github.com/mmp/airsep/conflict"
	"github.com/mmp/airsep/log"
	"github.com/mmp/airsep/sim"
)

// Airspace is the RPC service that exposes the aircraft store, the
// scheduler, and the conflict detector. Its methods follow net/rpc's
// conventions.
type Airspace struct {
	store     *sim.Store
	sched     *sim.Scheduler
	detector  *conflict.Detector
	monitor   *AlertMonitor
	startTime time.Time
	lg        *log.Logger
}

func NewAirspace(store *sim.Store, sched *sim.Scheduler, detector *conflict.Detector, monitor *AlertMonitor,
	lg *log.Logger) *Airspace {
	return &Airspace{
		store:     store,
		sched:     sched,
		detector:  detector,
		monitor:   monitor,
		startTime: time.Now(),
		lg:        lg,
	}
}

// AddArgs describes a new aircraft; the info that matches Category must
// be set and the others must be nil.
type AddArgs struct {
	Category   av.Category
	State      sim.InitialState
	Commercial *sim.CommercialInfo
	Military   *sim.MilitaryInfo
	Helicopter *sim.HelicopterInfo
}

// Build creates the aircraft using the factory for its category.
func (a *AddArgs) Build() (*sim.Aircraft, error) {
	switch a.Category {
	case av.CategoryCommercial:
		if a.Commercial == nil || a.Military != nil || a.Helicopter != nil {
			return nil, ErrInvalidAircraftInfo
		}
		return sim.NewCommercial(a.State, *a.Commercial)
	case av.CategoryFighter:
		if a.Military == nil || a.Commercial != nil || a.Helicopter != nil {
			return nil, ErrInvalidAircraftInfo
		}
		return sim.NewFighter(a.State, *a.Military)
	case av.CategoryHelicopter:
		if a.Helicopter == nil || a.Commercial != nil || a.Military != nil {
			return nil, ErrInvalidAircraftInfo
		}
		return sim.NewHelicopter(a.State, *a.Helicopter)
	default:
		return nil, fmt.Errorf("%d: %w", int(a.Category), av.ErrInvalidCategory)
	}
}

// Connect checks that the client speaks the same protocol version.
func (a *Airspace) Connect(version int, _ *struct{}) error {
	if version != AirsepRPCVersion {
		a.lg.Warn("client version mismatch", slog.Int("client", version), slog.Int("server", AirsepRPCVersion))
		return ErrRPCVersionMismatch
	}
	return nil
}

func (a *Airspace) Add(args *AddArgs, _ *struct{}) error {
	ac, err := args.Build()
	if err != nil {
		return err
	}
	return a.store.Add(ac)
}

func (a *Airspace) Remove(callsign av.Callsign, _ *struct{}) error {
	return a.store.Remove(callsign)
}

func (a *Airspace) Get(callsign av.Callsign, ac *sim.Aircraft) error {
	found, err := a.store.Find(callsign)
	if err != nil {
		return err
	}
	*ac = *found
	return nil
}

func (a *Airspace) List(_ struct{}, list *[]*sim.Aircraft) error {
	*list = a.store.FindAll()
	return nil
}

func (a *Airspace) Instruct(in *sim.Instruction, _ *struct{}) error {
	return a.store.Apply(*in)
}

// AssessAll runs a detection pass over the current traffic and returns
// every pair with non-zero risk, most dangerous first.
func (a *Airspace) AssessAll(_ struct{}, result *[]conflict.RiskAssessment) error {
	assessments, err := a.detector.AssessAll(a.store.Tracks())
	if err != nil {
		return err
	}

	r := make([]conflict.RiskAssessment, 0, len(assessments))
	for _, ra := range assessments {
		r = append(r, ra)
	}
	sortAssessments(r)
	*result = r
	return nil
}

func sortAssessments(r []conflict.RiskAssessment) {
	slices.SortFunc(r, func(a, b conflict.RiskAssessment) int {
		return cmp.Or(cmp.Compare(b.RiskLevel, a.RiskLevel), cmp.Compare(a.PairID, b.PairID))
	})
}

// AssessPair evaluates two aircraft against each other, using a single
// snapshot of the store so that both are seen at the same tick.
func (a *Airspace) AssessPair(pair [2]av.Callsign, ra *conflict.RiskAssessment) error {
	tracks := a.store.Tracks()
	find := func(cs av.Callsign) (*conflict.Track, error) {
		i, ok := slices.BinarySearchFunc(tracks, cs, func(t *conflict.Track, cs av.Callsign) int {
			return cmp.Compare(t.Callsign, cs)
		})
		if !ok {
			return nil, fmt.Errorf("%s: %w", cs, sim.ErrNoAircraftForCallsign)
		}
		return tracks[i], nil
	}

	ta, err := find(pair[0])
	if err != nil {
		return err
	}
	tb, err := find(pair[1])
	if err != nil {
		return err
	}

	*ra, err = a.detector.AssessPair(ta, tb)
	return err
}

func (a *Airspace) SetRunning(running bool, _ *struct{}) error {
	a.sched.SetRunning(running)
	return nil
}

// Step advances the simulation n ticks immediately; n is limited to an
// hour's worth of 1 Hz ticks.
func (a *Airspace) Step(n int, _ *struct{}) error {
	if n < 1 || n > 3600 {
		return fmt.Errorf("%d: %w", n, ErrInvalidStepCount)
	}
	a.sched.Step(n)
	return nil
}

type Status struct {
	Version       int
	Uptime        time.Duration
	Running       bool
	Tick          int64
	AdvancedTicks int64
	PausedTicks   int64
	RefreshRateHz float64
	Aircraft      int
	WhiteAlerts   int
	RedAlerts     int
	AlertPasses   int64
	Detector      conflict.Stats
}

func (s Status) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Duration("uptime", s.Uptime),
		slog.Bool("running", s.Running),
		slog.Int64("tick", s.Tick),
		slog.Int("aircraft", s.Aircraft),
		slog.Int("white_alerts", s.WhiteAlerts),
		slog.Int("red_alerts", s.RedAlerts))
}

func (a *Airspace) Status(_ struct{}, st *Status) error {
	*st = a.status()
	return nil
}

func (a *Airspace) status() Status {
	advanced, paused := a.sched.Ticks()
	st := Status{
		Version:       AirsepRPCVersion,
		Uptime:        time.Since(a.startTime).Round(time.Second),
		Running:       a.sched.Running(),
		Tick:          a.store.Tick(),
		AdvancedTicks: advanced,
		PausedTicks:   paused,
		RefreshRateHz: a.store.Config().RefreshRateHz,
		Aircraft:      a.store.Len(),
		Detector:      a.detector.Stats(),
	}
	if a.monitor != nil {
		st.WhiteAlerts, st.RedAlerts = a.monitor.Counts()
		st.AlertPasses = a.monitor.Passes()
	}
	return st
}
