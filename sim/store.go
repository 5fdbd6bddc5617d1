// sim/store.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	av "github.com/mmp/airsep/aviation"
	"github.com/mmp/airsep/conflict"
	"github.com/mmp/airsep/log"
	"github.com/mmp/airsep/util"

	"github.com/brunoga/deep"
)

// Store owns the set of live aircraft. Reads may proceed concurrently;
// anything that modifies an aircraft takes the write lock, so readers
// never see an aircraft partway through an update.
type Store struct {
	mu       util.LoggingRWMutex
	aircraft map[av.Callsign]*Aircraft

	cfg    Config
	tick   atomic.Int64
	events *EventStream
	lg     *log.Logger
}

// NewStore returns an empty store. events may be nil, in which case no
// events are posted.
func NewStore(cfg Config, events *EventStream, lg *log.Logger) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Store{
		aircraft: make(map[av.Callsign]*Aircraft),
		cfg:      cfg,
		events:   events,
		lg:       lg,
	}, nil
}

func (s *Store) Config() Config {
	return s.cfg
}

// Tick returns the number of AdvanceAll calls so far.
func (s *Store) Tick() int64 {
	return s.tick.Load()
}

// Add stores a copy of ac; later changes to ac don't affect the store.
func (s *Store) Add(ac *Aircraft) error {
	if err := ac.Validate(); err != nil {
		return err
	}
	stored := deep.MustCopy(*ac)
	ac = &stored

	s.mu.Lock(s.lg)
	defer s.mu.Unlock(s.lg)

	if _, ok := s.aircraft[ac.Callsign]; ok {
		return fmt.Errorf("%s: %w", ac.Callsign, ErrDuplicateCallsign)
	}
	s.aircraft[ac.Callsign] = ac

	s.lg.Info("added aircraft", slog.Any("aircraft", ac))
	s.events.Post(Event{
		Type:     AircraftAddedEvent,
		Callsign: ac.Callsign,
		Tick:     s.tick.Load(),
		Text:     ac.Category.String(),
	})
	return nil
}

func (s *Store) Remove(callsign av.Callsign) error {
	s.mu.Lock(s.lg)
	defer s.mu.Unlock(s.lg)

	if _, ok := s.aircraft[callsign]; !ok {
		return fmt.Errorf("%s: %w", callsign, ErrNoAircraftForCallsign)
	}
	delete(s.aircraft, callsign)

	s.lg.Info("removed aircraft", slog.String("callsign", string(callsign)))
	s.events.Post(Event{Type: AircraftRemovedEvent, Callsign: callsign, Tick: s.tick.Load()})
	return nil
}

// Find returns a copy of the aircraft with the given callsign.
func (s *Store) Find(callsign av.Callsign) (*Aircraft, error) {
	s.mu.RLock(s.lg)
	defer s.mu.RUnlock(s.lg)

	ac, ok := s.aircraft[callsign]
	if !ok {
		return nil, fmt.Errorf("%s: %w", callsign, ErrNoAircraftForCallsign)
	}
	cp := deep.MustCopy(*ac)
	return &cp, nil
}

// FindAll returns copies of all of the aircraft, sorted by callsign.
func (s *Store) FindAll() []*Aircraft {
	s.mu.RLock(s.lg)
	defer s.mu.RUnlock(s.lg)

	all := make([]*Aircraft, 0, len(s.aircraft))
	for _, cs := range util.SortedMapKeys(s.aircraft) {
		cp := deep.MustCopy(*s.aircraft[cs])
		all = append(all, &cp)
	}
	return all
}

// Tracks returns a consistent snapshot of every aircraft's position and
// vector for conflict detection, sorted by callsign.
func (s *Store) Tracks() []*conflict.Track {
	s.mu.RLock(s.lg)
	defer s.mu.RUnlock(s.lg)

	tracks := make([]*conflict.Track, 0, len(s.aircraft))
	for _, ac := range s.aircraft {
		tracks = append(tracks, ac.Track())
	}
	slices.SortFunc(tracks, func(a, b *conflict.Track) int { return cmp.Compare(a.Callsign, b.Callsign) })
	return tracks
}

func (s *Store) Len() int {
	s.mu.RLock(s.lg)
	defer s.mu.RUnlock(s.lg)

	return len(s.aircraft)
}

// AdvanceAll moves every aircraft forward by one tick: each aircraft's
// vector is updated toward its instructed vector and then its position
// is integrated. An aircraft whose update fails is left where it is.
func (s *Store) AdvanceAll() {
	s.mu.Lock(s.lg)
	defer s.mu.Unlock(s.lg)

	start := time.Now()
	tick := s.tick.Load()
	held := 0

	for _, cs := range util.SortedMapKeys(s.aircraft) {
		ac := s.aircraft[cs]
		reached, err := ac.advance(tick, s.cfg.RefreshRateHz)
		if err != nil {
			held++
			s.lg.Warn("unable to advance aircraft; holding", slog.Any("aircraft", ac), slog.Any("error", err))
			s.events.Post(Event{Type: KinematicHoldEvent, Callsign: cs, Tick: tick, Text: err.Error()})
			continue
		}
		if reached {
			s.events.Post(Event{Type: DirectFixReachedEvent, Callsign: cs, Tick: tick})
		}
	}
	s.tick.Add(1)

	if d := time.Since(start); d > 250*time.Millisecond && !util.DebuggerIsRunning() {
		s.lg.Warn("slow AdvanceAll", slog.Duration("duration", d), slog.Int("aircraft", len(s.aircraft)),
			slog.Int("held", held))
	}
}

///////////////////////////////////////////////////////////////////////////
// Control

// Instruction is a set of changes to apply to one aircraft; nil fields
// are left unchanged. All of the changes are checked before any are
// made.
type Instruction struct {
	Callsign     av.Callsign
	Heading      *float64
	Altitude     *float64
	Speed        *float64
	DirectTo     *av.Position
	CancelDirect bool
	Highlight    *int
}

func (in Instruction) String() string {
	var s []string
	if in.Heading != nil {
		s = append(s, fmt.Sprintf("heading %03.0f", *in.Heading))
	}
	if in.Altitude != nil {
		s = append(s, fmt.Sprintf("altitude %.0f", *in.Altitude))
	}
	if in.Speed != nil {
		s = append(s, fmt.Sprintf("speed %.0f", *in.Speed))
	}
	if in.DirectTo != nil {
		s = append(s, "direct "+in.DirectTo.String())
	}
	if in.CancelDirect {
		s = append(s, "cancel direct")
	}
	if in.Highlight != nil {
		s = append(s, fmt.Sprintf("highlight %d", *in.Highlight))
	}
	return strings.Join(s, ", ")
}

// Apply executes the instruction under the write lock.
func (s *Store) Apply(in Instruction) error {
	return s.modify(in.Callsign, in.String(), func(ac *Aircraft) error {
		iv := ac.Instructed
		if in.Heading != nil {
			hdg, err := av.MakeHeading(*in.Heading)
			if err != nil {
				return err
			}
			iv.Heading = hdg
		}
		if in.Altitude != nil {
			alt, err := av.MakeAltitude(*in.Altitude)
			if err != nil {
				return err
			}
			if err := ac.checkAltitude(alt); err != nil {
				return err
			}
			iv.Altitude = alt
		}
		if in.Speed != nil {
			gs, err := av.MakeGroundSpeed(*in.Speed)
			if err != nil {
				return err
			}
			if err := ac.checkSpeed(gs); err != nil {
				return err
			}
			iv.GroundSpeed = gs
		}

		ac.Instructed = iv
		// An assigned heading takes over from flying direct.
		if in.Heading != nil || in.CancelDirect {
			ac.DirectFix = nil
		}
		if in.DirectTo != nil {
			fix := *in.DirectTo
			ac.DirectFix = &fix
		}
		if in.Highlight != nil {
			ac.HighlightRank = *in.Highlight
		}
		return nil
	})
}

func (s *Store) AssignHeading(callsign av.Callsign, hdg float64) error {
	return s.Apply(Instruction{Callsign: callsign, Heading: &hdg})
}

func (s *Store) AssignAltitude(callsign av.Callsign, alt float64) error {
	return s.Apply(Instruction{Callsign: callsign, Altitude: &alt})
}

func (s *Store) AssignSpeed(callsign av.Callsign, gs float64) error {
	return s.Apply(Instruction{Callsign: callsign, Speed: &gs})
}

func (s *Store) DirectTo(callsign av.Callsign, fix av.Position) error {
	return s.Apply(Instruction{Callsign: callsign, DirectTo: &fix})
}

func (s *Store) SetHighlight(callsign av.Callsign, rank int) error {
	return s.Apply(Instruction{Callsign: callsign, Highlight: &rank})
}

// modify runs f on the stored aircraft while holding the write lock; if
// f returns an error the aircraft is restored to its previous state.
func (s *Store) modify(callsign av.Callsign, what string, f func(*Aircraft) error) error {
	s.mu.Lock(s.lg)
	defer s.mu.Unlock(s.lg)

	ac, ok := s.aircraft[callsign]
	if !ok {
		return fmt.Errorf("%s: %w", callsign, ErrNoAircraftForCallsign)
	}

	saved := deep.MustCopy(*ac)
	if err := f(ac); err != nil {
		*ac = saved
		return err
	}

	s.lg.Info("instruction", slog.String("callsign", string(callsign)), slog.String("instruction", what))
	s.events.Post(Event{Type: InstructionEvent, Callsign: callsign, Tick: s.tick.Load(), Text: what})
	return nil
}

func (s *Store) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("aircraft", s.Len()),
		slog.Int64("tick", s.Tick()),
		slog.Float64("refresh_rate_hz", s.cfg.RefreshRateHz))
}
