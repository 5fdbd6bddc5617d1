// conflict/detector.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package conflict

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
	"time"

	av "github.com/mmp/airsep/aviation"
	"github.com/mmp/airsep/log"
	"github.com/mmp/airsep/math"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/errgroup"
)

// RiskAssessment describes the predicted closest approach of a pair of
// aircraft and how dangerous it is. A new one is computed on every
// detection pass.
type RiskAssessment struct {
	PairID    PairID
	Callsigns [2]av.Callsign // ordered as in PairID

	RiskLevel  RiskLevel
	AlertLevel AlertLevel

	// TimeToClosest is in seconds, limited to the prediction horizon. It
	// is 0 if the aircraft are already past their closest approach and
	// +Inf if they aren't moving relative to each other.
	TimeToClosest       float64
	ClosestHorizontalNM float64
	ClosestVerticalFt   float64

	CurrentHorizontalNM float64
	CurrentVerticalFt   float64

	ConflictPredicted bool
}

// HasFiniteCPA returns false when the aircraft have no relative motion,
// in which case the closest distances are their current separation.
func (r RiskAssessment) HasFiniteCPA() bool {
	return math.IsFinite(r.TimeToClosest)
}

func (r RiskAssessment) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("pair", string(r.PairID)),
		slog.Float64("risk", float64(r.RiskLevel)),
		slog.String("alert", r.AlertLevel.String()),
		slog.Float64("time_to_closest", r.TimeToClosest),
		slog.Float64("closest_nm", r.ClosestHorizontalNM),
		slog.Float64("closest_ft", r.ClosestVerticalFt),
		slog.Bool("conflict_predicted", r.ConflictPredicted))
}

// Stats summarizes the Detector's work since it was created.
type Stats struct {
	Passes        int64
	Candidates    int64 // pairs that survived the distance pre-filter
	Failures      int64
	CacheHits     int64
	LastPass      time.Duration
	LastPassPairs int
}

type pairKey struct {
	a, b Track
}

// Detector evaluates aircraft pairs for loss of separation. It is safe
// for concurrent use.
type Detector struct {
	cfg   Config
	lg    *log.Logger
	cache *expirable.LRU[pairKey, RiskAssessment]

	// assess evaluates a single ordered pair; it is a field so that
	// tests can inject failures.
	assess func(a, b *Track) (RiskAssessment, error)

	passes, candidates, failures, cacheHits atomic.Int64
	lastPass                                atomic.Int64
	lastPassPairs                           atomic.Int64
}

func NewDetector(cfg Config, lg *log.Logger) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d := &Detector{cfg: cfg, lg: lg}
	if cfg.CacheSize > 0 {
		d.cache = expirable.NewLRU[pairKey, RiskAssessment](cfg.CacheSize, nil, cfg.cacheTTL())
	}
	d.assess = d.evaluate
	return d, nil
}

func (d *Detector) Config() Config {
	return d.cfg
}

// Classify maps a risk level to its alert level.
func (d *Detector) Classify(r RiskLevel) AlertLevel {
	return Classify(r)
}

func (d *Detector) Stats() Stats {
	return Stats{
		Passes:        d.passes.Load(),
		Candidates:    d.candidates.Load(),
		Failures:      d.failures.Load(),
		CacheHits:     d.cacheHits.Load(),
		LastPass:      time.Duration(d.lastPass.Load()),
		LastPassPairs: int(d.lastPassPairs.Load()),
	}
}

// AssessPair computes the risk assessment for a and b. The result doesn't
// depend on the order of the arguments.
func (d *Detector) AssessPair(a, b *Track) (RiskAssessment, error) {
	if a == nil || b == nil {
		return RiskAssessment{}, ErrNilAircraft
	}
	a, b = orderPair(a, b)
	return d.assessSafely(a, b)
}

func (d *Detector) evaluate(a, b *Track) (RiskAssessment, error) {
	var key pairKey
	if d.cache != nil {
		key = pairKey{a: *a, b: *b}
		if ra, ok := d.cache.Get(key); ok {
			d.cacheHits.Add(1)
			return ra, nil
		}
	}

	ca := computeClosestApproach(a, b, d.cfg.MaxPredictionTime)
	risk, err := MakeRiskLevel(float64(scoreRisk(ca, d.cfg)))
	if err != nil {
		return RiskAssessment{}, fmt.Errorf("%s: %w: %w", MakePairID(a.Callsign, b.Callsign), ErrPairEvaluation, err)
	}

	ra := RiskAssessment{
		PairID:              MakePairID(a.Callsign, b.Callsign),
		Callsigns:           [2]av.Callsign{a.Callsign, b.Callsign},
		RiskLevel:           risk,
		AlertLevel:          Classify(risk),
		TimeToClosest:       ca.TClamped,
		ClosestHorizontalNM: ca.HorizontalNM,
		ClosestVerticalFt:   ca.VerticalFt,
		CurrentHorizontalNM: ca.CurrentHorizontalNM,
		CurrentVerticalFt:   ca.CurrentVerticalFt,
		ConflictPredicted:   predictsViolation(ca, d.cfg),
	}
	if !ca.finite() {
		ra.TimeToClosest = math.Inf()
	}

	if d.cache != nil {
		d.cache.Add(key, ra)
	}
	return ra, nil
}

// assessSafely converts a panic during evaluation into an error so that
// one bad pair can't take down a whole pass.
func (d *Detector) assessSafely(a, b *Track) (ra RiskAssessment, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %w: %v", MakePairID(a.Callsign, b.Callsign), ErrPairEvaluation, r)
			d.lg.Error("panic evaluating pair", slog.Any("panic", r), slog.Any("a", *a), slog.Any("b", *b),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	return d.assess(a, b)
}

type candidatePair struct {
	a, b *Track
}

// AssessAll evaluates every pair of aircraft closer than the pre-filter
// distance and returns the assessments with non-zero risk, keyed by pair.
// A nil entry in tracks is an error; a failure evaluating an individual
// pair is logged and that pair is omitted.
func (d *Detector) AssessAll(tracks []*Track) (map[PairID]RiskAssessment, error) {
	start := time.Now()

	for i, t := range tracks {
		if t == nil {
			return nil, fmt.Errorf("aircraft %d: %w", i, ErrNilAircraft)
		}
	}

	var pairs []candidatePair
	for i, a := range tracks {
		pa := a.Position.Point2LL()
		for _, b := range tracks[i+1:] {
			if math.NMDistance2LLFast(pa, b.Position.Point2LL()) < d.cfg.PreFilterDistanceNM {
				x, y := orderPair(a, b)
				pairs = append(pairs, candidatePair{a: x, b: y})
			}
		}
	}

	// Each worker handles a contiguous chunk and writes only its own
	// slots, so no locking is needed.
	results := make([]RiskAssessment, len(pairs))
	valid := make([]bool, len(pairs))

	nw := max(1, min(d.cfg.workers(), len(pairs)))
	chunk := (len(pairs) + nw - 1) / nw

	var eg errgroup.Group
	eg.SetLimit(nw)
	for lo := 0; lo < len(pairs); lo += chunk {
		hi := min(lo+chunk, len(pairs))
		eg.Go(func() error {
			for i := lo; i < hi; i++ {
				p := pairs[i]
				ra, err := d.assessSafely(p.a, p.b)
				if err != nil {
					d.failures.Add(1)
					d.lg.Warn("skipping pair", slog.String("pair", string(MakePairID(p.a.Callsign, p.b.Callsign))),
						slog.Any("error", err))
					continue
				}
				results[i], valid[i] = ra, true
			}
			return nil
		})
	}
	_ = eg.Wait() // workers never return errors

	assessments := make(map[PairID]RiskAssessment)
	for i, ra := range results {
		if valid[i] && ra.RiskLevel > 0 {
			assessments[ra.PairID] = ra
		}
	}

	elapsed := time.Since(start)
	d.passes.Add(1)
	d.candidates.Add(int64(len(pairs)))
	d.lastPass.Store(int64(elapsed))
	d.lastPassPairs.Store(int64(len(pairs)))
	if elapsed > 500*time.Millisecond {
		d.lg.Warn("slow conflict detection pass", slog.Int("aircraft", len(tracks)),
			slog.Int("pairs", len(pairs)), slog.Duration("elapsed", elapsed))
	}

	return assessments, nil
}
