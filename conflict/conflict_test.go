// conflict/conflict_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package conflict

import (
	"errors"
	"fmt"
	"maps"
	gomath "math"
	"testing"

	av "github.com/mmp/airsep/aviation"
	"github.com/mmp/airsep/log"
	"github.com/mmp/airsep/math"
	"github.com/mmp/airsep/rand"
)

func makeTrack(t testing.TB, callsign string, lat, lon, alt, hdg, gs, vs float64) *Track {
	t.Helper()

	cs, err := av.MakeCallsign(callsign)
	if err != nil {
		t.Fatal(err)
	}
	pos, err := av.MakePosition(lat, lon, alt)
	if err != nil {
		t.Fatal(err)
	}
	v, err := av.MakeVector(hdg, gs, vs)
	if err != nil {
		t.Fatal(err)
	}
	return &Track{Callsign: cs, Position: pos, Vector: v}
}

// offsetTrack returns a track nm nautical miles from lat/lon along hdg.
func offsetTrack(t testing.TB, callsign string, lat, lon, bearing, nm, alt, hdg, gs, vs float64) *Track {
	p := math.Offset2LL(math.Point2LL{lon, lat}, bearing, nm)
	return makeTrack(t, callsign, p.Latitude(), p.Longitude(), alt, hdg, gs, vs)
}

func makeDetector(t testing.TB, modify func(*Config)) *Detector {
	t.Helper()

	cfg := DefaultConfig()
	if modify != nil {
		modify(&cfg)
	}
	d, err := NewDetector(cfg, log.Discard())
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func noCache(c *Config) { c.CacheSize = 0 }

func TestParallelSafeFlight(t *testing.T) {
	a := makeTrack(t, "JAL123", 35, 139, 35000, 90, 400, 0)
	b := offsetTrack(t, "ANA456", 35, 139, 0, 6, 36500, 90, 400, 0)

	d := makeDetector(t, nil)
	ra, err := d.AssessPair(a, b)
	if err != nil {
		t.Fatal(err)
	}

	if ra.RiskLevel != 0 {
		t.Errorf("risk %v, expected 0", ra.RiskLevel)
	}
	if ra.AlertLevel != Safe {
		t.Errorf("alert %v, expected SAFE", ra.AlertLevel)
	}
	if ra.ConflictPredicted {
		t.Errorf("conflict predicted for parallel traffic")
	}
	if !gomath.IsInf(ra.TimeToClosest, 1) || ra.HasFiniteCPA() {
		t.Errorf("time to closest %v, expected +Inf", ra.TimeToClosest)
	}
	if gomath.Abs(ra.ClosestHorizontalNM-6) > 0.05 || ra.ClosestHorizontalNM != ra.CurrentHorizontalNM {
		t.Errorf("closest horizontal %v, current %v; expected the current 6nm separation",
			ra.ClosestHorizontalNM, ra.CurrentHorizontalNM)
	}
	if ra.ClosestVerticalFt != 1500 || ra.CurrentVerticalFt != 1500 {
		t.Errorf("closest vertical %v, current %v; expected 1500", ra.ClosestVerticalFt, ra.CurrentVerticalFt)
	}

	// Parallel traffic has no risk, so a full pass reports nothing.
	all, err := d.AssessAll([]*Track{a, b})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 0 {
		t.Errorf("AssessAll returned %v for parallel traffic", all)
	}
}

func TestHeadOnCollisionCourse(t *testing.T) {
	a := makeTrack(t, "A", 35, 139, 35000, 90, 400, 0)
	b := makeTrack(t, "B", 35, 139.5, 35000, 270, 400, 0)

	d := makeDetector(t, nil)
	ra, err := d.AssessPair(a, b)
	if err != nil {
		t.Fatal(err)
	}

	if ra.RiskLevel <= 70 {
		t.Errorf("risk %v, expected > 70", ra.RiskLevel)
	}
	if ra.AlertLevel != RedConflict {
		t.Errorf("alert %v, expected RED_CONFLICT", ra.AlertLevel)
	}
	if !ra.ConflictPredicted {
		t.Errorf("expected a predicted conflict")
	}
	if !(ra.TimeToClosest > 0 && ra.TimeToClosest <= 300) {
		t.Errorf("time to closest %v, expected in (0,300]", ra.TimeToClosest)
	}
	// About 24.6nm apart, closing at 800 knots.
	if ra.TimeToClosest < 100 || ra.TimeToClosest > 120 {
		t.Errorf("time to closest %v, expected about 111s", ra.TimeToClosest)
	}
	if ra.ClosestHorizontalNM > 0.01 || ra.ClosestVerticalFt != 0 {
		t.Errorf("closest approach %vnm / %vft, expected a collision", ra.ClosestHorizontalNM, ra.ClosestVerticalFt)
	}
	if ra.PairID != "A-B" || ra.Callsigns != [2]av.Callsign{"A", "B"} {
		t.Errorf("pair %q %v", ra.PairID, ra.Callsigns)
	}

	all, err := d.AssessAll([]*Track{b, a})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all["A-B"] != ra {
		t.Errorf("AssessAll = %v, expected just %v", all, ra)
	}
}

func TestSymmetry(t *testing.T) {
	tracks := []*Track{
		makeTrack(t, "UAL1", 37.6, -122.4, 12000, 45, 280, 1500),
		makeTrack(t, "SWA22", 37.65, -122.3, 13000, 200, 310, -800),
		makeTrack(t, "N172SP", 37.62, -122.38, 12500, 315, 110, 0),
		makeTrack(t, "DAL303", 37.6, -122.4, 12000, 45, 280, 1500), // same kinematics as UAL1
	}

	d := makeDetector(t, noCache)
	for i, a := range tracks {
		for _, b := range tracks[i+1:] {
			ab, err := d.AssessPair(a, b)
			if err != nil {
				t.Fatal(err)
			}
			ba, err := d.AssessPair(b, a)
			if err != nil {
				t.Fatal(err)
			}
			if ab != ba {
				t.Errorf("%s/%s: AssessPair isn't symmetric:\n%+v\n%+v", a.Callsign, b.Callsign, ab, ba)
			}
		}
	}
}

func TestPairID(t *testing.T) {
	tests := []struct {
		a, b     av.Callsign
		expected PairID
	}{
		{"AAL1", "UAL2", "AAL1-UAL2"},
		{"UAL2", "AAL1", "AAL1-UAL2"},
		{"N123", "N12", "N12-N123"},
		{"JAL5", "JAL5", "JAL5-JAL5"},
	}
	for _, tt := range tests {
		if id := MakePairID(tt.a, tt.b); id != tt.expected {
			t.Errorf("MakePairID(%q, %q) = %q, expected %q", tt.a, tt.b, id, tt.expected)
		}
		if MakePairID(tt.a, tt.b) != MakePairID(tt.b, tt.a) {
			t.Errorf("MakePairID(%q, %q) depends on argument order", tt.a, tt.b)
		}
	}
}

func TestRiskMonotonicity(t *testing.T) {
	// Head-on on parallel tracks offset laterally by d; closest approach
	// comes about 33 seconds from now regardless of d, and the aircraft
	// are 1500' apart so only horizontal separation matters.
	d := makeDetector(t, noCache)
	a := makeTrack(t, "A", 35, 139, 35000, 90, 400, 0)

	prev := RiskLevel(-1)
	var risks []RiskLevel
	for offset := 10.0; offset >= 1; offset -= 0.25 {
		b := offsetTrack(t, "B", 35, 139.15, 0, offset, 36500, 270, 400, 0)
		ra, err := d.AssessPair(a, b)
		if err != nil {
			t.Fatal(err)
		}
		if ra.TimeToClosest < 25 || ra.TimeToClosest > 40 {
			t.Fatalf("offset %.2f: time to closest %v, expected about 33s", offset, ra.TimeToClosest)
		}
		if ra.RiskLevel < prev {
			t.Errorf("offset %.2f: risk decreased from %v to %v", offset, prev, ra.RiskLevel)
		}
		prev = ra.RiskLevel
		risks = append(risks, ra.RiskLevel)
	}

	if risks[0] != 0 {
		t.Errorf("10nm offset risk %v, expected 0", risks[0])
	}
	if last := risks[len(risks)-1]; last < 60 || last > 70 {
		t.Errorf("1nm offset risk %v, expected about 67", last)
	}

	// At the same altitude the vertical risk dominates; it must still
	// never decrease.
	prev = -1
	for offset := 10.0; offset >= 1; offset-- {
		b := offsetTrack(t, "B", 35, 139.15, 0, offset, 35000, 270, 400, 0)
		ra, err := d.AssessPair(a, b)
		if err != nil {
			t.Fatal(err)
		}
		if ra.RiskLevel < prev {
			t.Errorf("co-altitude offset %.0f: risk decreased from %v to %v", offset, prev, ra.RiskLevel)
		}
		prev = ra.RiskLevel
	}
}

func TestTimeWeight(t *testing.T) {
	tests := []struct {
		t, maxT, expected float64
	}{
		{0, 300, 1},
		{30, 300, 1},
		{60, 300, 1},
		{180, 300, 0.6},
		{300, 300, 0.2},
		{-1, 300, 0},
		{301, 300, 0},
		{45, 45, 1},
	}
	for _, tt := range tests {
		if w := timeWeight(tt.t, tt.maxT); gomath.Abs(w-tt.expected) > 1e-12 {
			t.Errorf("timeWeight(%v, %v) = %v, expected %v", tt.t, tt.maxT, w, tt.expected)
		}
	}
}

func TestSeparationRisk(t *testing.T) {
	horizontal := []struct{ d, expected float64 }{
		{10, 0},
		{5, 0},
		{4, 0.2},
		{3, 0.4},
		{1.5, 0.55},
		{0, 1},
	}
	for _, tt := range horizontal {
		if r := horizontalRisk(tt.d, 5); gomath.Abs(r-tt.expected) > 1e-12 {
			t.Errorf("horizontalRisk(%v) = %v, expected %v", tt.d, r, tt.expected)
		}
	}

	vertical := []struct{ d, expected float64 }{
		{2000, 0},
		{1000, 0},
		{750, 0.25},
		{500, 0.5},
		{250, 0.625},
		{0, 1},
	}
	for _, tt := range vertical {
		if r := verticalRisk(tt.d, 1000); gomath.Abs(r-tt.expected) > 1e-12 {
			t.Errorf("verticalRisk(%v) = %v, expected %v", tt.d, r, tt.expected)
		}
	}

	// Both are continuous at the inner threshold and non-increasing in
	// distance.
	for d := 0.0; d < 6; d += 0.01 {
		if horizontalRisk(d+0.01, 5) > horizontalRisk(d, 5) {
			t.Errorf("horizontalRisk increases at %v", d)
		}
	}
	for d := 0.0; d < 1200; d += 1 {
		if verticalRisk(d+1, 1000) > verticalRisk(d, 1000) {
			t.Errorf("verticalRisk increases at %v", d)
		}
	}
}

func TestUrgency(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		name     string
		h, v     float64
		expected float64
	}{
		{"separated", 8, 2000, 1},
		{"lateral only", 3, 2000, 1.5},
		{"vertical only", 8, 500, 1.5},
		{"both", 1, 0, 1.5},
		{"at minimums", 5, 1000, 1},
	}
	for _, tt := range tests {
		ca := closestApproach{CurrentHorizontalNM: tt.h, CurrentVerticalFt: tt.v}
		if u := urgency(ca, cfg); u != tt.expected {
			t.Errorf("%s: urgency = %v, expected %v", tt.name, u, tt.expected)
		}
	}
}

func TestPredictsViolation(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		name     string
		ca       closestApproach
		expected bool
	}{
		{"ahead", closestApproach{T: 100, TClamped: 100, HorizontalNM: 2, VerticalFt: 2000}, true},
		{"beyond horizon", closestApproach{T: 400, TClamped: 300, HorizontalNM: 2, VerticalFt: 0}, false},
		{"diverging", closestApproach{T: -20, TClamped: 0, HorizontalNM: 2, VerticalFt: 0}, false},
		{"clear", closestApproach{T: 100, TClamped: 100, HorizontalNM: 6, VerticalFt: 1200}, false},
		{"no relative motion inside minimums", closestApproach{T: gomath.Inf(1), HorizontalNM: 2, VerticalFt: 0}, true},
		{"no relative motion clear", closestApproach{T: gomath.Inf(1), HorizontalNM: 6, VerticalFt: 1500}, false},
	}
	for _, tt := range tests {
		if p := predictsViolation(tt.ca, cfg); p != tt.expected {
			t.Errorf("%s: predictsViolation = %v, expected %v", tt.name, p, tt.expected)
		}
	}
}

func TestDivergingAndDistantPairs(t *testing.T) {
	d := makeDetector(t, noCache)
	a := makeTrack(t, "AAL1", 35, 139, 35000, 270, 400, 0)

	tests := []struct {
		name string
		b    *Track
	}{
		{"diverging 40nm", offsetTrack(t, "BAW2", 35, 139, 90, 40, 35000, 90, 400, 0)},
		{"diverging inside minimums", offsetTrack(t, "BAW2", 35, 139, 90, 1, 35000, 90, 400, 0)},
		// 100kt overtake from 30nm: closest approach is about 18 minutes out.
		{"converging past horizon", offsetTrack(t, "BAW2", 35, 139, 270, 30, 35000, 270, 300, 0)},
	}
	for _, tt := range tests {
		ra, err := d.AssessPair(a, tt.b)
		if err != nil {
			t.Fatal(err)
		}
		if ra.RiskLevel != 0 || ra.AlertLevel != Safe || ra.ConflictPredicted {
			t.Errorf("%s: risk %v alert %v predicted %v, expected a safe pair", tt.name, ra.RiskLevel,
				ra.AlertLevel, ra.ConflictPredicted)
		}
		if !ra.HasFiniteCPA() {
			t.Errorf("%s: expected a finite closest approach", tt.name)
		}

		all, err := d.AssessAll([]*Track{a, tt.b})
		if err != nil {
			t.Fatal(err)
		}
		if len(all) != 0 {
			t.Errorf("%s: AssessAll = %v, expected no conflicts", tt.name, all)
		}
	}

	// The same overtake from 8nm closes inside the horizon.
	b := offsetTrack(t, "BAW2", 35, 139, 270, 8, 35000, 270, 300, 0)
	ra, err := d.AssessPair(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if ra.RiskLevel == 0 || !ra.ConflictPredicted || ra.TimeToClosest < 250 || ra.TimeToClosest > 300 {
		t.Errorf("8nm overtake = %+v, expected a predicted conflict about 288s out", ra)
	}

	cfg := DefaultConfig()
	for _, ca := range []closestApproach{
		{T: -20, TClamped: 0, HorizontalNM: 0.5, VerticalFt: 0, CurrentHorizontalNM: 0.5},
		{T: 400, TClamped: 300, HorizontalNM: 0, VerticalFt: 0, CurrentHorizontalNM: 10, CurrentVerticalFt: 0},
	} {
		if r := scoreRisk(ca, cfg); r != 0 {
			t.Errorf("scoreRisk(%+v) = %v, expected 0", ca, r)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		risk     RiskLevel
		expected AlertLevel
	}{
		{0, Safe},
		{29.999, Safe},
		{30, WhiteConflict},
		{69.999, WhiteConflict},
		{70, RedConflict},
		{100, RedConflict},
	}
	d := makeDetector(t, nil)
	for _, tt := range tests {
		if a := Classify(tt.risk); a != tt.expected {
			t.Errorf("Classify(%v) = %v, expected %v", tt.risk, a, tt.expected)
		}
		if a := d.Classify(tt.risk); a != tt.expected {
			t.Errorf("Detector.Classify(%v) = %v, expected %v", tt.risk, a, tt.expected)
		}
	}

	if !(Safe < WhiteConflict && WhiteConflict < RedConflict) {
		t.Errorf("alert levels aren't ordered by danger")
	}
}

func TestAlertLevelText(t *testing.T) {
	for _, a := range []AlertLevel{Safe, WhiteConflict, RedConflict} {
		b, err := a.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var back AlertLevel
		if err := back.UnmarshalText(b); err != nil || back != a {
			t.Errorf("%v: text round trip gave %v, %v", a, back, err)
		}
	}
	if _, err := ParseAlertLevel("orange"); err == nil {
		t.Errorf("expected error parsing invalid alert level")
	}
	if a, _ := ParseAlertLevel(" red "); a != RedConflict {
		t.Errorf("ParseAlertLevel(\" red \") = %v", a)
	}
}

func TestMakeRiskLevel(t *testing.T) {
	for _, v := range []float64{0, 0.5, 70, 100} {
		if r, err := MakeRiskLevel(v); err != nil || float64(r) != v {
			t.Errorf("MakeRiskLevel(%v) = %v, %v", v, r, err)
		}
	}
	for _, v := range []float64{-0.001, 100.001, gomath.NaN(), gomath.Inf(1)} {
		if _, err := MakeRiskLevel(v); !errors.Is(err, ErrRiskLevelOutOfRange) {
			t.Errorf("MakeRiskLevel(%v) error = %v", v, err)
		}
	}
}

func TestNilAircraft(t *testing.T) {
	d := makeDetector(t, nil)
	a := makeTrack(t, "A", 35, 139, 35000, 90, 400, 0)

	if _, err := d.AssessPair(a, nil); !errors.Is(err, ErrNilAircraft) {
		t.Errorf("AssessPair(a, nil) error = %v", err)
	}
	if _, err := d.AssessPair(nil, a); !errors.Is(err, ErrNilAircraft) {
		t.Errorf("AssessPair(nil, a) error = %v", err)
	}
	if m, err := d.AssessAll([]*Track{a, nil}); !errors.Is(err, ErrNilAircraft) || m != nil {
		t.Errorf("AssessAll with nil = %v, %v", m, err)
	}
}

func TestBatchIsolation(t *testing.T) {
	a := makeTrack(t, "AAL1", 35, 139, 35000, 90, 400, 0)
	b := makeTrack(t, "BAW2", 35, 139.5, 35000, 270, 400, 0)
	c := makeTrack(t, "CCA3", 35.05, 139.25, 35000, 180, 400, 0)

	d := makeDetector(t, noCache)
	expected, err := d.AssessPair(a, b)
	if err != nil {
		t.Fatal(err)
	}

	d.assess = func(x, y *Track) (RiskAssessment, error) {
		if y.Callsign == "CCA3" {
			if x.Callsign == "AAL1" {
				panic("injected fault")
			}
			return RiskAssessment{}, errors.New("injected error")
		}
		return d.evaluate(x, y)
	}

	all, err := d.AssessAll([]*Track{c, b, a})
	if err != nil {
		t.Fatalf("AssessAll failed: %v", err)
	}
	if len(all) != 1 || all["AAL1-BAW2"] != expected {
		t.Errorf("AssessAll = %v, expected just AAL1-BAW2", all)
	}
	if f := d.Stats().Failures; f != 2 {
		t.Errorf("%d failures recorded, expected 2", f)
	}

	if _, err := d.AssessPair(c, a); !errors.Is(err, ErrPairEvaluation) {
		t.Errorf("AssessPair with a panicking evaluation error = %v", err)
	}
}

func TestAssessAllSizes(t *testing.T) {
	d := makeDetector(t, nil)

	for _, tracks := range [][]*Track{nil, {}, {makeTrack(t, "A", 35, 139, 35000, 90, 400, 0)}} {
		all, err := d.AssessAll(tracks)
		if err != nil {
			t.Fatal(err)
		}
		if all == nil || len(all) != 0 {
			t.Errorf("AssessAll(%d aircraft) = %v, expected an empty map", len(tracks), all)
		}
	}
}

func TestPreFilter(t *testing.T) {
	// About 59nm apart, head-on at the same altitude.
	a := makeTrack(t, "A", 35, 139, 35000, 90, 400, 0)
	b := makeTrack(t, "B", 35, 140.2, 35000, 270, 400, 0)

	d := makeDetector(t, nil)
	all, err := d.AssessAll([]*Track{a, b})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 0 {
		t.Errorf("pair beyond the pre-filter distance was assessed: %v", all)
	}
	if s := d.Stats(); s.Candidates != 0 || s.Passes != 1 || s.LastPassPairs != 0 {
		t.Errorf("stats %+v, expected one pass with no candidates", s)
	}

	// Evaluated directly, the pair is a conflict.
	ra, err := d.AssessPair(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if !ra.ConflictPredicted || ra.RiskLevel == 0 {
		t.Errorf("AssessPair = %+v, expected a predicted conflict", ra)
	}
}

func TestCache(t *testing.T) {
	a := makeTrack(t, "A", 35, 139, 35000, 90, 400, 0)
	b := makeTrack(t, "B", 35, 139.5, 35000, 270, 400, 0)

	d := makeDetector(t, nil)
	first, _ := d.AssessPair(a, b)
	second, _ := d.AssessPair(b, a)
	if first != second {
		t.Errorf("cached result %+v differs from %+v", second, first)
	}
	if h := d.Stats().CacheHits; h != 1 {
		t.Errorf("%d cache hits, expected 1", h)
	}

	// Any change to the kinematics is a different key.
	moved := *b
	moved.Vector.GroundSpeed = 410
	if _, err := d.AssessPair(a, &moved); err != nil {
		t.Fatal(err)
	}
	if h := d.Stats().CacheHits; h != 1 {
		t.Errorf("%d cache hits after moving, expected 1", h)
	}

	nc := makeDetector(t, noCache)
	nc.AssessPair(a, b)
	nc.AssessPair(a, b)
	if h := nc.Stats().CacheHits; h != 0 {
		t.Errorf("%d cache hits with caching disabled", h)
	}
}

func randomTracks(t testing.TB, n int, seed int64) []*Track {
	r := rand.MakeSeeded(seed)
	var tracks []*Track
	for i := range n {
		tracks = append(tracks, makeTrack(t, fmt.Sprintf("T%03d", i),
			r.Range(34.8, 35.2), r.Range(138.7, 139.3), r.Range(30000, 34000),
			r.Range(0, 360), r.Range(250, 480), r.Range(-2000, 2000)))
	}
	return tracks
}

func TestAssessAllDeterministic(t *testing.T) {
	n := 80
	if log.RaceEnabled {
		n = 30
	}
	tracks := randomTracks(t, n, 17)

	var results []map[PairID]RiskAssessment
	for _, workers := range []int{1, 3, 16} {
		d := makeDetector(t, func(c *Config) { c.Workers = workers; c.CacheSize = 0 })
		all, err := d.AssessAll(tracks)
		if err != nil {
			t.Fatal(err)
		}
		results = append(results, all)
	}
	if len(results[0]) == 0 {
		t.Fatalf("expected some conflicts among %d aircraft", len(tracks))
	}
	for i := 1; i < len(results); i++ {
		if !maps.Equal(results[0], results[i]) {
			t.Errorf("results differ with different worker counts")
		}
	}

	for id, ra := range results[0] {
		if ra.RiskLevel <= 0 || ra.RiskLevel > 100 {
			t.Errorf("%s: risk %v out of range", id, ra.RiskLevel)
		}
		if ra.AlertLevel != Classify(ra.RiskLevel) {
			t.Errorf("%s: alert %v doesn't match risk %v", id, ra.AlertLevel, ra.RiskLevel)
		}
		if id != MakePairID(ra.Callsigns[0], ra.Callsigns[1]) {
			t.Errorf("%s: keyed by the wrong pair id", id)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"horizontal", func(c *Config) { c.MinHorizontalSeparationNM = 0 }},
		{"vertical", func(c *Config) { c.MinVerticalSeparationFt = -1000 }},
		{"prediction", func(c *Config) { c.MaxPredictionTime = gomath.NaN() }},
		{"pre-filter", func(c *Config) { c.PreFilterDistanceNM = 3 }},
		{"workers", func(c *Config) { c.Workers = -2 }},
		{"cache size", func(c *Config) { c.CacheSize = -1 }},
		{"cache ttl", func(c *Config) { c.CacheTTL = 0 }},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.modify(&cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: Validate() = %v", tt.name, err)
		}
		if _, err := NewDetector(cfg, nil); err == nil {
			t.Errorf("%s: NewDetector accepted an invalid config", tt.name)
		}
	}

	// Caching off doesn't need a TTL.
	cfg := DefaultConfig()
	cfg.CacheSize, cfg.CacheTTL = 0, 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("cache disabled: %v", err)
	}
}

func BenchmarkAssessAll200(b *testing.B) {
	tracks := randomTracks(b, 200, 1)
	d := makeDetector(b, noCache)

	b.ResetTimer()
	for b.Loop() {
		if _, err := d.AssessAll(tracks); err != nil {
			b.Fatal(err)
		}
	}
}
