// sim/spawn.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	av "github.com/mmp/airsep/aviation"
	"github.com/mmp/airsep/math"
	"github.com/mmp/airsep/rand"
)

type trafficMix struct {
	category av.Category
	weight   int
}

var defaultTrafficMix = []trafficMix{
	{av.CategoryCommercial, 14},
	{av.CategoryFighter, 3},
	{av.CategoryHelicopter, 3},
}

var (
	airlines        = []string{"JAL", "ANA", "UAL", "DAL", "BAW", "AFR", "CPA", "SIA"}
	airlineTypes    = []string{"B738", "A320", "B77W", "A359", "B789", "A21N"}
	airports        = []string{"RJTT", "RJAA", "RJBB", "RJCC", "KSFO", "KLAX", "EGLL", "VHHH"}
	fighterPrefixes = []string{"VIPER", "EAGLE", "RAPTOR", "HORNET"}
	squadrons       = []string{"VFA-27", "VFA-102", "301SQ", "305SQ", "35FW"}
	missions        = []string{"CAP", "training", "intercept", "ferry"}
	fighterTypes    = []string{"F15", "F16", "F35", "FA18"}
	heliPrefixes    = []string{"JA", "N"}
	heliOperators   = []string{"NHK", "Tokyo Fire Department", "Japan Coast Guard", "Asahi Helicopter"}
	heliPurposes    = []string{"news", "medevac", "patrol", "survey"}
)

const (
	maxSpawnAttempts  = 10
	callsignNumberMax = 9000
)

// SpawnRandomTraffic adds n aircraft at random positions within radiusNM
// of center and returns their callsigns. The traffic is mostly airliners
// at cruise altitudes with some military jets and low-level helicopters.
func SpawnRandomTraffic(store *Store, center math.Point2LL, radiusNM float64, n int,
	r *rand.Rand) ([]av.Callsign, error) {
	if n < 0 || !(radiusNM >= 0) {
		return nil, fmt.Errorf("invalid traffic request: %d aircraft within %vnm", n, radiusNM)
	}

	perm := r.Uint32()
	var callsigns []av.Callsign
	idx := 0
	for len(callsigns) < n {
		var ac *Aircraft
		var err error
		for range maxSpawnAttempts {
			if idx >= callsignNumberMax {
				return callsigns, fmt.Errorf("ran out of callsigns after %d aircraft", len(callsigns))
			}
			num := 100 + rand.PermutationElement(idx, callsignNumberMax, perm)
			idx++

			if ac, err = randomAircraft(center, radiusNM, num, r); err != nil {
				return callsigns, err
			}
			if err = store.Add(ac); err == nil || !errors.Is(err, ErrDuplicateCallsign) {
				break
			}
		}
		if err != nil {
			return callsigns, err
		}
		callsigns = append(callsigns, ac.Callsign)
	}

	store.lg.Info("spawned traffic", slog.Int("aircraft", n), slog.Float64("radius_nm", radiusNM),
		slog.String("center", center.DDString()))
	return callsigns, nil
}

func randomAircraft(center math.Point2LL, radiusNM float64, num int, r *rand.Rand) (*Aircraft, error) {
	mix := defaultTrafficMix[rand.SampleWeighted(r, defaultTrafficMix, func(m trafficMix) int { return m.weight })]
	perf := av.DefaultCharacteristics(mix.category)

	// Uniform over the disk rather than clustered at the center.
	p := math.Offset2LL(center, r.Range(0, 360), radiusNM*math.Sqrt(r.Float64()))

	var alt, gs float64
	switch mix.category {
	case av.CategoryCommercial:
		alt = 1000 * math.Floor(r.Range(18, 40))
		gs = r.Range(380, 480)
	case av.CategoryFighter:
		alt = 1000 * math.Floor(r.Range(15, 45))
		gs = r.Range(350, 600)
	case av.CategoryHelicopter:
		alt = 100 * math.Floor(r.Range(5, 50))
		gs = r.Range(0, 140)
		if gs < 20 {
			gs = 0
		}
	}

	pos, err := av.MakePosition(p.Latitude(), p.Longitude(), alt)
	if err != nil {
		return nil, err
	}
	v, err := av.MakeVector(r.Range(0, 360), gs, 0)
	if err != nil {
		return nil, err
	}
	st := InitialState{Position: pos, Vector: v, Perf: &perf}

	switch mix.category {
	case av.CategoryFighter:
		st.Callsign = av.Callsign(fmt.Sprintf("%s%d", rand.Sample(r, fighterPrefixes...), num))
		return NewFighter(st, MilitaryInfo{
			Squadron:     rand.Sample(r, squadrons...),
			Mission:      rand.Sample(r, missions...),
			AircraftType: rand.Sample(r, fighterTypes...),
		})
	case av.CategoryHelicopter:
		st.Callsign = av.Callsign(fmt.Sprintf("%s%dH", rand.Sample(r, heliPrefixes...), num))
		return NewHelicopter(st, HelicopterInfo{
			Operator: rand.Sample(r, heliOperators...),
			Purpose:  rand.Sample(r, heliPurposes...),
		})
	default:
		st.Callsign = av.Callsign(fmt.Sprintf("%s%d", rand.Sample(r, airlines...), num))
		dep := rand.Sample(r, airports...)
		arr := rand.Sample(r, airports...)
		for arr == dep {
			arr = rand.Sample(r, airports...)
		}
		return NewCommercial(st, CommercialInfo{
			Operator:         st.Callsign.String()[:3],
			AircraftType:     rand.Sample(r, airlineTypes...),
			DepartureAirport: dep,
			ArrivalAirport:   arr,
			EstimatedArrival: time.Now().Add(time.Duration(r.Range(20, 600)) * time.Minute),
		})
	}
}
