// conflict/pair.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package conflict

import (
	"cmp"

	av "github.com/mmp/airsep/aviation"
)

// PairID identifies an unordered pair of aircraft: the two callsigns,
// lexicographically smaller first, joined with "-".
type PairID string

func MakePairID(a, b av.Callsign) PairID {
	if b < a {
		a, b = b, a
	}
	return PairID(string(a) + "-" + string(b))
}

func (p PairID) String() string { return string(p) }

// orderPair returns a and b sorted by callsign so that evaluating a pair
// gives bit-identical results regardless of argument order.
func orderPair(a, b *Track) (*Track, *Track) {
	if compareTracks(b, a) < 0 {
		return b, a
	}
	return a, b
}

func compareTracks(a, b *Track) int {
	return cmp.Or(
		cmp.Compare(a.Callsign, b.Callsign),
		cmp.Compare(a.Position.Latitude, b.Position.Latitude),
		cmp.Compare(a.Position.Longitude, b.Position.Longitude),
		cmp.Compare(a.Position.Altitude, b.Position.Altitude),
		cmp.Compare(a.Vector.Heading, b.Vector.Heading),
		cmp.Compare(a.Vector.GroundSpeed, b.Vector.GroundSpeed),
		cmp.Compare(a.Vector.VerticalSpeed, b.Vector.VerticalSpeed))
}
