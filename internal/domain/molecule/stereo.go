package molecule

import (
	"math"

	mtypes "github.com/turtacn/molsmarts/pkg/types/molecule"
)

// HydrogenRank is the rank given to any hydrogen neighbour of a stereocentre,
// implicit or bonded.  It sorts after every atom index.
const HydrogenRank = math.MaxInt32

// coordinateEpsilon treats smaller cross products as collinear.
const coordinateEpsilon = 1e-4

// KeyNeighborBonds returns the reference single bonds of a double bond: at
// each end, the single bond to the heavy neighbour of highest atomic number,
// lowest atom index on ties.  ok is false when either end has no candidate.
func KeyNeighborBonds(s *Structure, b *Bond) (atEnd1, atEnd2 *Bond, ok bool) {
	atEnd1 = keyNeighborBond(s, b, b.Atom1)
	atEnd2 = keyNeighborBond(s, b, b.Atom2)
	if atEnd1 == nil || atEnd2 == nil {
		return nil, nil, false
	}
	return atEnd1, atEnd2, true
}

func keyNeighborBond(s *Structure, double *Bond, end int) *Bond {
	var best *Bond
	bestZ, bestIdx := -1, -1
	for _, nb := range s.BondsOf(end) {
		if nb == double || !nb.IsCovalent() || nb.Order != mtypes.BondOrderSingle {
			continue
		}
		other := nb.Other(end)
		atom := s.Atoms[other]
		if atom.IsHydrogen() {
			continue
		}
		z := atom.AtomicNumber()
		if z > bestZ || (z == bestZ && other < bestIdx) {
			best, bestZ, bestIdx = nb, z, other
		}
	}
	return best
}

// BondParityFromCoordinates derives the parity of a double bond from the 2D
// positions of its key neighbours: ParityEven when they lie on opposite sides
// of the bond axis, ParityOdd when on the same side.  ParityUnknown is
// returned for missing neighbours or collinear layouts.
func BondParityFromCoordinates(s *Structure, b *Bond) mtypes.StereoParity {
	k1, k2, ok := KeyNeighborBonds(s, b)
	if !ok {
		return mtypes.ParityUnknown
	}
	a1, a2 := s.Atoms[b.Atom1], s.Atoms[b.Atom2]
	n1 := s.Atoms[k1.Other(b.Atom1)]
	n2 := s.Atoms[k2.Other(b.Atom2)]

	ax, ay := a2.X-a1.X, a2.Y-a1.Y
	side1 := ax*(n1.Y-a1.Y) - ay*(n1.X-a1.X)
	side2 := ax*(n2.Y-a1.Y) - ay*(n2.X-a1.X)
	if math.Abs(side1) < coordinateEpsilon || math.Abs(side2) < coordinateEpsilon {
		return mtypes.ParityUnknown
	}
	if (side1 > 0) == (side2 > 0) {
		return mtypes.ParityOdd
	}
	return mtypes.ParityEven
}

// RotationDirection converts an MDL atom parity into the winding of a
// neighbour list written in order.  ranks holds one entry per neighbour:
// the atom index, or HydrogenRank for a hydrogen.  Looking from the first
// neighbour, RotationClockwise means the remaining three run clockwise.
//
// Exactly four distinct ranks are required; anything else yields
// RotationNone.
func RotationDirection(parity mtypes.StereoParity, ranks []int) mtypes.RotationDir {
	if !parity.IsDefined() || len(ranks) != 4 {
		return mtypes.RotationNone
	}
	inversions := 0
	for i := 0; i < len(ranks); i++ {
		for j := i + 1; j < len(ranks); j++ {
			switch {
			case ranks[i] == ranks[j]:
				return mtypes.RotationNone
			case ranks[i] > ranks[j]:
				inversions++
			}
		}
	}
	// In ascending rank order an odd parity winds clockwise.
	clockwise := parity == mtypes.ParityOdd
	if inversions%2 == 1 {
		clockwise = !clockwise
	}
	if clockwise {
		return mtypes.RotationClockwise
	}
	return mtypes.RotationAnticlockwise
}

//Personal.AI order the ending
