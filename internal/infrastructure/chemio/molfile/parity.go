package molfile

import (
	"github.com/turtacn/molsmarts/internal/domain/molecule"
	mtypes "github.com/turtacn/molsmarts/pkg/types/molecule"
)

// minStereoRingSize is the smallest ring in which a double bond may carry an
// E/Z configuration.
const minStereoRingSize = 8

// assignBondParities sets the parity of the candidate double bonds from the
// 2D layout.  Bonds in small rings and ends carrying two identical terminal
// substituents are left without parity.
func assignBondParities(s *molecule.Structure, candidates map[int]bool) {
	if len(candidates) == 0 {
		return
	}
	rings := molecule.FindRings(s, minStereoRingSize-1)
	for _, b := range s.Bonds {
		if !candidates[b.Index] || inRing(rings, b.Index) {
			continue
		}
		if symmetricEnd(s, b, b.Atom1) || symmetricEnd(s, b, b.Atom2) {
			continue
		}
		if parity := molecule.BondParityFromCoordinates(s, b); parity.IsDefined() {
			b.Parity = parity
		}
	}
}

func inRing(rings []molecule.Ring, bond int) bool {
	for _, r := range rings {
		if r.HasBond(bond) {
			return true
		}
	}
	return false
}

// symmetricEnd reports whether end carries two terminal substituents of the
// same element besides the double bond, as in C=C(F)F.
func symmetricEnd(s *molecule.Structure, double *molecule.Bond, end int) bool {
	var subs []*molecule.Atom
	for _, nb := range s.BondsOf(end) {
		if nb == double {
			continue
		}
		subs = append(subs, s.Atoms[nb.Other(end)])
	}
	if len(subs) != 2 {
		return false
	}
	a, b := subs[0], subs[1]
	return a.Kind == mtypes.AtomStandard && b.Kind == mtypes.AtomStandard &&
		a.AtomicNumber() == b.AtomicNumber() && a.MassNumber == b.MassNumber &&
		len(s.BondsOf(a.Index)) == 1 && len(s.BondsOf(b.Index)) == 1
}

//Personal.AI order the ending
