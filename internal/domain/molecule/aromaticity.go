package molecule

import (
	"github.com/samber/lo"

	mtypes "github.com/turtacn/molsmarts/pkg/types/molecule"
)

// MaxAromaticRingSize bounds the rings examined by HuckelPerceiver.
const MaxAromaticRingSize = 8

// AromaticSet holds the atoms and bonds of perceived aromatic rings, keyed by
// atom and bond index.  A nil set behaves as an empty one.
type AromaticSet struct {
	Atoms map[int]bool
	Bonds map[int]bool
	Rings []Ring
}

// NewAromaticSet returns an empty set.
func NewAromaticSet() *AromaticSet {
	return &AromaticSet{Atoms: make(map[int]bool), Bonds: make(map[int]bool)}
}

// HasAtom reports whether the atom is aromatic.
func (a *AromaticSet) HasAtom(atom int) bool {
	return a != nil && a.Atoms[atom]
}

// HasBond reports whether the bond lies on a perceived aromatic ring.
func (a *AromaticSet) HasBond(bond int) bool {
	return a != nil && a.Bonds[bond]
}

// IsEmpty reports whether no aromatic ring was found.
func (a *AromaticSet) IsEmpty() bool {
	return a == nil || len(a.Rings) == 0
}

// AddRing marks every atom and bond of r as aromatic.
func (a *AromaticSet) AddRing(r Ring) {
	a.Rings = append(a.Rings, r)
	for _, atom := range r.Atoms {
		a.Atoms[atom] = true
	}
	for _, bond := range r.Bonds {
		a.Bonds[bond] = true
	}
}

// AromaticityPerceiver finds the aromatic rings of a structure.
type AromaticityPerceiver interface {
	Perceive(s *Structure) *AromaticSet
}

// HuckelPerceiver applies the 4n+2 rule to every small ring.  A ring whose
// bonds are all declared aromatic is accepted as is.  Atoms of a fused ring
// that carry a double bond into an already aromatic neighbour ring count one
// electron, so rings are re-examined until nothing changes.
type HuckelPerceiver struct {
	MaxRingSize int
}

// NewAromaticityPerceiver returns the default perceiver.
func NewAromaticityPerceiver() *HuckelPerceiver {
	return &HuckelPerceiver{MaxRingSize: MaxAromaticRingSize}
}

// Perceive implements AromaticityPerceiver.
func (p *HuckelPerceiver) Perceive(s *Structure) *AromaticSet {
	set := NewAromaticSet()
	if s.IsEmpty() {
		return set
	}
	maxSize := p.MaxRingSize
	if maxSize <= 0 {
		maxSize = MaxAromaticRingSize
	}
	rings := FindRings(s, maxSize)
	done := make([]bool, len(rings))
	for changed := true; changed; {
		changed = false
		for i, r := range rings {
			if done[i] || !isAromaticRing(s, r, set) {
				continue
			}
			done[i] = true
			changed = true
			set.AddRing(r)
		}
	}
	return set
}

func isAromaticRing(s *Structure, r Ring, known *AromaticSet) bool {
	if r.Size() < 3 {
		return false
	}
	if lo.EveryBy(r.Bonds, func(b int) bool { return s.Bonds[b].Order == mtypes.BondOrderAromatic }) {
		return true
	}
	electrons := 0
	for _, atom := range r.Atoms {
		n, ok := piElectrons(s, r, atom, known)
		if !ok {
			return false
		}
		electrons += n
	}
	return electrons%4 == 2
}

// piElectrons returns the number of electrons atom donates to ring r.
func piElectrons(s *Structure, r Ring, atom int, known *AromaticSet) (int, bool) {
	a := s.Atoms[atom]
	if a.Kind != mtypes.AtomStandard {
		return 0, false
	}
	for _, b := range s.BondsOf(atom) {
		if !b.IsCovalent() {
			continue
		}
		inRing := r.HasBond(b.Index)
		switch b.Order {
		case mtypes.BondOrderTriple, mtypes.BondOrderQuad:
			return 0, false
		case mtypes.BondOrderDouble, mtypes.BondOrderAromatic:
			if inRing {
				return 1, true
			}
		}
	}
	for _, b := range s.BondsOf(atom) {
		if !b.IsCovalent() || r.HasBond(b.Index) || b.Order != mtypes.BondOrderDouble {
			continue
		}
		other := b.Other(atom)
		if known.HasAtom(other) {
			return 1, true
		}
		switch s.Atoms[other].AtomicNumber() {
		case 7, 8, 16:
			return 0, true
		}
		return 0, false
	}
	switch a.AtomicNumber() {
	case 6:
		switch a.Charge {
		case -1:
			return 2, true
		case 1:
			return 0, true
		}
	case 7, 15, 33:
		if a.Charge == 0 && BondOrderSum(s, atom, false) <= 3 {
			return 2, true
		}
	case 8, 16, 34, 52:
		if a.Charge == 0 {
			return 2, true
		}
	case 5:
		if a.Charge == 0 {
			return 0, true
		}
	}
	return 0, false
}

//Personal.AI order the ending
