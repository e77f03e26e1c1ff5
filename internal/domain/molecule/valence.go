package molecule

import (
	mtypes "github.com/turtacn/molsmarts/pkg/types/molecule"
)

// ─────────────────────────────────────────────────────────────────────────────
// Valence model
//
// Charged atoms take the valences of their isoelectronic neutral element
// (atomic number minus charge), so N+ behaves like C and O- like F.
// Bonds of declared aromatic order count one each, plus one per atom that has
// any such bond.
// ─────────────────────────────────────────────────────────────────────────────

// allowedValences returns the valence list used for an atom of atomic number
// z carrying charge.
func allowedValences(z, charge int) []int {
	e, ok := ElementByNumber(z - charge)
	if !ok {
		return nil
	}
	return e.Valences
}

// smallestValenceAtLeast returns the smallest allowed valence >= v, or -1.
func smallestValenceAtLeast(valences []int, v int) int {
	for _, allowed := range valences {
		if allowed >= v {
			return allowed
		}
	}
	return -1
}

// MaxPossibleValence returns the largest allowed valence for an element with
// the given charge, or 0 when no valence data exists.
func MaxPossibleValence(z, charge int) int {
	valences := allowedValences(z, charge)
	if len(valences) == 0 {
		return 0
	}
	return valences[len(valences)-1]
}

// BondOrderSum is the valence consumed by the covalent bonds of atom.  When
// skipHydrogens is true, bonds to hydrogen atoms are left out.
func BondOrderSum(s *Structure, atom int, skipHydrogens bool) int {
	sum := 0
	aromatic := false
	for _, b := range s.BondsOf(atom) {
		if !b.IsCovalent() && b.Kind != mtypes.BondPattern {
			continue
		}
		if skipHydrogens && s.Atoms[b.Other(atom)].IsHydrogen() {
			continue
		}
		sum += b.Order.Valence()
		if b.Order == mtypes.BondOrderAromatic {
			aromatic = true
		}
	}
	if aromatic {
		sum++
	}
	return sum
}

// ImplicitHydrogenCount is the number of hydrogens needed to bring atom to its
// smallest allowed valence.  Atoms without valence data, wildcard and pattern
// atoms get none.
func ImplicitHydrogenCount(s *Structure, atom int) int {
	a := s.Atoms[atom]
	if a.Kind != mtypes.AtomStandard {
		return 0
	}
	valences := allowedValences(a.AtomicNumber(), a.Charge)
	if len(valences) == 0 {
		return 0
	}
	used := BondOrderSum(s, atom, false) + a.Radical
	target := smallestValenceAtLeast(valences, used)
	if target < 0 {
		return 0
	}
	return target - used
}

// HydrogenProperty returns the hydrogen count carried by the atom itself:
// the explicit count when set, otherwise the implicit count.
func HydrogenProperty(s *Structure, atom int) int {
	a := s.Atoms[atom]
	if a.ExplicitHydrogens != nil {
		return *a.ExplicitHydrogens
	}
	return ImplicitHydrogenCount(s, atom)
}

// CurrentValence is the bond order sum including bonds to hydrogen atoms plus
// the hydrogen property of the atom.
func CurrentValence(s *Structure, atom int) int {
	if s.Atoms[atom].Kind != mtypes.AtomStandard {
		return 0
	}
	return BondOrderSum(s, atom, false) + HydrogenProperty(s, atom)
}

// ValenceWithoutHydrogens is the valence the atom would be given if every
// hydrogen, bonded or counted, were dropped and recomputed from defaults.
func ValenceWithoutHydrogens(s *Structure, atom int) int {
	a := s.Atoms[atom]
	if a.Kind != mtypes.AtomStandard {
		return 0
	}
	used := BondOrderSum(s, atom, true) + a.Radical
	target := smallestValenceAtLeast(allowedValences(a.AtomicNumber(), a.Charge), used)
	if target < 0 {
		return used
	}
	return target
}

//Personal.AI order the ending
