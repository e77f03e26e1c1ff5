// Package molecule holds the connection-table model the SMARTS encoder reads:
// atoms, bonds, element and valence data, the graph adapter, ring and
// aromaticity perception, and stereochemistry helpers.
package molecule

import (
	"fmt"

	"github.com/turtacn/molsmarts/pkg/errors"
	mtypes "github.com/turtacn/molsmarts/pkg/types/molecule"
)

// ─────────────────────────────────────────────────────────────────────────────
// Atom
// ─────────────────────────────────────────────────────────────────────────────

// Atom is one node of a connection table.
type Atom struct {
	// Index is the position of the atom in Structure.Atoms.
	Index int `json:"index"`

	Kind   mtypes.AtomKind `json:"kind"`
	Symbol string          `json:"symbol,omitempty"`

	Charge     int `json:"charge,omitempty"`
	MassNumber int `json:"mass_number,omitempty"`

	// Radical is the number of valence slots taken by unpaired electrons:
	// 1 for a doublet, 2 for a singlet or triplet.
	Radical int `json:"radical,omitempty"`

	// ExplicitHydrogens, when set, replaces the implicit hydrogen count.
	ExplicitHydrogens *int `json:"explicit_hydrogens,omitempty"`

	Parity mtypes.StereoParity `json:"parity,omitempty"`

	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`

	// Pattern is the literal text of an AtomPattern atom.
	Pattern string `json:"pattern,omitempty"`

	// Env is an optional environment annotation appended after the atom.
	Env string `json:"env,omitempty"`
}

// AtomicNumber returns the atomic number of a standard atom, or 0.
func (a *Atom) AtomicNumber() int {
	if a.Kind != mtypes.AtomStandard {
		return 0
	}
	return AtomicNumber(a.Symbol)
}

// IsHydrogen reports whether a is a standard hydrogen atom.
func (a *Atom) IsHydrogen() bool {
	return a.Kind == mtypes.AtomStandard && a.AtomicNumber() == 1
}

// HasExplicitHydrogens reports whether an explicit hydrogen count is set.
func (a *Atom) HasExplicitHydrogens() bool {
	return a.ExplicitHydrogens != nil
}

// SetExplicitHydrogens sets the explicit hydrogen count.
func (a *Atom) SetExplicitHydrogens(n int) {
	a.ExplicitHydrogens = &n
}

// ─────────────────────────────────────────────────────────────────────────────
// Bond
// ─────────────────────────────────────────────────────────────────────────────

// Bond connects two atoms of a connection table by index.
type Bond struct {
	// Index is the position of the bond in Structure.Bonds.
	Index int `json:"index"`

	Kind  mtypes.BondKind  `json:"kind"`
	Type  mtypes.BondType  `json:"type"`
	Order mtypes.BondOrder `json:"order"`

	Atom1 int `json:"atom1"`
	Atom2 int `json:"atom2"`

	// Parity is the E/Z configuration of a double bond.
	Parity mtypes.StereoParity `json:"parity,omitempty"`

	// Pattern is the literal text of a BondPattern bond.
	Pattern string `json:"pattern,omitempty"`
}

// Contains reports whether atom is one of the bond's endpoints.
func (b *Bond) Contains(atom int) bool {
	return b.Atom1 == atom || b.Atom2 == atom
}

// Other returns the endpoint opposite to atom, or -1 if atom is not an
// endpoint.
func (b *Bond) Other(atom int) int {
	switch atom {
	case b.Atom1:
		return b.Atom2
	case b.Atom2:
		return b.Atom1
	}
	return -1
}

// IsCovalent reports whether the bond is a standard covalent bond.
func (b *Bond) IsCovalent() bool {
	return b.Kind == mtypes.BondStandard && b.Type == mtypes.BondTypeCovalent
}

// ─────────────────────────────────────────────────────────────────────────────
// Structure
// ─────────────────────────────────────────────────────────────────────────────

// Structure is a connection table: an ordered atom list and an ordered bond
// list.  The order of both lists is significant; it drives every tie-break of
// the encoder.
type Structure struct {
	Name  string  `json:"name,omitempty"`
	Atoms []*Atom `json:"atoms"`
	Bonds []*Bond `json:"bonds"`

	adj      [][]*Bond
	adjBonds int
}

// NewStructure returns an empty structure.
func NewStructure(name string) *Structure {
	return &Structure{Name: name}
}

// AddAtom appends an atom, assigning its index and defaulting its kind.
func (s *Structure) AddAtom(a *Atom) *Atom {
	a.Index = len(s.Atoms)
	if a.Kind == "" {
		a.Kind = mtypes.AtomStandard
	}
	s.Atoms = append(s.Atoms, a)
	if len(s.adj) == a.Index && s.adjBonds == len(s.Bonds) {
		s.adj = append(s.adj, nil)
	}
	return a
}

// NewAtom appends a standard atom with the given element symbol.
func (s *Structure) NewAtom(symbol string) *Atom {
	return s.AddAtom(&Atom{Symbol: symbol})
}

// AddBond appends a bond, assigning its index and defaulting kind, type and
// order.
func (s *Structure) AddBond(b *Bond) *Bond {
	b.Index = len(s.Bonds)
	if b.Kind == "" {
		b.Kind = mtypes.BondStandard
	}
	if b.Type == "" {
		b.Type = mtypes.BondTypeCovalent
	}
	if b.Order == "" {
		b.Order = mtypes.BondOrderSingle
	}
	indexed := s.indexed()
	s.Bonds = append(s.Bonds, b)
	if indexed && s.inRange(b.Atom1) && s.inRange(b.Atom2) {
		s.adj[b.Atom1] = append(s.adj[b.Atom1], b)
		if b.Atom2 != b.Atom1 {
			s.adj[b.Atom2] = append(s.adj[b.Atom2], b)
		}
		s.adjBonds++
	}
	return b
}

// Connect appends a covalent bond of the given order between two atoms.
func (s *Structure) Connect(a1, a2 int, order mtypes.BondOrder) *Bond {
	return s.AddBond(&Bond{Atom1: a1, Atom2: a2, Order: order})
}

// Reindex rebuilds the adjacency index after Atoms or Bonds were assigned
// directly.
func (s *Structure) Reindex() {
	s.adj = make([][]*Bond, len(s.Atoms))
	s.adjBonds = 0
	for _, b := range s.Bonds {
		if b == nil || !s.inRange(b.Atom1) || !s.inRange(b.Atom2) {
			continue
		}
		s.adj[b.Atom1] = append(s.adj[b.Atom1], b)
		if b.Atom2 != b.Atom1 {
			s.adj[b.Atom2] = append(s.adj[b.Atom2], b)
		}
		s.adjBonds++
	}
}

// Normalize prepares a structure decoded from JSON: it numbers atoms and
// bonds by position, fills default kinds, types and orders, and rebuilds the
// adjacency index.  Nil entries are left for Validate to report.
func (s *Structure) Normalize() {
	for i, a := range s.Atoms {
		if a == nil {
			continue
		}
		a.Index = i
		if a.Kind == "" {
			a.Kind = mtypes.AtomStandard
		}
	}
	for i, b := range s.Bonds {
		if b == nil {
			continue
		}
		b.Index = i
		if b.Kind == "" {
			b.Kind = mtypes.BondStandard
		}
		if b.Type == "" {
			b.Type = mtypes.BondTypeCovalent
		}
		if b.Order == "" {
			b.Order = mtypes.BondOrderSingle
		}
	}
	s.Reindex()
}

func (s *Structure) indexed() bool {
	return len(s.adj) == len(s.Atoms) && s.adjBonds == len(s.Bonds)
}

func (s *Structure) inRange(atom int) bool {
	return atom >= 0 && atom < len(s.Atoms)
}

// IsEmpty reports whether the structure has no atoms.
func (s *Structure) IsEmpty() bool {
	return s == nil || len(s.Atoms) == 0
}

// BondsOf returns the bonds incident to atom in bond-list order.
func (s *Structure) BondsOf(atom int) []*Bond {
	if s.indexed() && s.inRange(atom) {
		return s.adj[atom]
	}
	var out []*Bond
	for _, b := range s.Bonds {
		if b.Contains(atom) {
			out = append(out, b)
		}
	}
	return out
}

// Neighbors returns the atoms bonded to atom in bond-list order.
func (s *Structure) Neighbors(atom int) []int {
	bonds := s.BondsOf(atom)
	out := make([]int, 0, len(bonds))
	for _, b := range bonds {
		out = append(out, b.Other(atom))
	}
	return out
}

// BondBetween returns the first bond joining a1 and a2, or nil.
func (s *Structure) BondBetween(a1, a2 int) *Bond {
	for _, b := range s.BondsOf(a1) {
		if b.Other(a1) == a2 {
			return b
		}
	}
	return nil
}

// Validate checks the internal consistency of the connection table.
func (s *Structure) Validate() error {
	if s == nil {
		return errors.New(errors.ErrCodeMoleculeInvalidStructure, "structure is nil")
	}
	for i, a := range s.Atoms {
		if a == nil {
			return errors.Newf(errors.ErrCodeMoleculeInvalidStructure, "atom %d is nil", i)
		}
		if a.Index != i {
			return errors.Newf(errors.ErrCodeMoleculeInvalidStructure, "atom %d has index %d", i, a.Index)
		}
		if !a.Kind.IsValid() {
			return errors.Newf(errors.ErrCodeMoleculeInvalidStructure, "atom %d has unknown kind %q", i, a.Kind)
		}
		if a.Kind == mtypes.AtomStandard && a.AtomicNumber() == 0 {
			return errors.Newf(errors.ErrCodeMoleculeInvalidStructure, "atom %d has unknown element %q", i, a.Symbol)
		}
	}
	seen := make(map[[2]int]int, len(s.Bonds))
	for i, b := range s.Bonds {
		if b == nil {
			return errors.Newf(errors.ErrCodeMoleculeInvalidStructure, "bond %d is nil", i)
		}
		if b.Index != i {
			return errors.Newf(errors.ErrCodeMoleculeInvalidStructure, "bond %d has index %d", i, b.Index)
		}
		if !s.inRange(b.Atom1) || !s.inRange(b.Atom2) {
			return errors.Newf(errors.ErrCodeMoleculeGraphInvalid,
				"bond %d references atom outside the structure", i).
				WithDetail(fmt.Sprintf("atoms=%d endpoints=%d,%d", len(s.Atoms), b.Atom1, b.Atom2))
		}
		if b.Atom1 == b.Atom2 {
			return errors.Newf(errors.ErrCodeMoleculeInvalidStructure, "bond %d is a self loop on atom %d", i, b.Atom1)
		}
		key := [2]int{b.Atom1, b.Atom2}
		if key[0] > key[1] {
			key[0], key[1] = key[1], key[0]
		}
		if prev, dup := seen[key]; dup {
			return errors.Newf(errors.ErrCodeMoleculeInvalidStructure, "bonds %d and %d join the same atoms", prev, i)
		}
		seen[key] = i
	}
	return nil
}

//Personal.AI order the ending
