// Package molecule defines the molecule-domain enumerations shared by every
// layer of molsmarts.  It holds plain data types only, which
// are safe to import from any layer without creating circular dependencies.
package molecule

// ─────────────────────────────────────────────────────────────────────────────
// AtomKind: closed set of atom variants
// ─────────────────────────────────────────────────────────────────────────────

// AtomKind selects how an atom is rendered.
type AtomKind string

const (
	// AtomStandard is a regular element atom.
	AtomStandard AtomKind = "standard"

	// AtomWildcard is an atom without a defined element ("*").
	AtomWildcard AtomKind = "wildcard"

	// AtomPattern carries precomputed pattern text that is emitted verbatim.
	AtomPattern AtomKind = "pattern"
)

// IsValid reports whether k is a known atom kind.
func (k AtomKind) IsValid() bool {
	switch k {
	case AtomStandard, AtomWildcard, AtomPattern:
		return true
	}
	return false
}

// ─────────────────────────────────────────────────────────────────────────────
// BondKind: closed set of bond variants
// ─────────────────────────────────────────────────────────────────────────────

// BondKind selects how a bond is rendered.
type BondKind string

const (
	// BondStandard is rendered from its type, order and stereo direction.
	BondStandard BondKind = "standard"

	// BondPattern carries precomputed pattern text that is emitted verbatim.
	BondPattern BondKind = "pattern"
)

// IsValid reports whether k is a known bond kind.
func (k BondKind) IsValid() bool {
	return k == BondStandard || k == BondPattern
}

// ─────────────────────────────────────────────────────────────────────────────
// BondType: chemical nature of a connection
// ─────────────────────────────────────────────────────────────────────────────

// BondType classifies the interaction a bond represents.  Only covalent bonds
// carry an order; every other type is written as a disconnection.
type BondType string

const (
	BondTypeCovalent   BondType = "covalent"
	BondTypeIonic      BondType = "ionic"
	BondTypeCoordinate BondType = "coordinate"
	BondTypeHydrogen   BondType = "hydrogen"
	BondTypeMetallic   BondType = "metallic"
)

// IsValid reports whether t is a known bond type.
func (t BondType) IsValid() bool {
	switch t {
	case BondTypeCovalent, BondTypeIonic, BondTypeCoordinate, BondTypeHydrogen, BondTypeMetallic:
		return true
	}
	return false
}

// ─────────────────────────────────────────────────────────────────────────────
// BondOrder
// ─────────────────────────────────────────────────────────────────────────────

// BondOrder is the multiplicity of a covalent bond.
type BondOrder string

const (
	BondOrderSingle BondOrder = "single"
	BondOrderDouble BondOrder = "double"
	BondOrderTriple BondOrder = "triple"
	BondOrderQuad   BondOrder = "quad"

	// BondOrderAromatic marks a bond declared aromatic by the input, e.g. a
	// molfile bond of type 4.
	BondOrderAromatic BondOrder = "aromatic"
)

// IsValid reports whether o is a known bond order.
func (o BondOrder) IsValid() bool {
	switch o {
	case BondOrderSingle, BondOrderDouble, BondOrderTriple, BondOrderQuad, BondOrderAromatic:
		return true
	}
	return false
}

// Valence returns the contribution of one bond of this order to an atom's
// valence.  Aromatic bonds count as one; the extra aromatic electron is
// accounted for once per atom by the valence model.
func (o BondOrder) Valence() int {
	switch o {
	case BondOrderDouble:
		return 2
	case BondOrderTriple:
		return 3
	case BondOrderQuad:
		return 4
	default:
		return 1
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// StereoParity
// ─────────────────────────────────────────────────────────────────────────────

// StereoParity is the stored configuration flag of a stereocentre.
//
// For a tetrahedral atom it follows the MDL convention: neighbours are ranked
// by atom index with hydrogen last; looking from the lowest ranked neighbour,
// the other three in increasing rank run clockwise for ParityOdd and
// anticlockwise for ParityEven.
//
// For a double bond it compares the two key neighbours (see
// molecule.KeyNeighborBonds): ParityEven when they lie on opposite sides of
// the bond, ParityOdd when they lie on the same side.
type StereoParity string

const (
	ParityNone    StereoParity = ""
	ParityOdd     StereoParity = "odd"
	ParityEven    StereoParity = "even"
	ParityUnknown StereoParity = "unknown"
)

// IsDefined reports whether the parity describes a concrete configuration.
func (p StereoParity) IsDefined() bool {
	return p == ParityOdd || p == ParityEven
}

// Invert swaps odd and even.  Other values are returned unchanged.
func (p StereoParity) Invert() StereoParity {
	switch p {
	case ParityOdd:
		return ParityEven
	case ParityEven:
		return ParityOdd
	}
	return p
}

// ─────────────────────────────────────────────────────────────────────────────
// RotationDir
// ─────────────────────────────────────────────────────────────────────────────

// RotationDir is the winding of three substituents seen from a fourth.
type RotationDir string

const (
	RotationNone          RotationDir = ""
	RotationClockwise     RotationDir = "clockwise"
	RotationAnticlockwise RotationDir = "anticlockwise"
)

// ─────────────────────────────────────────────────────────────────────────────
// MoleculeFormat
// ─────────────────────────────────────────────────────────────────────────────

// MoleculeFormat identifies the text format of a submitted structure.
type MoleculeFormat string

const (
	FormatMolfile MoleculeFormat = "molfile"
	FormatSDF     MoleculeFormat = "sdf"
)

// IsValid reports whether f is a supported input format.
func (f MoleculeFormat) IsValid() bool {
	return f == FormatMolfile || f == FormatSDF
}

//Personal.AI order the ending
