package smarts

import (
	"github.com/turtacn/molsmarts/internal/domain/molecule"
	mtypes "github.com/turtacn/molsmarts/pkg/types/molecule"
)

// Bond symbols.
const (
	BondSingle       = "-"
	BondDouble       = "="
	BondTriple       = "#"
	BondQuad         = "$"
	BondAromatic     = ":"
	BondDisconnected = "."
)

// BondFormatter renders the bond symbol written between two atoms.
type BondFormatter struct {
	aromatic   *molecule.AromaticSet
	directions StereoDirections
}

// NewBondFormatter returns a formatter over the given aromaticity data and
// stereo directions; both may be nil.
func NewBondFormatter(aromatic *molecule.AromaticSet, directions StereoDirections) *BondFormatter {
	return &BondFormatter{aromatic: aromatic, directions: directions}
}

// Format returns the symbol for b.
//
// Pattern bonds are written verbatim.  Covalent bonds on a perceived
// aromatic ring are implied by the atom symbols and written as "".  A
// single bond is implicit unless it joins two aromatic atoms, in which case
// "-" is written.  A direction symbol, when assigned, follows the bond
// symbol.  Any other bond type is written as ".".
func (f *BondFormatter) Format(b *molecule.Bond) string {
	if b.Kind == mtypes.BondPattern {
		return b.Pattern
	}
	if !b.IsCovalent() {
		return BondDisconnected
	}
	if f.aromatic.HasBond(b.Index) {
		return ""
	}
	var sym string
	switch b.Order {
	case mtypes.BondOrderDouble:
		sym = BondDouble
	case mtypes.BondOrderTriple:
		sym = BondTriple
	case mtypes.BondOrderQuad:
		sym = BondQuad
	case mtypes.BondOrderAromatic:
		sym = BondAromatic
	default:
		if f.aromatic.HasAtom(b.Atom1) && f.aromatic.HasAtom(b.Atom2) {
			sym = BondSingle
		}
	}
	return sym + f.directions.Get(b.Index)
}

//Personal.AI order the ending
