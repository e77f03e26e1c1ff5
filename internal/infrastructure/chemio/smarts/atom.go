package smarts

import (
	"strconv"
	"strings"

	"github.com/turtacn/molsmarts/internal/domain/molecule"
	mtypes "github.com/turtacn/molsmarts/pkg/types/molecule"
)

// Atom tokens.
const (
	AtomWildcard          = "*"
	RotationClockwise     = "@@"
	RotationAnticlockwise = "@"
)

var (
	// organicSubset may be written without brackets.
	organicSubset = map[string]bool{
		"B": true, "C": true, "N": true, "O": true, "S": true,
		"P": true, "F": true, "Cl": true, "Br": true, "I": true,
	}
	// aromaticSubset may be written lower-case without brackets.
	aromaticSubset = map[string]bool{
		"B": true, "C": true, "N": true, "O": true, "S": true, "P": true,
	}
)

// AtomFormatter renders atom tokens.
type AtomFormatter struct {
	structure *molecule.Structure
	aromatic  *molecule.AromaticSet
	opts      Options
}

// NewAtomFormatter returns a formatter for the atoms of s.
func NewAtomFormatter(s *molecule.Structure, aromatic *molecule.AromaticSet, opts Options) *AtomFormatter {
	return &AtomFormatter{structure: s, aromatic: aromatic, opts: opts}
}

// Format renders the token of v.  prev is the vertex the serializer arrived
// from (nil for a root) and next lists the following neighbours in written
// order: ring-closure partners, branches, then the chain continuation.
func (f *AtomFormatter) Format(v, prev *molecule.Vertex, next []*molecule.Vertex) string {
	a := v.Atom
	if a.Kind == mtypes.AtomPattern {
		return a.Pattern + envToken(a.Env)
	}
	aromatic := f.aromatic.HasAtom(a.Index)

	var symbol, token string
	if a.Kind == mtypes.AtomWildcard {
		token = AtomWildcard
	} else {
		symbol = canonicalSymbol(a.Symbol)
		token = symbol
		if aromatic {
			token = strings.ToLower(token)
		}
	}

	chiral := f.chirality(v, prev, next)
	token += chiral

	hcount := f.HydrogenCount(v, f.opts)
	showH := f.showHydrogens(v, symbol, aromatic, hcount, chiral)
	if showH && hcount > 0 {
		token += "H"
		if hcount > 1 {
			token += strconv.Itoa(hcount)
		}
	}

	token += chargeToken(a.Charge)
	if a.MassNumber != 0 {
		token = strconv.Itoa(abs(a.MassNumber)) + token
	}

	plain := !showH && a.Charge == 0 && a.MassNumber == 0 && chiral == "" && a.Radical == 0 &&
		((!aromatic && organicSubset[symbol]) || (aromatic && aromaticSubset[symbol]))
	if !plain {
		token = "[" + token + "]"
	}
	return token + envToken(a.Env)
}

// HydrogenCount returns the hydrogens attached to v under opts: folded
// hydrogen atoms, plus the explicit count unless ignored, plus the implicit
// count when no explicit count is set and implicit hydrogens are not ignored.
func (f *AtomFormatter) HydrogenCount(v *molecule.Vertex, opts Options) int {
	a := v.Atom
	n := len(v.FoldedHydrogens())
	if a.ExplicitHydrogens != nil {
		if !opts.IgnoreExplicitHydrogens {
			n += *a.ExplicitHydrogens
		}
	} else if !opts.IgnoreImplicitHydrogens {
		n += molecule.ImplicitHydrogenCount(f.structure, a.Index)
	}
	return n
}

// showHydrogens decides whether the hydrogen count is written.  It is
// always written next to a chirality mark or on a radical; otherwise only
// when leaving it out would change the meaning of the token.
func (f *AtomFormatter) showHydrogens(v *molecule.Vertex, symbol string, aromatic bool, hcount int, chiral string) bool {
	a := v.Atom
	if chiral != "" || a.Radical != 0 || a.Kind != mtypes.AtomStandard {
		return true
	}
	if hcount > 0 && aromatic && symbol != "C" {
		return true
	}
	if f.opts.ignoresHydrogens() && hcount != f.HydrogenCount(v, Options{}) {
		return true
	}
	s := f.structure
	current := molecule.CurrentValence(s, a.Index)
	if current == 0 {
		// Nothing to infer the count from; keep the atom bracketed.
		return true
	}
	if current > molecule.MaxPossibleValence(a.AtomicNumber(), a.Charge) && hcount > 0 {
		return true
	}
	if a.ExplicitHydrogens != nil {
		return *a.ExplicitHydrogens != molecule.ImplicitHydrogenCount(s, a.Index)
	}
	return molecule.ValenceWithoutHydrogens(s, a.Index) < current
}

// chirality returns "@", "@@" or "".  The neighbour order is the written
// order: prev, hydrogens, then next.  An atom carrying both folded hydrogen
// atoms and a hydrogen count is ambiguous and gets no mark.
func (f *AtomFormatter) chirality(v, prev *molecule.Vertex, next []*molecule.Vertex) string {
	a := v.Atom
	if f.opts.ignoreStereoAtom() || !a.Parity.IsDefined() || len(next) == 0 {
		return ""
	}
	folded := len(v.FoldedHydrogens())
	counted := molecule.HydrogenProperty(f.structure, a.Index)
	if folded > 0 && counted > 0 {
		return ""
	}
	ranks := make([]int, 0, 4)
	if prev != nil {
		ranks = append(ranks, rankOf(prev))
	}
	for i := 0; i < folded+counted; i++ {
		ranks = append(ranks, molecule.HydrogenRank)
	}
	for _, nb := range next {
		ranks = append(ranks, rankOf(nb))
	}
	switch molecule.RotationDirection(a.Parity, ranks) {
	case mtypes.RotationClockwise:
		return RotationClockwise
	case mtypes.RotationAnticlockwise:
		return RotationAnticlockwise
	}
	return ""
}

func rankOf(v *molecule.Vertex) int {
	if v.Atom.IsHydrogen() {
		return molecule.HydrogenRank
	}
	return v.Atom.Index
}

func canonicalSymbol(symbol string) string {
	if e, ok := molecule.ElementBySymbol(symbol); ok && !isIsotopeShorthand(symbol) {
		return e.Symbol
	}
	return symbol
}

func isIsotopeShorthand(symbol string) bool {
	return symbol == "D" || symbol == "T"
}

func chargeToken(charge int) string {
	switch {
	case charge == 0:
		return ""
	case charge == 1:
		return "+"
	case charge == -1:
		return "-"
	case charge > 0:
		return strconv.Itoa(charge) + "+"
	default:
		return strconv.Itoa(-charge) + "-"
	}
}

func envToken(env string) string {
	if env == "" {
		return ""
	}
	return "([" + env + "])"
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

//Personal.AI order the ending
