package molecule

import "strings"

// Element describes one chemical element as far as the valence model needs it.
type Element struct {
	Number   int
	Symbol   string
	Valences []int
}

// HasValenceData reports whether typical valences are known for the element.
func (e Element) HasValenceData() bool {
	return len(e.Valences) > 0
}

var elementSymbols = [...]string{
	"",
	"H", "He",
	"Li", "Be", "B", "C", "N", "O", "F", "Ne",
	"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar",
	"K", "Ca", "Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn",
	"Ga", "Ge", "As", "Se", "Br", "Kr",
	"Rb", "Sr", "Y", "Zr", "Nb", "Mo", "Tc", "Ru", "Rh", "Pd", "Ag", "Cd",
	"In", "Sn", "Sb", "Te", "I", "Xe",
	"Cs", "Ba", "La", "Ce", "Pr", "Nd", "Pm", "Sm", "Eu", "Gd", "Tb", "Dy",
	"Ho", "Er", "Tm", "Yb", "Lu", "Hf", "Ta", "W", "Re", "Os", "Ir", "Pt",
	"Au", "Hg", "Tl", "Pb", "Bi", "Po", "At", "Rn",
}

// defaultValences lists the allowed valences in increasing order.  Elements
// absent from this table get no implicit hydrogens.
var defaultValences = map[int][]int{
	1:  {1},          // H
	3:  {1},          // Li
	5:  {3},          // B
	6:  {4},          // C
	7:  {3, 5},       // N
	8:  {2},          // O
	9:  {1},          // F
	11: {1},          // Na
	12: {2},          // Mg
	13: {3},          // Al
	14: {4},          // Si
	15: {3, 5},       // P
	16: {2, 4, 6},    // S
	17: {1, 3, 5, 7}, // Cl
	19: {1},          // K
	20: {2},          // Ca
	32: {4},          // Ge
	33: {3, 5},       // As
	34: {2, 4, 6},    // Se
	35: {1, 3, 5, 7}, // Br
	50: {2, 4},       // Sn
	52: {2, 4, 6},    // Te
	53: {1, 3, 5, 7}, // I
}

var elementsBySymbol = func() map[string]int {
	m := make(map[string]int, len(elementSymbols))
	for n, sym := range elementSymbols {
		if sym != "" {
			m[sym] = n
		}
	}
	// Isotope shorthands used by molfiles.
	m["D"] = 1
	m["T"] = 1
	return m
}()

// ElementByNumber looks up an element by atomic number.
func ElementByNumber(n int) (Element, bool) {
	if n <= 0 || n >= len(elementSymbols) {
		return Element{}, false
	}
	return Element{Number: n, Symbol: elementSymbols[n], Valences: defaultValences[n]}, true
}

// ElementBySymbol looks up an element by symbol, ignoring case, so "CL",
// "cl" and "Cl" all match.
func ElementBySymbol(symbol string) (Element, bool) {
	if symbol == "" {
		return Element{}, false
	}
	normalized := strings.ToUpper(symbol[:1]) + strings.ToLower(symbol[1:])
	n, ok := elementsBySymbol[normalized]
	if !ok {
		return Element{}, false
	}
	return ElementByNumber(n)
}

// AtomicNumber returns the atomic number for symbol, or 0 when unknown.
func AtomicNumber(symbol string) int {
	e, ok := ElementBySymbol(symbol)
	if !ok {
		return 0
	}
	return e.Number
}

//Personal.AI order the ending
