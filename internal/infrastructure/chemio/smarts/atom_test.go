package smarts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/molsmarts/internal/domain/molecule"
	mtypes "github.com/turtacn/molsmarts/pkg/types/molecule"
)

func single(a *molecule.Atom) *molecule.Structure {
	s := molecule.NewStructure("")
	s.AddAtom(a)
	return s
}

func formatLone(t *testing.T, a *molecule.Atom, opts Options) string {
	t.Helper()
	s := single(a)
	g := mustGraph(s)
	require.Len(t, g.Vertices(), 1)
	return NewAtomFormatter(s, nil, opts).Format(g.Vertices()[0], nil, nil)
}

func intPtr(n int) *int { return &n }

func TestAtomFormatter_LoneAtoms(t *testing.T) {
	cases := []struct {
		name string
		atom *molecule.Atom
		opts Options
		want string
	}{
		{"carbon", &molecule.Atom{Symbol: "C"}, Options{}, "C"},
		{"chlorine", &molecule.Atom{Symbol: "Cl"}, Options{}, "Cl"},
		{"lower case input", &molecule.Atom{Symbol: "br"}, Options{}, "Br"},
		{"isotope", &molecule.Atom{Symbol: "C", MassNumber: 13}, Options{}, "[13C]"},
		{"ammonium-like", &molecule.Atom{Symbol: "N", Charge: 1, ExplicitHydrogens: intPtr(1)}, Options{}, "[NH+]"},
		{"double charge", &molecule.Atom{Symbol: "Fe", Charge: 2}, Options{}, "[Fe2+]"},
		{"double anion", &molecule.Atom{Symbol: "S", Charge: -2}, Options{}, "[S2-]"},
		{"no valence data", &molecule.Atom{Symbol: "Xe"}, Options{}, "[Xe]"},
		{"wildcard", &molecule.Atom{Kind: mtypes.AtomWildcard}, Options{}, "[*]"},
		{"pattern", &molecule.Atom{Kind: mtypes.AtomPattern, Pattern: "[#6;R]", Charge: 1}, Options{}, "[#6;R]"},
		{"environment", &molecule.Atom{Symbol: "C", Env: "R2"}, Options{}, "C([R2])"},
		{"pattern with environment", &molecule.Atom{Kind: mtypes.AtomPattern, Pattern: "[N,O]", Env: "a"}, Options{}, "[N,O]([a])"},
		{"radical", &molecule.Atom{Symbol: "C", Radical: 1}, Options{}, "[CH3]"},
		{"explicit equals implicit", &molecule.Atom{Symbol: "C", ExplicitHydrogens: intPtr(4)}, Options{}, "C"},
		{"explicit differs", &molecule.Atom{Symbol: "N", ExplicitHydrogens: intPtr(1)}, Options{}, "[NH]"},
		{"abnormal valence", &molecule.Atom{Symbol: "C", ExplicitHydrogens: intPtr(5)}, Options{}, "[CH5]"},
		{"ignored implicit hydrogens", &molecule.Atom{Symbol: "C"}, Options{IgnoreImplicitHydrogens: true}, "[C]"},
		{"ignored explicit hydrogens", &molecule.Atom{Symbol: "N", ExplicitHydrogens: intPtr(1)}, Options{IgnoreExplicitHydrogens: true}, "[N]"},
		{"deuterium keeps its symbol", &molecule.Atom{Symbol: "D"}, Options{}, "[D]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, formatLone(t, tc.atom, tc.opts))
		})
	}
}

func TestAtomFormatter_HydrogenCount(t *testing.T) {
	s := molecule.NewStructure("")
	s.NewAtom("O")
	for i := 0; i < 2; i++ {
		h := s.NewAtom("H")
		s.Connect(0, h.Index, mtypes.BondOrderSingle)
	}
	g := mustGraph(s)
	v := g.Vertices()[0]
	f := NewAtomFormatter(s, nil, Options{})

	assert.Equal(t, 2, f.HydrogenCount(v, Options{}))
	assert.Equal(t, 2, f.HydrogenCount(v, Options{IgnoreImplicitHydrogens: true}))
	assert.Equal(t, "O", f.Format(v, nil, nil))
}

func TestAtomFormatter_AromaticHeteroatomShowsHydrogen(t *testing.T) {
	// pyrrole nitrogen
	s := ring([]string{"N", "C", "C", "C", "C"}, 1, 3)
	g := mustGraph(s)
	aromatic := molecule.NewAromaticityPerceiver().Perceive(s)
	f := NewAtomFormatter(s, aromatic, Options{})

	assert.Equal(t, "[nH]", f.Format(g.Vertices()[0], nil, nil))
	assert.Equal(t, "c", f.Format(g.Vertices()[1], nil, nil))
}

func TestAtomFormatter_Chirality(t *testing.T) {
	s := halomethane(mtypes.ParityOdd)
	g := mustGraph(s)
	v := g.Vertices()
	c, f, cl, br := v[0], v[1], v[2], v[3]

	fm := NewAtomFormatter(s, nil, Options{})
	// prev Br(3), H, Cl(2), F(1): five inversions.
	assert.Equal(t, "[C@H]", fm.Format(c, br, []*molecule.Vertex{cl, f}))
	// prev F(1), H, Cl(2), Br(3): two inversions.
	assert.Equal(t, "[C@@H]", fm.Format(c, f, []*molecule.Vertex{cl, br}))

	ignoring := NewAtomFormatter(s, nil, Options{IgnoreStereoAtom: true})
	assert.Equal(t, "C", ignoring.Format(c, br, []*molecule.Vertex{cl, f}))

	blanket := NewAtomFormatter(s, nil, Options{IgnoreStereo: true})
	assert.Equal(t, "C", blanket.Format(c, br, []*molecule.Vertex{cl, f}))
}

func TestAtomFormatter_ChiralityNeedsFourNeighbours(t *testing.T) {
	s := halomethane(mtypes.ParityOdd)
	s.Atoms[0].SetExplicitHydrogens(0)
	g := mustGraph(s)
	v := g.Vertices()

	// Only three neighbours: no mark, and the explicit count of zero differs
	// from the implicit one, so the atom is bracketed without hydrogens.
	got := NewAtomFormatter(s, nil, Options{}).Format(v[0], v[3], []*molecule.Vertex{v[2], v[1]})
	assert.Equal(t, "[C]", got)
}

//Personal.AI order the ending
