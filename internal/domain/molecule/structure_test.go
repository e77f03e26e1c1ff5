package molecule

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/molsmarts/pkg/errors"
	mtypes "github.com/turtacn/molsmarts/pkg/types/molecule"
)

func TestStructure_AddAtomAndBondDefaults(t *testing.T) {
	s := NewStructure("ethene")
	c1 := s.NewAtom("C")
	c2 := s.NewAtom("C")
	b := s.AddBond(&Bond{Atom1: c1.Index, Atom2: c2.Index})

	assert.Equal(t, 0, c1.Index)
	assert.Equal(t, 1, c2.Index)
	assert.Equal(t, mtypes.AtomStandard, c1.Kind)
	assert.Equal(t, mtypes.BondStandard, b.Kind)
	assert.Equal(t, mtypes.BondTypeCovalent, b.Type)
	assert.Equal(t, mtypes.BondOrderSingle, b.Order)
	assert.True(t, b.IsCovalent())
	assert.NoError(t, s.Validate())
}

func TestStructure_NeighborsAndBondBetween(t *testing.T) {
	s := kekuleBenzene()

	assert.Equal(t, []int{1, 5}, s.Neighbors(0))
	assert.Len(t, s.BondsOf(3), 2)
	require.NotNil(t, s.BondBetween(5, 0))
	assert.Equal(t, 5, s.BondBetween(5, 0).Index)
	assert.Nil(t, s.BondBetween(0, 3))
}

func TestStructure_LiteralAssignmentFallsBackToScan(t *testing.T) {
	s := &Structure{
		Atoms: []*Atom{{Index: 0, Kind: mtypes.AtomStandard, Symbol: "O"}, {Index: 1, Kind: mtypes.AtomStandard, Symbol: "C"}},
		Bonds: []*Bond{{Index: 0, Kind: mtypes.BondStandard, Type: mtypes.BondTypeCovalent, Order: mtypes.BondOrderDouble, Atom1: 0, Atom2: 1}},
	}
	assert.Equal(t, []int{1}, s.Neighbors(0))

	s.Reindex()
	assert.Equal(t, []int{0}, s.Neighbors(1))
}

func TestBond_Other(t *testing.T) {
	b := &Bond{Atom1: 3, Atom2: 7}
	assert.Equal(t, 7, b.Other(3))
	assert.Equal(t, 3, b.Other(7))
	assert.Equal(t, -1, b.Other(5))
}

func TestAtom_Properties(t *testing.T) {
	a := &Atom{Kind: mtypes.AtomStandard, Symbol: "Cl"}
	assert.Equal(t, 17, a.AtomicNumber())
	assert.False(t, a.IsHydrogen())
	assert.False(t, a.HasExplicitHydrogens())
	a.SetExplicitHydrogens(0)
	assert.True(t, a.HasExplicitHydrogens())

	w := &Atom{Kind: mtypes.AtomWildcard}
	assert.Equal(t, 0, w.AtomicNumber())
}

func TestStructure_Validate(t *testing.T) {
	cases := []struct {
		name  string
		build func() *Structure
		code  errors.ErrorCode
	}{
		{"unknown element", func() *Structure {
			s := NewStructure("")
			s.NewAtom("Qq")
			return s
		}, errors.ErrCodeMoleculeInvalidStructure},
		{"self loop", func() *Structure {
			s := NewStructure("")
			s.NewAtom("C")
			s.Connect(0, 0, mtypes.BondOrderSingle)
			return s
		}, errors.ErrCodeMoleculeInvalidStructure},
		{"duplicate bond", func() *Structure {
			s := NewStructure("")
			s.NewAtom("C")
			s.NewAtom("C")
			s.Connect(0, 1, mtypes.BondOrderSingle)
			s.Connect(1, 0, mtypes.BondOrderDouble)
			return s
		}, errors.ErrCodeMoleculeInvalidStructure},
		{"dangling bond", func() *Structure {
			s := NewStructure("")
			s.NewAtom("C")
			s.Connect(0, 4, mtypes.BondOrderSingle)
			return s
		}, errors.ErrCodeMoleculeGraphInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.build().Validate()
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, tc.code), err.Error())
		})
	}
}

func TestElementLookup(t *testing.T) {
	e, ok := ElementBySymbol("CL")
	require.True(t, ok)
	assert.Equal(t, "Cl", e.Symbol)
	assert.Equal(t, []int{1, 3, 5, 7}, e.Valences)

	d, ok := ElementBySymbol("D")
	require.True(t, ok)
	assert.Equal(t, 1, d.Number)

	xe, ok := ElementByNumber(54)
	require.True(t, ok)
	assert.False(t, xe.HasValenceData())

	_, ok = ElementByNumber(0)
	assert.False(t, ok)
	assert.Equal(t, 0, AtomicNumber(""))
}

func TestStructure_NormalizeDecodedJSON(t *testing.T) {
	var s Structure
	require.NoError(t, json.Unmarshal([]byte(`{
		"atoms": [{"symbol": "C"}, {"symbol": "O"}, {"kind": "pattern", "pattern": "[#7,#8]"}],
		"bonds": [{"atom1": 0, "atom2": 1}, {"atom1": 0, "atom2": 2, "order": "double"}]
	}`), &s))

	s.Normalize()
	require.NoError(t, s.Validate())
	assert.Equal(t, 2, s.Atoms[2].Index)
	assert.Equal(t, mtypes.AtomStandard, s.Atoms[0].Kind)
	assert.Equal(t, 1, s.Bonds[1].Index)
	assert.Equal(t, mtypes.BondOrderSingle, s.Bonds[0].Order)
	assert.Equal(t, mtypes.BondTypeCovalent, s.Bonds[1].Type)
	assert.Equal(t, []int{1, 2}, s.Neighbors(0))
}

func TestStructure_NormalizeKeepsNilForValidate(t *testing.T) {
	s := &Structure{Atoms: []*Atom{{Symbol: "C"}, nil}}
	s.Normalize()
	assert.True(t, errors.IsCode(s.Validate(), errors.ErrCodeMoleculeInvalidStructure))
}

//Personal.AI order the ending
