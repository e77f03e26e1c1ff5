package molecule

import (
	"testing"

	"github.com/stretchr/testify/assert"

	mtypes "github.com/turtacn/molsmarts/pkg/types/molecule"
)

func TestImplicitHydrogenCount(t *testing.T) {
	t.Run("lone carbon", func(t *testing.T) {
		s := NewStructure("")
		s.NewAtom("C")
		assert.Equal(t, 4, ImplicitHydrogenCount(s, 0))
		assert.Equal(t, 4, CurrentValence(s, 0))
		assert.Equal(t, 4, ValenceWithoutHydrogens(s, 0))
	})

	t.Run("hydroxyl oxygen", func(t *testing.T) {
		s := NewStructure("")
		s.NewAtom("C")
		s.NewAtom("O")
		s.Connect(0, 1, mtypes.BondOrderSingle)
		assert.Equal(t, 1, ImplicitHydrogenCount(s, 1))
		assert.Equal(t, 3, ImplicitHydrogenCount(s, 0))
	})

	t.Run("quaternary ammonium", func(t *testing.T) {
		s := NewStructure("")
		n := s.NewAtom("N")
		n.Charge = 1
		for i := 0; i < 4; i++ {
			c := s.NewAtom("C")
			s.Connect(n.Index, c.Index, mtypes.BondOrderSingle)
		}
		assert.Equal(t, 0, ImplicitHydrogenCount(s, 0))
		assert.Equal(t, 4, MaxPossibleValence(7, 1))
	})

	t.Run("alkoxide", func(t *testing.T) {
		s := NewStructure("")
		s.NewAtom("C")
		o := s.NewAtom("O")
		o.Charge = -1
		s.Connect(0, 1, mtypes.BondOrderSingle)
		assert.Equal(t, 0, ImplicitHydrogenCount(s, 1))
	})

	t.Run("sulfur steps to next valence", func(t *testing.T) {
		s := NewStructure("")
		s.NewAtom("S")
		for i := 0; i < 3; i++ {
			c := s.NewAtom("C")
			s.Connect(0, c.Index, mtypes.BondOrderSingle)
		}
		assert.Equal(t, 1, ImplicitHydrogenCount(s, 0))
		assert.Equal(t, 6, MaxPossibleValence(16, 0))
	})

	t.Run("methyl radical", func(t *testing.T) {
		s := NewStructure("")
		s.AddAtom(&Atom{Symbol: "C", Radical: 1})
		assert.Equal(t, 3, ImplicitHydrogenCount(s, 0))
	})

	t.Run("element without valence data", func(t *testing.T) {
		s := NewStructure("")
		s.NewAtom("Xe")
		assert.Equal(t, 0, ImplicitHydrogenCount(s, 0))
		assert.Equal(t, 0, CurrentValence(s, 0))
		assert.Equal(t, 0, ValenceWithoutHydrogens(s, 0))
		assert.Equal(t, 0, MaxPossibleValence(54, 0))
	})

	t.Run("wildcard atom", func(t *testing.T) {
		s := NewStructure("")
		s.AddAtom(&Atom{Kind: mtypes.AtomWildcard})
		assert.Equal(t, 0, ImplicitHydrogenCount(s, 0))
		assert.Equal(t, 0, CurrentValence(s, 0))
	})
}

func TestBondOrderSum_AromaticBonus(t *testing.T) {
	s := NewStructure("")
	for i := 0; i < 6; i++ {
		s.NewAtom("C")
	}
	for i := 0; i < 6; i++ {
		s.Connect(i, (i+1)%6, mtypes.BondOrderAromatic)
	}
	assert.Equal(t, 3, BondOrderSum(s, 0, false))
	assert.Equal(t, 1, ImplicitHydrogenCount(s, 0))
}

func TestHydrogenProperty_ExplicitOverridesImplicit(t *testing.T) {
	s := NewStructure("")
	n := s.NewAtom("N")
	n.SetExplicitHydrogens(1)

	assert.Equal(t, 3, ImplicitHydrogenCount(s, 0))
	assert.Equal(t, 1, HydrogenProperty(s, 0))
	assert.Equal(t, 1, CurrentValence(s, 0))
	assert.Equal(t, 3, ValenceWithoutHydrogens(s, 0))
}

func TestValence_BondedHydrogens(t *testing.T) {
	s := methaneWithHydrogens()

	assert.Equal(t, 4, BondOrderSum(s, 0, false))
	assert.Equal(t, 0, BondOrderSum(s, 0, true))
	assert.Equal(t, 0, ImplicitHydrogenCount(s, 0))
	assert.Equal(t, 4, CurrentValence(s, 0))
	assert.Equal(t, 4, ValenceWithoutHydrogens(s, 0))
}

//Personal.AI order the ending
