package molecule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mtypes "github.com/turtacn/molsmarts/pkg/types/molecule"
)

func TestFindRings(t *testing.T) {
	t.Run("chain has no rings", func(t *testing.T) {
		s := NewStructure("")
		s.NewAtom("C")
		s.NewAtom("C")
		s.NewAtom("O")
		s.Connect(0, 1, mtypes.BondOrderSingle)
		s.Connect(1, 2, mtypes.BondOrderSingle)
		assert.Empty(t, FindRings(s, 0))
	})

	t.Run("benzene", func(t *testing.T) {
		rings := FindRings(kekuleBenzene(), 0)
		require.Len(t, rings, 1)
		assert.Equal(t, 6, rings[0].Size())
		assert.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5}, rings[0].Atoms)
		assert.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5}, rings[0].Bonds)
		assert.True(t, rings[0].HasBond(5))
	})

	t.Run("naphthalene yields the two six rings", func(t *testing.T) {
		rings := FindRings(naphthalene(1), 0)
		require.Len(t, rings, 2)
		assert.Equal(t, 6, rings[0].Size())
		assert.Equal(t, 6, rings[1].Size())
		assert.True(t, rings[0].HasAtom(4) && rings[0].HasAtom(9))
		assert.True(t, rings[1].HasAtom(4) && rings[1].HasAtom(9))
	})

	t.Run("max size filters large rings", func(t *testing.T) {
		s := ringOf([]string{"C", "C", "C", "C", "C", "C", "C", "C", "C", "C"})
		assert.Empty(t, FindRings(s, 8))
		assert.Len(t, FindRings(s, 0), 1)
	})

	t.Run("non covalent bonds do not close rings", func(t *testing.T) {
		s := ringOf([]string{"C", "C", "C"})
		s.Bonds[2].Type = mtypes.BondTypeIonic
		assert.Empty(t, FindRings(s, 0))
	})
}

//Personal.AI order the ending
