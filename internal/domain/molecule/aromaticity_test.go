package molecule

import (
	"testing"

	"github.com/stretchr/testify/assert"

	mtypes "github.com/turtacn/molsmarts/pkg/types/molecule"
)

func TestHuckelPerceiver(t *testing.T) {
	cases := []struct {
		name     string
		build    func() *Structure
		aromatic []int
	}{
		{"kekule benzene", kekuleBenzene, []int{0, 1, 2, 3, 4, 5}},
		{"cyclohexane", func() *Structure {
			return ringOf([]string{"C", "C", "C", "C", "C", "C"})
		}, nil},
		{"pyridine", func() *Structure {
			return ringOf([]string{"N", "C", "C", "C", "C", "C"}, 0, 2, 4)
		}, []int{0, 1, 2, 3, 4, 5}},
		{"pyrrole", func() *Structure {
			return ringOf([]string{"N", "C", "C", "C", "C"}, 1, 3)
		}, []int{0, 1, 2, 3, 4}},
		{"furan", func() *Structure {
			return ringOf([]string{"O", "C", "C", "C", "C"}, 1, 3)
		}, []int{0, 1, 2, 3, 4}},
		{"cyclopentadiene", func() *Structure {
			return ringOf([]string{"C", "C", "C", "C", "C"}, 1, 3)
		}, nil},
		{"cyclopentadienyl anion", func() *Structure {
			s := ringOf([]string{"C", "C", "C", "C", "C"}, 1, 3)
			s.Atoms[0].Charge = -1
			return s
		}, []int{0, 1, 2, 3, 4}},
		{"cyclooctatetraene", func() *Structure {
			return ringOf([]string{"C", "C", "C", "C", "C", "C", "C", "C"}, 0, 2, 4, 6)
		}, nil},
		{"naphthalene form one", func() *Structure { return naphthalene(1) }, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}},
		{"naphthalene form two", func() *Structure { return naphthalene(2) }, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}},
		{"declared aromatic bonds", func() *Structure {
			s := NewStructure("")
			for i := 0; i < 5; i++ {
				s.NewAtom("C")
			}
			for i := 0; i < 5; i++ {
				s.Connect(i, (i+1)%5, mtypes.BondOrderAromatic)
			}
			return s
		}, []int{0, 1, 2, 3, 4}},
	}

	p := NewAromaticityPerceiver()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := tc.build()
			set := p.Perceive(s)
			var got []int
			for _, a := range s.Atoms {
				if set.HasAtom(a.Index) {
					got = append(got, a.Index)
				}
			}
			assert.Equal(t, tc.aromatic, got)
			assert.Equal(t, len(tc.aromatic) == 0, set.IsEmpty())
		})
	}
}

func TestHuckelPerceiver_ExocyclicCarbonylBreaksAromaticity(t *testing.T) {
	// cyclohexa-2,5-dienone: the carbonyl carbon contributes no electrons.
	s := ringOf([]string{"C", "C", "C", "C", "C", "C"}, 1, 4)
	o := s.NewAtom("O")
	s.Connect(0, o.Index, mtypes.BondOrderDouble)

	set := NewAromaticityPerceiver().Perceive(s)
	assert.True(t, set.IsEmpty())
}

func TestAromaticSet_NilSafe(t *testing.T) {
	var set *AromaticSet
	assert.False(t, set.HasAtom(0))
	assert.False(t, set.HasBond(0))
	assert.True(t, set.IsEmpty())
	assert.True(t, NewAromaticityPerceiver().Perceive(nil).IsEmpty())
}

//Personal.AI order the ending
