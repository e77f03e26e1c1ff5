package molecule

import (
	mtypes "github.com/turtacn/molsmarts/pkg/types/molecule"
)

// ringOf builds a ring of symbols; doubles lists the bond positions (bond i
// joins atom i and i+1 mod n) that are double.
func ringOf(symbols []string, doubles ...int) *Structure {
	s := NewStructure("ring")
	for _, sym := range symbols {
		s.NewAtom(sym)
	}
	isDouble := make(map[int]bool)
	for _, d := range doubles {
		isDouble[d] = true
	}
	for i := range symbols {
		order := mtypes.BondOrderSingle
		if isDouble[i] {
			order = mtypes.BondOrderDouble
		}
		s.Connect(i, (i+1)%len(symbols), order)
	}
	return s
}

func kekuleBenzene() *Structure {
	return ringOf([]string{"C", "C", "C", "C", "C", "C"}, 0, 2, 4)
}

// naphthalene atoms: C1..C4, C4a, C5..C8, C8a as indices 0..9.
func naphthalene(form int) *Structure {
	s := NewStructure("naphthalene")
	for i := 0; i < 10; i++ {
		s.NewAtom("C")
	}
	pairs := [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 4}, {4, 5}, {5, 6}, {6, 7}, {7, 8}, {8, 9}, {9, 0}, {4, 9}}
	var doubles map[[2]int]bool
	if form == 1 {
		doubles = map[[2]int]bool{{0, 1}: true, {2, 3}: true, {4, 9}: true, {5, 6}: true, {7, 8}: true}
	} else {
		doubles = map[[2]int]bool{{9, 0}: true, {1, 2}: true, {3, 4}: true, {5, 6}: true, {7, 8}: true}
	}
	for _, p := range pairs {
		order := mtypes.BondOrderSingle
		if doubles[p] {
			order = mtypes.BondOrderDouble
		}
		s.Connect(p[0], p[1], order)
	}
	return s
}

func methaneWithHydrogens() *Structure {
	s := NewStructure("methane")
	s.NewAtom("C")
	for i := 0; i < 4; i++ {
		h := s.NewAtom("H")
		s.Connect(0, h.Index, mtypes.BondOrderSingle)
	}
	return s
}

//Personal.AI order the ending
