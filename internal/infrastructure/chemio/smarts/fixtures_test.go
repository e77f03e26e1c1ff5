package smarts

import (
	"github.com/turtacn/molsmarts/internal/domain/molecule"
	mtypes "github.com/turtacn/molsmarts/pkg/types/molecule"
)

// chain builds atoms joined by the given orders; orders has one entry fewer
// than symbols.
func chain(symbols []string, orders ...mtypes.BondOrder) *molecule.Structure {
	s := molecule.NewStructure("")
	for _, sym := range symbols {
		s.NewAtom(sym)
	}
	for i := 0; i+1 < len(symbols); i++ {
		order := mtypes.BondOrderSingle
		if i < len(orders) {
			order = orders[i]
		}
		s.Connect(i, i+1, order)
	}
	return s
}

// ring builds a cycle; bond i joins atoms i and i+1 mod n and is double when
// listed in doubles.
func ring(symbols []string, doubles ...int) *molecule.Structure {
	s := molecule.NewStructure("")
	for _, sym := range symbols {
		s.NewAtom(sym)
	}
	isDouble := make(map[int]bool, len(doubles))
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

func benzene() *molecule.Structure {
	return ring([]string{"C", "C", "C", "C", "C", "C"}, 0, 2, 4)
}

func naphthalene() *molecule.Structure {
	s := molecule.NewStructure("naphthalene")
	for i := 0; i < 10; i++ {
		s.NewAtom("C")
	}
	pairs := [][3]int{
		{0, 1, 2}, {1, 2, 1}, {2, 3, 2}, {3, 4, 1}, {4, 5, 1},
		{5, 6, 2}, {6, 7, 1}, {7, 8, 2}, {8, 9, 1}, {9, 0, 1}, {4, 9, 2},
	}
	for _, p := range pairs {
		order := mtypes.BondOrderSingle
		if p[2] == 2 {
			order = mtypes.BondOrderDouble
		}
		s.Connect(p[0], p[1], order)
	}
	return s
}

// isobutane: a central carbon (0) with three methyls.
func isobutane() *molecule.Structure {
	s := molecule.NewStructure("isobutane")
	s.NewAtom("C")
	for i := 0; i < 3; i++ {
		c := s.NewAtom("C")
		s.Connect(0, c.Index, mtypes.BondOrderSingle)
	}
	return s
}

// halomethane: carbon 0 bonded to F, Cl and Br, with one implicit
// hydrogen, carrying the given atom parity.
func halomethane(parity mtypes.StereoParity) *molecule.Structure {
	s := molecule.NewStructure("")
	s.AddAtom(&molecule.Atom{Symbol: "C", Parity: parity})
	for _, sym := range []string{"F", "Cl", "Br"} {
		a := s.NewAtom(sym)
		s.Connect(0, a.Index, mtypes.BondOrderSingle)
	}
	return s
}

// difluoroethene: F0-C1=C2-F3 with the given double-bond parity.
func difluoroethene(parity mtypes.StereoParity) *molecule.Structure {
	s := chain([]string{"F", "C", "C", "F"}, mtypes.BondOrderSingle, mtypes.BondOrderDouble, mtypes.BondOrderSingle)
	s.Bonds[1].Parity = parity
	return s
}

func mustGraph(s *molecule.Structure) *molecule.Graph {
	g, err := molecule.NewGraphAdapter().BuildGraph(s)
	if err != nil {
		panic(err)
	}
	return g
}

func vertexIDs(vs []*molecule.Vertex) []int {
	ids := make([]int, 0, len(vs))
	for _, v := range vs {
		ids = append(ids, v.ID)
	}
	return ids
}

//Personal.AI order the ending
