package molecule

import (
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Ring is a simple cycle: Atoms in walk order and the Bonds joining them.
type Ring struct {
	Atoms []int
	Bonds []int
}

// Size returns the number of atoms in the ring.
func (r Ring) Size() int {
	return len(r.Atoms)
}

// HasAtom reports whether atom lies on the ring.
func (r Ring) HasAtom(atom int) bool {
	return lo.Contains(r.Atoms, atom)
}

// HasBond reports whether bond lies on the ring.
func (r Ring) HasBond(bond int) bool {
	return lo.Contains(r.Bonds, bond)
}

func (r Ring) key() string {
	ids := append([]int(nil), r.Bonds...)
	sort.Ints(ids)
	return strings.Join(lo.Map(ids, func(id int, _ int) string { return strconv.Itoa(id) }), ",")
}

// FindRings returns, for every covalent bond that lies on a cycle, the
// smallest ring through it, without duplicates and in bond order of
// discovery.  Rings larger than maxSize are dropped; maxSize <= 0 means no
// limit.
func FindRings(s *Structure, maxSize int) []Ring {
	if s.IsEmpty() {
		return nil
	}
	seen := make(map[string]bool)
	var rings []Ring
	for _, b := range s.Bonds {
		if !b.IsCovalent() {
			continue
		}
		ring, ok := smallestRingThrough(s, b, maxSize)
		if !ok {
			continue
		}
		k := ring.key()
		if seen[k] {
			continue
		}
		seen[k] = true
		rings = append(rings, ring)
	}
	return rings
}

// smallestRingThrough runs a breadth-first search from one end of b to the
// other without crossing b.
func smallestRingThrough(s *Structure, b *Bond, maxSize int) (Ring, bool) {
	start, goal := b.Atom1, b.Atom2
	via := map[int]*Bond{start: nil}
	depth := map[int]int{start: 0}
	queue := []int{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == goal {
			break
		}
		if maxSize > 0 && depth[cur]+1 >= maxSize {
			continue
		}
		for _, nb := range s.BondsOf(cur) {
			if nb == b || !nb.IsCovalent() {
				continue
			}
			next := nb.Other(cur)
			if _, visited := via[next]; visited {
				continue
			}
			via[next] = nb
			depth[next] = depth[cur] + 1
			queue = append(queue, next)
		}
	}
	if _, reached := via[goal]; !reached {
		return Ring{}, false
	}
	ring := Ring{}
	for at := goal; at != start; {
		step := via[at]
		ring.Atoms = append(ring.Atoms, at)
		ring.Bonds = append(ring.Bonds, step.Index)
		at = step.Other(at)
	}
	ring.Atoms = append(ring.Atoms, start)
	ring.Bonds = append(ring.Bonds, b.Index)
	if maxSize > 0 && ring.Size() > maxSize {
		return Ring{}, false
	}
	return ring, true
}

//Personal.AI order the ending
