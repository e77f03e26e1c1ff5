package smarts

import (
	"strings"

	"github.com/turtacn/molsmarts/internal/domain/molecule"
	"github.com/turtacn/molsmarts/pkg/errors"
)

// serializer writes one spanning tree.  Ring closures are numbered through
// a registry shared by all components of a write.
type serializer struct {
	tree  *SpanningTree
	rings *RingClosureRegistry
	atoms *AtomFormatter
	bonds *BondFormatter
}

type serialFrame struct {
	vertex *molecule.Vertex
	in     *molecule.Edge
	cursor int

	rings      []string
	ringNbrs   []*molecule.Vertex
	branches   []string
	branchNbrs []*molecule.Vertex
	chain      string
	chainNbr   *molecule.Vertex

	pending *molecule.Edge
}

// write walks the tree from its root.  Incident edges are examined in
// reverse adjacency order; tree edges are descended into at once, so ring
// numbers follow the order in which ring edges are met during the walk.
func (s *serializer) write() (string, error) {
	root := s.tree.Root()
	seen := map[int]bool{root.ID: true}
	stack := []*serialFrame{{vertex: root, cursor: root.Degree() - 1}}
	for {
		top := stack[len(stack)-1]
		if top.cursor >= 0 {
			e := top.vertex.Edges()[top.cursor]
			top.cursor--
			if e == top.in {
				continue
			}
			nb := top.vertex.NeighborOn(e)
			if nb == nil {
				return "", errors.Newf(errors.ErrCodeMoleculeGraphInvalid,
					"edge %d is not incident to vertex %d", e.ID, top.vertex.ID)
			}
			if s.tree.HasEdge(e) {
				if seen[nb.ID] {
					continue
				}
				seen[nb.ID] = true
				top.pending = e
				stack = append(stack, &serialFrame{vertex: nb, in: e, cursor: nb.Degree() - 1})
				continue
			}
			n, err := s.rings.GetOrCreate(e)
			if err != nil {
				return "", err
			}
			top.rings = append(top.rings, s.bonds.Format(e.Bond)+FormatRingClosure(n))
			top.ringNbrs = append(top.ringNbrs, nb)
			continue
		}

		out := s.compose(top)
		stack = stack[:len(stack)-1]
		if len(stack) == 0 {
			return out, nil
		}
		parent := stack[len(stack)-1]
		if s.tree.OnMainChain(parent.pending) {
			parent.chain = out
			parent.chainNbr = top.vertex
		} else {
			parent.branches = append(parent.branches, out)
			parent.branchNbrs = append(parent.branchNbrs, top.vertex)
		}
	}
}

// compose renders: incoming bond, atom, ring closures, parenthesised
// branches, chain continuation.  Without a main-chain child the first branch
// becomes the continuation.
func (s *serializer) compose(fr *serialFrame) string {
	branches, branchNbrs := fr.branches, fr.branchNbrs
	chain, chainNbr := fr.chain, fr.chainNbr
	if chainNbr == nil && len(branches) > 0 {
		chain, chainNbr = branches[0], branchNbrs[0]
		branches, branchNbrs = branches[1:], branchNbrs[1:]
	}

	next := make([]*molecule.Vertex, 0, len(fr.ringNbrs)+len(branchNbrs)+1)
	next = append(next, fr.ringNbrs...)
	next = append(next, branchNbrs...)
	if chainNbr != nil {
		next = append(next, chainNbr)
	}

	var sb strings.Builder
	var prev *molecule.Vertex
	if fr.in != nil {
		prev = fr.vertex.NeighborOn(fr.in)
		sb.WriteString(s.bonds.Format(fr.in.Bond))
	}
	sb.WriteString(s.atoms.Format(fr.vertex, prev, next))
	for _, r := range fr.rings {
		sb.WriteString(r)
	}
	for _, b := range branches {
		sb.WriteByte('(')
		sb.WriteString(b)
		sb.WriteByte(')')
	}
	sb.WriteString(chain)
	return sb.String()
}

//Personal.AI order the ending
