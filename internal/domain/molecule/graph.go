package molecule

import (
	"github.com/turtacn/molsmarts/pkg/errors"
	mtypes "github.com/turtacn/molsmarts/pkg/types/molecule"
)

// ─────────────────────────────────────────────────────────────────────────────
// Graph
// ─────────────────────────────────────────────────────────────────────────────

// Vertex is a graph node backed by one atom.
type Vertex struct {
	ID   int
	Atom *Atom

	edges []*Edge
	hs    []*Atom
}

// Edges returns the incident edges in adjacency order.
func (v *Vertex) Edges() []*Edge {
	return v.edges
}

// Degree returns the number of incident edges.
func (v *Vertex) Degree() int {
	return len(v.edges)
}

// FoldedHydrogens returns the hydrogen atoms absorbed into this vertex by the
// adapter.
func (v *Vertex) FoldedHydrogens() []*Atom {
	return v.hs
}

// NeighborOn returns the vertex across e, or nil if e is not incident to v.
func (v *Vertex) NeighborOn(e *Edge) *Vertex {
	switch v {
	case e.v1:
		return e.v2
	case e.v2:
		return e.v1
	}
	return nil
}

// Edge is a graph link backed by one bond.
type Edge struct {
	ID   int
	Bond *Bond

	v1, v2 *Vertex
}

// Vertices returns the endpoints of e in bond order.
func (e *Edge) Vertices() (*Vertex, *Vertex) {
	return e.v1, e.v2
}

// Graph is the vertex/edge view of a Structure used by the encoder.
type Graph struct {
	structure *Structure
	vertices  []*Vertex
	edges     []*Edge
	byAtom    map[int]*Vertex
}

// NewGraph returns an empty graph over s.
func NewGraph(s *Structure) *Graph {
	return &Graph{structure: s, byAtom: make(map[int]*Vertex)}
}

// Structure returns the connection table the graph was built from.
func (g *Graph) Structure() *Structure {
	return g.structure
}

// Vertices returns all vertices in insertion order.
func (g *Graph) Vertices() []*Vertex {
	return g.vertices
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []*Edge {
	return g.edges
}

// VertexOf returns the vertex backed by the atom with the given index.
func (g *Graph) VertexOf(atom int) (*Vertex, bool) {
	v, ok := g.byAtom[atom]
	return v, ok
}

// Contains reports whether v belongs to g.
func (g *Graph) Contains(v *Vertex) bool {
	return v != nil && v.ID >= 0 && v.ID < len(g.vertices) && g.vertices[v.ID] == v
}

// AddVertex appends a vertex for atom.
func (g *Graph) AddVertex(a *Atom) *Vertex {
	v := &Vertex{ID: len(g.vertices), Atom: a}
	g.vertices = append(g.vertices, v)
	g.byAtom[a.Index] = v
	return v
}

// AddEdge links two vertices of g.  Linking a vertex that is not part of g is
// a programming error reported as ErrCodeMoleculeGraphInvalid.
func (g *Graph) AddEdge(b *Bond, v1, v2 *Vertex) (*Edge, error) {
	if !g.Contains(v1) || !g.Contains(v2) {
		return nil, errors.Newf(errors.ErrCodeMoleculeGraphInvalid,
			"edge for bond %d references a vertex outside the graph", b.Index)
	}
	e := &Edge{ID: len(g.edges), Bond: b, v1: v1, v2: v2}
	g.edges = append(g.edges, e)
	v1.edges = append(v1.edges, e)
	v2.edges = append(v2.edges, e)
	return e, nil
}

// Validate checks that every edge joins two vertices of the graph.
func (g *Graph) Validate() error {
	for _, e := range g.edges {
		if !g.Contains(e.v1) || !g.Contains(e.v2) {
			return errors.Newf(errors.ErrCodeMoleculeGraphInvalid,
				"edge %d references a vertex outside the graph", e.ID)
		}
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// GraphAdapter
// ─────────────────────────────────────────────────────────────────────────────

// GraphAdapter converts a connection table into a Graph.
type GraphAdapter interface {
	BuildGraph(s *Structure) (*Graph, error)
}

// CtabGraphAdapter builds one vertex per atom and one edge per bond, in
// connection-table order.  Unless KeepHydrogens is set, plain terminal
// hydrogens are folded into their neighbour instead of becoming vertices.
type CtabGraphAdapter struct {
	KeepHydrogens bool
}

// NewGraphAdapter returns the default adapter.
func NewGraphAdapter() *CtabGraphAdapter {
	return &CtabGraphAdapter{}
}

// BuildGraph implements GraphAdapter.
func (a *CtabGraphAdapter) BuildGraph(s *Structure) (*Graph, error) {
	g := NewGraph(s)
	if s == nil {
		return g, nil
	}
	folded := make(map[int]int) // hydrogen atom -> host atom
	if !a.KeepHydrogens {
		for _, atom := range s.Atoms {
			if host, ok := foldableHydrogen(s, atom); ok {
				folded[atom.Index] = host
			}
		}
	}
	for _, atom := range s.Atoms {
		if _, skip := folded[atom.Index]; skip {
			continue
		}
		g.AddVertex(atom)
	}
	for _, atom := range s.Atoms {
		if host, ok := folded[atom.Index]; ok {
			v := g.byAtom[host]
			v.hs = append(v.hs, atom)
		}
	}
	for _, b := range s.Bonds {
		_, f1 := folded[b.Atom1]
		_, f2 := folded[b.Atom2]
		if f1 || f2 {
			continue
		}
		v1, ok1 := g.byAtom[b.Atom1]
		v2, ok2 := g.byAtom[b.Atom2]
		if !ok1 || !ok2 {
			return nil, errors.Newf(errors.ErrCodeMoleculeGraphInvalid,
				"bond %d references atom outside the structure", b.Index)
		}
		if _, err := g.AddEdge(b, v1, v2); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// foldableHydrogen reports whether atom is a plain hydrogen with a single
// covalent single bond to a non-hydrogen atom, and returns that atom.
func foldableHydrogen(s *Structure, atom *Atom) (int, bool) {
	if !atom.IsHydrogen() || atom.MassNumber != 0 || atom.Charge != 0 || atom.Radical != 0 ||
		atom.ExplicitHydrogens != nil || atom.Parity.IsDefined() || atom.Env != "" {
		return -1, false
	}
	bonds := s.BondsOf(atom.Index)
	if len(bonds) != 1 {
		return -1, false
	}
	b := bonds[0]
	if !b.IsCovalent() || b.Order != mtypes.BondOrderSingle || b.Parity.IsDefined() {
		return -1, false
	}
	host := b.Other(atom.Index)
	if host < 0 || host >= len(s.Atoms) || s.Atoms[host].IsHydrogen() {
		return -1, false
	}
	return host, true
}

//Personal.AI order the ending
