package smarts

import (
	"github.com/turtacn/molsmarts/internal/domain/molecule"
)

// Path is a simple path through a spanning tree.
type Path struct {
	Vertices []*molecule.Vertex
	Edges    []*molecule.Edge
	Length   int
}

// SpanningTree is the depth-first spanning tree of one connected component
// together with the longest root path found while building it, which the
// serializer writes as the main chain.
type SpanningTree struct {
	Vertices    []*molecule.Vertex
	Edges       []*molecule.Edge
	LongestPath Path

	treeEdges  map[int]bool
	chainEdges map[int]bool
}

// Root returns the vertex the serializer starts from.
func (t *SpanningTree) Root() *molecule.Vertex {
	return t.LongestPath.Vertices[0]
}

// HasEdge reports whether e belongs to the tree.  Edges of the component
// outside the tree are ring closures.
func (t *SpanningTree) HasEdge(e *molecule.Edge) bool {
	return t.treeEdges[e.ID]
}

// OnMainChain reports whether e lies on the longest path.
func (t *SpanningTree) OnMainChain(e *molecule.Edge) bool {
	return t.chainEdges[e.ID]
}

// pathNode is one link of a longest path under construction.  Paths grow at
// the head as the traversal unwinds, so they are kept as linked lists.
type pathNode struct {
	vertex *molecule.Vertex
	edge   *molecule.Edge // edge to next, nil at the tail
	next   *pathNode
	length int
}

type forestFrame struct {
	vertex *molecule.Vertex
	cursor int // next incident edge to examine, counting down

	best     *pathNode
	bestEdge *molecule.Edge
	pending  *molecule.Edge // edge to the child currently being explored
}

// BuildSpanningForest partitions g into connected components and returns one
// spanning tree per component.  The component of start is built first; every
// later component starts at its first vertex in graph order.  A nil start,
// or one that is not in g, falls back to graph order as well.
//
// Incident edges are examined in reverse adjacency order.  Among the children
// of a vertex, the one with the strictly longest path wins, except that a
// zero-length best is always replaced by a later child.  This single pass is a
// heuristic, not a true longest-path search.
func BuildSpanningForest(g *molecule.Graph, start *molecule.Vertex) []*SpanningTree {
	vertices := g.Vertices()
	if len(vertices) == 0 {
		return nil
	}
	visited := make(map[int]bool, len(vertices))
	var forest []*SpanningTree

	next := 0
	for {
		var root *molecule.Vertex
		if start != nil && g.Contains(start) && !visited[start.ID] {
			root = start
		} else {
			for next < len(vertices) && visited[vertices[next].ID] {
				next++
			}
			if next == len(vertices) {
				break
			}
			root = vertices[next]
		}
		forest = append(forest, buildTree(root, visited))
	}
	return forest
}

func buildTree(root *molecule.Vertex, visited map[int]bool) *SpanningTree {
	tree := &SpanningTree{
		treeEdges:  make(map[int]bool),
		chainEdges: make(map[int]bool),
	}
	visited[root.ID] = true
	tree.Vertices = append(tree.Vertices, root)

	stack := []*forestFrame{{vertex: root, cursor: root.Degree() - 1}}
	var finished *pathNode
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.cursor >= 0 {
			e := top.vertex.Edges()[top.cursor]
			top.cursor--
			nb := top.vertex.NeighborOn(e)
			if nb == nil || visited[nb.ID] {
				continue
			}
			visited[nb.ID] = true
			tree.Vertices = append(tree.Vertices, nb)
			tree.Edges = append(tree.Edges, e)
			tree.treeEdges[e.ID] = true
			top.pending = e
			stack = append(stack, &forestFrame{vertex: nb, cursor: nb.Degree() - 1})
			continue
		}

		node := &pathNode{vertex: top.vertex}
		if top.best != nil {
			node.edge = top.bestEdge
			node.next = top.best
			node.length = top.best.length + 1
		}
		stack = stack[:len(stack)-1]
		if len(stack) == 0 {
			finished = node
			break
		}
		parent := stack[len(stack)-1]
		if parent.best == nil || parent.best.length == 0 || node.length > parent.best.length {
			parent.best = node
			parent.bestEdge = parent.pending
		}
	}

	for n := finished; n != nil; n = n.next {
		tree.LongestPath.Vertices = append(tree.LongestPath.Vertices, n.vertex)
		if n.edge != nil {
			tree.LongestPath.Edges = append(tree.LongestPath.Edges, n.edge)
			tree.chainEdges[n.edge.ID] = true
		}
	}
	tree.LongestPath.Length = len(tree.LongestPath.Edges)
	return tree
}

//Personal.AI order the ending
