// Package smarts encodes molecular graphs as SMARTS strings.
//
// A write builds a depth-first spanning forest over the graph, resolves
// double-bond direction symbols once for the whole structure, and then walks
// each tree from the head of its longest path.  Components are joined with
// ".".  All traversal state lives in per-call tables, so a Writer may be
// shared between goroutines.
package smarts

import (
	"strings"

	"github.com/turtacn/molsmarts/internal/domain/molecule"
	"github.com/turtacn/molsmarts/pkg/errors"
)

// Result is the outcome of one encode.
type Result struct {
	SMARTS       string `json:"smarts"`
	Components   int    `json:"components"`
	RingClosures int    `json:"ring_closures"`
}

// Writer encodes structures.
type Writer struct {
	opts      Options
	perceiver molecule.AromaticityPerceiver
	adapter   molecule.GraphAdapter
}

// Option configures a Writer.
type Option func(*Writer)

// WithOptions sets the encoder options.
func WithOptions(opts Options) Option {
	return func(w *Writer) {
		w.opts = opts
	}
}

// WithAromaticityPerceiver replaces the default Hückel perceiver.  A nil
// perceiver disables aromatic output.
func WithAromaticityPerceiver(p molecule.AromaticityPerceiver) Option {
	return func(w *Writer) {
		w.perceiver = p
	}
}

// WithGraphAdapter replaces the default connection-table adapter.
func WithGraphAdapter(a molecule.GraphAdapter) Option {
	return func(w *Writer) {
		if a != nil {
			w.adapter = a
		}
	}
}

// NewWriter returns a Writer with default options, the Hückel aromaticity
// perceiver and the hydrogen-folding graph adapter.
func NewWriter(opts ...Option) *Writer {
	w := &Writer{
		opts:      DefaultOptions(),
		perceiver: molecule.NewAromaticityPerceiver(),
		adapter:   molecule.NewGraphAdapter(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Options returns the options of w.
func (w *Writer) Options() Options {
	return w.opts
}

// Write encodes s.  An empty or nil structure yields "".
func (w *Writer) Write(s *molecule.Structure) (string, error) {
	res, err := w.Encode(s)
	if err != nil {
		return "", err
	}
	return res.SMARTS, nil
}

// Encode encodes s and reports the component and ring-closure counts.
func (w *Writer) Encode(s *molecule.Structure) (*Result, error) {
	if s.IsEmpty() {
		return &Result{}, nil
	}
	g, err := w.adapter.BuildGraph(s)
	if err != nil {
		return nil, err
	}
	var aromatic *molecule.AromaticSet
	if !w.opts.SkipAromaticity && w.perceiver != nil {
		aromatic = w.perceiver.Perceive(s)
	}
	return w.encodeGraph(g, aromatic)
}

// WriteGraph encodes an already built graph with the given aromaticity data,
// which may be nil.
func (w *Writer) WriteGraph(g *molecule.Graph, aromatic *molecule.AromaticSet) (string, error) {
	res, err := w.encodeGraph(g, aromatic)
	if err != nil {
		return "", err
	}
	return res.SMARTS, nil
}

func (w *Writer) encodeGraph(g *molecule.Graph, aromatic *molecule.AromaticSet) (*Result, error) {
	if g == nil || len(g.Vertices()) == 0 {
		return &Result{}, nil
	}
	s := g.Structure()
	if s == nil {
		return nil, errors.New(errors.ErrCodeMoleculeGraphInvalid, "graph has no connection table")
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	directions := ResolveStereoBonds(s, w.opts)
	vertices := g.Vertices()
	forest := BuildSpanningForest(g, vertices[len(vertices)-1])

	rings := NewRingClosureRegistry(w.opts.StrictRingClosures)
	atoms := NewAtomFormatter(s, aromatic, w.opts)
	bonds := NewBondFormatter(aromatic, directions)

	parts := make([]string, 0, len(forest))
	for _, tree := range forest {
		ser := &serializer{tree: tree, rings: rings, atoms: atoms, bonds: bonds}
		part, err := ser.write()
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	return &Result{
		SMARTS:       strings.Join(parts, BondDisconnected),
		Components:   len(forest),
		RingClosures: rings.Len(),
	}, nil
}

// Encode encodes s with a default Writer using opts.
func Encode(s *molecule.Structure, opts Options) (string, error) {
	return NewWriter(WithOptions(opts)).Write(s)
}

//Personal.AI order the ending
