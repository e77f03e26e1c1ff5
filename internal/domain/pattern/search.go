package pattern

import (
	"context"
)

// SearchQuery selects stored patterns.  Text matches words of the name or a
// fragment of the SMARTS.  Zero atom bounds are open.
type SearchQuery struct {
	Text     string
	MinAtoms int
	MaxAtoms int
	Limit    int
	Offset   int
}

// SearchResult is one page of matches, best first.
type SearchResult struct {
	Patterns []*Pattern
	Total    int64
}

// SearchIndex is a secondary full-text index over stored patterns.  The
// repository stays the source of truth.
type SearchIndex interface {
	Index(ctx context.Context, p *Pattern) error
	Search(ctx context.Context, q SearchQuery) (*SearchResult, error)
}

//Personal.AI order the ending
