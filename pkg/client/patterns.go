package client

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 500
)

// Pattern is a stored SMARTS pattern.
type Pattern struct {
	ID           string    `json:"id"`
	Name         string    `json:"name,omitempty"`
	SMARTS       string    `json:"smarts"`
	MolfileHash  string    `json:"molfile_hash"`
	OptionsKey   string    `json:"options_key"`
	AtomCount    int       `json:"atom_count"`
	BondCount    int       `json:"bond_count"`
	Components   int       `json:"components"`
	RingClosures int       `json:"ring_closures"`
	CreatedAt    time.Time `json:"created_at"`
}

// PatternList is one page of patterns, newest first.
type PatternList struct {
	Patterns []*Pattern `json:"patterns"`
	Total    int64      `json:"total"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}

// HasMore reports whether another page follows.
func (l *PatternList) HasMore() bool {
	return int64(l.Offset+len(l.Patterns)) < l.Total
}

// PatternsClient reads stored patterns.
type PatternsClient struct {
	client *Client
}

func (pc *PatternsClient) Get(ctx context.Context, id string) (*Pattern, error) {
	if id == "" {
		return nil, invalidArg("pattern id is required")
	}
	var p Pattern
	if err := pc.client.get(ctx, "/api/v1/patterns/"+id, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns one page.  limit is clamped to [1, MaxPageSize] and
// defaults to DefaultPageSize.
func (pc *PatternsClient) List(ctx context.Context, limit, offset int) (*PatternList, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		return nil, invalidArg("offset must not be negative")
	}
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var out PatternList
	if err := pc.client.get(ctx, "/api/v1/patterns", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchOptions narrows a pattern search.  Zero atom bounds are ignored.
type SearchOptions struct {
	Query    string
	MinAtoms int
	MaxAtoms int
	Limit    int
	Offset   int
}

// Search queries the pattern index by name or SMARTS fragment.  The server
// answers 501 when no index is configured.
func (pc *PatternsClient) Search(ctx context.Context, opts SearchOptions) (*PatternList, error) {
	if opts.Offset < 0 {
		return nil, invalidArg("offset must not be negative")
	}
	if opts.MinAtoms < 0 || opts.MaxAtoms < 0 {
		return nil, invalidArg("atom bounds must not be negative")
	}
	if opts.MaxAtoms > 0 && opts.MinAtoms > opts.MaxAtoms {
		return nil, invalidArg("min atoms exceeds max atoms")
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	q := url.Values{}
	if opts.Query != "" {
		q.Set("q", opts.Query)
	}
	if opts.MinAtoms > 0 {
		q.Set("min_atoms", strconv.Itoa(opts.MinAtoms))
	}
	if opts.MaxAtoms > 0 {
		q.Set("max_atoms", strconv.Itoa(opts.MaxAtoms))
	}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(opts.Offset))

	var out PatternList
	if err := pc.client.get(ctx, "/api/v1/patterns/search", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

//Personal.AI order the ending
