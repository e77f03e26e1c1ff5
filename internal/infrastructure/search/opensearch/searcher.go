package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/turtacn/molsmarts/internal/domain/pattern"
	"github.com/turtacn/molsmarts/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molsmarts/pkg/errors"
	"github.com/turtacn/molsmarts/pkg/types/common"
)

const (
	defaultPageSize = 20
	maxPageSize     = 500
)

// Search returns the patterns matching q, best match first and newest first
// among equals.
func (i *PatternIndex) Search(ctx context.Context, q pattern.SearchQuery) (*pattern.SearchResult, error) {
	if q.Limit <= 0 {
		q.Limit = defaultPageSize
	}
	if q.Limit > maxPageSize {
		q.Limit = maxPageSize
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	if q.MinAtoms > 0 && q.MaxAtoms > 0 && q.MinAtoms > q.MaxAtoms {
		return nil, errors.New(errors.ErrCodeValidation, "min_atoms exceeds max_atoms")
	}

	body, err := json.Marshal(buildQueryDSL(q))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal query")
	}
	req := opensearchapi.SearchRequest{
		Index: []string{i.client.Index()},
		Body:  bytes.NewReader(body),
	}

	start := time.Now()
	resp, err := req.Do(ctx, i.client.client)
	if err != nil {
		if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, errors.New(errors.ErrCodeTimeout, "search request timed out")
		}
		return nil, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "search request failed")
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return nil, handleErrorResponse(resp, ErrSearchFailed)
	}

	var parsed struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source patternDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode search response")
	}

	result := &pattern.SearchResult{
		Patterns: make([]*pattern.Pattern, 0, len(parsed.Hits.Hits)),
		Total:    parsed.Hits.Total.Value,
	}
	for _, h := range parsed.Hits.Hits {
		result.Patterns = append(result.Patterns, h.Source.toPattern())
	}

	i.logger.Debug("pattern search executed",
		logging.String("text", q.Text),
		logging.Int64("total", result.Total),
		logging.Duration("took", time.Since(start)),
	)
	return result, nil
}

// buildQueryDSL matches the text against the name, the whole SMARTS and its
// fragments, filtered by the atom bounds.
func buildQueryDSL(q pattern.SearchQuery) map[string]interface{} {
	boolQuery := map[string]interface{}{}
	if q.Text != "" {
		boolQuery["must"] = []interface{}{
			map[string]interface{}{
				"bool": map[string]interface{}{
					"should": []interface{}{
						map[string]interface{}{"term": map[string]interface{}{
							"smarts": map[string]interface{}{"value": q.Text, "boost": 4},
						}},
						map[string]interface{}{"match": map[string]interface{}{
							"name": map[string]interface{}{"query": q.Text, "boost": 2},
						}},
						map[string]interface{}{"match": map[string]interface{}{
							"smarts.fragments": map[string]interface{}{"query": q.Text, "operator": "and"},
						}},
					},
					"minimum_should_match": 1,
				},
			},
		}
	} else {
		boolQuery["must"] = []interface{}{map[string]interface{}{"match_all": map[string]interface{}{}}}
	}

	if q.MinAtoms > 0 || q.MaxAtoms > 0 {
		atoms := map[string]interface{}{}
		if q.MinAtoms > 0 {
			atoms["gte"] = q.MinAtoms
		}
		if q.MaxAtoms > 0 {
			atoms["lte"] = q.MaxAtoms
		}
		boolQuery["filter"] = []interface{}{
			map[string]interface{}{"range": map[string]interface{}{"atom_count": atoms}},
		}
	}

	return map[string]interface{}{
		"from":             q.Offset,
		"size":             q.Limit,
		"track_total_hits": true,
		"query":            map[string]interface{}{"bool": boolQuery},
		"sort": []interface{}{
			map[string]interface{}{"_score": "desc"},
			map[string]interface{}{"created_at": "desc"},
		},
	}
}

func (d patternDocument) toPattern() *pattern.Pattern {
	p := &pattern.Pattern{
		ID:           common.ID(d.ID),
		Name:         d.Name,
		SMARTS:       d.SMARTS,
		MolfileHash:  d.MolfileHash,
		OptionsKey:   d.OptionsKey,
		AtomCount:    d.AtomCount,
		BondCount:    d.BondCount,
		Components:   d.Components,
		RingClosures: d.RingClosures,
	}
	if t, err := time.Parse(time.RFC3339Nano, d.CreatedAt); err == nil {
		p.CreatedAt = t.UTC()
	}
	return p
}

//Personal.AI order the ending
