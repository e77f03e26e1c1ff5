package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/turtacn/molsmarts/internal/domain/pattern"
	"github.com/turtacn/molsmarts/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molsmarts/pkg/errors"
)

var (
	ErrIndexCreationFailed = errors.New(errors.ErrCodeInternal, "index creation failed")
	ErrDocumentIndexFailed = errors.New(errors.ErrCodeInternal, "document index failed")
	ErrDocumentNotFound    = errors.New(errors.ErrCodeNotFound, "document not found")
	ErrSearchFailed        = errors.New(errors.ErrCodeInternal, "search failed")
)

// PatternIndex stores patterns as documents keyed by pattern id.
type PatternIndex struct {
	client *Client
	logger logging.Logger
}

// NewPatternIndex returns the index named by the client configuration.
func NewPatternIndex(client *Client) *PatternIndex {
	return &PatternIndex{client: client, logger: client.logger}
}

var _ pattern.SearchIndex = (*PatternIndex)(nil)

// patternDocument is the indexed form of a pattern.  The smarts.fragments
// subfield splits the SMARTS into ngrams so a fragment matches anywhere.
type patternDocument struct {
	ID           string `json:"id"`
	Name         string `json:"name,omitempty"`
	SMARTS       string `json:"smarts"`
	MolfileHash  string `json:"molfile_hash"`
	OptionsKey   string `json:"options_key"`
	AtomCount    int    `json:"atom_count"`
	BondCount    int    `json:"bond_count"`
	Components   int    `json:"components"`
	RingClosures int    `json:"ring_closures"`
	CreatedAt    string `json:"created_at"`
}

// PatternIndexMapping is the index body used by EnsureIndex.
func PatternIndexMapping() map[string]interface{} {
	return map[string]interface{}{
		"settings": map[string]interface{}{
			"index.max_ngram_diff": 8,
			"analysis": map[string]interface{}{
				"tokenizer": map[string]interface{}{
					"smarts_ngram": map[string]interface{}{
						"type":     "ngram",
						"min_gram": 2,
						"max_gram": 10,
					},
				},
				"analyzer": map[string]interface{}{
					"smarts_fragment": map[string]interface{}{
						"type":      "custom",
						"tokenizer": "smarts_ngram",
					},
				},
			},
		},
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"id":   map[string]interface{}{"type": "keyword"},
				"name": map[string]interface{}{"type": "text"},
				"smarts": map[string]interface{}{
					"type": "keyword",
					"fields": map[string]interface{}{
						"fragments": map[string]interface{}{
							"type":     "text",
							"analyzer": "smarts_fragment",
						},
					},
				},
				"molfile_hash":  map[string]interface{}{"type": "keyword"},
				"options_key":   map[string]interface{}{"type": "keyword"},
				"atom_count":    map[string]interface{}{"type": "integer"},
				"bond_count":    map[string]interface{}{"type": "integer"},
				"components":    map[string]interface{}{"type": "integer"},
				"ring_closures": map[string]interface{}{"type": "integer"},
				"created_at":    map[string]interface{}{"type": "date"},
			},
		},
	}
}

// EnsureIndex creates the index when it does not exist.
func (i *PatternIndex) EnsureIndex(ctx context.Context) error {
	name := i.client.Index()
	exists := opensearchapi.IndicesExistsRequest{Index: []string{name}}
	resp, err := exists.Do(ctx, i.client.client)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to check index existence")
	}
	resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
	default:
		return errors.Newf(errors.ErrCodeInternal, "index existence check returned %d", resp.StatusCode)
	}

	body, err := json.Marshal(PatternIndexMapping())
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal index mapping")
	}
	create := opensearchapi.IndicesCreateRequest{Index: name, Body: bytes.NewReader(body)}
	resp, err = create.Do(ctx, i.client.client)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to create index")
	}
	defer resp.Body.Close()
	if resp.IsError() {
		appErr := handleErrorResponse(resp, ErrIndexCreationFailed)
		// Another replica may have created it in between.
		if resp.StatusCode == http.StatusBadRequest && strings.HasPrefix(appErr.Detail, "resource_already_exists_exception") {
			return nil
		}
		return appErr
	}
	i.logger.Info("index created", logging.String("index", name))
	return nil
}

// Index writes p, replacing any document with the same id.
func (i *PatternIndex) Index(ctx context.Context, p *pattern.Pattern) error {
	doc := patternDocument{
		ID:           string(p.ID),
		Name:         p.Name,
		SMARTS:       p.SMARTS,
		MolfileHash:  p.MolfileHash,
		OptionsKey:   p.OptionsKey,
		AtomCount:    p.AtomCount,
		BondCount:    p.BondCount,
		Components:   p.Components,
		RingClosures: p.RingClosures,
		CreatedAt:    p.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal pattern document")
	}

	req := opensearchapi.IndexRequest{
		Index:      i.client.Index(),
		DocumentID: doc.ID,
		Body:       bytes.NewReader(body),
		Refresh:    i.client.config.Refresh,
	}
	resp, err := req.Do(ctx, i.client.client)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "index request failed")
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return handleErrorResponse(resp, ErrDocumentIndexFailed)
	}
	return nil
}

// Delete removes the document of the pattern with id.
func (i *PatternIndex) Delete(ctx context.Context, id string) error {
	req := opensearchapi.DeleteRequest{
		Index:      i.client.Index(),
		DocumentID: id,
		Refresh:    i.client.config.Refresh,
	}
	resp, err := req.Do(ctx, i.client.client)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "delete request failed")
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return ErrDocumentNotFound
	}
	if resp.IsError() {
		return handleErrorResponse(resp, errors.New(errors.ErrCodeInternal, "delete document failed"))
	}
	return nil
}

// handleErrorResponse reads the error body of resp into an error with the
// code of base.
func handleErrorResponse(resp *opensearchapi.Response, base *errors.AppError) *errors.AppError {
	var errResp struct {
		Error struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	}
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &errResp); err == nil && errResp.Error.Type != "" {
		return base.WithDetail(errResp.Error.Type + ": " + errResp.Error.Reason)
	}
	return base.WithDetail(resp.Status())
}

//Personal.AI order the ending
