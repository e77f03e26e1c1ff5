package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Options are the encoder flags.  The zero value writes everything.
type Options struct {
	IgnoreStereo            bool `json:"ignore_stereo,omitempty"`
	IgnoreStereoBond        bool `json:"ignore_stereo_bond,omitempty"`
	IgnoreStereoAtom        bool `json:"ignore_stereo_atom,omitempty"`
	IgnoreExplicitHydrogens bool `json:"ignore_explicit_hydrogens,omitempty"`
	IgnoreImplicitHydrogens bool `json:"ignore_implicit_hydrogens,omitempty"`
	StrictRingClosures      bool `json:"strict_ring_closures,omitempty"`
	SkipAromaticity         bool `json:"skip_aromaticity,omitempty"`
}

// query renders the set flags as job query parameters.
func (o Options) query() url.Values {
	q := url.Values{}
	set := func(name string, v bool) {
		if v {
			q.Set(name, strconv.FormatBool(v))
		}
	}
	set("ignore_stereo", o.IgnoreStereo)
	set("ignore_stereo_bond", o.IgnoreStereoBond)
	set("ignore_stereo_atom", o.IgnoreStereoAtom)
	set("ignore_explicit_hydrogens", o.IgnoreExplicitHydrogens)
	set("ignore_implicit_hydrogens", o.IgnoreImplicitHydrogens)
	set("strict_ring_closures", o.StrictRingClosures)
	set("skip_aromaticity", o.SkipAromaticity)
	return q
}

// EncodeRequest carries one V2000 molfile.
type EncodeRequest struct {
	Molfile string  `json:"molfile"`
	Options Options `json:"options"`
	// Persist stores the pattern server side; the result then has an ID.
	Persist bool   `json:"persist,omitempty"`
	Name    string `json:"name,omitempty"`
}

// ErrorDetail is a per-item failure inside a batch.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

type EncodeResult struct {
	Index        int           `json:"index"`
	ID           string        `json:"id,omitempty"`
	SMARTS       string        `json:"smarts"`
	AtomCount    int           `json:"atom_count"`
	BondCount    int           `json:"bond_count"`
	Components   int           `json:"components"`
	RingClosures int           `json:"ring_closures"`
	Cached       bool          `json:"cached"`
	Duration     time.Duration `json:"duration_ns"`
	Error        *ErrorDetail  `json:"error,omitempty"`
}

// BatchResult lists one result per item in request order.  Incomplete is
// set when the server stopped part way; unfinished items then carry an
// error.
type BatchResult struct {
	Results    []*EncodeResult `json:"results"`
	Succeeded  int             `json:"succeeded"`
	Failed     int             `json:"failed"`
	Incomplete bool            `json:"-"`
}

// EncoderClient calls the synchronous encode endpoints.
type EncoderClient struct {
	client *Client
}

// Encode writes the SMARTS of one molfile.
func (ec *EncoderClient) Encode(ctx context.Context, req *EncodeRequest) (*EncodeResult, error) {
	if req == nil || req.Molfile == "" {
		return nil, invalidArg("molfile is required")
	}
	var out EncodeResult
	if _, err := ec.client.postJSON(ctx, "/api/v1/encode", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EncodeBatch encodes every item.  Item failures are reported in the
// results, not as an error.
func (ec *EncoderClient) EncodeBatch(ctx context.Context, items []*EncodeRequest) (*BatchResult, error) {
	if len(items) == 0 {
		return nil, invalidArg("at least one item is required")
	}
	body := struct {
		Items []*EncodeRequest `json:"items"`
	}{Items: items}

	var out BatchResult
	resp, err := ec.client.postJSON(ctx, "/api/v1/encode/batch", body, &out)
	if err != nil {
		return nil, err
	}
	out.Incomplete = resp.statusCode == http.StatusOK && resp.header.Get("X-Batch-Incomplete") == "true"
	return &out, nil
}

//Personal.AI order the ending
