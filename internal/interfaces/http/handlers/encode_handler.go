package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/molsmarts/internal/application/encoding"
	"github.com/turtacn/molsmarts/pkg/errors"
)

// EncodeHandler serves synchronous encodes.
type EncodeHandler struct {
	svc encoding.Service
}

func NewEncodeHandler(svc encoding.Service) *EncodeHandler {
	return &EncodeHandler{svc: svc}
}

// BatchRequest is the body of POST /api/v1/encode/batch.
type BatchRequest struct {
	Items []*encoding.EncodeRequest `json:"items"`
}

// BatchResponse lists one result per item, in request order.
type BatchResponse struct {
	Results   []*encoding.EncodeResult `json:"results"`
	Succeeded int                      `json:"succeeded"`
	Failed    int                      `json:"failed"`
}

// Encode handles POST /api/v1/encode.
func (h *EncodeHandler) Encode(c *gin.Context) {
	var req encoding.EncodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body"))
		return
	}

	res, err := h.svc.Encode(c.Request.Context(), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	status := http.StatusOK
	if res.ID != "" {
		status = http.StatusCreated
	}
	respond(c, status, res)
}

// EncodeBatch handles POST /api/v1/encode/batch.  Item failures are reported
// per item with a 200; only a malformed or oversized batch fails as a whole.
func (h *EncodeHandler) EncodeBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body"))
		return
	}

	results, err := h.svc.EncodeBatch(c.Request.Context(), req.Items)
	if err != nil && results == nil {
		RespondError(c, err)
		return
	}

	resp := BatchResponse{Results: results}
	for _, r := range results {
		if r.Error != nil {
			resp.Failed++
		} else {
			resp.Succeeded++
		}
	}
	if err != nil {
		// Cancelled part way: the finished items are still worth returning.
		c.Header("X-Batch-Incomplete", "true")
	}
	respond(c, http.StatusOK, resp)
}

//Personal.AI order the ending
