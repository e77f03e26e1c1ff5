package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/molsmarts/internal/application/encoding"
	"github.com/turtacn/molsmarts/pkg/errors"
	"github.com/turtacn/molsmarts/pkg/types/common"
)

// PatternHandler serves stored patterns.
type PatternHandler struct {
	svc encoding.Service
}

func NewPatternHandler(svc encoding.Service) *PatternHandler {
	return &PatternHandler{svc: svc}
}

// Get handles GET /api/v1/patterns/:id.
func (h *PatternHandler) Get(c *gin.Context) {
	p, err := h.svc.GetPattern(c.Request.Context(), common.ID(c.Param("id")))
	if err != nil {
		RespondError(c, err)
		return
	}
	respond(c, http.StatusOK, p)
}

// List handles GET /api/v1/patterns?limit=&offset=, newest first.
func (h *PatternHandler) List(c *gin.Context) {
	limit, offset := parsePagination(c)
	page, err := h.svc.ListPatterns(c.Request.Context(), limit, offset)
	if err != nil {
		RespondError(c, err)
		return
	}
	respond(c, http.StatusOK, page)
}

// Search handles GET /api/v1/patterns/search?q=&min_atoms=&max_atoms=.
func (h *PatternHandler) Search(c *gin.Context) {
	var q encoding.PatternQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		RespondError(c, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid search parameters"))
		return
	}
	q.Limit, q.Offset = parsePagination(c)
	page, err := h.svc.SearchPatterns(c.Request.Context(), &q)
	if err != nil {
		RespondError(c, err)
		return
	}
	respond(c, http.StatusOK, page)
}

//Personal.AI order the ending
