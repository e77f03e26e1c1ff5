package handlers

import (
	stderrors "errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/molsmarts/internal/application/encoding"
	"github.com/turtacn/molsmarts/internal/domain/pattern"
	"github.com/turtacn/molsmarts/internal/infrastructure/chemio/smarts"
	"github.com/turtacn/molsmarts/pkg/errors"
	"github.com/turtacn/molsmarts/pkg/types/common"
)

// JobHandler serves SD file jobs.
type JobHandler struct {
	svc encoding.Service
}

func NewJobHandler(svc encoding.Service) *JobHandler {
	return &JobHandler{svc: svc}
}

// jobQuery holds the encoder flags of a job submission, given as query
// parameters so that the body can be the SD file itself.
type jobQuery struct {
	IgnoreStereo            bool `form:"ignore_stereo"`
	IgnoreStereoBond        bool `form:"ignore_stereo_bond"`
	IgnoreStereoAtom        bool `form:"ignore_stereo_atom"`
	IgnoreExplicitHydrogens bool `form:"ignore_explicit_hydrogens"`
	IgnoreImplicitHydrogens bool `form:"ignore_implicit_hydrogens"`
	StrictRingClosures      bool `form:"strict_ring_closures"`
	SkipAromaticity         bool `form:"skip_aromaticity"`
	Persist                 bool `form:"persist"`
}

func (q jobQuery) options() smarts.Options {
	return smarts.Options{
		IgnoreStereo:            q.IgnoreStereo,
		IgnoreStereoBond:        q.IgnoreStereoBond,
		IgnoreStereoAtom:        q.IgnoreStereoAtom,
		IgnoreExplicitHydrogens: q.IgnoreExplicitHydrogens,
		IgnoreImplicitHydrogens: q.IgnoreImplicitHydrogens,
		StrictRingClosures:      q.StrictRingClosures,
		SkipAromaticity:         q.SkipAromaticity,
	}
}

// ResultURLResponse is the body of GET /api/v1/jobs/:id/result.
type ResultURLResponse struct {
	JobID common.ID `json:"job_id"`
	URL   string    `json:"url"`
}

// Submit handles POST /api/v1/jobs.  The SD file is either the raw body or
// the "file" part of a multipart form.
func (h *JobHandler) Submit(c *gin.Context) {
	var q jobQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		RespondError(c, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid query parameters"))
		return
	}

	data, err := readUpload(c)
	if err != nil {
		RespondError(c, err)
		return
	}

	job, err := h.svc.SubmitJob(c.Request.Context(), &encoding.JobRequest{SDF: data, Options: q.options(), Persist: q.Persist})
	if err != nil {
		RespondError(c, err)
		return
	}
	c.Header("Location", "/api/v1/jobs/"+string(job.ID))
	status := http.StatusAccepted
	if job.Status.IsTerminal() {
		status = http.StatusCreated
	}
	respond(c, status, job)
}

func readUpload(c *gin.Context) ([]byte, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "multipart form has no file part")
		}
		f, err := fh.Open()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "failed to open uploaded file")
		}
		defer f.Close()
		return readAll(f)
	}
	return readAll(c.Request.Body)
}

func readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errors.Newf(errors.ErrCodeValidation, "upload exceeds the limit of %d bytes", tooLarge.Limit)
		}
		return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "failed to read upload")
	}
	return data, nil
}

// Get handles GET /api/v1/jobs/:id.
func (h *JobHandler) Get(c *gin.Context) {
	job, err := h.svc.GetJob(c.Request.Context(), common.ID(c.Param("id")))
	if err != nil {
		RespondError(c, err)
		return
	}
	respond[*pattern.Job](c, http.StatusOK, job)
}

// Result handles GET /api/v1/jobs/:id/result.  With ?redirect=true the
// client is sent straight to the download.
func (h *JobHandler) Result(c *gin.Context) {
	id := common.ID(c.Param("id"))
	url, err := h.svc.ResultURL(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	if c.Query("redirect") == "true" {
		c.Redirect(http.StatusFound, url)
		return
	}
	respond(c, http.StatusOK, ResultURLResponse{JobID: id, URL: url})
}

//Personal.AI order the ending
