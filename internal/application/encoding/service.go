// Package encoding is the application service in front of the SMARTS
// encoder.  It adds result caching, batch fan-out, pattern persistence and
// asynchronous SD file jobs on top of the chemio packages.
package encoding

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/molsmarts/internal/domain/molecule"
	"github.com/turtacn/molsmarts/internal/domain/pattern"
	"github.com/turtacn/molsmarts/internal/infrastructure/chemio/molfile"
	"github.com/turtacn/molsmarts/internal/infrastructure/chemio/smarts"
	"github.com/turtacn/molsmarts/internal/infrastructure/database/redis"
	"github.com/turtacn/molsmarts/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/molsmarts/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molsmarts/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/molsmarts/internal/infrastructure/storage/minio"
	"github.com/turtacn/molsmarts/pkg/errors"
	"github.com/turtacn/molsmarts/pkg/types/common"
)

const (
	defaultL1Size           = 4096
	defaultCacheTTL         = 24 * time.Hour
	defaultBatchConcurrency = 8
	defaultMaxBatchSize     = 1000
	defaultMaxJobBytes      = 64 << 20
	defaultJobLockTTL       = 10 * time.Minute
	defaultListLimit        = 20
	maxListLimit            = 500
	defaultSource           = "molsmarts"
)

// Input sources, used as the metrics label.
const (
	sourceMolfile   = "molfile"
	sourceStructure = "structure"
	sourceJob       = "job"
)

// Service defines the encoding application operations.
type Service interface {
	Encode(ctx context.Context, req *EncodeRequest) (*EncodeResult, error)
	EncodeBatch(ctx context.Context, reqs []*EncodeRequest) ([]*EncodeResult, error)
	SubmitJob(ctx context.Context, req *JobRequest) (*pattern.Job, error)
	ProcessJob(ctx context.Context, msg *JobMessage) error
	AbandonJob(ctx context.Context, msg *JobMessage, cause error) error
	GetJob(ctx context.Context, id common.ID) (*pattern.Job, error)
	ResultURL(ctx context.Context, id common.ID) (string, error)
	GetPattern(ctx context.Context, id common.ID) (*pattern.Pattern, error)
	ListPatterns(ctx context.Context, limit, offset int) (*PatternList, error)
	SearchPatterns(ctx context.Context, q *PatternQuery) (*PatternList, error)
}

// EncodeRequest carries one structure to encode.  Exactly one of Molfile and
// Structure must be set.  A Structure is normalized in place.
type EncodeRequest struct {
	Molfile   string              `json:"molfile,omitempty"`
	Structure *molecule.Structure `json:"structure,omitempty"`
	Options   smarts.Options      `json:"options"`
	Persist   bool                `json:"persist,omitempty"`
	Name      string              `json:"name,omitempty"`
}

// EncodeResult is the outcome of one encode.  In a batch, a failed item has
// Error set and no SMARTS.
type EncodeResult struct {
	Index        int                 `json:"index"`
	ID           common.ID           `json:"id,omitempty"`
	SMARTS       string              `json:"smarts"`
	AtomCount    int                 `json:"atom_count"`
	BondCount    int                 `json:"bond_count"`
	Components   int                 `json:"components"`
	RingClosures int                 `json:"ring_closures"`
	Cached       bool                `json:"cached"`
	Duration     time.Duration       `json:"duration_ns"`
	Error        *common.ErrorDetail `json:"error,omitempty"`
}

// PatternList is one page of stored patterns.
type PatternList struct {
	Patterns []*pattern.Pattern `json:"patterns"`
	Total    int64              `json:"total"`
	Limit    int                `json:"limit"`
	Offset   int                `json:"offset"`
}

// PatternQuery searches stored patterns by name or SMARTS fragment.
type PatternQuery struct {
	Text     string `form:"q"`
	MinAtoms int    `form:"min_atoms"`
	MaxAtoms int    `form:"max_atoms"`
	Limit    int    `form:"limit"`
	Offset   int    `form:"offset"`
}

// Locker is a named, expiring lock.  redis.Mutex satisfies it.
type Locker interface {
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context) error
}

// LockFactory returns the lock for name.
type LockFactory func(name string, ttl time.Duration) Locker

// Config tunes the service.  Zero fields take defaults.
type Config struct {
	// DefaultOptions are OR-ed into every request's options.
	DefaultOptions   smarts.Options
	L1Size           int
	CacheTTL         time.Duration
	BatchConcurrency int
	MaxBatchSize     int
	MaxJobBytes      int64
	JobLockTTL       time.Duration
	// Source is written into every published envelope.
	Source string
}

func (c Config) withDefaults() Config {
	if c.L1Size <= 0 {
		c.L1Size = defaultL1Size
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = defaultCacheTTL
	}
	if c.BatchConcurrency <= 0 {
		c.BatchConcurrency = defaultBatchConcurrency
	}
	if c.MaxBatchSize <= 0 {
		c.MaxBatchSize = defaultMaxBatchSize
	}
	if c.MaxJobBytes <= 0 {
		c.MaxJobBytes = defaultMaxJobBytes
	}
	if c.JobLockTTL <= 0 {
		c.JobLockTTL = defaultJobLockTTL
	}
	if c.Source == "" {
		c.Source = defaultSource
	}
	return c
}

// Dependencies are the collaborators of the service.  Patterns and Jobs fall
// back to in-memory stores, Cache to the L1 cache only.  Without Objects jobs
// are unavailable; without Publisher a submitted job is processed inline.
// Without Search pattern search is unavailable.
type Dependencies struct {
	Patterns  pattern.Repository
	Search    pattern.SearchIndex
	Jobs      pattern.JobRepository
	Cache     redis.Cache
	Objects   minio.ObjectStore
	Publisher kafka.Publisher
	Locks     LockFactory
	Metrics   *prometheus.EncoderMetrics
	Logger    logging.Logger
}

type serviceImpl struct {
	cfg       Config
	cache     *resultCache
	patterns  pattern.Repository
	search    pattern.SearchIndex
	jobs      pattern.JobRepository
	objects   minio.ObjectStore
	publisher kafka.Publisher
	locks     LockFactory
	metrics   *prometheus.EncoderMetrics
	logger    logging.Logger
}

// NewService creates the encoding service.
func NewService(cfg Config, deps Dependencies) (Service, error) {
	cfg = cfg.withDefaults()
	if deps.Logger == nil {
		deps.Logger = logging.NewNopLogger()
	}
	if deps.Patterns == nil {
		deps.Patterns = NewMemoryPatternRepository()
	}
	if deps.Jobs == nil {
		deps.Jobs = NewMemoryJobRepository()
	}
	logger := deps.Logger.Named("encoding")
	cache, err := newResultCache(cfg.L1Size, deps.Cache, cfg.CacheTTL, deps.Metrics, logger)
	if err != nil {
		return nil, err
	}
	return &serviceImpl{
		cfg:       cfg,
		cache:     cache,
		patterns:  deps.Patterns,
		search:    deps.Search,
		jobs:      deps.Jobs,
		objects:   deps.Objects,
		publisher: deps.Publisher,
		locks:     deps.Locks,
		metrics:   deps.Metrics,
		logger:    logger,
	}, nil
}

// mergeOptions turns on every flag set in either argument.
func mergeOptions(base, o smarts.Options) smarts.Options {
	o.IgnoreStereo = o.IgnoreStereo || base.IgnoreStereo
	o.IgnoreStereoBond = o.IgnoreStereoBond || base.IgnoreStereoBond
	o.IgnoreStereoAtom = o.IgnoreStereoAtom || base.IgnoreStereoAtom
	o.IgnoreExplicitHydrogens = o.IgnoreExplicitHydrogens || base.IgnoreExplicitHydrogens
	o.IgnoreImplicitHydrogens = o.IgnoreImplicitHydrogens || base.IgnoreImplicitHydrogens
	o.StrictRingClosures = o.StrictRingClosures || base.StrictRingClosures
	o.SkipAromaticity = o.SkipAromaticity || base.SkipAromaticity
	return o.Normalize()
}

func (s *serviceImpl) Encode(ctx context.Context, req *EncodeRequest) (*EncodeResult, error) {
	start := time.Now()
	if req == nil {
		return nil, errors.New(errors.ErrCodeValidation, "encode request is required")
	}
	source, hash, err := s.prepare(req)
	if err != nil {
		s.metrics.RecordEncode(source, 0, 0, time.Since(start), err)
		return nil, err
	}
	opts := mergeOptions(s.cfg.DefaultOptions, req.Options)

	entry, cached, err := s.cache.load(ctx, CacheKey(hash, opts), func() (cachedEncoding, error) {
		return encodeStructure(req, opts)
	})
	if err != nil {
		s.metrics.RecordEncode(source, 0, 0, time.Since(start), err)
		s.logger.Debug("encode failed", logging.Err(err), logging.String("source", source))
		return nil, err
	}
	s.metrics.RecordEncode(source, entry.AtomCount, entry.RingClosures, time.Since(start), nil)

	res := &EncodeResult{
		SMARTS:       entry.SMARTS,
		AtomCount:    entry.AtomCount,
		BondCount:    entry.BondCount,
		Components:   entry.Components,
		RingClosures: entry.RingClosures,
		Cached:       cached,
	}
	if req.Persist {
		p, err := s.persist(ctx, req.Name, hash, opts, entry)
		if err != nil {
			return nil, err
		}
		res.ID = p.ID
	}
	res.Duration = time.Since(start)
	return res, nil
}

// prepare checks the request and returns its metrics source and input hash.
func (s *serviceImpl) prepare(req *EncodeRequest) (string, string, error) {
	switch {
	case req.Molfile != "" && req.Structure != nil:
		return sourceMolfile, "", errors.New(errors.ErrCodeValidation, "molfile and structure are mutually exclusive")
	case req.Molfile != "":
		return sourceMolfile, MolfileHash(req.Molfile), nil
	case req.Structure != nil:
		req.Structure.Normalize()
		hash, err := StructureHash(req.Structure)
		return sourceStructure, hash, err
	default:
		return sourceMolfile, "", errors.New(errors.ErrCodeMoleculeEmpty, "molfile or structure is required")
	}
}

func encodeStructure(req *EncodeRequest, opts smarts.Options) (cachedEncoding, error) {
	st := req.Structure
	if req.Molfile != "" {
		parsed, err := molfile.ReadString(req.Molfile)
		if err != nil {
			return cachedEncoding{}, err
		}
		st = parsed
	}
	return encodeParsed(st, opts)
}

func encodeParsed(st *molecule.Structure, opts smarts.Options) (cachedEncoding, error) {
	if err := st.Validate(); err != nil {
		return cachedEncoding{}, err
	}
	r, err := smarts.NewWriter(smarts.WithOptions(opts)).Encode(st)
	if err != nil {
		var ae *errors.AppError
		if !stderrors.As(err, &ae) {
			err = errors.Wrap(err, errors.ErrCodeEncodeFailed, "encode failed")
		}
		return cachedEncoding{}, err
	}
	return cachedEncoding{
		SMARTS:       r.SMARTS,
		AtomCount:    len(st.Atoms),
		BondCount:    len(st.Bonds),
		Components:   r.Components,
		RingClosures: r.RingClosures,
	}, nil
}

func (s *serviceImpl) persist(ctx context.Context, name, hash string, opts smarts.Options, e cachedEncoding) (*pattern.Pattern, error) {
	p, err := pattern.NewPattern(name, e.SMARTS, hash, opts.Key())
	if err != nil {
		return nil, err
	}
	p.AtomCount = e.AtomCount
	p.BondCount = e.BondCount
	p.Components = e.Components
	p.RingClosures = e.RingClosures

	start := time.Now()
	err = s.patterns.Save(ctx, p)
	s.metrics.RecordDBQuery("save", time.Since(start))
	s.metrics.RecordPatternSaved(err)
	if err != nil {
		s.logger.Error("failed to save pattern", logging.Err(err), logging.String("molfile_hash", hash))
		return nil, err
	}
	s.logger.Info("pattern saved", logging.String(logging.FieldPatternID, string(p.ID)))
	s.index(ctx, p)
	return p, nil
}

// index adds p to the search index.  The repository already holds p, so a
// failure only delays its discovery by search.
func (s *serviceImpl) index(ctx context.Context, p *pattern.Pattern) {
	if s.search == nil {
		return
	}
	start := time.Now()
	err := s.search.Index(ctx, p)
	s.metrics.RecordDBQuery("index", time.Since(start))
	if err != nil {
		s.logger.Warn("failed to index pattern", logging.Err(err), logging.String(logging.FieldPatternID, string(p.ID)))
	}
}

// EncodeBatch encodes every request with bounded parallelism.  A failing item
// is reported in its result and does not stop the others.  When ctx is
// cancelled no further item is started and the unstarted items carry the
// cancellation error.
func (s *serviceImpl) EncodeBatch(ctx context.Context, reqs []*EncodeRequest) ([]*EncodeResult, error) {
	if len(reqs) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "batch is empty")
	}
	if len(reqs) > s.cfg.MaxBatchSize {
		return nil, errors.Newf(errors.ErrCodeValidation, "batch of %d items exceeds the limit of %d", len(reqs), s.cfg.MaxBatchSize)
	}
	s.metrics.RecordBatch(len(reqs))

	results := make([]*EncodeResult, len(reqs))
	var g errgroup.Group
	g.SetLimit(s.cfg.BatchConcurrency)
	for i, req := range reqs {
		if err := ctx.Err(); err != nil {
			results[i] = failedResult(i, errors.Wrap(err, errors.ErrCodeTimeout, "batch cancelled"))
			continue
		}
		i, req := i, req
		g.Go(func() error {
			res, err := s.Encode(ctx, req)
			if err != nil {
				res = failedResult(i, err)
			}
			res.Index = i
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return results, errors.Wrap(err, errors.ErrCodeTimeout, "batch cancelled")
	}
	return results, nil
}

func failedResult(i int, err error) *EncodeResult {
	return &EncodeResult{Index: i, Error: ErrorDetail(err)}
}

// ErrorDetail converts err into its transport form.
func ErrorDetail(err error) *common.ErrorDetail {
	var ae *errors.AppError
	if stderrors.As(err, &ae) {
		d := &common.ErrorDetail{Code: ae.Code.String(), Message: ae.Message, Detail: ae.Detail}
		if d.Detail == "" && ae.Cause != nil {
			d.Detail = ae.Cause.Error()
		}
		return d
	}
	return &common.ErrorDetail{Code: errors.ErrCodeInternal.String(), Message: err.Error()}
}

func (s *serviceImpl) GetPattern(ctx context.Context, id common.ID) (*pattern.Pattern, error) {
	if err := id.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "invalid pattern id")
	}
	start := time.Now()
	p, err := s.patterns.FindByID(ctx, id)
	s.metrics.RecordDBQuery("find_by_id", time.Since(start))
	return p, err
}

func (s *serviceImpl) ListPatterns(ctx context.Context, limit, offset int) (*PatternList, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	start := time.Now()
	items, total, err := s.patterns.List(ctx, limit, offset)
	s.metrics.RecordDBQuery("list", time.Since(start))
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*pattern.Pattern{}
	}
	return &PatternList{Patterns: items, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *serviceImpl) SearchPatterns(ctx context.Context, q *PatternQuery) (*PatternList, error) {
	if s.search == nil {
		return nil, errors.New(errors.ErrCodeNotImplemented, "pattern search is not enabled")
	}
	if q == nil {
		q = &PatternQuery{}
	}
	if q.MinAtoms < 0 || q.MaxAtoms < 0 {
		return nil, errors.New(errors.ErrCodeValidation, "atom bounds must not be negative")
	}
	if q.MaxAtoms > 0 && q.MinAtoms > q.MaxAtoms {
		return nil, errors.New(errors.ErrCodeValidation, "min_atoms exceeds max_atoms")
	}
	limit, offset := q.Limit, q.Offset
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	start := time.Now()
	res, err := s.search.Search(ctx, pattern.SearchQuery{
		Text:     strings.TrimSpace(q.Text),
		MinAtoms: q.MinAtoms,
		MaxAtoms: q.MaxAtoms,
		Limit:    limit,
		Offset:   offset,
	})
	s.metrics.RecordDBQuery("search", time.Since(start))
	if err != nil {
		return nil, err
	}
	items := res.Patterns
	if items == nil {
		items = []*pattern.Pattern{}
	}
	return &PatternList{Patterns: items, Total: res.Total, Limit: limit, Offset: offset}, nil
}

//Personal.AI order the ending
