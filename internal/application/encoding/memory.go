package encoding

import (
	"context"
	"sort"
	"sync"

	"github.com/samber/lo"

	"github.com/turtacn/molsmarts/internal/domain/pattern"
	"github.com/turtacn/molsmarts/pkg/errors"
	"github.com/turtacn/molsmarts/pkg/types/common"
)

// memoryPatternRepo keeps patterns in process memory.  It backs the service
// when no database is configured.
type memoryPatternRepo struct {
	mu     sync.RWMutex
	byID   map[common.ID]*pattern.Pattern
	byHash map[string]common.ID
}

// NewMemoryPatternRepository returns an empty in-memory pattern store.
func NewMemoryPatternRepository() pattern.Repository {
	return &memoryPatternRepo{
		byID:   make(map[common.ID]*pattern.Pattern),
		byHash: make(map[string]common.ID),
	}
}

func hashKey(hash, optionsKey string) string { return hash + "|" + optionsKey }

func (r *memoryPatternRepo) Save(_ context.Context, p *pattern.Pattern) error {
	if err := p.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	hk := hashKey(p.MolfileHash, p.OptionsKey)
	if id, ok := r.byHash[hk]; ok {
		stored := r.byID[id]
		p.ID = stored.ID
		p.CreatedAt = stored.CreatedAt
		if p.Name == "" {
			p.Name = stored.Name
		}
	}
	cp := *p
	r.byID[p.ID] = &cp
	r.byHash[hk] = p.ID
	return nil
}

func (r *memoryPatternRepo) FindByID(_ context.Context, id common.ID) (*pattern.Pattern, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, errors.Newf(errors.ErrCodePatternNotFound, "pattern %s not found", id)
	}
	cp := *p
	return &cp, nil
}

func (r *memoryPatternRepo) FindByHash(_ context.Context, hash, optionsKey string) (*pattern.Pattern, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byHash[hashKey(hash, optionsKey)]
	if !ok {
		return nil, errors.New(errors.ErrCodePatternNotFound, "pattern not found")
	}
	cp := *r.byID[id]
	return &cp, nil
}

func (r *memoryPatternRepo) List(_ context.Context, limit, offset int) ([]*pattern.Pattern, int64, error) {
	r.mu.RLock()
	all := lo.Values(r.byID)
	r.mu.RUnlock()
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	page := lo.Subset(all, offset, uint(limit))
	return lo.Map(page, func(p *pattern.Pattern, _ int) *pattern.Pattern {
		cp := *p
		return &cp
	}), int64(len(all)), nil
}

// memoryJobRepo keeps jobs in process memory.
type memoryJobRepo struct {
	mu   sync.RWMutex
	jobs map[common.ID]*pattern.Job
}

// NewMemoryJobRepository returns an empty in-memory job store.
func NewMemoryJobRepository() pattern.JobRepository {
	return &memoryJobRepo{jobs: make(map[common.ID]*pattern.Job)}
}

func (r *memoryJobRepo) Create(_ context.Context, j *pattern.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[j.ID]; ok {
		return errors.Newf(errors.ErrCodeConflict, "job %s already exists", j.ID)
	}
	cp := *j
	r.jobs[j.ID] = &cp
	return nil
}

func (r *memoryJobRepo) Update(_ context.Context, j *pattern.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[j.ID]; !ok {
		return errors.Newf(errors.ErrCodeJobNotFound, "job %s not found", j.ID)
	}
	cp := *j
	r.jobs[j.ID] = &cp
	return nil
}

func (r *memoryJobRepo) FindByID(_ context.Context, id common.ID) (*pattern.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeJobNotFound, "job %s not found", id)
	}
	cp := *j
	return &cp, nil
}

//Personal.AI order the ending
