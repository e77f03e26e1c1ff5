package pattern

import (
	"context"

	"github.com/turtacn/molsmarts/pkg/types/common"
)

// Repository stores patterns.
type Repository interface {
	// Save inserts p.  When a pattern with the same hash and options key
	// exists, p.ID and p.CreatedAt are replaced by the stored ones.
	Save(ctx context.Context, p *Pattern) error
	// FindByID returns a not-found error when no pattern has id.
	FindByID(ctx context.Context, id common.ID) (*Pattern, error)
	FindByHash(ctx context.Context, molfileHash, optionsKey string) (*Pattern, error)
	// List returns a page ordered newest first and the total count.
	List(ctx context.Context, limit, offset int) ([]*Pattern, int64, error)
}

// JobRepository stores jobs.
type JobRepository interface {
	Create(ctx context.Context, j *Job) error
	Update(ctx context.Context, j *Job) error
	FindByID(ctx context.Context, id common.ID) (*Job, error)
}

//Personal.AI order the ending
