package repositories

import (
	"context"
	"database/sql"

	"github.com/turtacn/molsmarts/internal/domain/pattern"
	"github.com/turtacn/molsmarts/internal/infrastructure/database/postgres"
	"github.com/turtacn/molsmarts/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molsmarts/pkg/errors"
	"github.com/turtacn/molsmarts/pkg/types/common"
)

type postgresJobRepo struct {
	conn     *postgres.Connection
	log      logging.Logger
	executor queryExecutor
}

func NewPostgresJobRepo(conn *postgres.Connection, log logging.Logger) pattern.JobRepository {
	return &postgresJobRepo{
		conn:     conn,
		log:      log,
		executor: conn.DB(),
	}
}

func (r *postgresJobRepo) Create(ctx context.Context, j *pattern.Job) error {
	query := `
		INSERT INTO encode_jobs (
			id, status, object_key, options_key, total, succeeded, failed, error, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.executor.ExecContext(ctx, query,
		j.ID, j.Status, j.ObjectKey, j.OptionsKey, j.Total, j.Succeeded, j.Failed, j.Error, j.CreatedAt, j.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return errors.Newf(errors.ErrCodeConflict, "job %s already exists", j.ID)
	}
	if err != nil {
		r.log.Error("failed to create job", logging.String(logging.FieldJobID, string(j.ID)), logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create job")
	}
	return nil
}

func (r *postgresJobRepo) Update(ctx context.Context, j *pattern.Job) error {
	query := `
		UPDATE encode_jobs SET
			status = $2, total = $3, succeeded = $4, failed = $5, error = $6, updated_at = $7
		WHERE id = $1
	`
	res, err := r.executor.ExecContext(ctx, query,
		j.ID, j.Status, j.Total, j.Succeeded, j.Failed, j.Error, j.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update job")
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return errors.Newf(errors.ErrCodeJobNotFound, "job %s not found", j.ID)
	}
	return nil
}

func (r *postgresJobRepo) FindByID(ctx context.Context, id common.ID) (*pattern.Job, error) {
	query := `
		SELECT id, status, object_key, options_key, total, succeeded, failed, error, created_at, updated_at
		FROM encode_jobs WHERE id = $1
	`
	var j pattern.Job
	err := r.executor.QueryRowContext(ctx, query, id).Scan(
		&j.ID, &j.Status, &j.ObjectKey, &j.OptionsKey, &j.Total, &j.Succeeded, &j.Failed, &j.Error,
		&j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.Newf(errors.ErrCodeJobNotFound, "job %s not found", id)
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load job")
	}
	return &j, nil
}

//Personal.AI order the ending
