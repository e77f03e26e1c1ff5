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

const patternColumns = `id, name, smarts, molfile_hash, options_key,
	atom_count, bond_count, components, ring_closures, created_at`

type postgresPatternRepo struct {
	conn     *postgres.Connection
	log      logging.Logger
	executor queryExecutor
}

func NewPostgresPatternRepo(conn *postgres.Connection, log logging.Logger) pattern.Repository {
	return &postgresPatternRepo{
		conn:     conn,
		log:      log,
		executor: conn.DB(),
	}
}

// Save inserts p.  A pattern for the same molfile and options is kept and
// its id is written back into p.
func (r *postgresPatternRepo) Save(ctx context.Context, p *pattern.Pattern) error {
	if err := p.Validate(); err != nil {
		return err
	}
	query := `
		INSERT INTO smarts_patterns (
			id, name, smarts, molfile_hash, options_key,
			atom_count, bond_count, components, ring_closures, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (molfile_hash, options_key)
		DO UPDATE SET name = CASE WHEN smarts_patterns.name = '' THEN EXCLUDED.name ELSE smarts_patterns.name END
		RETURNING id, created_at
	`
	err := r.executor.QueryRowContext(ctx, query,
		p.ID, p.Name, p.SMARTS, p.MolfileHash, p.OptionsKey,
		p.AtomCount, p.BondCount, p.Components, p.RingClosures, p.CreatedAt,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Wrap(err, errors.ErrCodeConflict, "pattern already exists")
		}
		r.log.Error("failed to save pattern", logging.String(logging.FieldPatternID, string(p.ID)), logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to save pattern")
	}
	return nil
}

func (r *postgresPatternRepo) FindByID(ctx context.Context, id common.ID) (*pattern.Pattern, error) {
	query := `SELECT ` + patternColumns + ` FROM smarts_patterns WHERE id = $1`
	return scanPattern(r.executor.QueryRowContext(ctx, query, id))
}

func (r *postgresPatternRepo) FindByHash(ctx context.Context, molfileHash, optionsKey string) (*pattern.Pattern, error) {
	query := `SELECT ` + patternColumns + ` FROM smarts_patterns WHERE molfile_hash = $1 AND options_key = $2`
	return scanPattern(r.executor.QueryRowContext(ctx, query, molfileHash, optionsKey))
}

func (r *postgresPatternRepo) List(ctx context.Context, limit, offset int) ([]*pattern.Pattern, int64, error) {
	var total int64
	if err := r.executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM smarts_patterns`).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count patterns")
	}

	query := `SELECT ` + patternColumns + ` FROM smarts_patterns ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`
	rows, err := r.executor.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list patterns")
	}
	defer rows.Close()

	patterns := make([]*pattern.Pattern, 0, limit)
	for rows.Next() {
		p, err := scanPattern(rows)
		if err != nil {
			return nil, 0, err
		}
		patterns = append(patterns, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list patterns")
	}
	return patterns, total, nil
}

func scanPattern(row scanner) (*pattern.Pattern, error) {
	var p pattern.Pattern
	err := row.Scan(
		&p.ID, &p.Name, &p.SMARTS, &p.MolfileHash, &p.OptionsKey,
		&p.AtomCount, &p.BondCount, &p.Components, &p.RingClosures, &p.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New(errors.ErrCodePatternNotFound, "pattern not found")
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan pattern")
	}
	return &p, nil
}

//Personal.AI order the ending
