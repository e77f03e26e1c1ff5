package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/molsmarts/internal/domain/pattern"
	"github.com/turtacn/molsmarts/internal/infrastructure/database/postgres"
	"github.com/turtacn/molsmarts/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/molsmarts/pkg/errors"
	"github.com/turtacn/molsmarts/pkg/types/common"
)

type JobRepoTestSuite struct {
	suite.Suite
	db   *sql.DB
	mock sqlmock.Sqlmock
	repo pattern.JobRepository
}

func (s *JobRepoTestSuite) SetupTest() {
	var err error
	s.db, s.mock, err = sqlmock.New()
	require.NoError(s.T(), err)

	log := logging.NewNopLogger()
	s.repo = NewPostgresJobRepo(postgres.NewConnectionWithDB(s.db, log), log)
}

func (s *JobRepoTestSuite) TearDownTest() {
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
	s.db.Close()
}

func (s *JobRepoTestSuite) TestCreate() {
	j := pattern.NewJob("default")
	s.mock.ExpectExec("INSERT INTO encode_jobs").
		WithArgs(j.ID, j.Status, j.ObjectKey, "default", 0, 0, 0, "", j.CreatedAt, j.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s.NoError(s.repo.Create(context.Background(), j))
}

func (s *JobRepoTestSuite) TestCreate_Duplicate() {
	j := pattern.NewJob("default")
	s.mock.ExpectExec("INSERT INTO encode_jobs").
		WillReturnError(&pgconn.PgError{Code: uniqueViolation, Message: "duplicate key value violates unique constraint"})

	err := s.repo.Create(context.Background(), j)
	s.True(apperrors.IsCode(err, apperrors.ErrCodeConflict))
}

func (s *JobRepoTestSuite) TestCreate_DatabaseError() {
	j := pattern.NewJob("default")
	s.mock.ExpectExec("INSERT INTO encode_jobs").WillReturnError(sql.ErrConnDone)

	err := s.repo.Create(context.Background(), j)
	s.True(apperrors.IsCode(err, apperrors.ErrCodeDatabaseError))
}

func (s *JobRepoTestSuite) TestUpdate() {
	j := pattern.NewJob("default")
	s.Require().NoError(j.Start())
	s.Require().NoError(j.Complete(4, 1))

	s.mock.ExpectExec("UPDATE encode_jobs SET").
		WithArgs(j.ID, pattern.JobSucceeded, 5, 4, 1, "", j.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s.NoError(s.repo.Update(context.Background(), j))
}

func (s *JobRepoTestSuite) TestUpdate_NotFound() {
	j := pattern.NewJob("default")
	s.mock.ExpectExec("UPDATE encode_jobs SET").WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.repo.Update(context.Background(), j)
	s.True(apperrors.IsCode(err, apperrors.ErrCodeJobNotFound))
}

func (s *JobRepoTestSuite) TestFindByID() {
	id := common.NewID()
	now := time.Now().UTC()
	s.mock.ExpectQuery("SELECT .* FROM encode_jobs WHERE id =").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "status", "object_key", "options_key", "total", "succeeded", "failed", "error", "created_at", "updated_at",
		}).AddRow(string(id), "running", pattern.ObjectKeyFor(id), "default", 0, 0, 0, "", now, now))

	j, err := s.repo.FindByID(context.Background(), id)
	s.Require().NoError(err)
	s.Equal(pattern.JobRunning, j.Status)
	s.Equal("jobs/"+string(id)+".sdf", j.ObjectKey)
}

func (s *JobRepoTestSuite) TestFindByID_NotFound() {
	s.mock.ExpectQuery("SELECT .* FROM encode_jobs").WillReturnError(sql.ErrNoRows)

	_, err := s.repo.FindByID(context.Background(), common.NewID())
	s.True(apperrors.IsCode(err, apperrors.ErrCodeJobNotFound))
}

func TestJobRepoTestSuite(t *testing.T) {
	suite.Run(t, new(JobRepoTestSuite))
}

//Personal.AI order the ending
