package minio

import (
	"context"
	"errors"
	"io"
	"net/url"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	apperrors "github.com/turtacn/molsmarts/pkg/errors"
)

type MockMinIOAPI struct {
	mock.Mock
}

func (m *MockMinIOAPI) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	args := m.Called(ctx, bucketName)
	return args.Bool(0), args.Error(1)
}

func (m *MockMinIOAPI) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	return m.Called(ctx, bucketName, opts).Error(0)
}

func (m *MockMinIOAPI) SetBucketLifecycle(ctx context.Context, bucketName string, config *lifecycle.Configuration) error {
	return m.Called(ctx, bucketName, config).Error(0)
}

func (m *MockMinIOAPI) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	args := m.Called(ctx, bucketName, objectName, reader, objectSize, opts)
	return args.Get(0).(minio.UploadInfo), args.Error(1)
}

// GetObject cannot build a usable *minio.Object without a server; only error
// results are mocked.
func (m *MockMinIOAPI) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error) {
	args := m.Called(ctx, bucketName, objectName, opts)
	return nil, args.Error(1)
}

func (m *MockMinIOAPI) StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	args := m.Called(ctx, bucketName, objectName, opts)
	return args.Get(0).(minio.ObjectInfo), args.Error(1)
}

func (m *MockMinIOAPI) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	return m.Called(ctx, bucketName, objectName, opts).Error(0)
}

func (m *MockMinIOAPI) PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error) {
	args := m.Called(ctx, bucketName, objectName, expires, reqParams)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*url.URL), args.Error(1)
}

type ClientTestSuite struct {
	suite.Suite
	api *MockMinIOAPI
	ctx context.Context
}

func (s *ClientTestSuite) SetupTest() {
	s.api = new(MockMinIOAPI)
	s.ctx = context.Background()
}

func (s *ClientTestSuite) TearDownTest() {
	s.api.AssertExpectations(s.T())
}

func (s *ClientTestSuite) TestApplyDefaults() {
	cfg := Config{}
	applyDefaults(&cfg)
	s.Equal("us-east-1", cfg.Region)
	s.Equal("molsmarts", cfg.Bucket)
	s.Equal(int64(16*1024*1024), cfg.PartSize)
	s.Equal(time.Hour, cfg.PresignExpiry)
}

func (s *ClientTestSuite) TestNewClient_ExistingBucket() {
	s.api.On("BucketExists", s.ctx, "molsmarts").Return(true, nil)

	c, err := NewMinIOClientWithAPI(s.ctx, s.api, Config{}, nil)
	s.Require().NoError(err)
	s.Equal("molsmarts", c.Bucket())
}

func (s *ClientTestSuite) TestNewClient_CreatesBucketAndLifecycle() {
	s.api.On("BucketExists", s.ctx, "jobs").Return(false, nil)
	s.api.On("MakeBucket", s.ctx, "jobs", minio.MakeBucketOptions{Region: "us-east-1"}).Return(nil)
	s.api.On("SetBucketLifecycle", s.ctx, "jobs", mock.MatchedBy(func(cfg *lifecycle.Configuration) bool {
		return len(cfg.Rules) == 1 &&
			cfg.Rules[0].RuleFilter.Prefix == "results/" &&
			cfg.Rules[0].Expiration.Days == 7
	})).Return(errors.New("not implemented"))

	_, err := NewMinIOClientWithAPI(s.ctx, s.api, Config{Bucket: "jobs", ResultExpiryDays: 7}, nil)
	s.NoError(err)
}

func (s *ClientTestSuite) TestNewClient_BucketCheckFails() {
	s.api.On("BucketExists", s.ctx, "molsmarts").Return(false, errors.New("dial tcp"))

	_, err := NewMinIOClientWithAPI(s.ctx, s.api, Config{}, nil)
	s.True(apperrors.IsCode(err, apperrors.ErrCodeStorageError))
}

func (s *ClientTestSuite) TestHealthCheck() {
	s.api.On("BucketExists", s.ctx, "molsmarts").Return(true, nil).Once()
	c, err := NewMinIOClientWithAPI(s.ctx, s.api, Config{}, nil)
	require.NoError(s.T(), err)

	s.api.On("BucketExists", s.ctx, "molsmarts").Return(true, nil).Once()
	s.NoError(c.HealthCheck(s.ctx))

	s.api.On("BucketExists", s.ctx, "molsmarts").Return(false, nil).Once()
	s.True(apperrors.IsCode(c.HealthCheck(s.ctx), apperrors.ErrCodeServiceUnavailable))

	s.NoError(c.Close())
	s.Equal(ErrMinIOClientClosed, c.HealthCheck(s.ctx))
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func TestNewMinIOClient_RequiresEndpoint(t *testing.T) {
	_, err := NewMinIOClient(context.Background(), Config{}, nil)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))
}

//Personal.AI order the ending
