package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	"github.com/turtacn/molsmarts/internal/application/encoding"
	"github.com/turtacn/molsmarts/internal/domain/pattern"
	"github.com/turtacn/molsmarts/pkg/types/common"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockEncodingService struct {
	mock.Mock
}

func (m *mockEncodingService) Encode(ctx context.Context, req *encoding.EncodeRequest) (*encoding.EncodeResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*encoding.EncodeResult), args.Error(1)
}

func (m *mockEncodingService) EncodeBatch(ctx context.Context, reqs []*encoding.EncodeRequest) ([]*encoding.EncodeResult, error) {
	args := m.Called(ctx, reqs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*encoding.EncodeResult), args.Error(1)
}

func (m *mockEncodingService) SubmitJob(ctx context.Context, req *encoding.JobRequest) (*pattern.Job, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pattern.Job), args.Error(1)
}

func (m *mockEncodingService) ProcessJob(ctx context.Context, msg *encoding.JobMessage) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *mockEncodingService) AbandonJob(ctx context.Context, msg *encoding.JobMessage, cause error) error {
	return m.Called(ctx, msg, cause).Error(0)
}

func (m *mockEncodingService) GetJob(ctx context.Context, id common.ID) (*pattern.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pattern.Job), args.Error(1)
}

func (m *mockEncodingService) ResultURL(ctx context.Context, id common.ID) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *mockEncodingService) GetPattern(ctx context.Context, id common.ID) (*pattern.Pattern, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pattern.Pattern), args.Error(1)
}

func (m *mockEncodingService) ListPatterns(ctx context.Context, limit, offset int) (*encoding.PatternList, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*encoding.PatternList), args.Error(1)
}

func (m *mockEncodingService) SearchPatterns(ctx context.Context, q *encoding.PatternQuery) (*encoding.PatternList, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*encoding.PatternList), args.Error(1)
}

var _ encoding.Service = (*mockEncodingService)(nil)

//Personal.AI order the ending
