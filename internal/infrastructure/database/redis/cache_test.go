package redis

import (
	"context"
	stderrors "errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/molsmarts/pkg/errors"
)

type CacheTestSuite struct {
	suite.Suite
	mock  redismock.ClientMock
	cache Cache
}

func (s *CacheTestSuite) SetupTest() {
	db, mock := redismock.NewClientMock()
	s.mock = mock
	s.cache = NewCache(NewClientFromUniversal(db, nil), nil, WithPrefix("test:"), WithDefaultTTL(time.Hour))
}

func (s *CacheTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
}

type entry struct {
	SMARTS string `json:"smarts"`
	Atoms  int    `json:"atoms"`
}

func (s *CacheTestSuite) TestGet_Hit() {
	s.mock.ExpectGet("test:k1").SetVal(`{"smarts":"CC","atoms":2}`)

	var got entry
	s.Require().NoError(s.cache.Get(context.Background(), "k1", &got))
	s.Equal(entry{SMARTS: "CC", Atoms: 2}, got)
}

func (s *CacheTestSuite) TestGet_Miss() {
	s.mock.ExpectGet("test:k1").RedisNil()

	var got entry
	err := s.cache.Get(context.Background(), "k1", &got)
	s.True(errors.IsCode(err, errors.ErrCodeCacheMiss))
}

func (s *CacheTestSuite) TestGet_Error() {
	s.mock.ExpectGet("test:k1").SetErr(stderrors.New("boom"))

	var got entry
	err := s.cache.Get(context.Background(), "k1", &got)
	s.True(errors.IsCode(err, errors.ErrCodeCacheError))
}

func (s *CacheTestSuite) TestGet_Corrupt() {
	s.mock.ExpectGet("test:k1").SetVal(`not json`)

	var got entry
	err := s.cache.Get(context.Background(), "k1", &got)
	s.True(errors.IsCode(err, errors.ErrCodeSerialization))
}

func (s *CacheTestSuite) TestSet_DefaultTTL() {
	s.mock.ExpectSet("test:k1", []byte(`{"smarts":"CC","atoms":2}`), time.Hour).SetVal("OK")
	s.NoError(s.cache.Set(context.Background(), "k1", entry{SMARTS: "CC", Atoms: 2}, 0))
}

func (s *CacheTestSuite) TestSet_ExplicitTTL() {
	s.mock.ExpectSet("test:k1", []byte(`{"smarts":"C","atoms":1}`), time.Minute).SetVal("OK")
	s.NoError(s.cache.Set(context.Background(), "k1", entry{SMARTS: "C", Atoms: 1}, time.Minute))
}

func (s *CacheTestSuite) TestSet_Unserializable() {
	err := s.cache.Set(context.Background(), "k1", make(chan int), 0)
	s.True(errors.IsCode(err, errors.ErrCodeSerialization))
}

func (s *CacheTestSuite) TestDeleteAndExists() {
	s.mock.ExpectDel("test:a", "test:b").SetVal(2)
	s.mock.ExpectExists("test:a").SetVal(0)

	ctx := context.Background()
	s.NoError(s.cache.Delete(ctx, "a", "b"))
	s.NoError(s.cache.Delete(ctx))
	ok, err := s.cache.Exists(ctx, "a")
	s.NoError(err)
	s.False(ok)
}

func (s *CacheTestSuite) TestMGet() {
	s.mock.ExpectMGet("test:a", "test:b").SetVal([]interface{}{`"x"`, nil})

	got, err := s.cache.MGet(context.Background(), []string{"a", "b"})
	s.Require().NoError(err)
	s.Equal(map[string][]byte{"a": []byte(`"x"`)}, got)
}

func (s *CacheTestSuite) TestGetOrSet_LoadsOnMiss() {
	s.mock.ExpectGet("test:k1").RedisNil()
	s.mock.ExpectSet("test:k1", []byte(`{"smarts":"O","atoms":1}`), time.Hour).SetVal("OK")

	var calls int32
	var got entry
	err := s.cache.GetOrSet(context.Background(), "k1", &got, 0, func(context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return entry{SMARTS: "O", Atoms: 1}, nil
	})
	s.Require().NoError(err)
	s.Equal(entry{SMARTS: "O", Atoms: 1}, got)
	s.Equal(int32(1), calls)
}

func (s *CacheTestSuite) TestGetOrSet_Hit() {
	s.mock.ExpectGet("test:k1").SetVal(`{"smarts":"N","atoms":1}`)

	var got entry
	err := s.cache.GetOrSet(context.Background(), "k1", &got, 0, func(context.Context) (interface{}, error) {
		s.Fail("loader must not run on a hit")
		return nil, nil
	})
	s.Require().NoError(err)
	s.Equal("N", got.SMARTS)
}

func (s *CacheTestSuite) TestGetOrSet_LoaderError() {
	s.mock.ExpectGet("test:k1").RedisNil()

	var got entry
	err := s.cache.GetOrSet(context.Background(), "k1", &got, 0, func(context.Context) (interface{}, error) {
		return nil, stderrors.New("encode failed")
	})
	s.EqualError(err, "encode failed")
}

func (s *CacheTestSuite) TestDeleteByPrefix() {
	s.mock.ExpectScan(0, "test:smarts:*", 100).SetVal([]string{"test:smarts:1", "test:smarts:2"}, 7)
	s.mock.ExpectDel("test:smarts:1", "test:smarts:2").SetVal(2)
	s.mock.ExpectScan(7, "test:smarts:*", 100).SetVal([]string{}, 0)

	n, err := s.cache.DeleteByPrefix(context.Background(), "smarts:")
	s.NoError(err)
	s.Equal(int64(2), n)
}

func TestCacheTestSuite(t *testing.T) {
	suite.Run(t, new(CacheTestSuite))
}

func TestCache_Jitter(t *testing.T) {
	c := NewCache(nil, nil, WithTTLJitter(0.1)).(*redisCache)
	for i := 0; i < 20; i++ {
		ttl := c.ttl(time.Hour)
		require.GreaterOrEqual(t, ttl, 54*time.Minute)
		require.LessOrEqual(t, ttl, 66*time.Minute)
	}
	assert.Equal(t, 24*time.Hour, NewCache(nil, nil).(*redisCache).ttl(0))
}

//Personal.AI order the ending
