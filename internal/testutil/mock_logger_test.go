package testutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/molsmarts/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molsmarts/internal/testutil"
)

var _ logging.Logger = (*testutil.MockLogger)(nil)

func TestMockLogger(t *testing.T) {
	logger := testutil.NewMockLogger()

	logger.Info("test info", logging.String("key", "value"))

	entries := logger.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "info", entries[0].Level)
	assert.Equal(t, "test info", entries[0].Message)
	v, ok := entries[0].Field("key")
	assert.True(t, ok)
	assert.Equal(t, "value", v)

	logger.Clear()
	assert.Empty(t, logger.Entries())

	logger.Error("test error")
	assert.True(t, logger.HasMessage("error", "test error"))
	assert.False(t, logger.HasMessage("info", "test info"))
	assert.Equal(t, 1, logger.Count("error"))
}

func TestMockLogger_DerivedLoggersShareEntries(t *testing.T) {
	root := testutil.NewMockLogger()
	child := root.Named("encoding").With(logging.String("job_id", "j1")).Named("jobs")

	child.Warn("slow job", logging.Int("records", 3))

	e, ok := root.Find("warn", "slow job")
	require.True(t, ok)
	assert.Equal(t, "encoding.jobs", e.Logger)
	id, _ := e.Field("job_id")
	assert.Equal(t, "j1", id)
	n, _ := e.Field("records")
	assert.Equal(t, 3, n)

	_, ok = e.Field("missing")
	assert.False(t, ok)
}

func TestMockLogger_FatalDoesNotExit(t *testing.T) {
	logger := testutil.NewMockLogger()
	logger.Fatal("boom")
	assert.True(t, logger.HasMessage("fatal", "boom"))
}

//Personal.AI order the ending
