package logging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

func newTestLogger(t *testing.T) (Logger, *zaptest.Buffer) {
	t.Helper()
	buf := &zaptest.Buffer{}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), buf, zapcore.DebugLevel)
	return NewLoggerFromCore(core), buf
}

func TestNewLogger_Formats(t *testing.T) {
	for _, format := range []string{"json", "console", ""} {
		l, err := NewLogger(LogConfig{Level: LevelDebug, Format: format, OutputPaths: []string{"stdout"}})
		require.NoError(t, err, format)
		assert.NotNil(t, l)
	}
}

func TestNewLogger_EmptyOutputPaths(t *testing.T) {
	l, err := NewLogger(LogConfig{OutputPaths: []string{}})
	assert.Error(t, err)
	assert.Nil(t, l)
}

func TestNewDefaultLogger_NotNil(t *testing.T) {
	assert.NotNil(t, NewDefaultLogger())
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.Debug("msg")
	l.Info("msg")
	l.Warn("msg")
	l.Error("msg")
	l.Fatal("msg")
	assert.Equal(t, l, l.With(String("k", "v")))
	assert.Equal(t, l, l.Named("x"))
	assert.False(t, SetLevel(l, LevelDebug))
	assert.NoError(t, Sync(l))
}

func TestZapLogger_Levels(t *testing.T) {
	l, buf := newTestLogger(t)
	l.Debug("debug msg")
	l.Info("info msg")
	l.Warn("warn msg")
	l.Error("error msg")

	out := buf.String()
	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		assert.Contains(t, out, lvl+" msg")
		assert.Contains(t, out, `"level":"`+lvl+`"`)
	}
}

func TestZapLogger_Fields(t *testing.T) {
	l, buf := newTestLogger(t)
	l.Info("msg",
		String("s", "v"),
		Int("i", 3),
		Int64("i64", 4),
		Float64("f", 1.5),
		Bool("b", true),
		Duration("d", time.Second),
		Err(errors.New("boom")),
		Any("a", []int{1}),
	)

	out := buf.String()
	assert.Contains(t, out, `"s":"v"`)
	assert.Contains(t, out, `"i":3`)
	assert.Contains(t, out, `"i64":4`)
	assert.Contains(t, out, `"f":1.5`)
	assert.Contains(t, out, `"b":true`)
	assert.Contains(t, out, `"error":"boom"`)
	assert.Contains(t, out, `"a":[1]`)
}

func TestZapLogger_WithAndNamed(t *testing.T) {
	l, buf := newTestLogger(t)
	l.With(String("foo", "bar")).Named("http").Info("msg")
	assert.Contains(t, buf.String(), `"foo":"bar"`)
	assert.Contains(t, buf.String(), `"logger":"http"`)
}

func TestErr_Nil(t *testing.T) {
	assert.Equal(t, "<nil>", Err(nil).Value)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("bogus"))
}

func TestSetLevel(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: LevelError, OutputPaths: []string{"stdout"}})
	require.NoError(t, err)
	child := l.Named("child")

	assert.True(t, SetLevel(l, LevelDebug))
	assert.Equal(t, zapcore.DebugLevel, child.(*zapLogger).level.Level())
}

func TestDefault(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	l := NewNopLogger()
	SetDefault(l)
	assert.Equal(t, l, Default())

	SetDefault(nil)
	assert.Equal(t, l, Default())
}

func TestContextPropagation(t *testing.T) {
	l, _ := newTestLogger(t)
	fallback := NewNopLogger()

	ctx := WithContext(context.Background(), l)
	assert.Equal(t, l, FromContext(ctx, fallback))
	assert.Equal(t, fallback, FromContext(context.Background(), fallback))
	assert.NotNil(t, FromContext(context.Background(), nil))
}

func TestLogOperationDuration(t *testing.T) {
	l, buf := newTestLogger(t)
	LogOperationDuration(l, "encode", time.Now())
	assert.Contains(t, buf.String(), "operation completed")
	assert.Contains(t, buf.String(), `"operation":"encode"`)
	assert.Contains(t, buf.String(), FieldDurationMS)

	buf.Reset()
	LogOperationDuration(l, "batch", time.Now().Add(-2*time.Second))
	assert.Contains(t, buf.String(), "slow operation")
	assert.Contains(t, buf.String(), `"level":"warn"`)
}

func TestRequestID(t *testing.T) {
	assert.Nil(t, RequestID(""))
	assert.Equal(t, []Field{String(FieldRequestID, "r1")}, RequestID("r1"))
}

//Personal.AI order the ending
