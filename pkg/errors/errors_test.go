package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/molsmarts/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// TestNew
// ─────────────────────────────────────────────────────────────────────────────

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal error", errors.CodeInternal, "unexpected failure"},
		{"molfile", errors.ErrCodeMolfileParseFailed, "counts line too short"},
		{"invalid param", errors.CodeInvalidParam, "molfile must not be empty"},
		{"rate limit", errors.CodeRateLimit, "too many requests"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)

			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail)
			assert.Nil(t, ae.Cause)
		})
	}
}

func TestNewf_FormatsMessage(t *testing.T) {
	t.Parallel()

	ae := errors.Newf(errors.ErrCodeRingClosureOverflow, "ring closure %d exceeds %d", 100, 99)
	assert.Equal(t, "ring closure 100 exceeds 99", ae.Message)
	assert.Contains(t, ae.Stack, "errors_test.go")
}

// ─────────────────────────────────────────────────────────────────────────────
// TestWrap
// ─────────────────────────────────────────────────────────────────────────────

func TestWrap_NilErrReturnsNil(t *testing.T) {
	t.Parallel()

	assert.Nil(t, errors.Wrap(nil, errors.CodeInternal, "should not matter"))
	assert.Nil(t, errors.Wrapf(nil, errors.CodeInternal, "id=%d", 1))
}

func TestWrap_CauseChainIsPreserved(t *testing.T) {
	t.Parallel()

	root := stderrors.New("root DB error")
	wrapped := errors.Wrap(root, errors.ErrCodeDatabaseError, "connection failed")

	require.NotNil(t, wrapped)
	assert.Equal(t, errors.ErrCodeDatabaseError, wrapped.Code)
	assert.Equal(t, root, stderrors.Unwrap(wrapped))
}

func TestWrap_PreservesOriginalCodeWhenCodeUnknown(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodePatternNotFound, "not found")
	outer := errors.Wrap(inner, errors.CodeUnknown, "adding context")
	assert.Equal(t, errors.ErrCodePatternNotFound, outer.Code)

	outerf := errors.Wrapf(inner, errors.CodeUnknown, "pattern %s", "abc")
	assert.Equal(t, errors.ErrCodePatternNotFound, outerf.Code)
	assert.Equal(t, "pattern abc", outerf.Message)
}

func TestWrap_OverridesCodeWhenExplicit(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodePatternNotFound, "not found")
	outer := errors.Wrap(inner, errors.CodeInternal, "unexpected state")
	assert.Equal(t, errors.CodeInternal, outer.Code)
}

// ─────────────────────────────────────────────────────────────────────────────
// TestError_Method
// ─────────────────────────────────────────────────────────────────────────────

func TestError_Format(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.ErrCodeMolfileParseFailed, "bad atom line")
	assert.Equal(t, "[MOL_002] bad atom line", ae.Error())

	ae = ae.WithDetail("line 5")
	assert.Equal(t, "[MOL_002] bad atom line: line 5", ae.Error())

	ae = ae.WithCause(stderrors.New("strconv: invalid syntax"))
	assert.Equal(t, "[MOL_002] bad atom line: line 5: strconv: invalid syntax", ae.Error())
}

func TestWithDetail_NilReceiverReturnsNil(t *testing.T) {
	t.Parallel()

	var ae *errors.AppError
	assert.Nil(t, ae.WithDetail("x"))
	assert.Nil(t, ae.WithCause(stderrors.New("x")))
}

func TestWithDetail_DoesNotMutateOriginal(t *testing.T) {
	t.Parallel()

	original := errors.New(errors.CodeNotFound, "resource missing")
	detailed := original.WithDetail("id=42")

	assert.Empty(t, original.Detail)
	assert.Equal(t, "id=42", detailed.Detail)
}

// ─────────────────────────────────────────────────────────────────────────────
// Chain helpers
// ─────────────────────────────────────────────────────────────────────────────

func TestIsCode_TraversesStdWrapping(t *testing.T) {
	t.Parallel()

	base := errors.New(errors.ErrCodeMoleculeGraphInvalid, "edge references unknown vertex")
	wrapped := fmt.Errorf("encode: %w", base)

	assert.True(t, errors.IsCode(wrapped, errors.ErrCodeMoleculeGraphInvalid))
	assert.False(t, errors.IsCode(wrapped, errors.CodeInternal))
	assert.False(t, errors.IsCode(nil, errors.CodeInternal))
}

func TestIs_MatchesByCode(t *testing.T) {
	t.Parallel()

	err := errors.Wrap(stderrors.New("x"), errors.ErrCodeCacheError, "get failed")
	assert.True(t, stderrors.Is(err, errors.New(errors.ErrCodeCacheError, "")))
	assert.False(t, stderrors.Is(err, errors.New(errors.ErrCodeDatabaseError, "")))
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		err      error
		expected bool
	}{
		{"generic", errors.NotFound("not found"), true},
		{"pattern", errors.New(errors.ErrCodePatternNotFound, "pattern not found"), true},
		{"object", errors.New(errors.ErrCodeObjectNotFound, "no such key"), true},
		{"wrapped", fmt.Errorf("outer: %w", errors.New(errors.ErrCodeJobNotFound, "job")), true},
		{"other", errors.Internal("boom"), false},
		{"std", stderrors.New("plain"), false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.expected, errors.IsNotFound(tc.err), tc.name)
	}
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeInternal, errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, errors.CodeRateLimit, errors.GetCode(errors.RateLimit("slow down")))
	assert.Equal(t, errors.CodeInvalidParam, errors.GetCode(fmt.Errorf("x: %w", errors.New(errors.CodeInvalidParam, "bad"))))
}

//Personal.AI order the ending
