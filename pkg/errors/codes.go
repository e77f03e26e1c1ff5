package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeNotFound           ErrorCode = "COMMON_004"
	ErrCodeConflict           ErrorCode = "COMMON_005"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_006"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_007"
	ErrCodeTimeout            ErrorCode = "COMMON_008"
	ErrCodeValidation         ErrorCode = "COMMON_009"
	ErrCodeSerialization      ErrorCode = "COMMON_010"
	ErrCodeNotImplemented     ErrorCode = "COMMON_011"
	ErrCodeForbidden          ErrorCode = "COMMON_012"
)

// Aliases used at call sites.
const (
	CodeUnknown        = ErrorCode("")
	CodeOK             = ErrorCode("OK")
	CodeInternal       = ErrCodeInternal
	CodeInvalidParam   = ErrCodeBadRequest
	CodeNotFound       = ErrCodeNotFound
	CodeConflict       = ErrCodeConflict
	CodeRateLimit      = ErrCodeTooManyRequests
	CodeTimeout        = ErrCodeTimeout
	CodeNotImplemented = ErrCodeNotImplemented
)

// Molecule Module Error Codes
const (
	ErrCodeMoleculeInvalidStructure ErrorCode = "MOL_001"
	ErrCodeMolfileParseFailed       ErrorCode = "MOL_002"
	ErrCodeMoleculeGraphInvalid     ErrorCode = "MOL_003"
	ErrCodeMoleculeEmpty            ErrorCode = "MOL_004"
)

// SMARTS Module Error Codes
const (
	ErrCodeRingClosureOverflow ErrorCode = "SMARTS_001"
	ErrCodePatternNotFound     ErrorCode = "SMARTS_002"
	ErrCodeJobNotFound         ErrorCode = "SMARTS_003"
	ErrCodeEncodeFailed        ErrorCode = "SMARTS_004"
)

// Infrastructure Error Codes
const (
	ErrCodeDatabaseError     ErrorCode = "DB_001"
	ErrCodeCacheError        ErrorCode = "CACHE_001"
	ErrCodeCacheMiss         ErrorCode = "CACHE_002"
	ErrCodeMessageQueueError ErrorCode = "MQ_001"
	ErrCodeStorageError      ErrorCode = "STORAGE_001"
	ErrCodeObjectNotFound    ErrorCode = "STORAGE_002"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeNotImplemented:     http.StatusNotImplemented,
	ErrCodeForbidden:          http.StatusForbidden,

	ErrCodeMoleculeInvalidStructure: http.StatusBadRequest,
	ErrCodeMolfileParseFailed:       http.StatusBadRequest,
	ErrCodeMoleculeGraphInvalid:     http.StatusUnprocessableEntity,
	ErrCodeMoleculeEmpty:            http.StatusBadRequest,

	ErrCodeRingClosureOverflow: http.StatusUnprocessableEntity,
	ErrCodePatternNotFound:     http.StatusNotFound,
	ErrCodeJobNotFound:         http.StatusNotFound,
	ErrCodeEncodeFailed:        http.StatusInternalServerError,

	ErrCodeDatabaseError:     http.StatusInternalServerError,
	ErrCodeCacheError:        http.StatusInternalServerError,
	ErrCodeCacheMiss:         http.StatusNotFound,
	ErrCodeMessageQueueError: http.StatusServiceUnavailable,
	ErrCodeStorageError:      http.StatusInternalServerError,
	ErrCodeObjectNotFound:    http.StatusNotFound,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeUnauthorized:       "unauthorized",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeNotImplemented:     "not implemented",
	ErrCodeForbidden:          "forbidden",

	ErrCodeMoleculeInvalidStructure: "invalid molecule structure",
	ErrCodeMolfileParseFailed:       "failed to parse molfile",
	ErrCodeMoleculeGraphInvalid:     "invalid molecule graph",
	ErrCodeMoleculeEmpty:            "molecule has no atoms",

	ErrCodeRingClosureOverflow: "too many ring closures",
	ErrCodePatternNotFound:     "pattern not found",
	ErrCodeJobNotFound:         "job not found",
	ErrCodeEncodeFailed:        "failed to encode SMARTS",

	ErrCodeDatabaseError:     "database error",
	ErrCodeCacheError:        "cache error",
	ErrCodeCacheMiss:         "cache miss",
	ErrCodeMessageQueueError: "message queue error",
	ErrCodeStorageError:      "object storage error",
	ErrCodeObjectNotFound:    "object not found",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
