package logging

import "time"

// Canonical field keys.
const (
	FieldRequestID  = "request_id"
	FieldJobID      = "job_id"
	FieldPatternID  = "pattern_id"
	FieldComponent  = "component"
	FieldDurationMS = "duration_ms"
	FieldCacheLevel = "cache_level"
	FieldTopic      = "topic"
)

// slowOperation is the duration above which LogOperationDuration warns.
const slowOperation = time.Second

// LogOperationDuration logs the elapsed time since start under op, at WARN
// level when the operation took longer than a second.
func LogOperationDuration(l Logger, op string, start time.Time, fields ...Field) {
	elapsed := time.Since(start)
	fields = append(fields, String("operation", op), Int64(FieldDurationMS, elapsed.Milliseconds()))
	if elapsed > slowOperation {
		l.Warn("slow operation", fields...)
		return
	}
	l.Info("operation completed", fields...)
}

// RequestID returns the request id field, or no field when id is empty.
func RequestID(id string) []Field {
	if id == "" {
		return nil
	}
	return []Field{String(FieldRequestID, id)}
}

//Personal.AI order the ending
