package prometheus

import (
	"strconv"
	"time"
)

// Label values shared by the encoder metrics.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"

	CacheL1 = "l1"
	CacheL2 = "l2"
)

var (
	DefaultHTTPDurationBuckets   = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultEncodeDurationBuckets = []float64{.0001, .0005, .001, .0025, .005, .01, .025, .05, .1, .5, 1}
	DefaultBatchSizeBuckets      = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000}
	DefaultJobDurationBuckets    = []float64{.1, .5, 1, 5, 10, 30, 60, 300, 600}
)

// EncoderMetrics holds every metric the service records.
type EncoderMetrics struct {
	EncodeTotal      CounterVec
	EncodeDuration   HistogramVec
	AtomCount        HistogramVec
	RingClosures     HistogramVec
	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec
	BatchSize        HistogramVec

	JobsTotal         CounterVec
	JobDuration       HistogramVec
	JobRecordsTotal   CounterVec
	JobsInFlight      GaugeVec
	MessageRetries    CounterVec
	DeadLetteredTotal CounterVec

	PatternsSavedTotal CounterVec
	DBQueryDuration    HistogramVec

	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	GRPCRequestsTotal   CounterVec
	GRPCRequestDuration HistogramVec

	HealthCheckStatus GaugeVec
}

// NewEncoderMetrics registers the service metrics on collector.
func NewEncoderMetrics(c MetricsCollector) *EncoderMetrics {
	return &EncoderMetrics{
		EncodeTotal:      c.RegisterCounter("encode_total", "SMARTS encode requests", "status", "source"),
		EncodeDuration:   c.RegisterHistogram("encode_duration_seconds", "Time spent encoding one structure", DefaultEncodeDurationBuckets, "source"),
		AtomCount:        c.RegisterHistogram("encode_atom_count", "Atoms per encoded structure", []float64{1, 5, 10, 25, 50, 100, 250, 1000}),
		RingClosures:     c.RegisterHistogram("encode_ring_closures", "Ring closures per encoded structure", []float64{0, 1, 2, 4, 8, 16, 32, 99}),
		CacheHitsTotal:   c.RegisterCounter("cache_hits_total", "Encoded result cache hits", "level"),
		CacheMissesTotal: c.RegisterCounter("cache_misses_total", "Encoded result cache misses", "level"),
		BatchSize:        c.RegisterHistogram("batch_size", "Items per batch encode request", DefaultBatchSizeBuckets),

		JobsTotal:         c.RegisterCounter("jobs_total", "Encode jobs by stage and status", "stage", "status"),
		JobDuration:       c.RegisterHistogram("job_duration_seconds", "Time spent processing one encode job", DefaultJobDurationBuckets),
		JobRecordsTotal:   c.RegisterCounter("job_records_total", "SD records processed by jobs", "status"),
		JobsInFlight:      c.RegisterGauge("jobs_in_flight", "Encode jobs currently processing"),
		MessageRetries:    c.RegisterCounter("message_retries_total", "Message handler retries", "topic"),
		DeadLetteredTotal: c.RegisterCounter("dead_lettered_total", "Messages sent to a dead letter topic", "topic"),

		PatternsSavedTotal: c.RegisterCounter("patterns_saved_total", "Patterns persisted", "status"),
		DBQueryDuration:    c.RegisterHistogram("db_query_duration_seconds", "Pattern store query duration", nil, "operation"),

		HTTPRequestsTotal:   c.RegisterCounter("http_requests_total", "HTTP requests", "method", "path", "status_code"),
		HTTPRequestDuration: c.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path"),
		HTTPActiveRequests:  c.RegisterGauge("http_active_requests", "HTTP requests in flight"),

		GRPCRequestsTotal:   c.RegisterCounter("grpc_requests_total", "gRPC calls", "service", "method", "code"),
		GRPCRequestDuration: c.RegisterHistogram("grpc_request_duration_seconds", "gRPC call duration", DefaultHTTPDurationBuckets, "service", "method"),

		HealthCheckStatus: c.RegisterGauge("health_check_status", "Dependency health (1=up, 0=down)", "component"),
	}
}

func status(err error) string {
	if err != nil {
		return StatusFailure
	}
	return StatusSuccess
}

// RecordEncode records one encode call.  source is "structure", "molfile" or
// "job".
func (m *EncoderMetrics) RecordEncode(source string, atoms, closures int, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.EncodeTotal.WithLabelValues(status(err), source).Inc()
	m.EncodeDuration.WithLabelValues(source).Observe(d.Seconds())
	if err == nil {
		m.AtomCount.WithLabelValues().Observe(float64(atoms))
		m.RingClosures.WithLabelValues().Observe(float64(closures))
	}
}

// RecordCacheAccess counts a hit or a miss on the given cache level.
func (m *EncoderMetrics) RecordCacheAccess(level string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.WithLabelValues(level).Inc()
		return
	}
	m.CacheMissesTotal.WithLabelValues(level).Inc()
}

// RecordBatch records the size of a batch request.
func (m *EncoderMetrics) RecordBatch(size int) {
	if m == nil {
		return
	}
	m.BatchSize.WithLabelValues().Observe(float64(size))
}

// RecordJob counts a job transition.  stage is "submitted" or "processed".
func (m *EncoderMetrics) RecordJob(stage string, err error) {
	if m == nil {
		return
	}
	m.JobsTotal.WithLabelValues(stage, status(err)).Inc()
}

// RecordJobRecords counts processed SD records of a job.
func (m *EncoderMetrics) RecordJobRecords(succeeded, failed int) {
	if m == nil {
		return
	}
	m.JobRecordsTotal.WithLabelValues(StatusSuccess).Add(float64(succeeded))
	m.JobRecordsTotal.WithLabelValues(StatusFailure).Add(float64(failed))
}

// RecordJobDuration observes the processing time of one job.
func (m *EncoderMetrics) RecordJobDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.JobDuration.WithLabelValues().Observe(d.Seconds())
}

// JobStarted and JobFinished track the in-flight job gauge.
func (m *EncoderMetrics) JobStarted() {
	if m == nil {
		return
	}
	m.JobsInFlight.WithLabelValues().Inc()
}

func (m *EncoderMetrics) JobFinished() {
	if m == nil {
		return
	}
	m.JobsInFlight.WithLabelValues().Dec()
}

// RecordMessageRetry counts a handler retry on topic.
func (m *EncoderMetrics) RecordMessageRetry(topic string) {
	if m == nil {
		return
	}
	m.MessageRetries.WithLabelValues(topic).Inc()
}

// RecordDeadLettered counts a message moved to the dead letter topic of topic.
func (m *EncoderMetrics) RecordDeadLettered(topic string) {
	if m == nil {
		return
	}
	m.DeadLetteredTotal.WithLabelValues(topic).Inc()
}

// RecordPatternSaved counts a repository save.
func (m *EncoderMetrics) RecordPatternSaved(err error) {
	if m == nil {
		return
	}
	m.PatternsSavedTotal.WithLabelValues(status(err)).Inc()
}

// RecordDBQuery observes a pattern store query.
func (m *EncoderMetrics) RecordDBQuery(operation string, d time.Duration) {
	if m == nil {
		return
	}
	m.DBQueryDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// RecordHTTPRequest records a finished HTTP request.
func (m *EncoderMetrics) RecordHTTPRequest(method, path string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(code)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// RecordGRPCRequest records a finished gRPC call.
func (m *EncoderMetrics) RecordGRPCRequest(service, method, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.GRPCRequestsTotal.WithLabelValues(service, method, code).Inc()
	m.GRPCRequestDuration.WithLabelValues(service, method).Observe(d.Seconds())
}

// SetHealth records the health of a dependency.
func (m *EncoderMetrics) SetHealth(component string, up bool) {
	if m == nil {
		return
	}
	v := 0.0
	if up {
		v = 1
	}
	m.HealthCheckStatus.WithLabelValues(component).Set(v)
}

//Personal.AI order the ending
