package encoding

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/molsmarts/internal/domain/pattern"
	"github.com/turtacn/molsmarts/internal/infrastructure/chemio/molfile"
	"github.com/turtacn/molsmarts/internal/infrastructure/chemio/smarts"
	"github.com/turtacn/molsmarts/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/molsmarts/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molsmarts/internal/infrastructure/storage/minio"
	"github.com/turtacn/molsmarts/pkg/errors"
	"github.com/turtacn/molsmarts/pkg/types/common"
)

const (
	stageSubmitted = "submitted"
	stageProcessed = "processed"

	resultURLExpiry = 15 * time.Minute
)

// JobRequest submits an SD file for asynchronous encoding.
type JobRequest struct {
	SDF     []byte         `json:"sdf"`
	Options smarts.Options `json:"options"`
	// Persist saves every encoded record as a pattern.
	Persist bool `json:"persist,omitempty"`
}

// JobMessage is the payload of an encode request event.
type JobMessage struct {
	JobID     common.ID      `json:"job_id"`
	ObjectKey string         `json:"object_key"`
	Options   smarts.Options `json:"options"`
	Persist   bool           `json:"persist,omitempty"`
}

// JobResultMessage is the payload of an encode completed event.
type JobResultMessage struct {
	JobID     common.ID         `json:"job_id"`
	Status    pattern.JobStatus `json:"status"`
	Total     int               `json:"total"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	ResultKey string            `json:"result_key,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// recordOutcome is one line of a job result file.
type recordOutcome struct {
	name   string
	smarts string
	err    *common.ErrorDetail
}

func (s *serviceImpl) SubmitJob(ctx context.Context, req *JobRequest) (*pattern.Job, error) {
	if s.objects == nil {
		return nil, errors.New(errors.ErrCodeServiceUnavailable, "object storage is not configured")
	}
	if req == nil || len(bytes.TrimSpace(req.SDF)) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "sd file is empty")
	}
	if int64(len(req.SDF)) > s.cfg.MaxJobBytes {
		return nil, errors.Newf(errors.ErrCodeValidation, "sd file of %d bytes exceeds the limit of %d", len(req.SDF), s.cfg.MaxJobBytes)
	}
	opts := mergeOptions(s.cfg.DefaultOptions, req.Options)
	job := pattern.NewJob(opts.Key())
	log := s.logger.With(logging.String(logging.FieldJobID, string(job.ID)))

	if err := s.objects.Put(ctx, job.ObjectKey, req.SDF, minio.ContentTypeSDF); err != nil {
		s.metrics.RecordJob(stageSubmitted, err)
		log.Error("failed to store sd file", logging.Err(err))
		return nil, err
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		s.metrics.RecordJob(stageSubmitted, err)
		return nil, err
	}
	msg := &JobMessage{JobID: job.ID, ObjectKey: job.ObjectKey, Options: opts, Persist: req.Persist}

	if s.publisher == nil {
		s.metrics.RecordJob(stageSubmitted, nil)
		if err := s.ProcessJob(ctx, msg); err != nil {
			log.Error("inline job processing failed", logging.Err(err))
			// No consumer will retry an inline job.
			if aerr := s.AbandonJob(ctx, msg, err); aerr != nil {
				log.Error("failed to mark job failed", logging.Err(aerr))
			}
		}
		return s.jobs.FindByID(ctx, job.ID)
	}

	if err := s.publish(ctx, kafka.TopicEncodeRequest, kafka.EventEncodeRequested, job.ID, msg); err != nil {
		s.metrics.RecordJob(stageSubmitted, err)
		job.Fail("failed to enqueue job")
		if uerr := s.jobs.Update(ctx, job); uerr != nil {
			log.Error("failed to mark job failed", logging.Err(uerr))
		}
		return nil, err
	}
	s.metrics.RecordJob(stageSubmitted, nil)
	log.Info("job submitted", logging.Int("bytes", len(req.SDF)))
	return job, nil
}

func (s *serviceImpl) publish(ctx context.Context, topic, event string, id common.ID, payload interface{}) error {
	env, err := kafka.NewEnvelope(event, s.cfg.Source, payload)
	if err != nil {
		return err
	}
	if rid, ok := ctx.Value(common.ContextKeyRequestID).(string); ok {
		env.TraceID = rid
	}
	pm, err := env.ToMessage(topic, []byte(id))
	if err != nil {
		return err
	}
	return s.publisher.Publish(ctx, pm)
}

// ProcessJob encodes every record of the job's SD file and stores one result
// line per record.  Redelivered messages for a job that is finished or being
// processed elsewhere are acknowledged without work.  Errors returned are
// transient; a job that cannot succeed is marked failed and nil is returned.
func (s *serviceImpl) ProcessJob(ctx context.Context, msg *JobMessage) error {
	if msg == nil || msg.JobID == "" {
		return errors.New(errors.ErrCodeValidation, "job message has no job id")
	}
	if s.objects == nil {
		return errors.New(errors.ErrCodeServiceUnavailable, "object storage is not configured")
	}
	log := s.logger.With(logging.String(logging.FieldJobID, string(msg.JobID)))

	release, ok, err := s.lockJob(ctx, msg.JobID, log)
	if err != nil {
		return err
	}
	if !ok {
		log.Info("job is being processed by another worker")
		return nil
	}
	defer release()

	job, err := s.jobs.FindByID(ctx, msg.JobID)
	if err != nil {
		return err
	}
	if job.Status.IsTerminal() {
		log.Info("job already finished", logging.String("status", string(job.Status)))
		return nil
	}
	if err := job.Start(); err != nil {
		return err
	}
	if err := s.jobs.Update(ctx, job); err != nil {
		return err
	}

	s.metrics.JobStarted()
	defer s.metrics.JobFinished()
	start := time.Now()

	data, err := s.objects.Get(ctx, msg.ObjectKey)
	if errors.IsCode(err, errors.ErrCodeObjectNotFound) {
		return s.finishFailed(ctx, job, "sd file not found", start)
	}
	if err != nil {
		return err
	}

	outcomes, err := s.encodeRecords(ctx, data, msg)
	if err != nil {
		return err
	}
	succeeded := 0
	for _, o := range outcomes {
		if o.err == nil {
			succeeded++
		}
	}
	failed := len(outcomes) - succeeded

	if err := s.objects.Put(ctx, pattern.ResultKeyFor(job.ID), renderResults(outcomes), minio.ContentTypeSMARTS); err != nil {
		return err
	}
	if err := job.Complete(succeeded, failed); err != nil {
		return err
	}
	if err := s.jobs.Update(ctx, job); err != nil {
		return err
	}
	s.metrics.RecordJobRecords(succeeded, failed)
	s.finish(ctx, job, start)
	log.Info("job finished",
		logging.String("status", string(job.Status)),
		logging.Int("succeeded", succeeded),
		logging.Int("failed", failed),
		logging.Int64(logging.FieldDurationMS, time.Since(start).Milliseconds()))
	return nil
}

// AbandonJob marks a job failed once its message will not be processed again,
// after the consumer ran out of retries or an inline run failed.  Finished
// jobs and jobs locked by another worker are left alone.
func (s *serviceImpl) AbandonJob(ctx context.Context, msg *JobMessage, cause error) error {
	if msg == nil || msg.JobID == "" {
		return errors.New(errors.ErrCodeValidation, "job message has no job id")
	}
	log := s.logger.With(logging.String(logging.FieldJobID, string(msg.JobID)))

	release, ok, err := s.lockJob(ctx, msg.JobID, log)
	if err != nil {
		return err
	}
	if !ok {
		log.Info("job is locked by another worker, not abandoning")
		return nil
	}
	defer release()

	job, err := s.jobs.FindByID(ctx, msg.JobID)
	if err != nil {
		return err
	}
	if job.Status.IsTerminal() {
		return nil
	}
	reason := "processing failed"
	if cause != nil {
		reason += ": " + cause.Error()
	}
	return s.finishFailed(ctx, job, reason, job.UpdatedAt)
}

// lockJob takes the per job lock.  Without a lock factory every call wins.
func (s *serviceImpl) lockJob(ctx context.Context, id common.ID, log logging.Logger) (func(), bool, error) {
	if s.locks == nil {
		return func() {}, true, nil
	}
	lock := s.locks("job:"+string(id), s.cfg.JobLockTTL)
	ok, err := lock.TryLock(ctx)
	if err != nil || !ok {
		return nil, false, err
	}
	return func() {
		if err := lock.Unlock(context.WithoutCancel(ctx)); err != nil {
			log.Warn("failed to release job lock", logging.Err(err))
		}
	}, true, nil
}

// encodeRecords encodes the records of data concurrently, keeping file order.
func (s *serviceImpl) encodeRecords(ctx context.Context, data []byte, msg *JobMessage) ([]recordOutcome, error) {
	var records []*molfile.Record
	var outcomes []recordOutcome
	err := molfile.ScanSDF(bytes.NewReader(data), func(_ int, rec *molfile.Record, perr error) error {
		out := recordOutcome{}
		if perr != nil {
			out.err = ErrorDetail(perr)
		}
		records = append(records, rec)
		outcomes = append(outcomes, out)
		return nil
	})
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.BatchConcurrency)
	for i, rec := range records {
		if rec == nil {
			continue
		}
		i, rec := i, rec
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = s.encodeRecord(gctx, rec, msg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, ctx.Err()
}

func (s *serviceImpl) encodeRecord(ctx context.Context, rec *molfile.Record, msg *JobMessage) recordOutcome {
	start := time.Now()
	out := recordOutcome{name: rec.Structure.Name}
	hash := MolfileHash(rec.Molfile)
	entry, _, err := s.cache.load(ctx, CacheKey(hash, msg.Options), func() (cachedEncoding, error) {
		return encodeParsed(rec.Structure, msg.Options)
	})
	if err != nil {
		s.metrics.RecordEncode(sourceJob, 0, 0, time.Since(start), err)
		out.err = ErrorDetail(err)
		return out
	}
	s.metrics.RecordEncode(sourceJob, entry.AtomCount, entry.RingClosures, time.Since(start), nil)
	out.smarts = entry.SMARTS
	if msg.Persist {
		if _, err := s.persist(ctx, out.name, hash, msg.Options, entry); err != nil {
			out.err = ErrorDetail(err)
		}
	}
	return out
}

// renderResults writes a tab separated file with one row per record.
func renderResults(outcomes []recordOutcome) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = '\t'
	_ = w.Write([]string{"index", "name", "smarts", "error"})
	for i, o := range outcomes {
		msg := ""
		if o.err != nil {
			msg = o.err.Code + ": " + o.err.Message
		}
		_ = w.Write([]string{strconv.Itoa(i), o.name, o.smarts, msg})
	}
	w.Flush()
	return buf.Bytes()
}

func (s *serviceImpl) finishFailed(ctx context.Context, job *pattern.Job, reason string, start time.Time) error {
	job.Fail(reason)
	if err := s.jobs.Update(ctx, job); err != nil {
		return err
	}
	s.finish(ctx, job, start)
	s.logger.Warn("job failed", logging.String(logging.FieldJobID, string(job.ID)), logging.String("reason", reason))
	return nil
}

// finish records the outcome and announces it.  A failed announcement is
// logged; the job state is already stored.
func (s *serviceImpl) finish(ctx context.Context, job *pattern.Job, start time.Time) {
	var outcome error
	if job.Status == pattern.JobFailed {
		outcome = errors.New(errors.ErrCodeEncodeFailed, job.Error)
	}
	s.metrics.RecordJob(stageProcessed, outcome)
	s.metrics.RecordJobDuration(time.Since(start))
	if s.publisher == nil {
		return
	}
	res := &JobResultMessage{
		JobID:     job.ID,
		Status:    job.Status,
		Total:     job.Total,
		Succeeded: job.Succeeded,
		Failed:    job.Failed,
		Error:     job.Error,
	}
	if job.Status == pattern.JobSucceeded {
		res.ResultKey = pattern.ResultKeyFor(job.ID)
	}
	if err := s.publish(ctx, kafka.TopicEncodeResult, kafka.EventEncodeCompleted, job.ID, res); err != nil {
		s.logger.Error("failed to publish job result", logging.String(logging.FieldJobID, string(job.ID)), logging.Err(err))
	}
}

func (s *serviceImpl) GetJob(ctx context.Context, id common.ID) (*pattern.Job, error) {
	if err := id.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "invalid job id")
	}
	return s.jobs.FindByID(ctx, id)
}

// ResultURL returns a presigned download URL for the result file of a
// succeeded job.
func (s *serviceImpl) ResultURL(ctx context.Context, id common.ID) (string, error) {
	job, err := s.GetJob(ctx, id)
	if err != nil {
		return "", err
	}
	if job.Status != pattern.JobSucceeded {
		return "", errors.Newf(errors.ErrCodeConflict, "job %s is %s", job.ID, job.Status)
	}
	if s.objects == nil {
		return "", errors.New(errors.ErrCodeServiceUnavailable, "object storage is not configured")
	}
	return s.objects.PresignedURL(ctx, pattern.ResultKeyFor(job.ID), resultURLExpiry)
}

// NewJobHandler adapts ProcessJob to the consumer.
func NewJobHandler(svc Service) kafka.MessageHandler {
	return func(ctx context.Context, m *kafka.Message) error {
		env, err := kafka.DecodeEnvelope(m)
		if err != nil {
			return err
		}
		if env.EventType != kafka.EventEncodeRequested {
			return errors.Newf(errors.ErrCodeValidation, "unexpected event type %q", env.EventType)
		}
		var msg JobMessage
		if err := env.Decode(&msg); err != nil {
			return err
		}
		if env.TraceID != "" {
			ctx = context.WithValue(ctx, common.ContextKeyRequestID, env.TraceID)
		}
		return svc.ProcessJob(ctx, &msg)
	}
}

// NewJobExhaustedHandler fails the job of an encode request the consumer has
// given up on, so it does not stay running.
func NewJobExhaustedHandler(svc Service, logger logging.Logger) kafka.ExhaustedHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return func(ctx context.Context, m *kafka.Message, cause error) {
		env, err := kafka.DecodeEnvelope(m)
		if err != nil {
			logger.Warn("cannot abandon undecodable job message", logging.Err(err))
			return
		}
		var msg JobMessage
		if err := env.Decode(&msg); err != nil || msg.JobID == "" {
			logger.Warn("cannot abandon job message without job id", logging.Err(err))
			return
		}
		if err := svc.AbandonJob(ctx, &msg, cause); err != nil {
			logger.Error("failed to mark exhausted job failed",
				logging.String(logging.FieldJobID, string(msg.JobID)), logging.Err(err))
		}
	}
}

//Personal.AI order the ending
