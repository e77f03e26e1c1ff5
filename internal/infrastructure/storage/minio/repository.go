package minio

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/molsmarts/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molsmarts/pkg/errors"
)

var (
	ErrObjectNotFound = errors.New(errors.ErrCodeObjectNotFound, "object not found")
	ErrInvalidRequest = errors.New(errors.ErrCodeValidation, "invalid request")
)

// ObjectStore keeps SD files and job results under keys of the service
// bucket.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	PutStream(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// Content types used by the service.
const (
	ContentTypeSDF    = "chemical/x-mdl-sdfile"
	ContentTypeSMARTS = "text/plain; charset=utf-8"
)

type minioRepository struct {
	client *MinIOClient
	logger logging.Logger
}

func NewMinIORepository(client *MinIOClient, log logging.Logger) ObjectStore {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &minioRepository{client: client, logger: log}
}

func (r *minioRepository) Put(ctx context.Context, key string, data []byte, contentType string) error {
	return r.PutStream(ctx, key, bytes.NewReader(data), int64(len(data)), contentType)
}

// PutStream uploads r.  A size of -1 streams in parts of the configured size.
func (r *minioRepository) PutStream(ctx context.Context, key string, rd io.Reader, size int64, contentType string) error {
	if key == "" || rd == nil {
		return ErrInvalidRequest
	}
	if r.client.isClosed() {
		return ErrMinIOClientClosed
	}
	opts := minio.PutObjectOptions{ContentType: contentType}
	if size < 0 {
		opts.PartSize = uint64(r.client.config.PartSize)
	}
	info, err := r.client.client.PutObject(ctx, r.client.Bucket(), key, rd, size, opts)
	if err != nil {
		return errors.Wrapf(err, errors.ErrCodeStorageError, "failed to upload %s", key)
	}
	r.logger.Debug("object uploaded", logging.String("key", key), logging.Int64("size", info.Size))
	return nil
}

func (r *minioRepository) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrInvalidRequest
	}
	if r.client.isClosed() {
		return nil, ErrMinIOClientClosed
	}
	obj, err := r.client.client.GetObject(ctx, r.client.Bucket(), key, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapError(err, key)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, mapError(err, key)
	}
	return data, nil
}

func (r *minioRepository) Exists(ctx context.Context, key string) (bool, error) {
	if r.client.isClosed() {
		return false, ErrMinIOClientClosed
	}
	_, err := r.client.client.StatObject(ctx, r.client.Bucket(), key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if isNoSuchKey(err) {
		return false, nil
	}
	return false, errors.Wrapf(err, errors.ErrCodeStorageError, "failed to stat %s", key)
}

func (r *minioRepository) Delete(ctx context.Context, key string) error {
	if r.client.isClosed() {
		return ErrMinIOClientClosed
	}
	if err := r.client.client.RemoveObject(ctx, r.client.Bucket(), key, minio.RemoveObjectOptions{}); err != nil {
		return errors.Wrapf(err, errors.ErrCodeStorageError, "failed to delete %s", key)
	}
	return nil
}

func (r *minioRepository) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if expiry <= 0 {
		expiry = r.client.config.PresignExpiry
	}
	u, err := r.client.client.PresignedGetObject(ctx, r.client.Bucket(), key, expiry, nil)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrCodeStorageError, "failed to presign %s", key)
	}
	return u.String(), nil
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}

func mapError(err error, key string) error {
	if isNoSuchKey(err) {
		return ErrObjectNotFound.WithDetail(key)
	}
	return errors.Wrapf(err, errors.ErrCodeStorageError, "failed to download %s", key)
}

//Personal.AI order the ending
