package database

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/acadvisor/acadvisor/internal/config"
	"github.com/acadvisor/acadvisor/internal/pkg/logger"
	"github.com/acadvisor/acadvisor/internal/pkg/metrics"
)

// ObjectStore reads catalog documents from an S3-compatible bucket
type ObjectStore struct {
	Client *minio.Client
	Bucket string
}

// NewMinIO creates a MinIO client and checks that the bucket exists.
// The catalog bucket is read-only, so a missing bucket is an error.
func NewMinIO(ctx context.Context, cfg config.MinIOConfig) (*ObjectStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %q does not exist", cfg.Bucket)
	}

	logger.Info("connected to MinIO",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("bucket", cfg.Bucket),
	)

	return &ObjectStore{Client: client, Bucket: cfg.Bucket}, nil
}

// ReadObject returns the full content of an object
func (s *ObjectStore) ReadObject(ctx context.Context, key string) (data []byte, err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOp("minio", "get_object", time.Since(start), err) }()

	obj, err := s.Client.GetObject(ctx, s.Bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer obj.Close()

	data, err = io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}
	return data, nil
}
