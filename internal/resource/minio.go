package resource

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"transcription-service/pkg/config"
	"transcription-service/pkg/logger"
)

// MinioResource owns the object-storage client and the media bucket.
type MinioResource struct {
	client     *minio.Client
	bucketName string
}

// NewMinioResource builds the client and makes sure the bucket exists.
func NewMinioResource(cfg config.MinioConfig) (*MinioResource, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("minio bucket_name is required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	r := &MinioResource{client: client, bucketName: cfg.BucketName}
	if err := r.ensureBucket(); err != nil {
		return nil, err
	}

	logger.Info("MinIO resource initialized", map[string]interface{}{
		"endpoint":    cfg.Endpoint,
		"bucket_name": r.bucketName,
	})
	return r, nil
}

func (r *MinioResource) ensureBucket() error {
	ctx := context.Background()
	exists, err := r.client.BucketExists(ctx, r.bucketName)
	if err != nil {
		return fmt.Errorf("check minio bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := r.client.MakeBucket(ctx, r.bucketName, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create minio bucket: %w", err)
	}
	return nil
}

func (r *MinioResource) GetClient() *minio.Client {
	return r.client
}

func (r *MinioResource) GetBucketName() string {
	return r.bucketName
}

// Close releases the resource. The minio client holds no persistent connection.
func (r *MinioResource) Close() {}
