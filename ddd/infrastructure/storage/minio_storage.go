package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"

	"transcription-service/ddd/domain/gateway"
	"transcription-service/internal/resource"
	"transcription-service/pkg/logger"
)

// MinioStorage implements the StorageGateway against the media bucket.
type MinioStorage struct {
	minioResource *resource.MinioResource
}

func NewMinioStorage(minioResource *resource.MinioResource) gateway.StorageGateway {
	return &MinioStorage{
		minioResource: minioResource,
	}
}

// StatObject returns size metadata, mapping the bucket's missing-key error
// to gateway.ErrObjectNotFound.
func (s *MinioStorage) StatObject(ctx context.Context, objectKey string) (gateway.ObjectInfo, error) {
	client := s.minioResource.GetClient()
	bucketName := s.minioResource.GetBucketName()

	info, err := client.StatObject(ctx, bucketName, objectKey, minio.StatObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" {
			return gateway.ObjectInfo{}, gateway.ErrObjectNotFound
		}
		logger.Error("Failed to stat object in MinIO", map[string]interface{}{
			"object_key": objectKey,
			"error":      err.Error(),
		})
		return gateway.ObjectInfo{}, fmt.Errorf("stat object in minio failed: %w", err)
	}

	return gateway.ObjectInfo{Key: objectKey, Size: info.Size}, nil
}

// DownloadFile fetches the whole object to localPath.
func (s *MinioStorage) DownloadFile(ctx context.Context, objectKey, localPath string) error {
	client := s.minioResource.GetClient()
	bucketName := s.minioResource.GetBucketName()

	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return fmt.Errorf("create local directory failed: %w", err)
	}

	object, err := client.GetObject(ctx, bucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		logger.Error("Failed to get object from MinIO", map[string]interface{}{
			"object_key": objectKey,
			"error":      err.Error(),
		})
		return fmt.Errorf("get object from minio failed: %w", err)
	}
	defer object.Close()

	localFile, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("create local file failed: %w", err)
	}
	defer localFile.Close()

	if _, err = localFile.ReadFrom(object); err != nil {
		logger.Error("Failed to download file from MinIO", map[string]interface{}{
			"object_key": objectKey,
			"local_path": localPath,
			"error":      err.Error(),
		})
		return fmt.Errorf("download file from minio failed: %w", err)
	}

	logger.Info("File downloaded successfully", map[string]interface{}{
		"object_key": objectKey,
		"local_path": localPath,
	})
	return nil
}

// DownloadRange appends the inclusive window [start, end] of the object to
// localPath, so huge objects stream down window by window.
func (s *MinioStorage) DownloadRange(ctx context.Context, objectKey, localPath string, start, end int64) error {
	client := s.minioResource.GetClient()
	bucketName := s.minioResource.GetBucketName()

	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return fmt.Errorf("create local directory failed: %w", err)
	}

	opts := minio.GetObjectOptions{}
	if err := opts.SetRange(start, end); err != nil {
		return fmt.Errorf("set object range failed: %w", err)
	}

	object, err := client.GetObject(ctx, bucketName, objectKey, opts)
	if err != nil {
		return fmt.Errorf("get object range from minio failed: %w", err)
	}
	defer object.Close()

	localFile, err := os.OpenFile(localPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open local file failed: %w", err)
	}
	defer localFile.Close()

	written, err := localFile.ReadFrom(object)
	if err != nil {
		return fmt.Errorf("download range from minio failed: %w", err)
	}
	if want := end - start + 1; written != want {
		return fmt.Errorf("short range download for %s: got %d bytes, want %d", objectKey, written, want)
	}
	return nil
}

// RemoveObject deletes the object; missing keys are not an error.
func (s *MinioStorage) RemoveObject(ctx context.Context, objectKey string) error {
	client := s.minioResource.GetClient()
	bucketName := s.minioResource.GetBucketName()

	if err := client.RemoveObject(ctx, bucketName, objectKey, minio.RemoveObjectOptions{}); err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" {
			return nil
		}
		return fmt.Errorf("remove object from minio failed: %w", err)
	}
	return nil
}
