package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"transcription-service/ddd/domain/entity"
	"transcription-service/ddd/domain/gateway"
	"transcription-service/pkg/logger"
)

// ErrFileMissing means the media exists in neither the local cache nor any
// remote key convention.
var ErrFileMissing = errors.New("media file missing")

// BlobLocator resolves a media item to a readable local file: local cache
// first, then the remote key conventions in priority order, downloading the
// first hit into the cache.
type BlobLocator struct {
	storage    gateway.StorageGateway
	planner    *ChunkPlanner
	strategies []KeyStrategy
	cacheDir   string
}

func NewBlobLocator(storage gateway.StorageGateway, planner *ChunkPlanner, strategies []KeyStrategy, cacheDir string) *BlobLocator {
	return &BlobLocator{
		storage:    storage,
		planner:    planner,
		strategies: strategies,
		cacheDir:   cacheDir,
	}
}

// Locate returns the local path and byte size of the media, or ErrFileMissing
// once every candidate is exhausted. Downloaded files land in the cache dir;
// the caller owns eventual cleanup.
func (l *BlobLocator) Locate(ctx context.Context, item *entity.MediaItem) (string, int64, error) {
	if item.LocalPath != "" {
		if size, ok := usableFile(item.LocalPath); ok {
			return item.LocalPath, size, nil
		}
	}

	cachePath := filepath.Join(l.cacheDir, item.FileName)
	if size, ok := usableFile(cachePath); ok {
		return cachePath, size, nil
	}

	candidates := l.candidateKeys(item)
	for _, key := range candidates {
		info, err := l.storage.StatObject(ctx, key)
		if errors.Is(err, gateway.ErrObjectNotFound) {
			continue
		}
		if err != nil {
			return "", 0, fmt.Errorf("stat object %s: %w", key, err)
		}

		if err := os.MkdirAll(l.cacheDir, 0o755); err != nil {
			return "", 0, fmt.Errorf("create cache dir: %w", err)
		}
		if err := l.download(ctx, key, cachePath, info.Size); err != nil {
			_ = os.Remove(cachePath)
			return "", 0, err
		}

		logger.Info("media downloaded to cache", map[string]interface{}{
			"media_uuid": item.MediaUUID,
			"object_key": key,
			"size_bytes": info.Size,
		})
		return cachePath, info.Size, nil
	}

	return "", 0, fmt.Errorf("%w: %s (tried %d keys)", ErrFileMissing, item.FileName, len(candidates))
}

// candidateKeys lists the remote keys to probe, the item's own stored key
// first when present.
func (l *BlobLocator) candidateKeys(item *entity.MediaItem) []string {
	keys := make([]string, 0, len(l.strategies)+1)
	if item.RemoteKey != "" {
		keys = append(keys, item.RemoteKey)
	}
	for _, s := range l.strategies {
		key := s.Resolve(item.OwnerID, item.FileName)
		if key != item.RemoteKey {
			keys = append(keys, key)
		}
	}
	return keys
}

// download fetches the object in one GET, or in byte windows for huge
// objects so the whole blob is never buffered at once.
func (l *BlobLocator) download(ctx context.Context, key, localPath string, size int64) error {
	if !l.planner.IsHuge(size) {
		if err := l.storage.DownloadFile(ctx, key, localPath); err != nil {
			return fmt.Errorf("download %s: %w", key, err)
		}
		return nil
	}

	for _, r := range l.planner.PlanByteRanges(size) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := l.storage.DownloadRange(ctx, key, localPath, r.Start, r.End); err != nil {
			return fmt.Errorf("download range %d-%d of %s: %w", r.Start, r.End, key, err)
		}
	}
	return nil
}

func usableFile(path string) (int64, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() || info.Size() == 0 {
		return 0, false
	}
	return info.Size(), true
}
