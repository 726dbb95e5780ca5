package gateway

import (
	"context"
	"errors"
)

// ErrObjectNotFound is returned by StatObject when the key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// ObjectInfo describes a remote object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// StorageGateway abstracts the remote object store holding uploaded media.
type StorageGateway interface {
	// StatObject returns size metadata, or ErrObjectNotFound when the key
	// does not exist.
	StatObject(ctx context.Context, objectKey string) (ObjectInfo, error)
	// DownloadFile fetches the whole object to localPath.
	DownloadFile(ctx context.Context, objectKey, localPath string) error
	// DownloadRange appends the inclusive byte window [start, end] of the
	// object to localPath.
	DownloadRange(ctx context.Context, objectKey, localPath string, start, end int64) error
	// RemoveObject deletes the object. Missing keys are not an error.
	RemoveObject(ctx context.Context, objectKey string) error
}
