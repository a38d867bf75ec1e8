package storage

import (
	"context"
)

// UploadResult describes a stored object.
type UploadResult struct {
	// Key is the object key inside the bucket, used as the cloud asset id.
	Key string
	// URL is the publicly resolvable location of the object.
	URL string
	// Size is the stored size in bytes.
	Size int64
}

// Uploader stores binary blobs in cloud object storage.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (*UploadResult, error)
}
