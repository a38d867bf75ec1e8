package storage

import (
	"context"
	"sync"
)

// MemoryUploader keeps uploaded objects in a map. Test double for the S3
// uploader.
type MemoryUploader struct {
	mu      sync.Mutex
	objects map[string][]byte

	// FailNext makes the next Upload return this error, then clears it.
	FailNext error
}

func NewMemoryUploader() *MemoryUploader {
	return &MemoryUploader{objects: make(map[string][]byte)}
}

func (u *MemoryUploader) Upload(_ context.Context, key, _ string, data []byte) (*UploadResult, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.FailNext != nil {
		err := u.FailNext
		u.FailNext = nil
		return nil, err
	}

	buf := make([]byte, len(data))
	copy(buf, data)
	u.objects[key] = buf

	return &UploadResult{
		Key:  key,
		URL:  "memory://" + key,
		Size: int64(len(data)),
	}, nil
}

func (u *MemoryUploader) Object(key string) ([]byte, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	data, ok := u.objects[key]
	return data, ok
}

func (u *MemoryUploader) Len() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.objects)
}
