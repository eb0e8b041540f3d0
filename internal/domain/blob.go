package domain

import (
	"context"
	"io"
)

// BlobWriter uploads data to object storage. It is used to archive refetched
// season snapshots for offline analysis; the engine works without one.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
	PutMultipart(ctx context.Context, path string, data io.Reader, partSize int64) error
}
