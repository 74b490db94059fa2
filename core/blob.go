package core

import (
	"context"
	"io"
)

// Blob is an uploaded file waiting to be stored.
type Blob struct {
	Filename    string
	ContentType string // sniffed when empty
	Size        int64
	Body        io.Reader
}

// BlobStore is any service that can store bytes and hand back a durable download URL.
type BlobStore interface {
	Upload(ctx context.Context, blob Blob) (url string, err error)
}
