//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=../mocks/mock_blob_store.go -package=mocks
package blobstore

import (
	"context"
	"io"
)

// Store writes named objects. A failed Put may be retried with the same name.
type Store interface {
	Put(ctx context.Context, name string, r io.Reader, contentType string, public bool) error
}
