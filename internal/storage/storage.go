package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BlobStore is the durable blob storage contract the rendering core
// consumes. Keys are generated, never reused: a new render always writes
// under a fresh key and old blobs are left for retention to reap.
type BlobStore interface {
	// Get returns the blob content for key. A missing or unreadable key is
	// reported with an error marked ierr.ErrBlobNotFound, so callers can
	// treat it as a cache miss rather than a fatal failure.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores content under key with the given content type.
	Put(ctx context.Context, key string, content []byte, contentType string) error

	// Delete removes the blob for key. Best-effort: callers log and
	// swallow delete failures.
	Delete(ctx context.Context, key string) error
}

// NewTemplateObjectKey builds the object key for an uploaded template PDF.
func NewTemplateObjectKey(templateID, filename string) string {
	timestamp := time.Now().Unix()
	return fmt.Sprintf("templates/%s/%d_%s", templateID, timestamp, filename)
}

// NewInvoiceObjectKey builds a fresh, unique object key for a rendered
// invoice PDF.
func NewInvoiceObjectKey(invoiceID string) string {
	timestamp := time.Now().Unix()
	random := uuid.New().String()[:8]
	return fmt.Sprintf("invoice_%s_%d_%s.pdf", invoiceID, timestamp, random)
}
