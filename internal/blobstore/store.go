// Package blobstore defines the contract between the filesystem layer and
// a concrete blob storage backend.
//
// The filesystem core depends only on this package — never on a specific
// backend package. The production backend lives in blobstore/azure; tests
// substitute in-memory stubs.
package blobstore

import (
	"context"
	"time"
)

// Store is the interface a blob storage backend must implement.
//
// Every method is a single blocking network round trip (the backend's own
// transfer chunking aside). The Store performs no retries beyond what its
// transport provides; callers treat each call as succeeding or failing
// atomically.
type Store interface {
	// Stat returns metadata for the blob at key inside container without
	// downloading its content.
	Stat(ctx context.Context, container, key string) (*ObjectInfo, error)

	// DownloadRange fills dst with the blob bytes [offset, offset+len(dst))
	// and returns the number of bytes written. A range extending past the
	// end of the blob is an error.
	DownloadRange(ctx context.Context, container, key string, dst []byte, offset int64, opts RangeOptions) (int64, error)

	// ListPage returns one page of blobs in container whose keys start
	// with opts.Prefix. Pagination is driven by the caller: pass the
	// NextMarker of the previous page as opts.Marker to fetch the next
	// one. An empty NextMarker means the listing is complete.
	ListPage(ctx context.Context, container string, opts ListOptions) (*Page, error)
}

// ObjectInfo describes a single blob stored in a container.
type ObjectInfo struct {
	// Key is the full blob path within the container (e.g. "raw/2026/data.csv").
	Key string

	// Size is the byte size of the blob.
	Size int64

	// ContentType is the MIME type (e.g. "text/csv").
	ContentType string

	// ETag is the blob's entity tag, as returned by the backend.
	ETag string

	// LastModified is when the blob was last written.
	LastModified time.Time
}

// RangeOptions tunes how a single range download is transferred.
type RangeOptions struct {
	// Concurrency is the number of parallel connections the backend may
	// use for one download. 0 means the backend default.
	Concurrency int

	// ChunkSize is the per-connection transfer block size in bytes.
	// 0 means the backend default.
	ChunkSize int64
}

// ListOptions controls one page of a prefix listing.
type ListOptions struct {
	// Prefix restricts results to blobs whose key starts with this string.
	// Use "" to list the whole container.
	Prefix string

	// Marker is the continuation token returned by the previous page.
	// Pass "" to start from the beginning.
	Marker string

	// MaxResults caps the page size. 0 means the backend default.
	MaxResults int32
}

// Page is one page of prefix-listing results.
type Page struct {
	// Items are the blobs on this page, in key order.
	Items []ObjectInfo

	// NextMarker is the continuation token for the following page, or ""
	// when this was the last page.
	NextMarker string
}
