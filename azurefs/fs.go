// Package azurefs exposes a seekable, read-only filesystem over Azure
// Blob Storage, addressed by azure:// and az:// URLs.
//
// The package turns random-access reads into a minimal number of HTTP
// range requests via a per-handle read-ahead buffer, shares one
// authenticated client per storage account across a session, and maps
// hierarchical glob patterns onto Azure's flat prefix listing.
//
// Usage:
//
//	store, err := azure.New(azure.DefaultConfig(account, key))
//	fs, err := azurefs.New(&azurefs.Config{
//	    Connect: func(ctx context.Context, loc azurefs.Location) (blobstore.Store, error) {
//	        return store, nil
//	    },
//	})
//	h, err := fs.Open(ctx, "azure://container/data.csv", azurefs.FlagRead)
package azurefs

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/sealdb/azurefs/internal/blobstore"
	"github.com/sealdb/azurefs/internal/errs"
	"github.com/sealdb/azurefs/internal/logger"
)

// Config assembles the collaborators a FileSystem needs.
type Config struct {
	// Connect builds an authenticated store for an account. Required.
	Connect ConnectFunc

	// Registry caches storage contexts per account for one session.
	// Optional; defaults to a fresh Session. The owner calls
	// Session.EndQuery (or its own equivalent) at unit-of-work
	// boundaries.
	Registry ContextRegistry

	// ReadOptions tune transfer and buffering. Zero fields use defaults.
	ReadOptions ReadOptions

	// Logger receives debug-level operational events. Optional.
	Logger *logger.Logger
}

// FileSystem serves open, read, glob and existence checks for azure://
// and az:// URLs. Safe for concurrent use; individual FileHandles are not.
type FileSystem struct {
	connect  ConnectFunc
	registry ContextRegistry
	opts     ReadOptions
	log      *logger.Logger

	// ctxMu serializes context construction so concurrent opens against
	// one account observe a single shared context per validity epoch.
	ctxMu sync.Mutex
}

// New builds a FileSystem from cfg.
func New(cfg *Config) (*FileSystem, error) {
	if cfg == nil || cfg.Connect == nil {
		return nil, errs.New(errs.KindConfig, "a connect function is required")
	}

	registry := cfg.Registry
	if registry == nil {
		registry = NewSession()
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Global()
	}

	return &FileSystem{
		connect:  cfg.Connect,
		registry: registry,
		opts:     cfg.ReadOptions.withDefaults(),
		log:      log,
	}, nil
}

// CanHandle reports whether path names a URL this filesystem serves.
func (fs *FileSystem) CanHandle(path string) bool {
	return CanHandle(path)
}

// Open fetches the blob's metadata and returns a handle positioned at
// offset zero. The read-ahead buffer is allocated only when FlagRead is
// set. FlagWrite is rejected: writing to Azure containers is not
// supported.
func (fs *FileSystem) Open(ctx context.Context, rawURL string, flags OpenFlags) (*FileHandle, error) {
	if flags&FlagWrite != 0 {
		return nil, errs.New(errs.KindNotSupported, "writing to Azure containers is not supported").WithPath(rawURL)
	}

	loc, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}

	sc, err := fs.storageContext(ctx, loc)
	if err != nil {
		return nil, err
	}

	info, err := sc.Store.Stat(ctx, loc.Container, loc.Path)
	if err != nil {
		var se *errs.Error
		if errors.As(err, &se) && se.Code != "" {
			// Typed backend failure: keep the storage error code.
			return nil, se.WithPath(rawURL)
		}
		// Anything untyped at this point usually means the credentials
		// were wrong.
		return nil, errs.Wrap(errs.KindIO,
			"could not open file, this could mean the credentials used were wrong", err).WithPath(rawURL)
	}

	fs.log.Debugf("open %s size=%d", rawURL, info.Size)

	h := &FileHandle{
		fs:           fs,
		path:         rawURL,
		loc:          loc,
		flags:        flags,
		store:        sc.Store,
		opts:         sc.ReadOptions,
		length:       info.Size,
		lastModified: info.LastModified,
	}
	if flags&FlagRead != 0 {
		h.readBuffer = make([]byte, sc.ReadOptions.BufferSize)
	}
	return h, nil
}

// Exists reports whether rawURL names a readable, non-empty blob.
//
// A zero-length blob reports false: the engine this adapter serves treats
// an empty object and a missing one identically, and that behavior is
// kept for compatibility. Any failure, including transient transport
// errors, also reports false.
func (fs *FileSystem) Exists(ctx context.Context, rawURL string) bool {
	h, err := fs.Open(ctx, rawURL, FlagRead)
	if err != nil {
		return false
	}
	defer h.Close()
	return h.Size() != 0
}

// Sync is meaningless on a read-only filesystem.
func (fs *FileSystem) Sync(h *FileHandle) error {
	path := ""
	if h != nil {
		path = h.path
	}
	return errs.New(errs.KindNotSupported, "FileSync for Azure Storage files is not supported").WithPath(path)
}

// Glob expands the wildcards in rawURL against the container's flat key
// namespace and returns fully addressed URLs in the same style as the
// input.
//
// Azure filters listings by literal prefix only, so the longest literal
// prefix before the first wildcard narrows the listing server-side and
// every returned key is re-checked segment-wise against the whole
// pattern. The listing is paged via continuation tokens until exhausted;
// the first failed page aborts the whole operation with no partial
// results.
func (fs *FileSystem) Glob(ctx context.Context, rawURL string) ([]string, error) {
	loc, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}

	wildcard := strings.IndexAny(loc.Path, "*?[\\")
	if wildcard < 0 {
		// Nothing to expand.
		return []string{rawURL}, nil
	}

	sc, err := fs.storageContext(ctx, loc)
	if err != nil {
		return nil, err
	}

	prefix := loc.Path[:wildcard]
	pattern := strings.Split(loc.Path, "/")

	var result []string
	marker := ""
	for page := 1; ; page++ {
		resp, err := sc.Store.ListPage(ctx, loc.Container, blobstore.ListOptions{
			Prefix: prefix,
			Marker: marker,
		})
		if err != nil {
			return nil, ioError(rawURL, "listing blobs failed", err)
		}

		fs.log.Debugf("glob %s page=%d keys=%d", rawURL, page, len(resp.Items))

		for _, item := range resp.Items {
			if MatchSegments(strings.Split(item.Key, "/"), pattern) {
				result = append(result, loc.KeyURL(item.Key))
			}
		}

		if resp.NextMarker == "" {
			break
		}
		marker = resp.NextMarker
	}
	return result, nil
}

// storageContext returns the cached context for the account in loc,
// building one when none exists or the cached one was invalidated at a
// session boundary. With caching disabled every call builds fresh.
func (fs *FileSystem) storageContext(ctx context.Context, loc Location) (*StorageContext, error) {
	if fs.connect == nil {
		return nil, errs.New(errs.KindConfig, "no connect function configured")
	}

	if !fs.opts.CachingEnabled() {
		store, err := fs.connect(ctx, loc)
		if err != nil {
			return nil, ioError(loc.KeyURL(loc.Path), "failed to connect to storage account", err)
		}
		return newStorageContext(store, fs.opts), nil
	}

	// The lock is held across construction: concurrent opens against one
	// account must observe a single winner per validity epoch.
	fs.ctxMu.Lock()
	defer fs.ctxMu.Unlock()

	if sc, ok := fs.registry.Get(loc.AccountName); ok && sc.Valid() {
		return sc, nil
	}

	store, err := fs.connect(ctx, loc)
	if err != nil {
		return nil, ioError(loc.KeyURL(loc.Path), "failed to connect to storage account", err)
	}
	sc := newStorageContext(store, fs.opts)
	fs.registry.Put(loc.AccountName, sc)
	return sc, nil
}

// ioError attributes err to path, preserving an existing errs.Error kind
// and backend details, and wrapping anything else as an IO failure.
func ioError(path, msg string, err error) *errs.Error {
	var e *errs.Error
	if errors.As(err, &e) {
		return e.WithPath(path)
	}
	return errs.Wrap(errs.KindIO, msg, err).WithPath(path)
}
