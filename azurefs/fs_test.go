package azurefs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sealdb/azurefs/internal/blobstore"
	"github.com/sealdb/azurefs/internal/errs"
)

func TestNewRequiresConnect(t *testing.T) {
	_, err := New(nil)
	assert.True(t, errs.IsConfig(err))

	_, err = New(&Config{})
	assert.True(t, errs.IsConfig(err))
}

func TestCanHandle(t *testing.T) {
	fs := newTestFS(newStubStore(), ReadOptions{}, nil)

	assert.True(t, fs.CanHandle("azure://container/file.csv"))
	assert.True(t, fs.CanHandle("az://container/file.csv"))
	assert.False(t, fs.CanHandle("s3://container/file.csv"))
	assert.False(t, fs.CanHandle("/local/file.csv"))
	assert.False(t, fs.CanHandle("azures://container/file.csv"))
}

func TestOpenRejectsWrite(t *testing.T) {
	fs := newTestFS(newStubStore(), ReadOptions{}, nil)

	_, err := fs.Open(context.Background(), "azure://data/obj.bin", FlagWrite)
	assert.True(t, errs.IsNotSupported(err))
}

func TestOpenMissingBlob(t *testing.T) {
	fs := newTestFS(newStubStore(), ReadOptions{}, nil)

	_, err := fs.Open(context.Background(), "azure://data/nope.bin", FlagRead)
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))

	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "azure://data/nope.bin", e.Path)
	assert.Equal(t, "BlobNotFound", e.Code)
}

func TestOpenUntypedFailureHintsAtCredentials(t *testing.T) {
	store := newStubStore()
	store.statErr = errors.New("tls handshake failed")
	fs := newTestFS(store, ReadOptions{}, nil)

	_, err := fs.Open(context.Background(), "azure://data/obj.bin", FlagRead)
	require.Error(t, err)
	assert.True(t, errs.IsIO(err))
	assert.Contains(t, err.Error(), "credentials")
}

func TestSyncNotSupported(t *testing.T) {
	store := newStubStore()
	store.testObject("obj.bin", 10)
	fs := newTestFS(store, ReadOptions{}, nil)

	h, err := fs.Open(context.Background(), "azure://data/obj.bin", FlagRead)
	require.NoError(t, err)

	assert.True(t, errs.IsNotSupported(fs.Sync(h)))
	assert.True(t, errs.IsNotSupported(fs.Sync(nil)))
}

func TestExists(t *testing.T) {
	store := newStubStore()
	store.testObject("present.bin", 42)
	store.objects["empty.bin"] = nil
	fs := newTestFS(store, ReadOptions{}, nil)

	ctx := context.Background()
	assert.True(t, fs.Exists(ctx, "azure://data/present.bin"))
	assert.False(t, fs.Exists(ctx, "azure://data/missing.bin"))

	// An empty blob reports as missing, matching the original engine.
	assert.False(t, fs.Exists(ctx, "azure://data/empty.bin"))

	// Backend failures also report as missing.
	store.statErr = errs.New(errs.KindIO, "flaky network")
	assert.False(t, fs.Exists(ctx, "azure://data/present.bin"))
}

func globPages() []blobstore.Page {
	return []blobstore.Page{
		{
			Items:      []blobstore.ObjectInfo{{Key: "a/1.csv"}},
			NextMarker: "page-1",
		},
		{
			Items:      []blobstore.ObjectInfo{{Key: "a/2.txt"}},
			NextMarker: "page-2",
		},
		{
			Items: []blobstore.ObjectInfo{{Key: "b/1.csv"}},
		},
	}
}

func TestGlobFiltersAcrossPages(t *testing.T) {
	store := newStubStore()
	store.pages = globPages()
	fs := newTestFS(store, ReadOptions{}, nil)

	result, err := fs.Glob(context.Background(), "azure://container/a/*.csv")
	require.NoError(t, err)

	assert.Equal(t, []string{"azure://container/a/1.csv"}, result)
	assert.Equal(t, 3, store.listCalls, "pagination runs until the marker is exhausted")
}

func TestGlobFullyQualifiedReconstruction(t *testing.T) {
	store := newStubStore()
	store.pages = globPages()
	fs := newTestFS(store, ReadOptions{}, nil)

	result, err := fs.Glob(context.Background(),
		"az://myacct.blob.core.windows.net/container/**/*.csv")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"az://myacct.blob.core.windows.net/container/a/1.csv",
		"az://myacct.blob.core.windows.net/container/b/1.csv",
	}, result)
}

func TestGlobWithoutWildcardSkipsListing(t *testing.T) {
	store := newStubStore()
	connects := 0
	fs := newTestFS(store, ReadOptions{}, &connects)

	result, err := fs.Glob(context.Background(), "azure://container/plain/path.csv")
	require.NoError(t, err)

	assert.Equal(t, []string{"azure://container/plain/path.csv"}, result)
	assert.Equal(t, 0, store.listCalls)
	assert.Equal(t, 0, connects, "no client needed for a literal path")
}

func TestGlobListingFailureAborts(t *testing.T) {
	store := newStubStore()
	store.pages = globPages()
	store.listErr = errs.New(errs.KindIO, "throttled").WithBackend("ServerBusy", 503)
	fs := newTestFS(store, ReadOptions{}, nil)

	result, err := fs.Glob(context.Background(), "azure://container/a/*.csv")
	require.Error(t, err)
	assert.Nil(t, result, "no partial results on failure")

	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "azure://container/a/*.csv", e.Path)
	assert.Equal(t, "ServerBusy", e.Code)
}

func TestGlobInvalidURL(t *testing.T) {
	fs := newTestFS(newStubStore(), ReadOptions{}, nil)

	_, err := fs.Glob(context.Background(), "s3://bucket/*.csv")
	assert.Error(t, err)
}

// prefixRecordingStore wraps stubStore to capture the listing prefix.
type prefixRecordingStore struct {
	*stubStore
	prefixes []string
}

func (s *prefixRecordingStore) ListPage(ctx context.Context, container string, opts blobstore.ListOptions) (*blobstore.Page, error) {
	s.prefixes = append(s.prefixes, opts.Prefix)
	return s.stubStore.ListPage(ctx, container, opts)
}

func TestGlobPrefixStopsAtFirstWildcard(t *testing.T) {
	tests := []struct {
		pattern string
		prefix  string
	}{
		{"azure://c/raw/2026/*.parquet", "raw/2026/"},
		{"azure://c/raw/y=202?/data.csv", "raw/y=202"},
		{"azure://c/**/x.csv", ""},
		{"azure://c/logs/[ab]/x.csv", "logs/"},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			store := &prefixRecordingStore{stubStore: newStubStore()}
			store.pages = []blobstore.Page{{}}
			fs := newTestFS(store, ReadOptions{}, nil)

			_, err := fs.Glob(context.Background(), tt.pattern)
			require.NoError(t, err)
			require.Len(t, store.prefixes, 1)
			assert.Equal(t, tt.prefix, store.prefixes[0])
		})
	}
}
