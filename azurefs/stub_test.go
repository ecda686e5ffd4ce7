package azurefs

import (
	"context"
	"fmt"
	"time"

	"github.com/sealdb/azurefs/internal/blobstore"
	"github.com/sealdb/azurefs/internal/errs"
)

// stubStore is an in-memory blobstore.Store that counts requests, so
// tests can assert how many network round trips an access pattern costs.
type stubStore struct {
	objects map[string][]byte
	pages   []blobstore.Page

	statErr  error
	rangeErr error
	listErr  error

	statCalls  int
	rangeCalls int
	listCalls  int

	// rangeLens records the length of every range request issued.
	rangeLens []int
}

func newStubStore() *stubStore {
	return &stubStore{objects: make(map[string][]byte)}
}

func (s *stubStore) Stat(_ context.Context, _, key string) (*blobstore.ObjectInfo, error) {
	s.statCalls++
	if s.statErr != nil {
		return nil, s.statErr
	}
	data, ok := s.objects[key]
	if !ok {
		return nil, errs.New(errs.KindNotFound, "blob does not exist").WithBackend("BlobNotFound", 404)
	}
	return &blobstore.ObjectInfo{
		Key:          key,
		Size:         int64(len(data)),
		LastModified: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
	}, nil
}

func (s *stubStore) DownloadRange(_ context.Context, _, key string, dst []byte, offset int64, _ blobstore.RangeOptions) (int64, error) {
	s.rangeCalls++
	s.rangeLens = append(s.rangeLens, len(dst))
	if s.rangeErr != nil {
		return 0, s.rangeErr
	}
	data, ok := s.objects[key]
	if !ok {
		return 0, errs.New(errs.KindNotFound, "blob does not exist").WithBackend("BlobNotFound", 404)
	}
	if offset < 0 || offset+int64(len(dst)) > int64(len(data)) {
		return 0, errs.New(errs.KindIO, "requested range not satisfiable").WithBackend("InvalidRange", 416)
	}
	copy(dst, data[offset:offset+int64(len(dst))])
	return int64(len(dst)), nil
}

func (s *stubStore) ListPage(_ context.Context, _ string, opts blobstore.ListOptions) (*blobstore.Page, error) {
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	idx := 0
	if opts.Marker != "" {
		if _, err := fmt.Sscanf(opts.Marker, "page-%d", &idx); err != nil {
			return nil, errs.New(errs.KindIO, "bad continuation token")
		}
	}
	if idx >= len(s.pages) {
		return &blobstore.Page{}, nil
	}
	page := s.pages[idx]
	return &page, nil
}

// testObject fills key with a deterministic byte pattern of size n and
// returns the reference content.
func (s *stubStore) testObject(key string, n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte((i*7 + 13) % 251)
	}
	s.objects[key] = data
	return data
}

// newTestFS builds a FileSystem whose connect function hands out store
// and counts invocations through connectCalls.
func newTestFS(store blobstore.Store, opts ReadOptions, connectCalls *int) *FileSystem {
	fs, err := New(&Config{
		Connect: func(ctx context.Context, loc Location) (blobstore.Store, error) {
			if connectCalls != nil {
				*connectCalls++
			}
			return store, nil
		},
		ReadOptions: opts,
	})
	if err != nil {
		panic(err)
	}
	return fs
}
