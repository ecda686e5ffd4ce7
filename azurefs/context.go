package azurefs

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/sealdb/azurefs/internal/blobstore"
)

// ConnectFunc builds an authenticated blob store for the account named in
// loc. It is supplied by the host, which owns credential resolution; the
// filesystem never sees secrets. internal/blobstore/azure provides the
// production implementation.
type ConnectFunc func(ctx context.Context, loc Location) (blobstore.Store, error)

// StorageContext couples one authenticated store with the read options
// active when it was built.
//
// A context is shared by reference among every handle opened against the
// same account while it stays valid. Invalidation flips a flag without
// tearing the context down: handles that already hold it keep working,
// but the next lookup rebuilds. Credentials can be rotated between
// sessions, so a context must never outlive the session that built it.
type StorageContext struct {
	Store       blobstore.Store
	ReadOptions ReadOptions

	valid atomic.Bool
}

func newStorageContext(store blobstore.Store, opts ReadOptions) *StorageContext {
	sc := &StorageContext{Store: store, ReadOptions: opts}
	sc.valid.Store(true)
	return sc
}

// Valid reports whether the context may still be shared.
func (sc *StorageContext) Valid() bool {
	return sc.valid.Load()
}

// Invalidate marks the context as stale. It is not deallocated; holders
// that check Valid before reuse will rebuild lazily.
func (sc *StorageContext) Invalidate() {
	sc.valid.Store(false)
}

// ContextRegistry is the keyed store of per-account storage contexts for
// one session. Hosts with their own per-query state can implement it;
// everyone else uses Session.
type ContextRegistry interface {
	// Get returns the context registered for account, if any.
	Get(account string) (*StorageContext, bool)

	// Put registers (or replaces) the context for account.
	Put(account string, sc *StorageContext)
}

// Session is the default ContextRegistry: a mutex-guarded map scoped to
// one logical unit of work. Safe for concurrent use.
type Session struct {
	mu       sync.Mutex
	contexts map[string]*StorageContext
}

// NewSession returns an empty session registry.
func NewSession() *Session {
	return &Session{contexts: make(map[string]*StorageContext)}
}

// Get returns the context registered for account, if any.
func (s *Session) Get(account string) (*StorageContext, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.contexts[account]
	return sc, ok
}

// Put registers (or replaces) the context for account.
func (s *Session) Put(account string, sc *StorageContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contexts[account] = sc
}

// EndQuery marks the end of the current unit of work. Every cached
// context is invalidated in place; the next access per account rebuilds
// with fresh credentials. Handles still holding an invalidated context
// remain usable until closed.
func (s *Session) EndQuery() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sc := range s.contexts {
		sc.Invalidate()
	}
}
