package blobstore

import (
	"context"
	"io"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/hupe1980/ewah/internal/cache"
	"github.com/hupe1980/ewah/resource"
)

// CachingStore keeps recently read blobs in memory. Concurrent opens of the
// same uncached blob share one fetch from the inner store.
//
// Writes and deletes through the CachingStore invalidate the cached copy;
// changes made directly on the inner store are not observed.
type CachingStore struct {
	inner BlobStore
	cache *cache.LRU
	group singleflight.Group

	mu   sync.Mutex
	gens map[string]uint64 // bumped on every write or delete of a name
}

// NewCachingStore wraps inner with a cache of capacity bytes. rc may be nil.
func NewCachingStore(inner BlobStore, capacity int64, rc *resource.Controller) *CachingStore {
	return &CachingStore{
		inner: inner,
		cache: cache.NewLRU(capacity, rc),
		gens:  make(map[string]uint64),
	}
}

// Open returns the cached blob, fetching it from the inner store on a miss.
func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	if data, ok := s.cache.Get(name); ok {
		return &memoryBlob{data: data}, nil
	}
	gen := s.generation(name)
	v, err, _ := s.group.Do(name, func() (any, error) {
		data, err := Get(ctx, s.inner, name)
		if err != nil {
			return nil, err
		}
		s.fill(name, gen, data)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return &memoryBlob{data: v.([]byte)}, nil
}

// Create writes through to the inner store.
func (s *CachingStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	w, err := s.inner.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	s.invalidate(name)
	return &invalidatingWriter{WritableBlob: w, name: name, store: s}, nil
}

// Put writes through and drops the cached copy.
func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	defer s.invalidate(name)
	return s.inner.Put(ctx, name, data)
}

// Delete removes the blob and its cached copy.
func (s *CachingStore) Delete(ctx context.Context, name string) error {
	defer s.invalidate(name)
	return s.inner.Delete(ctx, name)
}

func (s *CachingStore) generation(name string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[name]
}

// fill caches data unless name was written since gen was taken.
func (s *CachingStore) fill(name string, gen uint64, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gens[name] == gen {
		s.cache.Set(name, data)
	}
}

// invalidate drops the cached copy and detaches in-flight fetches so later
// opens read the new contents.
func (s *CachingStore) invalidate(name string) {
	s.mu.Lock()
	s.gens[name]++
	s.cache.Delete(name)
	s.mu.Unlock()
	s.group.Forget(name)
}

// List delegates to the inner store.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// Stats returns the cache hit and miss counts.
func (s *CachingStore) Stats() (hits, misses int64) {
	return s.cache.Stats()
}

type invalidatingWriter struct {
	WritableBlob
	name  string
	store *CachingStore
}

func (w *invalidatingWriter) Close() error {
	defer w.store.invalidate(w.name)
	return w.WritableBlob.Close()
}

var _ io.Closer = (*invalidatingWriter)(nil)
