package bitmapstore

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math/bits"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/ewah"
	"github.com/hupe1980/ewah/blobstore"
	"github.com/hupe1980/ewah/resource"
)

const blobSuffix = ".ewah"

// Store persists named bitmaps in a blob store.
//
// Each bitmap is one framed, checksummed and optionally compressed blob. A
// catalog blob lists the stored bitmaps with their statistics; it is written
// by Sync and read by Open. Store is safe for concurrent use.
type Store[W ewah.Word] struct {
	blobs     blobstore.BlobStore
	opts      options
	log       *Logger
	rc        *resource.Controller
	namespace string

	mu      sync.RWMutex
	entries map[string]Entry
	gen     uint64 // bumped on every catalog change
	synced  uint64 // gen of the last written catalog
}

// Open opens the store kept in blobs, loading its catalog if one exists.
func Open[W ewah.Word](ctx context.Context, blobs blobstore.BlobStore, optFns ...Option) (*Store[W], error) {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}
	if len(o.catalogName) < 2 || o.catalogName[0] != '_' || !fs.ValidPath(o.catalogName) {
		return nil, fmt.Errorf("%w: catalog %q", ErrInvalidName, o.catalogName)
	}
	if !o.compression.Valid() {
		return nil, fmt.Errorf("bitmapstore: unknown compression %d", o.compression)
	}
	rc := o.rc
	if rc == nil {
		rc = resource.NewController(resource.Config{})
	}
	s := &Store[W]{
		blobs:     blobs,
		opts:      o,
		log:       o.logger.WithStore(o.catalogName),
		rc:        rc,
		namespace: o.catalogName[1:] + "/",
		entries:   make(map[string]Entry),
	}
	if err := s.loadCatalog(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func wordBits[W ewah.Word]() int {
	return bits.Len64(uint64(^W(0)))
}

func validateName(name string) error {
	if name == "" || strings.HasPrefix(name, "_") || !fs.ValidPath(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func (s *Store[W]) blobKey(name string) string {
	return s.namespace + name + blobSuffix
}

func (s *Store[W]) loadCatalog(ctx context.Context) error {
	data, err := blobstore.Get(ctx, s.blobs, s.opts.catalogName)
	if errors.Is(err, blobstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("bitmapstore: read catalog: %w", err)
	}
	doc, err := decodeCatalog(data)
	if err != nil {
		return err
	}
	if doc.WordBits != wordBits[W]() {
		return fmt.Errorf("%w: catalog holds %d-bit bitmaps", ErrWordWidthMismatch, doc.WordBits)
	}
	for _, e := range doc.Entries {
		s.entries[e.Name] = e
	}
	s.log.DebugContext(ctx, "catalog loaded", "entries", len(doc.Entries))
	return nil
}

// Put stores bm under name, replacing any previous bitmap.
func (s *Store[W]) Put(ctx context.Context, name string, bm *ewah.Bitmap[W]) (Entry, error) {
	start := time.Now()
	e, err := s.put(ctx, name, bm)
	s.opts.metrics.RecordPut(e.StoredBytes, time.Since(start), err)
	s.log.LogPut(ctx, name, e, time.Since(start), err)
	return e, err
}

func (s *Store[W]) put(ctx context.Context, name string, bm *ewah.Bitmap[W]) (Entry, error) {
	if err := validateName(name); err != nil {
		return Entry{}, err
	}
	payload, err := bm.MarshalBinary()
	if err != nil {
		return Entry{}, frameError(name, err)
	}
	frame, used, err := encodeFrame(wordBits[W](), s.opts.compression, payload)
	if err != nil {
		return Entry{}, frameError(name, err)
	}
	if err := s.rc.AcquireIO(ctx, len(frame)); err != nil {
		return Entry{}, err
	}
	if err := s.blobs.Put(ctx, s.blobKey(name), frame); err != nil {
		return Entry{}, fmt.Errorf("bitmapstore: put %q: %w", name, err)
	}
	h, _ := parseFrameHeader(frame)
	e := Entry{
		Name:        name,
		Cardinality: bm.Cardinality(),
		SizeInBits:  bm.SizeInBits(),
		SizeInBytes: bm.SizeInBytes(),
		Compression: used.String(),
		StoredBytes: len(frame),
		Checksum:    h.checksum,
		UpdatedAt:   time.Now().UTC(),
	}
	s.mu.Lock()
	s.entries[name] = e
	s.gen++
	s.mu.Unlock()
	return e, nil
}

// Get loads the bitmap stored under name.
func (s *Store[W]) Get(ctx context.Context, name string) (*ewah.Bitmap[W], error) {
	var bm *ewah.Bitmap[W]
	err := s.read(ctx, name, func(_ frameHeader, _ int, payload []byte, _ bool) error {
		bm = ewah.New[W]()
		return bm.UnmarshalBinary(payload)
	})
	if err != nil {
		return nil, err
	}
	return bm, nil
}

// View loads the bitmap stored under name as a read-only view. Uncompressed
// frames are not decoded word by word on little-endian hosts.
func (s *Store[W]) View(ctx context.Context, name string) (*ewah.View[W], error) {
	var v *ewah.View[W]
	err := s.read(ctx, name, func(_ frameHeader, _ int, payload []byte, aliased bool) error {
		if aliased {
			payload = slices.Clone(payload)
		}
		var err error
		v, err = ewah.NewView[W](payload)
		return err
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// read fetches and verifies the frame of name and hands its header, stored
// size and payload to decode. aliased reports whether the payload points into
// blob memory that is released when read returns.
func (s *Store[W]) read(ctx context.Context, name string, decode func(h frameHeader, stored int, payload []byte, aliased bool) error) (err error) {
	start := time.Now()
	stored := 0
	defer func() {
		s.opts.metrics.RecordGet(stored, time.Since(start), err)
		s.log.LogGet(ctx, name, stored, time.Since(start), err)
	}()

	if err := validateName(name); err != nil {
		return err
	}
	blob, err := s.blobs.Open(ctx, s.blobKey(name))
	if errors.Is(err, blobstore.ErrNotFound) {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("bitmapstore: open %q: %w", name, err)
	}
	defer blob.Close()

	if err := s.rc.AcquireIO(ctx, int(blob.Size())); err != nil {
		return err
	}
	data, err := blobstore.ReadAll(ctx, blob)
	if err != nil {
		return fmt.Errorf("bitmapstore: read %q: %w", name, err)
	}
	stored = len(data)
	_, isMapped := blob.(blobstore.Mappable)

	h, payload, err := decodeFrame(data, wordBits[W]())
	if errors.Is(err, ErrChecksumMismatch) {
		s.opts.metrics.RecordChecksumFailure()
	}
	if err != nil {
		return frameError(name, err)
	}
	aliased := isMapped && h.compression == CompressionNone
	return frameError(name, decode(h, stored, payload, aliased))
}

// LoadMany loads several bitmaps concurrently, bounded by the resource
// controller. It fails with the first error encountered.
func (s *Store[W]) LoadMany(ctx context.Context, names []string) (map[string]*ewah.Bitmap[W], error) {
	start := time.Now()
	out := make(map[string]*ewah.Bitmap[W], len(names))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range slices.Compact(slices.Sorted(slices.Values(names))) {
		g.Go(func() error {
			if err := s.rc.AcquireLoad(gctx); err != nil {
				return err
			}
			defer s.rc.ReleaseLoad()

			mem := int64(0)
			if e, err := s.Stat(name); err == nil {
				mem = int64(e.SizeInBytes)
			}
			if err := s.rc.AcquireMemory(gctx, mem); err != nil {
				return err
			}
			defer s.rc.ReleaseMemory(mem)

			bm, err := s.Get(gctx, name)
			if err != nil {
				return err
			}
			mu.Lock()
			out[name] = bm
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	s.log.LogLoadMany(ctx, len(names), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the bitmap stored under name. Deleting a missing name is
// not an error.
func (s *Store[W]) Delete(ctx context.Context, name string) (err error) {
	start := time.Now()
	defer func() {
		s.opts.metrics.RecordDelete(time.Since(start), err)
		s.log.LogDelete(ctx, name, err)
	}()

	if err := validateName(name); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, s.blobKey(name)); err != nil {
		return fmt.Errorf("bitmapstore: delete %q: %w", name, err)
	}
	s.mu.Lock()
	if _, ok := s.entries[name]; ok {
		delete(s.entries, name)
		s.gen++
	}
	s.mu.Unlock()
	return nil
}

// Stat returns the catalog entry for name.
func (s *Store[W]) Stat(name string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[name]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return e, nil
}

// List returns the catalog entries whose names start with prefix, sorted by name.
func (s *Store[W]) List(prefix string) []Entry {
	s.mu.RLock()
	out := make([]Entry, 0, len(s.entries))
	for name, e := range s.entries {
		if strings.HasPrefix(name, prefix) {
			out = append(out, e)
		}
	}
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b Entry) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

// Len returns the number of cataloged bitmaps.
func (s *Store[W]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Sync writes the catalog if it changed since the last Sync.
func (s *Store[W]) Sync(ctx context.Context) error {
	s.mu.RLock()
	gen := s.gen
	if gen == s.synced {
		s.mu.RUnlock()
		return nil
	}
	doc := catalogDoc{Version: catalogVersion, WordBits: wordBits[W]()}
	for _, e := range s.entries {
		doc.Entries = append(doc.Entries, e)
	}
	s.mu.RUnlock()
	slices.SortFunc(doc.Entries, func(a, b Entry) int { return cmp.Compare(a.Name, b.Name) })

	data, err := encodeCatalog(s.opts.codec, doc)
	if err == nil {
		err = s.blobs.Put(ctx, s.opts.catalogName, data)
	}
	s.log.LogSync(ctx, len(doc.Entries), err)
	if err != nil {
		return fmt.Errorf("bitmapstore: write catalog: %w", err)
	}

	s.mu.Lock()
	s.synced = max(s.synced, gen)
	s.mu.Unlock()
	return nil
}

// Close syncs the catalog.
func (s *Store[W]) Close(ctx context.Context) error {
	return s.Sync(ctx)
}

// Reindex rebuilds the catalog from the stored blobs, e.g. after a crash
// between Put and Sync. Blobs that fail to decode are reported together.
func (s *Store[W]) Reindex(ctx context.Context) error {
	keys, err := s.blobs.List(ctx, s.namespace)
	if err != nil {
		return fmt.Errorf("bitmapstore: list: %w", err)
	}
	entries := make(map[string]Entry, len(keys))
	var errs []error
	for _, key := range keys {
		name, ok := strings.CutSuffix(strings.TrimPrefix(key, s.namespace), blobSuffix)
		if !ok || validateName(name) != nil {
			continue
		}
		e, err := s.scan(ctx, name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		entries[name] = e
	}
	s.mu.Lock()
	s.entries = entries
	s.gen++
	s.mu.Unlock()
	s.log.InfoContext(ctx, "catalog rebuilt", "entries", len(entries), "failed", len(errs))
	return errors.Join(errs...)
}

func (s *Store[W]) scan(ctx context.Context, name string) (Entry, error) {
	var e Entry
	err := s.read(ctx, name, func(h frameHeader, stored int, payload []byte, _ bool) error {
		v, err := ewah.NewView[W](payload)
		if err != nil {
			return err
		}
		e = Entry{
			Name:        name,
			Cardinality: v.Cardinality(),
			SizeInBits:  v.SizeInBits(),
			SizeInBytes: v.SizeInBytes(),
			Compression: h.compression.String(),
			StoredBytes: stored,
			Checksum:    h.checksum,
		}
		return nil
	})
	if err != nil {
		return Entry{}, err
	}
	return e, nil
}
