package bitmapstore

import (
	"bytes"
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/ewah"
	"github.com/hupe1980/ewah/blobstore"
	"github.com/hupe1980/ewah/codec"
	"github.com/hupe1980/ewah/resource"
)

func sampleBitmap(seed int) *ewah.Bitmap[uint64] {
	bm := ewah.New[uint64]()
	for i := seed; i < 1000; i += 3 {
		bm.Set(i)
	}
	bm.Set(100_000 + seed)
	bm.Set(1 << 20)
	return bm
}

func stores(t *testing.T) map[string]blobstore.BlobStore {
	return map[string]blobstore.BlobStore{
		"memory": blobstore.NewMemoryStore(),
		"local":  blobstore.NewLocalStore(t.TempDir()),
	}
}

func TestStorePutGet(t *testing.T) {
	ctx := context.Background()

	for storeName, blobs := range stores(t) {
		for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
			t.Run(fmt.Sprintf("%s/%s", storeName, c), func(t *testing.T) {
				st, err := Open[uint64](ctx, blobs, WithCompression(c), WithCatalogName("_"+c.String()))
				require.NoError(t, err)

				bm := sampleBitmap(0)
				e, err := st.Put(ctx, "users/active", bm)
				require.NoError(t, err)
				assert.Equal(t, "users/active", e.Name)
				assert.Equal(t, bm.Cardinality(), e.Cardinality)
				assert.Equal(t, bm.SizeInBits(), e.SizeInBits)
				assert.Positive(t, e.StoredBytes)

				got, err := st.Get(ctx, "users/active")
				require.NoError(t, err)
				assert.True(t, bm.Equal(got))
				assert.Equal(t, bm.Positions(), got.Positions())

				v, err := st.View(ctx, "users/active")
				require.NoError(t, err)
				assert.True(t, v.Equal(bm))
				assert.Equal(t, bm.Cardinality(), v.Cardinality())
			})
		}
	}
}

func TestStoreCompressionRecorded(t *testing.T) {
	ctx := context.Background()
	st, err := Open[uint64](ctx, blobstore.NewMemoryStore(), WithCompression(CompressionZstd))
	require.NoError(t, err)

	bm := ewah.New[uint64]()
	for i := 0; i < 200_000; i += 2 {
		bm.Set(i)
	}
	e, err := st.Put(ctx, "even", bm)
	require.NoError(t, err)
	assert.Equal(t, "zstd", e.Compression)
	assert.Less(t, e.StoredBytes, bm.SerializedSizeInBytes())
}

func TestStoreNotFound(t *testing.T) {
	ctx := context.Background()
	st, err := Open[uint64](ctx, blobstore.NewMemoryStore())
	require.NoError(t, err)

	_, err = st.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	_, err = st.View(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = st.Stat("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreInvalidNames(t *testing.T) {
	ctx := context.Background()
	st, err := Open[uint64](ctx, blobstore.NewMemoryStore())
	require.NoError(t, err)

	for _, name := range []string{"", "_catalog", "../escape", "/abs", "a//b"} {
		_, err := st.Put(ctx, name, sampleBitmap(0))
		assert.ErrorIs(t, err, ErrInvalidName, name)
		_, err = st.Get(ctx, name)
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}

	_, err = Open[uint64](ctx, blobstore.NewMemoryStore(), WithCatalogName("catalog"))
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestStoreCatalogPersists(t *testing.T) {
	ctx := context.Background()
	blobs := blobstore.NewLocalStore(t.TempDir())

	st, err := Open[uint64](ctx, blobs, WithCodec(codec.JSON{}))
	require.NoError(t, err)
	for i := range 3 {
		_, err := st.Put(ctx, fmt.Sprintf("seg/%d", i), sampleBitmap(i))
		require.NoError(t, err)
	}
	_, err = st.Put(ctx, "other", sampleBitmap(0))
	require.NoError(t, err)
	require.NoError(t, st.Close(ctx))

	reopened, err := Open[uint64](ctx, blobs)
	require.NoError(t, err)
	assert.Equal(t, 4, reopened.Len())

	entries := reopened.List("seg/")
	require.Len(t, entries, 3)
	for i, e := range entries {
		assert.Equal(t, fmt.Sprintf("seg/%d", i), e.Name)
		assert.Equal(t, sampleBitmap(i).Cardinality(), e.Cardinality)
	}

	e, err := reopened.Stat("other")
	require.NoError(t, err)
	want, err := st.Stat("other")
	require.NoError(t, err)
	assert.Equal(t, want.Checksum, e.Checksum)
	assert.True(t, want.UpdatedAt.Equal(e.UpdatedAt))
}

func TestStoreSyncOnlyWhenDirty(t *testing.T) {
	ctx := context.Background()
	blobs := blobstore.NewMemoryStore()

	st, err := Open[uint64](ctx, blobs)
	require.NoError(t, err)
	require.NoError(t, st.Sync(ctx))

	_, err = blobs.Open(ctx, DefaultCatalogName)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	_, err = st.Put(ctx, "a", sampleBitmap(0))
	require.NoError(t, err)
	require.NoError(t, st.Sync(ctx))

	_, err = blobs.Open(ctx, DefaultCatalogName)
	assert.NoError(t, err)
}

func TestStoreWordWidthMismatch(t *testing.T) {
	ctx := context.Background()
	blobs := blobstore.NewMemoryStore()

	st, err := Open[uint64](ctx, blobs)
	require.NoError(t, err)
	_, err = st.Put(ctx, "a", sampleBitmap(0))
	require.NoError(t, err)
	require.NoError(t, st.Close(ctx))

	_, err = Open[uint32](ctx, blobs)
	assert.ErrorIs(t, err, ErrWordWidthMismatch)

	narrow, err := Open[uint32](ctx, blobs, WithCatalogName("_narrow"))
	require.NoError(t, err)
	require.NoError(t, blobs.Put(ctx, narrow.blobKey("a"), mustBlob(t, blobs, st.blobKey("a"))))

	_, err = narrow.Get(ctx, "a")
	var fe *FrameError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "a", fe.Name)
	assert.ErrorIs(t, err, ErrWordWidthMismatch)
}

func mustBlob(t *testing.T, blobs blobstore.BlobStore, key string) []byte {
	t.Helper()
	data, err := blobstore.Get(context.Background(), blobs, key)
	require.NoError(t, err)
	return data
}

func TestStoreDetectsCorruption(t *testing.T) {
	ctx := context.Background()
	blobs := blobstore.NewMemoryStore()
	metrics := &BasicMetricsCollector{}

	st, err := Open[uint64](ctx, blobs, WithCompression(CompressionNone), WithMetricsCollector(metrics))
	require.NoError(t, err)
	_, err = st.Put(ctx, "a", sampleBitmap(0))
	require.NoError(t, err)

	data := mustBlob(t, blobs, st.blobKey("a"))
	data[len(data)-5] ^= 0x01
	require.NoError(t, blobs.Put(ctx, st.blobKey("a"), data))

	_, err = st.Get(ctx, "a")
	var fe *FrameError
	require.ErrorAs(t, err, &fe)
	assert.ErrorIs(t, err, ErrChecksumMismatch)

	_, err = st.View(ctx, "a")
	assert.ErrorIs(t, err, ErrChecksumMismatch)

	stats := metrics.GetStats()
	assert.Equal(t, int64(2), stats.ChecksumFailures)
	assert.Equal(t, int64(2), stats.GetErrors)
	assert.Equal(t, int64(1), stats.PutCount)

	require.NoError(t, blobs.Put(ctx, st.blobKey("a"), []byte("not a frame at all")))
	_, err = st.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrBadFrame)
}

func TestStoreDelete(t *testing.T) {
	ctx := context.Background()
	metrics := &BasicMetricsCollector{}
	st, err := Open[uint64](ctx, blobstore.NewMemoryStore(), WithMetricsCollector(metrics))
	require.NoError(t, err)

	_, err = st.Put(ctx, "a", sampleBitmap(0))
	require.NoError(t, err)
	require.NoError(t, st.Delete(ctx, "a"))
	require.NoError(t, st.Delete(ctx, "a"))

	_, err = st.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, st.Len())
	assert.Equal(t, int64(2), metrics.GetStats().DeleteCount)
}

func TestStoreLoadMany(t *testing.T) {
	ctx := context.Background()
	rc := resource.NewController(resource.Config{MaxConcurrentLoads: 2, MemoryLimitBytes: 1 << 20})
	st, err := Open[uint64](ctx, blobstore.NewMemoryStore(), WithResourceController(rc))
	require.NoError(t, err)

	names := make([]string, 0, 8)
	for i := range 8 {
		name := fmt.Sprintf("b%d", i)
		names = append(names, name)
		_, err := st.Put(ctx, name, sampleBitmap(i))
		require.NoError(t, err)
	}

	got, err := st.LoadMany(ctx, append(names, "b0"))
	require.NoError(t, err)
	require.Len(t, got, 8)
	for i, name := range names {
		assert.True(t, sampleBitmap(i).Equal(got[name]), name)
	}
	assert.Zero(t, rc.MemoryUsage())

	_, err = st.LoadMany(ctx, []string{"b0", "nope"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreReindex(t *testing.T) {
	ctx := context.Background()
	blobs := blobstore.NewMemoryStore()

	st, err := Open[uint64](ctx, blobs, WithCompression(CompressionZstd))
	require.NoError(t, err)
	for i := range 3 {
		_, err := st.Put(ctx, fmt.Sprintf("x/%d", i), sampleBitmap(i))
		require.NoError(t, err)
	}
	// No Sync: the catalog never reached the blob store.

	recovered, err := Open[uint64](ctx, blobs)
	require.NoError(t, err)
	assert.Zero(t, recovered.Len())

	require.NoError(t, recovered.Reindex(ctx))
	assert.Equal(t, 3, recovered.Len())
	for i := range 3 {
		name := fmt.Sprintf("x/%d", i)
		want, err := st.Stat(name)
		require.NoError(t, err)
		got, err := recovered.Stat(name)
		require.NoError(t, err)
		assert.Equal(t, want.Cardinality, got.Cardinality)
		assert.Equal(t, want.SizeInBits, got.SizeInBits)
		assert.Equal(t, want.SizeInBytes, got.SizeInBytes)
		assert.Equal(t, want.StoredBytes, got.StoredBytes)
		assert.Equal(t, want.Compression, got.Compression)
		assert.Equal(t, want.Checksum, got.Checksum)
		assert.True(t, got.UpdatedAt.IsZero())
	}

	require.NoError(t, blobs.Put(ctx, st.blobKey("broken"), []byte("junk")))
	err = recovered.Reindex(ctx)
	assert.ErrorIs(t, err, ErrBadFrame)
	assert.Equal(t, 3, recovered.Len())
}

func TestStoreLogging(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	logger := NewLogger(newTestHandler(&buf))

	st, err := Open[uint64](ctx, blobstore.NewMemoryStore(), WithLogger(logger))
	require.NoError(t, err)
	_, err = st.Put(ctx, "a", sampleBitmap(0))
	require.NoError(t, err)
	_, err = st.Get(ctx, "missing")
	require.Error(t, err)
	require.NoError(t, st.Sync(ctx))

	out := buf.String()
	assert.Contains(t, out, "put completed")
	assert.Contains(t, out, "get failed")
	assert.Contains(t, out, "catalog synced")
	assert.Contains(t, out, "catalog=_catalog")
}

// openCountingStore counts blob opens.
type openCountingStore struct {
	blobstore.BlobStore
	opens atomic.Int64
}

func (s *openCountingStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	s.opens.Add(1)
	return s.BlobStore.Open(ctx, name)
}

func TestStoreReindexReadsEachBlobOnce(t *testing.T) {
	ctx := context.Background()
	blobs := &openCountingStore{BlobStore: blobstore.NewMemoryStore()}

	st, err := Open[uint64](ctx, blobs, WithCompression(CompressionLZ4))
	require.NoError(t, err)
	for i := range 4 {
		_, err := st.Put(ctx, fmt.Sprintf("r/%d", i), sampleBitmap(i))
		require.NoError(t, err)
	}

	blobs.opens.Store(0)
	require.NoError(t, st.Reindex(ctx))
	assert.Equal(t, int64(4), blobs.opens.Load())
	assert.Equal(t, 4, st.Len())
}
