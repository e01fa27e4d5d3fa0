package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	// Long zero runs, like a sparse serialized bitmap.
	data := bytes.Repeat([]byte{0x40, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0}, 512)

	for _, alg := range []Algorithm{LZ4, Zstd} {
		t.Run(alg.String(), func(t *testing.T) {
			block, used, err := Compress(alg, data)
			require.NoError(t, err)
			assert.Equal(t, alg, used)
			assert.Less(t, len(block), len(data)/2)

			out, err := Decompress(used, block, len(data))
			require.NoError(t, err)
			assert.Equal(t, data, out)
		})
	}
}

func TestCompressNone(t *testing.T) {
	data := []byte("payload")
	block, used, err := Compress(None, data)
	require.NoError(t, err)
	assert.Equal(t, None, used)
	assert.Equal(t, data, block)

	out, err := Decompress(None, block, len(data))
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestCompressIncompressible(t *testing.T) {
	data := make([]byte, 64)
	for i := range data {
		data[i] = byte(i*167 + 13)
	}
	for _, alg := range []Algorithm{LZ4, Zstd} {
		block, used, err := Compress(alg, data)
		require.NoError(t, err)
		assert.Equal(t, None, used, alg.String())
		assert.Equal(t, data, block)
	}
}

func TestCompressEmpty(t *testing.T) {
	block, used, err := Compress(Zstd, nil)
	require.NoError(t, err)
	assert.Equal(t, None, used)
	assert.Empty(t, block)
}

func TestDecompressErrors(t *testing.T) {
	data := bytes.Repeat([]byte("abcd"), 256)
	block, used, err := Compress(LZ4, data)
	require.NoError(t, err)
	require.Equal(t, LZ4, used)

	_, err = Decompress(LZ4, block, len(data)+1)
	assert.Error(t, err)

	_, err = Decompress(None, data, len(data)-1)
	assert.ErrorIs(t, err, ErrSizeMismatch)

	_, err = Decompress(Zstd, []byte("not a zstd frame"), 16)
	assert.Error(t, err)

	_, err = Decompress(Algorithm(9), data, len(data))
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)

	_, _, err = Compress(Algorithm(9), data)
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestParse(t *testing.T) {
	for _, alg := range []Algorithm{None, LZ4, Zstd} {
		got, err := Parse(alg.String())
		require.NoError(t, err)
		assert.Equal(t, alg, got)
		assert.True(t, alg.Valid())
	}
	_, err := Parse("brotli")
	assert.Error(t, err)
	assert.False(t, Algorithm(3).Valid())
	assert.Equal(t, "compress(7)", Algorithm(7).String())
}

func TestDecompressRejectsOversizedLength(t *testing.T) {
	data := bytes.Repeat([]byte("bitmap words "), 256)

	for _, alg := range []Algorithm{LZ4, Zstd} {
		t.Run(alg.String(), func(t *testing.T) {
			block, used, err := Compress(alg, data)
			require.NoError(t, err)
			require.Equal(t, alg, used)

			_, err = Decompress(alg, block, 0xF0000000)
			assert.ErrorIs(t, err, ErrSizeLimit)

			_, err = Decompress(alg, block, -1)
			assert.ErrorIs(t, err, ErrSizeLimit)
		})
	}
}

func TestDecompressZstdContentSizeMismatch(t *testing.T) {
	data := bytes.Repeat([]byte("bitmap words "), 256)
	block, used, err := Compress(Zstd, data)
	require.NoError(t, err)
	require.Equal(t, Zstd, used)

	_, err = Decompress(Zstd, block, len(data)+1)
	assert.ErrorIs(t, err, ErrSizeMismatch)
}

func TestMaxDecompressedSize(t *testing.T) {
	assert.Equal(t, 10*255, MaxDecompressedSize(LZ4, 10))
	assert.Equal(t, 10*32768, MaxDecompressedSize(Zstd, 10))
	assert.Equal(t, 10, MaxDecompressedSize(None, 10))
}
