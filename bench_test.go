package ewah

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/hupe1980/ewah/testutil"
)

func benchBitmaps(n int) []*Bitmap64 {
	rng := testutil.NewRNG(1)
	out := make([]*Bitmap64, n)
	for i := range out {
		out[i] = FromPositions[uint64](rng.ClusteredPositions(50_000, 1<<24)...)
	}
	return out
}

func BenchmarkSet(b *testing.B) {
	positions := testutil.NewRNG(1).ClusteredPositions(100_000, 1<<24)
	b.ReportAllocs()
	for b.Loop() {
		bm := New64()
		for _, p := range positions {
			bm.Set(p)
		}
	}
}

func BenchmarkPairwise(b *testing.B) {
	bms := benchBitmaps(2)
	x, y := bms[0], bms[1]

	b.Run("And", func(b *testing.B) {
		b.ReportAllocs()
		for b.Loop() {
			_ = x.And(y)
		}
	})
	b.Run("Or", func(b *testing.B) {
		b.ReportAllocs()
		for b.Loop() {
			_ = x.Or(y)
		}
	})
	b.Run("Xor", func(b *testing.B) {
		b.ReportAllocs()
		for b.Loop() {
			_ = x.Xor(y)
		}
	})
	b.Run("AndCardinality", func(b *testing.B) {
		b.ReportAllocs()
		for b.Loop() {
			_ = x.AndCardinality(y)
		}
	})
	b.Run("Intersects", func(b *testing.B) {
		b.ReportAllocs()
		for b.Loop() {
			_ = x.Intersects(y)
		}
	})
}

func BenchmarkAggregate(b *testing.B) {
	for _, k := range []int{4, 16} {
		bms := benchBitmaps(k)
		b.Run(fmt.Sprintf("Or/k=%d", k), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				_ = Or(bms...)
			}
		})
		b.Run(fmt.Sprintf("And/k=%d", k), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				_ = And(bms...)
			}
		})
	}
}

func BenchmarkIterate(b *testing.B) {
	bm := benchBitmaps(1)[0]
	b.ReportAllocs()
	for b.Loop() {
		n := 0
		for range bm.All() {
			n++
		}
	}
}

func BenchmarkSerialize(b *testing.B) {
	bm := benchBitmaps(1)[0]
	data, _ := bm.MarshalBinary()

	b.Run("WriteTo", func(b *testing.B) {
		b.ReportAllocs()
		var buf bytes.Buffer
		for b.Loop() {
			buf.Reset()
			_, _ = bm.WriteTo(&buf)
		}
	})
	b.Run("UnmarshalBinary", func(b *testing.B) {
		b.ReportAllocs()
		for b.Loop() {
			_ = New64().UnmarshalBinary(data)
		}
	})
	b.Run("NewView", func(b *testing.B) {
		b.ReportAllocs()
		for b.Loop() {
			_, _ = NewView[uint64](data)
		}
	})
}
