package ewah

import (
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/bits-and-blooms/bitset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/ewah/testutil"
)

func bitsetPositions(bs *bitset.BitSet) []int {
	out := []int{}
	for i, ok := bs.NextSet(0); ok; i, ok = bs.NextSet(i + 1) {
		out = append(out, int(i))
	}
	return out
}

func roaringPositions(rb *roaring.Bitmap) []int {
	out := []int{}
	for _, v := range rb.ToArray() {
		out = append(out, int(v))
	}
	return out
}

func testScenarioMerges[W Word](t *testing.T) {
	a, b := scenarioA[W](), scenarioB[W]()

	assert.Equal(t, []int{64, 1 << 30}, a.And(b).Positions())
	assert.Equal(t, []int{0, 1, 2, 3, 55, 64, 1 << 30}, a.Or(b).Positions())
	assert.Equal(t, []int{0, 1, 2, 3, 55}, a.Xor(b).Positions())
	assert.Equal(t, []int{0, 2, 55}, a.AndNot(b).Positions())
	assert.Equal(t, []int{1, 3}, b.AndNot(a).Positions())

	assert.Equal(t, 2, a.AndCardinality(b))
	assert.Equal(t, 7, a.OrCardinality(b))
	assert.Equal(t, 5, a.XorCardinality(b))
	assert.Equal(t, 3, a.AndNotCardinality(b))
	assert.True(t, a.Intersects(b))

	empty := a.AndNot(a)
	assert.True(t, empty.IsEmpty())
	assert.Equal(t, a.SizeInBits(), empty.SizeInBits())

	// Operands are never modified.
	assert.True(t, scenarioA[W]().Equal(a))
	assert.True(t, scenarioB[W]().Equal(b))
}

func TestScenarioMerges(t *testing.T) {
	t.Run("uint32", testScenarioMerges[uint32])
	t.Run("uint64", testScenarioMerges[uint64])
}

func TestAndSizeIsLargerOperand(t *testing.T) {
	short := FromPositions[uint64](1, 2)
	long := FromPositions[uint64](1, 5000)

	assert.Equal(t, 5001, short.And(long).SizeInBits())
	assert.Equal(t, 5001, long.And(short).SizeInBits())
	assert.Equal(t, []int{1}, short.And(long).Positions())
	assert.Equal(t, 5001, short.Or(long).SizeInBits())
	assert.Equal(t, 5001, short.AndNot(long).SizeInBits())
}

func TestMergeWithEmpty(t *testing.T) {
	a := FromPositions[uint32](3, 90, 4000)
	e := New32()

	assert.True(t, a.And(e).IsEmpty())
	assert.Equal(t, a.Positions(), a.Or(e).Positions())
	assert.Equal(t, a.Positions(), e.Or(a).Positions())
	assert.Equal(t, a.Positions(), a.Xor(e).Positions())
	assert.Equal(t, a.Positions(), a.AndNot(e).Positions())
	assert.True(t, e.AndNot(a).IsEmpty())
	assert.False(t, a.Intersects(e))
}

func TestMergeRuns(t *testing.T) {
	ones := New64()
	ones.AddStreamOfEmptyWords(true, 100)
	sparse := FromPositions[uint64](7, 640, 6399)

	assert.Equal(t, sparse.Positions(), ones.And(sparse).Positions())
	assert.Equal(t, 100*64, ones.Or(sparse).Cardinality())
	assert.Equal(t, 100*64-3, ones.Xor(sparse).Cardinality())
	assert.Equal(t, 100*64-3, ones.AndNot(sparse).Cardinality())
	assert.True(t, sparse.AndNot(ones).IsEmpty())

	// A run of ones stays a run.
	assert.Equal(t, 1, ones.Or(ones).SizeInWords())
}

func checkAlgebra[W Word](t *testing.T, a, b *Bitmap[W]) {
	t.Helper()
	and, or, xor := a.And(b), a.Or(b), a.Xor(b)

	require.Equal(t, and.Positions(), b.And(a).Positions())
	require.Equal(t, or.Positions(), b.Or(a).Positions())
	require.Equal(t, xor.Positions(), b.Xor(a).Positions())

	require.Equal(t, a.Cardinality(), and.Cardinality()+a.AndNot(b).Cardinality())
	require.Equal(t, xor.Positions(), or.AndNot(and).Positions())
	require.Zero(t, a.AndNot(a).Cardinality())
	require.Equal(t, a.Positions(), a.Or(a).Positions())
	require.Equal(t, a.Positions(), a.And(a).Positions())
	require.True(t, a.Xor(a).IsEmpty())

	require.Equal(t, and.Cardinality(), a.AndCardinality(b))
	require.Equal(t, or.Cardinality(), a.OrCardinality(b))
	require.Equal(t, xor.Cardinality(), a.XorCardinality(b))
	require.Equal(t, a.AndNot(b).Cardinality(), a.AndNotCardinality(b))
	require.Equal(t, !and.IsEmpty(), a.Intersects(b))
}

func testAlgebra[W Word](t *testing.T) {
	rng := testutil.NewRNG(2024)
	gens := map[string]func(n, u int) []int{
		"sorted":    rng.SortedPositions,
		"clustered": rng.ClusteredPositions,
		"zipf":      func(n, u int) []int { return rng.ZipfPositions(n, u, 1.2) },
	}
	for name, ga := range gens {
		for _, gb := range gens {
			for round := 0; round < 5; round++ {
				a := FromPositions[W](ga(1500, 1<<16)...)
				b := FromPositions[W](gb(1500, 1<<18)...)
				t.Run(name, func(t *testing.T) {
					checkAlgebra(t, a, b)
					checkAlgebra(t, b, a)
				})
			}
		}
	}
}

func TestAlgebra(t *testing.T) {
	t.Run("uint32", testAlgebra[uint32])
	t.Run("uint64", testAlgebra[uint64])
}

// testReferenceCrossCheck drives an EWAH bitmap and a plain bitset through
// the same strictly increasing Set calls interleaved with merges, and
// compares their positions after every step.
func testReferenceCrossCheck[W Word](t *testing.T) {
	rng := testutil.NewRNG(77)
	a, b := New[W](), New[W]()
	ra, rb := bitset.New(0), bitset.New(0)

	extend := func(bm *Bitmap[W], ref *bitset.BitSet) {
		next := bm.SizeInBits()
		for k := rng.Intn(200); k > 0; k-- {
			switch rng.Intn(3) {
			case 0:
				next += rng.Intn(4)
			case 1:
				next += rng.Intn(64)
			default:
				next += rng.Intn(5000)
			}
			require.True(t, bm.Set(next))
			ref.Set(uint(next))
			next++
		}
	}

	for step := 0; step < 300; step++ {
		extend(a, ra)
		extend(b, rb)
		require.Equal(t, bitsetPositions(ra), a.Positions())
		require.Equal(t, bitsetPositions(rb), b.Positions())

		var got *Bitmap[W]
		var want *bitset.BitSet
		switch rng.Intn(4) {
		case 0:
			got, want = a.And(b), ra.Intersection(rb)
		case 1:
			got, want = a.Or(b), ra.Union(rb)
		case 2:
			got, want = a.Xor(b), ra.SymmetricDifference(rb)
		default:
			got, want = a.AndNot(b), ra.Difference(rb)
		}
		require.Equal(t, bitsetPositions(want), got.Positions(), "step %d", step)
		require.Equal(t, int(want.Count()), got.Cardinality())

		// Keep building on the merge result now and then.
		if rng.Intn(3) == 0 {
			a, ra = got, want
		}
	}
}

func TestReferenceCrossCheck(t *testing.T) {
	t.Run("uint32", testReferenceCrossCheck[uint32])
	t.Run("uint64", testReferenceCrossCheck[uint64])
}

func TestRoaringCrossCheck(t *testing.T) {
	rng := testutil.NewRNG(5)
	for round := 0; round < 20; round++ {
		pa := rng.ClusteredPositions(4000, 1<<22)
		pb := rng.SortedPositions(4000, 1<<22)
		a, b := FromPositions[uint64](pa...), FromPositions[uint64](pb...)

		ra, rb := roaring.New(), roaring.New()
		for _, p := range pa {
			ra.Add(uint32(p))
		}
		for _, p := range pb {
			rb.Add(uint32(p))
		}

		require.Equal(t, roaringPositions(roaring.And(ra, rb)), a.And(b).Positions())
		require.Equal(t, roaringPositions(roaring.Or(ra, rb)), a.Or(b).Positions())
		require.Equal(t, roaringPositions(roaring.Xor(ra, rb)), a.Xor(b).Positions())
		require.Equal(t, roaringPositions(roaring.AndNot(ra, rb)), a.AndNot(b).Positions())
	}
}

// stopSink reports Done after the first set bit and records whether the
// merge went on to finalize the size.
type stopSink[W Word] struct {
	nonEmptySink[W]
	sized bool
}

func (s *stopSink[W]) SetSizeInBits(int) { s.sized = true }

func TestMergeStopsWhenSinkIsDone(t *testing.T) {
	a := New64()
	a.AddStreamOfEmptyWords(true, 10)
	a.Set(10_000)
	b := a.Clone()

	var s stopSink[uint64]
	a.AndTo(b, &s)
	assert.True(t, s.found)
	assert.False(t, s.sized)
}

func TestSinkTo(t *testing.T) {
	a := FromPositions[uint32](1, 2, 3, 100)
	b := FromPositions[uint32](2, 3, 4, 200)

	var c CountingSink[uint32]
	a.OrTo(b, &c)
	assert.Equal(t, 6, c.Count())

	out := New32()
	a.XorTo(b, out)
	assert.Equal(t, []int{1, 4, 100, 200}, out.Positions())
	assert.Equal(t, 201, out.SizeInBits())

	out = New32()
	a.AndNotTo(b, out)
	assert.Equal(t, []int{1, 100}, out.Positions())

	out = New32()
	a.AndTo(b, out)
	assert.Equal(t, []int{2, 3}, out.Positions())
}

func TestCountingSink(t *testing.T) {
	var c CountingSink[uint64]
	c.AddWord(0b111)
	c.AddLiteralWord(1)
	c.AddStreamOfEmptyWords(true, 2)
	c.AddStreamOfEmptyWords(false, 5)
	c.AddStreamOfLiteralWords([]uint64{1, 3})
	c.AddStreamOfNegatedLiteralWords([]uint64{^uint64(0), ^uint64(1)})
	c.SetSizeInBits(1 << 20)
	assert.False(t, c.Done())
	assert.Equal(t, 3+1+128+1+2+0+1, c.Count())
}

func TestNonEmptySink(t *testing.T) {
	var s nonEmptySink[uint32]
	s.AddWord(0)
	s.AddStreamOfEmptyWords(false, 100)
	s.AddStreamOfEmptyWords(true, 0)
	s.AddStreamOfLiteralWords([]uint32{0, 0})
	s.AddStreamOfNegatedLiteralWords([]uint32{^uint32(0)})
	assert.False(t, s.Done())

	s.AddStreamOfNegatedLiteralWords([]uint32{0})
	assert.True(t, s.Done())
}
