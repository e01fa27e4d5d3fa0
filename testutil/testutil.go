package testutil

import (
	"math"
	"math/rand"
	"slices"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// SortedPositions returns up to n distinct positions drawn uniformly from
// [0, universe), in increasing order.
func (r *RNG) SortedPositions(n, universe int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n = min(n, universe)
	seen := make(map[int]struct{}, n)
	out := make([]int, 0, n)
	for len(out) < n {
		p := r.rand.Intn(universe)
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// ClusteredPositions returns about n increasing positions in [0, universe)
// grouped into dense clusters separated by long gaps. Clusters alternate
// between fully set stretches and sparsely set ones, which exercises runs of
// ones, runs of zeros and literal words.
func (r *RNG) ClusteredPositions(n, universe int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, 0, n)
	pos := 0
	for len(out) < n && pos < universe {
		pos += r.rand.Intn(max(1, universe/max(1, n/32)))
		width := 1 + r.rand.Intn(512)
		full := r.rand.Intn(2) == 0
		for i := 0; i < width && len(out) < n && pos < universe; i++ {
			if full || r.rand.Intn(4) == 0 {
				out = append(out, pos)
			}
			pos++
		}
	}
	return out
}

// Zipf returns a Zipfian-distributed value in [0, n).
// s=1.0 gives standard Zipf, s=1.5 gives a heavy head.
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

// zipfLocked is the internal implementation (caller must hold lock).
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}
	// Inverse transform over the continuous approximation of the harmonic sum.
	u := r.rand.Float64()
	if s == 1.0 {
		return min(n-1, int(math.Exp(u*math.Log(float64(n))))-1)
	}
	a := 1 - s
	hn := (math.Pow(float64(n), a) - 1) / a
	k := math.Pow(u*hn*a+1, 1/a)
	return min(n-1, max(0, int(k)-1))
}

// ZipfPositions returns up to n distinct increasing positions in
// [0, universe) whose density falls off from position 0.
func (r *RNG) ZipfPositions(n, universe int, s float64) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[int]struct{}, n)
	out := make([]int, 0, n)
	for tries := 0; len(out) < n && tries < 8*n; tries++ {
		p := r.zipfLocked(universe, s)
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// Words returns n random words. With probability emptyRate a word is all
// zeros or all ones, otherwise it is uniformly random.
func (r *RNG) Words(n int, emptyRate float64) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]uint64, n)
	for i := range out {
		switch {
		case r.rand.Float64() >= emptyRate:
			out[i] = r.rand.Uint64()
		case r.rand.Intn(2) == 0:
			out[i] = 0
		default:
			out[i] = math.MaxUint64
		}
	}
	return out
}
