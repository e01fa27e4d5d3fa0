// Package testutil provides testing utilities for ewah.
//
// This package is intended for use in tests and benchmarks only.
// It provides seeded generators for set positions with the distributions
// that matter for run-length compressed bitmaps.
//
// # Random Positions
//
//	rng := testutil.NewRNG(seed)
//	sparse := rng.SortedPositions(1000, 1<<20)     // uniform, strictly increasing
//	runs := rng.ClusteredPositions(1000, 1<<20)    // dense clusters, long gaps
//	skewed := rng.ZipfPositions(1000, 1<<20, 1.5)  // head-heavy
//
// # Word Streams
//
//	words := rng.Words(64, 0.3) // literal-heavy words with ~30% zero or all-ones words
package testutil
