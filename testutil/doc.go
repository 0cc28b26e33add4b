// Package testutil provides testing utilities for prodcount.
//
// This package is intended for use in tests and benchmarks only.
//
// # Random Buffers
//
//	rng := testutil.NewRNG(seed)
//	buf := rng.Bytes(1 << 16)      // arbitrary bytes
//	flags := rng.Flags(1 << 16, 0.1) // 0/1 presence flags, ~10% set
//
// # Ground Truth
//
//	want := testutil.DistinctProducts(n)
package testutil
