// Package prodcount counts the distinct values of the n×n multiplication table
// with a fixed set of cooperating ranks.
//
// Products are symmetric, so only the triangular half {(i, j): 1 ≤ j ≤ i ≤ n}
// is enumerated. Its T = n(n+1)/2 cells are split into P contiguous, balanced
// slices of a canonical column-major order. Every rank marks the products of
// its slice in a presence bitmap of n²+1 flags and streams it, cut into
// bounded chunks, to the coordinator (rank 0), which ORs all bitmaps into its
// own and counts the set flags.
//
// # Quick Start
//
//	ctx := context.Background()
//	res, err := prodcount.Run(ctx, 1000, 8)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Distinct) // 248083
//
// Run starts all ranks as goroutines connected by the in-process runtime in
// package comm/local. RunRank executes a single rank against any
// comm.Communicator, for runtimes that place ranks in separate processes.
//
// # Transport
//
// Bitmaps travel as L/C full chunks tagged ARRAY and one final chunk tagged
// LAST, C being the chunk size (WithChunkSize, default 30000). Each frame
// carries a sequence number, its raw length and a checksum; the coordinator
// drains ranks in ascending order and rejects any deviation with ErrProtocol.
// Payloads may be compressed (WithCodec): raw, lz4, zstd or roaring.
//
// # Failure Model
//
// There is no retry and no partial result. The first failing rank cancels the
// run; a bitmap that cannot be reserved (WithMemoryLimit) fails with
// ErrMemoryLimitExceeded, a corrupt stream with ErrProtocol. WithTimeout
// bounds a run whose peer stalls.
package prodcount
