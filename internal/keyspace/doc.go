// Package keyspace defines the search space for the brute-force engine: a
// dense integer addressing of all fixed-length strings over a fixed
// alphabet, and the static striped partition of that range across ranks.
//
// # Indexing
//
// The Indexer is a mixed-radix (base-A) positional encoding. For alphabet
// "abc" and length 2 the keyspace is addressed:
//
//	0 -> "aa"   1 -> "ab"   2 -> "ac"
//	3 -> "ba"   4 -> "bb"   5 -> "bc"
//	6 -> "ca"   7 -> "cb"   8 -> "cc"
//
// Encode and Decode are exact inverses over the whole range, so every
// candidate is visited exactly once by an in-order sweep of [0, A^L).
// Combinations(L) = A^L is computed with an explicit overflow bound:
// lengths past MaxLength fail with ErrOverflow instead of wrapping.
//
// # Partitioning
//
// Stripe implements the interleaved assignment used by the distributed
// driver: rank r of W owns {r, r+W, r+2W, ...}. The assignment is a pure
// function of (rank, worldSize, total), so it needs no coordination at
// runtime and is testable in isolation from the messaging layer.
//
// The package has no dependency on hashing or coordination; data flows
// strictly from here upward into the drivers.
package keyspace
