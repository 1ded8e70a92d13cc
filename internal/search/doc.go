// Package search implements the single-process drivers of the brute-force
// engine and the coordination state they share.
//
// # Drivers
//
// Serial sweeps the index range [0, A^L) in order on one goroutine and is
// the reference the concurrent drivers must agree with: same bijection,
// same oracle, same first-match result.
//
// Pool is the shared-memory driver. A fixed set of worker goroutines claims
// chunks from a shared atomic cursor (dynamic scheduling, no fixed split),
// hashes every index in the claimed chunk, and merges local attempt counts
// into one global atomic counter both periodically and at exit, so live
// progress never loses updates.
//
// # Found state
//
// State is the write-once tri-state flag {searching, found, exhausted}. The
// transition to found is a compare-and-swap: the first finder records its
// candidate, every later finder is a no-op. Cancellation is advisory -
// workers poll State.Done at iteration boundaries and drain out, possibly
// completing a few extra hashes after the match. That slack is accepted;
// the recorded answer is already fixed.
//
// # Progress
//
// Observations carry (attempts, total, elapsed) and are purely
// observational: an Observer may log them, aggregate them, or drop them,
// but they never steer the search.
package search
