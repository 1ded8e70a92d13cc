// Package dist implements the distributed driver: one search loop per
// rank over a static striped partition of the keyspace, coordinated only
// through the comm fabric's tagged messages.
//
// # Partition
//
// Rank r of W owns indices {r, r+W, r+2W, ...}. The assignment is fixed at
// partition time and needs no balancing traffic; heterogeneous rank speed
// causes imbalance, which is an accepted trade-off.
//
// # Loop protocol
//
// Every CheckInterval candidates a rank:
//
//  1. non-blocking-probes its terminate mailbox and halts on a notice,
//  2. if a worker, fire-and-forgets its cumulative attempt count to
//     rank 0,
//  3. if rank 0, drains pending progress reports into a latest-per-rank
//     snapshot and emits one aggregated observation.
//
// On a local match the finder broadcasts a terminate notice to every peer
// (blocking per send, no acknowledgement wait) and returns. Because every
// rank probes at most CheckInterval candidates apart, and once more before
// exiting, the search never runs to full exhaustion after a match.
//
// If no rank ever matches, each rank exhausts its stripe independently and
// no termination message is ever sent.
//
// # Results
//
// When a rank's loop ends it reports (attempts, found, candidate) to the
// coordinator, which waits for all reports before printing the single
// final outcome.
package dist
