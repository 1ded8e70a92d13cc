// Package comm is the messaging fabric for the distributed driver:
// independent OS processes, no shared memory, explicit asynchronous
// point-to-point messages over HTTP/JSON.
//
// # Topology
//
// The world is one coordinator (rank 0) plus N worker ranks, each running
// an Endpoint: an HTTP server that files inbound messages into a tagged
// Mailbox, and client helpers for point-to-point sends.
//
//	              ┌──────────────┐
//	              │ Coordinator  │  rank 0
//	              │              │
//	              │ - Roster     │  /register
//	              │ - Aggregator │  /msg/progress, /msg/result
//	              └──────┬───────┘
//	                     │ /msg/job broadcast
//	      ┌──────────────┼──────────────┐
//	┌─────▼─────┐  ┌─────▼─────┐  ┌─────▼─────┐
//	│  rank 1   │  │  rank 2   │  │  rank 3   │
//	└───────────┘  └───────────┘  └───────────┘
//	      any finder broadcasts /msg/terminate to every peer
//
// # Channels
//
// Messages are split across logical channels identified by tag. Per
// sender/receiver/tag, delivery is reliable and ordered (one HTTP request
// per message, consumed exactly once from a FIFO queue); across tags and
// peers there is no ordering and no global clock.
//
//   - job: the collective broadcast that starts the search phase. Every
//     rank gets an identical target before any searching begins.
//   - progress: fire-and-forget attempt counts, worker -> rank 0. Sends
//     never block the search loop; receives are best-effort polls, so any
//     aggregation round may be stale or partial. That is accepted.
//   - terminate: the one channel needing guaranteed delivery. The finder
//     sends blocking point-to-point notices to every peer; receivers only
//     poll, but they poll at every check interval, so the notice is seen
//     within one interval.
//   - result: final per-rank accounting, worker -> rank 0, blocking send.
//
// Message loss on the wire is assumed not to occur (reliable transport);
// there is no retry protocol beyond registration.
package comm
