package search

import (
	"sync/atomic"
	"time"
)

// Outcome is the terminal state of a search: either some unit found the
// candidate, or the whole keyspace was enumerated without a match.
type Outcome int

const (
	// Searching means no terminal transition has happened yet.
	Searching Outcome = iota
	// Found means a candidate matching the target tag was recorded.
	Found
	// Exhausted means the full keyspace was tried without a match.
	Exhausted
)

// String returns a short human-readable outcome name.
func (o Outcome) String() string {
	switch o {
	case Searching:
		return "searching"
	case Found:
		return "found"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Find records the winning candidate and which unit produced it.
type Find struct {
	Candidate string // recovered secret
	Index     uint64 // its keyspace index
	Finder    int    // worker or rank id of the first finder
}

// Result is the final report of one driver run.
type Result struct {
	Outcome  Outcome
	Find     *Find // set when Outcome == Found
	Attempts uint64
	Total    uint64
	Elapsed  time.Duration
}

// State is the single piece of cross-worker mutable coordination state in
// the shared-memory driver: a write-once tri-state found flag. The first
// MarkFound wins; every later attempt is a no-op, so a pathological
// near-simultaneous double discovery still yields exactly one recorded
// answer. Workers poll Done at iteration boundaries for cooperative
// cancellation; they may finish a few extra hashes after the transition,
// which is harmless because the winner has already been recorded.
//
// The zero value is ready to use.
type State struct {
	find  atomic.Pointer[Find]
	phase atomic.Int32
}

// MarkFound attempts the write-once searching -> found transition. It
// returns true for the first caller and false for every subsequent one.
func (s *State) MarkFound(candidate string, index uint64, finder int) bool {
	f := &Find{Candidate: candidate, Index: index, Finder: finder}
	if !s.find.CompareAndSwap(nil, f) {
		return false
	}
	// Found always wins over a racing MarkExhausted, hence a plain store.
	s.phase.Store(int32(Found))
	return true
}

// MarkExhausted records that the keyspace was fully enumerated. It loses to
// any concurrent or prior MarkFound.
func (s *State) MarkExhausted() bool {
	return s.phase.CompareAndSwap(int32(Searching), int32(Exhausted))
}

// Done reports whether a terminal transition has happened. Workers check
// this at loop boundaries and drain out when it turns true.
func (s *State) Done() bool { return s.phase.Load() != int32(Searching) }

// Outcome returns the current phase.
func (s *State) Outcome() Outcome { return Outcome(s.phase.Load()) }

// Find returns the recorded winner, or nil while searching or after
// exhaustion.
func (s *State) Find() *Find { return s.find.Load() }
