package keyspace

import "fmt"

// Stripe enumerates the indices assigned to one rank under the interleaved
// partition: rank, rank+world, rank+2*world, ... up to (but excluding)
// total. The stripes of all ranks partition [0, total) exactly, with no
// index assigned twice, which makes a distributed run collectively
// exhaustive without any load-balancing traffic.
//
// A Stripe is a pure cursor over that sequence: no shared state, no side
// effects, restartable via Reset.
type Stripe struct {
	start uint64
	step  uint64
	total uint64
	next  uint64
}

// NewStripe builds the stripe for rank within a worldSize-way partition of
// [0, total). rank must lie in [0, worldSize).
func NewStripe(rank, worldSize int, total uint64) (*Stripe, error) {
	if worldSize < 1 {
		return nil, fmt.Errorf("keyspace: world size %d must be positive", worldSize)
	}
	if rank < 0 || rank >= worldSize {
		return nil, fmt.Errorf("keyspace: rank %d out of range [0, %d)", rank, worldSize)
	}
	s := &Stripe{
		start: uint64(rank),
		step:  uint64(worldSize),
		total: total,
	}
	s.Reset()
	return s, nil
}

// Next returns the next assigned index, or ok=false once the stripe is
// exhausted.
func (s *Stripe) Next() (index uint64, ok bool) {
	if s.next >= s.total {
		return 0, false
	}
	index = s.next
	s.next += s.step
	return index, true
}

// Len returns the number of indices in the stripe.
func (s *Stripe) Len() uint64 {
	if s.start >= s.total {
		return 0
	}
	return (s.total - s.start + s.step - 1) / s.step
}

// Reset rewinds the stripe to its first index.
func (s *Stripe) Reset() { s.next = s.start }
