package comm

import (
	"context"
	"sync"
	"time"

	"golang.org/x/exp/slices"
)

// Roster tracks the worker ranks registered with the coordinator during
// bootstrap. Registration is idempotent: a rank that retries replaces its
// previous entry.
// Thread-safe: all methods may be called concurrently with the HTTP
// handlers that feed it.
type Roster struct {
	mu    sync.RWMutex
	ranks []RankInfo
}

// Add records or replaces the entry for info's rank.
func (r *Roster) Add(info RankInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := slices.IndexFunc(r.ranks, func(n RankInfo) bool { return n.Rank == info.Rank })
	if idx >= 0 {
		r.ranks[idx] = info
	} else {
		r.ranks = append(r.ranks, info)
	}
}

// Count returns the number of registered ranks.
func (r *Roster) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ranks)
}

// Ranks returns a copy of the registered ranks.
func (r *Roster) Ranks() []RankInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]RankInfo(nil), r.ranks...)
}

// Wait blocks until n ranks have registered or ctx is canceled.
func (r *Roster) Wait(ctx context.Context, n int) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		if r.Count() >= n {
			return nil
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
