package search

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dreamware/keygrind/internal/digest"
	"github.com/dreamware/keygrind/internal/keyspace"
)

// Chunk bounds for the dynamic scheduler. The cursor hands out ranges large
// enough to amortize the atomic add but small enough that workers finishing
// early keep stealing work from slower siblings.
const (
	minChunk = 256
	maxChunk = 65536
)

// Pool is the shared-memory driver: a fixed set of worker goroutines pulls
// chunks of the index range from a shared atomic cursor, so scheduling is
// dynamic and load-balances automatically. The only contended state is the
// cursor, the write-once found State, and the global attempt counter.
type Pool struct {
	Indexer *keyspace.Indexer
	Oracle  digest.Oracle

	// Workers is the pool size; 0 selects runtime.NumCPU().
	Workers int
	// ReportInterval is the attempt spacing of progress observations;
	// 0 selects DefaultReportInterval.
	ReportInterval uint64
	// FlushInterval is how many local attempts a worker accumulates
	// before merging them into the global counter; 0 selects
	// DefaultReportInterval. Remainders are flushed at worker exit.
	FlushInterval uint64
	// Observer receives progress samples; nil disables reporting.
	Observer Observer
}

// Run searches for a candidate of the given length whose tag equals target,
// spread across the worker pool. Exactly one found event is ever recorded;
// sibling workers observe it at iteration boundaries and drain out, which
// may cost them a handful of extra hashes past the match.
func (p *Pool) Run(ctx context.Context, target digest.Tag, length int) (Result, error) {
	total, err := p.Indexer.Combinations(length)
	if err != nil {
		return Result{}, err
	}

	workers := p.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	reportEvery := p.ReportInterval
	if reportEvery == 0 {
		reportEvery = DefaultReportInterval
	}
	flushEvery := p.FlushInterval
	if flushEvery == 0 {
		flushEvery = DefaultReportInterval
	}

	// Aim for enough chunks that the fastest worker can claim several.
	chunk := total / uint64(workers*16)
	if chunk < minChunk {
		chunk = minChunk
	}
	if chunk > maxChunk {
		chunk = maxChunk
	}

	var (
		state      State
		cursor     atomic.Uint64
		global     atomic.Uint64
		lastBucket atomic.Uint64
	)
	start := time.Now()

	// report emits at most one observation per reportEvery-sized bucket of
	// the global counter, no matter which worker crosses the boundary.
	report := func(attempts uint64) {
		if p.Observer == nil {
			return
		}
		bucket := attempts / reportEvery
		for {
			old := lastBucket.Load()
			if bucket <= old {
				return
			}
			if lastBucket.CompareAndSwap(old, bucket) {
				p.Observer(Observation{Attempts: attempts, Total: total, Elapsed: time.Since(start)})
				return
			}
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		id := w
		g.Go(func() error {
			buf := make([]byte, length)
			var local uint64
			flush := func() {
				if local > 0 {
					report(global.Add(local))
					local = 0
				}
			}
			defer flush()

			for !state.Done() {
				if err := ctx.Err(); err != nil {
					return err
				}
				begin := cursor.Add(chunk) - chunk
				if begin >= total {
					return nil
				}
				end := begin + chunk
				if end > total {
					end = total
				}
				for i := begin; i < end; i++ {
					// Cancellation is cooperative: checked between
					// hashes, never mid-hash.
					if state.Done() {
						return nil
					}
					p.Indexer.EncodeTo(buf, i)
					local++
					if p.Oracle.Sum(buf).Equal(target) {
						state.MarkFound(string(buf), i, id)
						return nil
					}
					if local%flushEvery == 0 {
						flush()
					}
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	res := Result{
		Attempts: global.Load(),
		Total:    total,
		Elapsed:  time.Since(start),
	}
	if f := state.Find(); f != nil {
		res.Outcome = Found
		res.Find = f
	} else {
		state.MarkExhausted()
		res.Outcome = Exhausted
	}
	return res, nil
}
