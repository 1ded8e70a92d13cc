package search

import (
	"context"
	"time"

	"github.com/dreamware/keygrind/internal/digest"
	"github.com/dreamware/keygrind/internal/keyspace"
)

// Serial enumerates the whole keyspace on one goroutine, in increasing
// index order, stopping at the first match. It is the reference driver the
// concurrent ones must agree with.
type Serial struct {
	Indexer *keyspace.Indexer
	Oracle  digest.Oracle

	// ReportInterval is the number of attempts between progress
	// observations; 0 selects DefaultReportInterval.
	ReportInterval uint64
	// Observer receives progress samples; nil disables reporting.
	Observer Observer
}

// Run searches for a candidate of the given length whose tag equals target.
// It returns a Found result at the first match, an Exhausted result after a
// full sweep, or ctx.Err() if canceled at an iteration boundary.
func (s *Serial) Run(ctx context.Context, target digest.Tag, length int) (Result, error) {
	total, err := s.Indexer.Combinations(length)
	if err != nil {
		return Result{}, err
	}
	interval := s.ReportInterval
	if interval == 0 {
		interval = DefaultReportInterval
	}

	start := time.Now()
	buf := make([]byte, length)
	for i := uint64(0); i < total; i++ {
		s.Indexer.EncodeTo(buf, i)
		if s.Oracle.Sum(buf).Equal(target) {
			return Result{
				Outcome:  Found,
				Find:     &Find{Candidate: string(buf), Index: i},
				Attempts: i + 1,
				Total:    total,
				Elapsed:  time.Since(start),
			}, nil
		}

		if (i+1)%interval == 0 {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
			if s.Observer != nil {
				s.Observer(Observation{Attempts: i + 1, Total: total, Elapsed: time.Since(start)})
			}
		}
	}

	return Result{
		Outcome:  Exhausted,
		Attempts: total,
		Total:    total,
		Elapsed:  time.Since(start),
	}, nil
}
