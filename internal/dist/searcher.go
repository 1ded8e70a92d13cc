package dist

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dreamware/keygrind/internal/comm"
	"github.com/dreamware/keygrind/internal/digest"
	"github.com/dreamware/keygrind/internal/keyspace"
	"github.com/dreamware/keygrind/internal/search"
)

// DefaultCheckInterval is the number of candidates a rank hashes between
// coordination actions: probing for termination and reporting progress.
const DefaultCheckInterval = 50000

// Config fixes a rank's place in the world. Rank and WorldSize come from
// process bootstrap; the searcher never launches or tears down processes
// itself.
type Config struct {
	Rank      int
	WorldSize int
	// CheckInterval overrides DefaultCheckInterval when non-zero.
	CheckInterval uint64
	// Observer receives aggregated progress; only rank 0 emits.
	Observer search.Observer
}

// RunResult is one rank's view of a distributed run.
type RunResult struct {
	// Outcome is Found when a candidate was recovered anywhere in the
	// world and this rank learned of it, Exhausted when this rank swept
	// its whole stripe without a match or notice.
	Outcome search.Outcome
	// Local is true when this rank made the find itself.
	Local bool
	// Find is set for Found outcomes, local or remote.
	Find     *search.Find
	Attempts uint64
	Total    uint64
	Elapsed  time.Duration
}

// Searcher runs one rank's share of a distributed search: the static
// stripe {rank, rank+W, rank+2W, ...}, with termination probing and
// progress reporting folded into the loop at a fixed check interval.
type Searcher struct {
	cfg     Config
	indexer *keyspace.Indexer
	oracle  digest.Oracle
	ep      *comm.Endpoint
	peers   []comm.RankInfo

	// latest progress snapshot per worker rank; rank 0 only.
	latest map[int]uint64
}

// New validates the world shape and builds the searcher. peers must be the
// full roster, one entry per rank, including this one.
func New(cfg Config, indexer *keyspace.Indexer, oracle digest.Oracle, ep *comm.Endpoint, peers []comm.RankInfo) (*Searcher, error) {
	if cfg.WorldSize < 1 {
		return nil, fmt.Errorf("dist: world size %d must be positive", cfg.WorldSize)
	}
	if cfg.Rank < 0 || cfg.Rank >= cfg.WorldSize {
		return nil, fmt.Errorf("dist: rank %d out of range [0, %d)", cfg.Rank, cfg.WorldSize)
	}
	if len(peers) != cfg.WorldSize {
		return nil, fmt.Errorf("dist: roster has %d entries for world size %d", len(peers), cfg.WorldSize)
	}
	return &Searcher{
		cfg:     cfg,
		indexer: indexer,
		oracle:  oracle,
		ep:      ep,
		peers:   peers,
		latest:  make(map[int]uint64),
	}, nil
}

// Run sweeps this rank's stripe looking for a candidate whose tag equals
// target. Every CheckInterval candidates it probes the terminate mailbox
// (halting immediately on a notice) and exchanges progress. On a local
// match it broadcasts a terminate notice to every peer before returning;
// it does not wait for peers to act on it.
func (s *Searcher) Run(ctx context.Context, target digest.Tag, length int) (RunResult, error) {
	total, err := s.indexer.Combinations(length)
	if err != nil {
		return RunResult{}, err
	}
	stripe, err := keyspace.NewStripe(s.cfg.Rank, s.cfg.WorldSize, total)
	if err != nil {
		return RunResult{}, err
	}
	check := s.cfg.CheckInterval
	if check == 0 {
		check = DefaultCheckInterval
	}

	start := time.Now()
	buf := make([]byte, length)
	var counter uint64

	for i, ok := stripe.Next(); ok; i, ok = stripe.Next() {
		counter++
		if counter%check == 0 {
			if res, stopped := s.checkpoint(counter, total, start); stopped {
				return res, nil
			}
			if err := ctx.Err(); err != nil {
				return RunResult{}, err
			}
		}

		s.indexer.EncodeTo(buf, i)
		if s.oracle.Sum(buf).Equal(target) {
			find := &search.Find{Candidate: string(buf), Index: i, Finder: s.cfg.Rank}
			s.announce(ctx, find)
			return RunResult{
				Outcome:  search.Found,
				Local:    true,
				Find:     find,
				Attempts: counter,
				Total:    total,
				Elapsed:  time.Since(start),
			}, nil
		}
	}

	// Stripe exhausted. One last probe so a notice that raced our final
	// interval is still consumed before exit.
	if notice, ok := s.probeTerminate(); ok {
		return s.remoteResult(notice, counter, total, start), nil
	}
	return RunResult{
		Outcome:  search.Exhausted,
		Attempts: counter,
		Total:    total,
		Elapsed:  time.Since(start),
	}, nil
}

// checkpoint performs the per-interval coordination: terminate probe, then
// progress exchange. stopped=true means a terminate notice was consumed
// and res is the final result.
func (s *Searcher) checkpoint(counter, total uint64, start time.Time) (res RunResult, stopped bool) {
	if notice, ok := s.probeTerminate(); ok {
		return s.remoteResult(notice, counter, total, start), true
	}
	if s.cfg.Rank != 0 {
		// Fire-and-forget cumulative count to the aggregator.
		s.ep.SendAsync(s.peers[0], comm.TagProgress, comm.ProgressReport{
			Rank:     s.cfg.Rank,
			Attempts: counter,
		})
	} else {
		s.aggregate(counter, total, time.Since(start))
	}
	return RunResult{}, false
}

// probeTerminate does a non-blocking check of the terminate mailbox.
func (s *Searcher) probeTerminate() (comm.TerminateNotice, bool) {
	var notice comm.TerminateNotice
	ok, err := s.ep.Mailbox().TryRecv(comm.TagTerminate, &notice)
	if err != nil {
		log.Printf("rank %d: bad terminate notice: %v", s.cfg.Rank, err)
		return comm.TerminateNotice{}, false
	}
	return notice, ok
}

// announce sends the terminate notice to every peer, blocking per send.
// Delivery failures are logged, not returned: the local answer is already
// in hand, and an unreachable peer will simply exhaust its stripe.
func (s *Searcher) announce(ctx context.Context, find *search.Find) {
	notice := comm.TerminateNotice{
		Finder:    find.Finder,
		Candidate: find.Candidate,
		Index:     find.Index,
	}
	if err := s.ep.Broadcast(ctx, s.peers, comm.TagTerminate, notice); err != nil {
		log.Printf("rank %d: terminate broadcast incomplete: %v", s.cfg.Rank, err)
	}
}

// aggregate drains whatever progress messages happen to be pending right
// now, folds them into the latest-per-rank snapshot, and emits one
// observation. Ranks with no pending message this round are represented by
// their previous snapshot; a rank that has never reported contributes
// zero. The sum is a best-effort lower bound, never an exact consensus.
func (s *Searcher) aggregate(own, total uint64, elapsed time.Duration) {
	for {
		var report comm.ProgressReport
		ok, err := s.ep.Mailbox().TryRecv(comm.TagProgress, &report)
		if err != nil {
			log.Printf("rank 0: bad progress report: %v", err)
			continue
		}
		if !ok {
			break
		}
		s.latest[report.Rank] = report.Attempts
	}
	sum := own
	for _, n := range s.latest {
		sum += n
	}
	if s.cfg.Observer != nil {
		s.cfg.Observer(search.Observation{Attempts: sum, Total: total, Elapsed: elapsed})
	}
}

// remoteResult shapes the result for a rank stopped by a peer's notice.
func (s *Searcher) remoteResult(notice comm.TerminateNotice, counter, total uint64, start time.Time) RunResult {
	return RunResult{
		Outcome: search.Found,
		Local:   false,
		Find: &search.Find{
			Candidate: notice.Candidate,
			Index:     notice.Index,
			Finder:    notice.Finder,
		},
		Attempts: counter,
		Total:    total,
		Elapsed:  time.Since(start),
	}
}
