// Package main implements a keygrind worker rank.
//
// A worker registers with the coordinator, blocks until the job broadcast
// arrives, then sweeps its static stripe of the keyspace. Every check
// interval it probes for a termination notice and fire-and-forgets its
// attempt count to the coordinator; if it finds the candidate itself it
// notifies every peer before reporting. When its loop ends — found,
// terminated, or exhausted — it sends its final accounting to the
// coordinator and exits.
//
// Configuration (flags, with environment fallback):
//   - --rank: this rank's id, 1..worldSize-1 (required)
//   - --listen / WORKER_LISTEN: local listen address (default ":8081")
//   - --addr / WORKER_ADDR: address peers reach us at
//     (default "http://127.0.0.1:8081")
//   - --coordinator / COORDINATOR_ADDR: coordinator base URL
//
// Exit status: 0 when the run ended with a find (local or remote), 1 when
// this rank exhausted its stripe without hearing of one, 2 on bootstrap
// failure.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/dreamware/keygrind/internal/comm"
	"github.com/dreamware/keygrind/internal/digest"
	"github.com/dreamware/keygrind/internal/dist"
	"github.com/dreamware/keygrind/internal/keyspace"
	"github.com/dreamware/keygrind/internal/search"
)

const (
	exitFound    = 0
	exitNotFound = 1
	exitError    = 2
)

// registration retry window covers coordinator startup delays.
const (
	registerAttempts = 10
	registerBackoff  = 400 * time.Millisecond
)

func main() { os.Exit(run()) }

func run() int {
	var (
		rank   = flag.Int("rank", 0, "this rank's id (1..worldSize-1)")
		listen = flag.String("listen", getenv("WORKER_LISTEN", ":8081"), "local listen address")
		addr   = flag.String("addr", getenv("WORKER_ADDR", "http://127.0.0.1:8081"), "public address peers reach us at")
		coord  = flag.String("coordinator", getenv("COORDINATOR_ADDR", "http://127.0.0.1:8080"), "coordinator base URL")
	)
	flag.Parse()

	if *rank < 1 {
		log.Printf("rank %d must be >= 1 (rank 0 is the coordinator)", *rank)
		return exitError
	}

	self := comm.RankInfo{Rank: *rank, Addr: *addr}
	ep := comm.NewEndpoint(self)

	go func() {
		log.Printf("rank %d listening on %s (public %s)", *rank, *listen, *addr)
		if err := ep.Serve(*listen, ep.Routes()); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer shutdown(ep, *rank)

	if err := register(ctx, *coord, self); err != nil {
		log.Printf("failed to register with coordinator: %v", err)
		return exitError
	}

	// Block until the collective job broadcast arrives; the target is
	// identical at every rank before any searching begins.
	var job comm.Job
	if err := ep.Mailbox().Recv(ctx, comm.TagJob, &job); err != nil {
		log.Printf("waiting for job: %v", err)
		return exitError
	}
	log.Printf("rank %d: job received: %s target, length %d, world %d",
		*rank, job.Algorithm, job.Length, len(job.Ranks))

	indexer, err := keyspace.New(job.Alphabet)
	if err != nil {
		log.Printf("bad job alphabet: %v", err)
		return exitError
	}
	oracle, err := digest.New(job.Algorithm)
	if err != nil {
		log.Printf("bad job algorithm: %v", err)
		return exitError
	}
	target, err := digest.ParseTag(job.Target)
	if err != nil {
		log.Printf("bad job target: %v", err)
		return exitError
	}

	searcher, err := dist.New(dist.Config{
		Rank:          *rank,
		WorldSize:     len(job.Ranks),
		CheckInterval: job.CheckInterval,
	}, indexer, oracle, ep, job.Ranks)
	if err != nil {
		log.Printf("searcher: %v", err)
		return exitError
	}

	res, err := searcher.Run(ctx, target, job.Length)
	if err != nil {
		log.Printf("search aborted: %v", err)
		return exitError
	}

	switch {
	case res.Outcome == search.Found && res.Local:
		log.Printf("rank %d FOUND: %q at index %d after %d attempts",
			*rank, res.Find.Candidate, res.Find.Index, res.Attempts)
	case res.Outcome == search.Found:
		log.Printf("rank %d: stopped by rank %d's find after %d attempts",
			*rank, res.Find.Finder, res.Attempts)
	default:
		log.Printf("rank %d: stripe exhausted, %d attempts, no match", *rank, res.Attempts)
	}

	if err := dist.ReportResult(ctx, ep, job.Ranks[0], res); err != nil {
		log.Printf("result report failed: %v", err)
	}

	if res.Outcome == search.Found {
		return exitFound
	}
	return exitNotFound
}

// register announces this rank to the coordinator, retrying to ride out
// coordinator startup.
func register(ctx context.Context, coord string, self comm.RankInfo) error {
	body := comm.RegisterRequest{Rank: self}
	var lastErr error
	for i := 0; i < registerAttempts; i++ {
		lastErr = comm.PostJSON(ctx, coord+"/register", body, nil)
		if lastErr == nil {
			log.Printf("rank %d registered with coordinator @ %s", self.Rank, coord)
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("register retry %d: %v", i+1, lastErr)
		time.Sleep(registerBackoff)
	}
	return lastErr
}

func shutdown(ep *comm.Endpoint, rank int) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = ep.Shutdown(ctx)
	log.Printf("rank %d stopped", rank)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
