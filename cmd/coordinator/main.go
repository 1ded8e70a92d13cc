// Package main implements the keygrind distributed coordinator (rank 0).
//
// The coordinator owns the secret: it validates it, computes the target
// tag, waits for every worker rank to register, then broadcasts the job so
// all ranks search an identical target. It also runs its own stripe of the
// keyspace, aggregates best-effort progress reports, collects each rank's
// final accounting, and prints the single final outcome.
//
// Configuration (flags, with environment fallback):
//   - --listen / COORDINATOR_LISTEN: local listen address (default ":8080")
//   - --addr / COORDINATOR_ADDR: address workers reach us at
//     (default "http://127.0.0.1:8080")
//   - --world-size: total ranks including the coordinator (required >= 1)
//   - --secret: the secret to recover (prompted on stdin when empty)
//
// Example three-rank run:
//
//	coordinator --world-size 3 --secret cab &
//	worker --rank 1 --listen :8081 --addr http://127.0.0.1:8081 &
//	worker --rank 2 --listen :8082 --addr http://127.0.0.1:8082 &
//
// Exit status: 0 when the candidate is recovered by any rank, 1 after all
// ranks exhaust their stripes, 2 on invalid input or a bootstrap failure.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"
	"golang.org/x/exp/slices"

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

func main() { os.Exit(run()) }

func run() int {
	var (
		listen        = flag.String("listen", getenv("COORDINATOR_LISTEN", ":8080"), "local listen address")
		addr          = flag.String("addr", getenv("COORDINATOR_ADDR", "http://127.0.0.1:8080"), "public address workers reach us at")
		worldSize     = flag.Int("world-size", 1, "total ranks including the coordinator")
		secret        = flag.String("secret", "", "secret to recover (prompted on stdin when empty)")
		algorithm     = flag.String("algorithm", digest.DefaultAlgorithm, "digest algorithm: "+fmt.Sprint(digest.Names()))
		alphabet      = flag.String("alphabet", keyspace.DefaultAlphabet, "search alphabet")
		checkInterval = flag.Uint64("check-interval", dist.DefaultCheckInterval, "candidates between coordination checks")
	)
	flag.Parse()

	if *worldSize < 1 {
		log.Printf("world size %d must be positive", *worldSize)
		return exitError
	}

	indexer, err := keyspace.New(*alphabet)
	if err != nil {
		log.Printf("invalid alphabet: %v", err)
		return exitError
	}
	oracle, err := digest.New(*algorithm)
	if err != nil {
		log.Printf("invalid algorithm: %v", err)
		return exitError
	}

	input := *secret
	if input == "" {
		fmt.Print("Enter password to crack: ")
		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			log.Printf("no secret on stdin: %v", scanner.Err())
			return exitError
		}
		input = scanner.Text()
	}
	// A malformed secret aborts the whole distributed run before any
	// worker is given a job.
	if err := indexer.Validate(input); err != nil {
		log.Printf("invalid secret: %v", err)
		return exitError
	}
	target := oracle.Sum([]byte(input))
	total, err := indexer.Combinations(len(input))
	if err != nil {
		log.Printf("keyspace too large: %v", err)
		return exitError
	}

	self := comm.RankInfo{Rank: 0, Addr: *addr}
	ep := comm.NewEndpoint(self)
	roster := &comm.Roster{}

	mux := ep.Routes()
	mux.HandleFunc("/register", func(w http.ResponseWriter, r *http.Request) {
		handleRegister(roster, *worldSize, w, r)
	})

	go func() {
		log.Printf("coordinator listening on %s (public %s)", *listen, *addr)
		if err := ep.Serve(*listen, mux); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer shutdown(ep)

	workers := *worldSize - 1
	log.Printf("waiting for %d worker rank(s) to register", workers)
	if err := roster.Wait(ctx, workers); err != nil {
		log.Printf("bootstrap interrupted: %v", err)
		return exitError
	}

	// Full world roster, indexed by rank. Registration order is arbitrary,
	// so sort before broadcasting.
	peers := make([]comm.RankInfo, 0, *worldSize)
	peers = append(peers, self)
	peers = append(peers, roster.Ranks()...)
	slices.SortFunc(peers, func(a, b comm.RankInfo) int { return a.Rank - b.Rank })

	job := comm.Job{
		Algorithm:     oracle.Name(),
		Target:        target.String(),
		Length:        len(input),
		Alphabet:      indexer.Alphabet(),
		CheckInterval: *checkInterval,
		Ranks:         peers,
	}
	// The job broadcast is the collective that guarantees every rank holds
	// an identical target before searching; a rank that cannot receive it
	// aborts the run.
	for _, p := range peers[1:] {
		if err := ep.Send(ctx, p, comm.TagJob, job); err != nil {
			log.Printf("job broadcast to rank %d failed: %v", p.Rank, err)
			return exitError
		}
	}

	log.Printf("target tag (%s): %s", oracle.Name(), target)
	log.Printf("alphabet: %q, length: %d, keyspace: %d candidates, world: %d ranks",
		indexer.Alphabet(), len(input), total, *worldSize)

	searcher, err := dist.New(dist.Config{
		Rank:          0,
		WorldSize:     *worldSize,
		CheckInterval: *checkInterval,
		Observer:      search.LogObserver,
	}, indexer, oracle, ep, peers)
	if err != nil {
		log.Printf("searcher: %v", err)
		return exitError
	}

	res, err := searcher.Run(ctx, target, len(input))
	if err != nil {
		log.Printf("search aborted: %v", err)
		return exitError
	}

	// Every rank reports once its loop ends, terminated or exhausted.
	results, err := dist.CollectResults(ctx, ep, workers)
	if err != nil {
		log.Printf("result collection incomplete: %v", err)
	}

	attempts := res.Attempts
	find := res.Find
	for _, r := range results {
		attempts += r.Attempts
		if r.Found {
			find = &search.Find{Candidate: r.Candidate, Index: r.Index, Finder: r.Rank}
		}
	}

	if find != nil {
		log.Printf("FOUND: %q at index %d (rank %d)", find.Candidate, find.Index, find.Finder)
		log.Printf("attempts: %d, elapsed: %s, rate: %.0f candidates/sec",
			attempts, res.Elapsed.Round(time.Millisecond),
			search.Observation{Attempts: attempts, Elapsed: res.Elapsed}.Rate())
		return exitFound
	}
	log.Printf("NOT FOUND after %d attempts in %s", attempts, res.Elapsed.Round(time.Millisecond))
	return exitNotFound
}

// handleRegister records a worker rank in the roster. Registration is
// idempotent so worker retries are harmless.
func handleRegister(roster *comm.Roster, worldSize int, w http.ResponseWriter, r *http.Request) {
	var req comm.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Rank.Addr == "" {
		http.Error(w, "missing addr", http.StatusBadRequest)
		return
	}
	if req.Rank.Rank < 1 || req.Rank.Rank >= worldSize {
		http.Error(w, fmt.Sprintf("rank must be in [1, %d)", worldSize), http.StatusBadRequest)
		return
	}
	roster.Add(req.Rank)
	log.Printf("rank %d registered @ %s", req.Rank.Rank, req.Rank.Addr)
	w.WriteHeader(http.StatusNoContent)
}

func shutdown(ep *comm.Endpoint) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = ep.Shutdown(ctx)
	log.Println("coordinator stopped")
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
