// Package main implements crack, the single-process keygrind driver. It
// recovers a fixed-alphabet secret from its digest by exhaustive keyspace
// search, either serially or across a shared-memory worker pool.
//
// Example usage:
//
//	# Serial sweep, classic md5 target
//	crack --secret cab
//
//	# All CPUs, dynamic scheduling
//	crack --secret cab --mode parallel
//
//	# Different digest and alphabet
//	crack --secret FEED --mode parallel --algorithm sha256 --alphabet ABCDEF
//
// With no --secret the program prompts on stdin. Exit status: 0 when the
// candidate is recovered, 1 after exhausting the keyspace without a match,
// 2 on invalid input or configuration.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/dreamware/keygrind/internal/digest"
	"github.com/dreamware/keygrind/internal/keyspace"
	"github.com/dreamware/keygrind/internal/search"
)

// Exit statuses distinguish the three terminal outcomes.
const (
	exitFound    = 0
	exitNotFound = 1
	exitError    = 2
)

func main() { os.Exit(run()) }

func run() int {
	var (
		secret         = flag.String("secret", "", "secret to recover (prompted on stdin when empty)")
		algorithm      = flag.String("algorithm", digest.DefaultAlgorithm, "digest algorithm: "+fmt.Sprint(digest.Names()))
		alphabet       = flag.String("alphabet", keyspace.DefaultAlphabet, "search alphabet")
		mode           = flag.String("mode", "serial", "driver: serial or parallel")
		workers        = flag.Int("workers", 0, "worker count for parallel mode (0 = all CPUs)")
		reportInterval = flag.Uint64("report-interval", search.DefaultReportInterval, "attempts between progress lines")
	)
	flag.Parse()

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
	// Validation is fatal before any search begins.
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

	log.Printf("target tag (%s): %s", oracle.Name(), target)
	log.Printf("alphabet: %q, length: %d, keyspace: %d candidates", indexer.Alphabet(), len(input), total)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var res search.Result
	switch *mode {
	case "serial":
		log.Printf("mode: serial")
		driver := &search.Serial{
			Indexer:        indexer,
			Oracle:         oracle,
			ReportInterval: *reportInterval,
			Observer:       search.LogObserver,
		}
		res, err = driver.Run(ctx, target, len(input))
	case "parallel":
		n := *workers
		if n <= 0 {
			n = runtime.NumCPU()
		}
		log.Printf("mode: parallel, %d workers", n)
		pool := &search.Pool{
			Indexer:        indexer,
			Oracle:         oracle,
			Workers:        n,
			ReportInterval: *reportInterval,
			Observer:       search.LogObserver,
		}
		res, err = pool.Run(ctx, target, len(input))
	default:
		log.Printf("unknown mode %q (want serial or parallel)", *mode)
		return exitError
	}
	if err != nil {
		log.Printf("search aborted: %v", err)
		return exitError
	}

	return report(res)
}

// report prints the final outcome exactly once and maps it to an exit
// status.
func report(res search.Result) int {
	if res.Outcome == search.Found {
		log.Printf("FOUND: %q at index %d", res.Find.Candidate, res.Find.Index)
		log.Printf("attempts: %d, elapsed: %s, rate: %.0f candidates/sec",
			res.Attempts, res.Elapsed.Round(time.Millisecond),
			search.Observation{Attempts: res.Attempts, Total: res.Total, Elapsed: res.Elapsed}.Rate())
		return exitFound
	}
	log.Printf("NOT FOUND after %d attempts in %s", res.Attempts, res.Elapsed)
	return exitNotFound
}
