package search

import (
	"log"
	"time"
)

// DefaultReportInterval is the number of attempts between progress
// observations in the single-process drivers.
const DefaultReportInterval = 10000

// Observation is one progress sample. Samples are observational only: they
// never influence control flow, and in concurrent runs they may lag the
// true attempt count.
type Observation struct {
	Attempts uint64
	Total    uint64
	Elapsed  time.Duration
}

// Percent returns completed progress as a percentage of the keyspace.
func (o Observation) Percent() float64 {
	if o.Total == 0 {
		return 0
	}
	return float64(o.Attempts) * 100 / float64(o.Total)
}

// Rate returns attempts per second over the elapsed window.
func (o Observation) Rate() float64 {
	if o.Elapsed <= 0 {
		return 0
	}
	return float64(o.Attempts) / o.Elapsed.Seconds()
}

// Observer consumes progress samples. Implementations must be fast and safe
// for concurrent use; the pool driver invokes them from worker goroutines.
type Observer func(Observation)

// LogObserver writes samples through the standard logger in the classic
// progress-line format.
func LogObserver(o Observation) {
	log.Printf("progress: %d / %d attempts (%.2f%%)", o.Attempts, o.Total, o.Percent())
}
