package search

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/keygrind/internal/digest"
	"github.com/dreamware/keygrind/internal/keyspace"
)

// TestPoolFindsSecret checks the shared-memory driver agrees with the
// serial reference regardless of how chunks land on workers.
func TestPoolFindsSecret(t *testing.T) {
	ix, oracle := testFixture(t, keyspace.DefaultAlphabet)
	pool := &Pool{Indexer: ix, Oracle: oracle, Workers: 4}

	target := oracle.Sum([]byte("cab"))
	res, err := pool.Run(context.Background(), target, 3)
	require.NoError(t, err)

	assert.Equal(t, Found, res.Outcome)
	require.NotNil(t, res.Find)
	assert.Equal(t, "cab", res.Find.Candidate)
	assert.Equal(t, uint64(2*26*26+0*26+1), res.Find.Index)
	// Cooperative cancellation: siblings may overshoot slightly, but never
	// past the whole keyspace.
	assert.LessOrEqual(t, res.Attempts, res.Total)
	assert.Greater(t, res.Attempts, uint64(0))
}

// TestPoolExhausts verifies a no-match run counts every candidate exactly
// once across all workers: the flush-at-exit path must not lose the
// remainders below the flush threshold.
func TestPoolExhausts(t *testing.T) {
	ix, oracle := testFixture(t, "ab")
	pool := &Pool{Indexer: ix, Oracle: oracle, Workers: 3, FlushInterval: 7}

	target := oracle.Sum([]byte("nope"))
	res, err := pool.Run(context.Background(), target, 9)
	require.NoError(t, err)

	assert.Equal(t, Exhausted, res.Outcome)
	assert.Nil(t, res.Find)
	assert.Equal(t, uint64(512), res.Total)
	assert.Equal(t, res.Total, res.Attempts, "no attempt may be lost or double-counted")
}

// collidingOracle tags every candidate identically, simulating a
// pathological digest collision where all workers find simultaneously.
type collidingOracle struct{}

func (collidingOracle) Name() string          { return "colliding" }
func (collidingOracle) Size() int             { return 4 }
func (collidingOracle) Sum([]byte) digest.Tag { return digest.Tag{0xde, 0xad, 0xbe, 0xef} }

// TestPoolAtMostOneResult floods the pool with matches and verifies the
// found state still records exactly one coherent answer.
func TestPoolAtMostOneResult(t *testing.T) {
	ix, err := keyspace.New(keyspace.DefaultAlphabet)
	require.NoError(t, err)

	oracle := collidingOracle{}
	pool := &Pool{Indexer: ix, Oracle: oracle, Workers: 8}

	res, err := pool.Run(context.Background(), oracle.Sum(nil), 3)
	require.NoError(t, err)

	assert.Equal(t, Found, res.Outcome)
	require.NotNil(t, res.Find)
	// The single recorded candidate must be internally consistent.
	back, err := ix.Decode(res.Find.Candidate)
	require.NoError(t, err)
	assert.Equal(t, res.Find.Index, back)
}

// TestPoolProgress verifies flushed counts reach the observer without
// lost updates and samples stay within the keyspace.
func TestPoolProgress(t *testing.T) {
	ix, oracle := testFixture(t, "ab")

	var collector chanObserver
	pool := &Pool{
		Indexer:        ix,
		Oracle:         oracle,
		Workers:        2,
		ReportInterval: 64,
		FlushInterval:  16,
		Observer:       collector.observe,
	}

	target := oracle.Sum([]byte("nope"))
	res, err := pool.Run(context.Background(), target, 9)
	require.NoError(t, err)
	require.Equal(t, Exhausted, res.Outcome)

	samples := collector.samples()
	assert.NotEmpty(t, samples)
	for _, o := range samples {
		assert.LessOrEqual(t, o.Attempts, uint64(512))
		assert.Equal(t, uint64(512), o.Total)
	}
}

func TestPoolCancellation(t *testing.T) {
	ix, oracle := testFixture(t, keyspace.DefaultAlphabet)
	pool := &Pool{Indexer: ix, Oracle: oracle, Workers: 2}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	target := oracle.Sum([]byte("zzzz"))
	_, err := pool.Run(ctx, target, 4)
	assert.ErrorIs(t, err, context.Canceled)
}

// chanObserver collects observations from concurrent workers.
type chanObserver struct {
	mu  sync.Mutex
	obs []Observation
}

func (c *chanObserver) observe(o Observation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.obs = append(c.obs, o)
}

func (c *chanObserver) samples() []Observation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Observation(nil), c.obs...)
}
