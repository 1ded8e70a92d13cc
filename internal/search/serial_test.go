package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/keygrind/internal/digest"
	"github.com/dreamware/keygrind/internal/keyspace"
)

func testFixture(t *testing.T, alphabet string) (*keyspace.Indexer, digest.Oracle) {
	t.Helper()
	ix, err := keyspace.New(alphabet)
	require.NoError(t, err)
	oracle, err := digest.New("md5")
	require.NoError(t, err)
	return ix, oracle
}

// TestSerialFindsSecret runs the end-to-end reference case: secret "cab"
// over the lowercase alphabet sits at index 2*26*26 + 0*26 + 1.
func TestSerialFindsSecret(t *testing.T) {
	ix, oracle := testFixture(t, keyspace.DefaultAlphabet)
	driver := &Serial{Indexer: ix, Oracle: oracle}

	target := oracle.Sum([]byte("cab"))
	res, err := driver.Run(context.Background(), target, 3)
	require.NoError(t, err)

	assert.Equal(t, Found, res.Outcome)
	require.NotNil(t, res.Find)
	assert.Equal(t, "cab", res.Find.Candidate)
	assert.Equal(t, uint64(2*26*26+0*26+1), res.Find.Index)
	// In-order sweep: attempts is exactly index+1, nothing was tried after
	// the match.
	assert.Equal(t, res.Find.Index+1, res.Attempts)
	assert.Equal(t, uint64(17576), res.Total)
}

// TestSerialExhausts searches for a target no length-3 candidate can
// produce and must sweep the whole keyspace.
func TestSerialExhausts(t *testing.T) {
	ix, oracle := testFixture(t, "ab")
	driver := &Serial{Indexer: ix, Oracle: oracle}

	// Digest of a string outside the length-3 keyspace.
	target := oracle.Sum([]byte("nope"))
	res, err := driver.Run(context.Background(), target, 3)
	require.NoError(t, err)

	assert.Equal(t, Exhausted, res.Outcome)
	assert.Nil(t, res.Find)
	assert.Equal(t, uint64(8), res.Attempts, "attempts must equal the keyspace size")
}

// TestSerialProgress verifies observations fire at the configured interval
// and never alter the search result.
func TestSerialProgress(t *testing.T) {
	ix, oracle := testFixture(t, "ab")

	var samples []Observation
	driver := &Serial{
		Indexer:        ix,
		Oracle:         oracle,
		ReportInterval: 2,
		Observer:       func(o Observation) { samples = append(samples, o) },
	}

	target := oracle.Sum([]byte("nope"))
	res, err := driver.Run(context.Background(), target, 3)
	require.NoError(t, err)
	assert.Equal(t, Exhausted, res.Outcome)

	// 8 attempts at interval 2 -> samples at 2, 4, 6, 8.
	require.Len(t, samples, 4)
	for i, o := range samples {
		assert.Equal(t, uint64(2*(i+1)), o.Attempts)
		assert.Equal(t, uint64(8), o.Total)
	}
}

func TestSerialCancellation(t *testing.T) {
	ix, oracle := testFixture(t, keyspace.DefaultAlphabet)
	driver := &Serial{Indexer: ix, Oracle: oracle, ReportInterval: 1}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	target := oracle.Sum([]byte("zzz"))
	_, err := driver.Run(ctx, target, 3)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSerialOverflowRejected(t *testing.T) {
	ix, oracle := testFixture(t, keyspace.DefaultAlphabet)
	driver := &Serial{Indexer: ix, Oracle: oracle}

	_, err := driver.Run(context.Background(), digest.Tag{}, 14)
	assert.ErrorIs(t, err, keyspace.ErrOverflow)
}
