package comm

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func raw(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

// TestMailboxTryRecv checks the non-blocking probe semantics the search
// loop depends on: empty means ok=false immediately, and each message is
// consumed exactly once, in arrival order.
func TestMailboxTryRecv(t *testing.T) {
	m := NewMailbox(0)

	var out ProgressReport
	ok, err := m.TryRecv(TagProgress, &out)
	require.NoError(t, err)
	assert.False(t, ok, "empty mailbox must not block or yield")

	require.True(t, m.Put(TagProgress, raw(t, ProgressReport{Rank: 1, Attempts: 100})))
	require.True(t, m.Put(TagProgress, raw(t, ProgressReport{Rank: 1, Attempts: 200})))

	ok, err = m.TryRecv(TagProgress, &out)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(100), out.Attempts, "FIFO per tag")

	ok, err = m.TryRecv(TagProgress, &out)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(200), out.Attempts)

	ok, err = m.TryRecv(TagProgress, &out)
	require.NoError(t, err)
	assert.False(t, ok, "a message is consumed exactly once")
}

// TestMailboxTagIsolation verifies tags are independent channels.
func TestMailboxTagIsolation(t *testing.T) {
	m := NewMailbox(0)
	require.True(t, m.Put(TagTerminate, raw(t, TerminateNotice{Finder: 2})))

	var progress ProgressReport
	ok, err := m.TryRecv(TagProgress, &progress)
	require.NoError(t, err)
	assert.False(t, ok)

	var notice TerminateNotice
	ok, err = m.TryRecv(TagTerminate, &notice)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, notice.Finder)
}

// TestMailboxOverflow verifies the best-effort drop behavior at the queue
// bound.
func TestMailboxOverflow(t *testing.T) {
	m := NewMailbox(2)
	assert.True(t, m.Put(TagProgress, raw(t, ProgressReport{Attempts: 1})))
	assert.True(t, m.Put(TagProgress, raw(t, ProgressReport{Attempts: 2})))
	assert.False(t, m.Put(TagProgress, raw(t, ProgressReport{Attempts: 3})), "full queue must drop, not block")
	assert.Equal(t, 2, m.Pending(TagProgress))
}

func TestMailboxRecv(t *testing.T) {
	t.Run("blocks until a message arrives", func(t *testing.T) {
		m := NewMailbox(0)
		msg := raw(t, ResultReport{Rank: 3})
		go func() {
			time.Sleep(20 * time.Millisecond)
			m.Put(TagResult, msg)
		}()

		var report ResultReport
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, m.Recv(ctx, TagResult, &report))
		assert.Equal(t, 3, report.Rank)
	})

	t.Run("honors context cancellation", func(t *testing.T) {
		m := NewMailbox(0)
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		var report ResultReport
		err := m.Recv(ctx, TagResult, &report)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
