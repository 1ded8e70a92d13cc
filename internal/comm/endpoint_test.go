package comm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEndpoint spins up an endpoint on an httptest server and returns it
// with its RankInfo pointing at the server's URL.
func testEndpoint(t *testing.T, rank int) *Endpoint {
	t.Helper()
	ep := NewEndpoint(RankInfo{Rank: rank})
	ts := httptest.NewServer(ep.Routes())
	t.Cleanup(ts.Close)
	ep.self.Addr = ts.URL
	return ep
}

func TestEndpointMessageRoundTrip(t *testing.T) {
	sender := testEndpoint(t, 1)
	receiver := testEndpoint(t, 0)

	err := sender.Send(context.Background(), receiver.Self(), TagProgress,
		ProgressReport{Rank: 1, Attempts: 50000})
	require.NoError(t, err)

	var report ProgressReport
	ok, err := receiver.Mailbox().TryRecv(TagProgress, &report)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, report.Rank)
	assert.Equal(t, uint64(50000), report.Attempts)
}

// TestSendAsync verifies the fire-and-forget path eventually delivers
// without the caller waiting on it.
func TestSendAsync(t *testing.T) {
	sender := testEndpoint(t, 1)
	receiver := testEndpoint(t, 0)

	sender.SendAsync(receiver.Self(), TagProgress, ProgressReport{Rank: 1, Attempts: 7})

	var report ProgressReport
	require.Eventually(t, func() bool {
		ok, err := receiver.Mailbox().TryRecv(TagProgress, &report)
		return err == nil && ok
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, uint64(7), report.Attempts)
}

func TestEndpointHandlerValidation(t *testing.T) {
	ep := NewEndpoint(RankInfo{Rank: 0})
	ts := httptest.NewServer(ep.Routes())
	defer ts.Close()

	t.Run("health", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/health")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("GET on message endpoint rejected", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/msg/" + TagTerminate)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})

	t.Run("empty tag rejected", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/msg/", "application/json", strings.NewReader("{}"))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("nested tag rejected", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/msg/a/b", "application/json", strings.NewReader("{}"))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

// TestBroadcast verifies the point-to-point fan-out reaches every peer
// except the sender itself.
func TestBroadcast(t *testing.T) {
	finder := testEndpoint(t, 1)
	peers := []*Endpoint{testEndpoint(t, 0), finder, testEndpoint(t, 2)}

	roster := make([]RankInfo, len(peers))
	for i, p := range peers {
		roster[i] = p.Self()
	}

	notice := TerminateNotice{Finder: 1, Candidate: "cab", Index: 1353}
	require.NoError(t, finder.Broadcast(context.Background(), roster, TagTerminate, notice))

	for _, p := range peers {
		var got TerminateNotice
		ok, err := p.Mailbox().TryRecv(TagTerminate, &got)
		require.NoError(t, err)
		if p.Self().Rank == finder.Self().Rank {
			assert.False(t, ok, "the finder must not notify itself")
			continue
		}
		require.True(t, ok, "rank %d missed the notice", p.Self().Rank)
		assert.Equal(t, notice, got)
	}
}

// TestBroadcastPartialFailure verifies one dead peer does not stop the
// others from hearing the notice.
func TestBroadcastPartialFailure(t *testing.T) {
	finder := testEndpoint(t, 0)
	alive := testEndpoint(t, 2)
	roster := []RankInfo{
		finder.Self(),
		{Rank: 1, Addr: "http://127.0.0.1:1"}, // nothing listening
		alive.Self(),
	}

	err := finder.Broadcast(context.Background(), roster, TagTerminate, TerminateNotice{Finder: 0})
	assert.Error(t, err, "the unreachable peer must surface")

	var got TerminateNotice
	ok, recvErr := alive.Mailbox().TryRecv(TagTerminate, &got)
	require.NoError(t, recvErr)
	assert.True(t, ok, "the reachable peer must still be notified")
}
