package comm

import (
	"context"
	"encoding/json"
	"sync"
)

// Message tags. Each tag is an independent logical channel: delivery order
// holds per sender/receiver/tag, and a message is consumed exactly once.
const (
	// TagJob carries the job broadcast from the coordinator.
	TagJob = "job"
	// TagProgress carries best-effort attempt counts to the aggregator.
	TagProgress = "progress"
	// TagTerminate carries the stop notice from the finder to every peer.
	TagTerminate = "terminate"
	// TagResult carries final per-rank accounting to the coordinator.
	TagResult = "result"
)

// DefaultQueueDepth bounds each tag's queue. Progress messages past the
// bound are dropped (the channel is explicitly best-effort); with the
// default depth, termination and result queues can never fill for any
// realistic world size.
const DefaultQueueDepth = 1024

// Mailbox buffers incoming tagged messages for one rank. Receives are
// polled: TryRecv never blocks, which is what lets the search loop probe
// for termination between hashes without suspending.
type Mailbox struct {
	mu     sync.Mutex
	queues map[string]chan json.RawMessage
	depth  int
}

// NewMailbox creates a mailbox whose per-tag queues hold depth messages;
// depth <= 0 selects DefaultQueueDepth.
func NewMailbox(depth int) *Mailbox {
	if depth <= 0 {
		depth = DefaultQueueDepth
	}
	return &Mailbox{
		queues: make(map[string]chan json.RawMessage),
		depth:  depth,
	}
}

func (m *Mailbox) queue(tag string) chan json.RawMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.queues[tag]
	if !ok {
		q = make(chan json.RawMessage, m.depth)
		m.queues[tag] = q
	}
	return q
}

// Put enqueues a raw message under tag without blocking. It returns false
// when the queue is full and the message was dropped.
func (m *Mailbox) Put(tag string, msg json.RawMessage) bool {
	select {
	case m.queue(tag) <- msg:
		return true
	default:
		return false
	}
}

// TryRecv pops the oldest message under tag into out, if one is pending.
// It never blocks; ok=false means the queue was empty at this instant.
func (m *Mailbox) TryRecv(tag string, out any) (ok bool, err error) {
	select {
	case msg := <-m.queue(tag):
		return true, json.Unmarshal(msg, out)
	default:
		return false, nil
	}
}

// Recv blocks until a message arrives under tag or ctx is canceled.
func (m *Mailbox) Recv(ctx context.Context, tag string, out any) error {
	select {
	case msg := <-m.queue(tag):
		return json.Unmarshal(msg, out)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending returns the number of undelivered messages under tag.
func (m *Mailbox) Pending(tag string) int {
	return len(m.queue(tag))
}
