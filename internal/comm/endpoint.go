package comm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxMessageBytes bounds an inbound message body. Coordination messages are
// tiny; anything larger is malformed.
const maxMessageBytes = 1 << 20

// asyncSendTimeout bounds a fire-and-forget send's lifetime. The goroutine
// is leaked until it completes or times out, which is acceptable for a
// short-lived run.
const asyncSendTimeout = 5 * time.Second

// Endpoint is one rank's attachment to the messaging fabric: an HTTP
// server that files inbound tagged messages into a Mailbox, plus the
// client side for point-to-point sends. There is no shared memory between
// ranks; this is the only way state crosses process boundaries.
type Endpoint struct {
	self RankInfo
	mbox *Mailbox
	srv  *http.Server
}

// NewEndpoint creates the endpoint for self with a default-depth mailbox.
func NewEndpoint(self RankInfo) *Endpoint {
	return &Endpoint{
		self: self,
		mbox: NewMailbox(0),
	}
}

// Self returns this rank's identity.
func (e *Endpoint) Self() RankInfo { return e.self }

// Mailbox returns the inbound message queues.
func (e *Endpoint) Mailbox() *Mailbox { return e.mbox }

// Routes returns a mux with the fabric endpoints installed:
//
//	POST /msg/{tag}  - file a tagged message into the mailbox
//	GET  /health     - liveness probe
//
// Callers add their own handlers (e.g. the coordinator's /register) to the
// same mux before starting the server.
func (e *Endpoint) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/msg/", e.handleMessage)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

// handleMessage files the body under the tag taken from the URL path.
func (e *Endpoint) handleMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	tag := strings.TrimPrefix(r.URL.Path, "/msg/")
	if tag == "" || strings.Contains(tag, "/") {
		http.Error(w, "bad tag", http.StatusBadRequest)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxMessageBytes))
	if err != nil {
		http.Error(w, "bad body", http.StatusBadRequest)
		return
	}
	if !e.mbox.Put(tag, body) {
		// Queue full: the sender may retry; best-effort senders won't.
		http.Error(w, "queue full", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Serve runs the fabric server on listen until Shutdown. It returns
// http.ErrServerClosed after a clean shutdown, like http.Server does.
func (e *Endpoint) Serve(listen string, mux *http.ServeMux) error {
	e.srv = &http.Server{
		Addr:              listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return e.srv.ListenAndServe()
}

// Shutdown gracefully stops the fabric server.
func (e *Endpoint) Shutdown(ctx context.Context) error {
	if e.srv == nil {
		return nil
	}
	return e.srv.Shutdown(ctx)
}

// Send delivers msg to peer under tag and waits for the HTTP exchange to
// complete. Used where delivery must be reliable (termination, results).
func (e *Endpoint) Send(ctx context.Context, peer RankInfo, tag string, msg any) error {
	return PostJSON(ctx, peer.Addr+"/msg/"+tag, msg, nil)
}

// SendAsync delivers msg to peer under tag without waiting and without
// reporting errors. This is the fire-and-forget progress channel: a lost
// report only makes the next snapshot stale.
func (e *Endpoint) SendAsync(peer RankInfo, tag string, msg any) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), asyncSendTimeout)
		defer cancel()
		_ = PostJSON(ctx, peer.Addr+"/msg/"+tag, msg, nil)
	}()
}

// Broadcast sends msg to every peer except self, point-to-point. It keeps
// going after individual failures so one unreachable peer cannot stop the
// others from hearing a termination notice, and returns the failures
// joined.
func (e *Endpoint) Broadcast(ctx context.Context, peers []RankInfo, tag string, msg any) error {
	var errs []error
	for _, p := range peers {
		if p.Rank == e.self.Rank {
			continue
		}
		if err := e.Send(ctx, p, tag, msg); err != nil {
			errs = append(errs, fmt.Errorf("rank %d: %w", p.Rank, err))
		}
	}
	return errors.Join(errs...)
}
