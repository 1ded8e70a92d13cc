package comm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// RankInfo identifies one participant in a distributed run.
type RankInfo struct {
	Rank int    `json:"rank"`
	Addr string `json:"addr"`
}

// RegisterRequest is sent by a worker rank to the coordinator at startup.
type RegisterRequest struct {
	Rank RankInfo `json:"rank"`
}

// Job is the collective broadcast that starts the search phase. Every rank
// receives an identical copy before any searching begins; Ranks holds the
// full world roster indexed by rank, so any finder can notify every peer.
type Job struct {
	Algorithm     string     `json:"algorithm"`
	Target        string     `json:"target"` // hex-encoded digest tag
	Length        int        `json:"length"`
	Alphabet      string     `json:"alphabet"`
	CheckInterval uint64     `json:"check_interval"`
	Ranks         []RankInfo `json:"ranks"`
}

// ProgressReport carries one rank's cumulative local attempt count to the
// aggregator. Delivery is best-effort.
type ProgressReport struct {
	Rank     int    `json:"rank"`
	Attempts uint64 `json:"attempts"`
}

// TerminateNotice tells a rank that the search is over because Finder
// recovered the candidate.
type TerminateNotice struct {
	Finder    int    `json:"finder"`
	Candidate string `json:"candidate"`
	Index     uint64 `json:"index"`
}

// ResultReport is each rank's final accounting, sent to the coordinator
// once its local loop has ended.
type ResultReport struct {
	Rank      int    `json:"rank"`
	Attempts  uint64 `json:"attempts"`
	Found     bool   `json:"found"`
	Candidate string `json:"candidate,omitempty"`
	Index     uint64 `json:"index,omitempty"`
}

var httpClient = &http.Client{Timeout: 5 * time.Second}

// PostJSON posts body as JSON to url and, when out is non-nil, decodes the
// response into it. Status codes >= 300 are errors.
func PostJSON(ctx context.Context, url string, body any, out any) error {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("http %s: %d", url, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// GetJSON fetches url and decodes the JSON response into out.
func GetJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("http %s: %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
