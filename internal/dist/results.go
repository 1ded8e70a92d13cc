package dist

import (
	"context"
	"fmt"

	"github.com/dreamware/keygrind/internal/comm"
)

// ReportResult sends a worker rank's final accounting to the coordinator.
// This send is blocking: the coordinator's final report waits on it.
func ReportResult(ctx context.Context, ep *comm.Endpoint, coordinator comm.RankInfo, res RunResult) error {
	report := comm.ResultReport{
		Rank:     ep.Self().Rank,
		Attempts: res.Attempts,
		Found:    res.Local,
	}
	if res.Local && res.Find != nil {
		report.Candidate = res.Find.Candidate
		report.Index = res.Find.Index
	}
	return ep.Send(ctx, coordinator, comm.TagResult, report)
}

// CollectResults blocks until one result report per worker rank has
// arrived at the coordinator's mailbox, returning them keyed by rank.
func CollectResults(ctx context.Context, ep *comm.Endpoint, workers int) (map[int]comm.ResultReport, error) {
	out := make(map[int]comm.ResultReport, workers)
	for len(out) < workers {
		var report comm.ResultReport
		if err := ep.Mailbox().Recv(ctx, comm.TagResult, &report); err != nil {
			return out, fmt.Errorf("dist: collected %d of %d results: %w", len(out), workers, err)
		}
		out[report.Rank] = report
	}
	return out, nil
}
