package jobs

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/goccy/go-json"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"go.uber.org/zap"

	"github.com/kubev2v/pcap-query/internal/filter"
	"github.com/kubev2v/pcap-query/internal/job"
)

var ErrNoOutput = errors.New("job has no output")

// Factory submits pcap jobs to river.
type Factory struct {
	client riverClient
}

func NewFactory(client riverClient) *Factory {
	return &Factory{client: client}
}

func (f *Factory) Create(ctx context.Context, owner string, cfg filter.JobConfig) (job.Handle, error) {
	args := PcapArgs{Owner: owner, Config: cfg, Filter: cfg.Predicate.String()}
	opts := args.InsertOpts()

	result, err := f.client.Insert(ctx, args, &opts)
	if err != nil {
		return nil, err
	}

	zap.S().Named("river_factory").Debugw("pcap job inserted", "owner", owner, "river_job_id", result.Job.ID)
	return &Handle{client: f.client, id: result.Job.ID, cfg: cfg}, nil
}

// Handle follows one river job. Every call reads the job row again.
// A running river job is only marked for cancellation and keeps running until its
// worker returns, so a killed job is reported KILLED from the kill on.
type Handle struct {
	client riverClient
	id     int64
	cfg    filter.JobConfig
	killed atomic.Bool
}

func (h *Handle) ID() string {
	return strconv.FormatInt(h.id, 10)
}

func (h *Handle) Config() filter.JobConfig {
	return h.cfg
}

func (h *Handle) IsDone(ctx context.Context) (bool, error) {
	row, err := h.get(ctx)
	if err != nil {
		return false, err
	}
	return rowToStatus(h.ID(), row, h.killed.Load()).State.IsTerminal(), nil
}

func (h *Handle) Status(ctx context.Context) (job.Status, error) {
	row, err := h.get(ctx)
	if err != nil {
		return job.Status{}, err
	}
	return rowToStatus(h.ID(), row, h.killed.Load()), nil
}

func (h *Handle) Result(ctx context.Context) (job.Pageable, error) {
	row, err := h.get(ctx)
	if err != nil {
		return nil, err
	}
	if row.State != rivertype.JobStateCompleted {
		return nil, fmt.Errorf("job %d is %s", h.id, row.State)
	}
	return parseOutput(row.Output())
}

func (h *Handle) Kill(ctx context.Context) error {
	row, err := h.client.JobCancel(ctx, h.id)
	if err != nil {
		if errors.Is(err, river.ErrNotFound) {
			return fmt.Errorf("%w: river job %d", job.ErrJobNotFound, h.id)
		}
		return err
	}
	// river leaves a job that finished before the cancel untouched
	if row.State != rivertype.JobStateCompleted && row.State != rivertype.JobStateDiscarded {
		h.killed.Store(true)
	}
	return nil
}

func (h *Handle) get(ctx context.Context) (*rivertype.JobRow, error) {
	row, err := h.client.JobGet(ctx, h.id)
	if err != nil {
		if errors.Is(err, river.ErrNotFound) {
			return nil, fmt.Errorf("%w: river job %d", job.ErrJobNotFound, h.id)
		}
		return nil, err
	}
	return row, nil
}

func toState(s rivertype.JobState) job.State {
	switch s {
	case rivertype.JobStateCompleted:
		return job.StateSucceeded
	case rivertype.JobStateCancelled:
		return job.StateKilled
	case rivertype.JobStateDiscarded:
		return job.StateFailed
	default:
		return job.StateRunning
	}
}

// rowToStatus maps a job row. Once a cancellation was requested, by this handle or by
// anyone else through river, the job is KILLED even if its worker completes afterwards.
func rowToStatus(id string, row *rivertype.JobRow, killed bool) job.Status {
	st := job.Status{
		JobID:       id,
		State:       toState(row.State),
		Description: string(row.State),
	}

	if len(row.Metadata) > 0 {
		var meta PcapMetadata
		if err := json.Unmarshal(row.Metadata, &meta); err == nil {
			st.PercentComplete = meta.PercentComplete
			if meta.Description != "" {
				st.Description = meta.Description
			}
			killed = killed || meta.CancelAttemptedAt != ""
		}
	}

	if killed {
		st.State = job.StateKilled
		st.Description = "cancelled"
	}

	switch st.State {
	case job.StateSucceeded:
		st.PercentComplete = 100
	case job.StateFailed:
		if len(row.Errors) > 0 {
			st.Description = row.Errors[len(row.Errors)-1].Error
		}
	}

	return st
}

func parseOutput(output []byte) (job.Pageable, error) {
	if len(output) == 0 {
		return nil, ErrNoOutput
	}

	var out PcapOutput
	if err := json.Unmarshal(output, &out); err != nil {
		return nil, fmt.Errorf("failed to read job output: %w", err)
	}
	return job.Pages(out.Pages), nil
}
