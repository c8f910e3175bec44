package jobs

import (
	"github.com/riverqueue/river"

	"github.com/kubev2v/pcap-query/internal/filter"
)

const JobKind = "pcap_fixed_query"

// PcapArgs is stored in river_job.args as JSON.
type PcapArgs struct {
	Owner  string           `json:"owner"`
	Config filter.JobConfig `json:"config"`
	Filter string           `json:"filter"`
}

func (PcapArgs) Kind() string {
	return JobKind
}

func (PcapArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       DefaultQueue,
		MaxAttempts: MaxJobRetries,
	}
}

// PcapOutput is recorded by the query engine when a job completes.
type PcapOutput struct {
	Pages []string `json:"pages"`
}

// PcapMetadata is updated by the query engine while a job runs.
// CancelAttemptedAt is written by river when a running job is cancelled.
type PcapMetadata struct {
	PercentComplete   float64 `json:"percent_complete"`
	Description       string  `json:"description,omitempty"`
	CancelAttemptedAt string  `json:"cancel_attempted_at,omitempty"`
}
