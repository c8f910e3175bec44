package jobs

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivertype"
)

const (
	DefaultQueue  = "pcap"
	MaxJobRetries = 1
)

// riverClient is the part of the river client used by pcap jobs.
type riverClient interface {
	Insert(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (*rivertype.JobInsertResult, error)
	JobGet(ctx context.Context, id int64) (*rivertype.JobRow, error)
	JobCancel(ctx context.Context, id int64) (*rivertype.JobRow, error)
}

type Client struct {
	*river.Client[pgx.Tx]
}

// NewClient creates an insert only client. Pcap jobs are worked by the query engine
// which reports progress in the job metadata and the result pages in the job output.
func NewClient(ctx context.Context, pool *pgxpool.Pool) (*Client, error) {
	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{})
	if err != nil {
		return nil, err
	}

	return &Client{Client: riverClient}, nil
}
