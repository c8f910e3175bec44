package job

import (
	"context"
	"fmt"

	"github.com/kubev2v/pcap-query/internal/filter"
)

type State string

const (
	StateRunning   State = "RUNNING"
	StateSucceeded State = "SUCCEEDED"
	StateFailed    State = "FAILED"
	StateKilled    State = "KILLED"
)

// IsTerminal reports whether no further transition can happen from s.
func (s State) IsTerminal() bool {
	switch s {
	case StateSucceeded, StateFailed, StateKilled:
		return true
	default:
		return false
	}
}

func (s State) String() string {
	return string(s)
}

type Status struct {
	JobID           string
	State           State
	Description     string
	PercentComplete float64
}

// Key identifies a job inside the namespace of its owner.
type Key struct {
	Owner string
	JobID string
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s", k.Owner, k.JobID)
}

// Pageable is the result set of a successful job.
type Pageable interface {
	// Size is the number of pages.
	Size() int
	// Page returns the storage locator of the i-th page, 0 <= i < Size().
	Page(i int) (string, error)
}

// Pages is a Pageable over a fixed list of locators.
type Pages []string

func (p Pages) Size() int {
	return len(p)
}

func (p Pages) Page(i int) (string, error) {
	if i < 0 || i >= len(p) {
		return "", NewErrPageOutOfRange(i, len(p))
	}
	return p[i], nil
}

// Handle is a job created by the execution backend.
// Implementations must be safe for concurrent use.
type Handle interface {
	ID() string
	Config() filter.JobConfig
	IsDone(ctx context.Context) (bool, error)
	Status(ctx context.Context) (Status, error)
	// Result is only valid once the job succeeded.
	Result(ctx context.Context) (Pageable, error)
	Kill(ctx context.Context) error
}

// Factory creates and starts jobs on the execution backend.
type Factory interface {
	Create(ctx context.Context, owner string, cfg filter.JobConfig) (Handle, error)
}

type FactoryFunc func(ctx context.Context, owner string, cfg filter.JobConfig) (Handle, error)

func (f FactoryFunc) Create(ctx context.Context, owner string, cfg filter.JobConfig) (Handle, error) {
	return f(ctx, owner, cfg)
}
