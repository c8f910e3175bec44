// Package jobtest provides an in-memory execution backend for tests.
package jobtest

import (
	"context"
	"errors"
	"sync"

	"github.com/kubev2v/pcap-query/internal/filter"
	"github.com/kubev2v/pcap-query/internal/job"
)

// MockJob is a job handle whose state is driven by the test.
type MockJob struct {
	lock      sync.Mutex
	id        string
	owner     string
	cfg       filter.JobConfig
	status    job.Status
	pages     job.Pageable
	statusErr error
	resultErr error
	killErr   error
	killCalls int
}

func NewMockJob(id string) *MockJob {
	return &MockJob{
		id:     id,
		status: job.Status{JobID: id, State: job.StateRunning},
	}
}

func (j *MockJob) ID() string {
	return j.id
}

func (j *MockJob) Owner() string {
	j.lock.Lock()
	defer j.lock.Unlock()
	return j.owner
}

func (j *MockJob) Config() filter.JobConfig {
	j.lock.Lock()
	defer j.lock.Unlock()
	return j.cfg
}

func (j *MockJob) IsDone(ctx context.Context) (bool, error) {
	j.lock.Lock()
	defer j.lock.Unlock()
	if j.statusErr != nil {
		return false, j.statusErr
	}
	return j.status.State.IsTerminal(), nil
}

func (j *MockJob) Status(ctx context.Context) (job.Status, error) {
	j.lock.Lock()
	defer j.lock.Unlock()
	if j.statusErr != nil {
		return job.Status{}, j.statusErr
	}
	return j.status, nil
}

func (j *MockJob) Result(ctx context.Context) (job.Pageable, error) {
	j.lock.Lock()
	defer j.lock.Unlock()
	if j.resultErr != nil {
		return nil, j.resultErr
	}
	if j.status.State != job.StateSucceeded {
		return nil, errors.New("job has not succeeded")
	}
	return j.pages, nil
}

func (j *MockJob) Kill(ctx context.Context) error {
	j.lock.Lock()
	defer j.lock.Unlock()
	j.killCalls++
	if j.killErr != nil {
		return j.killErr
	}
	j.status.State = job.StateKilled
	return nil
}

// SetStatus replaces the status reported by the job. The job id is kept.
func (j *MockJob) SetStatus(s job.Status) *MockJob {
	j.lock.Lock()
	defer j.lock.Unlock()
	s.JobID = j.id
	j.status = s
	return j
}

// Succeed moves the job to SUCCEEDED with the given pages.
func (j *MockJob) Succeed(pages job.Pageable) *MockJob {
	j.lock.Lock()
	defer j.lock.Unlock()
	j.status.State = job.StateSucceeded
	j.status.PercentComplete = 100
	j.pages = pages
	return j
}

func (j *MockJob) WithStatusError(err error) *MockJob {
	j.lock.Lock()
	defer j.lock.Unlock()
	j.statusErr = err
	return j
}

func (j *MockJob) WithResultError(err error) *MockJob {
	j.lock.Lock()
	defer j.lock.Unlock()
	j.resultErr = err
	return j
}

func (j *MockJob) WithKillError(err error) *MockJob {
	j.lock.Lock()
	defer j.lock.Unlock()
	j.killErr = err
	return j
}

func (j *MockJob) KillCalls() int {
	j.lock.Lock()
	defer j.lock.Unlock()
	return j.killCalls
}

// MockFactory hands out prepared jobs in order and records what was submitted.
type MockFactory struct {
	lock    sync.Mutex
	pending []*MockJob
	created []*MockJob
	err     error
}

func NewMockFactory(jobs ...*MockJob) *MockFactory {
	return &MockFactory{pending: jobs}
}

func (f *MockFactory) WithError(err error) *MockFactory {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.err = err
	return f
}

func (f *MockFactory) Push(jobs ...*MockJob) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.pending = append(f.pending, jobs...)
}

func (f *MockFactory) Create(ctx context.Context, owner string, cfg filter.JobConfig) (job.Handle, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	if len(f.pending) == 0 {
		return nil, errors.New("no mock job available")
	}

	j := f.pending[0]
	f.pending = f.pending[1:]

	j.lock.Lock()
	j.owner = owner
	j.cfg = cfg
	j.lock.Unlock()

	f.created = append(f.created, j)
	return j, nil
}

// Created returns the jobs handed out so far.
func (f *MockFactory) Created() []*MockJob {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]*MockJob(nil), f.created...)
}
