package job

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/kubev2v/pcap-query/internal/filter"
	"go.uber.org/zap"
)

type entry struct {
	// lock serializes every operation on one key.
	lock   sync.Mutex
	handle Handle
	// terminal is the first terminal status observed for the job.
	terminal *Status
	// observed is the last state read from the backend, readable without lock.
	observed atomic.Value
}

// Manager owns the namespace of jobs keyed by owner and job id.
// The map lock is only held for lookups and inserts so unrelated keys never wait on a backend call.
type Manager struct {
	lock    sync.RWMutex
	jobs    map[Key]*entry
	factory Factory
}

func NewManager(factory Factory) *Manager {
	return &Manager{
		jobs:    make(map[Key]*entry),
		factory: factory,
	}
}

// Submit creates the job on the backend and registers it. It does not wait for the job to finish.
func (m *Manager) Submit(ctx context.Context, owner string, cfg filter.JobConfig) (Handle, error) {
	h, err := m.factory.Create(ctx, owner, cfg)
	if err != nil {
		return nil, err
	}

	key := Key{Owner: owner, JobID: h.ID()}
	logger := zap.S().Named("job_manager")

	m.lock.Lock()
	_, found := m.jobs[key]
	if !found {
		m.jobs[key] = &entry{handle: h}
	}
	m.lock.Unlock()

	if found {
		// nobody can reach the new job, stop it on the backend
		if err := h.Kill(ctx); err != nil {
			logger.Errorw("failed to kill duplicate job", "owner", owner, "job_id", key.JobID, "error", err)
		}
		return nil, fmt.Errorf("%w: %s", ErrDuplicateJob, key)
	}

	logger.Infow("job submitted", "owner", owner, "job_id", key.JobID)
	return h, nil
}

func (m *Manager) Get(owner, jobID string) (Handle, error) {
	e, err := m.lookup(owner, jobID)
	if err != nil {
		return nil, err
	}
	return e.handle, nil
}

// List returns the jobs of one owner ordered by job id.
func (m *Manager) List(owner string) []Handle {
	m.lock.RLock()
	keys := make([]Key, 0)
	for k := range m.jobs {
		if k.Owner == owner {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].JobID < keys[j].JobID })

	handles := make([]Handle, 0, len(keys))
	for _, k := range keys {
		handles = append(handles, m.jobs[k].handle)
	}
	m.lock.RUnlock()

	return handles
}

// Status reads the live status of a job. Once a terminal status has been seen it is returned
// for every later read.
func (m *Manager) Status(ctx context.Context, owner, jobID string) (Status, error) {
	e, err := m.lookup(owner, jobID)
	if err != nil {
		return Status{}, err
	}

	e.lock.Lock()
	defer e.lock.Unlock()

	return e.status(ctx)
}

// Kill cancels a running job on the backend before returning.
// Killing a job that already reached a terminal state does nothing.
func (m *Manager) Kill(ctx context.Context, owner, jobID string) error {
	e, err := m.lookup(owner, jobID)
	if err != nil {
		return err
	}

	e.lock.Lock()
	defer e.lock.Unlock()

	if e.terminal != nil {
		return nil
	}

	done, err := e.handle.IsDone(ctx)
	if err != nil {
		return err
	}
	if done {
		return nil
	}

	if err := e.handle.Kill(ctx); err != nil {
		return err
	}

	zap.S().Named("job_manager").Infow("job killed", "owner", owner, "job_id", jobID)
	return nil
}

func (m *Manager) lookup(owner, jobID string) (*entry, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	e, found := m.jobs[Key{Owner: owner, JobID: jobID}]
	if !found {
		return nil, ErrJobNotFound
	}
	return e, nil
}

func (e *entry) status(ctx context.Context) (Status, error) {
	if e.terminal != nil {
		return *e.terminal, nil
	}

	s, err := e.handle.Status(ctx)
	if err != nil {
		return Status{}, err
	}

	if s.State.IsTerminal() {
		e.terminal = &s
	}
	e.observed.Store(s.State)
	return s, nil
}

// Stats counts the tracked jobs by their last observed state. It never calls the backend:
// a job whose status was never read counts as RUNNING.
type Stats struct {
	Total   int
	Owners  int
	ByState map[State]int
}

func (m *Manager) Stats() Stats {
	m.lock.RLock()
	defer m.lock.RUnlock()

	stats := Stats{Total: len(m.jobs), ByState: make(map[State]int)}
	owners := make(map[string]struct{})
	for k, e := range m.jobs {
		owners[k.Owner] = struct{}{}
		state := StateRunning
		if s, ok := e.observed.Load().(State); ok {
			state = s
		}
		stats.ByState[state]++
	}
	stats.Owners = len(owners)

	return stats
}
