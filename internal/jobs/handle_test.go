package jobs

import (
	"context"
	"errors"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"

	"github.com/kubev2v/pcap-query/internal/filter"
	"github.com/kubev2v/pcap-query/internal/job"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeClient struct {
	rows      map[int64]*rivertype.JobRow
	inserted  []PcapArgs
	insertErr error
	cancelled []int64
}

func newFakeClient() *fakeClient {
	return &fakeClient{rows: map[int64]*rivertype.JobRow{}}
}

func (f *fakeClient) Insert(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (*rivertype.JobInsertResult, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.inserted = append(f.inserted, args.(PcapArgs))
	row := &rivertype.JobRow{ID: int64(len(f.inserted)), State: rivertype.JobStateAvailable, Queue: opts.Queue}
	f.rows[row.ID] = row
	return &rivertype.JobInsertResult{Job: row}, nil
}

func (f *fakeClient) JobGet(ctx context.Context, id int64) (*rivertype.JobRow, error) {
	row, found := f.rows[id]
	if !found {
		return nil, river.ErrNotFound
	}
	return row, nil
}

// JobCancel behaves like river: a running job is only flagged in its metadata and keeps
// running until its worker returns, a finalized job is left alone.
func (f *fakeClient) JobCancel(ctx context.Context, id int64) (*rivertype.JobRow, error) {
	row, found := f.rows[id]
	if !found {
		return nil, river.ErrNotFound
	}
	f.cancelled = append(f.cancelled, id)
	switch row.State {
	case rivertype.JobStateRunning:
		row.Metadata = []byte(`{"cancel_attempted_at": "2025-06-01T10:00:00Z"}`)
	case rivertype.JobStateCompleted, rivertype.JobStateDiscarded, rivertype.JobStateCancelled:
	default:
		row.State = rivertype.JobStateCancelled
	}
	return row, nil
}

var _ = Describe("PcapArgs", func() {
	It("returns the job kind", func() {
		Expect(PcapArgs{}.Kind()).To(Equal(JobKind))
	})

	It("returns default insert options", func() {
		opts := PcapArgs{}.InsertOpts()
		Expect(opts.Queue).To(Equal(DefaultQueue))
		Expect(opts.MaxAttempts).To(Equal(MaxJobRetries))
	})
})

var _ = Describe("river handle", func() {
	var (
		client  *fakeClient
		factory *Factory
		cfg     filter.JobConfig
	)

	BeforeEach(func() {
		client = newFakeClient()
		factory = NewFactory(client)
		proto := "6"
		cfg = filter.JobConfig{BasePath: "/base", NumReducers: 10, Predicate: filter.Build(filter.FixedRequest{Protocol: &proto})}
	})

	It("inserts the job with its owner and filter", func() {
		h, err := factory.Create(context.TODO(), "batman", cfg)
		Expect(err).To(BeNil())
		Expect(h.ID()).To(Equal("1"))
		Expect(h.Config()).To(Equal(cfg))

		Expect(client.inserted).To(HaveLen(1))
		Expect(client.inserted[0].Owner).To(Equal("batman"))
		Expect(client.inserted[0].Filter).To(Equal("protocol == '6'"))
		Expect(client.rows[1].Queue).To(Equal(DefaultQueue))
	})

	It("returns the insert error", func() {
		client.insertErr = errors.New("db down")
		_, err := factory.Create(context.TODO(), "batman", cfg)
		Expect(err).To(MatchError("db down"))
	})

	It("reports a queued job as running", func() {
		h, _ := factory.Create(context.TODO(), "batman", cfg)
		client.rows[1].Metadata = []byte(`{"percent_complete": 40, "description": "reducing"}`)

		st, err := h.Status(context.TODO())
		Expect(err).To(BeNil())
		Expect(st).To(Equal(job.Status{JobID: "1", State: job.StateRunning, Description: "reducing", PercentComplete: 40}))

		done, err := h.IsDone(context.TODO())
		Expect(err).To(BeNil())
		Expect(done).To(BeFalse())
	})

	It("maps river states", func() {
		Expect(toState(rivertype.JobStateAvailable)).To(Equal(job.StateRunning))
		Expect(toState(rivertype.JobStateScheduled)).To(Equal(job.StateRunning))
		Expect(toState(rivertype.JobStateRetryable)).To(Equal(job.StateRunning))
		Expect(toState(rivertype.JobStateRunning)).To(Equal(job.StateRunning))
		Expect(toState(rivertype.JobStateCompleted)).To(Equal(job.StateSucceeded))
		Expect(toState(rivertype.JobStateCancelled)).To(Equal(job.StateKilled))
		Expect(toState(rivertype.JobStateDiscarded)).To(Equal(job.StateFailed))
	})

	It("describes a discarded job with its last error", func() {
		row := &rivertype.JobRow{
			State:  rivertype.JobStateDiscarded,
			Errors: []rivertype.AttemptError{{Error: "first"}, {Error: "reducer failed"}},
		}
		st := rowToStatus("7", row, false)
		Expect(st.State).To(Equal(job.StateFailed))
		Expect(st.Description).To(Equal("reducer failed"))
	})

	It("returns the pages of a completed job", func() {
		h, _ := factory.Create(context.TODO(), "batman", cfg)
		client.rows[1].State = rivertype.JobStateCompleted
		client.rows[1].Metadata = []byte(`{"output": {"pages": ["out/page-1.pcap", "out/page-2.pcap"]}}`)

		st, err := h.Status(context.TODO())
		Expect(err).To(BeNil())
		Expect(st.PercentComplete).To(Equal(float64(100)))

		pages, err := h.Result(context.TODO())
		Expect(err).To(BeNil())
		Expect(pages.Size()).To(Equal(2))
		p, err := pages.Page(1)
		Expect(err).To(BeNil())
		Expect(p).To(Equal("out/page-2.pcap"))
	})

	It("has no result before completion", func() {
		h, _ := factory.Create(context.TODO(), "batman", cfg)
		_, err := h.Result(context.TODO())
		Expect(err).ToNot(BeNil())
	})

	It("fails on a completed job without output", func() {
		_, err := parseOutput(nil)
		Expect(err).To(MatchError(ErrNoOutput))
		_, err = parseOutput([]byte("{"))
		Expect(err).ToNot(BeNil())
	})

	It("cancels the river job", func() {
		h, _ := factory.Create(context.TODO(), "batman", cfg)
		Expect(h.Kill(context.TODO())).To(Succeed())
		Expect(client.cancelled).To(Equal([]int64{1}))

		st, err := h.Status(context.TODO())
		Expect(err).To(BeNil())
		Expect(st.State).To(Equal(job.StateKilled))
	})

	It("reports a killed running job as killed while its worker stops", func() {
		m := job.NewManager(factory)
		h, err := m.Submit(context.TODO(), "batman", cfg)
		Expect(err).To(BeNil())
		client.rows[1].State = rivertype.JobStateRunning

		Expect(m.Kill(context.TODO(), "batman", h.ID())).To(Succeed())
		Expect(client.rows[1].State).To(Equal(rivertype.JobStateRunning))

		st, err := m.Status(context.TODO(), "batman", h.ID())
		Expect(err).To(BeNil())
		Expect(st.State).To(Equal(job.StateKilled))

		done, err := h.IsDone(context.TODO())
		Expect(err).To(BeNil())
		Expect(done).To(BeTrue())

		// the worker ignored the cancellation and returned nil
		client.rows[1].State = rivertype.JobStateCompleted
		st, err = h.Status(context.TODO())
		Expect(err).To(BeNil())
		Expect(st.State).To(Equal(job.StateKilled))
	})

	It("reports a job cancelled through river as killed", func() {
		row := &rivertype.JobRow{
			State:    rivertype.JobStateRunning,
			Metadata: []byte(`{"percent_complete": 30, "cancel_attempted_at": "2025-06-01T10:00:00Z"}`),
		}
		st := rowToStatus("7", row, false)
		Expect(st.State).To(Equal(job.StateKilled))
		Expect(st.PercentComplete).To(Equal(float64(30)))
	})

	It("keeps the result of a job that completed before the kill", func() {
		h, _ := factory.Create(context.TODO(), "batman", cfg)
		client.rows[1].State = rivertype.JobStateCompleted

		Expect(h.Kill(context.TODO())).To(Succeed())

		st, err := h.Status(context.TODO())
		Expect(err).To(BeNil())
		Expect(st.State).To(Equal(job.StateSucceeded))
	})

	It("reports a deleted river job as not found", func() {
		h, _ := factory.Create(context.TODO(), "batman", cfg)
		delete(client.rows, 1)

		_, err := h.Status(context.TODO())
		Expect(errors.Is(err, job.ErrJobNotFound)).To(BeTrue())
		Expect(errors.Is(h.Kill(context.TODO()), job.ErrJobNotFound)).To(BeTrue())
	})
})
