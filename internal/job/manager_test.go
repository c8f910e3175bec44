package job_test

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kubev2v/pcap-query/internal/filter"
	"github.com/kubev2v/pcap-query/internal/job"
	"github.com/kubev2v/pcap-query/internal/job/jobtest"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("job manager", func() {
	var (
		ctx     context.Context
		factory *jobtest.MockFactory
		manager *job.Manager
	)

	BeforeEach(func() {
		ctx = context.TODO()
		factory = jobtest.NewMockFactory()
		manager = job.NewManager(factory)
	})

	Context("Submit", func() {
		It("registers the job under the owner", func() {
			factory.Push(jobtest.NewMockJob("jobId"))
			cfg := filter.JobConfig{BasePath: "/base", NumReducers: 3}

			h, err := manager.Submit(ctx, "user", cfg)
			Expect(err).To(BeNil())
			Expect(h.ID()).To(Equal("jobId"))
			Expect(h.Config()).To(Equal(cfg))

			got, err := manager.Get("user", "jobId")
			Expect(err).To(BeNil())
			Expect(got).To(BeIdenticalTo(h))

			_, err = manager.Get("other-user", "jobId")
			Expect(errors.Is(err, job.ErrJobNotFound)).To(BeTrue())
		})

		It("does not wait for the job to finish", func() {
			factory.Push(jobtest.NewMockJob("jobId"))

			_, err := manager.Submit(ctx, "user", filter.JobConfig{})
			Expect(err).To(BeNil())

			s, err := manager.Status(ctx, "user", "jobId")
			Expect(err).To(BeNil())
			Expect(s.State).To(Equal(job.StateRunning))
		})

		It("returns the backend error", func() {
			factory.WithError(errors.New("some job exception"))

			_, err := manager.Submit(ctx, "user", filter.JobConfig{})
			Expect(err).To(MatchError("some job exception"))
			Expect(manager.List("user")).To(BeEmpty())
		})

		It("refuses a duplicate job id and stops the new job", func() {
			first, second := jobtest.NewMockJob("jobId"), jobtest.NewMockJob("jobId")
			factory.Push(first, second)

			_, err := manager.Submit(ctx, "user", filter.JobConfig{})
			Expect(err).To(BeNil())
			_, err = manager.Submit(ctx, "user", filter.JobConfig{})
			Expect(errors.Is(err, job.ErrDuplicateJob)).To(BeTrue())

			Expect(second.KillCalls()).To(Equal(1))
			Expect(first.KillCalls()).To(Equal(0))

			st, err := manager.Status(ctx, "user", "jobId")
			Expect(err).To(BeNil())
			Expect(st.State).To(Equal(job.StateRunning))
		})

		It("keeps the same job id apart for different owners", func() {
			factory.Push(jobtest.NewMockJob("jobId"), jobtest.NewMockJob("jobId"))

			_, err := manager.Submit(ctx, "user1", filter.JobConfig{})
			Expect(err).To(BeNil())
			_, err = manager.Submit(ctx, "user2", filter.JobConfig{})
			Expect(err).To(BeNil())

			Expect(manager.List("user1")).To(HaveLen(1))
			Expect(manager.List("user2")).To(HaveLen(1))
		})
	})

	Context("List", func() {
		It("returns the jobs of the owner ordered by id", func() {
			factory.Push(jobtest.NewMockJob("b"), jobtest.NewMockJob("a"), jobtest.NewMockJob("c"))
			for _, owner := range []string{"user", "user", "other"} {
				_, err := manager.Submit(ctx, owner, filter.JobConfig{})
				Expect(err).To(BeNil())
			}

			handles := manager.List("user")
			Expect(handles).To(HaveLen(2))
			Expect(handles[0].ID()).To(Equal("a"))
			Expect(handles[1].ID()).To(Equal("b"))
			Expect(manager.List("nobody")).To(BeEmpty())
		})
	})

	Context("Status", func() {
		It("returns not found for an unknown key", func() {
			_, err := manager.Status(ctx, "user", "jobId")
			Expect(errors.Is(err, job.ErrJobNotFound)).To(BeTrue())
		})

		It("returns the backend error", func() {
			factory.Push(jobtest.NewMockJob("jobId").WithStatusError(errors.New("backend down")))
			_, err := manager.Submit(ctx, "user", filter.JobConfig{})
			Expect(err).To(BeNil())

			_, err = manager.Status(ctx, "user", "jobId")
			Expect(err).To(MatchError("backend down"))
			Expect(errors.Is(err, job.ErrJobNotFound)).To(BeFalse())
		})

		It("never leaves a terminal state", func() {
			mj := jobtest.NewMockJob("jobId")
			factory.Push(mj)
			_, err := manager.Submit(ctx, "user", filter.JobConfig{})
			Expect(err).To(BeNil())

			mj.SetStatus(job.Status{State: job.StateFailed, Description: "boom"})
			s, err := manager.Status(ctx, "user", "jobId")
			Expect(err).To(BeNil())
			Expect(s.State).To(Equal(job.StateFailed))

			mj.SetStatus(job.Status{State: job.StateRunning})
			s, err = manager.Status(ctx, "user", "jobId")
			Expect(err).To(BeNil())
			Expect(s.State).To(Equal(job.StateFailed))
			Expect(s.Description).To(Equal("boom"))
		})
	})

	Context("Kill", func() {
		It("returns not found for an unknown key", func() {
			err := manager.Kill(ctx, "user", "jobId")
			Expect(errors.Is(err, job.ErrJobNotFound)).To(BeTrue())
		})

		It("kills a running job once", func() {
			mj := jobtest.NewMockJob("jobId")
			factory.Push(mj)
			_, err := manager.Submit(ctx, "user", filter.JobConfig{})
			Expect(err).To(BeNil())

			Expect(manager.Kill(ctx, "user", "jobId")).To(Succeed())
			Expect(mj.KillCalls()).To(Equal(1))

			s, err := manager.Status(ctx, "user", "jobId")
			Expect(err).To(BeNil())
			Expect(s.State).To(Equal(job.StateKilled))

			Expect(manager.Kill(ctx, "user", "jobId")).To(Succeed())
			Expect(mj.KillCalls()).To(Equal(1))
		})

		It("does nothing on a finished job", func() {
			mj := jobtest.NewMockJob("jobId").Succeed(job.Pages{"/page/0"})
			factory.Push(mj)
			_, err := manager.Submit(ctx, "user", filter.JobConfig{})
			Expect(err).To(BeNil())

			Expect(manager.Kill(ctx, "user", "jobId")).To(Succeed())
			Expect(mj.KillCalls()).To(BeZero())

			s, err := manager.Status(ctx, "user", "jobId")
			Expect(err).To(BeNil())
			Expect(s.State).To(Equal(job.StateSucceeded))
		})

		It("returns the backend error", func() {
			factory.Push(jobtest.NewMockJob("jobId").WithKillError(errors.New("cannot kill")))
			_, err := manager.Submit(ctx, "user", filter.JobConfig{})
			Expect(err).To(BeNil())

			Expect(manager.Kill(ctx, "user", "jobId")).To(MatchError("cannot kill"))
		})
	})

	Context("Stats", func() {
		It("counts jobs by last observed state", func() {
			done := jobtest.NewMockJob("job_2")
			factory.Push(jobtest.NewMockJob("job_1"), done, jobtest.NewMockJob("job_3"))
			for _, owner := range []string{"user", "user", "other"} {
				_, err := manager.Submit(ctx, owner, filter.JobConfig{})
				Expect(err).To(BeNil())
			}
			done.Succeed(job.Pages{})

			stats := manager.Stats()
			Expect(stats.Total).To(Equal(3))
			Expect(stats.Owners).To(Equal(2))
			Expect(stats.ByState).To(Equal(map[job.State]int{job.StateRunning: 3}))

			_, err := manager.Status(ctx, "user", "job_2")
			Expect(err).To(BeNil())
			Expect(manager.Stats().ByState).To(Equal(map[job.State]int{job.StateRunning: 2, job.StateSucceeded: 1}))
		})
	})

	Context("concurrency", func() {
		It("handles concurrent submits, reads and kills", func() {
			const n = 50
			for i := 0; i < n; i++ {
				factory.Push(jobtest.NewMockJob(fmt.Sprintf("job-%02d", i)))
			}

			var wg sync.WaitGroup
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func(i int) {
					defer GinkgoRecover()
					defer wg.Done()
					owner := fmt.Sprintf("user-%d", i%5)
					h, err := manager.Submit(ctx, owner, filter.JobConfig{})
					Expect(err).To(BeNil())
					Expect(manager.Kill(ctx, owner, h.ID())).To(Succeed())
					s, err := manager.Status(ctx, owner, h.ID())
					Expect(err).To(BeNil())
					Expect(s.State).To(Equal(job.StateKilled))
				}(i)
			}
			wg.Wait()

			total := 0
			for i := 0; i < 5; i++ {
				total += len(manager.List(fmt.Sprintf("user-%d", i)))
			}
			Expect(total).To(Equal(n))
			for _, mj := range factory.Created() {
				Expect(mj.KillCalls()).To(Equal(1))
			}
		})
	})
})

var _ = Describe("pages", func() {
	It("addresses pages by index", func() {
		p := job.Pages{"/a", "/b"}
		Expect(p.Size()).To(Equal(2))

		page, err := p.Page(1)
		Expect(err).To(BeNil())
		Expect(page).To(Equal("/b"))

		_, err = p.Page(2)
		Expect(err).NotTo(BeNil())
		_, err = p.Page(-1)
		Expect(err).NotTo(BeNil())
	})

	It("reports terminal states", func() {
		Expect(job.StateRunning.IsTerminal()).To(BeFalse())
		Expect(job.StateSucceeded.IsTerminal()).To(BeTrue())
		Expect(job.StateFailed.IsTerminal()).To(BeTrue())
		Expect(job.StateKilled.IsTerminal()).To(BeTrue())
	})
})
