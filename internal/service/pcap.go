package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"time"

	"github.com/goccy/go-json"
	api "github.com/kubev2v/pcap-query/api/v1alpha1"
	"github.com/kubev2v/pcap-query/internal/events"
	"github.com/kubev2v/pcap-query/internal/filter"
	"github.com/kubev2v/pcap-query/internal/job"
	"github.com/kubev2v/pcap-query/internal/pdml"
	"github.com/kubev2v/pcap-query/internal/storage"
	"github.com/kubev2v/pcap-query/pkg/metrics"
	"go.uber.org/zap"
)

type PcapServiceOption func(s *PcapService)

func WithEventWriter(w *events.EventProducer) PcapServiceOption {
	return func(s *PcapService) {
		s.eventWriter = w
	}
}

func WithClock(now func() time.Time) PcapServiceOption {
	return func(s *PcapService) {
		s.now = now
	}
}

type PcapService struct {
	manager     *job.Manager
	storage     storage.Storage
	converter   *pdml.Converter
	defaults    filter.Defaults
	eventWriter *events.EventProducer
	now         func() time.Time
}

func NewPcapService(manager *job.Manager, storage storage.Storage, converter *pdml.Converter, defaults filter.Defaults, opts ...PcapServiceOption) *PcapService {
	s := &PcapService{
		manager:   manager,
		storage:   storage,
		converter: converter,
		defaults:  defaults,
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Fixed submits a fixed filter query and returns the status of the new job right away.
func (s *PcapService) Fixed(ctx context.Context, owner string, req filter.FixedRequest) (*api.PcapStatus, error) {
	if req.StartTimeMs != nil && req.EndTimeMs != nil && *req.StartTimeMs > *req.EndTimeMs {
		return nil, NewErrValidation("startTimeMs must not be after endTimeMs")
	}

	cfg := filter.NewJobConfig(req, s.defaults, s.now())

	h, err := s.manager.Submit(ctx, owner, cfg)
	if err != nil {
		metrics.IncreaseJobsSubmittedMetric(metrics.ResultFailed)
		return nil, NewErrSubmission(err)
	}
	metrics.IncreaseJobsSubmittedMetric(metrics.ResultSuccess)
	metrics.UniqueOwnersPerWeek.Add(owner)

	// the job is registered and running, its id must reach the caller
	st, err := s.manager.Status(ctx, owner, h.ID())
	if err != nil {
		zap.S().Named("pcap_service").Warnw("failed to read status of submitted job", "owner", owner, "job_id", h.ID(), "error", err)
		st = job.Status{JobID: h.ID(), State: job.StateRunning}
	}

	s.pushEvent(ctx, events.JobSubmittedMessageKind, owner, st, cfg.Predicate.String())

	status := ToPcapStatus(st, nil)
	return &status, nil
}

// GetJobStatus returns nil when the owner has no job with this id.
func (s *PcapService) GetJobStatus(ctx context.Context, owner, jobID string) (*api.PcapStatus, error) {
	h, err := s.manager.Get(owner, jobID)
	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			return nil, nil
		}
		return nil, NewErrLookup(err)
	}

	st, err := s.manager.Status(ctx, owner, jobID)
	if err != nil {
		return nil, NewErrLookup(err)
	}

	status := ToPcapStatus(st, s.pageable(ctx, h, st))
	return &status, nil
}

// GetJobStatuses lists the jobs of an owner. A nil state returns every job.
func (s *PcapService) GetJobStatuses(ctx context.Context, owner string, state *job.State) ([]api.PcapStatus, error) {
	handles := s.manager.List(owner)

	statuses := make([]api.PcapStatus, 0, len(handles))
	for _, h := range handles {
		st, err := s.manager.Status(ctx, owner, h.ID())
		if err != nil {
			return nil, NewErrLookup(err)
		}
		if state != nil && st.State != *state {
			continue
		}
		statuses = append(statuses, ToPcapStatus(st, s.pageable(ctx, h, st)))
	}

	return statuses, nil
}

// KillJob cancels a job and returns its status afterwards, or nil when the job is unknown.
func (s *PcapService) KillJob(ctx context.Context, owner, jobID string) (*api.PcapStatus, error) {
	if err := s.manager.Kill(ctx, owner, jobID); err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			return nil, nil
		}
		metrics.IncreaseJobsKilledMetric(metrics.ResultFailed)
		return nil, NewErrLookup(err)
	}
	metrics.IncreaseJobsKilledMetric(metrics.ResultSuccess)

	st, err := s.manager.Status(ctx, owner, jobID)
	if err != nil {
		return nil, NewErrLookup(err)
	}

	s.pushEvent(ctx, events.JobKilledMessageKind, owner, st, "")

	status := ToPcapStatus(st, nil)
	return &status, nil
}

// GetPath resolves the storage locator of a 1-based result page.
// The second value is false when the job is unknown, not successful yet or the page is out of range.
func (s *PcapService) GetPath(ctx context.Context, owner, jobID string, page int) (string, bool, error) {
	h, err := s.manager.Get(owner, jobID)
	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			return "", false, nil
		}
		return "", false, NewErrLookup(err)
	}

	done, err := h.IsDone(ctx)
	if err != nil {
		return "", false, NewErrLookup(err)
	}
	if !done {
		return "", false, nil
	}

	st, err := s.manager.Status(ctx, owner, jobID)
	if err != nil {
		return "", false, NewErrLookup(err)
	}
	if st.State != job.StateSucceeded {
		return "", false, nil
	}

	pages, err := h.Result(ctx)
	if err != nil {
		return "", false, NewErrLookup(err)
	}
	if pages == nil || page < 1 || page > pages.Size() {
		return "", false, nil
	}

	loc, err := pages.Page(page - 1)
	if err != nil {
		return "", false, NewErrLookup(err)
	}
	return loc, true, nil
}

// GetPdml decodes one result page. It returns nil when the page does not exist.
func (s *PcapService) GetPdml(ctx context.Context, owner, jobID string, page int) (*api.Pdml, error) {
	logger := zap.S().Named("pcap_service")

	r, loc, err := s.open(ctx, owner, jobID, page)
	if err != nil || r == nil {
		return nil, err
	}
	defer r.Close()

	start := time.Now()
	root, err := s.converter.Convert(ctx, path.Base(loc), r)
	if err != nil {
		metrics.ObservePdmlConversion(metrics.ResultFailed, time.Since(start))
		logger.Errorw("failed to convert page", "owner", owner, "job_id", jobID, "page", page, "error", err)
		return nil, mapPdmlError(err)
	}

	doc, err := pdml.NewDocument(root)
	if err != nil {
		metrics.ObservePdmlConversion(metrics.ResultFailed, time.Since(start))
		return nil, mapPdmlError(err)
	}
	metrics.ObservePdmlConversion(metrics.ResultSuccess, time.Since(start))

	logger.Debugw("page converted", "owner", owner, "job_id", jobID, "page", page, "packets", len(doc.Packets))
	return doc, nil
}

// GetRaw opens the raw pcap bytes of one result page. The caller closes the reader.
func (s *PcapService) GetRaw(ctx context.Context, owner, jobID string, page int) (io.ReadCloser, error) {
	r, _, err := s.open(ctx, owner, jobID, page)
	return r, err
}

// GetConfiguration returns the defaulted query a job was submitted with, or nil when the job is unknown.
func (s *PcapService) GetConfiguration(ctx context.Context, owner, jobID string) (*api.PcapConfiguration, error) {
	h, err := s.manager.Get(owner, jobID)
	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			return nil, nil
		}
		return nil, NewErrLookup(err)
	}

	cfg := h.Config()
	return &api.PcapConfiguration{
		BasePath:              cfg.BasePath,
		BaseInterimResultPath: cfg.BaseInterimResultPath,
		FinalOutputPath:       cfg.FinalOutputPath,
		StartTimeMs:           cfg.StartTimeNs / int64(time.Millisecond),
		EndTimeMs:             cfg.EndTimeNs / int64(time.Millisecond),
		NumReducers:           cfg.NumReducers,
		RecordsPerFile:        cfg.RecordsPerFile,
		Fields:                cfg.Predicate.Map(),
	}, nil
}

func (s *PcapService) open(ctx context.Context, owner, jobID string, page int) (io.ReadCloser, string, error) {
	loc, found, err := s.GetPath(ctx, owner, jobID, page)
	if err != nil || !found {
		return nil, "", err
	}

	exists, err := s.storage.Exists(ctx, loc)
	if err != nil {
		return nil, "", NewErrExecution(err)
	}
	if !exists {
		return nil, "", nil
	}

	r, err := s.storage.Open(ctx, loc)
	if err != nil {
		return nil, "", NewErrExecution(err)
	}
	return r, loc, nil
}

// pageable returns the result set of a terminal job, or nil when it is not available.
func (s *PcapService) pageable(ctx context.Context, h job.Handle, st job.Status) job.Pageable {
	if st.State != job.StateSucceeded {
		return nil
	}
	p, err := h.Result(ctx)
	if err != nil {
		zap.S().Named("pcap_service").Debugw("result not available", "job_id", h.ID(), "error", err)
		return nil
	}
	return p
}

func (s *PcapService) pushEvent(ctx context.Context, kind, owner string, st job.Status, predicate string) {
	if s.eventWriter == nil {
		return
	}

	data, err := json.Marshal(events.JobEvent{
		Owner:       owner,
		JobID:       st.JobID,
		State:       st.State.String(),
		Description: st.Description,
		Filter:      predicate,
	})
	if err != nil {
		return
	}

	if err := s.eventWriter.Write(ctx, kind, bytes.NewBuffer(data)); err != nil {
		zap.S().Named("pcap_service").Errorw("failed to write event", "error", err, "event_kind", kind)
	}
}

// ToPcapStatus maps a job status onto its public form. The page total is only set
// for a terminal job whose result set is available.
func ToPcapStatus(st job.Status, p job.Pageable) api.PcapStatus {
	status := api.PcapStatus{
		JobId:           st.JobID,
		JobStatus:       api.JobStatus(st.State.String()),
		Description:     st.Description,
		PercentComplete: st.PercentComplete,
	}
	if st.State.IsTerminal() && p != nil {
		total := p.Size()
		status.PageTotal = &total
	}
	return status
}

func mapPdmlError(err error) error {
	var parseErr *pdml.ParseError
	if errors.As(err, &parseErr) {
		return NewErrParse(err)
	}
	return NewErrExecution(err)
}
