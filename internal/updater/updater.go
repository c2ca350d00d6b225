package updater

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/overpass-harvester/internal/domain"
	"github.com/samvad-hq/overpass-harvester/internal/logger"
	"github.com/samvad-hq/overpass-harvester/internal/metrics"
	"github.com/samvad-hq/overpass-harvester/pkg/jobs"
	"github.com/samvad-hq/overpass-harvester/pkg/publishers"
)

// Job outcomes reported to metrics.
const (
	OutcomeUpdated = "updated"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// Service refreshes query jobs one at a time against a shared Overpass instance.
type Service struct {
	overpass  Overpass
	endpoint  Endpoint
	workdir   string
	publisher EventPublisher
	store     JobStore
	log       logger.Logger
	sleep     Sleeper
	now       func() time.Time
}

// NewService wires the driver. publisher and store may be nil.
func NewService(op Overpass, endpoint Endpoint, workdir string, publisher EventPublisher, log logger.Logger, store JobStore) *Service {
	if log == nil {
		log = &logger.NopLogger{}
	}
	return &Service{
		overpass:  op,
		endpoint:  endpoint,
		workdir:   workdir,
		publisher: publisher,
		store:     store,
		log:       log,
		sleep:     sleepContext,
		now:       time.Now,
	}
}

// Run executes one refresh pass over the given jobs.
func (s *Service) Run(ctx context.Context, list []jobs.Job) error {
	if s == nil || s.overpass == nil || s.endpoint == nil {
		return fmt.Errorf("updater service is not initialized")
	}

	if len(list) == 0 {
		return fmt.Errorf("no jobs configured")
	}

	errs := s.runAll(ctx, list)
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

func (s *Service) runAll(ctx context.Context, list []jobs.Job) []error {
	errs := make([]error, 0, len(list))

	for _, job := range list {
		if ctx.Err() != nil {
			break
		}
		outcome, err := s.RunJob(ctx, job)
		metrics.ObserveJob(job.ID, outcome)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			errs = append(errs, err)
			s.log.ErrorObj("job update failed", "job_error", map[string]any{
				"job_id": job.ID,
				"error":  err.Error(),
			})
		}
	}

	return errs
}

// RunJob refreshes a single job unless its previous result is still fresh.
// A failed query aborts the job without touching its output.
func (s *Service) RunJob(ctx context.Context, job jobs.Job) (string, error) {
	if s.store != nil {
		fresh, err := s.store.Fresh(job.ID)
		if err != nil {
			s.log.WarnObj("job freshness lookup failed", "job_store_error", map[string]any{
				"job_id": job.ID,
				"error":  err.Error(),
			})
		} else if fresh {
			s.log.DebugObj("job still fresh, skipping", "job_id", job.ID)
			return OutcomeSkipped, nil
		}
	}

	query, err := job.ReadQuery()
	if err != nil {
		return OutcomeFailed, err
	}

	if err := s.WaitForSlot(ctx); err != nil {
		return OutcomeFailed, fmt.Errorf("wait for overpass slot: %w", err)
	}

	result, err := s.overpass.Query(ctx, s.endpoint.OverpassURI(), query)
	metrics.ObserveQuery(err)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("overpass query failed for job %s: %w", job.ID, err)
	}

	path, err := writeResult(s.workdir, job.Output, result)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("write result for job %s: %w", job.ID, err)
	}

	ds := domain.Dataset{
		JobID:      job.ID,
		JobName:    job.Name,
		OutputPath: path,
		Bytes:      len(result),
		UpdatedAt:  s.now().UTC(),
	}
	metrics.ObserveBytes(job.ID, ds.Bytes)
	s.log.InfoObj("job updated", "job_result", map[string]any{
		"job_id":      ds.JobID,
		"output_path": ds.OutputPath,
		"bytes":       ds.Bytes,
	})

	if s.store != nil {
		if err := s.store.MarkUpdated(job.ID, job.RefreshInterval()); err != nil {
			s.log.WarnObj("job freshness update failed", "job_store_error", map[string]any{
				"job_id": job.ID,
				"error":  err.Error(),
			})
		}
	}

	s.publish(ctx, ds)
	return OutcomeUpdated, nil
}

func (s *Service) publish(ctx context.Context, ds domain.Dataset) {
	if s.publisher == nil {
		return
	}
	delivered, err := s.publisher.Publish(ctx, publishers.NewEvent(ds))
	if err != nil {
		s.log.WarnObj("dataset event publish failed", "publish_error", map[string]any{
			"job_id":    ds.JobID,
			"delivered": delivered,
			"error":     err.Error(),
		})
	}
}

// WaitForSlot probes the status endpoint and sleeps for the announced wait,
// repeating until the service reports no wait.
func (s *Service) WaitForSlot(ctx context.Context) error {
	base := s.endpoint.OverpassURI()
	for {
		wait := s.overpass.NeedSleep(ctx, base)
		metrics.ObserveStatus(wait)
		if wait <= 0 {
			return nil
		}
		s.log.InfoObj("waiting for overpass slot", "wait_seconds", wait)
		if err := s.sleep(ctx, time.Duration(wait)*time.Second); err != nil {
			return err
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
