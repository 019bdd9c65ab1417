package core

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/workerdesk/internal/logging"
	"github.com/JonMunkholm/workerdesk/internal/metrics"
)

// Defaults applied to zero-valued Options fields.
const (
	DefaultBatchSize           = 1000
	DefaultImportTimeout       = 10 * time.Minute
	DefaultMaxRejectedReported = 1000
	DefaultStagingDir          = "uploads"
)

// Options tunes the import pipeline. Zero values select the defaults.
type Options struct {
	StagingDir          string
	MaxConcurrent       int
	MaxWait             time.Duration
	BatchSize           int
	Timeout             time.Duration
	MaxRejectedReported int
}

func (o Options) withDefaults() Options {
	if o.StagingDir == "" {
		o.StagingDir = DefaultStagingDir
	}
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultImportTimeout
	}
	if o.MaxRejectedReported <= 0 {
		o.MaxRejectedReported = DefaultMaxRejectedReported
	}
	return o
}

// Service provides worker CRUD and CSV import on top of a WorkerStore.
type Service struct {
	store   WorkerStore
	staging *Staging
	limiter *UploadLimiter
	opts    Options
}

// NewService creates a Service. It creates the staging directory if needed.
func NewService(store WorkerStore, opts Options) (*Service, error) {
	opts = opts.withDefaults()

	staging, err := NewStaging(opts.StagingDir)
	if err != nil {
		return nil, err
	}

	return &Service{
		store:   store,
		staging: staging,
		limiter: NewUploadLimiter(opts.MaxConcurrent, opts.MaxWait),
		opts:    opts,
	}, nil
}

// ListWorkers returns every worker ordered by id.
func (s *Service) ListWorkers(ctx context.Context) ([]Worker, error) {
	workers, err := s.store.ListWorkers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list workers: %w", err)
	}
	return workers, nil
}

// AddWorker stores a new worker and returns its id. Dates that don't parse
// are stored as NULL.
func (s *Service) AddWorker(ctx context.Context, in WorkerInput) (int64, error) {
	id, err := s.store.CreateWorker(ctx, in.Fields())
	metrics.ObserveMutation("add", err)
	if err != nil {
		return 0, fmt.Errorf("add worker: %w", err)
	}

	logging.FromContext(ctx).Info("worker added", "id", id, "employee_id", in.EmployeeID)
	return id, nil
}

// EditWorker replaces every field of worker id with in. Fields absent from
// in are cleared. Returns ErrWorkerNotFound if no such worker exists.
func (s *Service) EditWorker(ctx context.Context, id int64, in WorkerInput) error {
	n, err := s.store.UpdateWorker(ctx, id, in.Fields())
	if err == nil && n == 0 {
		err = ErrWorkerNotFound
	}
	metrics.ObserveMutation("edit", err)
	if err != nil {
		return fmt.Errorf("edit worker %d: %w", id, err)
	}

	logging.FromContext(ctx).Info("worker updated", "id", id)
	return nil
}

// DeleteWorker removes worker id. Returns ErrWorkerNotFound if no such
// worker exists.
func (s *Service) DeleteWorker(ctx context.Context, id int64) error {
	n, err := s.store.DeleteWorker(ctx, id)
	if err == nil && n == 0 {
		err = ErrWorkerNotFound
	}
	metrics.ObserveMutation("delete", err)
	if err != nil {
		return fmt.Errorf("delete worker %d: %w", id, err)
	}

	logging.FromContext(ctx).Info("worker deleted", "id", id)
	return nil
}

// Ping checks that storage is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// ImportStatus reports how many import slots are in use.
func (s *Service) ImportStatus() UploadLimiterStatus {
	return s.limiter.Status()
}

// WaitForImports blocks until in-flight imports finish or ctx ends.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
