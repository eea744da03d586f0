package audience

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/meta-audience-relay/internal/metrics"
	"github.com/ignite/meta-audience-relay/internal/pkg/logger"
	"github.com/ignite/meta-audience-relay/internal/validation"
)

// DefaultDescription is attached to audiences when none is configured.
const DefaultDescription = "Customer list uploaded via API"

// CreateRequest asks for a new audience populated with Customers.
// AudienceID is accepted only so that requests targeting an existing
// audience can be rejected explicitly.
type CreateRequest struct {
	Name       string           `validate:"required"`
	Customers  []CustomerRecord `validate:"required"`
	AudienceID string
}

// BatchOutcome records what happened to one batch.
type BatchOutcome struct {
	GroupKey string
	BatchSeq int
	Rows     int
	Accepted int
	Err      error
}

// UploadResult aggregates all batch outcomes for one audience.
type UploadResult struct {
	AudienceID string
	Uploaded   int
	Success    bool
	Batches    []BatchOutcome
}

// FailedBatches returns how many batches the platform rejected.
func (r *UploadResult) FailedBatches() int {
	n := 0
	for _, b := range r.Batches {
		if b.Err != nil {
			n++
		}
	}
	return n
}

// Service creates and populates custom audiences. It holds no per-request
// state and is safe for concurrent use.
type Service struct {
	platform    Platform
	batchSize   int
	description string
	now         func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithBatchSize lowers the per-call row count. Values outside 1..BatchSize
// are ignored.
func WithBatchSize(n int) Option {
	return func(s *Service) {
		if n > 0 && n <= BatchSize {
			s.batchSize = n
		}
	}
}

// WithDescription sets the description stored on created audiences.
func WithDescription(d string) Option {
	return func(s *Service) {
		if d != "" {
			s.description = d
		}
	}
}

// WithClock replaces time.Now for session id seeding.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates an audience service backed by the given platform.
func NewService(platform Platform, opts ...Option) *Service {
	s := &Service{
		platform:    platform,
		batchSize:   BatchSize,
		description: DefaultDescription,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateAndPopulate validates the request, creates the audience, and uploads
// every batch. Input problems are reported before anything is created on the
// platform. Once the audience exists the call succeeds regardless of how
// many batches fail.
func (s *Service) CreateAndPopulate(ctx context.Context, req CreateRequest) (*UploadResult, error) {
	if err := validation.ValidateStruct(&req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingFields, err)
	}
	if req.AudienceID != "" {
		return nil, ErrUpdateUnsupported
	}

	groups := Group(req.Customers)
	if dropped := len(req.Customers) - RowCount(groups); dropped > 0 {
		metrics.AudienceRecordsDropped.Add(float64(dropped))
	}
	if len(groups) == 0 {
		return nil, ErrNoValidCustomers
	}

	runID := uuid.NewString()
	audienceID, err := s.platform.CreateCustomAudience(ctx, req.Name, s.description)
	if err != nil {
		metrics.AudiencesCreated.WithLabelValues("failure").Inc()
		logger.Error("custom audience creation failed", "run_id", runID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrCreateFailed, err)
	}
	metrics.AudiencesCreated.WithLabelValues("success").Inc()

	batches := SplitAll(groups, s.batchSize, NewSessionSequence(s.now()))
	logger.Info("custom audience created",
		"run_id", runID,
		"audience_id", audienceID,
		"groups", len(groups),
		"rows", RowCount(groups),
		"batches", len(batches),
	)

	result := s.upload(ctx, runID, audienceID, batches)
	return &result, nil
}

// Upload sends batches to the audience strictly in order. A batch error is
// logged and contributes nothing; later batches are still sent.
func (s *Service) Upload(ctx context.Context, audienceID string, batches []Batch) UploadResult {
	return s.upload(ctx, uuid.NewString(), audienceID, batches)
}

func (s *Service) upload(ctx context.Context, runID, audienceID string, batches []Batch) UploadResult {
	result := UploadResult{
		AudienceID: audienceID,
		Success:    true,
		Batches:    make([]BatchOutcome, 0, len(batches)),
	}

	for _, b := range batches {
		out := BatchOutcome{GroupKey: b.GroupKey, BatchSeq: b.Session.BatchSeq, Rows: len(b.Rows)}

		resp, err := s.platform.AddUsers(ctx, audienceID, b.Payload())
		if err != nil {
			out.Err = err
			metrics.AudienceBatches.WithLabelValues("failure").Inc()
			logger.Error("audience batch upload failed",
				"run_id", runID,
				"audience_id", audienceID,
				"group", b.GroupKey,
				"batch_seq", b.Session.BatchSeq,
				"rows", len(b.Rows),
				"error", err,
			)
		} else {
			if resp != nil {
				out.Accepted = resp.NumReceived
			}
			metrics.AudienceBatches.WithLabelValues("success").Inc()
			metrics.AudienceRecordsAccepted.Add(float64(out.Accepted))
			logger.Debug("audience batch uploaded",
				"run_id", runID,
				"group", b.GroupKey,
				"batch_seq", b.Session.BatchSeq,
				"accepted", out.Accepted,
			)
		}

		result.Uploaded += out.Accepted
		result.Batches = append(result.Batches, out)
	}

	logger.Info("custom audience upload finished",
		"run_id", runID,
		"audience_id", audienceID,
		"uploaded", result.Uploaded,
		"batches", len(batches),
		"failed_batches", result.FailedBatches(),
	)
	return result
}
