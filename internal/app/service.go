// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	eventqueue "github.com/verdello/traintrack/internal/adapters/mq/queue"
	workerpool "github.com/verdello/traintrack/internal/adapters/mq/worker"
	repository "github.com/verdello/traintrack/internal/adapters/repository"
	"github.com/verdello/traintrack/internal/domain/compliance"
	"github.com/verdello/traintrack/internal/domain/dedupe"
	"github.com/verdello/traintrack/internal/domain/model"
	"github.com/verdello/traintrack/internal/domain/recycling"
	"github.com/verdello/traintrack/pkg/logger"
	"github.com/verdello/traintrack/pkg/metrics"
)

// Service implements the API dependencies for the training compliance system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store        repository.Store
	competencies repository.CompetencyStore
	deduper      dedupe.Deduper
	eventQueue   eventqueue.Queue
	evaluator    compliance.Evaluator
	workerPool   *workerpool.Pool

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int
	shardCount  int
	policy      compliance.Policy
	invalidMode compliance.InvalidEventMode

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of intake worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the event queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithShardCount sets the number of store shards.
func WithShardCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// WithPolicy sets the compliance policy evaluated for every user.
func WithPolicy(p compliance.Policy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// WithInvalidEventMode sets how the evaluator treats malformed stored events.
func WithInvalidEventMode(mode compliance.InvalidEventMode) Option {
	return func(s *Service) {
		s.invalidMode = mode
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: 0, // Pool falls back to CPU-scaled default
		queueSize:   100000,
		dedupeSize:  50000,
		shardCount:  8,
		policy:      compliance.DefaultPolicy(),
		invalidMode: compliance.SkipInvalid,
		stopCh:      make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	if err := s.policy.Validate(); err != nil {
		return err
	}

	s.logger.Info(ctx, "starting compliance service...")

	s.store = repository.NewMemStore(ctx,
		repository.WithShardCount(s.shardCount),
	)
	s.competencies = repository.NewInMemoryCompetencies()
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.eventQueue = eventqueue.NewInMemoryQueue(
		eventqueue.WithCapacity(s.queueSize),
		eventqueue.WithBufferSize(s.queueSize),
	)
	s.evaluator = compliance.NewWindowEvaluator(
		compliance.WithInvalidEventMode(s.invalidMode),
		compliance.WithLogger(s.logger),
	)

	s.workerPool = workerpool.NewPool(s.workerCount, s.eventQueue, s.store)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "compliance service started",
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("shards", s.shardCount),
		logger.Int("windowYears", s.policy.WindowYears),
		logger.Float64("requiredHours", s.policy.RequiredHours),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping compliance service...")

	if s.workerPool != nil {
		s.workerPool.Stop()
	}

	if q, ok := s.eventQueue.(*eventqueue.InMemoryQueue); ok {
		_ = q.Close()
	}

	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(context.Background(), "compliance service stopped")
}

// SeenAndRecord atomically checks if an event id was seen and records it if
// not. Returns true if the event was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordEventDuplicate()
	}
	return seen
}

// Unrecord removes an event id from the seen list, allowing it to be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

// Enqueue submits a training event for asynchronous intake.
func (s *Service) Enqueue(ctx context.Context, e model.TrainingEvent) bool {
	s.logger.Debug(ctx, "enqueueing event",
		logger.String("eventID", e.EventID),
		logger.String("userID", e.UserID),
		logger.Float64("hours", e.Hours),
	)
	ok := s.eventQueue.Enqueue(ctx, e)
	if ok {
		metrics.UpdateQueueSize(s.eventQueue.Len(ctx))
	}
	return ok
}

// Summary evaluates the compliance of a user's training log. A zero asOf
// evaluates as of now. Users with no recorded events get an empty-log
// evaluation rather than an error.
func (s *Service) Summary(ctx context.Context, userID string, asOf time.Time) (compliance.Summary, error) {
	events, err := s.store.ListByUser(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		metrics.RecordEvaluationError()
		return compliance.Summary{}, err
	}

	start := time.Now()
	summary, err := s.evaluator.Evaluate(ctx, events, s.policy, asOf)
	if err != nil {
		metrics.RecordEvaluationError()
		return compliance.Summary{}, err
	}
	metrics.RecordEvaluation()
	metrics.RecordEvaluationLatency(float64(time.Since(start).Milliseconds()))
	return summary, nil
}

// YearlySummary returns per-calendar-year training hours over the rolling
// window for a user.
func (s *Service) YearlySummary(ctx context.Context, userID string, asOf time.Time) ([]compliance.YearHours, error) {
	events, err := s.store.ListByUser(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	return s.evaluator.YearlyHours(ctx, events, s.policy, asOf)
}

// ListEvents returns the stored training log for a user, oldest first.
func (s *Service) ListEvents(ctx context.Context, userID string) ([]model.TrainingEvent, error) {
	return s.store.ListByUser(ctx, userID)
}

// DeleteEvent removes a single event from a user's training log.
func (s *Service) DeleteEvent(ctx context.Context, userID, eventID string) error {
	if err := s.store.Delete(ctx, userID, eventID); err != nil {
		return err
	}
	// Allow the same event id to be resubmitted after a correction.
	s.deduper.Unrecord(ctx, eventID)
	return nil
}

// PutCompetency stores or replaces a competency for a user and skill.
func (s *Service) PutCompetency(ctx context.Context, c recycling.Competency) error {
	return s.competencies.Put(ctx, c)
}

// ListCompetencies returns the stored competencies for a user.
func (s *Service) ListCompetencies(ctx context.Context, userID string) ([]recycling.Competency, error) {
	return s.competencies.ListByUser(ctx, userID)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":    s.started,
		"queueSize":  s.queueSize,
		"dedupeSize": s.dedupeSize,
		"shards":     s.shardCount,
	}

	if s.started {
		queueLen := s.eventQueue.Len(ctx)
		users := s.store.CountUsers(ctx)
		events := s.store.CountEvents(ctx)

		stats["queueLength"] = queueLen
		stats["usersTracked"] = users
		stats["eventsStored"] = events

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateUsersTracked(users)
		metrics.UpdateEventsStored(events)
	}

	return stats
}
