package repository

import (
	"context"
	"hash/fnv"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/verdello/traintrack/internal/domain/model"
	"github.com/verdello/traintrack/pkg/metrics"
)

// Default store configuration constants.
const (
	defaultShardCount = 8
)

// MemStore is a sharded, in-memory Store implementation. Users are hashed
// over the shards so concurrent appends for different users rarely contend;
// each user's events are kept ordered by event date.
type MemStore struct {
	shards     []*shard
	shardCount int
	eventCount atomic.Int64
}

type shard struct {
	mu     sync.RWMutex
	events map[string][]model.TrainingEvent // userID -> date-ordered events
}

// NewMemStore creates a sharded in-memory event log.
func NewMemStore(ctx context.Context, opts ...Option) *MemStore {
	s := &MemStore{
		shardCount: defaultShardCount,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.shards = make([]*shard, s.shardCount)
	for i := range s.shards {
		s.shards[i] = &shard{events: make(map[string][]model.TrainingEvent)}
	}

	metrics.UpdateRepositoryShardCount(s.shardCount)

	return s
}

func (s *MemStore) shardFor(userID string) (*shard, int) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	idx := int(h.Sum32()) % s.shardCount
	if idx < 0 {
		idx = -idx
	}
	return s.shards[idx], idx
}

// Append adds an event to its user's log.
func (s *MemStore) Append(ctx context.Context, e model.TrainingEvent) error {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryAppendLatency(float64(time.Since(start).Milliseconds()))
	}()

	if e.EventID == "" {
		return ErrBadEventID
	}
	if err := e.Validate(); err != nil {
		return err
	}

	sh, idx := s.shardFor(e.UserID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	log := sh.events[e.UserID]
	for i := range log {
		if log[i].EventID == e.EventID {
			return ErrDuplicate
		}
	}

	// Insert keeping date order; ties keep ingestion order.
	pos := sort.Search(len(log), func(i int) bool { return log[i].Date.After(e.Date) })
	log = append(log, model.TrainingEvent{})
	copy(log[pos+1:], log[pos:])
	log[pos] = e
	sh.events[e.UserID] = log

	total := s.eventCount.Add(1)
	metrics.UpdateEventsStored(int(total))
	metrics.UpdateRepositoryEventsPerShard(strconv.Itoa(idx), shardEventCount(sh))

	return nil
}

// ListByUser returns a copy of the user's events, ordered by date ascending.
func (s *MemStore) ListByUser(ctx context.Context, userID string) ([]model.TrainingEvent, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	sh, _ := s.shardFor(userID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	log, ok := sh.events[userID]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]model.TrainingEvent, len(log))
	copy(out, log)
	return out, nil
}

// Delete removes one event from a user's log.
func (s *MemStore) Delete(ctx context.Context, userID, eventID string) error {
	sh, idx := s.shardFor(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	log, ok := sh.events[userID]
	if !ok {
		return ErrNotFound
	}
	for i := range log {
		if log[i].EventID == eventID {
			sh.events[userID] = append(log[:i], log[i+1:]...)
			if len(sh.events[userID]) == 0 {
				delete(sh.events, userID)
			}
			total := s.eventCount.Add(-1)
			metrics.UpdateEventsStored(int(total))
			metrics.UpdateRepositoryEventsPerShard(strconv.Itoa(idx), shardEventCount(sh))
			metrics.RecordEventDeleted()
			return nil
		}
	}
	return ErrNotFound
}

// CountUsers returns the number of users with at least one event.
func (s *MemStore) CountUsers(ctx context.Context) int {
	count := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		count += len(sh.events)
		sh.mu.RUnlock()
	}
	return count
}

// CountEvents returns the total number of stored events.
func (s *MemStore) CountEvents(ctx context.Context) int {
	return int(s.eventCount.Load())
}

// shardEventCount sums a shard's events. Must be called with the shard locked.
func shardEventCount(sh *shard) int {
	count := 0
	for _, log := range sh.events {
		count += len(log)
	}
	return count
}
