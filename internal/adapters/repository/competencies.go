package repository

import (
	"context"
	"sync"

	"github.com/verdello/traintrack/internal/domain/recycling"
)

// InMemoryCompetencies implements CompetencyStore with a mutex-guarded map.
// The competency set is tiny compared to the event log, so no sharding.
type InMemoryCompetencies struct {
	mu   sync.RWMutex
	byID map[string][]recycling.Competency // userID -> competencies
}

// NewInMemoryCompetencies creates an empty competency store.
func NewInMemoryCompetencies() *InMemoryCompetencies {
	return &InMemoryCompetencies{
		byID: make(map[string][]recycling.Competency),
	}
}

// Put inserts or replaces the competency for (user, skill).
func (s *InMemoryCompetencies) Put(ctx context.Context, c recycling.Competency) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.byID[c.UserID]
	for i := range list {
		if list[i].SkillID == c.SkillID {
			list[i] = c
			return nil
		}
	}
	s.byID[c.UserID] = append(list, c)
	return nil
}

// ListByUser returns a copy of the user's competencies.
func (s *InMemoryCompetencies) ListByUser(ctx context.Context, userID string) ([]recycling.Competency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list, ok := s.byID[userID]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]recycling.Competency, len(list))
	copy(out, list)
	return out, nil
}
