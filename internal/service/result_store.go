package service

import (
	"sync"

	"match-coach/internal/domain"
)

// ResultStore retiene los ActionResult ejecutados para poder adjuntar feedback.
type ResultStore interface {
	Save(result domain.ActionResult)
	Get(resultID string) (domain.ActionResult, bool)
	Attach(resultID string, feedback domain.ResultFeedback) (domain.ActionResult, error)
}

type memoryResultStore struct {
	mu    sync.Mutex
	items map[string]domain.ActionResult
}

func NewMemoryResultStore() ResultStore {
	return &memoryResultStore{items: make(map[string]domain.ActionResult)}
}

func (s *memoryResultStore) Save(result domain.ActionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[result.ID] = result
}

func (s *memoryResultStore) Get(resultID string) (domain.ActionResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.items[resultID]
	return r, ok
}

// Attach fija el feedback una unica vez sobre un resultado existente.
func (s *memoryResultStore) Attach(resultID string, feedback domain.ResultFeedback) (domain.ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.items[resultID]
	if !ok {
		return domain.ActionResult{}, domain.ErrResultNotFound
	}
	if r.Feedback != nil {
		return domain.ActionResult{}, domain.ErrFeedbackRecorded
	}
	r.Feedback = &feedback
	s.items[resultID] = r
	return r, nil
}
