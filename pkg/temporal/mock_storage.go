package temporal

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryResultStore implements ResultStore in process memory
type MemoryResultStore struct {
	mu      sync.RWMutex
	results map[string]*AppearanceResult // lessonID -> result
}

// NewMemoryResultStore creates a new in-memory result store
func NewMemoryResultStore() *MemoryResultStore {
	return &MemoryResultStore{
		results: make(map[string]*AppearanceResult),
	}
}

// SaveResult stores a copy of the result, replacing any previous one for the lesson
func (m *MemoryResultStore) SaveResult(ctx context.Context, result *AppearanceResult) error {
	if result.LessonID == "" {
		return fmt.Errorf("result has no lesson id")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *result
	m.results[result.LessonID] = &stored
	return nil
}

// GetResult returns the stored result for a lesson
func (m *MemoryResultStore) GetResult(ctx context.Context, lessonID string) (*AppearanceResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result, exists := m.results[lessonID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrResultNotFound, lessonID)
	}
	stored := *result
	return &stored, nil
}

// ListResults returns all stored results ordered by lesson id
func (m *MemoryResultStore) ListResults(ctx context.Context) ([]*AppearanceResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]*AppearanceResult, 0, len(m.results))
	for _, result := range m.results {
		stored := *result
		results = append(results, &stored)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].LessonID < results[j].LessonID
	})
	return results, nil
}
