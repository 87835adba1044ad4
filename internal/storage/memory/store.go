package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tjfontaine/react-app-plugin/internal/core/domain"
	"github.com/tjfontaine/react-app-plugin/internal/storage"
)

// Store is an in-memory implementation of HistoryStore
type Store struct {
	mu          sync.RWMutex
	invocations map[string]*domain.Invocation
}

var _ storage.HistoryStore = (*Store)(nil)

// New creates a new in-memory store
func New() *Store {
	return &Store{
		invocations: make(map[string]*domain.Invocation),
	}
}

func (s *Store) RecordInvocation(ctx context.Context, inv *domain.Invocation) error {
	if inv.ID == "" {
		return fmt.Errorf("invocation id cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.invocations[inv.ID]; exists {
		return fmt.Errorf("invocation %s already exists", inv.ID)
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now()
	}

	stored := *inv
	stored.Tasks = append([]domain.Task(nil), inv.Tasks...)
	s.invocations[inv.ID] = &stored
	return nil
}

func (s *Store) GetInvocation(ctx context.Context, id string) (*domain.Invocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, exists := s.invocations[id]
	if !exists {
		return nil, fmt.Errorf("invocation %s: %w", id, storage.ErrNotFound)
	}

	out := *inv
	out.Tasks = append([]domain.Task(nil), inv.Tasks...)
	return &out, nil
}

func (s *Store) ListInvocations(ctx context.Context, opts storage.ListOptions) ([]*domain.InvocationSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.InvocationSummary
	for _, inv := range s.invocations {
		if opts.Command != "" && inv.Command != opts.Command {
			continue
		}
		if opts.RootDir != "" && inv.RootDir != opts.RootDir {
			continue
		}
		result = append(result, &domain.InvocationSummary{
			ID:        inv.ID,
			Command:   inv.Command,
			RootDir:   inv.RootDir,
			Status:    inv.Status,
			Tasks:     len(inv.Tasks),
			Duration:  inv.Duration,
			CreatedAt: inv.CreatedAt,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	limit := opts.Limit
	if limit == 0 {
		limit = storage.DefaultListLimit
	}
	if opts.Offset >= len(result) {
		return nil, nil
	}
	result = result[opts.Offset:]
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) Close() error {
	return nil
}
