package storage

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-memory storage backend (for testing)
type MemoryStore struct {
	*memLedger
	projects map[string]*Project
	mu       sync.RWMutex
	now      func() time.Time
}

// NewMemoryStore creates a memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		memLedger: newMemLedger(),
		projects:  make(map[string]*Project),
		now:       time.Now,
	}
}

func (s *MemoryStore) Save(ctx context.Context, p *Project) error {
	if err := prepare(p, s.now()); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.projects[p.Name]; ok {
		p.ID = existing.ID
	}
	s.projects[p.Name] = clone(p)
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, name string) (*Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[strings.TrimSpace(name)]
	if !ok {
		return nil, notFound(name)
	}
	return clone(p), nil
}

func (s *MemoryStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	if _, ok := s.projects[name]; !ok {
		return notFound(name)
	}
	delete(s.projects, name)
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Summary, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, summarize(p))
	}
	sortSummaries(out)
	return out, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
