package access

import (
	"context"
	"sync"

	id "nameledger/pkg/domain"
	"nameledger/pkg/platform/sentinel"
)

// InMemory is the canonical in-process role store.
type InMemory struct {
	mu      sync.RWMutex
	members map[Role]map[id.Address]struct{}
}

func NewInMemory() *InMemory {
	return &InMemory{members: make(map[Role]map[id.Address]struct{})}
}

func (s *InMemory) Grant(_ context.Context, role Role, addr id.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.members[role]
	if !ok {
		set = make(map[id.Address]struct{})
		s.members[role] = set
	}
	set[addr] = struct{}{}
	return nil
}

func (s *InMemory) Revoke(_ context.Context, role Role, addr id.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.members[role]
	if !ok {
		return sentinel.ErrNotFound
	}
	if _, ok := set[addr]; !ok {
		return sentinel.ErrNotFound
	}
	delete(set, addr)
	return nil
}

func (s *InMemory) Has(_ context.Context, role Role, addr id.Address) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.members[role][addr]
	return ok, nil
}

func (s *InMemory) Count(_ context.Context, role Role) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.members[role]), nil
}

func (s *InMemory) List(_ context.Context, role Role) ([]id.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]id.Address, 0, len(s.members[role]))
	for addr := range s.members[role] {
		out = append(out, addr)
	}
	return out, nil
}
