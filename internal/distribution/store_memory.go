package distribution

import (
	"context"
	"sync"

	id "nameledger/pkg/domain"
	"nameledger/pkg/platform/sentinel"
)

// InMemoryConfigs is the canonical in-process distribution config store.
type InMemoryConfigs struct {
	mu      sync.RWMutex
	configs map[id.DomainID]Config
}

func NewInMemoryConfigs() *InMemoryConfigs {
	return &InMemoryConfigs{configs: make(map[id.DomainID]Config)}
}

func (s *InMemoryConfigs) Put(_ context.Context, domainID id.DomainID, cfg Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs[domainID] = cfg
	return nil
}

func (s *InMemoryConfigs) Get(_ context.Context, domainID id.DomainID) (Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.configs[domainID]
	if !ok {
		return Config{}, sentinel.ErrNotFound
	}
	return cfg, nil
}

func (s *InMemoryConfigs) Delete(_ context.Context, domainID id.DomainID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.configs, domainID)
	return nil
}

// InMemoryMintlist is the canonical in-process mintlist store.
type InMemoryMintlist struct {
	mu    sync.RWMutex
	lists map[id.DomainID]map[id.Address]struct{}
}

func NewInMemoryMintlist() *InMemoryMintlist {
	return &InMemoryMintlist{lists: make(map[id.DomainID]map[id.Address]struct{})}
}

func (s *InMemoryMintlist) Add(_ context.Context, domainID id.DomainID, addrs []id.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.lists[domainID]
	if !ok {
		set = make(map[id.Address]struct{})
		s.lists[domainID] = set
	}
	for _, a := range addrs {
		set[a] = struct{}{}
	}
	return nil
}

func (s *InMemoryMintlist) Remove(_ context.Context, domainID id.DomainID, addrs []id.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.lists[domainID]
	if !ok {
		return nil
	}
	for _, a := range addrs {
		delete(set, a)
	}
	return nil
}

func (s *InMemoryMintlist) Contains(_ context.Context, domainID id.DomainID, addr id.Address) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.lists[domainID][addr]
	return ok, nil
}

func (s *InMemoryMintlist) Clear(_ context.Context, domainID id.DomainID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lists, domainID)
	return nil
}

func (s *InMemoryMintlist) List(_ context.Context, domainID id.DomainID) ([]id.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]id.Address, 0, len(s.lists[domainID]))
	for a := range s.lists[domainID] {
		out = append(out, a)
	}
	return out, nil
}
