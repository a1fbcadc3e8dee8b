package pricing

import (
	"context"
	"sync"

	id "nameledger/pkg/domain"
	"nameledger/pkg/platform/sentinel"
)

// InMemoryCurveConfigs is the canonical in-process curve config store.
type InMemoryCurveConfigs struct {
	mu      sync.RWMutex
	configs map[id.DomainID]CurveConfig
}

func NewInMemoryCurveConfigs() *InMemoryCurveConfigs {
	return &InMemoryCurveConfigs{configs: make(map[id.DomainID]CurveConfig)}
}

func (s *InMemoryCurveConfigs) Get(_ context.Context, parent id.DomainID) (CurveConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.configs[parent]
	if !ok {
		return CurveConfig{}, sentinel.ErrNotFound
	}
	return cfg, nil
}

func (s *InMemoryCurveConfigs) Set(_ context.Context, parent id.DomainID, cfg CurveConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs[parent] = cfg
	return nil
}

func (s *InMemoryCurveConfigs) Delete(_ context.Context, parent id.DomainID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.configs, parent)
	return nil
}

// InMemoryFixedConfigs is the canonical in-process fixed config store.
type InMemoryFixedConfigs struct {
	mu      sync.RWMutex
	configs map[id.DomainID]FixedConfig
}

func NewInMemoryFixedConfigs() *InMemoryFixedConfigs {
	return &InMemoryFixedConfigs{configs: make(map[id.DomainID]FixedConfig)}
}

func (s *InMemoryFixedConfigs) Get(_ context.Context, parent id.DomainID) (FixedConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.configs[parent]
	if !ok {
		return FixedConfig{}, sentinel.ErrNotFound
	}
	return cfg, nil
}

func (s *InMemoryFixedConfigs) Set(_ context.Context, parent id.DomainID, cfg FixedConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs[parent] = cfg
	return nil
}

func (s *InMemoryFixedConfigs) Delete(_ context.Context, parent id.DomainID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.configs, parent)
	return nil
}
