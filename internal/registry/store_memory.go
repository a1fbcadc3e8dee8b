package registry

import (
	"context"
	"sync"

	id "nameledger/pkg/domain"
	"nameledger/pkg/platform/sentinel"
)

// InMemory is the canonical in-process record store.
type InMemory struct {
	mu        sync.RWMutex
	records   map[id.DomainID]DomainRecord
	operators map[id.Address]map[id.Address]struct{}
}

func NewInMemory() *InMemory {
	return &InMemory{
		records:   make(map[id.DomainID]DomainRecord),
		operators: make(map[id.Address]map[id.Address]struct{}),
	}
}

func (s *InMemory) Create(_ context.Context, record DomainRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.records[record.ID]; ok && existing.Exists() {
		return sentinel.ErrConflict
	}
	s.records[record.ID] = record
	return nil
}

func (s *InMemory) Get(_ context.Context, domainID id.DomainID) (DomainRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[domainID]
	if !ok || !record.Exists() {
		return DomainRecord{}, sentinel.ErrNotFound
	}
	return record, nil
}

func (s *InMemory) Update(_ context.Context, record DomainRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.records[record.ID]
	if !ok || !existing.Exists() {
		return sentinel.ErrNotFound
	}
	s.records[record.ID] = record
	return nil
}

func (s *InMemory) Delete(_ context.Context, domainID id.DomainID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.records[domainID]
	if !ok || !existing.Exists() {
		return sentinel.ErrNotFound
	}
	delete(s.records, domainID)
	return nil
}

func (s *InMemory) SetOperator(_ context.Context, owner, operator id.Address, allowed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.operators[owner]
	if !ok {
		if !allowed {
			return nil
		}
		set = make(map[id.Address]struct{})
		s.operators[owner] = set
	}
	if allowed {
		set[operator] = struct{}{}
	} else {
		delete(set, operator)
	}
	return nil
}

func (s *InMemory) IsOperator(_ context.Context, owner, operator id.Address) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.operators[owner][operator]
	return ok, nil
}
