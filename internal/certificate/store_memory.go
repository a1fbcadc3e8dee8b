package certificate

import (
	"context"
	"sync"

	id "nameledger/pkg/domain"
	"nameledger/pkg/platform/sentinel"
)

// InMemory is the canonical in-process certificate store.
type InMemory struct {
	mu    sync.RWMutex
	certs map[id.DomainID]Certificate
}

func NewInMemory() *InMemory {
	return &InMemory{certs: make(map[id.DomainID]Certificate)}
}

func (s *InMemory) Put(_ context.Context, cert Certificate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.certs[cert.DomainID] = cert
	return nil
}

func (s *InMemory) Get(_ context.Context, domainID id.DomainID) (Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cert, ok := s.certs[domainID]
	if !ok {
		return Certificate{}, sentinel.ErrNotFound
	}
	return cert, nil
}

func (s *InMemory) Delete(_ context.Context, domainID id.DomainID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.certs[domainID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.certs, domainID)
	return nil
}
