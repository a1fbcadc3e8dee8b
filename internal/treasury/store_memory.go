package treasury

import (
	"context"
	"math/big"
	"sync"

	id "nameledger/pkg/domain"
	"nameledger/pkg/platform/sentinel"
)

// InMemoryStakes is the canonical in-process stake store.
type InMemoryStakes struct {
	mu     sync.RWMutex
	stakes map[id.DomainID]StakedBalance
}

func NewInMemoryStakes() *InMemoryStakes {
	return &InMemoryStakes{stakes: make(map[id.DomainID]StakedBalance)}
}

func (s *InMemoryStakes) Put(_ context.Context, domainID id.DomainID, stake StakedBalance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stakes[domainID] = StakedBalance{
		Amount: new(big.Int).Set(stake.Amount),
		Token:  stake.Token,
	}
	return nil
}

func (s *InMemoryStakes) Get(_ context.Context, domainID id.DomainID) (StakedBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stake, ok := s.stakes[domainID]
	if !ok {
		return StakedBalance{}, sentinel.ErrNotFound
	}
	return StakedBalance{Amount: new(big.Int).Set(stake.Amount), Token: stake.Token}, nil
}

func (s *InMemoryStakes) Delete(_ context.Context, domainID id.DomainID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.stakes[domainID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.stakes, domainID)
	return nil
}

// InMemoryPaymentConfigs is the canonical in-process payment config store.
type InMemoryPaymentConfigs struct {
	mu      sync.RWMutex
	configs map[id.DomainID]PaymentConfig
}

func NewInMemoryPaymentConfigs() *InMemoryPaymentConfigs {
	return &InMemoryPaymentConfigs{configs: make(map[id.DomainID]PaymentConfig)}
}

func (s *InMemoryPaymentConfigs) Put(_ context.Context, domainID id.DomainID, cfg PaymentConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs[domainID] = cfg
	return nil
}

func (s *InMemoryPaymentConfigs) Get(_ context.Context, domainID id.DomainID) (PaymentConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.configs[domainID]
	if !ok {
		return PaymentConfig{}, sentinel.ErrNotFound
	}
	return cfg, nil
}

func (s *InMemoryPaymentConfigs) Delete(_ context.Context, domainID id.DomainID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.configs, domainID)
	return nil
}
