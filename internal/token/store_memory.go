package token

import (
	"context"
	"math/big"
	"sync"

	id "nameledger/pkg/domain"
	"nameledger/pkg/platform/sentinel"
)

type balanceKey struct {
	token  id.Address
	holder id.Address
}

type allowanceKey struct {
	token   id.Address
	owner   id.Address
	spender id.Address
}

// InMemory is the canonical in-process token ledger.
type InMemory struct {
	mu         sync.RWMutex
	balances   map[balanceKey]*big.Int
	allowances map[allowanceKey]*big.Int
}

func NewInMemory() *InMemory {
	return &InMemory{
		balances:   make(map[balanceKey]*big.Int),
		allowances: make(map[allowanceKey]*big.Int),
	}
}

func (s *InMemory) Balance(_ context.Context, token, holder id.Address) (*big.Int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if b, ok := s.balances[balanceKey{token, holder}]; ok {
		return new(big.Int).Set(b), nil
	}
	return new(big.Int), nil
}

func (s *InMemory) Move(_ context.Context, token, from, to id.Address, amount *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fromBal := s.balances[balanceKey{token, from}]
	if fromBal == nil || fromBal.Cmp(amount) < 0 {
		return sentinel.ErrInvalidState
	}
	fromBal.Sub(fromBal, amount)
	s.credit(token, to, amount)
	return nil
}

func (s *InMemory) Credit(_ context.Context, token, to id.Address, amount *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credit(token, to, amount)
	return nil
}

func (s *InMemory) credit(token, to id.Address, amount *big.Int) {
	key := balanceKey{token, to}
	if b, ok := s.balances[key]; ok {
		b.Add(b, amount)
		return
	}
	s.balances[key] = new(big.Int).Set(amount)
}

func (s *InMemory) Allowance(_ context.Context, token, owner, spender id.Address) (*big.Int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.allowances[allowanceKey{token, owner, spender}]; ok {
		return new(big.Int).Set(a), nil
	}
	return new(big.Int), nil
}

func (s *InMemory) SetAllowance(_ context.Context, token, owner, spender id.Address, amount *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allowances[allowanceKey{token, owner, spender}] = new(big.Int).Set(amount)
	return nil
}
