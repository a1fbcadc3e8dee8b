package registrar

import (
	"sync"

	id "nameledger/pkg/domain"
	dErrors "nameledger/pkg/domain-errors"
)

// opLock serializes mutating operations per domain id. Registration,
// reclaim and revocation touch several stores in sequence; whichever
// caller acquires the lock first wins, the loser gets a conflict
// instead of interleaving with the in-flight operation.
type opLock struct {
	mu     sync.Mutex
	active map[id.DomainID]struct{}
}

func newOpLock() *opLock {
	return &opLock{active: make(map[id.DomainID]struct{})}
}

func (l *opLock) acquire(domainID id.DomainID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.active[domainID]; busy {
		return dErrors.New(dErrors.CodeConflict, "another operation is in progress on this domain")
	}
	l.active[domainID] = struct{}{}
	return nil
}

func (l *opLock) release(domainID id.DomainID) {
	l.mu.Lock()
	delete(l.active, domainID)
	l.mu.Unlock()
}
