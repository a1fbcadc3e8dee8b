package distribution

import (
	"context"
	"fmt"

	platformredis "nameledger/internal/platform/redis"
	id "nameledger/pkg/domain"
)

// RedisMintlist keeps mintlists in Redis sets so sibling instances and the
// read path share one view. Keyed mintlist:<domain-id>.
type RedisMintlist struct {
	client *platformredis.Client
}

func NewRedisMintlist(client *platformredis.Client) *RedisMintlist {
	return &RedisMintlist{client: client}
}

func mintlistKey(domainID id.DomainID) string {
	return "mintlist:" + domainID.String()
}

func (s *RedisMintlist) Add(ctx context.Context, domainID id.DomainID, addrs []id.Address) error {
	if len(addrs) == 0 {
		return nil
	}
	members := make([]any, len(addrs))
	for i, a := range addrs {
		members[i] = a.String()
	}
	if err := s.client.SAdd(ctx, mintlistKey(domainID), members...).Err(); err != nil {
		return fmt.Errorf("mintlist add: %w", err)
	}
	return nil
}

func (s *RedisMintlist) Remove(ctx context.Context, domainID id.DomainID, addrs []id.Address) error {
	if len(addrs) == 0 {
		return nil
	}
	members := make([]any, len(addrs))
	for i, a := range addrs {
		members[i] = a.String()
	}
	if err := s.client.SRem(ctx, mintlistKey(domainID), members...).Err(); err != nil {
		return fmt.Errorf("mintlist remove: %w", err)
	}
	return nil
}

func (s *RedisMintlist) Contains(ctx context.Context, domainID id.DomainID, addr id.Address) (bool, error) {
	ok, err := s.client.SIsMember(ctx, mintlistKey(domainID), addr.String()).Result()
	if err != nil {
		return false, fmt.Errorf("mintlist contains: %w", err)
	}
	return ok, nil
}

func (s *RedisMintlist) Clear(ctx context.Context, domainID id.DomainID) error {
	if err := s.client.Del(ctx, mintlistKey(domainID)).Err(); err != nil {
		return fmt.Errorf("mintlist clear: %w", err)
	}
	return nil
}

func (s *RedisMintlist) List(ctx context.Context, domainID id.DomainID) ([]id.Address, error) {
	raw, err := s.client.SMembers(ctx, mintlistKey(domainID)).Result()
	if err != nil {
		return nil, fmt.Errorf("mintlist list: %w", err)
	}
	out := make([]id.Address, 0, len(raw))
	for _, r := range raw {
		addr, err := id.ParseAddress(r)
		if err != nil {
			return nil, fmt.Errorf("mintlist list: bad member %q: %w", r, err)
		}
		out = append(out, addr)
	}
	return out, nil
}
