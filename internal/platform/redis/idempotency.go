package redis

import (
	"context"
	"fmt"
	"time"
)

// IdempotencyStore implements middleware.IdempotencyStore on Redis so
// duplicate detection works across replicas.
type IdempotencyStore struct {
	client *Client
}

func NewIdempotencyStore(client *Client) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

func (s *IdempotencyStore) PutIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, "idempotency:"+key, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("idempotency setnx: %w", err)
	}
	return ok, nil
}
