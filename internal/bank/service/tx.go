package service

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	dErrors "bloodbank/pkg/domain-errors"
)

// Tx is the transactional boundary for one donation or request unit of work.
// The key is the blood type being acted on: implementations must serialize
// concurrent units of work on the same key so the availability check and the
// fulfillment that follows cannot interleave and oversell the last unit.
type Tx interface {
	RunInTx(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// numShards spreads blood types across mutexes. Eight types exist, so
// collisions are rare; the hash keeps the mapping stable without a registry.
const numShards = 16

// defaultTxTimeout bounds one unit of work.
const defaultTxTimeout = 5 * time.Second

// ShardedTx serializes units of work per blood type with sharded mutexes.
// It is the boundary used with the in-memory stores, where no database
// transaction exists to lean on. Mutations inside fn are not rolled back on
// error; the memory stores are for tests and development, and fn is written
// to fail before its first write.
type ShardedTx struct {
	shards  [numShards]sync.Mutex
	timeout time.Duration
}

func NewShardedTx() *ShardedTx {
	return &ShardedTx{timeout: defaultTxTimeout}
}

func (t *ShardedTx) RunInTx(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	shard := t.selectShard(key)
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	// Check again after acquiring the lock.
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn(ctx)
}

func (t *ShardedTx) selectShard(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % numShards)
}
