// Package redislock keeps a sweep from running on two replicas at once.
package redislock

import (
	"context"
	"errors"
	"time"

	"orderflow/internal/core/ports"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "orderflow:lock:"

// releaseScript deletes the key only while it still holds the caller's token, so a holder
// whose TTL ran out cannot release a lock taken over by another replica.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ErrLockLost is returned by release when the lock expired before it was released.
var ErrLockLost = errors.New("lock expired before release")

// Locker implements ports.SweepLocker with SET NX PX.
type Locker struct {
	rdb redis.UniversalClient
}

var _ ports.SweepLocker = (*Locker)(nil)

func New(rdb redis.UniversalClient) *Locker {
	return &Locker{rdb: rdb}
}

func (l *Locker) TryLock(ctx context.Context, name string, ttl time.Duration) (func(context.Context) error, bool, error) {
	key := keyPrefix + name
	token := ulid.Make().String()

	acquired, err := l.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !acquired {
		return nil, false, nil
	}

	release := func(ctx context.Context) error {
		deleted, err := releaseScript.Run(ctx, l.rdb, []string{key}, token).Int()
		if err != nil {
			return err
		}
		if deleted == 0 {
			return ErrLockLost
		}
		return nil
	}
	return release, true, nil
}
