package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLeaseLost is returned by Release when the key expired or was taken over.
var ErrLeaseLost = errors.New("lease no longer held")

const keyPrefix = "lock:"

// releaseScript deletes the key only if it still carries our token, so an expired
// lease can never release a lock that another run has since acquired.
var releaseScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// Locker grants exclusive, TTL-bounded leases on named keys.
type Locker interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (Lease, bool, error)
}

// Lease is a held lock. Releasing an expired or already released lease returns ErrLeaseLost.
type Lease interface {
	Name() string
	Release(ctx context.Context) error
}

type redisLocker struct {
	client *redis.Client
}

func NewRedisLocker(client *redis.Client) Locker {
	return &redisLocker{client: client}
}

// Acquire tries once; ok is false when another holder has the key.
func (l *redisLocker) Acquire(ctx context.Context, name string, ttl time.Duration) (Lease, bool, error) {
	token := uuid.New().String()
	key := keyPrefix + name

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire lease %s: %w", name, err)
	}
	if !ok {
		return nil, false, nil
	}
	return &redisLease{client: l.client, name: name, key: key, token: token}, true, nil
}

type redisLease struct {
	client *redis.Client
	name   string
	key    string
	token  string
}

func (l *redisLease) Name() string {
	return l.name
}

func (l *redisLease) Release(ctx context.Context) error {
	n, err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Int()
	if err != nil {
		return fmt.Errorf("release lease %s: %w", l.name, err)
	}
	if n == 0 {
		return ErrLeaseLost
	}
	return nil
}
