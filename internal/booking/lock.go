package booking

import (
	"context"
	"fmt"
	"time"

	"cinebook/pkg/metrics"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ShowingLocker serializes every seat-acquiring or seat-releasing operation
// for one showing. Create, changeSeats, cancel, expire and markPaid all go
// through the same acquire path, so a customer completing payment and the
// reaper expiring the hold can never interleave on the same booking.
type ShowingLocker interface {
	// Acquire blocks up to the configured timeout, retrying the whole
	// acquisition once before failing with ErrLockTimeout. The returned
	// function releases the lock and is safe to defer.
	Acquire(ctx context.Context, showingID uuid.UUID) (func(), error)
}

// Lua script for safe lock release - only the holder may delete the key
const luaReleaseLock = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`

// RedisShowingLocker implements ShowingLocker with a Redis SET NX PX mutex.
type RedisShowingLocker struct {
	client  *redis.Client
	timeout time.Duration
	lockTTL time.Duration
}

func NewRedisShowingLocker(client *redis.Client, timeout, lockTTL time.Duration) *RedisShowingLocker {
	return &RedisShowingLocker{
		client:  client,
		timeout: timeout,
		lockTTL: lockTTL,
	}
}

func (l *RedisShowingLocker) Acquire(ctx context.Context, showingID uuid.UUID) (func(), error) {
	key := fmt.Sprintf("cinebook:showing_lock:%s", showingID)
	holder := uuid.NewString()

	// One internal retry before surfacing the conflict to the caller
	for attempt := 0; attempt < 2; attempt++ {
		acquired, err := l.tryAcquire(ctx, key, holder)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire showing lock: %w", err)
		}
		if acquired {
			return func() { l.release(key, holder) }, nil
		}
	}

	metrics.LockTimeouts.Inc()
	return nil, ErrLockTimeout
}

// tryAcquire polls SET NX until the key is taken or the timeout window ends.
func (l *RedisShowingLocker) tryAcquire(ctx context.Context, key, holder string) (bool, error) {
	deadline := time.Now().Add(l.timeout)

	for {
		ok, err := l.client.SetNX(ctx, key, holder, l.lockTTL).Result()
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
		if time.Now().After(deadline) {
			return false, nil
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(25 * time.Millisecond):
		}
	}
}

func (l *RedisShowingLocker) release(key, holder string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// If the script is not loaded, fall back to Eval
	err := l.client.EvalSha(ctx, luaReleaseLock, []string{key}, holder).Err()
	if err != nil {
		_ = l.client.Eval(ctx, luaReleaseLock, []string{key}, holder).Err()
	}
}

// PreloadScripts loads the release script into Redis for better performance
func (l *RedisShowingLocker) PreloadScripts(ctx context.Context) error {
	if _, err := l.client.ScriptLoad(ctx, luaReleaseLock).Result(); err != nil {
		return fmt.Errorf("failed to load lock release script: %w", err)
	}
	return nil
}
