package redisclient

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrLockNotAcquired = errors.New("booking lock not acquired")

// Locker guards the booking service's commit critical section. The lock key
// is the slot's natural key (doctor + start instant), so two requests racing
// for the same slot serialize while requests for different slots proceed in
// parallel. The lock only narrows the race window; the database uniqueness
// constraint is what actually decides a race.
type Locker interface {
	WithSlotLock(ctx context.Context, doctorID uuid.UUID, startAt time.Time, fn func(ctx context.Context) error) error
}

type redisSlotLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSlotLocker creates a locker backed by a per-slot Redis key.
func NewSlotLocker(client *redis.Client, ttl time.Duration) Locker {
	return &redisSlotLocker{
		client: client,
		ttl:    ttl,
	}
}

func slotLockKey(doctorID uuid.UUID, startAt time.Time) string {
	return fmt.Sprintf("lock:booking:%s:%d", doctorID.String(), startAt.Unix())
}

func (l *redisSlotLocker) WithSlotLock(ctx context.Context, doctorID uuid.UUID, startAt time.Time, fn func(ctx context.Context) error) error {
	key := slotLockKey(doctorID, startAt)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		// Redis being down degrades the pre-check but must not block
		// bookings; the database uniqueness constraint still decides races.
		log.Printf("booking lock unavailable, proceeding without it: %v", err)
		return fn(ctx)
	}
	if !ok {
		return ErrLockNotAcquired
	}

	defer func() {
		_ = l.release(ctx, key, token)
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

// Only the holder's token may delete the key, so a lock that expired and was
// re-acquired by someone else is never released from here.
var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *redisSlotLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release booking lock: %w", err)
	}
	return nil
}
