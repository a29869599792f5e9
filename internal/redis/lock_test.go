package redisclient

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func newTestLocker(t *testing.T) (Locker, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSlotLocker(client, 5*time.Second), client
}

func TestWithSlotLockRunsCallback(t *testing.T) {
	locker, _ := newTestLocker(t)

	called := false
	err := locker.WithSlotLock(context.Background(), uuid.New(), time.Now(), func(ctx context.Context) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("callback was not invoked")
	}
}

func TestWithSlotLockContention(t *testing.T) {
	locker, _ := newTestLocker(t)

	doctorID := uuid.New()
	startAt := time.Date(2026, time.August, 31, 8, 0, 0, 0, time.UTC)

	release := make(chan struct{})
	held := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- locker.WithSlotLock(context.Background(), doctorID, startAt, func(ctx context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()

	<-held

	// Same slot is locked.
	err := locker.WithSlotLock(context.Background(), doctorID, startAt, func(ctx context.Context) error {
		t.Error("second holder must not run")
		return nil
	})
	if !errors.Is(err, ErrLockNotAcquired) {
		t.Errorf("expected ErrLockNotAcquired, got %v", err)
	}

	// A different slot of the same doctor is independent.
	err = locker.WithSlotLock(context.Background(), doctorID, startAt.Add(20*time.Minute), func(ctx context.Context) error {
		return nil
	})
	if err != nil {
		t.Errorf("unrelated slot should lock independently: %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first holder failed: %v", err)
	}
}

func TestWithSlotLockReleasesOnReturn(t *testing.T) {
	locker, _ := newTestLocker(t)

	doctorID := uuid.New()
	startAt := time.Now()

	boom := errors.New("callback failure")
	err := locker.WithSlotLock(context.Background(), doctorID, startAt, func(ctx context.Context) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected callback error to propagate, got %v", err)
	}

	// The lock must be free again, even after a failed callback.
	err = locker.WithSlotLock(context.Background(), doctorID, startAt, func(ctx context.Context) error {
		return nil
	})
	if err != nil {
		t.Errorf("lock was not released: %v", err)
	}
}

func TestWithSlotLockKeyIsPerSlot(t *testing.T) {
	locker, client := newTestLocker(t)

	doctorID := uuid.New()
	startAt := time.Date(2026, time.August, 31, 8, 0, 0, 0, time.UTC)

	err := locker.WithSlotLock(context.Background(), doctorID, startAt, func(ctx context.Context) error {
		n, err := client.Exists(ctx, slotLockKey(doctorID, startAt)).Result()
		if err != nil {
			return err
		}
		if n != 1 {
			t.Error("expected the slot lock key to exist while held")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
