// Run locks for the archive job. With Redis configured the lock is
// shared across instances; otherwise a process-local mutex is used.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nexora/nexora/pkg/utils"
)

// Locker guards the nightly archive run so only one instance executes it.
type Locker interface {
	TryLock(ctx context.Context) bool
	Unlock(ctx context.Context)
}

const (
	archiveLockKey = "nexora:archive:lock"
	archiveLockTTL = 30 * time.Minute
)

// Delete the lock only while we still own it. A plain GET-then-DEL
// could delete another instance's lease if ours expired in between.
var unlockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker is a lease-based lock on a Redis key.
type RedisLocker struct {
	client     *redis.Client
	logger     *slog.Logger
	instanceID string
}

// NewRedisLocker connects to Redis and returns a distributed locker.
func NewRedisLocker(addr, password string, db int) *RedisLocker {
	hostname, _ := os.Hostname()
	return &RedisLocker{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		logger:     utils.GetLogger(),
		instanceID: fmt.Sprintf("%s-%d", hostname, os.Getpid()),
	}
}

// TryLock acquires the archive lock. Returns true when this instance
// holds it, also when it already did and the lease gets extended.
func (l *RedisLocker) TryLock(ctx context.Context) bool {
	ok, err := l.client.SetNX(ctx, archiveLockKey, l.instanceID, archiveLockTTL).Result()
	if err != nil {
		l.logger.Warn("Archive lock acquisition failed", "error", err)
		return false
	}
	if ok {
		l.logger.Debug("Archive lock acquired", "instance", l.instanceID)
		return true
	}

	owner, err := l.client.Get(ctx, archiveLockKey).Result()
	if err == nil && owner == l.instanceID {
		if err := l.client.Expire(ctx, archiveLockKey, archiveLockTTL).Err(); err == nil {
			return true
		}
	}
	return false
}

// Unlock releases the lock only if this instance still owns it.
func (l *RedisLocker) Unlock(ctx context.Context) {
	err := unlockScript.Run(ctx, l.client, []string{archiveLockKey}, l.instanceID).Err()
	if err != nil && err != redis.Nil {
		l.logger.Warn("Failed to release archive lock", "error", err)
	}
}

// LocalLocker is the single-instance fallback.
type LocalLocker struct {
	mu sync.Mutex
}

func NewLocalLocker() *LocalLocker { return &LocalLocker{} }

func (l *LocalLocker) TryLock(ctx context.Context) bool { return l.mu.TryLock() }

func (l *LocalLocker) Unlock(ctx context.Context) { l.mu.Unlock() }
