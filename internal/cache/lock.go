package cache

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// FillLock is a Redis SET NX lock with a random owner token. Release only
// deletes the key while this instance still owns it.
type FillLock struct {
	client *redis.Client
	key    string
	token  string
	ttl    time.Duration
}

// NewFillLock creates an unacquired lock on key.
func NewFillLock(client *redis.Client, key string, ttl time.Duration) *FillLock {
	return &FillLock{
		client: client,
		key:    "lock:" + key,
		token:  newLockToken(),
		ttl:    ttl,
	}
}

var (
	randRead     = rand.Read
	tokenCounter atomic.Uint64
)

// newLockToken returns a random owner token. If the system random source
// fails it falls back to a process-unique clock and counter token.
func newLockToken() string {
	b := make([]byte, 16)
	if _, err := randRead(b); err == nil {
		return hex.EncodeToString(b)
	}
	return strconv.FormatInt(time.Now().UnixNano(), 36) + "-" + strconv.FormatUint(tokenCounter.Add(1), 36)
}

// Acquire reports whether the lock was taken. It never blocks.
func (l *FillLock) Acquire(ctx context.Context) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key, l.token, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock %s: %w", l.key, err)
	}
	return ok, nil
}

// Release drops the lock if still owned.
func (l *FillLock) Release(ctx context.Context) error {
	return releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Err()
}
