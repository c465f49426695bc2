package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Lock implements a best-effort distributed lock for coalescing
// concurrent cache refreshes of the same key
// ⭐ SSOT: 갱신 잠금은 여기서만
type Lock struct {
	client *Client
	prefix string
}

// NewLock creates a new lock helper
func NewLock(client *Client, prefix string) *Lock {
	return &Lock{
		client: client,
		prefix: prefix,
	}
}

// unlockScript deletes the lock only if the caller still owns it
var unlockScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// Acquire tries to take the lock for key. Returns an owner token and
// true on success. When Redis is disabled every caller acquires,
// which degrades to per-process coalescing upstream.
func (l *Lock) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if !l.client.Enabled() {
		return "", true, nil
	}

	token := newToken()
	fullKey := fmt.Sprintf("%s:lock:%s", l.prefix, key)

	ok, err := l.client.Redis().SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("lock acquire failed: %w", err)
	}

	return token, ok, nil
}

// Release frees the lock if the token still owns it
func (l *Lock) Release(ctx context.Context, key, token string) error {
	if !l.client.Enabled() {
		return nil
	}

	fullKey := fmt.Sprintf("%s:lock:%s", l.prefix, key)
	if err := unlockScript.Run(ctx, l.client.Redis(), []string{fullKey}, token).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("lock release failed: %w", err)
	}
	return nil
}

// WaitReleased blocks until the lock for key disappears or ctx is cancelled.
// Callers that lost the Acquire race use this to wait for the in-flight
// refresh, then read the freshly written cache entry.
func (l *Lock) WaitReleased(ctx context.Context, key string) error {
	if !l.client.Enabled() {
		return nil
	}

	fullKey := fmt.Sprintf("%s:lock:%s", l.prefix, key)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		exists, err := l.client.Redis().Exists(ctx, fullKey).Result()
		if err != nil {
			return fmt.Errorf("lock check failed: %w", err)
		}
		if exists == 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			// Poll again
		}
	}
}

func newToken() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
