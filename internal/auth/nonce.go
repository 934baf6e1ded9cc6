package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// NonceStore issues single-use login nonces.
type NonceStore interface {
	Issue(ctx context.Context) (string, error)
	// Consume reports whether nonce was live and burns it.
	Consume(ctx context.Context, nonce string) (bool, error)
}

func generateNonce() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

type memoryNonces struct {
	mu     sync.Mutex
	ttl    time.Duration
	nonces map[string]time.Time // nonce -> expiry
	now    func() time.Time
}

func NewMemoryNonceStore(ttl time.Duration) NonceStore {
	return &memoryNonces{ttl: ttl, nonces: make(map[string]time.Time), now: time.Now}
}

func (m *memoryNonces) Issue(context.Context) (string, error) {
	n, err := generateNonce()
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	// 顺手清理过期 nonce
	for k, exp := range m.nonces {
		if now.After(exp) {
			delete(m.nonces, k)
		}
	}
	m.nonces[n] = now.Add(m.ttl)
	return n, nil
}

func (m *memoryNonces) Consume(_ context.Context, nonce string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.nonces[nonce]
	if !ok {
		return false, nil
	}
	delete(m.nonces, nonce)
	return !m.now().After(exp), nil
}

type redisNonces struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisNonceStore keeps nonces as auth:nonce:{n} keys with a TTL, so
// every server instance accepts a nonce issued by any other.
func NewRedisNonceStore(rdb *redis.Client, ttl time.Duration) NonceStore {
	return &redisNonces{rdb: rdb, ttl: ttl}
}

func nonceKey(n string) string { return "auth:nonce:" + n }

func (r *redisNonces) Issue(ctx context.Context) (string, error) {
	n, err := generateNonce()
	if err != nil {
		return "", err
	}
	if err := r.rdb.Set(ctx, nonceKey(n), 1, r.ttl).Err(); err != nil {
		return "", err
	}
	return n, nil
}

func (r *redisNonces) Consume(ctx context.Context, nonce string) (bool, error) {
	// DEL 是原子的，只有一个请求能删成功
	n, err := r.rdb.Del(ctx, nonceKey(nonce)).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
