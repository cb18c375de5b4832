package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/motors-dealership/internal/auth"
	"github.com/redis/go-redis/v9"
)

const (
	defaultTimeout = 5 * time.Second
	keyPrefix      = "session:"
	accountPrefix  = "account_sessions:"
)

type Config struct {
	Addr    string
	DB      int
	Timeout time.Duration
}

// Connect opens a client and pings it before handing it out.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}

type entry struct {
	Identity  auth.Identity `json:"identity"`
	ExpiresAt time.Time     `json:"expires_at"`
}

// SessionStore keeps one JSON value per session; redis drops it when the key TTL runs out.
// A set per account indexes its session hashes so they can be dropped together.
type SessionStore struct {
	client redis.Cmdable
	now    func() time.Time
}

func NewSessionStore(client redis.Cmdable) *SessionStore {
	return &SessionStore{client: client, now: time.Now}
}

func (s *SessionStore) Save(ctx context.Context, tokenHash string, identity auth.Identity, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return fmt.Errorf("session already expired at %s", expiresAt)
	}

	payload, err := json.Marshal(entry{Identity: identity, ExpiresAt: expiresAt})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	index := accountKey(identity.ID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(tokenHash), payload, ttl)
		pipe.SAdd(ctx, index, tokenHash)
		// sessions share one lifetime, so the newest one outlives the rest
		pipe.Expire(ctx, index, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Find(ctx context.Context, tokenHash string) (*auth.Identity, time.Time, error) {
	raw, err := s.client.Get(ctx, s.key(tokenHash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, time.Time{}, auth.ErrSessionNotFound
		}
		return nil, time.Time{}, fmt.Errorf("get session: %w", err)
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, time.Time{}, fmt.Errorf("decode session: %w", err)
	}
	return &e.Identity, e.ExpiresAt, nil
}

func (s *SessionStore) Delete(ctx context.Context, tokenHash string) error {
	return s.client.Del(ctx, s.key(tokenHash)).Err()
}

func (s *SessionStore) DeleteForAccount(ctx context.Context, accountID int64) error {
	index := accountKey(accountID)
	hashes, err := s.client.SMembers(ctx, index).Result()
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	keys := make([]string, 0, len(hashes)+1)
	for _, h := range hashes {
		keys = append(keys, s.key(h))
	}
	keys = append(keys, index)
	return s.client.Del(ctx, keys...).Err()
}

func accountKey(accountID int64) string {
	return fmt.Sprintf("%s%d", accountPrefix, accountID)
}

func (s *SessionStore) key(tokenHash string) string {
	return keyPrefix + tokenHash
}
