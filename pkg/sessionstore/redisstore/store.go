// Package redisstore keeps backoffice sessions in Redis.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/recliq/go-backoffice/components/backoffice"
)

// DefaultPrefix namespaces session keys.
const DefaultPrefix = "recliq:backoffice:session:"

// Client is the subset of go-redis commands the store needs.
type Client interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Config holds connection settings for NewClient.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redisstore: ping %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

// Options configures a Store.
type Options struct {
	Prefix string
	Clock  func() time.Time
}

// Store persists sessions as JSON with a TTL matching their expiry.
type Store struct {
	client Client
	prefix string
	now    func() time.Time
}

var _ backoffice.SessionStore = (*Store)(nil)

// New wraps client.
func New(client Client, opts Options) (*Store, error) {
	if client == nil {
		return nil, errors.New("redisstore: client is required")
	}
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Store{client: client, prefix: opts.Prefix, now: opts.Clock}, nil
}

// Save writes the session. Sessions without an expiry never expire in Redis.
func (s *Store) Save(ctx context.Context, session backoffice.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("redisstore: encode session %s: %w", session.ID, err)
	}
	var ttl time.Duration
	if !session.ExpiresAt.IsZero() {
		ttl = session.ExpiresAt.Sub(s.now())
		if ttl <= 0 {
			return s.Delete(ctx, session.ID)
		}
	}
	if err := s.client.Set(ctx, s.key(session.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redisstore: save session %s: %w", session.ID, err)
	}
	return nil
}

// Load reads a session; missing keys map to backoffice.ErrSessionNotFound.
func (s *Store) Load(ctx context.Context, id string) (backoffice.Session, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return backoffice.Session{}, fmt.Errorf("%w: %s", backoffice.ErrSessionNotFound, id)
	}
	if err != nil {
		return backoffice.Session{}, fmt.Errorf("redisstore: load session %s: %w", id, err)
	}
	var session backoffice.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return backoffice.Session{}, fmt.Errorf("redisstore: decode session %s: %w", id, err)
	}
	return session, nil
}

// Delete removes a session key.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("redisstore: delete session %s: %w", id, err)
	}
	return nil
}

func (s *Store) key(id string) string {
	return s.prefix + id
}
