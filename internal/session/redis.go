package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"lovtiti-ussd/internal/domain"
)

// RedisStore shares sessions between gateway replicas. Every Save refreshes
// the key's expiry, so eviction follows the caller's last activity.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

type RedisOption func(*RedisStore)

// WithTTL sets how long an idle session survives. Zero disables expiry.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

func NewRedisStore(client *redis.Client, opts ...RedisOption) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("session: redis client must not be nil")
	}
	s := &RedisStore{
		client: client,
		ttl:    DefaultTTL,
		prefix: defaultRedisKeySpace,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *RedisStore) key(id string) string {
	return s.prefix + ":session:" + id
}

// GetOrCreate loads the session, inserting a fresh one with SETNX when the key
// does not exist yet.
func (s *RedisStore) GetOrCreate(ctx context.Context, id string) (*domain.Session, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	key := s.key(id)
	fresh := domain.NewSession(id, now())
	data, err := json.Marshal(fresh)
	if err != nil {
		return nil, fmt.Errorf("session: marshal: %w", err)
	}

	created, err := s.client.SetNX(ctx, key, data, s.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("session: redis setnx: %w", err)
	}
	if created {
		return fresh, nil
	}

	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		// Expired between SETNX and GET; the fresh value is still correct.
		return fresh, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: redis get: %w", err)
	}

	var sess domain.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("session: unmarshal %q: %w", id, err)
	}
	if sess.KYCData == nil {
		sess.KYCData = map[string]string{}
	}
	return &sess, nil
}

func (s *RedisStore) Save(ctx context.Context, sess *domain.Session) error {
	if sess == nil {
		return ErrNilState
	}
	if sess.ID == "" {
		return ErrInvalidID
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sess.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("session: redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
