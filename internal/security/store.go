package security

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const configKeyPrefix = "cfg"

// Store persists one Config document per user in Redis. Documents are JSON;
// the store owns the key layout and nothing else reads or writes those keys.
type Store struct {
	rdb    *redis.Client
	prefix string
}

// NewStore returns a Store using prefix to namespace its keys.
func NewStore(rdb *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = "sv"
	}
	return &Store{rdb: rdb, prefix: prefix}
}

func (s *Store) key(userID string) string {
	return s.prefix + ":" + configKeyPrefix + ":" + userID
}

// Get loads the config for userID. ErrConfigNotFound when no document exists.
func (s *Store) Get(ctx context.Context, userID string) (*Config, error) {
	data, err := s.rdb.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: corrupt config document: %v", ErrStoreUnavailable, err)
	}
	return &cfg, nil
}

// Create persists cfg only if no document exists for the user yet.
func (s *Store) Create(ctx context.Context, cfg *Config) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}

	set, err := s.rdb.SetNX(ctx, s.key(cfg.UserID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !set {
		return ErrConfigExists
	}
	return nil
}

// Save writes cfg unconditionally. Last write wins; the caller re-reads
// before mutating, so concurrent writers can only clobber each other's
// timestamps and the most recent reset token, both tolerated.
func (s *Store) Save(ctx context.Context, cfg *Config) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}

	if err := s.rdb.Set(ctx, s.key(cfg.UserID), data, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
