package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wricardo/maze-game/game/service"
)

// DefaultRedisPrefix namespaces session keys
const DefaultRedisPrefix = "maze:sessions"

// RedisPersistence implements SessionPersistence with one Redis string per
// session and a set indexing the stored IDs
type RedisPersistence struct {
	client  *redis.Client
	prefix  string
	ttl     time.Duration
	timeout time.Duration
	codec   sessionCodec
}

// NewRedisPersistence creates a Redis-backed persistence layer. A zero ttl
// keeps sessions until they are deleted.
func NewRedisPersistence(client *redis.Client, prefix string, ttl time.Duration, configManager service.ConfigManager) *RedisPersistence {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisPersistence{
		client:  client,
		prefix:  prefix,
		ttl:     ttl,
		timeout: 5 * time.Second,
		codec:   sessionCodec{configManager: configManager},
	}
}

func (rp *RedisPersistence) key(id string) string {
	return rp.prefix + ":" + strings.ToLower(id)
}

func (rp *RedisPersistence) indexKey() string {
	return rp.prefix + ":index"
}

func (rp *RedisPersistence) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), rp.timeout)
}

// Save writes the session and adds it to the index
func (rp *RedisPersistence) Save(session *service.Session) error {
	jsonData, err := rp.codec.encode(session)
	if err != nil {
		return err
	}

	ctx, cancel := rp.ctx()
	defer cancel()

	_, err = rp.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, rp.key(session.ID), jsonData, rp.ttl)
		pipe.SAdd(ctx, rp.indexKey(), strings.ToLower(session.ID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store session %s: %w", session.ID, err)
	}
	return nil
}

// Load retrieves a session by ID
func (rp *RedisPersistence) Load(id string) (*service.Session, error) {
	ctx, cancel := rp.ctx()
	defer cancel()

	jsonData, err := rp.client.Get(ctx, rp.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session %s: %w", id, err)
	}

	return rp.codec.decode(jsonData)
}

// Delete removes a session and its index entry
func (rp *RedisPersistence) Delete(id string) error {
	ctx, cancel := rp.ctx()
	defer cancel()

	removed, err := rp.client.Del(ctx, rp.key(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	rp.client.SRem(ctx, rp.indexKey(), strings.ToLower(id))

	if removed == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListAll returns the indexed session IDs whose keys still exist. Index
// entries of expired sessions are pruned.
func (rp *RedisPersistence) ListAll() ([]string, error) {
	ctx, cancel := rp.ctx()
	defer cancel()

	ids, err := rp.client.SMembers(ctx, rp.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	live := make([]string, 0, len(ids))
	for _, id := range ids {
		n, err := rp.client.Exists(ctx, rp.key(id)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to check session %s: %w", id, err)
		}
		if n == 0 {
			rp.client.SRem(ctx, rp.indexKey(), id)
			continue
		}
		live = append(live, id)
	}

	sort.Strings(live)
	return live, nil
}

// Exists checks if a session is stored
func (rp *RedisPersistence) Exists(id string) bool {
	ctx, cancel := rp.ctx()
	defer cancel()

	n, err := rp.client.Exists(ctx, rp.key(id)).Result()
	return err == nil && n > 0
}
