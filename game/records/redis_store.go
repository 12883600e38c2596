package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisPrefix = "maze:records"

	lockExpiry    = 5 * time.Second
	unlockTimeout = 2 * time.Second
)

// RedisStore keeps one sorted set per maze size. Scores are elapsed
// milliseconds; members are prefixed with the zero padded move count so
// that equal times order by moves.
type RedisStore struct {
	client *redis.Client
	locker *redsync.Redsync
	prefix string
}

// DialRedis connects to addr and verifies the connection
func DialRedis(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

// NewRedisStore wraps a connected client. An empty prefix uses "maze:records".
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	pool := goredis.NewPool(client)
	return &RedisStore{
		client: client,
		locker: redsync.New(pool),
		prefix: prefix,
	}
}

// Submit stores the record and reports whether it became the best for its size
func (rs *RedisStore) Submit(ctx context.Context, rec Record) (bool, error) {
	key := rs.sizeKey(rec.SizeKey())

	mutex := rs.locker.NewMutex(key+":lock", redsync.WithExpiry(lockExpiry))
	if err := mutex.LockContext(ctx); err != nil {
		return false, fmt.Errorf("lock %s: %w", key, err)
	}
	// Release even when the caller has gone away
	defer func() {
		unlockCtx, cancel := context.WithTimeout(context.Background(), unlockTimeout)
		defer cancel()
		_, _ = mutex.UnlockContext(unlockCtx)
	}()

	best := true
	current, err := rs.client.ZRange(ctx, key, 0, 0).Result()
	if err != nil {
		return false, err
	}
	if len(current) > 0 {
		prev, err := decodeMember(current[0])
		if err != nil {
			return false, err
		}
		best = Better(rec, prev)
	}

	member, err := encodeMember(rec)
	if err != nil {
		return false, err
	}

	_, err = rs.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, key, redis.Z{Score: float64(rec.ElapsedMs), Member: member})
		pipe.ZRemRangeByRank(ctx, key, DefaultTopN, -1)
		pipe.SAdd(ctx, rs.indexKey(), rec.SizeKey())
		return nil
	})
	if err != nil {
		return false, err
	}
	return best, nil
}

// Best returns the best record for a size
func (rs *RedisStore) Best(ctx context.Context, cols, rows int) (*Record, error) {
	top, err := rs.Top(ctx, cols, rows, 1)
	if err != nil {
		return nil, err
	}
	if len(top) == 0 {
		return nil, ErrNoRecord
	}
	return &top[0], nil
}

// Top returns up to limit records for a size, best first
func (rs *RedisStore) Top(ctx context.Context, cols, rows, limit int) ([]Record, error) {
	limit = clampLimit(limit)
	members, err := rs.client.ZRange(ctx, rs.sizeKey(SizeKey(cols, rows)), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	out := make([]Record, 0, len(members))
	for _, m := range members {
		rec, err := decodeMember(m)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// AllBest returns the best record of every size, ordered by grid area
func (rs *RedisStore) AllBest(ctx context.Context) ([]Record, error) {
	sizes, err := rs.client.SMembers(ctx, rs.indexKey()).Result()
	if err != nil {
		return nil, err
	}

	out := make([]Record, 0, len(sizes))
	for _, size := range sizes {
		cols, rows, err := ParseSizeKey(size)
		if err != nil {
			continue
		}
		rec, err := rs.Best(ctx, cols, rows)
		if errors.Is(err, ErrNoRecord) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	sortBySize(out)
	return out, nil
}

// Close closes the underlying client
func (rs *RedisStore) Close() error {
	return rs.client.Close()
}

func (rs *RedisStore) sizeKey(size string) string {
	return rs.prefix + ":" + size
}

func (rs *RedisStore) indexKey() string {
	return rs.prefix + ":sizes"
}

func encodeMember(rec Record) (string, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("failed to marshal record: %w", err)
	}
	return fmt.Sprintf("%010d|%s", rec.Moves, data), nil
}

func decodeMember(member string) (Record, error) {
	var rec Record
	_, payload, ok := strings.Cut(member, "|")
	if !ok {
		return rec, fmt.Errorf("malformed record member %q", member)
	}
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return rec, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return rec, nil
}
