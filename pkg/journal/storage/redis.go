package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"mercator-hq/loupe/pkg/config"
	"mercator-hq/loupe/pkg/journal"
)

const (
	backendRedis = "redis"

	// redisField is the stream entry field holding the JSON exchange.
	redisField = "exchange"

	// redisBatch is the page size for stream scans.
	redisBatch = 200

	maxStreamSeq = uint64(1<<64 - 1)
)

// RedisStorage implements journal.Storage on a Redis stream. Entries are
// appended with server-assigned IDs, so the stream is ordered by the time
// the exchange was recorded.
type RedisStorage struct {
	client *redis.Client
	stream string
}

// NewRedisStorage connects to the configured Redis server and verifies the
// connection.
func NewRedisStorage(ctx context.Context, cfg config.RedisConfig) (*RedisStorage, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	s := NewRedisStorageWithClient(client, cfg.Stream)
	if err := s.Ping(ctx); err != nil {
		client.Close()
		return nil, err
	}

	return s, nil
}

// NewRedisStorageWithClient wraps an existing client.
func NewRedisStorageWithClient(client *redis.Client, stream string) *RedisStorage {
	return &RedisStorage{client: client, stream: stream}
}

// Store appends exchange to the stream.
func (s *RedisStorage) Store(ctx context.Context, exchange *journal.Exchange) error {
	data, err := json.Marshal(exchange)
	if err != nil {
		return journal.NewStorageError(backendRedis, "marshal", err)
	}

	err = s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]interface{}{redisField: string(data)},
	}).Err()
	if err != nil {
		return journal.NewStorageError(backendRedis, "store", err)
	}

	return nil
}

// Query scans the stream newest first, applying q's filters, until the
// limit is reached or the stream is exhausted.
func (s *RedisStorage) Query(ctx context.Context, q *journal.Query) ([]*journal.Exchange, error) {
	limit := q.EffectiveLimit()
	results := []*journal.Exchange{}
	end := "+"

	for len(results) < limit {
		messages, err := s.client.XRevRangeN(ctx, s.stream, end, "-", redisBatch).Result()
		if err != nil {
			return nil, journal.NewStorageError(backendRedis, "query", err)
		}

		for _, msg := range messages {
			exchange, err := decodeExchange(msg)
			if err != nil {
				return nil, journal.NewStorageError(backendRedis, "decode", err)
			}
			if q.Matches(exchange) {
				results = append(results, exchange)
				if len(results) == limit {
					break
				}
			}
		}

		if len(messages) < redisBatch {
			break
		}

		end, err = previousStreamID(messages[len(messages)-1].ID)
		if err != nil {
			return nil, journal.NewStorageError(backendRedis, "query", err)
		}
	}

	return results, nil
}

// Count returns the stream length.
func (s *RedisStorage) Count(ctx context.Context) (int64, error) {
	count, err := s.client.XLen(ctx, s.stream).Result()
	if err != nil {
		return 0, journal.NewStorageError(backendRedis, "count", err)
	}
	return count, nil
}

// DeleteBefore removes entries whose stream ID is older than cutoff. The ID
// timestamp is the record time, which is never earlier than the start time.
func (s *RedisStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	end := fmt.Sprintf("%d-%d", cutoff.UnixMilli()-1, maxStreamSeq)
	var deleted int64

	for {
		messages, err := s.client.XRangeN(ctx, s.stream, "-", end, redisBatch).Result()
		if err != nil {
			return deleted, journal.NewStorageError(backendRedis, "delete_before", err)
		}
		if len(messages) == 0 {
			return deleted, nil
		}

		ids := make([]string, len(messages))
		for i, msg := range messages {
			ids[i] = msg.ID
		}

		n, err := s.client.XDel(ctx, s.stream, ids...).Result()
		if err != nil {
			return deleted, journal.NewStorageError(backendRedis, "delete_before", err)
		}
		deleted += n

		if len(messages) < redisBatch {
			return deleted, nil
		}
	}
}

// Trim caps the stream at keep entries.
func (s *RedisStorage) Trim(ctx context.Context, keep int64) (int64, error) {
	if keep < 0 {
		keep = 0
	}

	deleted, err := s.client.XTrimMaxLen(ctx, s.stream, keep).Result()
	if err != nil {
		return 0, journal.NewStorageError(backendRedis, "trim", err)
	}
	return deleted, nil
}

// Ping verifies the Redis connection.
func (s *RedisStorage) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return journal.NewStorageError(backendRedis, "ping", err)
	}
	return nil
}

// Close closes the Redis client.
func (s *RedisStorage) Close() error {
	if err := s.client.Close(); err != nil {
		return journal.NewStorageError(backendRedis, "close", err)
	}
	return nil
}

func decodeExchange(msg redis.XMessage) (*journal.Exchange, error) {
	raw, ok := msg.Values[redisField].(string)
	if !ok {
		return nil, fmt.Errorf("stream entry %s has no %q field", msg.ID, redisField)
	}

	var exchange journal.Exchange
	if err := json.Unmarshal([]byte(raw), &exchange); err != nil {
		return nil, fmt.Errorf("stream entry %s: %w", msg.ID, err)
	}
	return &exchange, nil
}

// previousStreamID returns the largest stream ID strictly lower than id
// ("<ms>-<seq>").
func previousStreamID(id string) (string, error) {
	msPart, seqPart, ok := strings.Cut(id, "-")
	if !ok {
		return "", fmt.Errorf("malformed stream id %q", id)
	}

	ms, err := strconv.ParseUint(msPart, 10, 64)
	if err != nil {
		return "", fmt.Errorf("malformed stream id %q: %w", id, err)
	}
	seq, err := strconv.ParseUint(seqPart, 10, 64)
	if err != nil {
		return "", fmt.Errorf("malformed stream id %q: %w", id, err)
	}

	if seq > 0 {
		return fmt.Sprintf("%d-%d", ms, seq-1), nil
	}
	if ms == 0 {
		return "0-0", nil
	}
	return fmt.Sprintf("%d-%d", ms-1, maxStreamSeq), nil
}
