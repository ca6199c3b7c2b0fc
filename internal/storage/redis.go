package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps a transcript in a Redis list at carl:history:<session>.
type RedisStore struct {
	client redis.UniversalClient
	key    string
}

// NewRedisStore returns a RedisStore using client.
func NewRedisStore(client redis.UniversalClient, session string) *RedisStore {
	return &RedisStore{client: client, key: fmt.Sprintf("carl:history:%s", session)}
}

func (s *RedisStore) Load(ctx context.Context) ([]string, error) {
	lines, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return []string{}, fmt.Errorf("failed to read history list: %w", err)
	}
	if lines == nil {
		lines = []string{}
	}
	return lines, nil
}

func (s *RedisStore) Save(ctx context.Context, lines []string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		if len(lines) > 0 {
			values := make([]any, len(lines))
			for i, line := range lines {
				values[i] = line
			}
			pipe.RPush(ctx, s.key, values...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write history list: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
