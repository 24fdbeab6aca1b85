package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"kavak-agent/internal/metrics"
	"kavak-agent/internal/model"
	"kavak-agent/internal/service"
)

// RedisStateOptions configures a RedisStateStore.
type RedisStateOptions struct {
	Prefix     string
	TTL        time.Duration
	MaxRetries int
}

// RedisStateStore keeps conversation state in Redis as JSON. Update uses
// WATCH/MULTI so concurrent turns on one channel never overwrite each other.
type RedisStateStore struct {
	client     *redis.Client
	prefix     string
	ttl        time.Duration
	maxRetries int
	logger     *zap.Logger
}

// NewRedisClient connects to Redis and checks the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// NewRedisStateStore creates a new Redis-backed state store
func NewRedisStateStore(client *redis.Client, opts RedisStateOptions, logger *zap.Logger) *RedisStateStore {
	if opts.Prefix == "" {
		opts.Prefix = "kavak:conv:"
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStateStore{
		client:     client,
		prefix:     opts.Prefix,
		ttl:        opts.TTL,
		maxRetries: opts.MaxRetries,
		logger:     logger,
	}
}

func (s *RedisStateStore) key(channelID string) string {
	return s.prefix + channelID
}

func decodeConversation(channelID string, data []byte) (*model.ConversationContext, error) {
	conv := model.NewConversationContext(channelID)
	if err := json.Unmarshal(data, conv); err != nil {
		return nil, fmt.Errorf("failed to decode conversation %s: %w", channelID, err)
	}
	if conv.DisplayIndex == nil {
		conv.DisplayIndex = map[int]string{}
	}
	conv.ChannelID = channelID
	return conv, nil
}

// Get returns the channel's state, or a fresh one.
func (s *RedisStateStore) Get(ctx context.Context, channelID string) (*model.ConversationContext, error) {
	data, err := s.client.Get(ctx, s.key(channelID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.NewConversationContext(channelID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return decodeConversation(channelID, data)
}

// Update reads, mutates and writes the channel's state in one optimistic
// transaction. fn may run more than once when another writer wins the race.
// After MaxRetries lost races it returns service.ErrStateConflict.
func (s *RedisStateStore) Update(ctx context.Context, channelID string, fn func(*model.ConversationContext) error) error {
	key := s.key(channelID)

	txf := func(tx *redis.Tx) error {
		conv := model.NewConversationContext(channelID)
		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return fmt.Errorf("redis get: %w", err)
		default:
			if conv, err = decodeConversation(channelID, data); err != nil {
				return err
			}
		}

		if err := fn(conv); err != nil {
			return err
		}

		out, err := json.Marshal(conv)
		if err != nil {
			return fmt.Errorf("failed to encode conversation %s: %w", channelID, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, s.ttl)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		metrics.StateConflicts.Inc()
		s.logger.Debug("conversation state conflict, retrying",
			zap.String("channel", channelID),
			zap.Int("attempt", attempt+1),
		)
	}
	return fmt.Errorf("channel %s: %w", channelID, service.ErrStateConflict)
}

var _ service.StateStore = (*RedisStateStore)(nil)
