package recorder

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"FXSignal/internal/model"
)

// DefaultRedisKey is the list holding the history, oldest first.
const DefaultRedisKey = "fxsignal:signals"

// RedisConfig configures the Redis history store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// RedisRecorder keeps the history in a capped Redis list so several service
// instances share one history.
type RedisRecorder struct {
	client *redis.Client
	key    string
	max    int
	logger *logrus.Entry
}

// NewRedisRecorder connects to Redis and pings the server.
func NewRedisRecorder(cfg RedisConfig, max int, logger *logrus.Logger) (*RedisRecorder, error) {
	if max <= 0 {
		max = DefaultMaxRecords
	}
	if cfg.Key == "" {
		cfg.Key = DefaultRedisKey
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log := logger.WithField("component", "redis")
	log.Infof("connected to %s", cfg.Addr)
	return &RedisRecorder{client: client, key: cfg.Key, max: max, logger: log}, nil
}

func (r *RedisRecorder) RecordSignal(ctx context.Context, rec *model.SignalRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, r.key, data)
		pipe.LTrim(ctx, r.key, int64(-r.max), -1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis append: %w", err)
	}
	return nil
}

func (r *RedisRecorder) Recent(ctx context.Context, instrument string, since time.Time) ([]model.SignalRecord, error) {
	raw, err := r.client.LRange(ctx, r.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis range: %w", err)
	}
	var out []model.SignalRecord
	for _, item := range raw {
		var rec model.SignalRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			r.logger.Warnf("skip undecodable history entry: %v", err)
			continue
		}
		if matches(&rec, instrument, since) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Len returns the length of the history list.
func (r *RedisRecorder) Len(ctx context.Context) (int64, error) {
	return r.client.LLen(ctx, r.key).Result()
}

func (r *RedisRecorder) Close() error {
	return r.client.Close()
}
