package kvstore

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/extra/rediscensus/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis backs the store with a redis instance shared between page contexts.
type Redis struct {
	client *redis.Client
	sugar  *zap.SugaredLogger
}

// ConnectRedis dials a redis instance and verifies it with a ping.
func ConnectRedis(addr, username, password string, sugar *zap.SugaredLogger) (*redis.Client, error) {
	options := &redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
		DB:       0,

		DialTimeout:  2 * time.Second,
		ReadTimeout:  1500 * time.Millisecond,
		WriteTimeout: 1500 * time.Millisecond,

		ConnMaxIdleTime: 240 * time.Second,
	}

	rdb := redis.NewClient(options)
	rdb.AddHook(rediscensus.NewTracingHook())

	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		sugar.Errorw(
			"fail to connect to redis",
			"redisAddr", addr,
			"redisUser", username,
			"err", err,
		)
		return nil, errors.Wrap(err, "ping redis")
	}

	sugar.Infow("redis store connected", "redisAddr", addr)
	return rdb, nil
}

func NewRedis(client *redis.Client, sugar *zap.SugaredLogger) *Redis {
	return &Redis{client: client, sugar: sugar}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		r.sugar.Warnw("GET redis failed", "key", key, "err", err)
		return nil, errors.Wrapf(err, "get key %q", key)
	}
	return val, nil
}

func (r *Redis) Set(ctx context.Context, key string, val []byte) error {
	// 0 means no expiry; the log grows for the lifetime of the store.
	if _, err := r.client.Set(ctx, key, val, 0).Result(); err != nil {
		r.sugar.Warnw("SET redis failed", "key", key, "err", err)
		return errors.Wrapf(err, "set key %q", key)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if _, err := r.client.Del(ctx, key).Result(); err != nil {
		r.sugar.Warnw("DEL redis failed", "key", key, "err", err)
		return errors.Wrapf(err, "delete key %q", key)
	}
	return nil
}
