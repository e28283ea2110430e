package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "tankarena:turns:"

// RedisConfig Redis 后端配置
type RedisConfig struct {
	Client redis.UniversalClient
	// 每个房间最多保留的回合数，0 表示不裁剪
	MaxTurns int64
	// 房间列表的过期时间，0 表示不过期
	TTL time.Duration
}

// Validate 检查必需依赖
func (c *RedisConfig) Validate() error {
	if c.Client == nil {
		return errors.New("archive: redis client is required")
	}
	if c.MaxTurns < 0 {
		return errors.New("archive: max turns must not be negative")
	}
	return nil
}

// Redis 每个房间一个有上限的列表，最新的在尾部
type Redis struct {
	client   redis.UniversalClient
	maxTurns int64
	ttl      time.Duration
}

// NewRedis 创建 Redis 存档后端
func NewRedis(cfg *RedisConfig) (*Redis, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Redis{client: cfg.Client, maxTurns: cfg.MaxTurns, ttl: cfg.TTL}, nil
}

func (r *Redis) key(roomID string) string { return keyPrefix + roomID }

// Record RPUSH + LTRIM（+ EXPIRE）在同一个事务管道中执行
func (r *Redis) Record(ctx context.Context, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("archive: cannot encode entry: %w", err)
	}
	key := r.key(e.RoomID)
	pipe := r.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	if r.maxTurns > 0 {
		pipe.LTrim(ctx, key, -r.maxTurns, -1)
	}
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("archive: cannot store turn in redis: %w", err)
	}
	return nil
}

// History 最近 limit 条，按写入顺序返回
func (r *Redis) History(ctx context.Context, roomID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	items, err := r.client.LRange(ctx, r.key(roomID), int64(-limit), -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("archive: cannot read turns from redis: %w", err)
	}
	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		var e Entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("archive: corrupt entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (r *Redis) Close() error { return r.client.Close() }

var _ Recorder = (*Redis)(nil)
