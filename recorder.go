package main

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tankarena/archive"
	"tankarena/config"
)

// openBackend 按配置打开存档后端（同步写入）；none 返回 nil
func openBackend(cfg config.ArchiveConfig) (archive.Recorder, error) {
	switch cfg.Backend {
	case "", config.ArchiveNone:
		return nil, nil
	case config.ArchiveSQLite:
		return archive.OpenSQLite(cfg.SQLitePath)
	case config.ArchiveRedis:
		return archive.NewRedis(&archive.RedisConfig{
			Client:   redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}),
			MaxTurns: cfg.RedisMaxTurns,
			TTL:      time.Duration(cfg.RedisTTLMinutes) * time.Minute,
		})
	default:
		return nil, fmt.Errorf("unknown archive backend %q", cfg.Backend)
	}
}
