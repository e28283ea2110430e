// Package config 负责加载服务端 YAML 配置（内置默认值，可被文件与命令行覆盖）
package config

import (
	"fmt"

	"tankarena/game"
)

// Config 顶层配置
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Game    GameConfig    `yaml:"game"`
	Archive ArchiveConfig `yaml:"archive"`
}

// ServerConfig HTTP / WebSocket 监听配置
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
	// 每个连接发送队列长度，满则丢弃
	SendBuffer int `yaml:"send_buffer"`
	// 为空表示允许所有来源
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// LogConfig zap + lumberjack 滚动日志配置
type LogConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
	Level      string `yaml:"level"` // debug|info|warn|error
	Console    bool   `yaml:"console"`
}

// GameConfig 新房间使用的地图与规则参数
type GameConfig struct {
	Map              []string    `yaml:"map"`
	BreakableDensity float64     `yaml:"breakable_density"`
	Seed             int64       `yaml:"seed"` // 0 = 按时间随机
	SpawnA           *game.Point `yaml:"spawn_a"`
	SpawnB           *game.Point `yaml:"spawn_b"`
}

// ArchiveConfig 回合存档后端
type ArchiveConfig struct {
	Backend         string `yaml:"backend"` // none|sqlite|redis
	SQLitePath      string `yaml:"sqlite_path"`
	RedisAddr       string `yaml:"redis_addr"`
	RedisMaxTurns   int64  `yaml:"redis_max_turns"`
	RedisTTLMinutes int    `yaml:"redis_ttl_minutes"`
	QueueSize       int    `yaml:"queue_size"`
}

const (
	ArchiveNone   = "none"
	ArchiveSQLite = "sqlite"
	ArchiveRedis  = "redis"
)

// ToGame 转换为引擎的房间配置
func (g GameConfig) ToGame() game.Config {
	return game.Config{
		Map:              g.Map,
		BreakableDensity: g.BreakableDensity,
		SpawnA:           g.SpawnA,
		SpawnB:           g.SpawnB,
	}
}

// Validate 校验配置；地图与出生点交给引擎检查
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("config: server.addr is required")
	}
	if c.Game.BreakableDensity < 0 || c.Game.BreakableDensity > 1 {
		return fmt.Errorf("config: game.breakable_density %v not in [0,1]", c.Game.BreakableDensity)
	}
	if err := c.Game.ToGame().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch c.Archive.Backend {
	case "", ArchiveNone:
	case ArchiveSQLite:
		if c.Archive.SQLitePath == "" {
			return fmt.Errorf("config: archive.sqlite_path is required for sqlite backend")
		}
	case ArchiveRedis:
		if c.Archive.RedisAddr == "" {
			return fmt.Errorf("config: archive.redis_addr is required for redis backend")
		}
	default:
		return fmt.Errorf("config: unknown archive backend %q", c.Archive.Backend)
	}
	return nil
}
