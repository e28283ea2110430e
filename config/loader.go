package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"tankarena/game"
)

//go:embed defaults/tankarena.yaml
var defaultYAML []byte

// LocalPath 未指定 --config 时尝试的本地配置
const LocalPath = "configs/tankarena.yaml"

// Load 加载配置
// 查找顺序：customPath -> ./configs/tankarena.yaml -> 内置默认
// 文件只需写出要覆盖的字段，其余沿用默认值
func Load(customPath string) (Config, error) {
	cfg := Default()

	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	if data, err := os.ReadFile(LocalPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", LocalPath, err)
		}
	}
	return cfg, nil
}

// Default 内置默认配置；内嵌 YAML 解析失败时退回硬编码值
func Default() Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		return fallback()
	}
	return cfg
}

func fallback() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080", StaticDir: "web", SendBuffer: 64},
		Log:    LogConfig{File: "app.log", MaxSizeMB: 10, MaxBackups: 3, MaxAgeDays: 7, Level: "debug"},
		Game: GameConfig{
			Map:              append([]string(nil), game.DefaultMap...),
			BreakableDensity: 0.10,
		},
		Archive: ArchiveConfig{Backend: ArchiveNone, QueueSize: 256},
	}
}
