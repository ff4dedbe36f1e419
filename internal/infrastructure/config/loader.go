package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// 按顺序查找的配置文件名
var configFileNames = []string{"config.yaml", "config.yml", "config.toml"}

// ResolvePath 查找配置文件
// 优先使用 TODOBOARD_CONFIG，其次为数据目录下的 config.yaml / config.yml / config.toml
// 找不到时返回空字符串
func ResolvePath() string {
	if path := os.Getenv(EnvConfigFile); path != "" {
		return path
	}
	dir := GetDataDir()
	for _, name := range configFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// LoadFile 读取配置文件并覆盖当前配置，格式由扩展名决定
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse yaml config: %w", err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), c); err != nil {
			return fmt.Errorf("failed to parse toml config: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config format: %s", filepath.Ext(path))
	}

	c.path = path
	return nil
}

// Load 从指定文件加载完整配置（默认值 + 文件 + 环境变量）
func Load(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.LoadFile(path); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}
