package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// 环境变量名
const (
	// EnvConfigFile 配置文件路径
	EnvConfigFile = "TODOBOARD_CONFIG"
	// EnvHTTPPort HTTP 端口（如 :19970）
	EnvHTTPPort = "TODOBOARD_HTTP_PORT"
	// EnvDBDriver 数据库驱动：sqlite, mysql
	EnvDBDriver = "TODOBOARD_DB_DRIVER"
	// EnvDBPath SQLite 数据库文件路径
	EnvDBPath = "TODOBOARD_DB_PATH"
	// EnvDBDSN MySQL DSN
	EnvDBDSN = "TODOBOARD_DB_DSN"
	// EnvAssetVersion 前端资源版本
	EnvAssetVersion = "TODOBOARD_ASSET_VERSION"
	// EnvDiscovery 是否启用局域网广播
	EnvDiscovery = "TODOBOARD_DISCOVERY"
)

// 数据库驱动
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Config 应用配置
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Database  DatabaseConfig  `yaml:"database" toml:"database"`
	WebSocket WebSocketConfig `yaml:"websocket" toml:"websocket"`
	Render    RenderConfig    `yaml:"render" toml:"render"`
	Discovery DiscoveryConfig `yaml:"discovery" toml:"discovery"`
	Log       LogConfig       `yaml:"log" toml:"log"`

	// path 实际加载的配置文件（未加载时为空）
	path string
}

// ServerConfig 服务器配置
type ServerConfig struct {
	HTTPPort string `yaml:"http_port" toml:"http_port"` // 固定端口，用于单例锁
	Mode     string `yaml:"mode" toml:"mode"`           // gin 模式：debug, release, test
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver string `yaml:"driver" toml:"driver"`
	// Path SQLite 文件路径，留空表示 <数据目录>/todoboard.db
	Path string `yaml:"path" toml:"path"`
	// DSN MySQL 连接串，如 user:pass@tcp(127.0.0.1:3306)/todoboard
	DSN string `yaml:"dsn" toml:"dsn"`
}

// WebSocketConfig WebSocket 配置
type WebSocketConfig struct {
	ReadBufferSize  int `yaml:"read_buffer_size" toml:"read_buffer_size"`
	WriteBufferSize int `yaml:"write_buffer_size" toml:"write_buffer_size"`
}

// RenderConfig 页面渲染配置
type RenderConfig struct {
	// AppName 页面标题
	AppName string `yaml:"app_name" toml:"app_name"`
	// AssetVersion 前端资源版本，与客户端 X-Inertia-Version 不一致时强制整页刷新
	AssetVersion string `yaml:"asset_version" toml:"asset_version"`
	// ScriptURL 前端入口脚本
	ScriptURL string `yaml:"script_url" toml:"script_url"`
}

// DiscoveryConfig 局域网服务发现配置
type DiscoveryConfig struct {
	Enabled      bool   `yaml:"enabled" toml:"enabled"`
	InstanceName string `yaml:"instance_name" toml:"instance_name"`
}

// LogConfig 日志配置（仅支持热更新的部分）
type LogConfig struct {
	Level string `yaml:"level" toml:"level"`
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort: ":19970",
			Mode:     "release",
		},
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			Path:   "",
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		Render: RenderConfig{
			AppName:      "Todos",
			AssetVersion: "1",
			ScriptURL:    "/build/app.js",
		},
		Discovery: DiscoveryConfig{
			Enabled:      false,
			InstanceName: "todoboard",
		},
	}
}

// NewConfig 创建配置：默认值 -> 配置文件 -> 环境变量
// 配置文件读取失败时回退到默认值
func NewConfig() *Config {
	cfg := Default()

	if path := ResolvePath(); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			// 日志系统依赖配置，这里只能输出到 stderr
			_, _ = os.Stderr.WriteString("failed to load config file " + path + ": " + err.Error() + "\n")
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg
}

// Path 返回实际加载的配置文件路径
func (c *Config) Path() string {
	return c.path
}

// applyEnv 使用环境变量覆盖配置
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvHTTPPort); v != "" {
		c.Server.HTTPPort = normalizePort(v)
	}
	if v := os.Getenv(EnvDBDriver); v != "" {
		c.Database.Driver = strings.ToLower(v)
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv(EnvDBDSN); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(EnvAssetVersion); v != "" {
		c.Render.AssetVersion = v
	}
	if v := os.Getenv(EnvDiscovery); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Discovery.Enabled = enabled
		}
	}
}

// applyDefaults 补全缺失的配置项
func (c *Config) applyDefaults() {
	def := Default()
	if c.Server.HTTPPort == "" {
		c.Server.HTTPPort = def.Server.HTTPPort
	}
	c.Server.HTTPPort = normalizePort(c.Server.HTTPPort)
	if c.Server.Mode == "" {
		c.Server.Mode = def.Server.Mode
	}
	if c.Database.Driver == "" {
		c.Database.Driver = def.Database.Driver
	}
	if c.Database.Driver == DriverSQLite && c.Database.Path == "" {
		c.Database.Path = filepath.Join(GetDataDir(), "todoboard.db")
	}
	if c.WebSocket.ReadBufferSize <= 0 {
		c.WebSocket.ReadBufferSize = def.WebSocket.ReadBufferSize
	}
	if c.WebSocket.WriteBufferSize <= 0 {
		c.WebSocket.WriteBufferSize = def.WebSocket.WriteBufferSize
	}
	if c.Render.AppName == "" {
		c.Render.AppName = def.Render.AppName
	}
	if c.Render.ScriptURL == "" {
		c.Render.ScriptURL = def.Render.ScriptURL
	}
	if c.Discovery.InstanceName == "" {
		c.Discovery.InstanceName = def.Discovery.InstanceName
	}
}

// Port 返回数字端口
func (s *ServerConfig) Port() int {
	port, err := strconv.Atoi(strings.TrimPrefix(s.HTTPPort, ":"))
	if err != nil {
		return 0
	}
	return port
}

// normalizePort 将 "19970" 规范为 ":19970"
func normalizePort(port string) string {
	if port == "" || strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}

// NewDatabaseConfig 创建数据库配置
func NewDatabaseConfig(cfg *Config) *DatabaseConfig {
	return &cfg.Database
}

// NewServerConfig 创建服务器配置
func NewServerConfig(cfg *Config) *ServerConfig {
	return &cfg.Server
}

// NewWebSocketConfig 创建 WebSocket 配置
func NewWebSocketConfig(cfg *Config) *WebSocketConfig {
	return &cfg.WebSocket
}

// NewRenderConfig 创建渲染配置
func NewRenderConfig(cfg *Config) *RenderConfig {
	return &cfg.Render
}

// NewDiscoveryConfig 创建服务发现配置
func NewDiscoveryConfig(cfg *Config) *DiscoveryConfig {
	return &cfg.Discovery
}
