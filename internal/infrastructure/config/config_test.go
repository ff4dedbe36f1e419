package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate 将数据目录与配置文件指向临时目录
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	ResetDataDir()
	t.Setenv(EnvDataDir, dir)
	t.Setenv(EnvConfigFile, "")
	t.Setenv(EnvHTTPPort, "")
	t.Setenv(EnvDBDriver, "")
	t.Setenv(EnvDBPath, "")
	t.Setenv(EnvDBDSN, "")
	t.Setenv(EnvAssetVersion, "")
	t.Setenv(EnvDiscovery, "")
	t.Cleanup(ResetDataDir)
	return dir
}

func TestNewConfig_Defaults(t *testing.T) {
	dir := isolate(t)

	cfg := NewConfig()
	assert.Equal(t, ":19970", cfg.Server.HTTPPort)
	assert.Equal(t, 19970, cfg.Server.Port())
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, filepath.Join(dir, "todoboard.db"), cfg.Database.Path)
	assert.Equal(t, "1", cfg.Render.AssetVersion)
	assert.False(t, cfg.Discovery.Enabled)
	assert.Empty(t, cfg.Path())
}

func TestNewConfig_EnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv(EnvHTTPPort, "29970")
	t.Setenv(EnvDBDriver, "MySQL")
	t.Setenv(EnvDBDSN, "u:p@tcp(127.0.0.1:3306)/todos")
	t.Setenv(EnvDiscovery, "true")

	cfg := NewConfig()
	assert.Equal(t, ":29970", cfg.Server.HTTPPort, "端口应补全冒号")
	assert.Equal(t, DriverMySQL, cfg.Database.Driver)
	assert.Equal(t, "u:p@tcp(127.0.0.1:3306)/todos", cfg.Database.DSN)
	assert.Empty(t, cfg.Database.Path, "MySQL 不需要文件路径")
	assert.True(t, cfg.Discovery.Enabled)
}

func TestNewConfig_YAMLFile(t *testing.T) {
	dir := isolate(t)

	content := `
server:
  http_port: ":18000"
render:
  asset_version: "abc123"
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644))

	cfg := NewConfig()
	assert.Equal(t, ":18000", cfg.Server.HTTPPort)
	assert.Equal(t, "abc123", cfg.Render.AssetVersion)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "Todos", cfg.Render.AppName, "未配置的字段应保留默认值")
	assert.Equal(t, filepath.Join(dir, "config.yaml"), cfg.Path())
}

func TestNewConfig_TOMLFile(t *testing.T) {
	dir := isolate(t)

	content := `
[database]
driver = "sqlite"
path = "/tmp/custom.db"

[discovery]
enabled = true
instance_name = "office"
`
	path := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv(EnvConfigFile, path)

	cfg := NewConfig()
	assert.Equal(t, "/tmp/custom.db", cfg.Database.Path)
	assert.True(t, cfg.Discovery.Enabled)
	assert.Equal(t, "office", cfg.Discovery.InstanceName)
}

func TestNewConfig_EnvWinsOverFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte("server:\n  http_port: \":18000\"\n"), 0644))
	t.Setenv(EnvHTTPPort, ":18001")

	cfg := NewConfig()
	assert.Equal(t, ":18001", cfg.Server.HTTPPort)
}

func TestNewConfig_BrokenFileFallsBack(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: [unclosed"), 0644))

	cfg := NewConfig()
	assert.Equal(t, ":19970", cfg.Server.HTTPPort)
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}
