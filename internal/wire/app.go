package wire

import (
	"database/sql"
	"log/slog"
	"net"

	"github.com/todoboard/backend/internal/domain/events"
	"github.com/todoboard/backend/internal/infrastructure/config"
	"github.com/todoboard/backend/internal/infrastructure/discovery"
	applog "github.com/todoboard/backend/internal/infrastructure/log"
	"github.com/todoboard/backend/internal/infrastructure/notification"
	"github.com/todoboard/backend/internal/infrastructure/websocket"
	"github.com/todoboard/backend/internal/interfaces"
)

// App 应用主结构，组合所有服务
type App struct {
	HTTPServer *interfaces.HTTPServer
	MCPServer  *interfaces.MCPServer

	cfg        *config.Config
	wsHub      *websocket.Hub
	livePusher *notification.LivePusher
	eventBus   events.EventBus
	advertiser *discovery.Advertiser
	cfgWatcher *config.Watcher
	db         *sql.DB
	logger     *slog.Logger
}

// NewApp 创建应用实例
func NewApp(
	cfg *config.Config,
	httpServer *interfaces.HTTPServer,
	mcpServer *interfaces.MCPServer,
	wsHub *websocket.Hub,
	livePusher *notification.LivePusher,
	eventBus events.EventBus,
	advertiser *discovery.Advertiser,
	cfgWatcher *config.Watcher,
	db *sql.DB,
) *App {
	return &App{
		HTTPServer: httpServer,
		MCPServer:  mcpServer,
		cfg:        cfg,
		wsHub:      wsHub,
		livePusher: livePusher,
		eventBus:   eventBus,
		advertiser: advertiser,
		cfgWatcher: cfgWatcher,
		db:         db,
		logger:     applog.NewModuleLogger("app", "main"),
	}
}

// Start 启动所有服务
// listener 为单例锁占用的端口，为 nil 时由 HTTP 服务器自行监听
func (a *App) Start(listener net.Listener) error {
	a.logger.Info("Starting todoboard backend application",
		"config", a.cfg.Path(),
		"db_driver", a.cfg.Database.Driver,
	)

	applog.SetLevel(a.cfg.Log.Level)

	// 配置文件热更新：目前只应用日志级别
	if a.cfgWatcher != nil {
		a.cfgWatcher.OnChange(func(cfg *config.Config) {
			applog.SetLevel(cfg.Log.Level)
			a.logger.Info("Configuration reloaded",
				"log_level", applog.Level().String(),
			)
		})
		if err := a.cfgWatcher.Start(); err != nil {
			a.logger.Error("Failed to start config watcher",
				"error", err,
			)
		}
	}

	// 启动 WebSocket Hub 并把待办事件转发给订阅者
	a.wsHub.Start()
	a.livePusher.Start()

	// 启动 HTTP 服务器（goroutine）
	go func() {
		var err error
		if listener != nil {
			err = a.HTTPServer.Serve(listener)
		} else {
			err = a.HTTPServer.Start()
		}
		if err != nil {
			a.logger.Error("Failed to start HTTP server",
				"error", err,
			)
		}
	}()

	// 局域网广播（未启用时为空操作）
	if a.advertiser != nil {
		if err := a.advertiser.Start(a.cfg.Render.AssetVersion); err != nil {
			a.logger.Warn("Failed to start mDNS advertiser",
				"error", err,
			)
		}
	}

	a.logger.Info("Todoboard backend application started successfully",
		"port", a.HTTPServer.Addr(),
	)

	// MCP 服务器通过 HTTP Handler 提供服务，已在 HTTP 服务器中注册 /mcp/sse 端点
	return nil
}

// Stop 停止所有服务
func (a *App) Stop() error {
	a.logger.Info("Stopping todoboard backend application")

	if a.advertiser != nil {
		a.advertiser.Stop()
	}

	if a.cfgWatcher != nil {
		a.cfgWatcher.Stop()
	}

	if err := a.HTTPServer.Stop(); err != nil {
		a.logger.Error("Failed to stop HTTP server",
			"error", err,
		)
		return err
	}

	// HTTP 停止后不再产生新事件，等待已发布的事件推送完成
	a.livePusher.Stop()
	if a.eventBus != nil {
		a.eventBus.Close()
	}
	a.wsHub.Stop()

	// 关闭数据库连接
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("Failed to close database connection",
				"error", err,
			)
			return err
		}
	}

	a.logger.Info("Todoboard backend application stopped successfully")

	return nil
}
