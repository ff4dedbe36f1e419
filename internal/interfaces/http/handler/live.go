package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/todoboard/backend/internal/infrastructure/config"
	"github.com/todoboard/backend/internal/infrastructure/log"
	wshub "github.com/todoboard/backend/internal/infrastructure/websocket"
)

const (
	// writeWait 单次写超时
	writeWait = 10 * time.Second
	// pongWait 超过该时间未收到任何消息则断开
	pongWait = 60 * time.Second
	// pingPeriod 必须小于 pongWait
	pingPeriod = (pongWait * 9) / 10
	// maxMessageSize 客户端只发控制帧
	maxMessageSize = 512
)

// LiveHandler 待办列表实时推送
type LiveHandler struct {
	hub      *wshub.Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewLiveHandler 创建实时推送处理器
func NewLiveHandler(hub *wshub.Hub, cfg *config.WebSocketConfig) *LiveHandler {
	return &LiveHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin: func(r *http.Request) bool {
				return true // 本地服务允许所有来源
			},
		},
		logger: log.NewModuleLogger("http", "live_handler"),
	}
}

// Serve 升级为 WebSocket 并订阅列表变更
// @Summary 列表变更推送
// @Description WebSocket；每次写操作后推送 {"type":"todos.changed","reason":"todo.created","ids":[1]}
// @Tags 待办
// @Success 101 "Switching Protocols"
// @Router /todos/live [get]
func (h *LiveHandler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("Failed to upgrade connection",
			"error", err,
		)
		return
	}

	client := wshub.NewConnection(wshub.TopicTodos)
	if !h.hub.Register(client) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		_ = conn.Close()
		return
	}

	h.logger.Debug("Live client connected",
		"remote", c.Request.RemoteAddr,
	)

	go h.writePump(conn, client)
	go h.readPump(conn, client)
}

// readPump 只处理控制帧，连接断开时注销
func (h *LiveHandler) readPump(conn *websocket.Conn, client *wshub.Connection) {
	defer func() {
		h.hub.Unregister(client)
		_ = conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("Live connection read error",
					"error", err,
				)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}

// writePump 是连接上唯一的写入方
func (h *LiveHandler) writePump(conn *websocket.Conn, client *wshub.Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub 关闭了发送通道
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
