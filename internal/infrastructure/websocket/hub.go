package websocket

import (
	"encoding/json"
	"sync"
)

// TopicTodos 待办列表实时推送主题
const TopicTodos = "todos"

// Hub WebSocket 连接管理中心
type Hub struct {
	// 按主题分组的连接
	topics map[string]map[*Connection]bool
	// 注册连接
	register chan *Connection
	// 注销连接
	unregister chan *Connection
	// 广播消息
	broadcast chan *Message
	// 统计请求
	count chan countRequest
	done  chan struct{}
	once  sync.Once
}

// Connection WebSocket 连接
type Connection struct {
	Topic string
	Send  chan []byte
}

// NewConnection 创建订阅指定主题的连接
func NewConnection(topic string) *Connection {
	return &Connection{
		Topic: topic,
		Send:  make(chan []byte, 64),
	}
}

// Message 消息
type Message struct {
	Topic string
	Data  []byte
}

type countRequest struct {
	topic string
	reply chan int
}

// NewHub 创建 Hub
func NewHub() *Hub {
	return &Hub{
		topics:     make(map[string]map[*Connection]bool),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *Message),
		count:      make(chan countRequest),
		done:       make(chan struct{}),
	}
}

// Run 运行 Hub（需要在 goroutine 中运行），连接表只在此 goroutine 内访问
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			for _, conns := range h.topics {
				for conn := range conns {
					close(conn.Send)
				}
			}
			h.topics = make(map[string]map[*Connection]bool)
			return

		case conn := <-h.register:
			if h.topics[conn.Topic] == nil {
				h.topics[conn.Topic] = make(map[*Connection]bool)
			}
			h.topics[conn.Topic][conn] = true

		case conn := <-h.unregister:
			h.remove(conn)

		case msg := <-h.broadcast:
			for conn := range h.topics[msg.Topic] {
				select {
				case conn.Send <- msg.Data:
				default:
					// 慢连接直接踢掉
					h.remove(conn)
				}
			}

		case req := <-h.count:
			req.reply <- len(h.topics[req.topic])
		}
	}
}

func (h *Hub) remove(conn *Connection) {
	conns, ok := h.topics[conn.Topic]
	if !ok {
		return
	}
	if _, ok := conns[conn]; !ok {
		return
	}
	delete(conns, conn)
	close(conn.Send)
	if len(conns) == 0 {
		delete(h.topics, conn.Topic)
	}
}

// Start 启动 Hub（启动后台 goroutine）
func (h *Hub) Start() {
	go h.Run()
}

// Stop 停止 Hub 并关闭所有连接的发送通道
func (h *Hub) Stop() {
	h.once.Do(func() { close(h.done) })
}

// Register 注册连接，Hub 已停止时返回 false
func (h *Hub) Register(conn *Connection) bool {
	select {
	case h.register <- conn:
		return true
	case <-h.done:
		return false
	}
}

// Unregister 注销连接
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Broadcast 向指定主题广播消息
func (h *Hub) Broadcast(topic string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- &Message{Topic: topic, Data: jsonData}:
	case <-h.done:
	}
	return nil
}

// Count 返回主题下的连接数
func (h *Hub) Count(topic string) int {
	reply := make(chan int, 1)
	select {
	case h.count <- countRequest{topic: topic, reply: reply}:
		return <-reply
	case <-h.done:
		return 0
	}
}
