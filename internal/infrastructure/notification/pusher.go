package notification

import (
	"log/slog"
	"sync"

	"github.com/todoboard/backend/internal/domain/events"
	"github.com/todoboard/backend/internal/infrastructure/log"
	"github.com/todoboard/backend/internal/infrastructure/websocket"
)

// MessageTypeTodosChanged 列表变更推送消息类型
const MessageTypeTodosChanged = "todos.changed"

// TodosChanged 推送给浏览器的列表变更消息，客户端收到后重新拉取列表
type TodosChanged struct {
	Type   string  `json:"type"`
	Reason string  `json:"reason"`
	IDs    []int64 `json:"ids"`
}

// Broadcaster 按主题广播
type Broadcaster interface {
	Broadcast(topic string, data interface{}) error
}

// LivePusher 把待办领域事件转发给 WebSocket 订阅者
type LivePusher struct {
	bus         events.EventBus
	broadcaster Broadcaster
	logger      *slog.Logger

	mu          sync.Mutex
	unsubscribe func()
}

// NewLivePusher 创建实时推送器
func NewLivePusher(bus events.EventBus, hub *websocket.Hub) *LivePusher {
	return newLivePusher(bus, hub)
}

func newLivePusher(bus events.EventBus, broadcaster Broadcaster) *LivePusher {
	return &LivePusher{
		bus:         bus,
		broadcaster: broadcaster,
		logger:      log.NewModuleLogger("notification", "live_pusher"),
	}
}

// Start 订阅待办事件
func (p *LivePusher) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.unsubscribe != nil {
		return
	}
	p.unsubscribe = p.bus.SubscribeMultiple(events.AllTodoEventTypes, events.HandlerFunc(p.HandleEvent))
}

// Stop 取消订阅
func (p *LivePusher) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.unsubscribe != nil {
		p.unsubscribe()
		p.unsubscribe = nil
	}
}

// HandleEvent 实现 events.Handler
func (p *LivePusher) HandleEvent(event events.Event) error {
	msg := TodosChanged{
		Type:   MessageTypeTodosChanged,
		Reason: string(event.Type()),
		IDs:    []int64{},
	}
	if te, ok := event.(*events.TodoEvent); ok && te.IDs != nil {
		msg.IDs = te.IDs
	}

	p.logger.Debug("Pushing todo change",
		"reason", msg.Reason,
		"ids", msg.IDs,
	)

	return p.broadcaster.Broadcast(websocket.TopicTodos, msg)
}
