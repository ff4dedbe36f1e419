package events

import "time"

// TodoEvent 待办变更事件
// 在存储操作成功完成后发布
type TodoEvent struct {
	// EventType 事件类型
	EventType EventType
	// IDs 涉及的待办 ID（批量事件包含更新与删除的全部 ID）
	IDs []int64
	// EventTime 事件发生时间
	EventTime time.Time
}

// NewTodoEvent 创建待办变更事件
func NewTodoEvent(eventType EventType, ids ...int64) *TodoEvent {
	return &TodoEvent{
		EventType: eventType,
		IDs:       ids,
		EventTime: time.Now(),
	}
}

// Type 实现 Event 接口
func (e *TodoEvent) Type() EventType {
	return e.EventType
}

// Timestamp 实现 Event 接口
func (e *TodoEvent) Timestamp() time.Time {
	return e.EventTime
}
