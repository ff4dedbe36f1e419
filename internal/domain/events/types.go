// Package events 定义领域事件类型和接口
// 用于待办变更后的事件驱动通知（如实时刷新列表）
package events

import "time"

// EventType 事件类型标识
type EventType string

// 待办相关事件类型
const (
	// TodoCreated 待办创建事件
	TodoCreated EventType = "todo.created"
	// TodoUpdated 待办更新事件
	TodoUpdated EventType = "todo.updated"
	// TodoDeleted 待办删除事件
	TodoDeleted EventType = "todo.deleted"
	// TodosBatchApplied 批量更新/删除完成事件
	TodosBatchApplied EventType = "todo.batch_applied"
)

// AllTodoEventTypes 所有待办事件类型
var AllTodoEventTypes = []EventType{
	TodoCreated,
	TodoUpdated,
	TodoDeleted,
	TodosBatchApplied,
}

// Event 领域事件接口
// 所有事件类型都必须实现此接口
type Event interface {
	// Type 返回事件类型
	Type() EventType
	// Timestamp 返回事件发生时间
	Timestamp() time.Time
}
