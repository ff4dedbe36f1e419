package storage

import (
	"github.com/google/wire"

	"github.com/todoboard/backend/internal/domain/todo"
)

// ProviderSet Storage 基础设施层 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideDB,         // 提供数据库连接
	NewTodoRepository, // 待办仓储
	wire.Bind(new(todo.Repository), new(*TodoRepository)),
)
