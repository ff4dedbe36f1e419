package mcp

import (
	"github.com/google/wire"

	appTodo "github.com/todoboard/backend/internal/application/todo"
)

// ProviderSet MCP ProviderSet
var ProviderSet = wire.NewSet(
	NewServer,
	wire.Bind(new(TodoService), new(*appTodo.Service)),
)
