package handler

import (
	"github.com/google/wire"

	appTodo "github.com/todoboard/backend/internal/application/todo"
)

// ProviderSet Handler ProviderSet
var ProviderSet = wire.NewSet(
	NewTodoHandler,
	NewLiveHandler,
	wire.Bind(new(TodoService), new(*appTodo.Service)),
)
