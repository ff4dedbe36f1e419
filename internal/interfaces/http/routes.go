package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/todoboard/backend/internal/interfaces/http/handler"
)

// Route 路由表中的一项：(方法, 路径) -> 处理链
type Route struct {
	Method   string
	Path     string
	Handlers []gin.HandlerFunc
}

// TodoRoutes 待办路由表，进程启动时构建一次
func TodoRoutes(todos *handler.TodoHandler, live *handler.LiveHandler) []Route {
	return []Route{
		{http.MethodGet, "/", chain(todos.Home)},
		{http.MethodGet, "/todos", chain(todos.List)},
		{http.MethodPost, "/todos", chain(todos.Create)},
		{http.MethodGet, "/todos/live", chain(live.Serve)},
		{http.MethodPost, "/todos/batch-update-delete", chain(todos.BatchUpdateDelete)},
		{http.MethodPut, "/todos/:id", chain(todos.BindTodo, todos.Update)},
		{http.MethodPatch, "/todos/:id", chain(todos.BindTodo, todos.Update)},
		{http.MethodDelete, "/todos/:id", chain(todos.BindTodo, todos.Delete)},
		{http.MethodPost, "/todos/:id", chain(todos.BindTodo, todos.Override)},
	}
}

func chain(handlers ...gin.HandlerFunc) []gin.HandlerFunc {
	return handlers
}

// RegisterRoutes 把路由表挂到路由器上
func RegisterRoutes(r gin.IRoutes, routes []Route) {
	for _, route := range routes {
		r.Handle(route.Method, route.Path, route.Handlers...)
	}
}
