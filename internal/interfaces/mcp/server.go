package mcp

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	appTodo "github.com/todoboard/backend/internal/application/todo"
	"github.com/todoboard/backend/internal/domain/todo"
	"github.com/todoboard/backend/internal/infrastructure/log"
)

const (
	// ServerName MCP 服务名
	ServerName = "todoboard"
	// ServerVersion MCP 服务版本
	ServerVersion = "0.1.0"
)

// TodoService 待办应用服务
type TodoService interface {
	List(ctx context.Context) ([]*todo.Todo, error)
	Find(ctx context.Context, id int64) (*todo.Todo, error)
	Create(ctx context.Context, title string) (*todo.Todo, error)
	Update(ctx context.Context, id int64, title string) error
	Delete(ctx context.Context, id int64) error
	BatchApply(ctx context.Context, batch todo.Batch) (appTodo.BatchResult, error)
}

// MCPServer MCP 服务器，把待办操作暴露为工具
type MCPServer struct {
	server  *mcp.Server
	handler http.Handler
	service TodoService
	logger  *slog.Logger
}

// NewServer 创建 MCP 服务器
func NewServer(service TodoService) *MCPServer {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil, // 使用默认能力
	)

	s := &MCPServer{
		server:  server,
		service: service,
		logger:  log.NewModuleLogger("mcp", "server"),
	}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_todos",
		Description: "List all todos in insertion order. No parameters required. Returns: todos (id, title, created_at, updated_at) and total count.",
	}, s.listTodosTool)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_todo",
		Description: "Create a todo. Parameters: title (string, required, must not be blank). Returns: the created todo.",
	}, s.createTodoTool)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_todo",
		Description: "Replace the title of an existing todo. Parameters: id (int, required), title (string, required, must not be blank). Fails if the todo does not exist.",
	}, s.updateTodoTool)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_todo",
		Description: "Delete an existing todo. Parameters: id (int, required). Fails if the todo does not exist.",
	}, s.deleteTodoTool)

	mcp.AddTool(server, &mcp.Tool{
		Name: "batch_apply_todos",
		Description: `Apply title updates first, then delete todos in one statement.
Parameters:
- updates (array, optional): objects with id (int) and title (string, not blank)
- deletes (array, optional): todo ids to delete
Missing ids are ignored. An id present in both lists ends up deleted. The two phases are not atomic.
Returns: number of rows updated and deleted.`,
	}, s.batchApplyTool)

	s.handler = mcp.NewSSEHandler(
		func(r *http.Request) *mcp.Server {
			// 每个请求返回同一个服务器实例
			return server
		},
		nil, // SSEOptions，使用默认值
	)

	return s
}

// GetHandler 获取 HTTP Handler（用于集成到 HTTP 服务器）
func (s *MCPServer) GetHandler() http.Handler {
	return s.handler
}

// Server 底层 MCP 服务器
func (s *MCPServer) Server() *mcp.Server {
	return s.server
}
