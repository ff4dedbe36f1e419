package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/todoboard/backend/internal/domain/todo"
	"github.com/todoboard/backend/internal/infrastructure/log"
)

// TodoItem 工具输出中的待办
type TodoItem struct {
	ID        int64  `json:"id" jsonschema:"待办 ID"`
	Title     string `json:"title" jsonschema:"标题"`
	CreatedAt string `json:"created_at" jsonschema:"创建时间（RFC3339）"`
	UpdatedAt string `json:"updated_at" jsonschema:"更新时间（RFC3339）"`
}

func toItem(t *todo.Todo) TodoItem {
	return TodoItem{
		ID:        t.ID,
		Title:     t.Title,
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
		UpdatedAt: t.UpdatedAt.Format(time.RFC3339),
	}
}

// ListTodosInput 列表工具输入（空输入）
type ListTodosInput struct{}

// ListTodosOutput 列表工具输出
type ListTodosOutput struct {
	Todos []TodoItem `json:"todos" jsonschema:"全部待办，按创建顺序"`
	Total int        `json:"total" jsonschema:"待办总数"`
}

// CreateTodoInput 创建工具输入
type CreateTodoInput struct {
	Title string `json:"title" jsonschema:"标题，不能为空"`
}

// CreateTodoOutput 创建工具输出
type CreateTodoOutput struct {
	Todo TodoItem `json:"todo" jsonschema:"新建的待办"`
}

// UpdateTodoInput 更新工具输入
type UpdateTodoInput struct {
	ID    int64  `json:"id" jsonschema:"待办 ID"`
	Title string `json:"title" jsonschema:"新标题，不能为空"`
}

// DeleteTodoInput 删除工具输入
type DeleteTodoInput struct {
	ID int64 `json:"id" jsonschema:"待办 ID"`
}

// MutationOutput 更新/删除工具输出
type MutationOutput struct {
	Success bool   `json:"success" jsonschema:"是否成功"`
	Message string `json:"message" jsonschema:"结果说明"`
}

// BatchApplyInput 批量工具输入
type BatchApplyInput struct {
	Updates []todo.TitleUpdate `json:"updates,omitempty" jsonschema:"标题更新，先于删除执行"`
	Deletes []int64            `json:"deletes,omitempty" jsonschema:"要删除的待办 ID"`
}

// BatchApplyOutput 批量工具输出
type BatchApplyOutput struct {
	Updated int64 `json:"updated" jsonschema:"更新的行数"`
	Deleted int64 `json:"deleted" jsonschema:"删除的行数"`
}

// listTodosTool 列出全部待办
func (s *MCPServer) listTodosTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input ListTodosInput,
) (*mcp.CallToolResult, ListTodosOutput, error) {
	items, err := s.service.List(ctx)
	if err != nil {
		return nil, ListTodosOutput{}, fmt.Errorf("failed to list todos: %w", err)
	}

	out := ListTodosOutput{Todos: make([]TodoItem, 0, len(items)), Total: len(items)}
	for _, item := range items {
		out.Todos = append(out.Todos, toItem(item))
	}
	return nil, out, nil
}

// createTodoTool 创建待办
func (s *MCPServer) createTodoTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input CreateTodoInput,
) (*mcp.CallToolResult, CreateTodoOutput, error) {
	title := todo.NormalizeTitle(input.Title)
	if err := todo.RequireNonEmpty(todo.FieldTitle, title).Err(); err != nil {
		return nil, CreateTodoOutput{}, err
	}

	item, err := s.service.Create(ctx, title)
	if err != nil {
		return nil, CreateTodoOutput{}, fmt.Errorf("failed to create todo: %w", err)
	}

	log.FromContext(ctx, s.logger).Info("Todo created via MCP",
		"id", item.ID,
	)
	return nil, CreateTodoOutput{Todo: toItem(item)}, nil
}

// updateTodoTool 更新待办标题
func (s *MCPServer) updateTodoTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input UpdateTodoInput,
) (*mcp.CallToolResult, MutationOutput, error) {
	title := todo.NormalizeTitle(input.Title)
	if err := todo.RequireNonEmpty(todo.FieldTitle, title).Err(); err != nil {
		return nil, MutationOutput{}, err
	}

	if err := s.resolve(ctx, input.ID); err != nil {
		return nil, MutationOutput{}, err
	}

	if err := s.service.Update(ctx, input.ID, title); err != nil {
		return nil, MutationOutput{}, fmt.Errorf("failed to update todo %d: %w", input.ID, err)
	}
	return nil, MutationOutput{Success: true, Message: fmt.Sprintf("todo %d updated", input.ID)}, nil
}

// deleteTodoTool 删除待办
func (s *MCPServer) deleteTodoTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input DeleteTodoInput,
) (*mcp.CallToolResult, MutationOutput, error) {
	if err := s.resolve(ctx, input.ID); err != nil {
		return nil, MutationOutput{}, err
	}

	if err := s.service.Delete(ctx, input.ID); err != nil {
		return nil, MutationOutput{}, fmt.Errorf("failed to delete todo %d: %w", input.ID, err)
	}
	return nil, MutationOutput{Success: true, Message: fmt.Sprintf("todo %d deleted", input.ID)}, nil
}

// batchApplyTool 批量更新后删除
// 与 HTTP 接口共用同一份 JSON Schema 校验
func (s *MCPServer) batchApplyTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input BatchApplyInput,
) (*mcp.CallToolResult, BatchApplyOutput, error) {
	raw, err := json.Marshal(input)
	if err != nil {
		return nil, BatchApplyOutput{}, err
	}

	batch, result, err := todo.ValidateBatch(raw)
	if err != nil {
		return nil, BatchApplyOutput{}, err
	}
	if err := result.Err(); err != nil {
		return nil, BatchApplyOutput{}, err
	}
	for i := range batch.Updates {
		batch.Updates[i].Title = todo.NormalizeTitle(batch.Updates[i].Title)
	}

	applied, err := s.service.BatchApply(ctx, batch)
	if err != nil {
		return nil, BatchApplyOutput{}, fmt.Errorf("failed to apply batch: %w", err)
	}
	return nil, BatchApplyOutput{Updated: applied.Updated, Deleted: applied.Deleted}, nil
}

// resolve 确认待办存在
func (s *MCPServer) resolve(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("todo %d: %w", id, todo.ErrInvalidID)
	}
	_, err := s.service.Find(ctx, id)
	if errors.Is(err, todo.ErrNotFound) {
		return fmt.Errorf("todo %d: %w", id, todo.ErrNotFound)
	}
	return err
}
