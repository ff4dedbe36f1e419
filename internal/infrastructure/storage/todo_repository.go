package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/todoboard/backend/internal/domain/todo"
)

// TodoRepository 待办事项 SQL 仓储实现（SQLite / MySQL 通用语句）
type TodoRepository struct {
	db      *sql.DB
	dialect dialect
	now     func() time.Time
}

// NewTodoRepository 创建待办事项仓储实例
func NewTodoRepository(db *sql.DB) *TodoRepository {
	return &TodoRepository{
		db:      db,
		dialect: dialectOf(db),
		now:     time.Now,
	}
}

// ListAll 获取全部待办，按 ID 升序（即插入顺序）
func (r *TodoRepository) ListAll(ctx context.Context) ([]*todo.Todo, error) {
	query := `
		SELECT id, title, created_at, updated_at
		FROM todos
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query todos: %w", err)
	}
	defer rows.Close()

	items := make([]*todo.Todo, 0)
	for rows.Next() {
		item, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate todos: %w", err)
	}

	return items, nil
}

// Insert 创建待办
func (r *TodoRepository) Insert(ctx context.Context, title string) (*todo.Todo, error) {
	now := r.now()
	ts := now.UnixMilli()

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO todos (title, created_at, updated_at) VALUES (?, ?, ?)`,
		title, ts, ts,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert todo: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read inserted todo id: %w", err)
	}

	created := time.UnixMilli(ts)
	return &todo.Todo{
		ID:        id,
		Title:     title,
		CreatedAt: created,
		UpdatedAt: created,
	}, nil
}

// UpdateByID 更新标题，ID 不存在时影响 0 行
func (r *TodoRepository) UpdateByID(ctx context.Context, id int64, title string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE todos SET title = ?, updated_at = ? WHERE id = ?`,
		title, r.now().UnixMilli(), id,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update todo %d: %w", id, err)
	}
	return result.RowsAffected()
}

// DeleteByID 删除单条待办，ID 不存在时影响 0 行
func (r *TodoRepository) DeleteByID(ctx context.Context, id int64) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete todo %d: %w", id, err)
	}
	return result.RowsAffected()
}

// DeleteByIDs 单条语句批量删除
func (r *TodoRepository) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	idsJSON, err := json.Marshal(ids)
	if err != nil {
		return 0, fmt.Errorf("failed to encode todo ids: %w", err)
	}

	result, err := r.db.ExecContext(ctx, r.dialect.deleteByIDs, string(idsJSON))
	if err != nil {
		return 0, fmt.Errorf("failed to delete todos: %w", err)
	}
	return result.RowsAffected()
}

// FindByID 根据 ID 查找待办
func (r *TodoRepository) FindByID(ctx context.Context, id int64) (*todo.Todo, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, title, created_at, updated_at FROM todos WHERE id = ?`,
		id,
	)

	item, err := scanTodo(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, todo.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query todo %d: %w", id, err)
	}
	return item, nil
}

// rowScanner 兼容 *sql.Row 与 *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(s rowScanner) (*todo.Todo, error) {
	var item todo.Todo
	var createdAt, updatedAt int64
	if err := s.Scan(&item.ID, &item.Title, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	item.CreatedAt = time.UnixMilli(createdAt)
	item.UpdatedAt = time.UnixMilli(updatedAt)
	return &item, nil
}

// 编译时检查接口实现
var _ todo.Repository = (*TodoRepository)(nil)
