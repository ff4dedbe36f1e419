package todo

import (
	"context"

	"github.com/todoboard/backend/internal/domain/events"
	"github.com/todoboard/backend/internal/domain/todo"
)

// Service 待办应用服务（TodoService）
// 调用方负责输入校验与 ID 解析；存储错误原样向上返回
type Service struct {
	repo      todo.Repository
	publisher events.Publisher
}

// NewService 创建待办应用服务
func NewService(repo todo.Repository, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
	}
}

// BatchResult 批量操作结果
type BatchResult struct {
	Updated int64 `json:"updated"`
	Deleted int64 `json:"deleted"`
}

// List 获取全部待办
func (s *Service) List(ctx context.Context) ([]*todo.Todo, error) {
	return s.repo.ListAll(ctx)
}

// Find 解析待办 ID，不存在时返回 todo.ErrNotFound
func (s *Service) Find(ctx context.Context, id int64) (*todo.Todo, error) {
	return s.repo.FindByID(ctx, id)
}

// Create 创建待办
func (s *Service) Create(ctx context.Context, title string) (*todo.Todo, error) {
	item, err := s.repo.Insert(ctx, title)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(events.NewTodoEvent(events.TodoCreated, item.ID))
	return item, nil
}

// Update 替换待办标题
func (s *Service) Update(ctx context.Context, id int64, title string) error {
	affected, err := s.repo.UpdateByID(ctx, id, title)
	if err != nil {
		return err
	}
	if affected > 0 {
		s.publisher.Publish(events.NewTodoEvent(events.TodoUpdated, id))
	}
	return nil
}

// Delete 删除待办，重复删除为 no-op
func (s *Service) Delete(ctx context.Context, id int64) error {
	affected, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return err
	}
	if affected > 0 {
		s.publisher.Publish(events.NewTodoEvent(events.TodoDeleted, id))
	}
	return nil
}

// BatchApply 批量更新后批量删除
//
// 更新逐条独立执行，不存在的 ID 影响 0 行；删除为单条语句。
// 两个阶段之间没有事务：删除阶段失败时，已完成的更新不会回滚。
func (s *Service) BatchApply(ctx context.Context, batch todo.Batch) (BatchResult, error) {
	var result BatchResult

	for _, u := range batch.Updates {
		affected, err := s.repo.UpdateByID(ctx, u.ID, u.Title)
		if err != nil {
			return result, err
		}
		result.Updated += affected
	}

	if len(batch.Deletes) > 0 {
		affected, err := s.repo.DeleteByIDs(ctx, batch.Deletes)
		if err != nil {
			return result, err
		}
		result.Deleted = affected
	}

	if !batch.IsEmpty() {
		s.publisher.Publish(events.NewTodoEvent(events.TodosBatchApplied, batch.IDs()...))
	}
	return result, nil
}
