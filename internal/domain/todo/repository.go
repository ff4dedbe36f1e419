package todo

import "context"

// Repository 待办事项仓储接口（RecordStore）
// 所有变更方法在目标 ID 不存在时均为 no-op，不返回错误
//
//go:generate mockery --name=Repository --output=../../application/todo/mocks --outpkg=mocks --structname=MockRepository --filename=mock_repository.go
type Repository interface {
	// ListAll 获取全部待办，按插入顺序（ID 升序）
	ListAll(ctx context.Context) ([]*Todo, error)

	// Insert 创建待办，ID 与时间戳由存储分配
	Insert(ctx context.Context, title string) (*Todo, error)

	// UpdateByID 更新标题并刷新 updated_at，返回受影响行数
	UpdateByID(ctx context.Context, id int64, title string) (int64, error)

	// DeleteByID 删除单条待办，返回受影响行数
	DeleteByID(ctx context.Context, id int64) (int64, error)

	// DeleteByIDs 单条语句批量删除，忽略不存在的 ID，返回受影响行数
	DeleteByIDs(ctx context.Context, ids []int64) (int64, error)

	// FindByID 根据 ID 查找，不存在时返回 ErrNotFound
	FindByID(ctx context.Context, id int64) (*Todo, error)
}
