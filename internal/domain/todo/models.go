package todo

import (
	"strconv"
	"strings"
	"time"
)

// Todo 待办事项实体
type Todo struct {
	ID        int64     // 唯一标识，由存储分配，创建后不可变
	Title     string    // 标题，唯一由用户提供的字段
	CreatedAt time.Time // 创建时间（存储维护）
	UpdatedAt time.Time // 更新时间（存储维护）
}

// TitleUpdate 批量更新中的单条指令
type TitleUpdate struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Batch 批量更新/删除指令
// Updates 先于 Deletes 执行
type Batch struct {
	Updates []TitleUpdate `json:"updates"`
	Deletes []int64       `json:"deletes"`
}

// IsEmpty 是否为空批次
func (b Batch) IsEmpty() bool {
	return len(b.Updates) == 0 && len(b.Deletes) == 0
}

// IDs 返回批次涉及的所有 ID（去重，保持首次出现顺序）
func (b Batch) IDs() []int64 {
	seen := make(map[int64]struct{}, len(b.Updates)+len(b.Deletes))
	ids := make([]int64, 0, len(b.Updates)+len(b.Deletes))
	add := func(id int64) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, u := range b.Updates {
		add(u.ID)
	}
	for _, id := range b.Deletes {
		add(id)
	}
	return ids
}

// NormalizeTitle 去除标题首尾空白
func NormalizeTitle(title string) string {
	return strings.TrimSpace(title)
}

// ParseID 解析路径中的待办 ID，非数字或非正数返回 ErrInvalidID
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}
