package todo

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todoboard/backend/internal/domain/events"
	domainTodo "github.com/todoboard/backend/internal/domain/todo"
	"github.com/todoboard/backend/internal/infrastructure/config"
	"github.com/todoboard/backend/internal/infrastructure/storage"
)

// newSQLiteService 使用真实 SQLite 存储创建服务
func newSQLiteService(t *testing.T) (*Service, *recordingPublisher) {
	t.Helper()

	db, err := storage.OpenDB(context.Background(), &config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "service.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	pub := &recordingPublisher{}
	return NewService(storage.NewTodoRepository(db), pub), pub
}

func listTitles(t *testing.T, s *Service) []string {
	t.Helper()
	items, err := s.List(context.Background())
	require.NoError(t, err)
	titles := make([]string, 0, len(items))
	for _, item := range items {
		titles = append(titles, item.Title)
	}
	return titles
}

func TestServiceSQLite_CreateUpdateDelete(t *testing.T) {
	s, _ := newSQLiteService(t)
	ctx := context.Background()

	created, err := s.Create(ctx, "Buy milk")
	require.NoError(t, err)
	assert.Equal(t, []string{"Buy milk"}, listTitles(t, s))

	require.NoError(t, s.Update(ctx, created.ID, "Buy oat milk"))
	found, err := s.Find(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy oat milk", found.Title)

	require.NoError(t, s.Delete(ctx, created.ID))
	require.NoError(t, s.Delete(ctx, created.ID))
	assert.Empty(t, listTitles(t, s))

	_, err = s.Find(ctx, created.ID)
	assert.ErrorIs(t, err, domainTodo.ErrNotFound)
}

func TestServiceSQLite_BatchApply_OverlapEndsDeleted(t *testing.T) {
	s, pub := newSQLiteService(t)
	ctx := context.Background()

	for _, title := range []string{"A", "B", "C"} {
		_, err := s.Create(ctx, title)
		require.NoError(t, err)
	}

	result, err := s.BatchApply(ctx, domainTodo.Batch{
		Updates: []domainTodo.TitleUpdate{{ID: 1, Title: "A2"}, {ID: 2, Title: "B2"}},
		Deletes: []int64{2, 3},
	})
	require.NoError(t, err)
	assert.Equal(t, BatchResult{Updated: 2, Deleted: 2}, result)
	assert.Equal(t, []string{"A2"}, listTitles(t, s))
	assert.Contains(t, pub.types(), events.TodosBatchApplied)
}

func TestServiceSQLite_BatchApply_AbsentIDsAreNoops(t *testing.T) {
	s, _ := newSQLiteService(t)
	ctx := context.Background()

	_, err := s.Create(ctx, "A")
	require.NoError(t, err)

	result, err := s.BatchApply(ctx, domainTodo.Batch{
		Updates: []domainTodo.TitleUpdate{{ID: 99, Title: "ghost"}},
		Deletes: []int64{100},
	})
	require.NoError(t, err)
	assert.Equal(t, BatchResult{}, result)
	assert.Equal(t, []string{"A"}, listTitles(t, s))
}
