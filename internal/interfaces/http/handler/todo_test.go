package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appTodo "github.com/todoboard/backend/internal/application/todo"
	"github.com/todoboard/backend/internal/domain/todo"
	"github.com/todoboard/backend/internal/infrastructure/config"
	"github.com/todoboard/backend/internal/interfaces/http/render"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeService 内存版 TodoService，记录调用顺序
type fakeService struct {
	mu      sync.Mutex
	items   map[int64]*todo.Todo
	nextID  int64
	calls   []string
	batches []todo.Batch
	failAll error
}

func newFakeService(titles ...string) *fakeService {
	s := &fakeService{items: make(map[int64]*todo.Todo)}
	for _, title := range titles {
		_, _ = s.Create(context.Background(), title)
	}
	s.calls = nil
	return s
}

func (s *fakeService) List(ctx context.Context) ([]*todo.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "list")
	if s.failAll != nil {
		return nil, s.failAll
	}
	result := make([]*todo.Todo, 0, len(s.items))
	for id := int64(1); id <= s.nextID; id++ {
		if item, ok := s.items[id]; ok {
			result = append(result, item)
		}
	}
	return result, nil
}

func (s *fakeService) Find(ctx context.Context, id int64) (*todo.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll != nil {
		return nil, s.failAll
	}
	item, ok := s.items[id]
	if !ok {
		return nil, todo.ErrNotFound
	}
	return item, nil
}

func (s *fakeService) Create(ctx context.Context, title string) (*todo.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "create:"+title)
	if s.failAll != nil {
		return nil, s.failAll
	}
	s.nextID++
	item := &todo.Todo{ID: s.nextID, Title: title}
	s.items[item.ID] = item
	return item, nil
}

func (s *fakeService) Update(ctx context.Context, id int64, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "update:"+title)
	if s.failAll != nil {
		return s.failAll
	}
	if item, ok := s.items[id]; ok {
		item.Title = title
	}
	return nil
}

func (s *fakeService) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "delete")
	if s.failAll != nil {
		return s.failAll
	}
	delete(s.items, id)
	return nil
}

func (s *fakeService) BatchApply(ctx context.Context, batch todo.Batch) (appTodo.BatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "batch")
	s.batches = append(s.batches, batch)
	if s.failAll != nil {
		return appTodo.BatchResult{}, s.failAll
	}
	return appTodo.BatchResult{Updated: int64(len(batch.Updates)), Deleted: int64(len(batch.Deletes))}, nil
}

// setupTodoRouter 创建测试路由
func setupTodoRouter(svc TodoService) *gin.Engine {
	router := gin.New()
	renderer := render.NewRenderer(&config.RenderConfig{AppName: "Todos", AssetVersion: "1", ScriptURL: "/app.js"})
	h := NewTodoHandler(svc, renderer)

	router.GET("/todos", h.List)
	router.POST("/todos", h.Create)
	router.POST("/todos/batch-update-delete", h.BatchUpdateDelete)
	router.PUT("/todos/:id", h.BindTodo, h.Update)
	router.PATCH("/todos/:id", h.BindTodo, h.Update)
	router.DELETE("/todos/:id", h.BindTodo, h.Delete)
	router.POST("/todos/:id", h.BindTodo, h.Override)
	return router
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func doForm(router *gin.Engine, method, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func validationErrors(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Errors
}

func TestTodoHandler_Create(t *testing.T) {
	svc := newFakeService()
	router := setupTodoRouter(svc)

	w := doJSON(router, http.MethodPost, "/todos", `{"title":"  Buy milk  ","id":99}`)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/todos", w.Header().Get("Location"))
	assert.Equal(t, []string{"create:Buy milk"}, svc.calls)
}

func TestTodoHandler_Create_Form(t *testing.T) {
	svc := newFakeService()
	router := setupTodoRouter(svc)

	w := doForm(router, http.MethodPost, "/todos", url.Values{"title": {"Walk dog"}})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, []string{"create:Walk dog"}, svc.calls)
}

func TestTodoHandler_Create_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"空标题", `{"title":""}`},
		{"空白标题", `{"title":"   "}`},
		{"缺少标题", `{}`},
		{"空请求体", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newFakeService()
			router := setupTodoRouter(svc)

			w := doJSON(router, http.MethodPost, "/todos", tt.body)

			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			assert.Contains(t, validationErrors(t, w), todo.FieldTitle)
			assert.Empty(t, svc.calls, "校验失败不应调用服务")
		})
	}
}

func TestTodoHandler_Create_ValidationInertia(t *testing.T) {
	svc := newFakeService("A")
	router := setupTodoRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/todos", strings.NewReader(`{"title":""}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(render.HeaderInertia, "true")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Props struct {
			Todos  []render.TodoView `json:"todos"`
			Errors map[string]string `json:"errors"`
		} `json:"props"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Len(t, page.Props.Todos, 1)
	assert.NotEmpty(t, page.Props.Errors[todo.FieldTitle])
	assert.Equal(t, []string{"list"}, svc.calls)
}

func TestTodoHandler_Create_MalformedJSON(t *testing.T) {
	svc := newFakeService()
	router := setupTodoRouter(svc)

	w := doJSON(router, http.MethodPost, "/todos", `{"title":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Detail)
	assert.Empty(t, svc.calls)
}

func TestTodoHandler_Create_StoreFailure(t *testing.T) {
	svc := newFakeService()
	svc.failAll = errors.New("disk full")
	router := setupTodoRouter(svc)

	w := doJSON(router, http.MethodPost, "/todos", `{"title":"A"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestTodoHandler_List(t *testing.T) {
	router := setupTodoRouter(newFakeService("A", "B"))

	req := httptest.NewRequest(http.MethodGet, "/todos", nil)
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data []render.TodoView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "A", resp.Data[0].Title)
	assert.Equal(t, "B", resp.Data[1].Title)
}

func TestTodoHandler_List_StoreFailure(t *testing.T) {
	svc := newFakeService()
	svc.failAll = errors.New("db locked")
	router := setupTodoRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/todos", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestTodoHandler_Update(t *testing.T) {
	for _, method := range []string{http.MethodPut, http.MethodPatch} {
		t.Run(method, func(t *testing.T) {
			svc := newFakeService("A")
			router := setupTodoRouter(svc)

			w := doJSON(router, method, "/todos/1", `{"title":"B"}`)

			assert.Equal(t, http.StatusSeeOther, w.Code)
			assert.Equal(t, []string{"update:B"}, svc.calls)
		})
	}
}

func TestTodoHandler_Update_NotFound(t *testing.T) {
	for _, path := range []string{"/todos/99", "/todos/abc", "/todos/0", "/todos/-1"} {
		t.Run(path, func(t *testing.T) {
			svc := newFakeService("A")
			router := setupTodoRouter(svc)

			w := doJSON(router, http.MethodPut, path, `{"title":"B"}`)

			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.Empty(t, svc.calls)
		})
	}
}

func TestTodoHandler_BindTodo_LookupFailure(t *testing.T) {
	for _, method := range []string{http.MethodPut, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			svc := newFakeService("A")
			svc.failAll = errors.New("db locked")
			router := setupTodoRouter(svc)

			w := doJSON(router, method, "/todos/1", `{"title":"B"}`)

			require.Equal(t, http.StatusInternalServerError, w.Code)
			var resp struct {
				Code int `json:"code"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, codeLookupFailed, resp.Code)
			assert.Empty(t, svc.calls)
		})
	}
}

func TestTodoHandler_Update_Validation(t *testing.T) {
	svc := newFakeService("A")
	router := setupTodoRouter(svc)

	w := doJSON(router, http.MethodPatch, "/todos/1", `{"title":" "}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Empty(t, svc.calls)
}

func TestTodoHandler_Delete(t *testing.T) {
	svc := newFakeService("A")
	router := setupTodoRouter(svc)

	w := doJSON(router, http.MethodDelete, "/todos/1", "")
	assert.Equal(t, http.StatusSeeOther, w.Code)

	// 再次删除时已不存在，路由模型绑定返回 404
	w = doJSON(router, http.MethodDelete, "/todos/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, []string{"delete"}, svc.calls)
}

func TestTodoHandler_Override(t *testing.T) {
	t.Run("PUT", func(t *testing.T) {
		svc := newFakeService("A")
		router := setupTodoRouter(svc)

		w := doForm(router, http.MethodPost, "/todos/1", url.Values{"_method": {"put"}, "title": {"B"}})

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, []string{"update:B"}, svc.calls)
	})

	t.Run("DELETE", func(t *testing.T) {
		svc := newFakeService("A")
		router := setupTodoRouter(svc)

		w := doForm(router, http.MethodPost, "/todos/1", url.Values{"_method": {"DELETE"}})

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, []string{"delete"}, svc.calls)
	})

	t.Run("不支持的方法", func(t *testing.T) {
		svc := newFakeService("A")
		router := setupTodoRouter(svc)

		w := doForm(router, http.MethodPost, "/todos/1", url.Values{"_method": {"GET"}})

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.Empty(t, svc.calls)
	})
}

func TestTodoHandler_BatchUpdateDelete(t *testing.T) {
	svc := newFakeService("A", "B", "C")
	router := setupTodoRouter(svc)

	w := doJSON(router, http.MethodPost, "/todos/batch-update-delete",
		`{"updates":[{"id":1,"title":" A2 "}],"deletes":[2,3]}`)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	require.Len(t, svc.batches, 1)
	assert.Equal(t, todo.Batch{
		Updates: []todo.TitleUpdate{{ID: 1, Title: "A2"}},
		Deletes: []int64{2, 3},
	}, svc.batches[0])
}

func TestTodoHandler_BatchUpdateDelete_Empty(t *testing.T) {
	svc := newFakeService()
	router := setupTodoRouter(svc)

	w := doJSON(router, http.MethodPost, "/todos/batch-update-delete", `{}`)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	require.Len(t, svc.batches, 1)
	assert.True(t, svc.batches[0].IsEmpty())
}

func TestTodoHandler_BatchUpdateDelete_Validation(t *testing.T) {
	svc := newFakeService()
	router := setupTodoRouter(svc)

	w := doJSON(router, http.MethodPost, "/todos/batch-update-delete",
		`{"updates":[{"id":1,"title":""}],"deletes":["x"]}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	errs := validationErrors(t, w)
	assert.Contains(t, errs, "updates.0.title")
	assert.Contains(t, errs, "deletes.0")
	assert.Empty(t, svc.batches)
}

func TestTodoHandler_BatchUpdateDelete_StoreFailure(t *testing.T) {
	svc := newFakeService()
	svc.failAll = errors.New("db locked")
	router := setupTodoRouter(svc)

	w := doJSON(router, http.MethodPost, "/todos/batch-update-delete", `{"deletes":[1]}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
