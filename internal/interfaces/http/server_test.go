package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appTodo "github.com/todoboard/backend/internal/application/todo"
	"github.com/todoboard/backend/internal/infrastructure/config"
	"github.com/todoboard/backend/internal/infrastructure/eventbus"
	"github.com/todoboard/backend/internal/infrastructure/notification"
	"github.com/todoboard/backend/internal/infrastructure/storage"
	wshub "github.com/todoboard/backend/internal/infrastructure/websocket"
	"github.com/todoboard/backend/internal/interfaces/http/handler"
	"github.com/todoboard/backend/internal/interfaces/http/render"
	"github.com/todoboard/backend/internal/interfaces/mcp"
)

// testStack 端到端测试用的完整依赖
type testStack struct {
	server *HTTPServer
	hub    *wshub.Hub
}

// setupServer 使用临时 SQLite 组装完整 HTTP 服务器
func setupServer(t *testing.T) *testStack {
	t.Helper()

	db, err := storage.OpenDB(context.Background(), &config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "e2e.db"),
	})
	require.NoError(t, err)

	bus := eventbus.NewBus()
	hub := wshub.NewHub()
	hub.Start()
	pusher := notification.NewLivePusher(bus, hub)
	pusher.Start()

	t.Cleanup(func() {
		pusher.Stop()
		bus.Close()
		hub.Stop()
		db.Close()
	})

	service := appTodo.NewService(storage.NewTodoRepository(db), bus)
	renderer := render.NewRenderer(&config.RenderConfig{AppName: "Todos", AssetVersion: "1", ScriptURL: "/app.js"})

	server := NewServer(
		&config.ServerConfig{HTTPPort: ":0", Mode: gin.TestMode},
		renderer,
		handler.NewTodoHandler(service, renderer),
		handler.NewLiveHandler(hub, &config.WebSocketConfig{ReadBufferSize: 1024, WriteBufferSize: 1024}),
		mcp.NewServer(service),
	)
	return &testStack{server: server, hub: hub}
}

func (s *testStack) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.server.Handler().ServeHTTP(w, req)
	return w
}

// listing 以 Inertia 方式读取列表
func (s *testStack) listing(t *testing.T) []render.TodoView {
	t.Helper()
	w := s.do(http.MethodGet, "/todos", "", map[string]string{render.HeaderInertia: "true"})
	require.Equal(t, http.StatusOK, w.Code)

	var page struct {
		Props struct {
			Todos []render.TodoView `json:"todos"`
		} `json:"props"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	return page.Props.Todos
}

func titles(views []render.TodoView) []string {
	result := make([]string, 0, len(views))
	for _, v := range views {
		result = append(result, v.Title)
	}
	return result
}

func TestServer_Health(t *testing.T) {
	s := setupServer(t)

	w := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestServer_Home(t *testing.T) {
	s := setupServer(t)

	w := s.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `id="app"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestServer_CreateThenList(t *testing.T) {
	s := setupServer(t)

	w := s.do(http.MethodPost, "/todos", `{"title":"Buy milk"}`, nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/todos", w.Header().Get("Location"))

	views := s.listing(t)
	require.Len(t, views, 1)
	assert.Equal(t, "Buy milk", views[0].Title)
}

func TestServer_UpdateThenDelete(t *testing.T) {
	s := setupServer(t)

	require.Equal(t, http.StatusSeeOther, s.do(http.MethodPost, "/todos", `{"title":"A"}`, nil).Code)

	w := s.do(http.MethodPatch, "/todos/1", `{"title":"B"}`, nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, []string{"B"}, titles(s.listing(t)))

	w = s.do(http.MethodDelete, "/todos/1", "", nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Empty(t, s.listing(t))

	w = s.do(http.MethodDelete, "/todos/1", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_CreateValidation(t *testing.T) {
	s := setupServer(t)

	w := s.do(http.MethodPost, "/todos", `{"title":""}`, map[string]string{"Accept": "application/json"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Empty(t, s.listing(t))
}

func TestServer_InertiaValidationKeepsListingURL(t *testing.T) {
	s := setupServer(t)
	require.Equal(t, http.StatusSeeOther, s.do(http.MethodPost, "/todos", `{"title":"A"}`, nil).Code)

	inertia := map[string]string{render.HeaderInertia: "true", render.HeaderVersion: "1"}
	cases := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"update", http.MethodPut, "/todos/1", `{"title":"  "}`},
		{"batch", http.MethodPost, "/todos/batch-update-delete", `{"updates":[{"id":1,"title":" "}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := s.do(tc.method, tc.path, tc.body, inertia)
			require.Equal(t, http.StatusOK, w.Code)

			var page render.Page
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
			assert.Equal(t, "/todos", page.URL)
			assert.Equal(t, http.StatusOK, s.do(http.MethodGet, page.URL, "", inertia).Code)
		})
	}
	assert.Equal(t, []string{"A"}, titles(s.listing(t)))
}

func TestServer_BatchUpdateDelete(t *testing.T) {
	s := setupServer(t)

	for _, title := range []string{"A", "B", "C"} {
		require.Equal(t, http.StatusSeeOther, s.do(http.MethodPost, "/todos", `{"title":"`+title+`"}`, nil).Code)
	}

	w := s.do(http.MethodPost, "/todos/batch-update-delete",
		`{"updates":[{"id":1,"title":"A2"},{"id":2,"title":"B2"}],"deletes":[2,3]}`, nil)
	require.Equal(t, http.StatusSeeOther, w.Code)

	views := s.listing(t)
	require.Len(t, views, 1)
	assert.Equal(t, int64(1), views[0].ID)
	assert.Equal(t, "A2", views[0].Title)
}

func TestServer_BatchManyDeletes(t *testing.T) {
	s := setupServer(t)

	for _, title := range []string{"A", "B"} {
		require.Equal(t, http.StatusSeeOther, s.do(http.MethodPost, "/todos", `{"title":"`+title+`"}`, nil).Code)
	}

	ids := make([]string, 0, 40000)
	for id := 2; id <= 40001; id++ {
		ids = append(ids, strconv.Itoa(id))
	}
	w := s.do(http.MethodPost, "/todos/batch-update-delete", `{"deletes":[`+strings.Join(ids, ",")+`]}`, nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, []string{"A"}, titles(s.listing(t)))
}

func TestServer_BatchAbsentIDs(t *testing.T) {
	s := setupServer(t)

	require.Equal(t, http.StatusSeeOther, s.do(http.MethodPost, "/todos", `{"title":"A"}`, nil).Code)

	w := s.do(http.MethodPost, "/todos/batch-update-delete",
		`{"updates":[{"id":99,"title":"ghost"}],"deletes":[100]}`, nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, []string{"A"}, titles(s.listing(t)))
}

func TestServer_InertiaVersionMismatch(t *testing.T) {
	s := setupServer(t)

	w := s.do(http.MethodGet, "/todos", "", map[string]string{
		render.HeaderInertia: "true",
		render.HeaderVersion: "stale",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.NotEmpty(t, w.Header().Get(render.HeaderLocation))
}

func TestServer_LivePush(t *testing.T) {
	s := setupServer(t)

	ts := httptest.NewServer(s.server.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/todos/live"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// 等待连接注册到 Hub
	require.Eventually(t, func() bool {
		return s.hub.Count(wshub.TopicTodos) == 1
	}, time.Second, 10*time.Millisecond)

	resp, err := http.Post(ts.URL+"/todos", "application/json", strings.NewReader(`{"title":"live"}`))
	require.NoError(t, err)
	resp.Body.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg notification.TodosChanged
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, notification.MessageTypeTodosChanged, msg.Type)
	assert.Equal(t, "todo.created", msg.Reason)
	assert.Equal(t, []int64{1}, msg.IDs)
}

func TestTodoRoutes_Table(t *testing.T) {
	routes := TodoRoutes(&handler.TodoHandler{}, &handler.LiveHandler{})

	keys := make([]string, 0, len(routes))
	for _, r := range routes {
		keys = append(keys, r.Method+" "+r.Path)
	}
	assert.ElementsMatch(t, []string{
		"GET /",
		"GET /todos",
		"POST /todos",
		"GET /todos/live",
		"POST /todos/batch-update-delete",
		"PUT /todos/:id",
		"PATCH /todos/:id",
		"DELETE /todos/:id",
		"POST /todos/:id",
	}, keys)
}
