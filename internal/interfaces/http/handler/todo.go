package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	appTodo "github.com/todoboard/backend/internal/application/todo"
	"github.com/todoboard/backend/internal/domain/todo"
	"github.com/todoboard/backend/internal/infrastructure/log"
	"github.com/todoboard/backend/internal/interfaces/http/render"
	"github.com/todoboard/backend/internal/interfaces/http/response"
)

// 业务错误码
const (
	codeBadRequest       = 100001
	codeMethodNotAllowed = 100003
	codeListFailed       = 800001
	codeCreateFailed     = 800002
	codeUpdateFailed     = 800003
	codeNotFound         = 800004
	codeDeleteFailed     = 800005
	codeBatchFailed      = 800006
	codeLookupFailed     = 800007
)

// ctxKeyTodo 路由模型绑定后的待办
const ctxKeyTodo = "todo"

// TodoService 待办应用服务
type TodoService interface {
	List(ctx context.Context) ([]*todo.Todo, error)
	Find(ctx context.Context, id int64) (*todo.Todo, error)
	Create(ctx context.Context, title string) (*todo.Todo, error)
	Update(ctx context.Context, id int64, title string) error
	Delete(ctx context.Context, id int64) error
	BatchApply(ctx context.Context, batch todo.Batch) (appTodo.BatchResult, error)
}

// TodoHandler 待办事项处理器
type TodoHandler struct {
	service  TodoService
	renderer *render.Renderer
	logger   *slog.Logger
}

// NewTodoHandler 创建待办事项处理器
func NewTodoHandler(service TodoService, renderer *render.Renderer) *TodoHandler {
	return &TodoHandler{
		service:  service,
		renderer: renderer,
		logger:   log.NewModuleLogger("http", "todo_handler"),
	}
}

// TitleRequest 创建/更新待办请求，只接受 title 字段
type TitleRequest struct {
	Title string `json:"title" form:"title" example:"Buy milk"`
}

// BatchRequest 批量更新删除请求
type BatchRequest struct {
	Updates []todo.TitleUpdate `json:"updates"`
	Deletes []int64            `json:"deletes" example:"2,3"`
}

// Home 首页
// @Summary 首页
// @Tags 待办
// @Produce html
// @Produce json
// @Success 200 {object} render.Page
// @Router / [get]
func (h *TodoHandler) Home(c *gin.Context) {
	h.renderer.RenderHome(c)
}

// List 获取待办列表
// @Summary 获取待办列表
// @Description Inertia 请求返回页面对象，Accept: application/json 返回统一响应结构，其他返回 HTML
// @Tags 待办
// @Produce html
// @Produce json
// @Success 200 {object} response.Response{data=[]render.TodoView}
// @Failure 500 {object} response.ErrorResponse
// @Router /todos [get]
func (h *TodoHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		h.storeFailure(c, codeListFailed, "获取待办列表失败", err)
		return
	}

	h.renderer.RenderListing(c, items, nil)
}

// Create 创建待办
// @Summary 创建待办
// @Tags 待办
// @Accept json
// @Accept x-www-form-urlencoded
// @Param body body TitleRequest true "待办标题"
// @Success 303 "重定向到 /todos"
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} response.ValidationErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /todos [post]
func (h *TodoHandler) Create(c *gin.Context) {
	title, ok := h.bindTitle(c)
	if !ok {
		return
	}

	if _, err := h.service.Create(c.Request.Context(), title); err != nil {
		h.storeFailure(c, codeCreateFailed, "创建待办失败", err)
		return
	}

	h.renderer.RedirectToListing(c)
}

// Update 更新待办标题
// @Summary 更新待办
// @Tags 待办
// @Accept json
// @Accept x-www-form-urlencoded
// @Param id path int true "待办ID"
// @Param body body TitleRequest true "新标题"
// @Success 303 "重定向到 /todos"
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} response.ValidationErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /todos/{id} [put]
// @Router /todos/{id} [patch]
func (h *TodoHandler) Update(c *gin.Context) {
	item := boundTodo(c)

	title, ok := h.bindTitle(c)
	if !ok {
		return
	}

	if err := h.service.Update(c.Request.Context(), item.ID, title); err != nil {
		h.storeFailure(c, codeUpdateFailed, "更新待办失败", err)
		return
	}

	h.renderer.RedirectToListing(c)
}

// Delete 删除待办
// @Summary 删除待办
// @Tags 待办
// @Param id path int true "待办ID"
// @Success 303 "重定向到 /todos"
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /todos/{id} [delete]
func (h *TodoHandler) Delete(c *gin.Context) {
	item := boundTodo(c)

	if err := h.service.Delete(c.Request.Context(), item.ID); err != nil {
		h.storeFailure(c, codeDeleteFailed, "删除待办失败", err)
		return
	}

	h.renderer.RedirectToListing(c)
}

// Override 表单方法伪造：POST /todos/{id} 携带 _method=PUT|PATCH|DELETE
// @Summary 表单方法伪造
// @Tags 待办
// @Accept x-www-form-urlencoded
// @Param id path int true "待办ID"
// @Param _method formData string true "PUT、PATCH 或 DELETE"
// @Param title formData string false "新标题"
// @Success 303 "重定向到 /todos"
// @Failure 404 {object} response.ErrorResponse
// @Failure 405 {object} response.ErrorResponse
// @Router /todos/{id} [post]
func (h *TodoHandler) Override(c *gin.Context) {
	method := c.PostForm("_method")
	if method == "" {
		method = c.GetHeader("X-HTTP-Method-Override")
	}

	switch strings.ToUpper(method) {
	case http.MethodPut, http.MethodPatch:
		h.Update(c)
	case http.MethodDelete:
		h.Delete(c)
	default:
		response.Error(c, http.StatusMethodNotAllowed, codeMethodNotAllowed, "不支持的请求方法")
	}
}

// BatchUpdateDelete 批量更新后批量删除
// @Summary 批量更新删除
// @Description 先逐条更新标题，再一次性删除；不存在的 ID 忽略；两个阶段不在同一事务中
// @Tags 待办
// @Accept json
// @Param body body BatchRequest true "批量操作"
// @Success 303 "重定向到 /todos"
// @Failure 422 {object} response.ValidationErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /todos/batch-update-delete [post]
func (h *TodoHandler) BatchUpdateDelete(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		response.ErrorWithDetail(c, http.StatusBadRequest, codeBadRequest, "读取请求体失败", err.Error())
		return
	}

	batch, result, err := todo.ValidateBatch(body)
	if err != nil {
		h.storeFailure(c, codeBatchFailed, "批量操作失败", err)
		return
	}
	if !result.Valid() {
		h.validationFailed(c, result.Errors)
		return
	}

	for i := range batch.Updates {
		batch.Updates[i].Title = todo.NormalizeTitle(batch.Updates[i].Title)
	}

	applied, err := h.service.BatchApply(c.Request.Context(), batch)
	if err != nil {
		h.storeFailure(c, codeBatchFailed, "批量操作失败", err)
		return
	}

	log.FromContext(c.Request.Context(), h.logger).Info("Batch applied",
		"updates", len(batch.Updates),
		"deletes", len(batch.Deletes),
		"updated", applied.Updated,
		"deleted", applied.Deleted,
	)

	h.renderer.RedirectToListing(c)
}

// BindTodo 路由模型绑定：解析 :id 并确认待办存在
func (h *TodoHandler) BindTodo(c *gin.Context) {
	id, err := todo.ParseID(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusNotFound, codeNotFound, "待办不存在")
		c.Abort()
		return
	}

	item, err := h.service.Find(c.Request.Context(), id)
	if errors.Is(err, todo.ErrNotFound) {
		response.Error(c, http.StatusNotFound, codeNotFound, "待办不存在")
		c.Abort()
		return
	}
	if err != nil {
		h.storeFailure(c, codeLookupFailed, "查询待办失败", err)
		c.Abort()
		return
	}

	c.Set(ctxKeyTodo, item)
	c.Next()
}

// boundTodo 读取 BindTodo 绑定的待办
func boundTodo(c *gin.Context) *todo.Todo {
	return c.MustGet(ctxKeyTodo).(*todo.Todo)
}

// bindTitle 读取并校验标题；失败时已写入响应
func (h *TodoHandler) bindTitle(c *gin.Context) (string, bool) {
	var req TitleRequest
	if err := c.ShouldBind(&req); err != nil && !errors.Is(err, io.EOF) {
		response.ErrorWithDetail(c, http.StatusBadRequest, codeBadRequest, "参数错误", err.Error())
		return "", false
	}

	title := todo.NormalizeTitle(req.Title)
	if result := todo.RequireNonEmpty(todo.FieldTitle, title); !result.Valid() {
		h.validationFailed(c, result.Errors)
		return "", false
	}
	return title, true
}

// validationFailed 带错误信息重新渲染列表
func (h *TodoHandler) validationFailed(c *gin.Context, fields map[string]string) {
	var items []*todo.Todo
	if !render.WantsJSON(c) {
		var err error
		items, err = h.service.List(c.Request.Context())
		if err != nil {
			h.storeFailure(c, codeListFailed, "获取待办列表失败", err)
			return
		}
	}

	h.renderer.RenderListing(c, items, fields)
}

// storeFailure 存储错误统一返回 500
func (h *TodoHandler) storeFailure(c *gin.Context, code int, message string, err error) {
	log.FromContext(c.Request.Context(), h.logger).Error("Todo store operation failed",
		"code", code,
		"path", c.Request.URL.Path,
		"error", err,
	)
	_ = c.Error(err)
	response.Error(c, http.StatusInternalServerError, code, message)
}
