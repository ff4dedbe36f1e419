// Package render 负责把待办列表输出给客户端
//
// 支持三种客户端：
// Inertia 请求（X-Inertia: true）返回页面对象 JSON；
// JSON 客户端（Accept: application/json）返回统一响应结构；
// 浏览器首次访问返回带 data-page 的 HTML 外壳。
package render

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/todoboard/backend/internal/domain/todo"
	"github.com/todoboard/backend/internal/infrastructure/config"
	"github.com/todoboard/backend/internal/infrastructure/log"
	"github.com/todoboard/backend/internal/interfaces/http/response"
)

// Inertia 协议头
const (
	HeaderInertia  = "X-Inertia"
	HeaderVersion  = "X-Inertia-Version"
	HeaderLocation = "X-Inertia-Location"
)

// ComponentHome 列表页组件名
const ComponentHome = "Home"

// ListingPath 列表页路径，所有写操作完成后重定向到这里
const ListingPath = "/todos"

// 业务错误码
const (
	codeValidation = 100002
	codeRender     = 800010
)

//go:embed app.html.tmpl
var shellTemplate string

// Page Inertia 页面对象
type Page struct {
	Component string                 `json:"component"`
	Props     map[string]interface{} `json:"props"`
	URL       string                 `json:"url"`
	Version   string                 `json:"version"`
}

// TodoView 列表项
type TodoView struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	CreatedAt int64  `json:"created_at"` // Unix 毫秒时间戳
	UpdatedAt int64  `json:"updated_at"` // Unix 毫秒时间戳
}

// ToView 将领域模型转换为列表项
func ToView(item *todo.Todo) TodoView {
	return TodoView{
		ID:        item.ID,
		Title:     item.Title,
		CreatedAt: item.CreatedAt.UnixMilli(),
		UpdatedAt: item.UpdatedAt.UnixMilli(),
	}
}

// ToViews 批量转换，空列表返回空切片
func ToViews(items []*todo.Todo) []TodoView {
	views := make([]TodoView, 0, len(items))
	for _, item := range items {
		views = append(views, ToView(item))
	}
	return views
}

// shellData HTML 外壳模板数据
type shellData struct {
	AppName   string
	ScriptURL string
	PageJSON  string
}

// Renderer 列表渲染器
type Renderer struct {
	cfg    *config.RenderConfig
	shell  *template.Template
	logger *slog.Logger
}

// NewRenderer 创建渲染器
func NewRenderer(cfg *config.RenderConfig) *Renderer {
	return &Renderer{
		cfg:    cfg,
		shell:  template.Must(template.New("app").Parse(shellTemplate)),
		logger: log.NewModuleLogger("http", "render"),
	}
}

// Version 当前前端资源版本
func (r *Renderer) Version() string {
	return r.cfg.AssetVersion
}

// IsInertia 是否为 Inertia 请求
func IsInertia(c *gin.Context) bool {
	return c.GetHeader(HeaderInertia) == "true"
}

// WantsJSON 是否为普通 JSON 客户端
func WantsJSON(c *gin.Context) bool {
	if IsInertia(c) {
		return false
	}
	return c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON
}

// RenderHome 渲染首页（不带列表数据）
func (r *Renderer) RenderHome(c *gin.Context) {
	r.render(c, http.StatusOK, ComponentHome, map[string]interface{}{
		"errors": map[string]string{},
	})
}

// RenderListing 渲染待办列表
// errs 非空时为校验失败重新渲染：Inertia 请求仍返回 200，
// JSON 客户端返回 422，HTML 外壳返回 422
func (r *Renderer) RenderListing(c *gin.Context, items []*todo.Todo, errs map[string]string) {
	if errs == nil {
		errs = map[string]string{}
	}

	if WantsJSON(c) {
		if len(errs) > 0 {
			response.ValidationFailed(c, codeValidation, errs)
			return
		}
		response.Success(c, ToViews(items))
		return
	}

	status := http.StatusOK
	if len(errs) > 0 && !IsInertia(c) {
		status = http.StatusUnprocessableEntity
	}

	page := r.page(c, ComponentHome, map[string]interface{}{
		"todos":  ToViews(items),
		"errors": errs,
	})
	// 写请求校验失败时，路径没有 GET 路由，页面 URL 固定为列表页
	if len(errs) > 0 {
		page.URL = ListingPath
	}
	r.write(c, status, page)
}

// RedirectToListing 写操作完成后重定向到列表页
// 使用 303，浏览器与 Inertia 客户端都会以 GET 跟随
func (r *Renderer) RedirectToListing(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, ListingPath)
}

func (r *Renderer) render(c *gin.Context, status int, component string, props map[string]interface{}) {
	r.write(c, status, r.page(c, component, props))
}

func (r *Renderer) page(c *gin.Context, component string, props map[string]interface{}) Page {
	return Page{
		Component: component,
		Props:     props,
		URL:       c.Request.URL.RequestURI(),
		Version:   r.cfg.AssetVersion,
	}
}

func (r *Renderer) write(c *gin.Context, status int, page Page) {
	c.Header("Vary", HeaderInertia)

	if IsInertia(c) {
		c.Header(HeaderInertia, "true")
		c.JSON(status, page)
		return
	}

	pageJSON, err := json.Marshal(page)
	if err != nil {
		r.fail(c, err)
		return
	}

	var buf bytes.Buffer
	err = r.shell.Execute(&buf, shellData{
		AppName:   r.cfg.AppName,
		ScriptURL: r.cfg.ScriptURL,
		PageJSON:  string(pageJSON),
	})
	if err != nil {
		r.fail(c, err)
		return
	}

	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

func (r *Renderer) fail(c *gin.Context, err error) {
	log.FromContext(c.Request.Context(), r.logger).Error("Failed to render page",
		"error", err,
	)
	response.Error(c, http.StatusInternalServerError, codeRender, "页面渲染失败")
}

// VersionGuard 资源版本检查中间件
// Inertia GET 请求的版本与服务端不一致时返回 409，客户端据此整页刷新
func (r *Renderer) VersionGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsInertia(c) || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		clientVersion := c.GetHeader(HeaderVersion)
		if clientVersion == "" || clientVersion == r.cfg.AssetVersion {
			c.Next()
			return
		}

		c.Header(HeaderLocation, absoluteURL(c.Request))
		c.AbortWithStatus(http.StatusConflict)
	}
}

// absoluteURL 还原请求的完整 URL
func absoluteURL(req *http.Request) string {
	scheme := "http"
	if req.TLS != nil {
		scheme = "https"
	}
	if proto := req.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + req.Host + req.URL.RequestURI()
}
