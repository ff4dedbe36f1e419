package config

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/todoboard/backend/internal/infrastructure/log"
)

// DefaultDebounceDelay 配置文件变更防抖延迟
const DefaultDebounceDelay = 300 * time.Millisecond

// ChangeFunc 配置变更回调
type ChangeFunc func(cfg *Config)

// Watcher 配置文件监听器
// 监听配置文件所在目录（编辑器通常以替换文件的方式保存），文件变更后重新加载并回调
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger

	mu        sync.Mutex
	callbacks []ChangeFunc
	timer     *time.Timer
	watcher   *fsnotify.Watcher

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewWatcher 创建配置文件监听器，未加载配置文件时 Start 为 no-op
func NewWatcher(cfg *Config) *Watcher {
	return &Watcher{
		path:     cfg.Path(),
		debounce: DefaultDebounceDelay,
		logger:   log.NewModuleLogger("config", "watcher"),
		stopCh:   make(chan struct{}),
	}
}

// OnChange 注册变更回调
func (w *Watcher) OnChange(fn ChangeFunc) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, fn)
}

// Start 启动监听
func (w *Watcher) Start() error {
	if w.path == "" {
		w.logger.Debug("No config file loaded, watcher disabled")
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		_ = fsw.Close()
		return err
	}

	w.mu.Lock()
	w.watcher = fsw
	w.mu.Unlock()

	w.wg.Add(1)
	go w.loop(fsw)

	w.logger.Info("Config watcher started", "path", w.path)
	return nil
}

// Stop 停止监听
func (w *Watcher) Stop() {
	w.mu.Lock()
	fsw := w.watcher
	w.watcher = nil
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	if fsw == nil {
		return
	}
	close(w.stopCh)
	_ = fsw.Close()
	w.wg.Wait()
	w.logger.Info("Config watcher stopped")
}

func (w *Watcher) loop(fsw *fsnotify.Watcher) {
	defer w.wg.Done()

	target := filepath.Clean(w.path)
	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.schedule()
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Config watcher error", "error", err)
		}
	}
}

// schedule 防抖：连续写入只触发一次重新加载
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.logger.Warn("Failed to reload config, keeping previous values",
			"path", w.path,
			"error", err,
		)
		return
	}

	w.mu.Lock()
	callbacks := make([]ChangeFunc, len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	w.logger.Info("Config reloaded", "path", w.path)
	for _, fn := range callbacks {
		fn(cfg)
	}
}
