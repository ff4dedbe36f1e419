package handler

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
)

// sourceOf 返回 "file.go:行号"
func sourceOf(r slog.Record) string {
	frames := runtime.CallersFrames([]uintptr{r.PC})
	frame, _ := frames.Next()
	return fmt.Sprintf("%s:%d", filepath.Base(frame.File), frame.Line)
}
