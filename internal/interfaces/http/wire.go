package http

import (
	"github.com/google/wire"

	"github.com/todoboard/backend/internal/interfaces/http/handler"
	"github.com/todoboard/backend/internal/interfaces/http/render"
)

// ProviderSet HTTP 接口层 ProviderSet
var ProviderSet = wire.NewSet(
	render.ProviderSet,
	handler.ProviderSet,
	NewServer,
)
