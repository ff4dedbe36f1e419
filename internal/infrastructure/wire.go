package infrastructure

import (
	"github.com/google/wire"

	"github.com/todoboard/backend/internal/infrastructure/config"
	"github.com/todoboard/backend/internal/infrastructure/discovery"
	"github.com/todoboard/backend/internal/infrastructure/eventbus"
	"github.com/todoboard/backend/internal/infrastructure/notification"
	"github.com/todoboard/backend/internal/infrastructure/storage"
	"github.com/todoboard/backend/internal/infrastructure/websocket"
)

// ProviderSet Infrastructure 层总 ProviderSet
var ProviderSet = wire.NewSet(
	config.ProviderSet,
	storage.ProviderSet,
	eventbus.ProviderSet,
	websocket.ProviderSet,
	notification.ProviderSet,
	discovery.ProviderSet,
)
