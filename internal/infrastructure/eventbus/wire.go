package eventbus

import (
	"github.com/google/wire"

	"github.com/todoboard/backend/internal/domain/events"
)

// ProviderSet 事件总线 ProviderSet
var ProviderSet = wire.NewSet(
	NewBus,
	wire.Bind(new(events.EventBus), new(*Bus)),
	wire.Bind(new(events.Publisher), new(*Bus)),
)
