package discovery

import "github.com/google/wire"

// ProviderSet 服务发现 ProviderSet
var ProviderSet = wire.NewSet(NewAdvertiser)
