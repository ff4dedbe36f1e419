package render

import "github.com/google/wire"

// ProviderSet 渲染 ProviderSet
var ProviderSet = wire.NewSet(NewRenderer)
