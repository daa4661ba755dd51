package registry

import "go.uber.org/fx"

// Module provides the concrete *Hub only. The exported Hubber binding comes
// from internal/adapter/pubsub.Module, which decorates the raw Hub with
// cross-node export before exposing it as registry.Hubber to the rest of
// the app.
var Module = fx.Module("registry",
	fx.Provide(NewHub),
)
