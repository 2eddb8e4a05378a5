package server

import (
	"context"

	"github.com/kbukum/crudify/component"
)

// ComponentName is the registry name of the HTTP server.
const ComponentName = "http-server"

// serverComponent adapts Server to the component lifecycle: it starts last
// among the components registered before it and stops first.
type serverComponent struct{ *Server }

// NewComponent exposes s as a component.Component.
func NewComponent(s *Server) component.Component {
	return serverComponent{s}
}

func (serverComponent) Name() string { return ComponentName }

// Health reports the bound address once the listener is up.
func (c serverComponent) Health(context.Context) component.Health {
	h := component.Health{Name: ComponentName, Status: component.StatusUnhealthy, Message: "not listening"}
	if c.Started() {
		h.Status = component.StatusHealthy
		h.Message = "listening on " + c.Addr()
	}
	return h
}
