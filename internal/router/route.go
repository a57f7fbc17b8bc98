package router

import (
	"context"
	"net/http"

	"github.com/opmux/opmux/internal/operation"
	"github.com/opmux/opmux/internal/spec"
)

// Route binds one compiled request spec to one operation handler. It
// is immutable after construction; copies share the handler, they
// never duplicate its state.
type Route struct {
	spec    *spec.RequestSpec
	handler operation.Handler
}

// NewRoute creates a route from a compiled spec and a handler.
func NewRoute(rs *spec.RequestSpec, handler operation.Handler) Route {
	return Route{spec: rs, handler: handler}
}

// Matches evaluates the route's spec against a request.
func (r Route) Matches(req *http.Request) spec.Match {
	return r.spec.Matches(req)
}

// Serve invokes the bound handler.
func (r Route) Serve(ctx context.Context, req *http.Request) *operation.Response {
	return r.handler.Serve(ctx, req)
}

// Spec returns the route's request spec.
func (r Route) Spec() *spec.RequestSpec {
	return r.spec
}
