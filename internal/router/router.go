package router

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/opmux/opmux/internal/observability"
	"github.com/opmux/opmux/internal/operation"
	"github.com/opmux/opmux/internal/spec"
)

// Registration errors returned by the builder.
var (
	// ErrNestedRouter is returned when a Router is registered as a
	// plain route handler. Nesting must use Builder.Merge so routes
	// are composed explicitly instead of silently double-wrapped.
	ErrNestedRouter = errors.New("cannot register a Router as a route handler, use Builder.Merge")

	// ErrNilHandler is returned when a route is registered without a
	// handler.
	ErrNilHandler = errors.New("route handler must not be nil")
)

// Router is an ordered, immutable collection of routes. It is built
// once via a Builder, then shared read-only across concurrent request
// handling; each dispatch is an independent evaluation carrying no
// state between requests.
type Router struct {
	routes []Route
	logger observability.Logger
	tracer trace.Tracer
}

// Routes returns the number of registered routes.
func (rt *Router) Routes() int {
	return len(rt.routes)
}

// Dispatch evaluates every route's spec in registration order and
// hands the request to the first full match. If no route fully matches
// but at least one reported a method mismatch, the response is 405;
// otherwise 404.
func (rt *Router) Dispatch(ctx context.Context, req *http.Request) *operation.Response {
	start := time.Now()

	ctx, span := rt.tracer.Start(ctx, "router.dispatch",
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", req.URL.Path),
		),
	)
	defer span.End()

	methodNotAllowed := false
	for i := range rt.routes {
		switch rt.routes[i].Matches(req) {
		case spec.MatchYes:
			span.SetAttributes(attribute.Int("route.index", i))
			rt.observe(req, verdictMatched, start)
			return rt.routes[i].Serve(ctx, req)
		case spec.MatchMethodNotAllowed:
			methodNotAllowed = true
		}
	}

	if methodNotAllowed {
		rt.observe(req, verdictMethodNotAllowed, start)
		return operation.JSONResponse(http.StatusMethodNotAllowed, map[string]string{
			"error": "method not allowed",
		})
	}

	rt.observe(req, verdictNotFound, start)
	return operation.JSONResponse(http.StatusNotFound, map[string]string{
		"error": "not found",
	})
}

// observe records dispatch metrics and a debug log for one evaluated
// request.
func (rt *Router) observe(req *http.Request, verdict string, start time.Time) {
	m := getDispatchMetrics()
	m.dispatchTotal.WithLabelValues(req.Method, verdict).Inc()
	m.dispatchDuration.WithLabelValues(verdict).Observe(time.Since(start).Seconds())

	rt.logger.Debug("request dispatched",
		observability.String("method", req.Method),
		observability.String("path", req.URL.Path),
		observability.String("verdict", verdict),
	)
}

// Serve implements operation.Handler, allowing a Router to be composed
// into another Router via Builder.Merge.
func (rt *Router) Serve(ctx context.Context, req *http.Request) *operation.Response {
	return rt.Dispatch(ctx, req)
}

// ServeHTTP implements http.Handler, the inbound transport surface.
func (rt *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	resp := rt.Dispatch(req.Context(), req)
	if err := resp.Write(w); err != nil {
		rt.logger.Error("failed to write response",
			observability.String("path", req.URL.Path),
			observability.Error(err),
		)
	}
}

// Builder assembles a Router. Registration order is preserved and
// becomes the dispatch precedence; the first registration error sticks
// and is returned by Build.
type Builder struct {
	routes []Route
	logger observability.Logger
	err    error
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithLogger sets the logger for the built Router.
func WithLogger(logger observability.Logger) BuilderOption {
	return func(b *Builder) {
		b.logger = logger
	}
}

// NewBuilder creates an empty router builder.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		logger: observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Route registers a compiled spec with its handler. Registering a
// Router as the handler is rejected; nesting must go through Merge.
func (b *Builder) Route(rs *spec.RequestSpec, handler operation.Handler) *Builder {
	if b.err != nil {
		return b
	}
	if handler == nil {
		b.err = ErrNilHandler
		return b
	}
	if _, ok := handler.(*Router); ok {
		b.err = ErrNestedRouter
		return b
	}

	b.routes = append(b.routes, NewRoute(rs, handler))
	return b
}

// Handle parses a URI pattern and registers the resulting spec with
// its handler. A malformed pattern is a build-time error carried to
// Build.
func (b *Builder) Handle(method, pattern string, handler operation.Handler) *Builder {
	if b.err != nil {
		return b
	}

	rs, err := spec.ParseRequestSpec(method, pattern)
	if err != nil {
		b.err = err
		return b
	}
	return b.Route(rs, handler)
}

// Merge appends another Router's routes, preserving their registration
// order after the routes already registered. This is the explicit
// composition operation for nesting routers.
func (b *Builder) Merge(other *Router) *Builder {
	if b.err != nil {
		return b
	}
	b.routes = append(b.routes, other.routes...)
	return b
}

// Build finalizes the Router. After Build the route table is read-only
// for the life of the process.
func (b *Builder) Build() (*Router, error) {
	if b.err != nil {
		return nil, b.err
	}

	rt := &Router{
		routes: b.routes,
		logger: b.logger,
		tracer: otel.Tracer("github.com/opmux/opmux/internal/router"),
	}

	getDispatchMetrics().routesRegistered.Set(float64(len(rt.routes)))

	b.logger.Info("router built",
		observability.Int("routes", len(rt.routes)),
	)

	return rt, nil
}
