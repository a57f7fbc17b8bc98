package router

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmux/opmux/internal/operation"
	"github.com/opmux/opmux/internal/spec"
)

// namedHandler responds 200 with its own name, so tests can tell which
// route won the dispatch.
func namedHandler(name string) operation.Handler {
	return operation.HandlerFunc(func(_ context.Context, _ *http.Request) *operation.Response {
		return operation.TextResponse(http.StatusOK, name)
	})
}

func dispatch(t *testing.T, rt *Router, method, target string) *operation.Response {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	resp := rt.Dispatch(context.Background(), req)
	require.NotNil(t, resp)
	return resp
}

func TestBuilder_Build(t *testing.T) {
	t.Parallel()

	rt, err := NewBuilder().
		Handle(http.MethodGet, "/a", namedHandler("a")).
		Handle(http.MethodPost, "/b", namedHandler("b")).
		Build()
	require.NoError(t, err)
	assert.Equal(t, 2, rt.Routes())
}

func TestBuilder_InvalidPatternIsBuildError(t *testing.T) {
	t.Parallel()

	_, err := NewBuilder().
		Handle(http.MethodGet, "/ok", namedHandler("ok")).
		Handle(http.MethodGet, "/{broken", namedHandler("broken")).
		Handle(http.MethodGet, "/also-ok", namedHandler("also-ok")).
		Build()
	require.Error(t, err)
	assert.ErrorIs(t, err, spec.ErrUnclosedLabel)
	assert.Contains(t, err.Error(), "/{broken")
}

func TestBuilder_RejectsNestedRouter(t *testing.T) {
	t.Parallel()

	inner, err := NewBuilder().Handle(http.MethodGet, "/inner", namedHandler("inner")).Build()
	require.NoError(t, err)

	_, err = NewBuilder().
		Handle(http.MethodGet, "/outer", inner).
		Build()
	assert.ErrorIs(t, err, ErrNestedRouter)
}

func TestBuilder_RejectsNilHandler(t *testing.T) {
	t.Parallel()

	_, err := NewBuilder().Handle(http.MethodGet, "/x", nil).Build()
	assert.ErrorIs(t, err, ErrNilHandler)
}

func TestBuilder_Merge(t *testing.T) {
	t.Parallel()

	inner, err := NewBuilder().
		Handle(http.MethodGet, "/shared", namedHandler("inner")).
		Build()
	require.NoError(t, err)

	rt, err := NewBuilder().
		Handle(http.MethodGet, "/shared", namedHandler("outer")).
		Merge(inner).
		Build()
	require.NoError(t, err)
	assert.Equal(t, 2, rt.Routes())

	// Routes registered before the merge keep precedence.
	resp := dispatch(t, rt, http.MethodGet, "/shared")
	assert.Equal(t, "outer", string(resp.Body))
}

func TestRouter_Dispatch_FirstYesWins(t *testing.T) {
	t.Parallel()

	rt, err := NewBuilder().
		Handle(http.MethodGet, "/fixed", namedHandler("literal")).
		Handle(http.MethodGet, "/{label}", namedHandler("label")).
		Build()
	require.NoError(t, err)

	resp := dispatch(t, rt, http.MethodGet, "/fixed")
	assert.Equal(t, "literal", string(resp.Body))

	resp = dispatch(t, rt, http.MethodGet, "/other")
	assert.Equal(t, "label", string(resp.Body))
}

func TestRouter_Dispatch_RegistrationOrderPrecedence(t *testing.T) {
	t.Parallel()

	// Same two specs, opposite order: the first registered wins.
	rt, err := NewBuilder().
		Handle(http.MethodGet, "/{label}", namedHandler("label")).
		Handle(http.MethodGet, "/fixed", namedHandler("literal")).
		Build()
	require.NoError(t, err)

	resp := dispatch(t, rt, http.MethodGet, "/fixed")
	assert.Equal(t, "label", string(resp.Body))
}

func TestRouter_Dispatch_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	rt, err := NewBuilder().
		Handle(http.MethodGet, "/a", namedHandler("get-a")).
		Handle(http.MethodPost, "/a", namedHandler("post-a")).
		Build()
	require.NoError(t, err)

	resp := dispatch(t, rt, http.MethodDelete, "/a")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.Unmarshal(resp.Body, &body))
	assert.Equal(t, "method not allowed", body["error"])
}

func TestRouter_Dispatch_LaterMethodMatchStillDispatches(t *testing.T) {
	t.Parallel()

	rt, err := NewBuilder().
		Handle(http.MethodGet, "/a", namedHandler("get-a")).
		Handle(http.MethodPost, "/a", namedHandler("post-a")).
		Build()
	require.NoError(t, err)

	resp := dispatch(t, rt, http.MethodPost, "/a")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "post-a", string(resp.Body))
}

func TestRouter_Dispatch_NotFound(t *testing.T) {
	t.Parallel()

	rt, err := NewBuilder().
		Handle(http.MethodGet, "/a", namedHandler("a")).
		Build()
	require.NoError(t, err)

	resp := dispatch(t, rt, http.MethodGet, "/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_Dispatch_EmptyRouterIsNotFound(t *testing.T) {
	t.Parallel()

	rt, err := NewBuilder().Build()
	require.NoError(t, err)

	resp := dispatch(t, rt, http.MethodGet, "/anything")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_Dispatch_QueryConstrainedRoutes(t *testing.T) {
	t.Parallel()

	rt, err := NewBuilder().
		Handle(http.MethodGet, "/resource?kind=a", namedHandler("kind-a")).
		Handle(http.MethodGet, "/resource?kind=b", namedHandler("kind-b")).
		Build()
	require.NoError(t, err)

	resp := dispatch(t, rt, http.MethodGet, "/resource?kind=b")
	assert.Equal(t, "kind-b", string(resp.Body))

	resp = dispatch(t, rt, http.MethodGet, "/resource?kind=c")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_ServeHTTP(t *testing.T) {
	t.Parallel()

	rt, err := NewBuilder().
		Handle(http.MethodGet, "/ping", namedHandler("pong")).
		Build()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestRouter_ConcurrentDispatch(t *testing.T) {
	t.Parallel()

	builder := NewBuilder()
	for i := 0; i < 16; i++ {
		builder.Handle(http.MethodGet, fmt.Sprintf("/route/%d", i), namedHandler(fmt.Sprintf("h%d", i)))
	}
	rt, err := builder.Build()
	require.NoError(t, err)

	// N concurrent dispatches with distinct requests must produce the
	// same results as N sequential dispatches.
	const workers = 64
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			target := fmt.Sprintf("/route/%d", i%16)
			resp := dispatch(t, rt, http.MethodGet, target)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, fmt.Sprintf("h%d", i%16), string(resp.Body))
		}(i)
	}
	wg.Wait()
}

func TestRouter_AsOperationHandlerViaMerge(t *testing.T) {
	t.Parallel()

	inner, err := NewBuilder().
		Handle(http.MethodGet, "/v2/thing", namedHandler("v2")).
		Build()
	require.NoError(t, err)

	rt, err := NewBuilder().
		Handle(http.MethodGet, "/v1/thing", namedHandler("v1")).
		Merge(inner).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "v1", string(dispatch(t, rt, http.MethodGet, "/v1/thing").Body))
	assert.Equal(t, "v2", string(dispatch(t, rt, http.MethodGet, "/v2/thing").Body))
}
