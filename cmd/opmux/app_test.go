package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmux/opmux/internal/observability"
	"github.com/opmux/opmux/internal/router"
)

func newTestRouter(t *testing.T) (*artifactStore, *router.Router) {
	t.Helper()
	store := newArtifactStore()
	rt, err := buildRouter(store, observability.NopLogger())
	require.NoError(t, err)
	return store, rt
}

func do(rt *router.Router, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)
	return rec
}

func TestCreateAndGetArtifact(t *testing.T) {
	t.Parallel()

	_, rt := newTestRouter(t)

	rec := do(rt, http.MethodPost, "/artifacts", `{"name":"report.pdf","kind":"report"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created artifact
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "report.pdf", created.Name)
	require.NotEmpty(t, created.ID)

	rec = do(rt, http.MethodGet, "/artifacts/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var fetched artifact
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Equal(t, created, fetched)
}

func TestCreateArtifact_MissingName(t *testing.T) {
	t.Parallel()

	_, rt := newTestRouter(t)

	rec := do(rt, http.MethodPost, "/artifacts", `{"kind":"report"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "invalid_input", body["error"])
}

func TestCreateArtifact_MalformedBody(t *testing.T) {
	t.Parallel()

	_, rt := newTestRouter(t)

	rec := do(rt, http.MethodPost, "/artifacts", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetArtifact_NotFound(t *testing.T) {
	t.Parallel()

	_, rt := newTestRouter(t)

	rec := do(rt, http.MethodGet, "/artifacts/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListArtifacts(t *testing.T) {
	t.Parallel()

	store, rt := newTestRouter(t)

	for _, name := range []string{"a", "b"} {
		_, err := store.create(context.Background(), createArtifactInput{Name: name})
		require.NoError(t, err)
	}

	rec := do(rt, http.MethodGet, "/artifacts", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var out listArtifactsOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Len(t, out.Artifacts, 2)

	// The query-constrained registration matches the same operation.
	rec = do(rt, http.MethodGet, "/artifacts?format=summary", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGreedyFilePath(t *testing.T) {
	t.Parallel()

	_, rt := newTestRouter(t)

	rec := do(rt, http.MethodGet, "/files/builds/2026/output.tar.gz", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "builds/2026/output.tar.gz", body["path"])
}

func TestMethodNotAllowedOnArtifacts(t *testing.T) {
	t.Parallel()

	_, rt := newTestRouter(t)

	rec := do(rt, http.MethodDelete, "/artifacts", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
