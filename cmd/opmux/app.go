package main

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/opmux/opmux/internal/observability"
	"github.com/opmux/opmux/internal/operation"
	"github.com/opmux/opmux/internal/router"
)

// artifactStore is a small in-memory service used to exercise the
// dispatcher end to end.
type artifactStore struct {
	mu        sync.RWMutex
	artifacts map[string]artifact
}

type artifact struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}

type createArtifactInput struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

type listArtifactsOutput struct {
	Artifacts []artifact `json:"artifacts"`
}

func newArtifactStore() *artifactStore {
	return &artifactStore{
		artifacts: make(map[string]artifact),
	}
}

func (s *artifactStore) create(_ context.Context, in createArtifactInput) (artifact, error) {
	if in.Name == "" {
		return artifact{}, operation.NewRejection(http.StatusBadRequest, "invalid_input", "name is required")
	}

	a := artifact{
		ID:   uuid.New().String(),
		Name: in.Name,
		Kind: in.Kind,
	}

	s.mu.Lock()
	s.artifacts[a.ID] = a
	s.mu.Unlock()

	return a, nil
}

func (s *artifactStore) get(_ context.Context, id string) (artifact, error) {
	s.mu.RLock()
	a, ok := s.artifacts[id]
	s.mu.RUnlock()

	if !ok {
		return artifact{}, operation.NewRejection(http.StatusNotFound, "not_found", "artifact not found")
	}
	return a, nil
}

func (s *artifactStore) list(_ context.Context, _ struct{}) (listArtifactsOutput, error) {
	s.mu.RLock()
	out := listArtifactsOutput{Artifacts: make([]artifact, 0, len(s.artifacts))}
	for _, a := range s.artifacts {
		out.Artifacts = append(out.Artifacts, a)
	}
	s.mu.RUnlock()

	sort.Slice(out.Artifacts, func(i, j int) bool {
		return out.Artifacts[i].ID < out.Artifacts[j].ID
	})
	return out, nil
}

// pathTailExtractor captures everything after the given prefix,
// including slashes.
func pathTailExtractor(prefix string) operation.Extractor[string] {
	return func(r *http.Request) (string, *operation.Rejection) {
		tail := strings.TrimPrefix(r.URL.Path, prefix)
		if tail == "" {
			return "", operation.NewRejection(http.StatusBadRequest, "invalid_input", "empty path")
		}
		return tail, nil
	}
}

func pathLastSegmentExtractor() operation.Extractor[string] {
	return func(r *http.Request) (string, *operation.Rejection) {
		path := strings.TrimRight(r.URL.Path, "/")
		idx := strings.LastIndexByte(path, '/')
		if idx < 0 || idx == len(path)-1 {
			return "", operation.NewRejection(http.StatusBadRequest, "invalid_input", "missing identifier")
		}
		return path[idx+1:], nil
	}
}

func emptyExtractor() operation.Extractor[struct{}] {
	return func(*http.Request) (struct{}, *operation.Rejection) {
		return struct{}{}, nil
	}
}

// buildRouter wires the demo operations into a router. The patterns
// cover literal, label, and greedy segments plus a query constraint.
func buildRouter(store *artifactStore, logger observability.Logger) (*router.Router, error) {
	createHandler := operation.NewHandler(
		operation.JSONExtractor[createArtifactInput](),
		store.create,
		operation.WithResponseConverter[createArtifactInput](func(a artifact) *operation.Response {
			return operation.JSONResponse(http.StatusCreated, a)
		}),
	)

	getHandler := operation.NewHandler(
		pathLastSegmentExtractor(),
		store.get,
	)

	listHandler := operation.NewHandler(
		emptyExtractor(),
		store.list,
	)

	echoPathHandler := operation.NewHandler(
		pathTailExtractor("/files/"),
		func(_ context.Context, path string) (map[string]string, error) {
			return map[string]string{"path": path}, nil
		},
	)

	return router.NewBuilder(router.WithLogger(logger)).
		Handle(http.MethodPost, "/artifacts", createHandler).
		Handle(http.MethodGet, "/artifacts?format=summary", listHandler).
		Handle(http.MethodGet, "/artifacts", listHandler).
		Handle(http.MethodGet, "/artifacts/{id}", getHandler).
		Handle(http.MethodGet, "/files/{path+}", echoPathHandler).
		Build()
}
