package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecker_Health(t *testing.T) {
	t.Parallel()

	c := NewChecker("1.2.3")

	resp := c.Health()
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
}

func TestChecker_Readiness(t *testing.T) {
	t.Parallel()

	c := NewChecker("test")
	c.RegisterCheck("always-ok", func() Check {
		return Check{Status: StatusHealthy}
	})

	resp := c.Readiness()
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Len(t, resp.Checks, 1)
}

func TestChecker_Readiness_FailingCheck(t *testing.T) {
	t.Parallel()

	c := NewChecker("test")
	c.RegisterCheck("ok", func() Check {
		return Check{Status: StatusHealthy}
	})
	c.RegisterCheck("broken", func() Check {
		return Check{Status: StatusUnhealthy, Message: "dependency down"}
	})

	resp := c.Readiness()
	assert.Equal(t, StatusUnhealthy, resp.Status)
	assert.Equal(t, "dependency down", resp.Checks["broken"].Message)
}

func TestHealthHandler(t *testing.T) {
	t.Parallel()

	c := NewChecker("test")

	rec := httptest.NewRecorder()
	c.HealthHandler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, StatusHealthy, body.Status)
}

func TestReadinessHandler(t *testing.T) {
	t.Parallel()

	c := NewChecker("test")

	rec := httptest.NewRecorder()
	c.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	c.RegisterCheck("broken", func() Check {
		return Check{Status: StatusUnhealthy}
	})

	rec = httptest.NewRecorder()
	c.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
