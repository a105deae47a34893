package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mentormatch/mentormatch/config"
	"github.com/mentormatch/mentormatch/pkg/models"
)

// A request through the full middleware chain, tracing included, reaches the
// heartbeat and carries the version header.
func TestRouterMiddlewareChain(t *testing.T) {
	appState := &models.AppState{Config: &config.Config{}}
	router := setupRouter(appState)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, config.VersionString, recorder.Header().Get(versionHeader))
}
