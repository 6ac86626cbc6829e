package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoutesEngine(t *testing.T, s *Scheduler) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	s.RegisterRoutes(engine)
	return engine
}

func serve(engine *gin.Engine, method, path string) (*httptest.ResponseRecorder, map[string]any) {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	var body map[string]any
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &body)
	}
	return w, body
}

func TestRoutes_ListAndStatus(t *testing.T) {
	s := NewScheduler()
	require.NoError(t, s.AddTask(&Task{ID: "b", Name: "B", Schedule: "@every 1h", Handler: noop}))
	require.NoError(t, s.AddTask(&Task{ID: "a", Name: "A", Schedule: "@every 1h", Handler: noop}))
	engine := newRoutesEngine(t, s)

	w, body := serve(engine, http.MethodGet, "/tasks")
	require.Equal(t, http.StatusOK, w.Code)
	tasks := body["data"].([]any)
	require.Len(t, tasks, 2)
	assert.Equal(t, "a", tasks[0].(map[string]any)["id"])

	w, body = serve(engine, http.MethodGet, "/tasks/b")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "B", body["data"].(map[string]any)["name"])

	w, body = serve(engine, http.MethodGet, "/tasks/missing")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, body["detail"], "task not found")
}

func TestRoutes_RunNow(t *testing.T) {
	s := NewScheduler()
	fail := true
	require.NoError(t, s.AddTask(&Task{ID: "verify", Schedule: "@every 1h", Handler: func(ctx context.Context) error {
		if fail {
			return errors.New("verification failed")
		}
		return nil
	}}))
	engine := newRoutesEngine(t, s)

	w, body := serve(engine, http.MethodPost, "/tasks/verify/run")
	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "verification failed", body["detail"])
	assert.Equal(t, float64(1), body["task"].(map[string]any)["runs"])

	fail = false
	w, body = serve(engine, http.MethodPost, "/tasks/verify/run")
	require.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(2), data["runs"])
	assert.Nil(t, data["last_error"])

	w, _ = serve(engine, http.MethodPost, "/tasks/missing/run")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoutes_Remove(t *testing.T) {
	s := NewScheduler()
	require.NoError(t, s.AddTask(&Task{ID: "a", Schedule: "@every 1h", Handler: noop}))
	engine := newRoutesEngine(t, s)

	w, _ := serve(engine, http.MethodDelete, "/tasks/a")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, s.ListTasks())

	w, _ = serve(engine, http.MethodDelete, "/tasks/a")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
