package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskboard/internal/cache"
	"taskboard/internal/config"
	"taskboard/internal/handler"
	"taskboard/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	_ "taskboard/docs"
)

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	boardCache := cache.NewBoardCache(nil, time.Minute)
	cfg := &config.Config{CORSOrigins: []string{"*"}}
	return NewRouter(cfg, Handlers{
		Boards:   handler.NewBoardHandler(nil, boardCache),
		Columns:  handler.NewColumnHandler(nil, boardCache),
		Tasks:    handler.NewTaskHandler(nil, nil, boardCache),
		Subtasks: handler.NewSubtaskHandler(nil, boardCache),
	})
}

func TestNewRouter_RegistersAPI(t *testing.T) {
	r := testRouter()

	registered := make(map[string]bool)
	for _, route := range r.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	for _, want := range []string{
		"GET /boards",
		"POST /boards",
		"PUT /boards",
		"PUT /boards/:id",
		"DELETE /boards/delete/:id",
		"DELETE /boards/reset",
		"GET /columns/:boardId",
		"POST /boards/:id/columns/reorder",
		"GET /tasks/:boardId",
		"POST /tasks",
		"PUT /tasks",
		"PUT /tasks/change-order",
		"PUT /tasks/:id",
		"DELETE /tasks/:id",
		"PUT /subtasks/:id",
		"GET /swagger/*any",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}
}

func TestNewRouter_RequestIDAndValidation(t *testing.T) {
	r := testRouter()

	resp := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/tasks/not-a-number", nil)
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.NotEmpty(t, resp.Header().Get(middleware.RequestIDHeader))
}

func TestNewRouter_ServesSwagger(t *testing.T) {
	r := testRouter()

	resp := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/swagger/doc.json", nil)
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "/tasks/change-order")
}
