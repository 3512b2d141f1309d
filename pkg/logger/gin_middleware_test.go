package logger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(buf *bytes.Buffer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	InitWithWriter("test-service", "debug", buf)

	router := gin.New()
	router.Use(GinLoggerMiddleware())
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/fail", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	return router
}

func TestGinLoggerMiddleware_GeneratesRequestID(t *testing.T) {
	var buf bytes.Buffer
	router := setupRouter(&buf)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "test-service", entry["service"])
	assert.Equal(t, w.Header().Get(RequestIDHeader), entry["request_id"])
	assert.Equal(t, "/ok", entry["path"])
}

func TestGinLoggerMiddleware_KeepsIncomingRequestID(t *testing.T) {
	var buf bytes.Buffer
	router := setupRouter(&buf)

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
}

func TestGinLoggerMiddleware_ErrorLevelOn5xx(t *testing.T) {
	var buf bytes.Buffer
	router := setupRouter(&buf)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, float64(http.StatusInternalServerError), entry["status"])
}
