package obs

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newLoggedRouter(buf *bytes.Buffer) (*gin.Engine, Middleware) {
	gin.SetMode(gin.TestMode)
	m := Middleware{Logger: slog.New(slog.NewJSONHandler(buf, nil))}
	router := gin.New()
	router.Use(m.RequestID())
	router.Use(m.LoggerMiddleware())
	return router, m
}

func TestLoggerMiddlewareLogsCollectedErrors(t *testing.T) {
	var buf bytes.Buffer
	router, _ := newLoggedRouter(&buf)
	router.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("payment gateway unreachable"))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false})
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	out := buf.String()
	assert.Contains(t, out, `"level":"ERROR"`)
	assert.Contains(t, out, "payment gateway unreachable")
}

func TestLoggerMiddlewareCleanRequest(t *testing.T) {
	var buf bytes.Buffer
	router, _ := newLoggedRouter(&buf)
	router.GET("/ok", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))

	out := buf.String()
	assert.Contains(t, out, `"level":"INFO"`)
	assert.NotContains(t, out, `"errors"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
