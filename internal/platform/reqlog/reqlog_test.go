package reqlog

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, ID(c)) })
	return r
}

func TestRequestID_Generated(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	id := w.Header().Get(HeaderRequestID)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, w.Body.String())
}

func TestRequestID_Propagated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	w := httptest.NewRecorder()
	newRouter().ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestRequestID_TooLongReplaced(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderRequestID, strings.Repeat("x", 100))
	w := httptest.NewRecorder()
	newRouter().ServeHTTP(w, req)

	_, err := uuid.Parse(w.Header().Get(HeaderRequestID))
	assert.NoError(t, err)
}

func TestFormat(t *testing.T) {
	line := Format(gin.LogFormatterParams{
		TimeStamp:  time.Date(2024, 6, 3, 1, 0, 0, 0, time.UTC),
		StatusCode: 201,
		Latency:    3 * time.Millisecond,
		ClientIP:   "127.0.0.1",
		Method:     http.MethodPost,
		Path:       "/api/presensi/check-in",
		Keys:       map[string]any{ctxKey: "req-1"},
	})
	assert.Contains(t, line, "201")
	assert.Contains(t, line, `"/api/presensi/check-in"`)
	assert.Contains(t, line, "req=req-1")
	assert.True(t, strings.HasSuffix(line, "\n"))

	assert.Contains(t, Format(gin.LogFormatterParams{}), "req=-")
}
