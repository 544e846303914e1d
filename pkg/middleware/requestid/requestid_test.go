package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func serve(t *testing.T, header string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	var seen string
	r := gin.New()
	r.Use(Middleware())
	r.GET("/", func(c *gin.Context) {
		seen = Value(c)
		c.Status(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(HeaderKey, header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w, seen
}

func TestMiddlewareReusesClientID(t *testing.T) {
	w, seen := serve(t, "abc-123")
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", w.Header().Get(HeaderKey))
}

func TestMiddlewareGeneratesID(t *testing.T) {
	_, seen := serve(t, "")
	assert.Len(t, seen, 36)

	_, seen = serve(t, strings.Repeat("x", 200))
	assert.Len(t, seen, 36)

	_, seen = serve(t, "has space")
	assert.Len(t, seen, 36)
}
