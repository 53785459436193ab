package middlewares

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func newRequestIDRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/id", func(c *gin.Context) {
		c.String(http.StatusOK, RequestIDFromContext(c))
	})
	return r
}

func TestRequestID_Propagates(t *testing.T) {
	r := newRequestIDRouter()

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Body.String() != "abc-123" || w.Header().Get(RequestIDHeader) != "abc-123" {
		t.Fatalf("expected propagated id, got body=%q header=%q", w.Body.String(), w.Header().Get(RequestIDHeader))
	}
}

func TestRequestID_Generates(t *testing.T) {
	r := newRequestIDRouter()

	for _, incoming := range []string{"", strings.Repeat("x", 65)} {
		req := httptest.NewRequest(http.MethodGet, "/id", nil)
		if incoming != "" {
			req.Header.Set(RequestIDHeader, incoming)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if _, err := uuid.Parse(w.Body.String()); err != nil {
			t.Fatalf("expected generated uuid, got %q", w.Body.String())
		}
		if w.Header().Get(RequestIDHeader) != w.Body.String() {
			t.Fatalf("header and context ids differ")
		}
	}
}
