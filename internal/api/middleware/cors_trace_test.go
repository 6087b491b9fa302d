package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func serve(r *gin.Engine, method, origin, traceID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if traceID != "" {
		req.Header.Set("X-Trace-ID", traceID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func newCORSRouter(t *testing.T, origins []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware(origins))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.OPTIONS("/", func(c *gin.Context) { t.Error("preflight reached the handler") })
	return r
}

func TestCORSMiddleware(t *testing.T) {
	r := newCORSRouter(t, []string{"https://agora.example", "http://localhost:3000/"})

	w := serve(r, http.MethodOptions, "https://agora.example", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://agora.example" {
		t.Fatalf("allow origin = %q", got)
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch) {
		t.Fatalf("allow methods = %q", w.Header().Get("Access-Control-Allow-Methods"))
	}

	w = serve(r, http.MethodGet, "http://localhost:3000", "")
	if w.Code != http.StatusOK || w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Fatalf("allowed get: %d %q", w.Code, w.Header().Get("Access-Control-Allow-Origin"))
	}
	if w.Header().Get("Access-Control-Allow-Methods") != "" {
		t.Fatal("non preflight response carries allow methods")
	}

	w = serve(r, http.MethodOptions, "https://evil.example", "")
	if w.Code != http.StatusNoContent || w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("foreign preflight: %d %q", w.Code, w.Header().Get("Access-Control-Allow-Origin"))
	}
	if w.Header().Get("Vary") != "Origin" {
		t.Fatalf("vary = %q", w.Header().Get("Vary"))
	}

	w = serve(r, http.MethodGet, "", "")
	if w.Code != http.StatusOK || w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("same origin: %d %q", w.Code, w.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestCORSMiddlewareAllowAll(t *testing.T) {
	for _, origins := range [][]string{nil, {"*"}} {
		r := newCORSRouter(t, origins)
		if got := serve(r, http.MethodGet, "https://any.example", "").Header().Get("Access-Control-Allow-Origin"); got != "https://any.example" {
			t.Fatalf("origins %v: allow origin = %q", origins, got)
		}
	}
}

func TestTraceMiddleware(t *testing.T) {
	r := newTestRouter(TraceMiddleware())

	if got := serve(r, http.MethodGet, "", "req-42.a_b").Header().Get("X-Trace-ID"); got != "req-42.a_b" {
		t.Fatalf("trace id not propagated: %q", got)
	}

	for _, bad := range []string{"", "has space", "line\tbreak", "semi;colon", strings.Repeat("a", 65)} {
		got := serve(r, http.MethodGet, "", bad).Header().Get("X-Trace-ID")
		if got == bad || !validTraceID(got) || len(got) != 36 {
			t.Fatalf("incoming %q: trace id = %q", bad, got)
		}
	}
}

func TestBearerSchemeCaseInsensitive(t *testing.T) {
	r := newTestRouter(AuthMiddleware())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer  "+token(t, 5))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if !strings.Contains(w.Body.String(), `"user_id":5`) {
		t.Fatalf("body = %s", w.Body.String())
	}

	for _, header := range []string{"Bearer", "Bearer ", "Basic abc", "Token " + token(t, 5)} {
		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		w = httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if !strings.Contains(w.Body.String(), `"code":401`) {
			t.Fatalf("header %q: body = %s", header, w.Body.String())
		}
	}
}
