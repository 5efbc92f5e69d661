package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"pycsa-web/internal/baas"
	"pycsa-web/internal/config"
	"pycsa-web/internal/mailer"
	"pycsa-web/internal/media"
	"pycsa-web/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:    config.ServerConfig{Port: "0", Env: "development"},
		Supabase:  config.SupabaseConfig{AnonKey: "anon"},
		Storage:   config.StorageConfig{Bucket: "pycsa-image"},
		Session:   config.SessionConfig{Secret: "0123456789abcdef0123456789abcdef", MaxAge: 3600},
		Email:     config.EmailConfig{Provider: "log", ContactTemplate: "contact", QuoteTemplate: "quote"},
		RateLimit: config.RateLimitConfig{Requests: 1, Window: time.Minute},
	}
}

// newTestServer starts a server whose BaaS answers every table read with an
// empty list.
func newTestServer(t *testing.T, rdb *redis.Client) *Server {
	t.Helper()

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Range", "*/0")
		w.Write([]byte("[]"))
	}))
	t.Cleanup(backend.Close)

	logger := zap.NewNop()
	client := baas.NewClient(backend.URL, "anon", time.Second, logger)
	srv, err := NewServer(testConfig(), logger, Deps{
		BaaS:   client,
		Images: media.NewManager(media.NewBaaSStore(client, "pycsa-image"), "pycsa-image", logger),
		Mailer: mailer.NewLogSender(logger),
		Redis:  rdb,
	})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	t.Cleanup(func() { srv.Close() })
	return srv
}

func get(srv *Server, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t, nil)

	w := get(srv, "/health")
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != `{"status":"ok"}` {
		t.Errorf("health = %d %s", w.Code, w.Body.String())
	}
}

func TestServer_MetricsAndStatic(t *testing.T) {
	srv := newTestServer(t, nil)

	get(srv, "/About")
	metrics := get(srv, "/metrics")
	if metrics.Code != http.StatusOK || !strings.Contains(metrics.Body.String(), "go_goroutines") {
		t.Errorf("metrics = %d", metrics.Code)
	}

	css := get(srv, "/static/css/site.css")
	if css.Code != http.StatusOK {
		t.Fatalf("static status = %d", css.Code)
	}
	if cc := css.Header().Get("Cache-Control"); cc != "public, max-age=3600" {
		t.Errorf("Cache-Control = %q", cc)
	}
}

func TestServer_PublicPagesReadTheBackend(t *testing.T) {
	srv := newTestServer(t, nil)

	for _, path := range []string{"/", "/blog", "/About"} {
		if w := get(srv, path); w.Code != http.StatusOK {
			t.Errorf("GET %s status = %d", path, w.Code)
		}
	}

	w := get(srv, "/api/services")
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("services = %d %s", w.Code, w.Body.String())
	}
}

func TestServer_AdminRequiresSession(t *testing.T) {
	srv := newTestServer(t, nil)

	w := get(srv, "/Admin")
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}
	if loc := w.Header().Get("Location"); !strings.HasPrefix(loc, "/Admin/login") {
		t.Errorf("Location = %q", loc)
	}
	if w := get(srv, "/Admin/login"); w.Code != http.StatusOK {
		t.Errorf("login page status = %d", w.Code)
	}
}

func TestServer_UnknownRoutes(t *testing.T) {
	srv := newTestServer(t, nil)

	api := get(srv, "/api/nothing")
	if api.Code != http.StatusNotFound {
		t.Fatalf("api status = %d, want 404", api.Code)
	}
	var resp middleware.ErrorResponse
	if err := json.NewDecoder(api.Body).Decode(&resp); err != nil || resp.Error.Message != "resource not found" {
		t.Errorf("api body = %+v (%v)", resp, err)
	}

	page := get(srv, "/nothing")
	if page.Code != http.StatusNotFound || !strings.Contains(page.Header().Get("Content-Type"), "text/html") {
		t.Errorf("page = %d %s", page.Code, page.Header().Get("Content-Type"))
	}
}

func TestServer_CORSPreflight(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/blogs/1/comments", nil)
	req.Header.Set("Origin", "https://pycsa.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got == "" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestServer_RateLimitsSubmissions(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	srv := newTestServer(t, rdb)

	post := func() int {
		values := url.Values{"name": {"Ana"}, "email": {"ana@example.com"}, "subject": {"Hola"}, "message": {"Info"}}
		req := httptest.NewRequest(http.MethodPost, "/Contact", strings.NewReader(values.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.RemoteAddr = "10.0.0.1:5000"
		w := httptest.NewRecorder()
		srv.Handler.ServeHTTP(w, req)
		return w.Code
	}

	if code := post(); code != http.StatusOK {
		t.Fatalf("first post status = %d, want 200", code)
	}
	if code := post(); code != http.StatusTooManyRequests {
		t.Errorf("second post status = %d, want 429", code)
	}
	if w := get(srv, "/Contact"); w.Code != http.StatusOK {
		t.Errorf("reads are never limited, got %d", w.Code)
	}
}
