package transport

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pycsa-web/internal/domain"
	"pycsa-web/internal/middleware"
)

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("Content-Type = %q, want application/json", ct)
	}
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v (body %s)", err, w.Body.String())
	}
}

func postJSON(h http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestContentHandler_Lists(t *testing.T) {
	app := newTestApp(t, seedProducts)
	app.products.products[1].IsFeatured = true

	t.Run("empty lists are arrays", func(t *testing.T) {
		for _, path := range []string{"/api/services", "/api/delivery-zones", "/api/blogs/recent"} {
			w := serve(app.router, http.MethodGet, path)
			if w.Code != http.StatusOK {
				t.Fatalf("%s status = %d", path, w.Code)
			}
			if got := strings.TrimSpace(w.Body.String()); got != "[]" {
				t.Errorf("%s body = %s, want []", path, got)
			}
		}
	})

	t.Run("featured filter", func(t *testing.T) {
		var all, featured []domain.Product
		decodeJSON(t, serve(app.router, http.MethodGet, "/api/products"), &all)
		decodeJSON(t, serve(app.router, http.MethodGet, "/api/products?featured=true"), &featured)

		if len(all) != 2 {
			t.Errorf("products = %d, want 2", len(all))
		}
		if len(featured) != 1 || featured[0].ID != 2 {
			t.Errorf("featured = %+v, want product 2", featured)
		}
	})

	t.Run("backend error", func(t *testing.T) {
		app.services.listErr = errors.New("backend down")
		w := serve(app.router, http.MethodGet, "/api/services")
		if w.Code != http.StatusBadGateway {
			t.Fatalf("status = %d, want 502", w.Code)
		}

		var resp middleware.ErrorResponse
		decodeJSON(t, w, &resp)
		if resp.Error.Message != "failed to load services" {
			t.Errorf("message = %q", resp.Error.Message)
		}
	})
}

func TestContentHandler_Blogs(t *testing.T) {
	app := newTestApp(t, withBlogs(8))

	var page BlogPageResponse
	decodeJSON(t, serve(app.router, http.MethodGet, "/api/blogs?page=2"), &page)
	if page.Page != 2 || page.TotalPages != 2 || page.Total != 8 || len(page.Posts) != 2 {
		t.Errorf("page = %+v", page)
	}

	var clamped BlogPageResponse
	decodeJSON(t, serve(app.router, http.MethodGet, "/api/blogs?page=7"), &clamped)
	if clamped.Page != 2 || len(clamped.Posts) != 2 {
		t.Errorf("page 7 should clamp to 2, got %+v", clamped)
	}

	if w := serve(app.router, http.MethodGet, "/api/blogs?page=-1"); w.Code != http.StatusBadRequest {
		t.Errorf("negative page status = %d, want 400", w.Code)
	}

	var post BlogPostResponse
	decodeJSON(t, serve(app.router, http.MethodGet, "/api/blogs/3"), &post)
	if post.ID != 3 || len(post.Blocks) != 1 || post.Blocks[0].Kind != "paragraph" {
		t.Errorf("post = %+v", post)
	}

	if w := serve(app.router, http.MethodGet, "/api/blogs/99"); w.Code != http.StatusNotFound {
		t.Errorf("missing post status = %d, want 404", w.Code)
	}
	if w := serve(app.router, http.MethodGet, "/api/blogs/x"); w.Code != http.StatusBadRequest {
		t.Errorf("invalid id status = %d, want 400", w.Code)
	}
}

func TestContentHandler_Comments(t *testing.T) {
	app := newTestApp(t, withBlogs(1))

	created := postJSON(app.router, "/api/blogs/1/comments", `{"name":" Ana ","comment":"Muy útil"}`)
	if created.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", created.Code, created.Body.String())
	}
	var comment domain.BlogComment
	decodeJSON(t, created, &comment)
	if comment.Name != "Ana" || comment.BlogID != 1 {
		t.Errorf("comment = %+v", comment)
	}

	var comments []domain.BlogComment
	decodeJSON(t, serve(app.router, http.MethodGet, "/api/blogs/1/comments"), &comments)
	if len(comments) != 1 {
		t.Errorf("comments = %d, want 1", len(comments))
	}

	invalid := postJSON(app.router, "/api/blogs/1/comments", `{"name":"","comment":"Hola"}`)
	if invalid.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", invalid.Code)
	}
	var resp middleware.ErrorResponse
	decodeJSON(t, invalid, &resp)
	if resp.Error.Message != "Por favor, completa tu nombre y comentario." || resp.Error.Details["validation_errors"] == nil {
		t.Errorf("validation response = %+v", resp.Error)
	}

	if w := postJSON(app.router, "/api/blogs/1/comments", `{`); w.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", w.Code)
	}
	if w := postJSON(app.router, "/api/blogs/42/comments", `{"name":"Ana","comment":"Hola"}`); w.Code != http.StatusNotFound {
		t.Errorf("unknown post status = %d, want 404", w.Code)
	}

	app.blogs.addErr = errors.New("insert rejected")
	if w := postJSON(app.router, "/api/blogs/1/comments", `{"name":"Ana","comment":"Hola"}`); w.Code != http.StatusBadGateway {
		t.Errorf("backend error status = %d, want 502", w.Code)
	}
}
