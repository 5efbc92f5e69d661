package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pycsa-web/internal/admin"
	"pycsa-web/internal/auth"
	"pycsa-web/internal/blog"
	"pycsa-web/internal/domain"
	"pycsa-web/internal/form"

	"go.uber.org/zap"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer(zap.NewNop())
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	return r
}

func render(t *testing.T, r *Renderer, page string, view *View) string {
	t.Helper()
	w := httptest.NewRecorder()
	r.Render(w, http.StatusOK, page, view)
	if w.Code != http.StatusOK {
		t.Fatalf("Render(%s) status = %d, body = %s", page, w.Code, w.Body.String())
	}
	return w.Body.String()
}

func loadedPage[T admin.Entity](t *testing.T, rows []T) *admin.Page[T] {
	t.Helper()
	p := admin.NewPage(func(ctx context.Context) ([]T, error) { return rows, nil }, nil)
	if err := p.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestNewRenderer_ParsesEveryPage(t *testing.T) {
	r := newRenderer(t)

	pages := []string{
		"home", "about", "contact", "blog_list", "blog_detail", "error", "terms", "privacy",
		"admin/login", "admin/dashboard", "admin/products", "admin/services", "admin/blogs", "admin/zones",
	}
	for _, p := range pages {
		if !r.Has(p) {
			t.Errorf("page %q not parsed", p)
		}
	}
	if r.Has("layout") || r.Has("admin/layout") {
		t.Error("layouts should not be pages")
	}
}

func TestRender_UnknownPage(t *testing.T) {
	r := newRenderer(t)
	w := httptest.NewRecorder()

	r.Render(w, http.StatusOK, "missing", &View{})

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestRender_Home(t *testing.T) {
	r := newRenderer(t)
	body := render(t, r, "home", &View{
		Nav: "home",
		Data: map[string]any{
			"Services": []domain.Service{{ID: 1, ServiceFields: domain.ServiceFields{
				NameService: "Guardias", Details: []string{"Turnos 24/7"}, ImageURLs: []string{"https://cdn/x.png"},
			}}},
			"Products": []domain.Product{{ID: 2, ProductFields: domain.ProductFields{Name: "Cámara", Price: 49.5}}},
			"Quote":    &form.QuoteInput{Provincia: "Coclé"},
		},
	})

	for _, want := range []string{"Guardias", "Turnos 24/7", "https://cdn/x.png", "$49.50", "<option selected>Coclé</option>"} {
		if !strings.Contains(body, want) {
			t.Errorf("home missing %q", want)
		}
	}
}

func TestRender_BlogListFallbackImageAndControls(t *testing.T) {
	r := newRenderer(t)
	body := render(t, r, "blog_list", &View{
		Nav: "blog",
		Data: map[string]any{
			"Page":     2,
			"Posts":    []domain.BlogSummary{{ID: 7, Title: "Alarmas"}},
			"Controls": blog.NewControls(2, 3),
			"Recent":   []domain.RecentPost{{ID: 7, Title: "Alarmas", Category: "Hogar"}},
		},
	})

	if !strings.Contains(body, blog.FallbackImage) {
		t.Error("card without images should use the fallback image")
	}
	if !strings.Contains(body, "Fecha desconocida") {
		t.Error("zero date should render as unknown")
	}
	if !strings.Contains(body, `<span class="active">2</span>`) {
		t.Error("current page button should be active")
	}
	if !strings.Contains(body, `href="/blog?page=3"`) {
		t.Error("next link missing")
	}
}

func TestRender_BlogListError(t *testing.T) {
	r := newRenderer(t)
	body := render(t, r, "blog_list", &View{Data: map[string]any{"Error": "No se pudieron cargar", "Page": 1}})

	if !strings.Contains(body, "No se pudieron cargar") || !strings.Contains(body, "Reintentar") {
		t.Error("list error should render with a retry link")
	}
}

func TestRender_BlogDetailEscapesComments(t *testing.T) {
	r := newRenderer(t)
	post := &domain.BlogPost{ID: 3, BlogFields: domain.BlogFields{
		Title: "Consejos", Info: []string{"uno", "dos"}, ImageURLs: []string{"a.png", "b.png"},
	}}
	body := render(t, r, "blog_detail", &View{
		Status: Success("¡Comentario enviado!"),
		Data: map[string]any{
			"Post":    post,
			"Hero":    blog.Hero(post.ImageURLs),
			"Blocks":  blog.Layout(post.Info, post.ImageURLs),
			"Comment": &form.CommentInput{},
			"Comments": []domain.BlogComment{
				{ID: 1, Name: "Ana", Comment: "<script>x</script>", CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
			},
		},
	})

	if strings.Contains(body, "<script>x</script>") {
		t.Error("comment body must be escaped")
	}
	if !strings.Contains(body, `action="/blog/3/comments#comentarios"`) {
		t.Error("comment form should post to the post's comments")
	}
	if !strings.Contains(body, "¡Comentario enviado!") || !strings.Contains(body, "data-transient") {
		t.Error("status should render as a transient alert")
	}
}

func TestRender_AdminProducts(t *testing.T) {
	r := newRenderer(t)
	page := loadedPage(t, []domain.Product{
		{ID: 4, ProductFields: domain.ProductFields{Name: "Sensor", SKU: "S-1", Price: 10, Stock: 3}},
	})
	page.ActionError = "Error: El SKU 'S-1' ya existe. Por favor, usa uno diferente."

	body := render(t, r, "admin/products", &View{
		Nav:     "products",
		User:    &auth.Identity{Email: "admin@pycsa.com"},
		Flashes: []auth.Flash{{Kind: auth.FlashSuccess, Message: "Producto guardado"}},
		Data: map[string]any{
			"Page":    page,
			"Form":    form.ProductFormFrom(nil),
			"Edit":    form.ProductFormFrom(&page.Items[0]),
			"EditID":  int64(4),
			"Confirm": map[string]string{"Label": "Sensor", "Action": "/Admin/products/4/delete", "Cancel": "/Admin/products"},
		},
	})

	for _, want := range []string{
		"admin@pycsa.com", "Producto guardado", "ya existe", "Sensor",
		`action="/Admin/products/4"`, `action="/Admin/products/4/delete"`, `value="S-1"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("admin products missing %q", want)
		}
	}
}

func TestRender_AdminEntityPages(t *testing.T) {
	r := newRenderer(t)
	user := &auth.Identity{Email: "admin@pycsa.com"}

	services := loadedPage(t, []domain.Service{{ID: 1, ServiceFields: domain.ServiceFields{
		NameService: "Monitoreo", Details: []string{"a", "b"}, ImageURLs: []string{"https://cdn/1.png"},
	}}})
	body := render(t, r, "admin/services", &View{User: user, Data: map[string]any{
		"Page": services, "Form": form.ServiceFormFrom(nil), "Edit": form.ServiceFormFrom(&services.Items[0]), "EditID": int64(1),
	}})
	if !strings.Contains(body, `name="keep_image" value="https://cdn/1.png" checked`) {
		t.Error("edit form should offer existing images to keep")
	}

	blogs := loadedPage(t, []domain.BlogPost{{ID: 2, BlogFields: domain.BlogFields{Title: "Post", Category: "Hogar"}}})
	render(t, r, "admin/blogs", &View{User: user, Data: map[string]any{"Page": blogs, "Form": form.BlogFormFrom(nil)}})

	zones := loadedPage(t, []domain.DeliveryZone{{ID: 3, DeliveryZoneFields: domain.DeliveryZoneFields{Province: "Panamá", Cost: 5}}})
	zones.ListError = "No se pudo cargar"
	body = render(t, r, "admin/zones", &View{User: user, Data: map[string]any{"Page": zones, "Form": form.DeliveryZoneFormFrom(nil)}})
	if !strings.Contains(body, "$5.00") || !strings.Contains(body, "Reintentar") {
		t.Error("zones page should list rows and the retry link")
	}
}

func TestRender_LoginHidesAdminNav(t *testing.T) {
	r := newRenderer(t)
	body := render(t, r, "admin/login", &View{Data: map[string]string{"Email": "a@b.c", "Error": "Credenciales", "Next": "/Admin/blogs"}})

	if strings.Contains(body, "Cerrar Sesión") {
		t.Error("logout button should not render without a user")
	}
	if !strings.Contains(body, `value="/Admin/blogs"`) {
		t.Error("next target should round-trip")
	}
}

func TestStatic(t *testing.T) {
	h := Static()

	for _, p := range []string{"/static/css/site.css", "/static/js/site.js", "/static/img/logo.png"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, p, nil))
		if w.Code != http.StatusOK {
			t.Errorf("GET %s = %d", p, w.Code)
		}
	}
}
