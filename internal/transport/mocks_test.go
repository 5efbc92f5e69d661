package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"pycsa-web/internal/auth"
	"pycsa-web/internal/baas"
	"pycsa-web/internal/domain"
	"pycsa-web/internal/form"
	"pycsa-web/internal/middleware"
	"pycsa-web/internal/repository"
	"pycsa-web/internal/service"
	"pycsa-web/internal/web"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Mock services for testing

type mockProductService struct {
	mu        sync.Mutex
	seq       int64
	products  []domain.Product
	listErr   error
	createErr error
	deleteErr error
	deleted   []int64
}

func (m *mockProductService) List(ctx context.Context) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]domain.Product(nil), m.products...), nil
}

func (m *mockProductService) ListFeatured(ctx context.Context) ([]domain.Product, error) {
	all, err := m.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.Product
	for _, p := range all {
		if p.IsFeatured {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProductService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *mockProductService) Create(ctx context.Context, f *form.ProductForm) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	for _, p := range m.products {
		if f.SKU != "" && p.SKU.String() == f.SKU {
			return nil, &service.DuplicateSKUError{SKU: f.SKU}
		}
	}
	m.seq++
	p := domain.Product{ID: 100 + m.seq, ProductFields: f.Fields(""), CreatedAt: time.Now()}
	m.products = append([]domain.Product{p}, m.products...)
	return &p, nil
}

func (m *mockProductService) Update(ctx context.Context, id int64, f *form.ProductForm) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.products {
		if p.ID == id {
			m.products[i].ProductFields = f.Fields(p.ImageURL.String())
			updated := m.products[i]
			return &updated, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *mockProductService) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	for i, p := range m.products {
		if p.ID == id {
			m.products = append(m.products[:i], m.products[i+1:]...)
			m.deleted = append(m.deleted, id)
			return nil
		}
	}
	return repository.ErrProductNotFound
}

type mockOfferingService struct {
	services []domain.Service
	listErr  error
}

func (m *mockOfferingService) List(ctx context.Context) ([]domain.Service, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.services, nil
}

func (m *mockOfferingService) ListFeatured(ctx context.Context) ([]domain.Service, error) {
	return m.List(ctx)
}

func (m *mockOfferingService) Get(ctx context.Context, id int64) (*domain.Service, error) {
	for _, s := range m.services {
		if s.ID == id {
			s := s
			return &s, nil
		}
	}
	return nil, repository.ErrServiceNotFound
}

func (m *mockOfferingService) Create(ctx context.Context, f *form.ServiceForm) (*domain.Service, error) {
	if f.Images.Len() == 0 {
		return nil, service.ErrImagesRequired
	}
	s := domain.Service{ID: int64(len(m.services) + 1), ServiceFields: f.Fields(f.Images.Kept())}
	m.services = append([]domain.Service{s}, m.services...)
	return &s, nil
}

func (m *mockOfferingService) Update(ctx context.Context, id int64, f *form.ServiceForm) (*domain.Service, error) {
	for i, s := range m.services {
		if s.ID == id {
			m.services[i].ServiceFields = f.Fields(f.Images.Kept())
			updated := m.services[i]
			return &updated, nil
		}
	}
	return nil, repository.ErrServiceNotFound
}

func (m *mockOfferingService) Delete(ctx context.Context, id int64) error {
	for i, s := range m.services {
		if s.ID == id {
			m.services = append(m.services[:i], m.services[i+1:]...)
			return nil
		}
	}
	return repository.ErrServiceNotFound
}

type mockBlogService struct {
	mu          sync.Mutex
	posts       []domain.BlogPost
	comments    map[int64][]domain.BlogComment
	listErr     error
	getErr      error
	addErr      error
	pageCalls   [][2]int
	commentSeq  int64
	recentCalls int
}

func newMockBlogService(n int) *mockBlogService {
	m := &mockBlogService{comments: map[int64][]domain.BlogComment{}}
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= n; i++ {
		m.posts = append(m.posts, domain.BlogPost{
			ID: int64(i),
			BlogFields: domain.BlogFields{
				Title:    fmt.Sprintf("Entrada %d", i),
				Info:     []string{fmt.Sprintf("Párrafo de la entrada %d", i)},
				Date:     domain.Date{Time: start.AddDate(0, 0, n-i)},
				Category: "Seguridad",
			},
		})
	}
	return m
}

func (m *mockBlogService) List(ctx context.Context) ([]domain.BlogPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]domain.BlogPost(nil), m.posts...), nil
}

func (m *mockBlogService) ListPage(ctx context.Context, from, to int) ([]domain.BlogSummary, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pageCalls = append(m.pageCalls, [2]int{from, to})
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	if from > 0 && from >= len(m.posts) {
		// a range past the exact count is rejected like PostgREST does
		return nil, 0, &baas.APIError{Status: http.StatusRequestedRangeNotSatisfiable, Code: "PGRST103", Message: "Requested range not satisfiable"}
	}
	var out []domain.BlogSummary
	for i := from; i <= to && i < len(m.posts); i++ {
		p := m.posts[i]
		out = append(out, domain.BlogSummary{ID: p.ID, Title: p.Title, Date: p.Date, Category: p.Category})
	}
	return out, len(m.posts), nil
}

func (m *mockBlogService) Recent(ctx context.Context) []domain.RecentPost {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recentCalls++
	var out []domain.RecentPost
	for i := 0; i < len(m.posts) && i < 5; i++ {
		out = append(out, domain.RecentPost{ID: m.posts[i].ID, Title: m.posts[i].Title, Category: m.posts[i].Category})
	}
	return out
}

func (m *mockBlogService) Get(ctx context.Context, id int64) (*domain.BlogPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, p := range m.posts {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, repository.ErrBlogNotFound
}

func (m *mockBlogService) Comments(ctx context.Context, blogID int64) []domain.BlogComment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.BlogComment(nil), m.comments[blogID]...)
}

func (m *mockBlogService) AddComment(ctx context.Context, blogID int64, in *form.CommentInput) (*domain.BlogComment, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return nil, m.addErr
	}
	m.commentSeq++
	c := domain.BlogComment{ID: m.commentSeq, BlogID: blogID, Name: in.Name, Comment: in.Comment, CreatedAt: time.Now()}
	m.comments[blogID] = append([]domain.BlogComment{c}, m.comments[blogID]...)
	return &c, nil
}

func (m *mockBlogService) Create(ctx context.Context, f *form.BlogForm) (*domain.BlogPost, error) {
	return nil, errors.New("not implemented")
}

func (m *mockBlogService) Update(ctx context.Context, id int64, f *form.BlogForm) (*domain.BlogPost, error) {
	return nil, errors.New("not implemented")
}

func (m *mockBlogService) Delete(ctx context.Context, id int64) error {
	return errors.New("not implemented")
}

type mockZoneService struct {
	zones     []domain.DeliveryZone
	updateErr error
}

func (m *mockZoneService) List(ctx context.Context) ([]domain.DeliveryZone, error) {
	out := append([]domain.DeliveryZone(nil), m.zones...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Province != out[j].Province {
			return out[i].Province < out[j].Province
		}
		return out[i].Area < out[j].Area
	})
	return out, nil
}

func (m *mockZoneService) Get(ctx context.Context, id int64) (*domain.DeliveryZone, error) {
	for _, z := range m.zones {
		if z.ID == id {
			z := z
			return &z, nil
		}
	}
	return nil, repository.ErrDeliveryZoneNotFound
}

func (m *mockZoneService) Create(ctx context.Context, f *form.DeliveryZoneForm) (*domain.DeliveryZone, error) {
	z := domain.DeliveryZone{ID: int64(len(m.zones) + 1), DeliveryZoneFields: f.Fields()}
	m.zones = append(m.zones, z)
	return &z, nil
}

func (m *mockZoneService) Update(ctx context.Context, id int64, f *form.DeliveryZoneForm) (*domain.DeliveryZone, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	for i, z := range m.zones {
		if z.ID == id {
			m.zones[i].DeliveryZoneFields = f.Fields()
			updated := m.zones[i]
			return &updated, nil
		}
	}
	return nil, repository.ErrDeliveryZoneNotFound
}

func (m *mockZoneService) Delete(ctx context.Context, id int64) error {
	for i, z := range m.zones {
		if z.ID == id {
			m.zones = append(m.zones[:i], m.zones[i+1:]...)
			return nil
		}
	}
	return repository.ErrDeliveryZoneNotFound
}

type mockMessageService struct {
	mu       sync.Mutex
	err      error
	contacts []*form.ContactInput
	quotes   []*form.QuoteInput
}

func (m *mockMessageService) SendContact(ctx context.Context, in *form.ContactInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.contacts = append(m.contacts, in)
	return nil
}

func (m *mockMessageService) SendQuote(ctx context.Context, in *form.QuoteInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.quotes = append(m.quotes, in)
	return nil
}

// Mock BaaS auth for the admin session

const testJWTSecret = "super-secret-jwt-token-with-at-least-32-characters"

type mockAuthProvider struct {
	t          *testing.T
	password   string
	signInErr  error
	signOutErr error
}

func (p *mockAuthProvider) SignInWithPassword(ctx context.Context, email, password string) (*baas.Session, error) {
	if p.signInErr != nil {
		return nil, p.signInErr
	}
	if password != p.password {
		return nil, &baas.APIError{Status: 400, Code: "invalid_credentials", Message: "Invalid login credentials"}
	}
	exp := time.Now().Add(time.Hour)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		Email: email,
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin-1",
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := tok.SignedString([]byte(testJWTSecret))
	if err != nil {
		p.t.Fatalf("sign token: %v", err)
	}
	return &baas.Session{
		AccessToken:  signed,
		RefreshToken: "refresh-1",
		ExpiresAt:    exp.Unix(),
		User:         baas.User{ID: "admin-1", Email: email},
	}, nil
}

func (p *mockAuthProvider) RefreshSession(ctx context.Context, refreshToken string) (*baas.Session, error) {
	return nil, &baas.APIError{Status: 400, Code: "invalid_grant", Message: "Invalid Refresh Token"}
}

func (p *mockAuthProvider) SignOut(ctx context.Context, accessToken string) error {
	return p.signOutErr
}

// testApp wires the three handlers the way the server does.
type testApp struct {
	products *mockProductService
	services *mockOfferingService
	blogs    *mockBlogService
	zones    *mockZoneService
	messages *mockMessageService
	provider *mockAuthProvider
	router   chi.Router
}

// newTestApp builds the mocks, applies setup, then wires the router.
func newTestApp(t *testing.T, setup ...func(*testApp)) *testApp {
	t.Helper()
	logger := zap.NewNop()

	views, err := web.NewRenderer(logger)
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	metrics := middleware.NewMetrics(prometheus.NewRegistry())

	app := &testApp{
		products: &mockProductService{},
		services: &mockOfferingService{},
		blogs:    newMockBlogService(0),
		zones:    &mockZoneService{},
		messages: &mockMessageService{},
		provider: &mockAuthProvider{t: t, password: "correct-horse"},
	}
	for _, fn := range setup {
		fn(app)
	}

	sessions := auth.NewManager(
		auth.NewCookieStore("0123456789abcdef0123456789abcdef", false, 3600),
		app.provider,
		testJWTSecret,
		logger,
	)
	noLimit := func(next http.Handler) http.Handler { return next }

	r := chi.NewRouter()
	site := NewSiteHandler(app.services, app.products, app.blogs, app.messages, views, metrics, logger)
	site.RegisterRoutes(r, noLimit)
	NewAdminHandler(app.products, app.services, app.blogs, app.zones, sessions, views, logger).
		RegisterRoutes(r, middleware.RequireSession(sessions, logger))
	r.Route("/api", func(r chi.Router) {
		NewContentHandler(app.services, app.products, app.blogs, app.zones, metrics, logger).RegisterRoutes(r, noLimit)
	})
	r.NotFound(site.NotFound)

	app.router = r
	return app
}

// outOfRangeCalls returns the page fetches that started past the last post.
func (m *mockBlogService) outOfRangeCalls() [][2]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out [][2]int
	for _, c := range m.pageCalls {
		if c[0] > 0 && c[0] >= len(m.posts) {
			out = append(out, c)
		}
	}
	return out
}

func withBlogs(n int) func(*testApp) {
	return func(app *testApp) {
		app.blogs = newMockBlogService(n)
	}
}

// serve runs one request without a browser session.
func serve(h http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

// browser keeps cookies between requests and never follows redirects.
type browser struct {
	t      *testing.T
	server *httptest.Server
	client *http.Client
}

func newBrowser(t *testing.T, h http.Handler) *browser {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &browser{
		t:      t,
		server: srv,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

type page struct {
	status   int
	location string
	body     string
}

func (b *browser) do(req *http.Request) page {
	b.t.Helper()
	resp, err := b.client.Do(req)
	if err != nil {
		b.t.Fatalf("%s %s: %v", req.Method, req.URL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		b.t.Fatalf("read body: %v", err)
	}
	return page{status: resp.StatusCode, location: resp.Header.Get("Location"), body: string(body)}
}

func (b *browser) get(path string) page {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodGet, b.server.URL+path, nil)
	if err != nil {
		b.t.Fatal(err)
	}
	return b.do(req)
}

func (b *browser) post(path string, values url.Values) page {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodPost, b.server.URL+path, strings.NewReader(values.Encode()))
	if err != nil {
		b.t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) signIn() {
	b.t.Helper()
	got := b.post("/Admin/login", url.Values{"email": {"admin@pycsa.com"}, "password": {"correct-horse"}})
	if got.status != http.StatusSeeOther {
		b.t.Fatalf("sign in status = %d, body = %s", got.status, got.body)
	}
}
