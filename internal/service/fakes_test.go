package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"pycsa-web/internal/domain"
	"pycsa-web/internal/media"
	"pycsa-web/internal/repository"
)

// mockImages records uploads and deletes. Files whose name is in failUpload
// fail to upload; URLs in failDelete fail to delete.
type mockImages struct {
	mu         sync.Mutex
	seq        int
	uploaded   []string
	deleted    []string
	failUpload map[string]bool
	failDelete map[string]bool
}

func newMockImages() *mockImages {
	return &mockImages{failUpload: map[string]bool{}, failDelete: map[string]bool{}}
}

func (m *mockImages) UploadImage(ctx context.Context, f *media.File) (string, error) {
	if f == nil {
		return "", nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpload[f.Name] {
		return "", &media.UploadError{Name: f.Name, Err: errors.New("storage unavailable")}
	}
	m.seq++
	u := fmt.Sprintf("https://x.supabase.co/storage/v1/object/public/pycsa-image/public/%d-%s", m.seq, f.Name)
	m.uploaded = append(m.uploaded, u)
	return u, nil
}

func (m *mockImages) DeleteImage(ctx context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, url)
	if m.failDelete[url] {
		return &media.DeleteError{URL: url, Err: errors.New("forbidden")}
	}
	return nil
}

func (m *mockImages) deletedSorted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]string(nil), m.deleted...)
	sort.Strings(out)
	return out
}

func (m *mockImages) uploadedSorted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]string(nil), m.uploaded...)
	sort.Strings(out)
	return out
}

func image(name string) *media.File {
	return &media.File{Name: name, ContentType: "image/png", Data: []byte("\x89PNG\r\n\x1a\n")}
}

// mockProductRepository is a map-backed ProductRepository.
type mockProductRepository struct {
	rows      map[int64]*domain.Product
	nextID    int64
	createErr error
	updateErr error
	deleteErr error
	calls     int
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{rows: map[int64]*domain.Product{}, nextID: 1}
}

func (m *mockProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range m.rows {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockProductRepository) ListFeatured(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range m.rows {
		if p.IsFeatured {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	p, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockProductRepository) Create(ctx context.Context, fields domain.ProductFields) (*domain.Product, error) {
	m.calls++
	if m.createErr != nil {
		return nil, m.createErr
	}
	p := &domain.Product{ID: m.nextID, ProductFields: fields}
	m.rows[p.ID] = p
	m.nextID++
	cp := *p
	return &cp, nil
}

func (m *mockProductRepository) Update(ctx context.Context, id int64, fields domain.ProductFields) (*domain.Product, error) {
	m.calls++
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	if _, ok := m.rows[id]; !ok {
		return nil, repository.ErrProductNotFound
	}
	m.rows[id] = &domain.Product{ID: id, ProductFields: fields}
	cp := *m.rows[id]
	return &cp, nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id int64) error {
	m.calls++
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.rows, id)
	return nil
}

// mockServiceRepository is a map-backed ServiceRepository.
type mockServiceRepository struct {
	rows      map[int64]*domain.Service
	nextID    int64
	createErr error
	updateErr error
	calls     int
}

func newMockServiceRepository() *mockServiceRepository {
	return &mockServiceRepository{rows: map[int64]*domain.Service{}, nextID: 1}
}

func (m *mockServiceRepository) List(ctx context.Context) ([]domain.Service, error) {
	var out []domain.Service
	for _, s := range m.rows {
		out = append(out, *s)
	}
	return out, nil
}

func (m *mockServiceRepository) ListFeatured(ctx context.Context) ([]domain.Service, error) {
	return nil, nil
}

func (m *mockServiceRepository) FindByID(ctx context.Context, id int64) (*domain.Service, error) {
	s, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrServiceNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockServiceRepository) Create(ctx context.Context, fields domain.ServiceFields) (*domain.Service, error) {
	m.calls++
	if m.createErr != nil {
		return nil, m.createErr
	}
	s := &domain.Service{ID: m.nextID, ServiceFields: fields}
	m.rows[s.ID] = s
	m.nextID++
	cp := *s
	return &cp, nil
}

func (m *mockServiceRepository) Update(ctx context.Context, id int64, fields domain.ServiceFields) (*domain.Service, error) {
	m.calls++
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	m.rows[id] = &domain.Service{ID: id, ServiceFields: fields}
	cp := *m.rows[id]
	return &cp, nil
}

func (m *mockServiceRepository) Delete(ctx context.Context, id int64) error {
	m.calls++
	delete(m.rows, id)
	return nil
}

// mockBlogRepository backs the blog service tests.
type mockBlogRepository struct {
	rows      map[int64]*domain.BlogPost
	recentErr error
}

func (m *mockBlogRepository) List(ctx context.Context) ([]domain.BlogPost, error) { return nil, nil }

func (m *mockBlogRepository) ListPage(ctx context.Context, from, to int) ([]domain.BlogSummary, int, error) {
	return nil, len(m.rows), nil
}

func (m *mockBlogRepository) Recent(ctx context.Context, limit int) ([]domain.RecentPost, error) {
	if m.recentErr != nil {
		return nil, m.recentErr
	}
	return []domain.RecentPost{{ID: 1, Title: "t"}}, nil
}

func (m *mockBlogRepository) FindByID(ctx context.Context, id int64) (*domain.BlogPost, error) {
	p, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrBlogNotFound
	}
	return p, nil
}

func (m *mockBlogRepository) Create(ctx context.Context, fields domain.BlogFields) (*domain.BlogPost, error) {
	return &domain.BlogPost{ID: 1, BlogFields: fields}, nil
}

func (m *mockBlogRepository) Update(ctx context.Context, id int64, fields domain.BlogFields) (*domain.BlogPost, error) {
	return &domain.BlogPost{ID: id, BlogFields: fields}, nil
}

func (m *mockBlogRepository) Delete(ctx context.Context, id int64) error {
	delete(m.rows, id)
	return nil
}

type mockCommentRepository struct {
	rows    []domain.BlogComment
	listErr error
	created []domain.NewComment
}

func (m *mockCommentRepository) ListByBlog(ctx context.Context, blogID int64) ([]domain.BlogComment, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.rows, nil
}

func (m *mockCommentRepository) Create(ctx context.Context, c domain.NewComment) (*domain.BlogComment, error) {
	m.created = append(m.created, c)
	return &domain.BlogComment{ID: int64(len(m.created)), Name: c.Name, Comment: c.Comment}, nil
}

type mockSender struct {
	calls     int
	templates []string
	params    []map[string]string
	err       error
}

func (m *mockSender) Send(ctx context.Context, templateID string, params map[string]string) error {
	m.calls++
	m.templates = append(m.templates, templateID)
	m.params = append(m.params, params)
	return m.err
}
