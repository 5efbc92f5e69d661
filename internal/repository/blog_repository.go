package repository

import (
	"context"
	"errors"
	"fmt"

	"pycsa-web/internal/baas"
	"pycsa-web/internal/domain"
)

var (
	ErrBlogNotFound = errors.New("blog post not found")
)

const blogSummaryColumns = "id,title,excerpt,date,image_urls,category"

// BlogRepository defines the interface for blog post data access
type BlogRepository interface {
	List(ctx context.Context) ([]domain.BlogPost, error)
	// ListPage returns rows from..to (inclusive) of the date-ordered list and
	// the total number of posts.
	ListPage(ctx context.Context, from, to int) ([]domain.BlogSummary, int, error)
	Recent(ctx context.Context, limit int) ([]domain.RecentPost, error)
	FindByID(ctx context.Context, id int64) (*domain.BlogPost, error)
	Create(ctx context.Context, fields domain.BlogFields) (*domain.BlogPost, error)
	Update(ctx context.Context, id int64, fields domain.BlogFields) (*domain.BlogPost, error)
	Delete(ctx context.Context, id int64) error
}

type blogRepository struct {
	table[domain.BlogFields, domain.BlogPost]
}

// NewBlogRepository creates a new instance of BlogRepository
func NewBlogRepository(client *baas.Client) BlogRepository {
	return &blogRepository{table[domain.BlogFields, domain.BlogPost]{
		client:   client,
		name:     "blogs",
		order:    []orderTerm{{"date", Desc}},
		notFound: ErrBlogNotFound,
	}}
}

func (r *blogRepository) List(ctx context.Context) ([]domain.BlogPost, error) {
	return r.list(ctx)
}

func (r *blogRepository) ListPage(ctx context.Context, from, to int) ([]domain.BlogSummary, int, error) {
	var rows []domain.BlogSummary
	q := r.query().Select(blogSummaryColumns).Count().Range(from, to)
	total, err := r.ordered(q).Find(ctx, &rows)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list blog page: %w", err)
	}
	if total < 0 {
		total = len(rows)
	}
	return rows, total, nil
}

func (r *blogRepository) Recent(ctx context.Context, limit int) ([]domain.RecentPost, error) {
	var rows []domain.RecentPost
	q := r.query().Select("id,title,category").Limit(limit)
	if _, err := r.ordered(q).Find(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to list recent posts: %w", err)
	}
	return rows, nil
}

func (r *blogRepository) FindByID(ctx context.Context, id int64) (*domain.BlogPost, error) {
	return r.findByID(ctx, id)
}

func (r *blogRepository) Create(ctx context.Context, fields domain.BlogFields) (*domain.BlogPost, error) {
	return r.create(ctx, fields)
}

func (r *blogRepository) Update(ctx context.Context, id int64, fields domain.BlogFields) (*domain.BlogPost, error) {
	return r.update(ctx, id, fields)
}

func (r *blogRepository) Delete(ctx context.Context, id int64) error {
	return r.delete(ctx, id)
}
