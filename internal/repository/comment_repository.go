package repository

import (
	"context"
	"fmt"

	"pycsa-web/internal/baas"
	"pycsa-web/internal/domain"
)

// CommentRepository defines the interface for blog comment data access
type CommentRepository interface {
	ListByBlog(ctx context.Context, blogID int64) ([]domain.BlogComment, error)
	Create(ctx context.Context, comment domain.NewComment) (*domain.BlogComment, error)
}

type commentRepository struct {
	client *baas.Client
}

// NewCommentRepository creates a new instance of CommentRepository
func NewCommentRepository(client *baas.Client) CommentRepository {
	return &commentRepository{client: client}
}

// ListByBlog returns the comments of one post, newest first
func (r *commentRepository) ListByBlog(ctx context.Context, blogID int64) ([]domain.BlogComment, error) {
	var rows []domain.BlogComment
	_, err := r.client.From("blog_comments").
		Select("id,created_at,name,comment").
		Eq("blog_id", blogID).
		Order("created_at", false).
		Find(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments for blog %d: %w", blogID, err)
	}
	return rows, nil
}

func (r *commentRepository) Create(ctx context.Context, comment domain.NewComment) (*domain.BlogComment, error) {
	var row domain.BlogComment
	err := r.client.From("blog_comments").
		Select("id,created_at,name,comment").
		Single().
		Insert(ctx, comment, &row)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return &row, nil
}
