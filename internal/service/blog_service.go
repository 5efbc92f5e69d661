package service

import (
	"context"

	"pycsa-web/internal/blog"
	"pycsa-web/internal/domain"
	"pycsa-web/internal/form"
	"pycsa-web/internal/media"
	"pycsa-web/internal/repository"

	"go.uber.org/zap"
)

// BlogService defines the interface for blog business logic: the public
// list and detail pages and the admin CRUD.
type BlogService interface {
	List(ctx context.Context) ([]domain.BlogPost, error)
	ListPage(ctx context.Context, from, to int) ([]domain.BlogSummary, int, error)
	// Recent never fails; an error yields an empty sidebar.
	Recent(ctx context.Context) []domain.RecentPost
	Get(ctx context.Context, id int64) (*domain.BlogPost, error)
	// Comments never fails; an error yields no comments.
	Comments(ctx context.Context, blogID int64) []domain.BlogComment
	AddComment(ctx context.Context, blogID int64, in *form.CommentInput) (*domain.BlogComment, error)
	Create(ctx context.Context, f *form.BlogForm) (*domain.BlogPost, error)
	Update(ctx context.Context, id int64, f *form.BlogForm) (*domain.BlogPost, error)
	Delete(ctx context.Context, id int64) error
}

type blogService struct {
	posts    repository.BlogRepository
	comments repository.CommentRepository
	images   media.Manager
	logger   *zap.Logger
}

// NewBlogService creates a new instance of BlogService
func NewBlogService(
	posts repository.BlogRepository,
	comments repository.CommentRepository,
	images media.Manager,
	logger *zap.Logger,
) BlogService {
	return &blogService{
		posts:    posts,
		comments: comments,
		images:   images,
		logger:   logger,
	}
}

func (s *blogService) List(ctx context.Context) ([]domain.BlogPost, error) {
	return s.posts.List(ctx)
}

func (s *blogService) ListPage(ctx context.Context, from, to int) ([]domain.BlogSummary, int, error) {
	return s.posts.ListPage(ctx, from, to)
}

func (s *blogService) Recent(ctx context.Context) []domain.RecentPost {
	posts, err := s.posts.Recent(ctx, blog.SidebarSize)
	if err != nil {
		s.logger.Warn("Failed to load recent posts", zap.Error(err))
		return nil
	}
	return posts
}

func (s *blogService) Get(ctx context.Context, id int64) (*domain.BlogPost, error) {
	return s.posts.FindByID(ctx, id)
}

func (s *blogService) Comments(ctx context.Context, blogID int64) []domain.BlogComment {
	comments, err := s.comments.ListByBlog(ctx, blogID)
	if err != nil {
		s.logger.Warn("Failed to load comments", zap.Int64("blog_id", blogID), zap.Error(err))
		return nil
	}
	return comments
}

// AddComment validates and stores a visitor comment
func (s *blogService) AddComment(ctx context.Context, blogID int64, in *form.CommentInput) (*domain.BlogComment, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	c, err := s.comments.Create(ctx, domain.NewComment{
		BlogID:  blogID,
		Name:    in.Name,
		Comment: in.Comment,
	})
	if err != nil {
		s.logger.Error("Failed to add comment", zap.Int64("blog_id", blogID), zap.Error(err))
		return nil, err
	}
	return c, nil
}

func (s *blogService) Create(ctx context.Context, f *form.BlogForm) (*domain.BlogPost, error) {
	if f.Images.Len() == 0 {
		return nil, ErrImagesRequired
	}
	return saveWithImages(ctx, s.images, s.logger, f.Images, "blog",
		func(ctx context.Context, urls []string) (*domain.BlogPost, error) {
			return s.posts.Create(ctx, f.Fields(urls))
		})
}

func (s *blogService) Update(ctx context.Context, id int64, f *form.BlogForm) (*domain.BlogPost, error) {
	if f.Images.Len() == 0 {
		return nil, ErrImagesRequired
	}
	return saveWithImages(ctx, s.images, s.logger, f.Images, "blog",
		func(ctx context.Context, urls []string) (*domain.BlogPost, error) {
			return s.posts.Update(ctx, id, f.Fields(urls))
		})
}

// Delete removes the post and then all of its images. Comments go with the
// post through the foreign key.
func (s *blogService) Delete(ctx context.Context, id int64) error {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}
	removeRowImages(ctx, s.images, post.Images(), "blog", s.logger)
	return nil
}
