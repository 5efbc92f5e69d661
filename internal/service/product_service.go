package service

import (
	"context"
	"fmt"

	"pycsa-web/internal/baas"
	"pycsa-web/internal/domain"
	"pycsa-web/internal/form"
	"pycsa-web/internal/media"
	"pycsa-web/internal/repository"

	"go.uber.org/zap"
)

// ProductService defines the interface for product business logic
type ProductService interface {
	List(ctx context.Context) ([]domain.Product, error)
	ListFeatured(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, f *form.ProductForm) (*domain.Product, error)
	Update(ctx context.Context, id int64, f *form.ProductForm) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
}

type productService struct {
	repo   repository.ProductRepository
	images media.Manager
	logger *zap.Logger
}

// NewProductService creates a new instance of ProductService
func NewProductService(repo repository.ProductRepository, images media.Manager, logger *zap.Logger) ProductService {
	return &productService{
		repo:   repo,
		images: images,
		logger: logger,
	}
}

func (s *productService) List(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx)
}

func (s *productService) ListFeatured(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListFeatured(ctx)
}

func (s *productService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.FindByID(ctx, id)
}

// Create uploads the optional image and inserts the product
func (s *productService) Create(ctx context.Context, f *form.ProductForm) (*domain.Product, error) {
	return saveWithImages(ctx, s.images, s.logger, f.Images, "product",
		func(ctx context.Context, urls []string) (*domain.Product, error) {
			p, err := s.repo.Create(ctx, f.Fields(firstURL(urls)))
			return p, s.translate(f.SKU, err)
		})
}

// Update replaces the product row. A new image replaces the old one, which
// is deleted only after the row update succeeds.
func (s *productService) Update(ctx context.Context, id int64, f *form.ProductForm) (*domain.Product, error) {
	return saveWithImages(ctx, s.images, s.logger, f.Images, "product",
		func(ctx context.Context, urls []string) (*domain.Product, error) {
			p, err := s.repo.Update(ctx, id, f.Fields(firstURL(urls)))
			return p, s.translate(f.SKU, err)
		})
}

// Delete removes the row, then its image
func (s *productService) Delete(ctx context.Context, id int64) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	removeRowImages(ctx, s.images, p.Images(), "product", s.logger)
	return nil
}

func (s *productService) translate(sku string, err error) error {
	if err == nil {
		return nil
	}
	if baas.IsUniqueViolation(err, "sku") {
		return &DuplicateSKUError{SKU: sku}
	}
	return fmt.Errorf("failed to save product: %w", err)
}

func firstURL(urls []string) string {
	if len(urls) == 0 {
		return ""
	}
	return urls[0]
}
