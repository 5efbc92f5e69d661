package repository

import (
	"context"
	"errors"
	"fmt"

	"pycsa-web/internal/baas"
	"pycsa-web/internal/domain"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	List(ctx context.Context) ([]domain.Product, error)
	ListFeatured(ctx context.Context) ([]domain.Product, error)
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, fields domain.ProductFields) (*domain.Product, error)
	Update(ctx context.Context, id int64, fields domain.ProductFields) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
}

type productRepository struct {
	table[domain.ProductFields, domain.Product]
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(client *baas.Client) ProductRepository {
	return &productRepository{table[domain.ProductFields, domain.Product]{
		client:   client,
		name:     "products",
		order:    []orderTerm{{"created_at", Desc}},
		notFound: ErrProductNotFound,
	}}
}

// List returns every product, newest first
func (r *productRepository) List(ctx context.Context) ([]domain.Product, error) {
	return r.list(ctx)
}

// ListFeatured returns the products flagged for the home page
func (r *productRepository) ListFeatured(ctx context.Context) ([]domain.Product, error) {
	var rows []domain.Product
	q := r.query().Select("*").Eq("is_featured", true)
	if _, err := r.ordered(q).Find(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to list featured products: %w", err)
	}
	return rows, nil
}

func (r *productRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	return r.findByID(ctx, id)
}

func (r *productRepository) Create(ctx context.Context, fields domain.ProductFields) (*domain.Product, error) {
	return r.create(ctx, fields)
}

func (r *productRepository) Update(ctx context.Context, id int64, fields domain.ProductFields) (*domain.Product, error) {
	return r.update(ctx, id, fields)
}

func (r *productRepository) Delete(ctx context.Context, id int64) error {
	return r.delete(ctx, id)
}
