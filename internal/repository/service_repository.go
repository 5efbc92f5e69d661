package repository

import (
	"context"
	"errors"
	"fmt"

	"pycsa-web/internal/baas"
	"pycsa-web/internal/domain"
)

var (
	ErrServiceNotFound = errors.New("service not found")
)

// ServiceRepository defines the interface for service offering data access
type ServiceRepository interface {
	List(ctx context.Context) ([]domain.Service, error)
	ListFeatured(ctx context.Context) ([]domain.Service, error)
	FindByID(ctx context.Context, id int64) (*domain.Service, error)
	Create(ctx context.Context, fields domain.ServiceFields) (*domain.Service, error)
	Update(ctx context.Context, id int64, fields domain.ServiceFields) (*domain.Service, error)
	Delete(ctx context.Context, id int64) error
}

type serviceRepository struct {
	table[domain.ServiceFields, domain.Service]
}

// NewServiceRepository creates a new instance of ServiceRepository
func NewServiceRepository(client *baas.Client) ServiceRepository {
	return &serviceRepository{table[domain.ServiceFields, domain.Service]{
		client:   client,
		name:     "services",
		order:    []orderTerm{{"created_at", Desc}},
		notFound: ErrServiceNotFound,
	}}
}

func (r *serviceRepository) List(ctx context.Context) ([]domain.Service, error) {
	return r.list(ctx)
}

func (r *serviceRepository) ListFeatured(ctx context.Context) ([]domain.Service, error) {
	var rows []domain.Service
	q := r.query().Select("*").Eq("is_featured", true)
	if _, err := r.ordered(q).Find(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to list featured services: %w", err)
	}
	return rows, nil
}

func (r *serviceRepository) FindByID(ctx context.Context, id int64) (*domain.Service, error) {
	return r.findByID(ctx, id)
}

func (r *serviceRepository) Create(ctx context.Context, fields domain.ServiceFields) (*domain.Service, error) {
	return r.create(ctx, fields)
}

func (r *serviceRepository) Update(ctx context.Context, id int64, fields domain.ServiceFields) (*domain.Service, error) {
	return r.update(ctx, id, fields)
}

func (r *serviceRepository) Delete(ctx context.Context, id int64) error {
	return r.delete(ctx, id)
}
