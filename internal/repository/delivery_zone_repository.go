package repository

import (
	"context"
	"errors"

	"pycsa-web/internal/baas"
	"pycsa-web/internal/domain"
)

var (
	ErrDeliveryZoneNotFound = errors.New("delivery zone not found")
)

// DeliveryZoneRepository defines the interface for delivery zone data access
type DeliveryZoneRepository interface {
	List(ctx context.Context) ([]domain.DeliveryZone, error)
	FindByID(ctx context.Context, id int64) (*domain.DeliveryZone, error)
	Create(ctx context.Context, fields domain.DeliveryZoneFields) (*domain.DeliveryZone, error)
	Update(ctx context.Context, id int64, fields domain.DeliveryZoneFields) (*domain.DeliveryZone, error)
	Delete(ctx context.Context, id int64) error
}

type deliveryZoneRepository struct {
	table[domain.DeliveryZoneFields, domain.DeliveryZone]
}

// NewDeliveryZoneRepository creates a new instance of DeliveryZoneRepository
func NewDeliveryZoneRepository(client *baas.Client) DeliveryZoneRepository {
	return &deliveryZoneRepository{table[domain.DeliveryZoneFields, domain.DeliveryZone]{
		client:   client,
		name:     "delivery_zones",
		order:    []orderTerm{{"province", Asc}, {"area", Asc}},
		notFound: ErrDeliveryZoneNotFound,
	}}
}

// List returns zones ordered by province, then area
func (r *deliveryZoneRepository) List(ctx context.Context) ([]domain.DeliveryZone, error) {
	return r.list(ctx)
}

func (r *deliveryZoneRepository) FindByID(ctx context.Context, id int64) (*domain.DeliveryZone, error) {
	return r.findByID(ctx, id)
}

func (r *deliveryZoneRepository) Create(ctx context.Context, fields domain.DeliveryZoneFields) (*domain.DeliveryZone, error) {
	return r.create(ctx, fields)
}

func (r *deliveryZoneRepository) Update(ctx context.Context, id int64, fields domain.DeliveryZoneFields) (*domain.DeliveryZone, error) {
	return r.update(ctx, id, fields)
}

func (r *deliveryZoneRepository) Delete(ctx context.Context, id int64) error {
	return r.delete(ctx, id)
}
