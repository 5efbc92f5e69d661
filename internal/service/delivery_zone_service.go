package service

import (
	"context"

	"pycsa-web/internal/domain"
	"pycsa-web/internal/form"
	"pycsa-web/internal/repository"
)

// DeliveryZoneService defines the interface for delivery zone business logic.
// Zones have no images, so nothing here touches storage.
type DeliveryZoneService interface {
	List(ctx context.Context) ([]domain.DeliveryZone, error)
	Get(ctx context.Context, id int64) (*domain.DeliveryZone, error)
	Create(ctx context.Context, f *form.DeliveryZoneForm) (*domain.DeliveryZone, error)
	Update(ctx context.Context, id int64, f *form.DeliveryZoneForm) (*domain.DeliveryZone, error)
	Delete(ctx context.Context, id int64) error
}

type deliveryZoneService struct {
	repo repository.DeliveryZoneRepository
}

// NewDeliveryZoneService creates a new instance of DeliveryZoneService
func NewDeliveryZoneService(repo repository.DeliveryZoneRepository) DeliveryZoneService {
	return &deliveryZoneService{repo: repo}
}

func (s *deliveryZoneService) List(ctx context.Context) ([]domain.DeliveryZone, error) {
	return s.repo.List(ctx)
}

func (s *deliveryZoneService) Get(ctx context.Context, id int64) (*domain.DeliveryZone, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *deliveryZoneService) Create(ctx context.Context, f *form.DeliveryZoneForm) (*domain.DeliveryZone, error) {
	return s.repo.Create(ctx, f.Fields())
}

func (s *deliveryZoneService) Update(ctx context.Context, id int64, f *form.DeliveryZoneForm) (*domain.DeliveryZone, error) {
	return s.repo.Update(ctx, id, f.Fields())
}

func (s *deliveryZoneService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
