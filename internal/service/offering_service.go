package service

import (
	"context"

	"pycsa-web/internal/domain"
	"pycsa-web/internal/form"
	"pycsa-web/internal/media"
	"pycsa-web/internal/repository"

	"go.uber.org/zap"
)

// OfferingService manages the security services the company sells (the
// "services" table). The name avoids clashing with this package.
type OfferingService interface {
	List(ctx context.Context) ([]domain.Service, error)
	ListFeatured(ctx context.Context) ([]domain.Service, error)
	Get(ctx context.Context, id int64) (*domain.Service, error)
	Create(ctx context.Context, f *form.ServiceForm) (*domain.Service, error)
	Update(ctx context.Context, id int64, f *form.ServiceForm) (*domain.Service, error)
	Delete(ctx context.Context, id int64) error
}

type offeringService struct {
	repo   repository.ServiceRepository
	images media.Manager
	logger *zap.Logger
}

// NewOfferingService creates a new instance of OfferingService
func NewOfferingService(repo repository.ServiceRepository, images media.Manager, logger *zap.Logger) OfferingService {
	return &offeringService{
		repo:   repo,
		images: images,
		logger: logger,
	}
}

func (s *offeringService) List(ctx context.Context) ([]domain.Service, error) {
	return s.repo.List(ctx)
}

func (s *offeringService) ListFeatured(ctx context.Context) ([]domain.Service, error) {
	return s.repo.ListFeatured(ctx)
}

func (s *offeringService) Get(ctx context.Context, id int64) (*domain.Service, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *offeringService) Create(ctx context.Context, f *form.ServiceForm) (*domain.Service, error) {
	if f.Images.Len() == 0 {
		return nil, ErrImagesRequired
	}
	return saveWithImages(ctx, s.images, s.logger, f.Images, "service",
		func(ctx context.Context, urls []string) (*domain.Service, error) {
			return s.repo.Create(ctx, f.Fields(urls))
		})
}

func (s *offeringService) Update(ctx context.Context, id int64, f *form.ServiceForm) (*domain.Service, error) {
	if f.Images.Len() == 0 {
		return nil, ErrImagesRequired
	}
	return saveWithImages(ctx, s.images, s.logger, f.Images, "service",
		func(ctx context.Context, urls []string) (*domain.Service, error) {
			return s.repo.Update(ctx, id, f.Fields(urls))
		})
}

func (s *offeringService) Delete(ctx context.Context, id int64) error {
	svc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	removeRowImages(ctx, s.images, svc.Images(), "service", s.logger)
	return nil
}
