package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmeshcher/vinayak-store/internal/customize"
	"github.com/mmeshcher/vinayak-store/internal/model"
)

// ErrNotCustomizable возвращается при запросе расчёта для товара.
var ErrNotCustomizable = errors.New("only packages and services can be customized")

type invalidator interface {
	Invalidate()
}

// ListProducts возвращает товары категории или все товары.
func (s *Service) ListProducts(ctx context.Context, category string) ([]model.Product, error) {
	return s.catalog.ListProducts(ctx, category)
}

// GetProduct возвращает товар по идентификатору.
func (s *Service) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	return s.catalog.GetProduct(ctx, id)
}

// ListServices возвращает все услуги.
func (s *Service) ListServices(ctx context.Context) ([]model.Service, error) {
	return s.catalog.ListServices(ctx)
}

// GetService возвращает услугу по идентификатору.
func (s *Service) GetService(ctx context.Context, id string) (*model.Service, error) {
	return s.catalog.GetService(ctx, id)
}

// ListPackages возвращает все наборы.
func (s *Service) ListPackages(ctx context.Context) ([]model.Package, error) {
	return s.catalog.ListPackages(ctx)
}

// GetPackage возвращает набор по идентификатору.
func (s *Service) GetPackage(ctx context.Context, id string) (*model.Package, error) {
	return s.catalog.GetPackage(ctx, id)
}

func (s *Service) configure(ctx context.Context, kind model.Kind, id string, removed []int) (*customize.Configuration, error) {
	var cfg *customize.Configuration

	switch kind {
	case model.KindPackage:
		p, err := s.catalog.GetPackage(ctx, id)
		if err != nil {
			return nil, err
		}
		cfg = customize.NewPackage(*p)
	case model.KindService:
		sv, err := s.catalog.GetService(ctx, id)
		if err != nil {
			return nil, err
		}
		cfg = customize.NewService(*sv)
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotCustomizable, kind)
	}

	if err := cfg.SetRemoved(removed); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Quote возвращает цену набора или услуги с учётом исключённых позиций.
func (s *Service) Quote(ctx context.Context, kind model.Kind, id string, removed []int) (customize.Quote, error) {
	cfg, err := s.configure(ctx, kind, id, removed)
	if err != nil {
		return customize.Quote{}, err
	}
	return cfg.Quote(), nil
}

// RefreshCatalog сбрасывает кеш каталога, чтобы правки в базе стали видны сразу.
// Без кеша ничего не делает.
func (s *Service) RefreshCatalog() {
	if c, ok := s.catalog.(invalidator); ok {
		c.Invalidate()
		s.logger.Info("catalog cache invalidated")
	}
}
