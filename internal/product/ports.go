package product

import (
	"context"

	"tablepos/internal/domain"
)

type MenuUseCase interface {
	ListMenu(ctx context.Context) (*MenuResponse, error)
}

type Service interface {
	GetMenu(ctx context.Context) (categories []domain.Category, products []domain.Product, err error)
}

type Repository interface {
	ListActive(ctx context.Context) ([]domain.Product, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}
