package product

import (
	"context"

	"tablepos/internal/domain"
)

type productService struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &productService{repo: repo}
}

// GetMenu returns every category that has at least one active product,
// together with those products.
func (s *productService) GetMenu(ctx context.Context) ([]domain.Category, []domain.Product, error) {
	products, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, nil, err
	}

	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, nil, err
	}

	used := make(map[int64]struct{}, len(categories))
	for _, p := range products {
		if p.CategoryID != nil {
			used[*p.CategoryID] = struct{}{}
		}
	}

	var visible []domain.Category
	for _, c := range categories {
		if _, ok := used[c.ID]; ok {
			visible = append(visible, c)
		}
	}

	return visible, products, nil
}
