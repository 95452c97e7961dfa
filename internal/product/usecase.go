package product

import (
	"context"
)

type menuUseCase struct {
	service Service
}

func NewMenuUseCase(service Service) MenuUseCase {
	return &menuUseCase{service: service}
}

func (uc *menuUseCase) ListMenu(ctx context.Context) (*MenuResponse, error) {
	categories, products, err := uc.service.GetMenu(ctx)
	if err != nil {
		return nil, err
	}

	resp := &MenuResponse{
		Categories: make([]CategoryDTO, 0, len(categories)),
		Products:   make([]ProductDTO, 0, len(products)),
	}

	for _, c := range categories {
		resp.Categories = append(resp.Categories, CategoryDTO{ID: c.ID, Name: c.Name})
	}

	for _, p := range products {
		resp.Products = append(resp.Products, ProductDTO{
			ID:         p.ID,
			Name:       p.Name,
			Price:      p.Price,
			CategoryID: p.CategoryID,
			Category:   p.CategoryName,
		})
	}

	return resp, nil
}
