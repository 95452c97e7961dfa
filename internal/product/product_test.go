package product

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tablepos/internal/domain"
	apperrors "tablepos/internal/errors"
)

type mockRepository struct {
	ListActiveFunc     func(ctx context.Context) ([]domain.Product, error)
	ListCategoriesFunc func(ctx context.Context) ([]domain.Category, error)
}

func (m *mockRepository) ListActive(ctx context.Context) ([]domain.Product, error) {
	return m.ListActiveFunc(ctx)
}

func (m *mockRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return m.ListCategoriesFunc(ctx)
}

func int64Ptr(i int64) *int64 {
	return &i
}

func menuRepo() *mockRepository {
	return &mockRepository{
		ListActiveFunc: func(ctx context.Context) ([]domain.Product, error) {
			return []domain.Product{
				{ID: 1, Name: "Tea", Price: 500, IsActive: true},
				{ID: 2, Name: "Mixed Grill", Price: 12000, CategoryID: int64Ptr(10), CategoryName: "Grill", IsActive: true},
			}, nil
		},
		ListCategoriesFunc: func(ctx context.Context) ([]domain.Category, error) {
			return []domain.Category{{ID: 11, Name: "Desserts"}, {ID: 10, Name: "Grill"}}, nil
		},
	}
}

func TestService_GetMenu_HidesEmptyCategories(t *testing.T) {
	svc := NewService(menuRepo())

	categories, products, err := svc.GetMenu(context.Background())

	require.NoError(t, err)
	assert.Len(t, products, 2)
	require.Len(t, categories, 1)
	assert.Equal(t, "Grill", categories[0].Name)
}

func TestService_GetMenu_RepositoryError(t *testing.T) {
	repo := menuRepo()
	repo.ListCategoriesFunc = func(ctx context.Context) ([]domain.Category, error) {
		return nil, apperrors.NewStorageError("querying categories", stderrors.New("timeout"))
	}

	_, _, err := NewService(repo).GetMenu(context.Background())

	_, ok := apperrors.IsStorageError(err)
	assert.True(t, ok)
}

func TestUseCase_ListMenu(t *testing.T) {
	uc := NewMenuUseCase(NewService(menuRepo()))

	resp, err := uc.ListMenu(context.Background())

	require.NoError(t, err)
	require.Len(t, resp.Products, 2)
	assert.Equal(t, "Grill", resp.Products[1].Category)
	assert.Equal(t, int64(12000), resp.Products[1].Price)
	assert.Equal(t, []CategoryDTO{{ID: 10, Name: "Grill"}}, resp.Categories)
}

func TestController_HandleListMenu(t *testing.T) {
	c := NewController(NewMenuUseCase(NewService(menuRepo())), zap.NewNop())

	rec := httptest.NewRecorder()
	c.HandleListMenu(rec, httptest.NewRequest(http.MethodGet, "/api/menu", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp MenuResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.TraceID)
	assert.Len(t, resp.Products, 2)
}

func TestController_HandleListMenu_EmptyMenu(t *testing.T) {
	repo := &mockRepository{
		ListActiveFunc:     func(ctx context.Context) ([]domain.Product, error) { return nil, nil },
		ListCategoriesFunc: func(ctx context.Context) ([]domain.Category, error) { return nil, nil },
	}
	c := NewController(NewMenuUseCase(NewService(repo)), zap.NewNop())

	rec := httptest.NewRecorder()
	c.HandleListMenu(rec, httptest.NewRequest(http.MethodGet, "/api/menu", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"products":[]`)
	assert.Contains(t, rec.Body.String(), `"categories":[]`)
}

func TestController_HandleListMenu_Error(t *testing.T) {
	repo := menuRepo()
	repo.ListActiveFunc = func(ctx context.Context) ([]domain.Product, error) {
		return nil, apperrors.NewStorageError("querying active products", stderrors.New("gone"))
	}
	c := NewController(NewMenuUseCase(NewService(repo)), zap.NewNop())

	rec := httptest.NewRecorder()
	c.HandleListMenu(rec, httptest.NewRequest(http.MethodGet, "/api/menu", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
