package controller

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tablepos/internal/domain"
	"tablepos/internal/dto"
	apperrors "tablepos/internal/errors"
)

type mockReportService struct {
	DailySummaryFunc      func(ctx context.Context, date string) (*domain.DailySummary, error)
	RangeSummaryFunc      func(ctx context.Context, from, to string) (*domain.RangeSummary, error)
	ByOperatorSummaryFunc func(ctx context.Context) ([]domain.OperatorSummary, error)
	TopItemsFunc          func(ctx context.Context, from, to string, limit int) ([]domain.TopItem, error)
}

func (m *mockReportService) DailySummary(ctx context.Context, date string) (*domain.DailySummary, error) {
	return m.DailySummaryFunc(ctx, date)
}

func (m *mockReportService) RangeSummary(ctx context.Context, from, to string) (*domain.RangeSummary, error) {
	return m.RangeSummaryFunc(ctx, from, to)
}

func (m *mockReportService) ByOperatorSummary(ctx context.Context) ([]domain.OperatorSummary, error) {
	return m.ByOperatorSummaryFunc(ctx)
}

func (m *mockReportService) TopItems(ctx context.Context, from, to string, limit int) ([]domain.TopItem, error) {
	return m.TopItemsFunc(ctx, from, to, limit)
}

func get(t *testing.T, svc ReportService, path string) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	r.Route("/api/reports", NewReportController(svc, zap.NewNop()).Routes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestDaily_PassesDate(t *testing.T) {
	var gotDate string
	svc := &mockReportService{
		DailySummaryFunc: func(ctx context.Context, date string) (*domain.DailySummary, error) {
			gotDate = date
			return &domain.DailySummary{Date: date, Count: 2, TotalSales: 21000, ByPayment: map[string]int64{"cash": 21000}}, nil
		},
	}

	rec := get(t, svc, "/api/reports/daily?date=2026-03-01")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2026-03-01", gotDate)

	var body DailyEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.NotEmpty(t, body.TraceID)
	assert.Equal(t, int64(21000), body.Summary.TotalSales)
}

func TestToday_UsesBlankDate(t *testing.T) {
	gotDate := "unset"
	svc := &mockReportService{
		DailySummaryFunc: func(ctx context.Context, date string) (*domain.DailySummary, error) {
			gotDate = date
			return &domain.DailySummary{Date: "2026-03-01"}, nil
		},
	}

	rec := get(t, svc, "/api/reports/today")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", gotDate)
}

func TestDaily_InvalidDate(t *testing.T) {
	svc := &mockReportService{
		DailySummaryFunc: func(ctx context.Context, date string) (*domain.DailySummary, error) {
			return nil, apperrors.NewValidationError("invalid date", apperrors.ValidationDetail{Field: "date", Message: "bad"})
		},
	}

	rec := get(t, svc, "/api/reports/daily?date=yesterday")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "VALIDATION_ERROR", body.Error)
	assert.Equal(t, "date", body.Details[0].Field)
}

func TestRange(t *testing.T) {
	var gotFrom, gotTo string
	svc := &mockReportService{
		RangeSummaryFunc: func(ctx context.Context, from, to string) (*domain.RangeSummary, error) {
			gotFrom, gotTo = from, to
			return &domain.RangeSummary{From: from, To: to, Count: 3, TotalSales: 22000}, nil
		},
	}

	rec := get(t, svc, "/api/reports/range?from=2026-02-01&to=2026-02-28")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2026-02-01", gotFrom)
	assert.Equal(t, "2026-02-28", gotTo)

	var body RangeEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 3, body.Summary.Count)
}

func TestOperators_StorageFailure(t *testing.T) {
	svc := &mockReportService{
		ByOperatorSummaryFunc: func(ctx context.Context) ([]domain.OperatorSummary, error) {
			return nil, apperrors.NewStorageError("querying operator totals", stderrors.New("connection refused"))
		},
	}

	rec := get(t, svc, "/api/reports/operators")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "INTERNAL_ERROR", body.Error)
	assert.NotContains(t, body.Message, "connection refused")
}

func TestOperators(t *testing.T) {
	svc := &mockReportService{
		ByOperatorSummaryFunc: func(ctx context.Context) ([]domain.OperatorSummary, error) {
			return []domain.OperatorSummary{{Operator: "ali", TotalSales: 16750, OrderCount: 2}}, nil
		},
	}

	rec := get(t, svc, "/api/reports/operators")

	require.Equal(t, http.StatusOK, rec.Code)
	var body OperatorsEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Operators, 1)
	assert.Equal(t, "ali", body.Operators[0].Operator)
}

func TestTopItems_Limit(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantLimit  int
	}{
		{name: "default", query: "", wantStatus: http.StatusOK, wantLimit: 0},
		{name: "explicit", query: "?limit=5", wantStatus: http.StatusOK, wantLimit: 5},
		{name: "zero", query: "?limit=0", wantStatus: http.StatusBadRequest},
		{name: "not a number", query: "?limit=ten", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotLimit := -1
			svc := &mockReportService{
				TopItemsFunc: func(ctx context.Context, from, to string, limit int) ([]domain.TopItem, error) {
					gotLimit = limit
					return []domain.TopItem{{Name: "Kebab", Quantity: 2, Revenue: 10000}}, nil
				},
			}

			rec := get(t, svc, "/api/reports/top-items"+tt.query)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantLimit, gotLimit)
			} else {
				assert.Equal(t, -1, gotLimit)
			}
		})
	}
}
