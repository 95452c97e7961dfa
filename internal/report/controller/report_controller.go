package controller

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tablepos/internal/domain"
	apperrors "tablepos/internal/errors"
	"tablepos/internal/respond"
)

type ReportService interface {
	DailySummary(ctx context.Context, date string) (*domain.DailySummary, error)
	RangeSummary(ctx context.Context, from, to string) (*domain.RangeSummary, error)
	ByOperatorSummary(ctx context.Context) ([]domain.OperatorSummary, error)
	TopItems(ctx context.Context, from, to string, limit int) ([]domain.TopItem, error)
}

type DailyEnvelope struct {
	TraceID string               `json:"traceId"`
	Summary *domain.DailySummary `json:"summary"`
}

type RangeEnvelope struct {
	TraceID string               `json:"traceId"`
	Summary *domain.RangeSummary `json:"summary"`
}

type OperatorsEnvelope struct {
	TraceID   string                   `json:"traceId"`
	Operators []domain.OperatorSummary `json:"operators"`
}

type TopItemsEnvelope struct {
	TraceID string           `json:"traceId"`
	Items   []domain.TopItem `json:"items"`
}

type ReportController struct {
	service ReportService
	logger  *zap.Logger
}

func NewReportController(service ReportService, logger *zap.Logger) *ReportController {
	return &ReportController{
		service: service,
		logger:  logger,
	}
}

func (c *ReportController) Routes(r chi.Router) {
	r.Get("/daily", c.Daily)
	r.Get("/today", c.Today)
	r.Get("/range", c.Range)
	r.Get("/operators", c.Operators)
	r.Get("/top-items", c.TopItems)
}

func (c *ReportController) Daily(w http.ResponseWriter, r *http.Request) {
	c.daily(w, r, r.URL.Query().Get("date"))
}

func (c *ReportController) Today(w http.ResponseWriter, r *http.Request) {
	c.daily(w, r, "")
}

func (c *ReportController) daily(w http.ResponseWriter, r *http.Request, date string) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	summary, err := c.service.DailySummary(r.Context(), date)
	if err != nil {
		respond.Error(w, logger, traceID, err)
		return
	}

	respond.JSON(w, c.logger, http.StatusOK, DailyEnvelope{TraceID: traceID, Summary: summary})
}

func (c *ReportController) Range(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	q := r.URL.Query()
	summary, err := c.service.RangeSummary(r.Context(), q.Get("from"), q.Get("to"))
	if err != nil {
		respond.Error(w, logger, traceID, err)
		return
	}

	respond.JSON(w, c.logger, http.StatusOK, RangeEnvelope{TraceID: traceID, Summary: summary})
}

func (c *ReportController) Operators(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	rows, err := c.service.ByOperatorSummary(r.Context())
	if err != nil {
		respond.Error(w, logger, traceID, err)
		return
	}

	respond.JSON(w, c.logger, http.StatusOK, OperatorsEnvelope{TraceID: traceID, Operators: rows})
}

func (c *ReportController) TopItems(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	q := r.URL.Query()
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respond.ValidationError(w, c.logger, traceID, "invalid limit", apperrors.ValidationDetail{
				Field:   "limit",
				Message: "limit must be a positive integer",
			})
			return
		}
		limit = parsed
	}

	items, err := c.service.TopItems(r.Context(), q.Get("from"), q.Get("to"), limit)
	if err != nil {
		respond.Error(w, logger, traceID, err)
		return
	}

	respond.JSON(w, c.logger, http.StatusOK, TopItemsEnvelope{TraceID: traceID, Items: items})
}
