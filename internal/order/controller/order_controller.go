package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tablepos/internal/domain"
	"tablepos/internal/dto"
	apperrors "tablepos/internal/errors"
	"tablepos/internal/respond"
)

// OperatorHeader names the staff member performing a write.
const OperatorHeader = "X-Operator"

const maxItemsPerOrder = 100

// Column sizes of the Orders and OrderItems tables.
const (
	maxTableNoLen  = 50
	maxNoteLen     = 500
	maxItemNameLen = 255
	maxOperatorLen = 100
)

func tooLong(s string, max int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) > max
}

type OrderUseCase interface {
	CreateOpenOrder(ctx context.Context, input domain.OpenOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	ListOpenOrders(ctx context.Context, limit int) ([]domain.Order, error)
	MarkPaid(ctx context.Context, id int64, method, operator string) (*domain.Order, error)
	VoidOrder(ctx context.Context, id int64, operator string) (*domain.Order, error)
	TransitionOrder(ctx context.Context, id int64, target, method, operator string) (*domain.Order, error)
}

type OrderController struct {
	useCase OrderUseCase
	logger  *zap.Logger
}

func NewOrderController(useCase OrderUseCase, logger *zap.Logger) *OrderController {
	return &OrderController{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *OrderController) Routes(r chi.Router) {
	r.Post("/", c.CreateOrder)
	r.Get("/open", c.ListOpenOrders)
	r.Get("/{orderId}", c.GetOrder)
	r.Post("/{orderId}/pay", c.MarkPaid)
	r.Post("/{orderId}/void", c.VoidOrder)
	r.Patch("/{orderId}/status", c.ChangeStatus)
}

func (c *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	operator, ok := c.requireOperator(w, r, traceID)
	if !ok {
		return
	}

	var req dto.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		respond.ValidationError(w, c.logger, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if err := validateCreateOrderRequest(req); err != nil {
		ve, _ := apperrors.IsValidationError(err)
		respond.ValidationError(w, c.logger, traceID, ve.Message, ve.Details...)
		return
	}

	order, err := c.useCase.CreateOpenOrder(r.Context(), req.ToInput(operator))
	if err != nil {
		respond.Error(w, logger, traceID, err)
		return
	}

	respond.JSON(w, c.logger, http.StatusCreated, dto.OrderEnvelope{TraceID: traceID, Order: dto.NewOrderResponse(*order)})
}

func validateCreateOrderRequest(req dto.CreateOrderRequest) error {
	var details []apperrors.ValidationDetail

	if strings.TrimSpace(req.TableNo) == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "tableNo",
			Message: "tableNo is required",
		})
	}

	if tooLong(req.TableNo, maxTableNoLen) {
		details = append(details, apperrors.ValidationDetail{
			Field:   "tableNo",
			Message: "tableNo must be at most " + strconv.Itoa(maxTableNoLen) + " characters",
		})
	}

	if tooLong(req.Note, maxNoteLen) {
		details = append(details, apperrors.ValidationDetail{
			Field:   "note",
			Message: "note must be at most " + strconv.Itoa(maxNoteLen) + " characters",
		})
	}

	if len(req.Items) == 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "items",
			Message: "items must not be empty",
		})
	}

	if len(req.Items) > maxItemsPerOrder {
		details = append(details, apperrors.ValidationDetail{
			Field:   "items",
			Message: "items exceeds maximum of " + strconv.Itoa(maxItemsPerOrder),
		})
	}

	for idx, item := range req.Items {
		if item.ProductID != nil && *item.ProductID <= 0 {
			details = append(details, apperrors.ValidationDetail{
				Field:   "items[" + strconv.Itoa(idx) + "].productId",
				Message: "productId must be a positive integer",
			})
		}
		if tooLong(item.Name, maxItemNameLen) {
			details = append(details, apperrors.ValidationDetail{
				Field:   "items[" + strconv.Itoa(idx) + "].name",
				Message: "name must be at most " + strconv.Itoa(maxItemNameLen) + " characters",
			})
		}
		if item.Quantity > domain.MaxQuantity {
			details = append(details, apperrors.ValidationDetail{
				Field:   "items[" + strconv.Itoa(idx) + "].quantity",
				Message: "quantity must be at most " + strconv.Itoa(domain.MaxQuantity),
			})
		}
	}

	if req.Discount < 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "discount",
			Message: "discount must be non-negative",
		})
	}

	if req.TaxPct.IsNegative() || req.TaxPct.GreaterThan(domain.MaxTaxPct) {
		details = append(details, apperrors.ValidationDetail{
			Field:   "taxPct",
			Message: "taxPct must be between 0 and " + domain.MaxTaxPct.String(),
		})
	} else if !domain.HasTaxPctScale(req.TaxPct) {
		details = append(details, apperrors.ValidationDetail{
			Field:   "taxPct",
			Message: "taxPct must have at most " + strconv.Itoa(domain.TaxPctPlaces) + " decimal places",
		})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}

	return nil
}

func (c *OrderController) ListOpenOrders(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
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

	orders, err := c.useCase.ListOpenOrders(r.Context(), limit)
	if err != nil {
		respond.Error(w, logger, traceID, err)
		return
	}

	respond.JSON(w, c.logger, http.StatusOK, dto.OrderListEnvelope{TraceID: traceID, Orders: dto.NewOrderResponses(orders)})
}

func (c *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, ok := c.parseOrderID(w, r, traceID)
	if !ok {
		return
	}

	order, err := c.useCase.GetOrder(r.Context(), orderID)
	if err != nil {
		respond.Error(w, logger, traceID, err)
		return
	}

	respond.JSON(w, c.logger, http.StatusOK, dto.OrderEnvelope{TraceID: traceID, Order: dto.NewOrderResponse(*order)})
}

func (c *OrderController) MarkPaid(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, ok := c.parseOrderID(w, r, traceID)
	if !ok {
		return
	}
	operator, ok := c.requireOperator(w, r, traceID)
	if !ok {
		return
	}

	var req dto.PayOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		respond.ValidationError(w, c.logger, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	order, err := c.useCase.MarkPaid(r.Context(), orderID, req.PaymentMethod, operator)
	if err != nil {
		respond.Error(w, logger, traceID, err)
		return
	}

	respond.JSON(w, c.logger, http.StatusOK, dto.OrderEnvelope{TraceID: traceID, Order: dto.NewOrderResponse(*order)})
}

func (c *OrderController) VoidOrder(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, ok := c.parseOrderID(w, r, traceID)
	if !ok {
		return
	}
	operator, ok := c.requireOperator(w, r, traceID)
	if !ok {
		return
	}

	order, err := c.useCase.VoidOrder(r.Context(), orderID, operator)
	if err != nil {
		respond.Error(w, logger, traceID, err)
		return
	}

	respond.JSON(w, c.logger, http.StatusOK, dto.OrderEnvelope{TraceID: traceID, Order: dto.NewOrderResponse(*order)})
}

func (c *OrderController) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, ok := c.parseOrderID(w, r, traceID)
	if !ok {
		return
	}
	operator, ok := c.requireOperator(w, r, traceID)
	if !ok {
		return
	}

	var req dto.ChangeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		respond.ValidationError(w, c.logger, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if strings.TrimSpace(req.Status) == "" {
		respond.ValidationError(w, c.logger, traceID, "status is required", apperrors.ValidationDetail{
			Field:   "status",
			Message: "status is required",
		})
		return
	}

	order, err := c.useCase.TransitionOrder(r.Context(), orderID, req.Status, req.PaymentMethod, operator)
	if err != nil {
		respond.Error(w, logger, traceID, err)
		return
	}

	respond.JSON(w, c.logger, http.StatusOK, dto.OrderEnvelope{TraceID: traceID, Order: dto.NewOrderResponse(*order)})
}

func (c *OrderController) parseOrderID(w http.ResponseWriter, r *http.Request, traceID string) (int64, bool) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderId"), 10, 64)
	if err != nil || orderID <= 0 {
		respond.ValidationError(w, c.logger, traceID, "invalid orderId", apperrors.ValidationDetail{
			Field:   "orderId",
			Message: "orderId must be a positive integer",
		})
		return 0, false
	}
	return orderID, true
}

func (c *OrderController) requireOperator(w http.ResponseWriter, r *http.Request, traceID string) (string, bool) {
	operator := strings.TrimSpace(r.Header.Get(OperatorHeader))
	if operator == "" {
		respond.ValidationError(w, c.logger, traceID, "operator is required", apperrors.ValidationDetail{
			Field:   "operator",
			Message: OperatorHeader + " header is required",
		})
		return "", false
	}
	if tooLong(operator, maxOperatorLen) {
		respond.ValidationError(w, c.logger, traceID, "operator is too long", apperrors.ValidationDetail{
			Field:   "operator",
			Message: OperatorHeader + " must be at most " + strconv.Itoa(maxOperatorLen) + " characters",
		})
		return "", false
	}
	return operator, true
}
