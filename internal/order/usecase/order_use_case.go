package usecase

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tablepos/internal/domain"
	"tablepos/internal/errors"
)

type OrderService interface {
	CreateOpenOrder(ctx context.Context, input domain.OpenOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	ListOpenOrders(ctx context.Context, limit int) ([]domain.Order, error)
	Transition(ctx context.Context, id int64, change domain.StatusChange) (*domain.Order, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

type MetricsRecorder interface {
	OrderOpened(ctx context.Context)
	OrderSettled(ctx context.Context, status, paymentMethod string, total int64)
}

// ReportInvalidator drops cached reports once a settlement changes the
// figures they were built from.
type ReportInvalidator interface {
	BumpGeneration(ctx context.Context) error
}

// sideEffectTimeout bounds each post-commit side effect.
const sideEffectTimeout = 3 * time.Second

const invalidateAttempts = 2

type OrderUseCase struct {
	orderSvc    OrderService
	publisher   EventPublisher
	metrics     MetricsRecorder
	invalidator ReportInvalidator
	logger      *zap.Logger
}

func NewOrderUseCase(
	orderSvc OrderService,
	publisher EventPublisher,
	metrics MetricsRecorder,
	invalidator ReportInvalidator,
	logger *zap.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		orderSvc:    orderSvc,
		publisher:   publisher,
		metrics:     metrics,
		invalidator: invalidator,
		logger:      logger,
	}
}

func (uc *OrderUseCase) CreateOpenOrder(ctx context.Context, input domain.OpenOrderInput) (*domain.Order, error) {
	uc.logger.Info("create order started",
		zap.String("tableNo", input.TableNo),
		zap.String("operator", input.Operator),
		zap.Int("itemCount", len(input.Items)),
	)

	order, err := uc.orderSvc.CreateOpenOrder(ctx, input)
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.OrderOpened(ctx)
	}
	uc.publish(ctx, domain.OrderEventOpened, order, order.CreatedBy)

	return order, nil
}

func (uc *OrderUseCase) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	return uc.orderSvc.GetOrder(ctx, id)
}

func (uc *OrderUseCase) ListOpenOrders(ctx context.Context, limit int) ([]domain.Order, error) {
	return uc.orderSvc.ListOpenOrders(ctx, limit)
}

// MarkPaid settles an open order. An unrecognised method is coerced to
// domain.DefaultPaymentMethod and logged rather than rejected.
func (uc *OrderUseCase) MarkPaid(ctx context.Context, id int64, method, operator string) (*domain.Order, error) {
	pm := uc.resolvePaymentMethod(id, method)
	return uc.settle(ctx, id, domain.StatusChange{
		To:            domain.OrderStatusPaid,
		PaymentMethod: &pm,
		Operator:      operator,
	})
}

func (uc *OrderUseCase) VoidOrder(ctx context.Context, id int64, operator string) (*domain.Order, error) {
	return uc.settle(ctx, id, domain.StatusChange{
		To:       domain.OrderStatusVoid,
		Operator: operator,
	})
}

// TransitionOrder is the generic status entry point. target is validated
// against the lifecycle before anything is read or written.
func (uc *OrderUseCase) TransitionOrder(ctx context.Context, id int64, target, method, operator string) (*domain.Order, error) {
	status, ok := domain.ParseOrderStatus(target)
	if !ok {
		return nil, errors.NewInvalidTransitionError(string(domain.OrderStatusOpen), strings.TrimSpace(target))
	}
	if err := domain.ValidateTransition(domain.OrderStatusOpen, status); err != nil {
		return nil, err
	}

	if status == domain.OrderStatusPaid {
		return uc.MarkPaid(ctx, id, method, operator)
	}
	return uc.VoidOrder(ctx, id, operator)
}

func (uc *OrderUseCase) resolvePaymentMethod(id int64, method string) domain.PaymentMethod {
	pm, coerced := domain.PaymentMethodOrDefault(method)
	if coerced && strings.TrimSpace(method) != "" {
		uc.logger.Warn("unknown payment method, using default",
			zap.Int64("orderId", id),
			zap.String("requested", method),
			zap.String("applied", string(pm)),
		)
	}
	return pm
}

func (uc *OrderUseCase) settle(ctx context.Context, id int64, change domain.StatusChange) (*domain.Order, error) {
	order, err := uc.orderSvc.Transition(ctx, id, change)
	if err != nil {
		return nil, err
	}

	paymentMethod := ""
	if order.PaymentMethod != nil {
		paymentMethod = string(*order.PaymentMethod)
	}

	if uc.metrics != nil {
		uc.metrics.OrderSettled(ctx, string(order.Status), paymentMethod, order.Total)
	}

	uc.invalidateReports(ctx, id)

	eventType := domain.OrderEventPaid
	if order.Status == domain.OrderStatusVoid {
		eventType = domain.OrderEventVoided
	}
	uc.publish(ctx, eventType, order, change.Operator)

	return order, nil
}

// invalidateReports bumps the report cache generation once the change is
// committed. It runs detached from request cancellation and retries once; if
// both attempts fail, cached reports stay stale until their TTL expires.
func (uc *OrderUseCase) invalidateReports(ctx context.Context, id int64) {
	if uc.invalidator == nil {
		return
	}

	var err error
	for attempt := 1; attempt <= invalidateAttempts; attempt++ {
		bumpCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
		err = uc.invalidator.BumpGeneration(bumpCtx)
		cancel()
		if err == nil {
			return
		}
		uc.logger.Warn("failed to invalidate cached reports",
			zap.Int64("orderId", id),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}

	uc.logger.Error("cached reports are stale until they expire", zap.Int64("orderId", id), zap.Error(err))
}

// publish emits an order event after the fact. Failures are logged only;
// the order change is already committed.
func (uc *OrderUseCase) publish(ctx context.Context, eventType domain.OrderEventType, order *domain.Order, operator string) {
	if uc.publisher == nil {
		return
	}

	event := domain.OrderEvent{
		EventID:     uuid.NewString(),
		Type:        eventType,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		TableNo:     order.TableNo,
		Status:      order.Status,
		Total:       order.Total,
		Operator:    strings.TrimSpace(operator),
		OccurredAt:  time.Now().UTC(),
	}
	if order.PaymentMethod != nil {
		event.PaymentMethod = string(*order.PaymentMethod)
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	if err := uc.publisher.Publish(pubCtx, strconv.FormatInt(order.ID, 10), event); err != nil {
		uc.logger.Warn("failed to publish order event",
			zap.String("type", string(eventType)),
			zap.Int64("orderId", order.ID),
			zap.Error(err),
		)
	}
}
