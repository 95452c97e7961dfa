package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"tablepos/internal/domain"
	"tablepos/internal/errors"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error
}

type ProductRepository interface {
	FindActiveByIDs(ctx context.Context, tx *sql.Tx, ids []int64) ([]domain.Product, error)
}

type OrderRepository interface {
	NextOrderNumber(ctx context.Context, tx *sql.Tx, baseline int64) (int64, error)
	Insert(ctx context.Context, tx *sql.Tx, order *domain.Order) (int64, error)
	FindByID(ctx context.Context, id int64) (*domain.Order, error)
	ListByStatus(ctx context.Context, status domain.OrderStatus, limit int) ([]domain.Order, error)
	UpdateStatusIfOpen(ctx context.Context, id int64, change domain.StatusChange) (bool, error)
}

type OrderItemRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, item domain.OrderItem) (int64, error)
	FindByOrderIDs(ctx context.Context, orderIDs []int64) (map[int64][]domain.OrderItem, error)
}

type OrderService struct {
	txManager        TransactionManager
	productRepo      ProductRepository
	orderRepo        OrderRepository
	orderItemRepo    OrderItemRepository
	logger           *zap.Logger
	numberBaseline   int64
	defaultListLimit int
	now              func() time.Time
}

func NewOrderService(
	txManager TransactionManager,
	productRepo ProductRepository,
	orderRepo OrderRepository,
	orderItemRepo OrderItemRepository,
	logger *zap.Logger,
	numberBaseline int64,
	defaultListLimit int,
) *OrderService {
	if defaultListLimit <= 0 || defaultListLimit > MaxListLimit {
		defaultListLimit = DefaultListLimit
	}
	return &OrderService{
		txManager:        txManager,
		productRepo:      productRepo,
		orderRepo:        orderRepo,
		orderItemRepo:    orderItemRepo,
		logger:           logger,
		numberBaseline:   numberBaseline,
		defaultListLimit: defaultListLimit,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// CreateOpenOrder prices the cart and persists it as a new open order. The
// number allocation and every insert share one transaction; on any failure
// nothing is written.
func (s *OrderService) CreateOpenOrder(ctx context.Context, input domain.OpenOrderInput) (*domain.Order, error) {
	tableNo := strings.TrimSpace(input.TableNo)
	operator := strings.TrimSpace(input.Operator)

	var details []errors.ValidationDetail
	if tableNo == "" {
		details = append(details, errors.ValidationDetail{Field: "tableNo", Message: "table number is required"})
	}
	if operator == "" {
		details = append(details, errors.ValidationDetail{Field: "operator", Message: "operator is required"})
	}
	if len(details) > 0 {
		return nil, errors.NewValidationError("invalid order", details...)
	}

	// Fail before opening a transaction when nothing can be priced.
	if len(domain.DropBlankItems(input.Items)) == 0 && !hasCatalogItem(input.Items) {
		_, err := domain.PriceCart(input.Items, input.TaxPct, input.Discount)
		return nil, err
	}

	var created *domain.Order
	err := s.txManager.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		items, err := s.resolveCatalogItems(ctx, tx, input.Items)
		if err != nil {
			return err
		}

		pricing, err := domain.PriceCart(items, input.TaxPct, input.Discount)
		if err != nil {
			return err
		}

		number, err := s.orderRepo.NextOrderNumber(ctx, tx, s.numberBaseline)
		if err != nil {
			return err
		}

		order := &domain.Order{
			OrderNumber: number,
			TableNo:     tableNo,
			CreatedAt:   s.now(),
			CreatedBy:   operator,
			TaxPct:      pricing.TaxPct,
			Discount:    pricing.Discount,
			Subtotal:    pricing.Subtotal,
			TaxAmount:   pricing.TaxAmount,
			Total:       pricing.Total,
			Status:      domain.OrderStatusOpen,
			Note:        strings.TrimSpace(input.Note),
		}

		order.ID, err = s.orderRepo.Insert(ctx, tx, order)
		if err != nil {
			return err
		}

		order.Items = make([]domain.OrderItem, 0, len(pricing.Items))
		for _, priced := range pricing.Items {
			item := domain.OrderItem{
				OrderID:   order.ID,
				ProductID: priced.ProductID,
				Name:      priced.Name,
				UnitPrice: priced.UnitPrice,
				Quantity:  priced.Quantity,
				LineTotal: priced.LineTotal,
			}
			item.ID, err = s.orderItemRepo.Insert(ctx, tx, item)
			if err != nil {
				return err
			}
			order.Items = append(order.Items, item)
		}

		created = order
		return nil
	})
	if err != nil {
		s.logger.Error("failed to create order",
			zap.String("tableNo", tableNo),
			zap.String("operator", operator),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("order opened",
		zap.Int64("orderId", created.ID),
		zap.Int64("orderNumber", created.OrderNumber),
		zap.String("tableNo", created.TableNo),
		zap.Int("itemCount", len(created.Items)),
		zap.Int64("total", created.Total),
	)

	return created, nil
}

func hasCatalogItem(items []domain.CartItem) bool {
	for _, it := range items {
		if it.ProductID != nil {
			return true
		}
	}
	return false
}

// resolveCatalogItems replaces the name and unit price of every item that
// references a product with the catalog's current values.
func (s *OrderService) resolveCatalogItems(ctx context.Context, tx *sql.Tx, items []domain.CartItem) ([]domain.CartItem, error) {
	var ids []int64
	for _, it := range items {
		if it.ProductID != nil {
			ids = append(ids, *it.ProductID)
		}
	}
	if len(ids) == 0 {
		return items, nil
	}

	products, err := s.productRepo.FindActiveByIDs(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	resolved := make([]domain.CartItem, len(items))
	var details []errors.ValidationDetail
	for i, it := range items {
		resolved[i] = it
		if it.ProductID == nil {
			continue
		}
		p, ok := byID[*it.ProductID]
		if !ok {
			details = append(details, errors.ValidationDetail{
				Field:   fmt.Sprintf("items[%d].productId", i),
				Message: fmt.Sprintf("product %d is not available", *it.ProductID),
			})
			continue
		}
		resolved[i].Name = p.Name
		resolved[i].UnitPrice = p.Price
	}

	if len(details) > 0 {
		return nil, errors.NewValidationError("invalid order items", details...)
	}

	return resolved, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	items, err := s.orderItemRepo.FindByOrderIDs(ctx, []int64{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]

	return order, nil
}

// ListOpenOrders returns open orders newest first. limit falls back to the
// configured default when not positive and is capped at MaxListLimit.
func (s *OrderService) ListOpenOrders(ctx context.Context, limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = s.defaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	orders, err := s.orderRepo.ListByStatus(ctx, domain.OrderStatusOpen, limit)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return []domain.Order{}, nil
	}

	ids := make([]int64, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}

	items, err := s.orderItemRepo.FindByOrderIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}

	return orders, nil
}

// Transition moves an open order to a terminal status. Exactly one of any
// number of concurrent callers succeeds; the rest get a ConflictError.
func (s *OrderService) Transition(ctx context.Context, id int64, change domain.StatusChange) (*domain.Order, error) {
	if err := domain.ValidateTransition(domain.OrderStatusOpen, change.To); err != nil {
		return nil, err
	}

	change.Operator = strings.TrimSpace(change.Operator)
	if change.Operator == "" {
		return nil, errors.NewValidationError("operator is required", errors.ValidationDetail{
			Field: "operator", Message: "operator is required",
		})
	}
	if change.To == domain.OrderStatusPaid && change.PaymentMethod == nil {
		return nil, errors.NewValidationError("payment method is required", errors.ValidationDetail{
			Field: "paymentMethod", Message: "payment method is required to settle an order",
		})
	}
	if change.To == domain.OrderStatusVoid {
		change.PaymentMethod = nil
	}
	if change.At.IsZero() {
		change.At = s.now()
	}

	updated, err := s.orderRepo.UpdateStatusIfOpen(ctx, id, change)
	if err != nil {
		s.logger.Error("failed to update order status",
			zap.Int64("orderId", id),
			zap.String("target", string(change.To)),
			zap.Error(err),
		)
		return nil, err
	}

	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if !updated {
		s.logger.Warn("order already settled",
			zap.Int64("orderId", id),
			zap.Int64("orderNumber", order.OrderNumber),
			zap.String("status", string(order.Status)),
			zap.String("target", string(change.To)),
		)
		return nil, domain.SettledConflict(order.OrderNumber, order.Status)
	}

	s.logger.Info("order status changed",
		zap.Int64("orderId", id),
		zap.Int64("orderNumber", order.OrderNumber),
		zap.String("status", string(order.Status)),
		zap.String("operator", change.Operator),
	)

	return order, nil
}
