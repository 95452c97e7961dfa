package order

import (
	"database/sql"

	"go.uber.org/zap"

	"tablepos/internal/config"
	"tablepos/internal/infrastructure/mysql"
	"tablepos/internal/order/controller"
	orderrepo "tablepos/internal/order/repository"
	"tablepos/internal/order/service"
	"tablepos/internal/order/usecase"
	productrepo "tablepos/internal/product/repository"
)

// Dependencies are the optional side-effect sinks of the order use cases.
// Nil fields disable the corresponding side effect.
type Dependencies struct {
	Publisher   usecase.EventPublisher
	Metrics     usecase.MetricsRecorder
	Invalidator usecase.ReportInvalidator
}

func NewModule(db *sql.DB, cfg *config.Config, logger *zap.Logger, deps Dependencies) *controller.OrderController {
	orderRepo := orderrepo.NewMySQLOrderRepository(db)
	orderItemRepo := orderrepo.NewMySQLOrderItemRepository(db)
	productRepo := productrepo.NewMySQLRepository(db)
	txManager := mysql.NewTxManager(db, cfg.Order.TxTimeout)

	orderSvc := service.NewOrderService(
		txManager,
		productRepo,
		orderRepo,
		orderItemRepo,
		logger,
		cfg.Order.NumberBaseline,
		cfg.Order.DefaultListLimit,
	)

	uc := usecase.NewOrderUseCase(
		orderSvc,
		deps.Publisher,
		deps.Metrics,
		deps.Invalidator,
		logger,
	)

	return controller.NewOrderController(uc, logger)
}
