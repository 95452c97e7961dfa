package product

import (
	"database/sql"

	"go.uber.org/zap"

	"tablepos/internal/product/repository"
)

func NewModule(db *sql.DB, logger *zap.Logger) *Controller {
	repo := repository.NewMySQLRepository(db)
	svc := NewService(repo)
	uc := NewMenuUseCase(svc)
	return NewController(uc, logger)
}
