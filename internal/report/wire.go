package report

import (
	"database/sql"

	"go.uber.org/zap"

	"tablepos/internal/config"
	"tablepos/internal/report/controller"
	"tablepos/internal/report/repository"
	"tablepos/internal/report/service"
)

// NewModule wires the report endpoints. cache may be nil to disable caching.
func NewModule(db *sql.DB, cfg *config.Config, logger *zap.Logger, cache service.Cache) *controller.ReportController {
	repo := repository.NewMySQLReportRepository(db)
	svc := service.NewReportService(repo, cache, cfg.Report.Location, cfg.Report.CacheTTL, logger)
	return controller.NewReportController(svc, logger)
}
