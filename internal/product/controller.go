package product

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tablepos/internal/respond"
)

type Controller struct {
	useCase MenuUseCase
	logger  *zap.Logger
}

func NewController(useCase MenuUseCase, logger *zap.Logger) *Controller {
	return &Controller{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *Controller) HandleListMenu(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()

	resp, err := c.useCase.ListMenu(r.Context())
	if err != nil {
		respond.Error(w, c.logger.With(zap.String("operation", "listMenu")), traceID, err)
		return
	}

	resp.TraceID = traceID
	respond.JSON(w, c.logger, http.StatusOK, resp)
}
