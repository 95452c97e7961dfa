package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"tablepos/internal/dto"
	"tablepos/internal/respond"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Routes groups the mounted feature controllers.
type Routes struct {
	Orders  func(r chi.Router)
	Reports func(r chi.Router)
	Menu    http.HandlerFunc
	Metrics http.Handler
}

type HealthResponse struct {
	TraceID string `json:"traceId"`
	Status  string `json:"status"`
}

func NewRouter(routes Routes, db Pinger, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/api/orders", routes.Orders)
	r.Route("/api/reports", routes.Reports)
	r.Get("/api/menu", routes.Menu)
	r.Get("/healthz", healthHandler(db, logger))
	if routes.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", routes.Metrics)
	}

	return otelhttp.NewHandler(r, "tablepos",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

func healthHandler(db Pinger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		traceID := uuid.New().String()

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			logger.Warn("health check failed", zap.String("traceId", traceID), zap.Error(err))
			respond.JSON(w, logger, http.StatusServiceUnavailable, dto.ErrorResponse{
				TraceID:   traceID,
				Status:    http.StatusServiceUnavailable,
				Error:     "UNAVAILABLE",
				Message:   "database unreachable",
				Timestamp: time.Now().UTC(),
			})
			return
		}

		respond.JSON(w, logger, http.StatusOK, HealthResponse{TraceID: traceID, Status: "ok"})
	}
}
