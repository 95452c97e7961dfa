package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"tablepos/internal/config"
	"tablepos/internal/infrastructure/cache"
	"tablepos/internal/infrastructure/logger"
	"tablepos/internal/infrastructure/messaging"
	"tablepos/internal/infrastructure/mysql"
	"tablepos/internal/infrastructure/telemetry"
	"tablepos/internal/order"
	"tablepos/internal/product"
	"tablepos/internal/report"
	reportservice "tablepos/internal/report/service"
	"tablepos/internal/server"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to an optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level, cfg.Telemetry.ServiceName)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx := context.Background()

	shutdownTracer, err := telemetry.SetupTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		zapLogger.Fatal("setting up tracer", zap.Error(err))
	}

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(cfg.Telemetry.ServiceName)
	if err != nil {
		zapLogger.Fatal("setting up meter provider", zap.Error(err))
	}

	orderMetrics, err := telemetry.NewOrderMetrics(otel.Meter("tablepos/order"))
	if err != nil {
		zapLogger.Fatal("creating order metrics", zap.Error(err))
	}

	if cfg.Database.AutoMigrate {
		if err := mysql.MigrateUp(mysql.DSN(cfg.Database, true)); err != nil {
			zapLogger.Fatal("migrating database", zap.Error(err))
		}
		zapLogger.Info("database migrations applied")
	}

	db, err := mysql.NewConnection(cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()
	zapLogger.Info("database connected")

	deps := order.Dependencies{
		Publisher: messaging.NoopPublisher{},
		Metrics:   orderMetrics,
	}
	var reportCache reportservice.Cache

	if cfg.Redis.Addr != "" {
		client, err := cache.NewRedisClient(cfg.Redis.Addr)
		if err != nil {
			zapLogger.Fatal("creating redis client", zap.Error(err))
		}
		redisCache := cache.NewRedisCache(client, cfg.Telemetry.ServiceName)
		defer redisCache.Close()

		reportCache = redisCache
		deps.Invalidator = redisCache
		zapLogger.Info("report cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	if len(cfg.Kafka.Brokers) > 0 {
		producer := messaging.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.PublishTimeout)
		defer producer.Close()

		deps.Publisher = producer
		zapLogger.Info("order events enabled",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
		)
	}

	orderCtrl := order.NewModule(db, cfg, zapLogger, deps)
	reportCtrl := report.NewModule(db, cfg, zapLogger, reportCache)
	productCtrl := product.NewModule(db, zapLogger)

	router := server.NewRouter(server.Routes{
		Orders:  orderCtrl.Routes,
		Reports: reportCtrl.Routes,
		Menu:    productCtrl.HandleListMenu,
		Metrics: metricsHandler,
	}, db, zapLogger)

	srv := server.New(cfg.Server, router, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	if err := srv.Shutdown(context.Background()); err != nil {
		zapLogger.Error("server shutdown failed", zap.Error(err))
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracer(flushCtx); err != nil {
		zapLogger.Warn("flushing traces", zap.Error(err))
	}
	if err := shutdownMeter(flushCtx); err != nil {
		zapLogger.Warn("flushing metrics", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}
