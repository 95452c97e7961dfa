package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"go.uber.org/zap"

	"tablepos/internal/config"
	"tablepos/internal/infrastructure/logger"
	"tablepos/internal/infrastructure/mysql"
)

const usage = "usage: migrate [-config path] up|down|version"

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to an optional YAML config file")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatal(usage)
	}
	command := flag.Arg(0)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level, cfg.Telemetry.ServiceName)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	m, err := mysql.NewMigrator(mysql.DSN(cfg.Database, true))
	if err != nil {
		zapLogger.Fatal("opening migrator", zap.Error(err))
	}
	defer func() { _, _ = m.Close() }()

	switch command {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "version":
		version, dirty, verr := m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			zapLogger.Info("no migrations applied")
			return
		}
		if verr != nil {
			zapLogger.Fatal("reading schema version", zap.Error(verr))
		}
		zapLogger.Info("schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return
	default:
		zapLogger.Fatal(usage, zap.String("command", command))
	}

	if errors.Is(err, migrate.ErrNoChange) {
		zapLogger.Info("schema already up to date", zap.String("command", command))
		return
	}
	if err != nil {
		zapLogger.Fatal("migration failed", zap.String("command", command), zap.Error(err))
	}

	zapLogger.Info("migration complete", zap.String("command", command))
}
