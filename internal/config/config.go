package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Log       LogConfig
	Order     OrderConfig
	Report    ReportConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Telemetry TelemetryConfig
}

type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type LogConfig struct {
	Level string
}

type OrderConfig struct {
	NumberBaseline   int64
	DefaultListLimit int
	TxTimeout        time.Duration
}

type ReportConfig struct {
	Location *time.Location
	CacheTTL time.Duration
}

type RedisConfig struct {
	Addr string
}

type KafkaConfig struct {
	Brokers        []string
	Topic          string
	PublishTimeout time.Duration
}

type TelemetryConfig struct {
	ServiceName  string
	OTLPEndpoint string
}

// Load reads the optional YAML file at path and overlays environment
// variables on top of it. Nested keys map to env names by replacing dots
// with underscores, so database.host is DATABASE_HOST; the short DB_*
// names are bound explicitly.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.user", "tablepos")
	v.SetDefault("database.password", "secret")
	v.SetDefault("database.name", "tablepos")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("order.number_baseline", 1000)
	v.SetDefault("order.list_limit", 50)
	v.SetDefault("order.tx_timeout", "0s")
	v.SetDefault("report.timezone", "UTC")
	v.SetDefault("report.cache_ttl", "1m")
	v.SetDefault("redis.addr", "")
	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.topic", "tablepos.orders")
	v.SetDefault("kafka.publish_timeout", "3s")
	v.SetDefault("telemetry.service_name", "tablepos")
	v.SetDefault("telemetry.otlp_endpoint", "")

	envAliases := map[string]string{
		"server.port":                "SERVER_PORT",
		"log.level":                  "LOG_LEVEL",
		"database.host":              "DB_HOST",
		"database.port":              "DB_PORT",
		"database.user":              "DB_USER",
		"database.password":          "DB_PASSWORD",
		"database.name":              "DB_NAME",
		"database.max_open_conns":    "DB_MAX_OPEN_CONNS",
		"database.max_idle_conns":    "DB_MAX_IDLE_CONNS",
		"database.conn_max_lifetime": "DB_CONN_MAX_LIFETIME",
		"database.auto_migrate":      "DB_AUTO_MIGRATE",
		"order.number_baseline":      "ORDER_NUMBER_BASELINE",
		"order.list_limit":           "ORDER_LIST_LIMIT",
		"order.tx_timeout":           "ORDER_TX_TIMEOUT",
		"report.timezone":            "REPORT_TIMEZONE",
		"report.cache_ttl":           "REPORT_CACHE_TTL",
		"redis.addr":                 "REDIS_ADDR",
		"kafka.brokers":              "KAFKA_BROKERS",
		"kafka.topic":                "KAFKA_TOPIC",
		"kafka.publish_timeout":      "KAFKA_PUBLISH_TIMEOUT",
		"telemetry.service_name":     "SERVICE_NAME",
		"telemetry.otlp_endpoint":    "OTEL_EXPORTER_OTLP_ENDPOINT",
	}
	for key, env := range envAliases {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding env %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	serverTimeouts := make(map[string]time.Duration, 3)
	for _, key := range []string{"server.read_timeout", "server.write_timeout", "server.shutdown_timeout"} {
		d, err := time.ParseDuration(v.GetString(key))
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", key, err)
		}
		serverTimeouts[key] = d
	}

	connMaxLifetime, err := time.ParseDuration(v.GetString("database.conn_max_lifetime"))
	if err != nil {
		return nil, fmt.Errorf("parsing database.conn_max_lifetime: %w", err)
	}

	txTimeout, err := time.ParseDuration(v.GetString("order.tx_timeout"))
	if err != nil {
		return nil, fmt.Errorf("parsing order.tx_timeout: %w", err)
	}

	cacheTTL, err := time.ParseDuration(v.GetString("report.cache_ttl"))
	if err != nil {
		return nil, fmt.Errorf("parsing report.cache_ttl: %w", err)
	}

	publishTimeout, err := time.ParseDuration(v.GetString("kafka.publish_timeout"))
	if err != nil {
		return nil, fmt.Errorf("parsing kafka.publish_timeout: %w", err)
	}

	location, err := time.LoadLocation(v.GetString("report.timezone"))
	if err != nil {
		return nil, fmt.Errorf("loading report.timezone: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetInt("server.port"),
			ReadTimeout:     serverTimeouts["server.read_timeout"],
			WriteTimeout:    serverTimeouts["server.write_timeout"],
			ShutdownTimeout: serverTimeouts["server.shutdown_timeout"],
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			Name:            v.GetString("database.name"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: connMaxLifetime,
			AutoMigrate:     v.GetBool("database.auto_migrate"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
		},
		Order: OrderConfig{
			NumberBaseline:   v.GetInt64("order.number_baseline"),
			DefaultListLimit: v.GetInt("order.list_limit"),
			TxTimeout:        txTimeout,
		},
		Report: ReportConfig{
			Location: location,
			CacheTTL: cacheTTL,
		},
		Redis: RedisConfig{
			Addr: v.GetString("redis.addr"),
		},
		Kafka: KafkaConfig{
			Brokers:        splitList(v.GetString("kafka.brokers")),
			Topic:          v.GetString("kafka.topic"),
			PublishTimeout: publishTimeout,
		},
		Telemetry: TelemetryConfig{
			ServiceName:  v.GetString("telemetry.service_name"),
			OTLPEndpoint: v.GetString("telemetry.otlp_endpoint"),
		},
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
