package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/clients/directory"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/data/db"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/events"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/jobs/worker"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/observability"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/platform/envutil"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/platform/logger"
)

type WorkerConfig struct {
	Enabled       bool `yaml:"enabled"`
	worker.Config `yaml:",inline"`
}

type Config struct {
	HTTPAddr    string   `yaml:"http_addr"`
	LogMode     string   `yaml:"log_mode"`
	CORSOrigins []string `yaml:"cors_origins"`

	DB        db.Config                `yaml:"db"`
	Broker    events.Config            `yaml:"broker"`
	Directory directory.Config         `yaml:"directory"`
	Worker    WorkerConfig             `yaml:"worker"`
	Telemetry observability.OtelConfig `yaml:"telemetry"`
}

func DefaultConfig() Config {
	return Config{
		LogMode: "development",
		DB: db.Config{
			Driver:   db.DriverPostgres,
			Host:     "localhost",
			Port:     "5432",
			User:     "phonebook",
			Password: "phonebookpwd",
			Name:     "phonebookdb",
			SSLMode:  "disable",
		},
		Broker: events.Config{}.WithDefaults(),
		Directory: directory.Config{
			BaseURL: "http://localhost:8081",
			Timeout: 10 * time.Second,
		},
		Worker: WorkerConfig{
			Config: worker.Config{
				Topic:           events.DefaultTopic,
				BackoffInterval: worker.DefaultBackoffInterval,
				PollTimeout:     worker.DefaultPollTimeout,
			},
		},
		Telemetry: observability.OtelConfig{
			ServiceName: "phonebook",
			SampleRatio: 0.1,
		},
	}
}

// LoadConfig layers defaults, the YAML file named by CONFIG_FILE (if any) and
// environment variables, in that order.
func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := DefaultConfig()
	if path, ok := envutil.Lookup("CONFIG_FILE"); ok {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
		log.Info("Loaded config file", "path", path)
	}
	applyEnv(&cfg, log)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config, log *logger.Logger) {
	cfg.HTTPAddr = envutil.String("HTTP_ADDR", cfg.HTTPAddr, log)
	cfg.LogMode = envutil.String("LOG_MODE", cfg.LogMode, log)
	cfg.CORSOrigins = envutil.List("CORS_ALLOWED_ORIGINS", cfg.CORSOrigins, log)

	cfg.DB.Driver = envutil.String("DB_DRIVER", cfg.DB.Driver, log)
	cfg.DB.Host = envutil.String("POSTGRES_HOST", cfg.DB.Host, log)
	cfg.DB.Port = envutil.String("POSTGRES_PORT", cfg.DB.Port, log)
	cfg.DB.User = envutil.String("POSTGRES_USER", cfg.DB.User, log)
	cfg.DB.Password = envutil.String("POSTGRES_PASSWORD", cfg.DB.Password, log)
	cfg.DB.Name = envutil.String("POSTGRES_NAME", cfg.DB.Name, log)
	cfg.DB.SSLMode = envutil.String("POSTGRES_SSLMODE", cfg.DB.SSLMode, log)
	cfg.DB.SQLitePath = envutil.String("SQLITE_PATH", cfg.DB.SQLitePath, log)

	cfg.Broker.Kind = envutil.String("BROKER_KIND", cfg.Broker.Kind, log)
	cfg.Broker.KafkaBrokers = envutil.List("KAFKA_BOOTSTRAP_SERVERS", cfg.Broker.KafkaBrokers, log)
	cfg.Broker.GroupID = envutil.String("KAFKA_GROUP_ID", cfg.Broker.GroupID, log)
	cfg.Broker.RedisAddr = envutil.String("REDIS_ADDR", cfg.Broker.RedisAddr, log)
	cfg.Broker.RedisConsumer = envutil.String("REDIS_CONSUMER", cfg.Broker.RedisConsumer, log)
	cfg.Broker.RedisClaimIdle = envutil.Duration("REDIS_CLAIM_IDLE", cfg.Broker.RedisClaimIdle, log)
	cfg.Broker.Topic = envutil.String("REPORT_TOPIC", cfg.Broker.Topic, log)

	cfg.Directory.BaseURL = envutil.String("CONTACT_BASE_URL", cfg.Directory.BaseURL, log)
	cfg.Directory.Timeout = envutil.Duration("CONTACT_TIMEOUT", cfg.Directory.Timeout, log)

	cfg.Worker.Enabled = envutil.Bool("ENABLE_WORKER", cfg.Worker.Enabled, log)
	cfg.Worker.BackoffInterval = envutil.Duration("WORKER_BACKOFF", cfg.Worker.BackoffInterval, log)
	cfg.Worker.PollTimeout = envutil.Duration("WORKER_POLL_TIMEOUT", cfg.Worker.PollTimeout, log)
	// One topic for both sides unless the worker section names its own.
	if strings.TrimSpace(cfg.Worker.Topic) == "" || cfg.Worker.Topic == events.DefaultTopic {
		cfg.Worker.Topic = cfg.Broker.Topic
	}

	cfg.Telemetry.ServiceName = envutil.String("OTEL_SERVICE_NAME", cfg.Telemetry.ServiceName, log)
	cfg.Telemetry.Environment = envutil.String("APP_ENV", cfg.Telemetry.Environment, log)
	cfg.Telemetry.Enabled = envutil.Bool("OTEL_ENABLED", cfg.Telemetry.Enabled, log)
}

func (c Config) Validate() error {
	switch strings.ToLower(c.Broker.Kind) {
	case events.KindKafka, events.KindRedis, events.KindMemory:
	default:
		return fmt.Errorf("config: unknown broker kind %q", c.Broker.Kind)
	}
	switch strings.ToLower(c.DB.Driver) {
	case db.DriverPostgres, db.DriverSQLite:
	default:
		return fmt.Errorf("config: unknown database driver %q", c.DB.Driver)
	}
	if strings.TrimSpace(c.Directory.BaseURL) == "" {
		return fmt.Errorf("config: directory base url is required")
	}
	if c.Worker.BackoffInterval <= 0 || c.Worker.PollTimeout <= 0 {
		return fmt.Errorf("config: worker intervals must be positive")
	}
	return nil
}
