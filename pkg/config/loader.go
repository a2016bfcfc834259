package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix    = "BLOODLINK_"
	configEnvVar = "CONFIG_PATH"

	defaultAppName = "bloodlink"
	defaultPort    = 50051
)

// Loader загружает конфигурацию из разных источников
type Loader struct {
	k           *koanf.Koanf
	configPaths []string
	envPrefix   string
}

// NewLoader создаёт новый загрузчик конфигурации
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		k: koanf.New("."),
		configPaths: []string{
			"config.yaml",
			"config/config.yaml",
			"/etc/bloodlink/config.yaml",
		},
		envPrefix: envPrefix,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// LoaderOption - опция для конфигурации загрузчика
type LoaderOption func(*Loader)

// WithConfigPaths устанавливает пути поиска конфигурации
func WithConfigPaths(paths ...string) LoaderOption {
	return func(l *Loader) {
		l.configPaths = paths
	}
}

// WithEnvPrefix устанавливает префикс переменных окружения
func WithEnvPrefix(prefix string) LoaderOption {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// Load загружает конфигурацию с приоритетом:
// defaults < yaml файл < переменные окружения
func (l *Loader) Load() (*Config, error) {
	if err := l.loadDefaults(); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Файл не обязателен
	if err := l.loadConfigFile(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	if err := l.loadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}

	var cfg Config
	if err := l.k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (l *Loader) loadDefaults() error {
	defaults := map[string]any{
		// App
		"app.name":        defaultAppName,
		"app.version":     "1.0.0",
		"app.environment": "development",
		"app.debug":       false,

		// GRPC
		"grpc.port":                               defaultPort,
		"grpc.max_recv_msg_size":                  4 * 1024 * 1024,
		"grpc.max_send_msg_size":                  4 * 1024 * 1024,
		"grpc.max_concurrent_conn":                1000,
		"grpc.keepalive.max_connection_idle":      15 * time.Minute,
		"grpc.keepalive.max_connection_age":       30 * time.Minute,
		"grpc.keepalive.max_connection_age_grace": 5 * time.Minute,
		"grpc.keepalive.time":                     5 * time.Minute,
		"grpc.keepalive.timeout":                  20 * time.Second,

		// HTTP
		"http.enabled":              true,
		"http.port":                 8080,
		"http.read_timeout":         15 * time.Second,
		"http.write_timeout":        15 * time.Second,
		"http.shutdown_timeout":     10 * time.Second,
		"http.docs":                 true,
		"http.cors.enabled":         false,
		"http.cors.allowed_origins": []string{"*"},
		"http.cors.allowed_methods": []string{"GET", "POST", "OPTIONS"},
		"http.cors.allowed_headers": []string{"Content-Type", "Connect-Protocol-Version", "X-Request-Id"},
		"http.cors.exposed_headers": []string{"X-Request-Id"},
		"http.cors.max_age":         3600,
		"http.rate_limit.enabled":   false,
		"http.rate_limit.backend":   "memory",
		"http.rate_limit.requests":  120,
		"http.rate_limit.window":    time.Minute,

		// Log
		"log.level":       "info",
		"log.format":      "json",
		"log.output":      "stdout",
		"log.file_path":   "logs/matching.log",
		"log.max_size":    100,
		"log.max_backups": 3,
		"log.max_age":     7,
		"log.compress":    true,

		// Metrics
		"metrics.enabled":   true,
		"metrics.port":      9090,
		"metrics.path":      "/metrics",
		"metrics.namespace": "bloodlink",
		"metrics.subsystem": "matching",

		// Tracing
		"tracing.enabled":      false,
		"tracing.endpoint":     "localhost:4317",
		"tracing.service_name": "matching-svc",
		"tracing.sample_rate":  0.1,

		// Services
		"services.matching.host":           "localhost",
		"services.matching.port":           defaultPort,
		"services.matching.timeout":        10 * time.Second,
		"services.matching.max_retries":    3,
		"services.matching.retry_backoff":  100 * time.Millisecond,
		"services.matching.load_balancing": "round_robin",

		// Database
		"database.driver":             "memory",
		"database.host":               "localhost",
		"database.port":               5432,
		"database.database":           "bloodlink",
		"database.username":           "postgres",
		"database.password":           "",
		"database.ssl_mode":           "disable",
		"database.path":               "bloodlink.db",
		"database.max_open_conns":     10,
		"database.max_idle_conns":     2,
		"database.conn_max_lifetime":  5 * time.Minute,
		"database.conn_max_idle_time": 5 * time.Minute,
		"database.migrate_on_start":   true,

		// Cache
		"cache.enabled":     true,
		"cache.driver":      "memory",
		"cache.host":        "localhost",
		"cache.port":        6379,
		"cache.db":          0,
		"cache.default_ttl": time.Minute,
		"cache.max_entries": 1000,

		// Events
		"events.buffer_size":     256,
		"events.workers":         2,
		"events.handler_timeout": 5 * time.Second,
		"events.drain_timeout":   5 * time.Second,

		// Notify
		"notify.driver":  "log",
		"notify.channel": "bloodlink:alerts",

		"allocation.emergency_draws_reserve": false,
		"seed.enabled":                       true,
		"export.dir":                         "exports",

		// Retry
		"retry.max_attempts":       3,
		"retry.initial_backoff":    100 * time.Millisecond,
		"retry.max_backoff":        2 * time.Second,
		"retry.backoff_multiplier": 2.0,
	}

	return l.k.Load(confmap.Provider(defaults, "."), nil)
}

func (l *Loader) loadConfigFile() error {
	if configPath := os.Getenv(configEnvVar); configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return l.k.Load(file.Provider(configPath), yaml.Parser())
		}
	}

	for _, path := range l.configPaths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			continue
		}

		if _, err := os.Stat(absPath); err == nil {
			return l.k.Load(file.Provider(absPath), yaml.Parser())
		}
	}

	return fmt.Errorf("config file not found in paths: %v", l.configPaths)
}

// loadEnv: ключи с подчёркиванием в имени поля идут через envKeyMappings,
// остальные получают точки вместо подчёркиваний
func (l *Loader) loadEnv() error {
	return l.k.Load(env.ProviderWithValue(l.envPrefix, ".", func(envKey string, value string) (string, interface{}) {
		key := strings.ToLower(strings.TrimPrefix(envKey, l.envPrefix))

		if mappedKey, ok := envKeyMappings[key]; ok {
			key = mappedKey
		} else {
			key = strings.ReplaceAll(key, "_", ".")
		}

		return key, value
	}), nil)
}

var envKeyMappings = map[string]string{
	// HTTP
	"http_read_timeout":     "http.read_timeout",
	"http_write_timeout":    "http.write_timeout",
	"http_shutdown_timeout": "http.shutdown_timeout",

	"http_rate_limit_enabled":         "http.rate_limit.enabled",
	"http_rate_limit_backend":         "http.rate_limit.backend",
	"http_rate_limit_requests":        "http.rate_limit.requests",
	"http_rate_limit_window":          "http.rate_limit.window",
	"http_rate_limit_trust_forwarded": "http.rate_limit.trust_forwarded",

	// GRPC
	"grpc_max_recv_msg_size":                  "grpc.max_recv_msg_size",
	"grpc_max_send_msg_size":                  "grpc.max_send_msg_size",
	"grpc_max_concurrent_conn":                "grpc.max_concurrent_conn",
	"grpc_keepalive_max_connection_idle":      "grpc.keepalive.max_connection_idle",
	"grpc_keepalive_max_connection_age":       "grpc.keepalive.max_connection_age",
	"grpc_keepalive_max_connection_age_grace": "grpc.keepalive.max_connection_age_grace",

	// Log
	"log_file_path":   "log.file_path",
	"log_max_size":    "log.max_size",
	"log_max_backups": "log.max_backups",
	"log_max_age":     "log.max_age",

	// Tracing
	"tracing_service_name": "tracing.service_name",
	"tracing_sample_rate":  "tracing.sample_rate",

	// Services
	"services_matching_max_retries":    "services.matching.max_retries",
	"services_matching_retry_backoff":  "services.matching.retry_backoff",
	"services_matching_load_balancing": "services.matching.load_balancing",

	// Database
	"database_ssl_mode":           "database.ssl_mode",
	"database_max_open_conns":     "database.max_open_conns",
	"database_max_idle_conns":     "database.max_idle_conns",
	"database_conn_max_lifetime":  "database.conn_max_lifetime",
	"database_conn_max_idle_time": "database.conn_max_idle_time",
	"database_migrate_on_start":   "database.migrate_on_start",

	// Cache
	"cache_default_ttl": "cache.default_ttl",
	"cache_max_entries": "cache.max_entries",

	// Events
	"events_buffer_size":     "events.buffer_size",
	"events_handler_timeout": "events.handler_timeout",
	"events_drain_timeout":   "events.drain_timeout",

	"allocation_emergency_draws_reserve": "allocation.emergency_draws_reserve",

	// Retry
	"retry_max_attempts":       "retry.max_attempts",
	"retry_initial_backoff":    "retry.initial_backoff",
	"retry_max_backoff":        "retry.max_backoff",
	"retry_backoff_multiplier": "retry.backoff_multiplier",
}

// MustLoad загружает конфигурацию или паникует
func MustLoad(opts ...LoaderOption) *Config {
	cfg, err := NewLoader(opts...).Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// Load - загрузка с настройками по умолчанию
func Load() (*Config, error) {
	return NewLoader().Load()
}

// LoadWithServiceDefaults подставляет имя и порт сервиса, если они не заданы явно
func LoadWithServiceDefaults(serviceName string, port int) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	if cfg.GRPC.Port == defaultPort && port != 0 {
		cfg.GRPC.Port = port
	}

	if cfg.App.Name == defaultAppName {
		cfg.App.Name = serviceName
	}

	return cfg, nil
}
