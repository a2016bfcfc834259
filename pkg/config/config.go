// pkg/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config - главная структура конфигурации
type Config struct {
	App        AppConfig        `koanf:"app"`
	GRPC       GRPCConfig       `koanf:"grpc"`
	HTTP       HTTPConfig       `koanf:"http"`
	Log        LogConfig        `koanf:"log"`
	Metrics    MetricsConfig    `koanf:"metrics"`
	Tracing    TracingConfig    `koanf:"tracing"`
	Services   ServicesConfig   `koanf:"services"`
	Database   DatabaseConfig   `koanf:"database"`
	Cache      CacheConfig      `koanf:"cache"`
	Events     EventsConfig     `koanf:"events"`
	Notify     NotifyConfig     `koanf:"notify"`
	Allocation AllocationConfig `koanf:"allocation"`
	Seed       SeedConfig       `koanf:"seed"`
	Export     ExportConfig     `koanf:"export"`
	Retry      RetryConfig      `koanf:"retry"`
}

// AppConfig - общие настройки приложения
type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"` // development, staging, production
	Debug       bool   `koanf:"debug"`
}

// GRPCConfig - настройки gRPC сервера
type GRPCConfig struct {
	Port              int             `koanf:"port"`
	MaxRecvMsgSize    int             `koanf:"max_recv_msg_size"` // bytes
	MaxSendMsgSize    int             `koanf:"max_send_msg_size"` // bytes
	MaxConcurrentConn int             `koanf:"max_concurrent_conn"`
	KeepAlive         KeepAliveConfig `koanf:"keepalive"`
}

// KeepAliveConfig - настройки keep-alive
type KeepAliveConfig struct {
	MaxConnectionIdle     time.Duration `koanf:"max_connection_idle"`
	MaxConnectionAge      time.Duration `koanf:"max_connection_age"`
	MaxConnectionAgeGrace time.Duration `koanf:"max_connection_age_grace"`
	Time                  time.Duration `koanf:"time"`
	Timeout               time.Duration `koanf:"timeout"`
}

// HTTPConfig - настройки HTTP шлюза (connect)
type HTTPConfig struct {
	Enabled         bool            `koanf:"enabled"`
	Port            int             `koanf:"port"`
	ReadTimeout     time.Duration   `koanf:"read_timeout"`
	WriteTimeout    time.Duration   `koanf:"write_timeout"`
	ShutdownTimeout time.Duration   `koanf:"shutdown_timeout"`
	CORS            CORSConfig      `koanf:"cors"`
	RateLimit       RateLimitConfig `koanf:"rate_limit"`
	Docs            bool            `koanf:"docs"` // Swagger UI на /docs
}

// RateLimitConfig - ограничение частоты вызовов шлюза на клиента
type RateLimitConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Backend  string        `koanf:"backend"` // memory, redis (адрес из cache)
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
	// TrustForwarded берёт адрес клиента из X-Forwarded-For
	TrustForwarded bool `koanf:"trust_forwarded"`
}

// CORSConfig - настройки CORS для браузерных клиентов Connect
type CORSConfig struct {
	Enabled          bool     `koanf:"enabled"`
	AllowedOrigins   []string `koanf:"allowed_origins"`
	AllowedMethods   []string `koanf:"allowed_methods"`
	AllowedHeaders   []string `koanf:"allowed_headers"`
	ExposedHeaders   []string `koanf:"exposed_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age"`
}

// LogConfig - настройки логирования
type LogConfig struct {
	Level      string `koanf:"level"`       // debug, info, warn, error
	Format     string `koanf:"format"`      // json, text
	Output     string `koanf:"output"`      // stdout, stderr, file, discard
	FilePath   string `koanf:"file_path"`   // путь к файлу логов
	MaxSize    int    `koanf:"max_size"`    // MB
	MaxBackups int    `koanf:"max_backups"` // количество бэкапов
	MaxAge     int    `koanf:"max_age"`     // дней
	Compress   bool   `koanf:"compress"`
}

// MetricsConfig - настройки Prometheus метрик
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Port      int    `koanf:"port"`
	Path      string `koanf:"path"`
	Namespace string `koanf:"namespace"`
	Subsystem string `koanf:"subsystem"`
}

// TracingConfig - настройки OpenTelemetry
type TracingConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// ServicesConfig - адреса сервисов для клиентов
type ServicesConfig struct {
	Matching ServiceEndpoint `koanf:"matching"`
}

// ServiceEndpoint - конфигурация подключения к сервису
type ServiceEndpoint struct {
	Host          string        `koanf:"host"`
	Port          int           `koanf:"port"`
	Timeout       time.Duration `koanf:"timeout"`
	MaxRetries    int           `koanf:"max_retries"`
	RetryBackoff  time.Duration `koanf:"retry_backoff"`
	LoadBalancing string        `koanf:"load_balancing"` // round_robin, pick_first
}

// Address возвращает полный адрес сервиса
func (s ServiceEndpoint) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig - настройки хранилища истории
type DatabaseConfig struct {
	Driver          string        `koanf:"driver"` // memory, postgres, sqlite
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Database        string        `koanf:"database"`
	Username        string        `koanf:"username"`
	Password        string        `koanf:"password"`
	SSLMode         string        `koanf:"ssl_mode"`
	Path            string        `koanf:"path"` // файл sqlite
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
	MigrateOnStart  bool          `koanf:"migrate_on_start"`
}

// DSN возвращает строку подключения
func (d DatabaseConfig) DSN() string {
	switch strings.ToLower(d.Driver) {
	case "postgres", "postgresql":
		return fmt.Sprintf(
			"postgres://%s:%s@%s:%d/%s?sslmode=%s",
			d.Username, d.Password, d.Host, d.Port, d.Database, d.SSLMode,
		)
	case "sqlite":
		if d.Path == "" {
			return ":memory:"
		}
		return d.Path
	default:
		return ""
	}
}

// CacheConfig - настройки кэша превью ранжирования
type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	Driver     string        `koanf:"driver"` // redis, memory
	Host       string        `koanf:"host"`
	Port       int           `koanf:"port"`
	Password   string        `koanf:"password"`
	DB         int           `koanf:"db"`
	DefaultTTL time.Duration `koanf:"default_ttl"`
	MaxEntries int           `koanf:"max_entries"` // для in-memory
}

// Address возвращает адрес кэша
func (c CacheConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// EventsConfig - очередь событий после коммита
type EventsConfig struct {
	BufferSize     int           `koanf:"buffer_size"`
	Workers        int           `koanf:"workers"`
	HandlerTimeout time.Duration `koanf:"handler_timeout"`
	DrainTimeout   time.Duration `koanf:"drain_timeout"`
}

// NotifyConfig - канал оповещения доноров
type NotifyConfig struct {
	Driver  string `koanf:"driver"` // log, redis
	Channel string `koanf:"channel"`
}

// AllocationConfig - политика выдачи из банка
type AllocationConfig struct {
	EmergencyDrawsReserve bool `koanf:"emergency_draws_reserve"`
}

// SeedConfig - загрузка демонстрационных данных
type SeedConfig struct {
	Enabled bool `koanf:"enabled"`
}

// ExportConfig - выгрузка xlsx
type ExportConfig struct {
	Dir string `koanf:"dir"`
}

// RetryConfig конфигурация retry
type RetryConfig struct {
	MaxAttempts       int           `koanf:"max_attempts"`
	InitialBackoff    time.Duration `koanf:"initial_backoff"`
	MaxBackoff        time.Duration `koanf:"max_backoff"`
	BackoffMultiplier float64       `koanf:"backoff_multiplier"`
}

// Validate проверяет конфигурацию
func (c *Config) Validate() error {
	var errs []string

	if c.App.Name == "" {
		errs = append(errs, "app.name is required")
	}

	if c.GRPC.Port <= 0 || c.GRPC.Port > 65535 {
		errs = append(errs, fmt.Sprintf("grpc.port must be between 1 and 65535, got %d", c.GRPC.Port))
	}

	if c.HTTP.Enabled && (c.HTTP.Port <= 0 || c.HTTP.Port > 65535) {
		errs = append(errs, fmt.Sprintf("http.port must be between 1 and 65535, got %d", c.HTTP.Port))
	}

	if c.HTTP.RateLimit.Enabled {
		switch c.HTTP.RateLimit.Backend {
		case "memory", "redis":
		default:
			errs = append(errs, fmt.Sprintf("http.rate_limit.backend must be one of: memory, redis, got %s", c.HTTP.RateLimit.Backend))
		}
		if c.HTTP.RateLimit.Requests <= 0 || c.HTTP.RateLimit.Window <= 0 {
			errs = append(errs, "http.rate_limit.requests and http.rate_limit.window must be positive")
		}
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("log.level must be one of: debug, info, warn, error, got %s", c.Log.Level))
	}

	switch strings.ToLower(c.Database.Driver) {
	case "", "memory", "postgres", "postgresql", "sqlite":
	default:
		errs = append(errs, fmt.Sprintf("database.driver must be one of: memory, postgres, sqlite, got %s", c.Database.Driver))
	}

	if c.Cache.Enabled {
		switch c.Cache.Driver {
		case "memory", "redis":
		default:
			errs = append(errs, fmt.Sprintf("cache.driver must be one of: memory, redis, got %s", c.Cache.Driver))
		}
	}

	switch c.Notify.Driver {
	case "", "log":
	case "redis":
		if c.Notify.Channel == "" {
			errs = append(errs, "notify.channel is required for the redis driver")
		}
	default:
		errs = append(errs, fmt.Sprintf("notify.driver must be one of: log, redis, got %s", c.Notify.Driver))
	}

	if c.Events.BufferSize < 0 {
		errs = append(errs, "events.buffer_size must be non-negative")
	}
	if c.Events.Workers < 0 {
		errs = append(errs, "events.workers must be non-negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}

// IsDevelopment проверяет режим разработки
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "dev"
}

// IsProduction проверяет продакшн режим
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production" || c.App.Environment == "prod"
}
