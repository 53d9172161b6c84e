package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type HTTPServer struct {
	Addr string `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
}

type Database struct {
	Host            string        `yaml:"PG_HOST" env:"PG_HOST" env-default:"localhost"`
	Port            string        `yaml:"PG_PORT" env:"PG_PORT" env-default:"5432"`
	User            string        `yaml:"PG_USER" env:"PG_USER"`
	Password        string        `yaml:"PG_PASSWORD" env:"PG_PASSWORD"`
	Name            string        `yaml:"PG_DBNAME" env:"PG_DBNAME"`
	SSLMode         string        `yaml:"PG_SSLMODE" env:"PG_SSLMODE" env-default:"require"`
	MaxOpenConns    int           `yaml:"MAX_OPEN_CONNS" env:"PG_MAX_OPEN_CONNS" env-default:"10"`
	MaxIdleConns    int           `yaml:"MAX_IDLE_CONNS" env:"PG_MAX_IDLE_CONNS" env-default:"5"`
	ConnMaxLifetime time.Duration `yaml:"CONN_MAX_LIFETIME" env:"PG_CONN_MAX_LIFETIME" env-default:"30m"`
	ConnMaxIdleTime time.Duration `yaml:"CONN_MAX_IDLE_TIME" env:"PG_CONN_MAX_IDLE_TIME" env-default:"5m"`
}

type RedisConnect struct {
	Host     string `yaml:"REDIS_HOST" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"REDIS_PORT" env:"REDIS_PORT" env-default:"6379"`
	Username string `yaml:"REDIS_USER" env:"REDIS_USER"`
	Password string `yaml:"REDIS_PASSWORD" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"REDIS_DB" env:"REDIS_DB" env-default:"0"`
}

// RateConfig bounds how many invitation requests one user may send per cart in a window.
type RateConfig struct {
	MaxAttempts int64         `yaml:"MAX_ATTEMPTS" env:"MAX_ATTEMPTS" env-default:"10"`
	WindowSize  time.Duration `yaml:"WINDOW_SIZE" env:"WINDOW_SIZE" env-default:"1m"`
}

// Storefront points at the remote shared-cart backend.
type Storefront struct {
	BaseURL        string        `yaml:"BASE_URL" env:"STOREFRONT_BASE_URL" env-required:"true"`
	ServiceToken   string        `yaml:"SERVICE_TOKEN" env:"STOREFRONT_SERVICE_TOKEN"`
	Timeout        time.Duration `yaml:"TIMEOUT" env:"STOREFRONT_TIMEOUT" env-default:"10s"`
	BreakerTimeout time.Duration `yaml:"BREAKER_TIMEOUT" env:"STOREFRONT_BREAKER_TIMEOUT" env-default:"30s"`
	MaxFailures    uint32        `yaml:"BREAKER_MAX_FAILURES" env:"STOREFRONT_BREAKER_MAX_FAILURES" env-default:"5"`
}

type Checkout struct {
	ReconcileDelay   time.Duration `yaml:"reconcile_delay" env:"CHECKOUT_RECONCILE_DELAY" env-default:"1500ms"`
	ReconcileTimeout time.Duration `yaml:"reconcile_timeout" env:"CHECKOUT_RECONCILE_TIMEOUT" env-default:"10s"`
	PaymentMethods   []string      `yaml:"payment_methods" env:"CHECKOUT_PAYMENT_METHODS" env-default:"COD,VNPAY,STRIPE"`
}

type Stripe struct {
	WebhookSecret string `yaml:"STRIPE_WEBHOOK_SECRET" env:"STRIPE_WEBHOOK_SECRET" env-default:""`
}

type Security struct {
	JWTKey string `yaml:"JWT_KEY" env:"JWT_KEY" env-required:"true"`
}

type Otel struct {
	ServiceName      string  `yaml:"SERVICE_NAME" env:"OTEL_SERVICE_NAME" env-default:"shared-cart-service"`
	ExporterEndpoint string  `yaml:"EXPORTER_ENDPOINT" env:"OTEL_EXPORTER_ENDPOINT"`
	SamplerRatio     float64 `yaml:"SAMPLER_RATIO" env:"OTEL_SAMPLER_RATIO" env-default:"1.0"`
}

const (
	CacheBackendRedis    = "redis"
	CacheBackendPostgres = "postgres"
)

type CacheConfig struct {
	Backend     string        `yaml:"backend" env:"CACHE_BACKEND" env-default:"redis"`
	DefaultTTL  time.Duration `yaml:"default_ttl" env:"CACHE_DEFAULT_TTL" env-default:"5m"`
	SnapshotTTL time.Duration `yaml:"snapshot_ttl" env:"CACHE_SNAPSHOT_TTL" env-default:"720h"`
	ListTTL     time.Duration `yaml:"list_ttl" env:"CACHE_LIST_TTL" env-default:"30s"`
}

type Config struct {
	Env          string `yaml:"env" env:"ENV" env-required:"true"`
	HTTPServer   `yaml:"http_server"`
	Database     Database     `yaml:"database"`
	RedisConnect RedisConnect `yaml:"redis"`
	RateConfig   RateConfig   `yaml:"rateConfig"`
	Storefront   Storefront   `yaml:"storefront"`
	Checkout     Checkout     `yaml:"checkout"`
	Stripe       Stripe       `yaml:"stripe"`
	Security     Security     `yaml:"security"`
	Otel         Otel         `yaml:"otel"`
	Cache        CacheConfig  `yaml:"cache"`
}

func MustLoad() *Config {

	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {

		flags := flag.String("config", "", "gets the config flag value")

		flag.Parse()

		configPath = *flags

		if configPath == "" {
			log.Fatal("Config path is not set")
		}

	}

	cfg, err := LoadConfigFromPath(configPath)
	if err != nil {
		log.Fatalf("can not read config file: %s", err.Error())
	}

	return cfg

}

func LoadConfigFromPath(configPath string) (*Config, error) {

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if cfg.Cache.Backend != CacheBackendRedis && cfg.Cache.Backend != CacheBackendPostgres {
		return nil, fmt.Errorf("unsupported cache backend %q", cfg.Cache.Backend)
	}

	return &cfg, nil
}

func (d *Database) GetDSN() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

func (r *RedisConnect) GetDSN() string {
	if r.Username == "" && r.Password == "" {
		return fmt.Sprintf("redis://%s:%s", r.Host, r.Port)
	}

	return fmt.Sprintf("redis://%s:%s@%s:%s", r.Username, r.Password, r.Host, r.Port)
}

// IsPaymentMethodAllowed reports whether method is one of the configured checkout methods.
func (c *Checkout) IsPaymentMethodAllowed(method string) bool {
	for _, m := range c.PaymentMethods {
		if m == method {
			return true
		}
	}

	return false
}
