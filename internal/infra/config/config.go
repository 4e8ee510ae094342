package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	HTTPClient    HTTPClientConfig    `mapstructure:"http_client"`
	RateLimit     RateLimitConfig     `mapstructure:"rate_limit"`
	AccessControl AccessControlConfig `mapstructure:"access_control"`
	Auth          AuthConfig          `mapstructure:"auth"`
	CORS          CORSConfig          `mapstructure:"cors"`
	Log           LogConfig           `mapstructure:"log"`
	Metrics       MetricsConfig       `mapstructure:"metrics"`
	Webhook       WebhookConfig       `mapstructure:"webhook"`
	Gateways      []GatewayConfig     `mapstructure:"gateways"`
}

// AccessControlConfig holds privileged account configuration (admins/SRE).
type AccessControlConfig struct {
	AdminEmails  []string `mapstructure:"admin_emails"`
	SREEmails    []string `mapstructure:"sre_emails"`
	AdminUserIDs []string `mapstructure:"admin_user_ids"`
	SREUserIDs   []string `mapstructure:"sre_user_ids"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`

	// ShutdownTimeout bounds the drain of in-flight requests on SIGTERM.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN returns the database connection string.
func (c *DatabaseConfig) DSN() string {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Database, c.SSLMode,
	)
	if c.Password != "" {
		dsn += fmt.Sprintf(" password=%s", c.Password)
	}
	return dsn
}

// RedisConfig holds Redis configuration. An empty address disables Redis.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// HTTPClientConfig holds HTTP client configuration for connection pooling.
type HTTPClientConfig struct {
	MaxIdleConns        int           `mapstructure:"max_idle_conns"`
	MaxIdleConnsPerHost int           `mapstructure:"max_idle_conns_per_host"`
	MaxConnsPerHost     int           `mapstructure:"max_conns_per_host"`
	IdleConnTimeout     time.Duration `mapstructure:"idle_conn_timeout"`

	DialTimeout         time.Duration `mapstructure:"dial_timeout"`
	TLSHandshakeTimeout time.Duration `mapstructure:"tls_handshake_timeout"`
	ResponseTimeout     time.Duration `mapstructure:"response_timeout"`

	KeepAlive time.Duration `mapstructure:"keep_alive"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// CheckoutLimit is the checkout call budget per user per CheckoutWindow.
	CheckoutLimit  int           `mapstructure:"checkout_limit"`
	CheckoutWindow time.Duration `mapstructure:"checkout_window"`
	// WebhookLimit is the webhook delivery budget per source IP per WebhookWindow.
	WebhookLimit  int           `mapstructure:"webhook_limit"`
	WebhookWindow time.Duration `mapstructure:"webhook_window"`
	// IdempotencyTTL is how long Idempotency-Key responses are replayed.
	IdempotencyTTL time.Duration `mapstructure:"idempotency_ttl"`
}

// AuthConfig holds access-token validation configuration.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

// CORSConfig holds browser origin configuration for the checkout API.
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig holds Prometheus configuration.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Path      string `mapstructure:"path"`
}

// WebhookConfig holds webhook processing configuration shared by gateways.
type WebhookConfig struct {
	// LookupAttempts bounds the subscription lookup of a paid invoice.
	LookupAttempts int           `mapstructure:"lookup_attempts"`
	LookupDelay    time.Duration `mapstructure:"lookup_delay"`
	// DedupeTTL is how long processed event ids are remembered. Zero disables dedupe.
	DedupeTTL time.Duration `mapstructure:"dedupe_ttl"`
}

// GatewayConfig configures one payment gateway instance.
type GatewayConfig struct {
	ID                int64         `mapstructure:"id"`
	Name              string        `mapstructure:"name"`
	Variant           string        `mapstructure:"variant"` // intent, billing
	SecretKey         string        `mapstructure:"secret_key"`
	PublishableKey    string        `mapstructure:"publishable_key"`
	WebhookSecret     string        `mapstructure:"webhook_secret"`
	WebhookTolerance  time.Duration `mapstructure:"webhook_tolerance"`
	ReturnURL         string        `mapstructure:"return_url"`
	ChargeImmediately bool          `mapstructure:"charge_immediately"`
	APIURL            string        `mapstructure:"api_url"`
	MaxNetworkRetries int64         `mapstructure:"max_network_retries"`
	BreakerFailures   uint32        `mapstructure:"breaker_failures"`
	BreakerTimeout    time.Duration `mapstructure:"breaker_timeout"`
}

// Load loads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/paysync")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("PAYSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnvOverrides reads secrets that must not live in config files.
// Gateway secrets apply to the first configured gateway.
func applyEnvOverrides(cfg *Config) {
	if secret := os.Getenv("PAYSYNC_JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
	if password := os.Getenv("PAYSYNC_DB_PASSWORD"); password != "" {
		cfg.Database.Password = password
	}
	if password := os.Getenv("PAYSYNC_REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}
	if len(cfg.Gateways) > 0 {
		if key := os.Getenv("PAYSYNC_STRIPE_SECRET_KEY"); key != "" {
			cfg.Gateways[0].SecretKey = key
		}
		if secret := os.Getenv("PAYSYNC_STRIPE_WEBHOOK_SECRET"); secret != "" {
			cfg.Gateways[0].WebhookSecret = secret
		}
	}

	if s := os.Getenv("PAYSYNC_ADMIN_EMAILS"); s != "" {
		cfg.AccessControl.AdminEmails = parseCommaSeparatedList(s)
	}
	if s := os.Getenv("PAYSYNC_SRE_EMAILS"); s != "" {
		cfg.AccessControl.SREEmails = parseCommaSeparatedList(s)
	}
	if s := os.Getenv("PAYSYNC_ADMIN_USER_IDS"); s != "" {
		cfg.AccessControl.AdminUserIDs = parseCommaSeparatedList(s)
	}
	if s := os.Getenv("PAYSYNC_SRE_USER_IDS"); s != "" {
		cfg.AccessControl.SREUserIDs = parseCommaSeparatedList(s)
	}
}

// Validate checks the gateway list.
func (c *Config) Validate() error {
	seen := make(map[int64]bool, len(c.Gateways))
	for i := range c.Gateways {
		g := &c.Gateways[i]
		if g.ID <= 0 {
			return fmt.Errorf("gateways[%d]: id must be positive", i)
		}
		if seen[g.ID] {
			return fmt.Errorf("gateways[%d]: duplicate id %d", i, g.ID)
		}
		seen[g.ID] = true

		switch g.Variant {
		case "":
			g.Variant = "intent"
		case "intent", "billing":
		default:
			return fmt.Errorf("gateways[%d]: unknown variant %q", i, g.Variant)
		}
		if g.Name == "" {
			g.Name = fmt.Sprintf("stripe-%d", g.ID)
		}
	}
	return nil
}

// Gateway returns the configuration of the gateway with the given id.
func (c *Config) Gateway(id int64) (*GatewayConfig, bool) {
	for i := range c.Gateways {
		if c.Gateways[i].ID == id {
			return &c.Gateways[i], true
		}
	}
	return nil, false
}

func parseCommaSeparatedList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.database", "paysync")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.conn_max_idle_time", 30*time.Minute)
	v.SetDefault("database.auto_migrate", true)

	// Redis defaults
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.db", 0)

	// HTTP client defaults
	v.SetDefault("http_client.max_idle_conns", 100)
	v.SetDefault("http_client.max_idle_conns_per_host", 20)
	v.SetDefault("http_client.max_conns_per_host", 50)
	v.SetDefault("http_client.idle_conn_timeout", 90*time.Second)
	v.SetDefault("http_client.dial_timeout", 30*time.Second)
	v.SetDefault("http_client.tls_handshake_timeout", 10*time.Second)
	v.SetDefault("http_client.response_timeout", 80*time.Second)
	v.SetDefault("http_client.keep_alive", 30*time.Second)

	// Rate limit defaults
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.checkout_limit", 30)
	v.SetDefault("rate_limit.checkout_window", time.Minute)
	v.SetDefault("rate_limit.webhook_limit", 600)
	v.SetDefault("rate_limit.webhook_window", time.Minute)
	v.SetDefault("rate_limit.idempotency_ttl", 24*time.Hour)

	// Access control defaults
	v.SetDefault("access_control.admin_emails", []string{})
	v.SetDefault("access_control.sre_emails", []string{})
	v.SetDefault("access_control.admin_user_ids", []string{})
	v.SetDefault("access_control.sre_user_ids", []string{})

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", "paysync")
	v.SetDefault("metrics.path", "/metrics")

	// Webhook defaults
	v.SetDefault("webhook.lookup_attempts", 5)
	v.SetDefault("webhook.lookup_delay", time.Second)
	v.SetDefault("webhook.dedupe_ttl", 72*time.Hour)
}
