package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Security      SecurityConfig      `mapstructure:"security"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Payment       PaymentConfig       `mapstructure:"payment"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Mail          MailConfig          `mapstructure:"mail"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port" env:"HTTP_PORT,default=8080"`
	BaseURL           string        `mapstructure:"base_url" env:"HTTP_BASE_URL"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" env:"HTTP_READ_HEADER_TIMEOUT,default=5s"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout" env:"HTTP_READ_TIMEOUT,default=30s"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout" env:"HTTP_IDLE_TIMEOUT,default=60s"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout" env:"HTTP_WRITE_TIMEOUT,default=60s"`
	MaxUploadBytes    int64         `mapstructure:"max_upload_bytes" env:"HTTP_MAX_UPLOAD_BYTES,default=104857600"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns" env:"DB_MAX_OPEN_CONNS,default=10"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" env:"DB_MAX_IDLE_CONNS,default=5"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME,default=30m"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" env:"DB_CONN_MAX_IDLE_TIME,default=5m"`
	Source          string        `mapstructure:"source" env:"DB_SOURCE"`
}

type SecurityConfig struct {
	JWTSecret           string        `mapstructure:"jwt_secret" env:"JWT_SECRET"`
	AccessTokenDuration time.Duration `mapstructure:"access_token_duration" env:"JWT_ACCESS_TOKEN_DURATION,default=1h"`
	BCryptCost          int           `mapstructure:"bcrypt_cost" env:"BCRYPT_COST,default=10"`
}

type StorageConfig struct {
	Bucket          string `mapstructure:"bucket" env:"AWS_STORAGE_BUCKET_NAME"`
	Region          string `mapstructure:"region" env:"AWS_S3_REGION_NAME"`
	AccessKeyID     string `mapstructure:"access_key_id" env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `mapstructure:"secret_access_key" env:"AWS_SECRET_ACCESS_KEY"`
	UploadFolder    string `mapstructure:"upload_folder" env:"UPLOAD_S3_FOLDER,default=uploads"`
}

type PaymentConfig struct {
	PublishableKey string `mapstructure:"publishable_key" env:"STRIPE_PUBLISHABLE_KEY"`
	SecretKey      string `mapstructure:"secret_key" env:"STRIPE_SECRET_KEY"`
	EndpointSecret string `mapstructure:"endpoint_secret" env:"STRIPE_ENDPOINT_SECRET"`
	Currency       string `mapstructure:"currency" env:"CURRENCY,default=usd"`
}

type RedisConfig struct {
	Addr      string        `mapstructure:"addr" env:"REDIS_ADDR"`
	Password  string        `mapstructure:"password" env:"REDIS_PASS"`
	DB        int           `mapstructure:"db" env:"REDIS_DATABASE,default=0"`
	ReplayTTL time.Duration `mapstructure:"replay_ttl" env:"WEBHOOK_REPLAY_TTL,default=72h"`
}

type MailConfig struct {
	Host     string `mapstructure:"host" env:"SMTP_HOST"`
	Port     int    `mapstructure:"port" env:"SMTP_PORT,default=587"`
	Username string `mapstructure:"username" env:"SMTP_USER"`
	Password string `mapstructure:"password" env:"SMTP_PASS"`
	From     string `mapstructure:"from" env:"EMAIL_FROM"`
}

type ObservabilityConfig struct {
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" env:"METRICS_ENABLED,default=true"`
	Path    string `mapstructure:"path" env:"METRICS_PATH,default=/metrics"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" env:"LOG_LEVEL,default=info"`
	Format string `mapstructure:"format" env:"LOG_FORMAT,default=json"`
}

// LoadConfigFromEnv reads an optional dotenv file and maps the process environment onto Config.
func LoadConfigFromEnv(dotenvPath string) (*Config, error) {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", dotenvPath, err)
		}
	}

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("failed to map environment onto config: %w", err)
	}
	return &cfg, nil
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if err := c.Storage.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("storage config: %v", err))
	}

	if err := c.Payment.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("payment config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.BaseURL != "" {
		if _, err := url.Parse(c.BaseURL); err != nil {
			return fmt.Errorf("invalid base_url %s: %w", c.BaseURL, err)
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.Source == "" {
		return errors.New("source is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *SecurityConfig) Validate() error {
	if len(c.JWTSecret) < 32 {
		return errors.New("jwt_secret must be at least 32 characters")
	}
	if c.BCryptCost != 0 && (c.BCryptCost < 4 || c.BCryptCost > 31) {
		return errors.New("bcrypt_cost must be between 4 and 31")
	}
	return nil
}

func (c *StorageConfig) Validate() error {
	if c.Bucket == "" {
		return errors.New("bucket is required")
	}
	if c.Region == "" {
		return errors.New("region is required")
	}
	return nil
}

func (c *PaymentConfig) Validate() error {
	if c.SecretKey == "" {
		return errors.New("secret_key is required")
	}
	if c.EndpointSecret == "" {
		return errors.New("endpoint_secret is required")
	}
	if c.Currency == "" {
		return errors.New("currency is required")
	}
	return nil
}

// MailEnabled reports whether receipts can be mailed.
func (c *MailConfig) MailEnabled() bool {
	return c.Host != "" && c.From != ""
}
