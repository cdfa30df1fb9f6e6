package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Auth    AuthConfig
	S3      S3Config
	Queue   QueueConfig
	Payment PaymentConfig
	Pricing PricingConfig
	Upload  UploadConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	RequestIDHeader string        `mapstructure:"request_id_header"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// AuthConfig holds settings of the external identity provider.
type AuthConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	GetUserPath string        `mapstructure:"get_user_path"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// S3Config holds object storage settings for uploaded report files.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// QueueConfig holds parse job queue settings.
type QueueConfig struct {
	Region   string `mapstructure:"region"`
	QueueURL string `mapstructure:"queue_url"`
	Endpoint string `mapstructure:"endpoint"`
}

// PaymentConfig holds YooKassa gateway settings.
type PaymentConfig struct {
	CreatePaymentURL string        `mapstructure:"create_payment_url"`
	ShopID           string        `mapstructure:"shop_id"`
	SecretKey        string        `mapstructure:"secret_key"`
	ReturnURL        string        `mapstructure:"return_url"`
	JWTKey           string        `mapstructure:"jwt_key"`
	VATCode          int           `mapstructure:"vat_code"`
	PaymentSubject   string        `mapstructure:"payment_subject"`
	PaymentMode      string        `mapstructure:"payment_mode"`
	ProductCode      string        `mapstructure:"product_code"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

// PricingConfig carries the raw strategy list; it is decoded and
// validated by the pricing package at startup.
type PricingConfig struct {
	StrategiesJSON string `mapstructure:"strategies_json"`
}

// UploadConfig holds report upload limits.
type UploadConfig struct {
	MaxFileSizeMB     int64 `mapstructure:"max_file_size_mb"`
	MaxFilenameLength int   `mapstructure:"max_filename_length"`
	MaxReportsPerUser int   `mapstructure:"max_reports_per_user"`
}

// defaultStrategiesJSON prices every report uploaded since launch with
// the linear calculator. Overridden in production via env.
const defaultStrategiesJSON = `[
	{"started_at": "2021-07-01T00:00:00Z", "calculator": "linear_with_min_threshold",
	 "params": {"min_threshold": "99", "row_price": "3.5"}}
]`

// Load reads configuration from environment variables with the REPORTS_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("REPORTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.request_id_header", "X-Request-Id")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "reports")
	v.SetDefault("db.password", "reports_secret")
	v.SetDefault("db.name", "reports_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// Auth service defaults
	v.SetDefault("auth.base_url", "http://localhost:8081")
	v.SetDefault("auth.get_user_path", "/users/me")
	v.SetDefault("auth.timeout", "5s")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "report-uploads")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")

	// Queue defaults
	v.SetDefault("queue.region", "us-east-1")
	v.SetDefault("queue.queue_url", "")
	v.SetDefault("queue.endpoint", "")

	// Payment defaults
	v.SetDefault("payment.create_payment_url", "https://api.yookassa.ru/v3/payments")
	v.SetDefault("payment.shop_id", "")
	v.SetDefault("payment.secret_key", "")
	v.SetDefault("payment.return_url", "http://localhost:3000/reports")
	v.SetDefault("payment.jwt_key", "change-me-in-production")
	v.SetDefault("payment.vat_code", 1)
	v.SetDefault("payment.payment_subject", "service")
	v.SetDefault("payment.payment_mode", "full_payment")
	v.SetDefault("payment.product_code", "report")
	v.SetDefault("payment.timeout", "10s")

	// Pricing defaults
	v.SetDefault("pricing.strategies_json", defaultStrategiesJSON)

	// Upload defaults
	v.SetDefault("upload.max_file_size_mb", 10)
	v.SetDefault("upload.max_filename_length", 128)
	v.SetDefault("upload.max_reports_per_user", 50)

	envBindings := map[string]string{
		"server.port":                 "REPORTS_SERVER_PORT",
		"server.read_timeout":         "REPORTS_SERVER_READ_TIMEOUT",
		"server.write_timeout":        "REPORTS_SERVER_WRITE_TIMEOUT",
		"server.request_id_header":    "REPORTS_SERVER_REQUEST_ID_HEADER",
		"db.host":                     "REPORTS_DB_HOST",
		"db.port":                     "REPORTS_DB_PORT",
		"db.user":                     "REPORTS_DB_USER",
		"db.password":                 "REPORTS_DB_PASSWORD",
		"db.name":                     "REPORTS_DB_NAME",
		"db.sslmode":                  "REPORTS_DB_SSLMODE",
		"db.max_open":                 "REPORTS_DB_MAX_OPEN",
		"db.max_idle":                 "REPORTS_DB_MAX_IDLE",
		"auth.base_url":               "REPORTS_AUTH_BASE_URL",
		"auth.get_user_path":          "REPORTS_AUTH_GET_USER_PATH",
		"auth.timeout":                "REPORTS_AUTH_TIMEOUT",
		"s3.region":                   "REPORTS_S3_REGION",
		"s3.bucket":                   "REPORTS_S3_BUCKET",
		"s3.endpoint":                 "REPORTS_S3_ENDPOINT",
		"s3.access_key":               "REPORTS_S3_ACCESS_KEY",
		"s3.secret_key":               "REPORTS_S3_SECRET_KEY",
		"queue.region":                "REPORTS_QUEUE_REGION",
		"queue.queue_url":             "REPORTS_QUEUE_QUEUE_URL",
		"queue.endpoint":              "REPORTS_QUEUE_ENDPOINT",
		"payment.create_payment_url":  "REPORTS_PAYMENT_CREATE_PAYMENT_URL",
		"payment.shop_id":             "REPORTS_PAYMENT_SHOP_ID",
		"payment.secret_key":          "REPORTS_PAYMENT_SECRET_KEY",
		"payment.return_url":          "REPORTS_PAYMENT_RETURN_URL",
		"payment.jwt_key":             "REPORTS_PAYMENT_JWT_KEY",
		"payment.vat_code":            "REPORTS_PAYMENT_VAT_CODE",
		"payment.payment_subject":     "REPORTS_PAYMENT_PAYMENT_SUBJECT",
		"payment.payment_mode":        "REPORTS_PAYMENT_PAYMENT_MODE",
		"payment.product_code":        "REPORTS_PAYMENT_PRODUCT_CODE",
		"payment.timeout":             "REPORTS_PAYMENT_TIMEOUT",
		"pricing.strategies_json":     "REPORTS_PRICING_STRATEGIES_JSON",
		"upload.max_file_size_mb":     "REPORTS_UPLOAD_MAX_FILE_SIZE_MB",
		"upload.max_filename_length":  "REPORTS_UPLOAD_MAX_FILENAME_LENGTH",
		"upload.max_reports_per_user": "REPORTS_UPLOAD_MAX_REPORTS_PER_USER",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}
	cfg.Server = ServerConfig{
		Port:            v.GetString("server.port"),
		ReadTimeout:     v.GetDuration("server.read_timeout"),
		WriteTimeout:    v.GetDuration("server.write_timeout"),
		RequestIDHeader: v.GetString("server.request_id_header"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Auth = AuthConfig{
		BaseURL:     v.GetString("auth.base_url"),
		GetUserPath: v.GetString("auth.get_user_path"),
		Timeout:     v.GetDuration("auth.timeout"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.Queue = QueueConfig{
		Region:   v.GetString("queue.region"),
		QueueURL: v.GetString("queue.queue_url"),
		Endpoint: v.GetString("queue.endpoint"),
	}
	cfg.Payment = PaymentConfig{
		CreatePaymentURL: v.GetString("payment.create_payment_url"),
		ShopID:           v.GetString("payment.shop_id"),
		SecretKey:        v.GetString("payment.secret_key"),
		ReturnURL:        v.GetString("payment.return_url"),
		JWTKey:           v.GetString("payment.jwt_key"),
		VATCode:          v.GetInt("payment.vat_code"),
		PaymentSubject:   v.GetString("payment.payment_subject"),
		PaymentMode:      v.GetString("payment.payment_mode"),
		ProductCode:      v.GetString("payment.product_code"),
		Timeout:          v.GetDuration("payment.timeout"),
	}
	cfg.Pricing = PricingConfig{
		StrategiesJSON: v.GetString("pricing.strategies_json"),
	}
	cfg.Upload = UploadConfig{
		MaxFileSizeMB:     v.GetInt64("upload.max_file_size_mb"),
		MaxFilenameLength: v.GetInt("upload.max_filename_length"),
		MaxReportsPerUser: v.GetInt("upload.max_reports_per_user"),
	}

	return cfg, nil
}
