package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	JWT     JWTConfig
	S3      S3Config
	Email   EmailConfig
	Log     LogConfig
	CORS    CORSConfig
	Company CompanyConfig
	Tax     TaxConfig
	Jobs    JobsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
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

// JWTConfig holds JWT verification settings. Tokens are issued by the CRM's
// identity service; this service only validates them.
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// S3Config holds settings for the invoice PDF archive.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CompanyConfig is the issuing company's letterhead. StateCode decides
// whether a supply is intra-state.
type CompanyConfig struct {
	Name             string `mapstructure:"name"`
	Address          string `mapstructure:"address"`
	StateCode        string `mapstructure:"state_code"`
	GSTIN            string `mapstructure:"gstin"`
	PAN              string `mapstructure:"pan"`
	Email            string `mapstructure:"email"`
	Phone            string `mapstructure:"phone"`
	BankName         string `mapstructure:"bank_name"`
	BankAccount      string `mapstructure:"bank_account"`
	BankIFSC         string `mapstructure:"bank_ifsc"`
	BankBranch       string `mapstructure:"bank_branch"`
	PaymentTermsDays int    `mapstructure:"payment_terms_days"`
}

// TDS policies.
const (
	TDSPolicyInvoice   = "invoice"
	TDSPolicyStatutory = "statutory"
)

// TaxConfig selects how withholding is computed for non-client invoices.
type TaxConfig struct {
	TDSPolicy string `mapstructure:"tds_policy"`
}

// JobsConfig holds background scheduler settings.
type JobsConfig struct {
	OverdueEnabled  bool          `mapstructure:"overdue_enabled"`
	OverdueInterval time.Duration `mapstructure:"overdue_interval"`
}

// Load reads configuration from environment variables with the SUPERCRM_ prefix.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("SUPERCRM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "supercrm")
	v.SetDefault("db.password", "supercrm_secret")
	v.SetDefault("db.name", "supercrm")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.issuer", "supercrm")

	// S3 defaults
	v.SetDefault("s3.region", "ap-south-1")
	v.SetDefault("s3.bucket", "supercrm-invoices")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 604800)

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "ap-south-1")
	v.SetDefault("email.from_address", "billing@supercrm.in")
	v.SetDefault("email.from_name", "SUPER CRM Billing")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Company letterhead defaults
	v.SetDefault("company.name", "SUPER CRM Private Limited")
	v.SetDefault("company.address", "Bengaluru, Karnataka")
	v.SetDefault("company.state_code", "29")
	v.SetDefault("company.gstin", "")
	v.SetDefault("company.pan", "")
	v.SetDefault("company.email", "")
	v.SetDefault("company.phone", "")
	v.SetDefault("company.bank_name", "")
	v.SetDefault("company.bank_account", "")
	v.SetDefault("company.bank_ifsc", "")
	v.SetDefault("company.bank_branch", "")
	v.SetDefault("company.payment_terms_days", 30)

	v.SetDefault("tax.tds_policy", TDSPolicyInvoice)

	v.SetDefault("jobs.overdue_enabled", true)
	v.SetDefault("jobs.overdue_interval", "1h")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                "SUPERCRM_SERVER_PORT",
		"server.read_timeout":        "SUPERCRM_SERVER_READ_TIMEOUT",
		"server.write_timeout":       "SUPERCRM_SERVER_WRITE_TIMEOUT",
		"server.environment":         "SUPERCRM_SERVER_ENVIRONMENT",
		"db.host":                    "SUPERCRM_DB_HOST",
		"db.port":                    "SUPERCRM_DB_PORT",
		"db.user":                    "SUPERCRM_DB_USER",
		"db.password":                "SUPERCRM_DB_PASSWORD",
		"db.name":                    "SUPERCRM_DB_NAME",
		"db.sslmode":                 "SUPERCRM_DB_SSLMODE",
		"db.max_open":                "SUPERCRM_DB_MAX_OPEN",
		"db.max_idle":                "SUPERCRM_DB_MAX_IDLE",
		"jwt.secret":                 "SUPERCRM_JWT_SECRET",
		"jwt.issuer":                 "SUPERCRM_JWT_ISSUER",
		"s3.region":                  "SUPERCRM_S3_REGION",
		"s3.bucket":                  "SUPERCRM_S3_BUCKET",
		"s3.endpoint":                "SUPERCRM_S3_ENDPOINT",
		"s3.access_key":              "SUPERCRM_S3_ACCESS_KEY",
		"s3.secret_key":              "SUPERCRM_S3_SECRET_KEY",
		"s3.presign_expiry":          "SUPERCRM_S3_PRESIGN_EXPIRY",
		"email.provider":             "SUPERCRM_EMAIL_PROVIDER",
		"email.region":               "SUPERCRM_EMAIL_REGION",
		"email.from_address":         "SUPERCRM_EMAIL_FROM_ADDRESS",
		"email.from_name":            "SUPERCRM_EMAIL_FROM_NAME",
		"log.level":                  "SUPERCRM_LOG_LEVEL",
		"log.format":                 "SUPERCRM_LOG_FORMAT",
		"cors.allowed_origins":       "SUPERCRM_CORS_ALLOWED_ORIGINS",
		"company.name":               "SUPERCRM_COMPANY_NAME",
		"company.address":            "SUPERCRM_COMPANY_ADDRESS",
		"company.state_code":         "SUPERCRM_COMPANY_STATE_CODE",
		"company.gstin":              "SUPERCRM_COMPANY_GSTIN",
		"company.pan":                "SUPERCRM_COMPANY_PAN",
		"company.email":              "SUPERCRM_COMPANY_EMAIL",
		"company.phone":              "SUPERCRM_COMPANY_PHONE",
		"company.bank_name":          "SUPERCRM_COMPANY_BANK_NAME",
		"company.bank_account":       "SUPERCRM_COMPANY_BANK_ACCOUNT",
		"company.bank_ifsc":          "SUPERCRM_COMPANY_BANK_IFSC",
		"company.bank_branch":        "SUPERCRM_COMPANY_BANK_BRANCH",
		"company.payment_terms_days": "SUPERCRM_COMPANY_PAYMENT_TERMS_DAYS",
		"tax.tds_policy":             "SUPERCRM_TAX_TDS_POLICY",
		"jobs.overdue_enabled":       "SUPERCRM_JOBS_OVERDUE_ENABLED",
		"jobs.overdue_interval":      "SUPERCRM_JOBS_OVERDUE_INTERVAL",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if SUPERCRM_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("SUPERCRM_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
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
	cfg.JWT = JWTConfig{
		Secret: v.GetString("jwt.secret"),
		Issuer: v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	cfg.Company = CompanyConfig{
		Name:             v.GetString("company.name"),
		Address:          v.GetString("company.address"),
		StateCode:        v.GetString("company.state_code"),
		GSTIN:            v.GetString("company.gstin"),
		PAN:              v.GetString("company.pan"),
		Email:            v.GetString("company.email"),
		Phone:            v.GetString("company.phone"),
		BankName:         v.GetString("company.bank_name"),
		BankAccount:      v.GetString("company.bank_account"),
		BankIFSC:         v.GetString("company.bank_ifsc"),
		BankBranch:       v.GetString("company.bank_branch"),
		PaymentTermsDays: v.GetInt("company.payment_terms_days"),
	}

	cfg.Tax = TaxConfig{TDSPolicy: strings.ToLower(v.GetString("tax.tds_policy"))}
	if cfg.Tax.TDSPolicy != TDSPolicyInvoice && cfg.Tax.TDSPolicy != TDSPolicyStatutory {
		return nil, fmt.Errorf("invalid tax.tds_policy %q: want %q or %q", cfg.Tax.TDSPolicy, TDSPolicyInvoice, TDSPolicyStatutory)
	}

	cfg.Jobs = JobsConfig{
		OverdueEnabled:  v.GetBool("jobs.overdue_enabled"),
		OverdueInterval: v.GetDuration("jobs.overdue_interval"),
	}

	return cfg, nil
}
