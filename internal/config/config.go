package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	DB          DBConfig
	JWT         JWTConfig
	S3          S3Config
	Log         LogConfig
	CORS        CORSConfig
	Email       EmailConfig
	Takeoff     TakeoffConfig
	Pricing     PricingConfig
	Quotes      QuotesConfig
	Calibration CalibrationConfig
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

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret            string        `mapstructure:"secret"`
	AccessTokenExpiry time.Duration `mapstructure:"access_expiry"`
	Issuer            string        `mapstructure:"issuer"`
}

// S3Config holds AWS S3 settings for plan and quote storage.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
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

// EmailConfig holds email delivery settings for estimate hand-offs.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
}

// TakeoffConfig holds plan takeoff settings.
type TakeoffConfig struct {
	MaxPages         int    `mapstructure:"max_pages"`
	FixtureRulesPath string `mapstructure:"fixture_rules_path"`
	AssembliesPath   string `mapstructure:"assemblies_path"`
	ProjectType      string `mapstructure:"project_type"`
}

// PricingConfig holds pricing run settings.
type PricingConfig struct {
	PolicyPath      string `mapstructure:"policy_path"`
	UnitCostsPath   string `mapstructure:"unit_costs_path"`
	VendorCostsPath string `mapstructure:"vendor_costs_path"`
	DefaultRegion   string `mapstructure:"default_region"`
}

// QuotesConfig holds vendor quote parsing settings.
type QuotesConfig struct {
	VendorMapPath   string `mapstructure:"vendor_map_path"`
	VendorRulesPath string `mapstructure:"vendor_rules_path"`
	QuotesDir       string `mapstructure:"quotes_dir"`
}

// CalibrationConfig holds multiplier computation settings.
type CalibrationConfig struct {
	ClampMin    float64 `mapstructure:"clamp_min"`
	ClampMax    float64 `mapstructure:"clamp_max"`
	MinEstimate float64 `mapstructure:"min_estimate"`
}

// Load reads configuration from environment variables with the JCWEST_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("JCWEST")
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
	v.SetDefault("db.user", "jcwest")
	v.SetDefault("db.password", "jcwest_secret")
	v.SetDefault("db.name", "jcwest_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "12h")
	v.SetDefault("jwt.issuer", "jcwest")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "jcwest-plans")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 100)
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "estimates@jcwest.local")
	v.SetDefault("email.from_name", "JC West Estimating")

	// Takeoff defaults
	v.SetDefault("takeoff.max_pages", 3)
	v.SetDefault("takeoff.fixture_rules_path", "")
	v.SetDefault("takeoff.assemblies_path", "")
	v.SetDefault("takeoff.project_type", "residential")

	// Pricing defaults
	v.SetDefault("pricing.policy_path", "configs/policy.yaml")
	v.SetDefault("pricing.unit_costs_path", "")
	v.SetDefault("pricing.vendor_costs_path", "")
	v.SetDefault("pricing.default_region", "")

	// Quotes defaults
	v.SetDefault("quotes.vendor_map_path", "")
	v.SetDefault("quotes.vendor_rules_path", "")
	v.SetDefault("quotes.quotes_dir", "")

	// Calibration defaults (zero selects package defaults)
	v.SetDefault("calibration.clamp_min", 0.0)
	v.SetDefault("calibration.clamp_max", 0.0)
	v.SetDefault("calibration.min_estimate", 0.0)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                "JCWEST_SERVER_PORT",
		"server.read_timeout":        "JCWEST_SERVER_READ_TIMEOUT",
		"server.write_timeout":       "JCWEST_SERVER_WRITE_TIMEOUT",
		"server.environment":         "JCWEST_SERVER_ENVIRONMENT",
		"db.host":                    "JCWEST_DB_HOST",
		"db.port":                    "JCWEST_DB_PORT",
		"db.user":                    "JCWEST_DB_USER",
		"db.password":                "JCWEST_DB_PASSWORD",
		"db.name":                    "JCWEST_DB_NAME",
		"db.sslmode":                 "JCWEST_DB_SSLMODE",
		"db.max_open":                "JCWEST_DB_MAX_OPEN",
		"db.max_idle":                "JCWEST_DB_MAX_IDLE",
		"jwt.secret":                 "JCWEST_JWT_SECRET",
		"jwt.access_expiry":          "JCWEST_JWT_ACCESS_EXPIRY",
		"jwt.issuer":                 "JCWEST_JWT_ISSUER",
		"s3.region":                  "JCWEST_S3_REGION",
		"s3.bucket":                  "JCWEST_S3_BUCKET",
		"s3.endpoint":                "JCWEST_S3_ENDPOINT",
		"s3.access_key":              "JCWEST_S3_ACCESS_KEY",
		"s3.secret_key":              "JCWEST_S3_SECRET_KEY",
		"s3.max_file_size_mb":        "JCWEST_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":          "JCWEST_S3_PRESIGN_EXPIRY",
		"log.level":                  "JCWEST_LOG_LEVEL",
		"log.format":                 "JCWEST_LOG_FORMAT",
		"cors.allowed_origins":       "JCWEST_CORS_ALLOWED_ORIGINS",
		"email.provider":             "JCWEST_EMAIL_PROVIDER",
		"email.region":               "JCWEST_EMAIL_REGION",
		"email.from_address":         "JCWEST_EMAIL_FROM_ADDRESS",
		"email.from_name":            "JCWEST_EMAIL_FROM_NAME",
		"takeoff.max_pages":          "JCWEST_TAKEOFF_MAX_PAGES",
		"takeoff.fixture_rules_path": "JCWEST_TAKEOFF_FIXTURE_RULES_PATH",
		"takeoff.assemblies_path":    "JCWEST_TAKEOFF_ASSEMBLIES_PATH",
		"takeoff.project_type":       "JCWEST_TAKEOFF_PROJECT_TYPE",
		"pricing.policy_path":        "JCWEST_PRICING_POLICY_PATH",
		"pricing.unit_costs_path":    "JCWEST_PRICING_UNIT_COSTS_PATH",
		"pricing.vendor_costs_path":  "JCWEST_PRICING_VENDOR_COSTS_PATH",
		"pricing.default_region":     "JCWEST_PRICING_DEFAULT_REGION",
		"quotes.vendor_map_path":     "JCWEST_QUOTES_VENDOR_MAP_PATH",
		"quotes.vendor_rules_path":   "JCWEST_QUOTES_VENDOR_RULES_PATH",
		"quotes.quotes_dir":          "JCWEST_QUOTES_QUOTES_DIR",
		"calibration.clamp_min":      "JCWEST_CALIBRATION_CLAMP_MIN",
		"calibration.clamp_max":      "JCWEST_CALIBRATION_CLAMP_MAX",
		"calibration.min_estimate":   "JCWEST_CALIBRATION_MIN_ESTIMATE",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if JCWEST_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("JCWEST_SERVER_PORT") == "" {
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
		Secret:            v.GetString("jwt.secret"),
		AccessTokenExpiry: v.GetDuration("jwt.access_expiry"),
		Issuer:            v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
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
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}
	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
	}
	cfg.Takeoff = TakeoffConfig{
		MaxPages:         v.GetInt("takeoff.max_pages"),
		FixtureRulesPath: v.GetString("takeoff.fixture_rules_path"),
		AssembliesPath:   v.GetString("takeoff.assemblies_path"),
		ProjectType:      v.GetString("takeoff.project_type"),
	}
	cfg.Pricing = PricingConfig{
		PolicyPath:      v.GetString("pricing.policy_path"),
		UnitCostsPath:   v.GetString("pricing.unit_costs_path"),
		VendorCostsPath: v.GetString("pricing.vendor_costs_path"),
		DefaultRegion:   v.GetString("pricing.default_region"),
	}
	cfg.Quotes = QuotesConfig{
		VendorMapPath:   v.GetString("quotes.vendor_map_path"),
		VendorRulesPath: v.GetString("quotes.vendor_rules_path"),
		QuotesDir:       v.GetString("quotes.quotes_dir"),
	}
	cfg.Calibration = CalibrationConfig{
		ClampMin:    v.GetFloat64("calibration.clamp_min"),
		ClampMax:    v.GetFloat64("calibration.clamp_max"),
		MinEstimate: v.GetFloat64("calibration.min_estimate"),
	}

	return cfg, nil
}
