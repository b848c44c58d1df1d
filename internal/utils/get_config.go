package utils

import (
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v2"
)

type Config struct {
	// Application
	AppEnv  string `yaml:"APP_ENV" env:"APP_ENV"`
	AppPort string `yaml:"APP_PORT" env:"APP_PORT"`
	AppURL  string `yaml:"APP_URL" env:"APP_URL"`

	// Database configuration
	DBUser     string `yaml:"DB_USER" env:"DB_USER"`
	DBName     string `yaml:"DB_NAME" env:"DB_NAME"`
	DBPassword string `yaml:"DB_PASSWORD" env:"DB_PASSWORD"`
	DBPort     string `yaml:"DB_PORT" env:"DB_PORT"`
	DBHost     string `yaml:"DB_HOST" env:"DB_HOST"`

	// JWT
	JWTSecret string        `yaml:"JWT_SECRET" env:"JWT_SECRET"`
	JWTTTL    time.Duration `yaml:"JWT_TTL" env:"JWT_TTL"`

	// Relationship ledger
	LedgerTransactional *bool         `yaml:"LEDGER_TRANSACTIONAL" env:"LEDGER_TRANSACTIONAL"`
	ReconcileInterval   time.Duration `yaml:"RECONCILE_INTERVAL" env:"RECONCILE_INTERVAL"`
	ReconcileGrace      time.Duration `yaml:"RECONCILE_GRACE" env:"RECONCILE_GRACE"`

	// Users allowed to call the admin routes. Empty disables them.
	AdminUserIDs []string `yaml:"ADMIN_USER_IDS" env:"ADMIN_USER_IDS" envSeparator:","`

	// Mailing configuration
	SMTPHost         string `yaml:"SMTP_HOST" env:"SMTP_HOST"`
	SMTPPort         string `yaml:"SMTP_PORT" env:"SMTP_PORT"`
	SMTPSenderName   string `yaml:"SMTP_SENDER_NAME" env:"SMTP_SENDER_NAME"`
	SMTPAuthEmail    string `yaml:"SMTP_AUTH_EMAIL" env:"SMTP_AUTH_EMAIL"`
	SMTPAuthPassword string `yaml:"SMTP_AUTH_PASSWORD" env:"SMTP_AUTH_PASSWORD"`

	// AWS S3 configuration
	AWSS3Bucket   string `yaml:"AWS_S3_BUCKET" env:"AWS_S3_BUCKET"`
	AWSS3Region   string `yaml:"AWS_S3_REGION" env:"AWS_S3_REGION"`
	AWSS3Endpoint string `yaml:"AWS_S3_ENDPOINT" env:"AWS_S3_ENDPOINT"`
	AWSAccessKey  string `yaml:"AWS_ACCESS_KEY" env:"AWS_ACCESS_KEY"`
	AWSSecretKey  string `yaml:"AWS_SECRET_KEY" env:"AWS_SECRET_KEY"`
}

var (
	config     Config
	configOnce sync.Once
)

func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config.yaml"
}

// LoadConfig reads config.yaml and then lets environment variables override
// individual keys. A missing file is not fatal; the environment alone may be
// enough.
func LoadConfig() {
	configOnce.Do(func() {
		config = loadConfig(configPath())
	})
}

func loadConfig(path string) Config {
	var cfg Config

	file, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Error reading YAML file: %s\n", err)
	} else if err := yaml.Unmarshal(file, &cfg); err != nil {
		log.Printf("Error parsing YAML file: %s\n", err)
	}

	if err := env.Parse(&cfg); err != nil {
		log.Printf("Error parsing environment: %s\n", err)
	}

	applyDefaults(&cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.AppEnv == "" {
		cfg.AppEnv = "production"
	}
	if cfg.AppPort == "" {
		cfg.AppPort = "3000"
	}
	if cfg.DBPort == "" {
		cfg.DBPort = "5432"
	}
	if cfg.JWTTTL == 0 {
		cfg.JWTTTL = 23 * time.Hour
	}
	if cfg.LedgerTransactional == nil {
		transactional := true
		cfg.LedgerTransactional = &transactional
	}
	if cfg.ReconcileInterval == 0 {
		cfg.ReconcileInterval = 10 * time.Minute
	}
	if cfg.ReconcileGrace == 0 {
		cfg.ReconcileGrace = time.Minute
	}
}

// Get returns the loaded configuration.
func Get() Config {
	LoadConfig()
	return config
}

func GetConfig(key string) string {
	LoadConfig()
	switch key {
	case "APP_ENV":
		return config.AppEnv
	case "APP_PORT":
		return config.AppPort
	case "APP_URL":
		return config.AppURL
	case "DB_USER":
		return config.DBUser
	case "DB_NAME":
		return config.DBName
	case "DB_PASSWORD":
		return config.DBPassword
	case "DB_PORT":
		return config.DBPort
	case "DB_HOST":
		return config.DBHost
	case "JWT_SECRET":
		return config.JWTSecret
	case "LEDGER_TRANSACTIONAL":
		return strconv.FormatBool(*config.LedgerTransactional)
	case "SMTP_HOST":
		return config.SMTPHost
	case "SMTP_PORT":
		return config.SMTPPort
	case "SMTP_SENDER_NAME":
		return config.SMTPSenderName
	case "SMTP_AUTH_EMAIL":
		return config.SMTPAuthEmail
	case "SMTP_AUTH_PASSWORD":
		return config.SMTPAuthPassword
	case "AWS_S3_BUCKET":
		return config.AWSS3Bucket
	case "AWS_S3_REGION":
		return config.AWSS3Region
	case "AWS_S3_ENDPOINT":
		return config.AWSS3Endpoint
	case "AWS_ACCESS_KEY":
		return config.AWSAccessKey
	case "AWS_SECRET_KEY":
		return config.AWSSecretKey
	default:
		return ""
	}
}
