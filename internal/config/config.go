// Package config reads the service configuration from the environment and
// command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const defaultAddress = ":8080"

// Config holds every tunable of the API process.
type Config struct {
	Address string `env:"-"`
	Port    string `env:"API_PORT"`

	MongoURI      string `env:"MONGO_URI"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"healthref"`

	JWTSecret   string        `env:"JWT_SECRET"`
	JWTTTL      time.Duration `env:"JWT_TTL" envDefault:"24h"`
	CORSOrigins []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	OTPChannel     string        `env:"OTP_CHANNEL" envDefault:"console"`
	OTPTTL         time.Duration `env:"OTP_TTL" envDefault:"5m"`
	OTPMaxAttempts int           `env:"OTP_MAX_ATTEMPTS" envDefault:"5"`
	WAChatAPI      string        `env:"WACHAT_API"`
	WAChatToken    string        `env:"WACHAT_TOKEN"`

	SMTPHost   string `env:"SMTP_HOST"`
	SMTPPort   int    `env:"SMTP_PORT" envDefault:"465"`
	SMTPUser   string `env:"SMTP_USER"`
	SMTPPass   string `env:"SMTP_PASS"`
	SMTPSender string `env:"SMTP_SENDER"`

	AWSRegion          string `env:"AWS_REGION"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	AWSBucketName      string `env:"AWS_BUCKET_NAME"`
	UploadDir          string `env:"UPLOAD_DIR" envDefault:"uploads"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Parse reads the environment first and then the flags in args. A value
// set in the environment always wins over the matching flag.
func Parse(args []string) (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("api", flag.ContinueOnError)
	fs.StringVar(&cfg.Address, "a", "", "address and port for HTTP server")
	dbName := fs.String("db", "", "mongo database name")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if cfg.Port != "" {
		cfg.Address = ":" + strings.TrimPrefix(cfg.Port, ":")
	}
	if cfg.Address == "" {
		cfg.Address = defaultAddress
	}
	if *dbName != "" && !envSet("MONGO_DATABASE") {
		cfg.MongoDatabase = *dbName
	}

	return cfg, nil
}

// Validate reports settings the API cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.MongoURI == "" {
		errs = append(errs, errors.New("MONGO_URI is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	switch c.OTPChannel {
	case "console", "whatsapp", "email":
	default:
		errs = append(errs, fmt.Errorf("unknown OTP_CHANNEL %q", c.OTPChannel))
	}
	if c.OTPChannel == "whatsapp" && c.WAChatAPI == "" {
		errs = append(errs, errors.New("WACHAT_API is required for the whatsapp channel"))
	}
	if c.OTPChannel == "email" && c.SMTPHost == "" {
		errs = append(errs, errors.New("SMTP_HOST is required for the email channel"))
	}
	return errors.Join(errs...)
}

func envSet(key string) bool {
	_, ok := os.LookupEnv(key)
	return ok
}

// UseS3 reports whether uploads go to a bucket instead of the local disk.
func (c *Config) UseS3() bool {
	return c.AWSBucketName != "" && c.AWSRegion != ""
}
