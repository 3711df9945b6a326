package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/junpakpark/productmanage/internal/logger"
	"github.com/junpakpark/productmanage/internal/repository/memory"
)

const (
	defaultListenAddr        = "localhost:8080"
	defaultLoggingLevel      = logger.LevelInfo
	defaultEnvironment       = logger.EnvProduction
	defaultAccessTokenTTL    = 5 * time.Minute
	defaultRefreshTokenTTL   = 14 * 24 * time.Hour
	defaultRevocationMaxSize = memory.DefaultMaxSize
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the service will be run
	ListenAddr string

	// Database to connect to
	DatabaseDSN string

	// Secret key to sign tokens, base64 or raw
	SecretKey string

	// Environment
	Environment string

	// Token lifetimes
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// How long refresh tokens are kept in revocation store
	// Zero means the refresh token TTL
	RevocationTTL time.Duration

	// Max entries of in-memory revocation store
	RevocationMaxSize int

	// Redis to keep refresh tokens in, in-memory store is used if empty
	RedisURL string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:          defaultLoggingLevel,
		ListenAddr:        defaultListenAddr,
		Environment:       defaultEnvironment,
		AccessTokenTTL:    defaultAccessTokenTTL,
		RefreshTokenTTL:   defaultRefreshTokenTTL,
		RevocationMaxSize: defaultRevocationMaxSize,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		return c.LoadEnv(func(key string) string {
			return envMap[key]
		})
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) error {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) error {
		return func(value string) error {
			if value != "" {
				*o = value
			}
			return nil
		}
	}
	setDuration := func(o *time.Duration) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			*o = d
			return nil
		}
	}
	setInt := func(o *int) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			n, err := strconv.Atoi(value)
			if err != nil {
				return err
			}
			*o = n
			return nil
		}
	}

	envMap := map[string]func(string) error{
		"RUN_ADDRESS":         setString(&c.ListenAddr),
		"DATABASE_URI":        setString(&c.DatabaseDSN),
		"SECRET_KEY":          setString(&c.SecretKey),
		"LOG_LEVEL":           setString(&c.LogLevel),
		"ENVIRONMENT":         setString(&c.Environment),
		"ACCESS_TOKEN_TTL":    setDuration(&c.AccessTokenTTL),
		"REFRESH_TOKEN_TTL":   setDuration(&c.RefreshTokenTTL),
		"REVOCATION_TTL":      setDuration(&c.RevocationTTL),
		"REVOCATION_MAX_SIZE": setInt(&c.RevocationMaxSize),
		"REDIS_URL":           setString(&c.RedisURL),
	}

	var errs []error
	for key, parseFn := range envMap {
		if err := parseFn(getenv(key)); err != nil {
			errs = append(errs, fmt.Errorf("invalid %s. Err: %w", key, err))
		}
	}

	return errors.Join(errs...)
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("productmanage", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.SecretKey, "secret-key", "s", c.SecretKey, "Secret key, base64 or raw")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")
	fs.DurationVar(&c.AccessTokenTTL, "access-ttl", c.AccessTokenTTL, "Access token lifetime")
	fs.DurationVar(&c.RefreshTokenTTL, "refresh-ttl", c.RefreshTokenTTL, "Refresh token lifetime")
	fs.DurationVar(&c.RevocationTTL, "revocation-ttl", c.RevocationTTL, "Revocation store retention, refresh token lifetime if zero")
	fs.IntVar(&c.RevocationMaxSize, "revocation-max-size", c.RevocationMaxSize, "Max entries of in-memory revocation store")
	fs.StringVar(&c.RedisURL, "redis", c.RedisURL, "Redis URL for revocation store, in-memory store if empty")

	return fs.Parse(args)
}

// Validate fills derived values and checks the config is usable
func (c *Config) Validate() error {
	if c.DatabaseDSN == "" {
		return errors.New("database DSN is required")
	}
	if c.SecretKey == "" {
		return errors.New("secret key is required")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return errors.New("token TTLs must be positive")
	}
	if c.AccessTokenTTL >= c.RefreshTokenTTL {
		return errors.New("access token TTL must be shorter than refresh token TTL")
	}

	if c.RevocationTTL == 0 {
		c.RevocationTTL = c.RefreshTokenTTL
	}
	if c.RevocationTTL < c.RefreshTokenTTL {
		return fmt.Errorf("revocation TTL %s is shorter than refresh token TTL %s, refresh tokens would be forgotten while valid", c.RevocationTTL, c.RefreshTokenTTL)
	}
	if c.RevocationMaxSize <= 0 {
		return errors.New("revocation store max size must be positive")
	}

	return nil
}
