package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppPort string
	// Environment is passed explicitly into components that behave
	// differently outside production; nothing reads it ambiently.
	Environment string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisPass string
	RedisDB   int

	IdempTTLSecs int
	// SweepInterval drives the passive expiry/maturity sweeps.
	SweepInterval time.Duration
	SweepBatch    int
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func Load() *Config {
	c := &Config{
		AppPort:     getenv("APP_PORT", "8080"),
		Environment: getenv("APP_ENV", "development"),
		MySQLHost:   getenv("MYSQL_HOST", "mysql"),
		MySQLPort:   getenv("MYSQL_PORT", "3306"),
		MySQLDB:     getenv("MYSQL_DB", "cryptolend"),
		MySQLUser:   getenv("MYSQL_USER", "cryptolend"),
		MySQLPass:   getenv("MYSQL_PASS", "cryptolend"),

		RedisAddr:     getenv("REDIS_ADDR", "redis:6379"),
		RedisPass:     os.Getenv("REDIS_PASSWORD"),
		IdempTTLSecs:  300,
		SweepInterval: time.Minute,
		SweepBatch:    100,
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RedisDB = n
		}
	}
	if v := os.Getenv("IDEMPOTENCY_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.IdempTTLSecs = n
		}
	}
	if v := os.Getenv("SWEEP_INTERVAL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.SweepInterval = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("SWEEP_BATCH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.SweepBatch = n
		}
	}
	return c
}

func (c *Config) Production() bool { return c.Environment == "production" }

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
