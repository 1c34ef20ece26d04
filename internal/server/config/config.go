// Package config handles configuration for the server component: defaults,
// a JSON or YAML file overlay, HIRELEDGER_* environment variables and
// command-line flags, applied in that order.
package config

import (
	"errors"
	"time"
)

// Config holds runtime settings for the hireledger server.
//
// Fields:
//   - EndpointAddrGRPC: bind address for the public gRPC endpoint.
//   - EndpointAddrAdmin: bind address for /healthz and /metrics.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory store.
//   - SecretKey: HMAC secret for signing access tokens (HS256).
//   - LedgerSecret: HMAC secret for token attestations in the registry.
//   - DataDir: badger directory for the registry and the signal journal.
//     Empty keeps both in memory and is only valid without DatabaseDSN.
//   - OwnerSubject: subject under which advert tokens are minted.
//   - RequireAllVerified: verification needs every application to match
//     instead of just one.
//   - S3*: object storage used to presign escrow uploads; an empty bucket
//     disables presigning.
type Config struct {
	EndpointAddrGRPC            string        `envconfig:"GRPC_ADDR"`
	EndpointAddrAdmin           string        `envconfig:"ADMIN_ADDR"`
	DatabaseDSN                 string        `envconfig:"DATABASE_DSN"`
	SecretKey                   string        `envconfig:"SECRET_KEY"`
	AccessTokenValidityDuration time.Duration `envconfig:"ACCESS_TOKEN_TTL"`
	LedgerSecret                string        `envconfig:"LEDGER_SECRET"`
	DataDir                     string        `envconfig:"DATA_DIR"`
	OwnerSubject                string        `envconfig:"OWNER_SUBJECT"`
	RequireAllVerified          bool          `envconfig:"REQUIRE_ALL_VERIFIED"`
	S3RootUser                  string        `envconfig:"S3_ROOT_USER"`
	S3RootPassword              string        `envconfig:"S3_ROOT_PASSWORD"`
	S3Bucket                    string        `envconfig:"S3_BUCKET"`
	S3Region                    string        `envconfig:"S3_REGION"`
	S3BaseEndpoint              string        `envconfig:"S3_BASE_ENDPOINT"`
	LogLevel                    string        `envconfig:"LOG_LEVEL"`
}

// LoadDefaults populates Config with development defaults.
// NOTE: the secrets are insecure and must be overridden in production.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.EndpointAddrAdmin = ":9090"
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 15 * time.Minute
	c.LedgerSecret = "ledgerSecret"
	c.DataDir = ""
	c.OwnerSubject = "owner"
	c.RequireAllVerified = false
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = ""
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.LogLevel = "info"
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch {
	case c.EndpointAddrGRPC == "":
		return errors.New("grpc address is empty")
	case c.SecretKey == "":
		return errors.New("secret key is empty")
	case c.LedgerSecret == "":
		return errors.New("ledger secret is empty")
	case c.OwnerSubject == "":
		return errors.New("owner subject is empty")
	case c.AccessTokenValidityDuration <= 0:
		return errors.New("access token validity must be positive")
	case c.DatabaseDSN != "" && c.DataDir == "":
		// token ids in Postgres must outlive the process, so the registry must too
		return errors.New("data dir is required when a database is configured")
	}
	return nil
}

// PresignEnabled reports whether escrow upload presigning is configured.
func (c *Config) PresignEnabled() bool {
	return c.S3Bucket != ""
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional config file, the environment and finally command-line
// flags.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseFile(cfg); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
