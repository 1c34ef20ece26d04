package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/hireledger/internal/flagx"
	"github.com/dmitrijs2005/hireledger/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk form of the configuration. Durations accept both
// strings such as "15m" and integer nanoseconds. Pointers distinguish an
// absent key from a zero value, so a file only overrides what it names.
type FileConfig struct {
	EndpointAddrGRPC            *string         `json:"endpoint_addr_grpc"             yaml:"endpoint_addr_grpc"`
	EndpointAddrAdmin           *string         `json:"endpoint_addr_admin"            yaml:"endpoint_addr_admin"`
	DatabaseDSN                 *string         `json:"database_dsn"                   yaml:"database_dsn"`
	SecretKey                   *string         `json:"secret_key"                     yaml:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	LedgerSecret                *string         `json:"ledger_secret"                  yaml:"ledger_secret"`
	DataDir                     *string         `json:"data_dir"                       yaml:"data_dir"`
	OwnerSubject                *string         `json:"owner_subject"                  yaml:"owner_subject"`
	RequireAllVerified          *bool           `json:"require_all_verified"           yaml:"require_all_verified"`
	S3RootUser                  *string         `json:"s3_root_user"                   yaml:"s3_root_user"`
	S3RootPassword              *string         `json:"s3_root_password"               yaml:"s3_root_password"`
	S3Bucket                    *string         `json:"s3_bucket"                      yaml:"s3_bucket"`
	S3Region                    *string         `json:"s3_region"                      yaml:"s3_region"`
	S3BaseEndpoint              *string         `json:"s3_base_endpoint"               yaml:"s3_base_endpoint"`
	LogLevel                    *string         `json:"log_level"                      yaml:"log_level"`
}

// parseFile loads the file named by -c/-config, if any. Files ending in
// .yaml or .yml are read as YAML, anything else as JSON.
func parseFile(config *Config) error {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	c := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		err = json.Unmarshal(data, c)
	}
	if err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}

	c.apply(config)
	return nil
}

func (c *FileConfig) apply(config *Config) {
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.EndpointAddrAdmin, c.EndpointAddrAdmin)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	setString(&config.LedgerSecret, c.LedgerSecret)
	setString(&config.DataDir, c.DataDir)
	setString(&config.OwnerSubject, c.OwnerSubject)
	if c.RequireAllVerified != nil {
		config.RequireAllVerified = *c.RequireAllVerified
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.LogLevel, c.LogLevel)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
