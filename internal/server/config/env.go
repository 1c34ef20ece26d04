package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment variable, e.g. HIRELEDGER_GRPC_ADDR.
const EnvPrefix = "hireledger"

// parseEnv overlays HIRELEDGER_* variables. Unset variables leave the field
// untouched.
func parseEnv(config *Config) error {
	if err := envconfig.Process(EnvPrefix, config); err != nil {
		return fmt.Errorf("error processing environment: %w", err)
	}
	return nil
}
