package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":50051", c.EndpointAddrGRPC)
	assert.Equal(t, ":9090", c.EndpointAddrAdmin)
	assert.Equal(t, "", c.DatabaseDSN)
	assert.Equal(t, "secretKey", c.SecretKey)
	assert.Equal(t, 15*time.Minute, c.AccessTokenValidityDuration)
	assert.Equal(t, "ledgerSecret", c.LedgerSecret)
	assert.Equal(t, "owner", c.OwnerSubject)
	assert.False(t, c.RequireAllVerified)
	assert.False(t, c.PresignEnabled())
	assert.Equal(t, "info", c.LogLevel)
	require.NoError(t, c.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no grpc addr", func(c *Config) { c.EndpointAddrGRPC = "" }},
		{"no secret", func(c *Config) { c.SecretKey = "" }},
		{"no ledger secret", func(c *Config) { c.LedgerSecret = "" }},
		{"no owner", func(c *Config) { c.OwnerSubject = "" }},
		{"zero ttl", func(c *Config) { c.AccessTokenValidityDuration = 0 }},
		{"database without data dir", func(c *Config) { c.DatabaseDSN = "postgres://db" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestValidate_StorageCombinations(t *testing.T) {
	tests := []struct {
		name    string
		dsn     string
		dataDir string
		wantErr bool
	}{
		{"all in memory", "", "", false},
		{"badger on disk, repos in memory", "", "/var/lib/hireledger", false},
		{"both persistent", "postgres://db", "/var/lib/hireledger", false},
		{"postgres with in-memory registry", "postgres://db", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			c.DatabaseDSN = tt.dsn
			c.DataDir = tt.dataDir
			err := c.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "data dir")
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestLoadConfig_Precedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"endpoint_addr_grpc: file:1\nowner_subject: file-owner\ndata_dir: /tmp/file\n"), 0o600))

	t.Setenv("HIRELEDGER_OWNER_SUBJECT", "env-owner")
	t.Setenv("HIRELEDGER_DATA_DIR", "/tmp/env")

	os.Args = []string{"testbin", "-c", path, "-k", "/tmp/flag"}

	c, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "file:1", c.EndpointAddrGRPC)
	assert.Equal(t, "env-owner", c.OwnerSubject)
	assert.Equal(t, "/tmp/flag", c.DataDir)
	assert.Equal(t, ":9090", c.EndpointAddrAdmin)
}

func TestLoadConfig_Invalid(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin", "-s", ""}
	_, err := LoadConfig()
	require.Error(t, err)
}
