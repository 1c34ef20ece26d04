package config

import (
	"flag"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/hireledger/internal/flagx"
)

var serverFlags = []string{
	"-a", "-m", "-d", "-s", "-t", "-l", "-k", "-o", "-v",
	"-u", "-p", "-b", "-g", "-e", "-L",
}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-m string   admin HTTP bind address (e.g., ":9090")
//	-d string   PostgreSQL DSN; empty runs on the in-memory store
//	-s string   access token HMAC secret
//	-t int      access token validity, minutes
//	-l string   ledger attestation secret
//	-k string   badger data directory
//	-o string   owner subject
//	-v bool     require every application to verify (use -v=true)
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint
//	-L string   log level
//
// os.Args is first filtered with flagx.FilterArgs so the config file flags
// do not collide.
func parseFlags(config *Config) error {
	args := flagx.FilterArgs(os.Args[1:], serverFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run gRPC server")
	fs.StringVar(&config.EndpointAddrAdmin, "m", config.EndpointAddrAdmin, "address and port to run admin server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")

	fs.StringVar(&config.LedgerSecret, "l", config.LedgerSecret, "ledger secret")
	fs.StringVar(&config.DataDir, "k", config.DataDir, "data directory")
	fs.StringVar(&config.OwnerSubject, "o", config.OwnerSubject, "owner subject")
	fs.BoolVar(&config.RequireAllVerified, "v", config.RequireAllVerified, "require all applications to verify")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.LogLevel, "L", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// only an explicit -t overrides, so sub-minute values from a file survive
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
		}
	})
	return nil
}
