package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/accesskeeper/internal/access"
	"github.com/dmitrijs2005/accesskeeper/internal/biometry"
	"github.com/dmitrijs2005/accesskeeper/internal/cryptox"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverS3       = "s3"
)

// Config holds runtime settings for the accesskeeper binary.
//
// Fields:
//   - StorageDriver / DatabaseDSN: where user records live.
//   - SessionDuration / MaxFailedAttempts / BlockDuration: the lockout policy.
//   - Hasher / HasherSalt: how passwords are digested. Changing either makes
//     existing digests unverifiable.
//   - BiometryModality: which sensor the console device pretends to have.
//   - S3*: object storage settings, used when StorageDriver is "s3".
type Config struct {
	StorageDriver     string
	DatabaseDSN       string
	SessionDuration   time.Duration
	MaxFailedAttempts int
	BlockDuration     time.Duration
	Hasher            string
	HasherSalt        string
	BiometryModality  string
	LogLevel          string
	S3Bucket          string
	S3Region          string
	S3BaseEndpoint    string
	S3AccessKey       string
	S3SecretKey       string
	S3Prefix          string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.StorageDriver = DriverSQLite
	c.DatabaseDSN = "accesskeeper.db"
	c.SessionDuration = 10 * time.Minute
	c.MaxFailedAttempts = 3
	c.BlockDuration = 30 * time.Second
	c.Hasher = cryptox.HasherSHA256
	c.HasherSalt = ""
	c.BiometryModality = biometry.ModalityNone.String()
	c.LogLevel = "info"
	c.S3Bucket = "accesskeeper"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.S3AccessKey = "admin"
	c.S3SecretKey = "secretpassword"
	c.S3Prefix = "users/"
}

// Policy returns the lockout policy described by c.
func (c *Config) Policy() (access.Policy, error) {
	return access.NewPolicy(c.SessionDuration, c.MaxFailedAttempts, c.BlockDuration)
}

// Validate checks the enumerated settings and the policy.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case DriverMemory, DriverSQLite, DriverPostgres, DriverS3:
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
	if _, err := cryptox.NewHasher(c.Hasher, c.HasherSalt); err != nil {
		return err
	}
	if _, err := biometry.ParseModality(c.BiometryModality); err != nil {
		return err
	}
	if _, err := c.Policy(); err != nil {
		return err
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	return loadConfig(os.Args[1:])
}

func loadConfig(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
