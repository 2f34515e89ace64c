package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/accesskeeper/internal/flagx"
	"github.com/dmitrijs2005/accesskeeper/internal/timex"
)

// JsonConfig is the on-disk shape of Config. Durations use timex.Duration so
// both "30s" and integer nanoseconds are accepted.
type JsonConfig struct {
	StorageDriver     string         `json:"storage_driver"`
	DatabaseDSN       string         `json:"database_dsn"`
	SessionDuration   timex.Duration `json:"session_duration"`
	MaxFailedAttempts int            `json:"max_failed_attempts"`
	BlockDuration     timex.Duration `json:"block_duration"`
	Hasher            string         `json:"hasher"`
	HasherSalt        string         `json:"hasher_salt"`
	BiometryModality  string         `json:"biometry"`
	LogLevel          string         `json:"log_level"`
	S3Bucket          string         `json:"s3_bucket"`
	S3Region          string         `json:"s3_region"`
	S3BaseEndpoint    string         `json:"s3_base_endpoint"`
	S3AccessKey       string         `json:"s3_access_key"`
	S3SecretKey       string         `json:"s3_secret_key"`
	S3Prefix          string         `json:"s3_prefix"`
}

// parseJson overlays the JSON file named by -c/-config onto config. The file
// is decoded on top of the current values, so absent keys are left alone.
// An unreadable or malformed file panics.
func parseJson(config *Config, args []string) {
	jsonConfigFile := flagx.JsonConfigFlags(args)

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := toJson(config)
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.StorageDriver = c.StorageDriver
	config.DatabaseDSN = c.DatabaseDSN
	config.SessionDuration = c.SessionDuration.Duration
	config.MaxFailedAttempts = c.MaxFailedAttempts
	config.BlockDuration = c.BlockDuration.Duration
	config.Hasher = c.Hasher
	config.HasherSalt = c.HasherSalt
	config.BiometryModality = c.BiometryModality
	config.LogLevel = c.LogLevel
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.S3AccessKey = c.S3AccessKey
	config.S3SecretKey = c.S3SecretKey
	config.S3Prefix = c.S3Prefix
}

func toJson(config *Config) *JsonConfig {
	return &JsonConfig{
		StorageDriver:     config.StorageDriver,
		DatabaseDSN:       config.DatabaseDSN,
		SessionDuration:   timex.Duration{Duration: config.SessionDuration},
		MaxFailedAttempts: config.MaxFailedAttempts,
		BlockDuration:     timex.Duration{Duration: config.BlockDuration},
		Hasher:            config.Hasher,
		HasherSalt:        config.HasherSalt,
		BiometryModality:  config.BiometryModality,
		LogLevel:          config.LogLevel,
		S3Bucket:          config.S3Bucket,
		S3Region:          config.S3Region,
		S3BaseEndpoint:    config.S3BaseEndpoint,
		S3AccessKey:       config.S3AccessKey,
		S3SecretKey:       config.S3SecretKey,
		S3Prefix:          config.S3Prefix,
	}
}
