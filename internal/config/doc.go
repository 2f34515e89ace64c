// Package config loads runtime configuration for the accesskeeper binary.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//     Keys missing from the file keep their earlier value.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-s string          storage driver: memory, sqlite, postgres or s3
//	-d string          database DSN (sqlite file path or postgres URL)
//	-t duration        session duration, e.g. 10m
//	-m int             failed attempts allowed before a block
//	-k duration        block duration, e.g. 30s
//	-hasher string     sha256, argon2 or bcrypt
//	-salt string       argon2 salt
//	-biometry string   none, touchid or faceid
//	-l string          log level: debug, info, warn, error
//	-b string          S3 bucket
//	-g string          S3 region
//	-e string          S3 base endpoint
//	-u string          S3 access key
//	-p string          S3 secret key
//	-prefix string     S3 key prefix
//
// # JSON schema
//
// Durations use timex.Duration, so they may be strings like "30s" or integer
// nanoseconds:
//
//	{
//	  "storage_driver": "sqlite",
//	  "database_dsn": "accesskeeper.db",
//	  "session_duration": "10m",
//	  "max_failed_attempts": 3,
//	  "block_duration": "30s",
//	  "hasher": "argon2",
//	  "hasher_salt": "pepper",
//	  "biometry": "touchid",
//	  "log_level": "debug"
//	}
//
// This package does not read environment variables; use the JSON file or
// flags.
package config
