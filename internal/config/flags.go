package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/accesskeeper/internal/flagx"
)

var ownFlags = []string{
	"-s", "-d", "-t", "-m", "-k", "-hasher", "-salt", "-biometry", "-l",
	"-b", "-g", "-e", "-u", "-p", "-prefix",
}

// parseFlags overlays command-line flags onto config. Flags owned by other
// components are filtered out first; a malformed value panics.
func parseFlags(config *Config, args []string) {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.StorageDriver, "s", config.StorageDriver, "storage driver: memory, sqlite, postgres, s3")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.DurationVar(&config.SessionDuration, "t", config.SessionDuration, "session duration")
	fs.IntVar(&config.MaxFailedAttempts, "m", config.MaxFailedAttempts, "failed attempts allowed before a block")
	fs.DurationVar(&config.BlockDuration, "k", config.BlockDuration, "block duration")
	fs.StringVar(&config.Hasher, "hasher", config.Hasher, "password hasher: sha256, argon2, bcrypt")
	fs.StringVar(&config.HasherSalt, "salt", config.HasherSalt, "argon2 salt")
	fs.StringVar(&config.BiometryModality, "biometry", config.BiometryModality, "biometric sensor: none, touchid, faceid")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3AccessKey, "u", config.S3AccessKey, "S3 access key")
	fs.StringVar(&config.S3SecretKey, "p", config.S3SecretKey, "S3 secret key")
	fs.StringVar(&config.S3Prefix, "prefix", config.S3Prefix, "S3 key prefix")

	if err := fs.Parse(flagx.FilterArgs(args, ownFlags)); err != nil {
		panic(err)
	}
}
