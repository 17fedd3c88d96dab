/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/suparena/recordstore/datastore/ddb"
	"github.com/suparena/recordstore/logger"
	"github.com/suparena/recordstore/storagemodels"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config is the service configuration.
type Config struct {
	HTTPBindAddress string

	AWSRegion        string
	AWSAccessKey     string
	AWSSecretKey     string
	DynamoDBEndpoint string

	LogLevel  zapcore.Level
	LogFormat string

	BatchMaxRetries   int
	BatchRetryBackoff time.Duration
	AsyncConcurrency  int

	// TablesFile is a YAML file of table definitions. Empty means the
	// schemas registered by the model package.
	TablesFile string
}

// NewConfig returns a Config with defaults.
func NewConfig() *Config {
	return &Config{
		HTTPBindAddress:   ":8080",
		AWSRegion:         "us-east-1",
		LogLevel:          zapcore.InfoLevel,
		LogFormat:         logger.FormatAuto,
		BatchMaxRetries:   3,
		BatchRetryBackoff: 100 * time.Millisecond,
		AsyncConcurrency:  4,
	}
}

// Opts returns the command line options that fill c. Defaults are c's
// current values.
func (c *Config) Opts() []Opt {
	return []Opt{
		NewOpt(&c.HTTPBindAddress, "http-bind-address", c.HTTPBindAddress, "bind address for the REST HTTP API"),
		NewOpt(&c.AWSRegion, "aws-region", c.AWSRegion, "AWS region of the DynamoDB tables"),
		NewOpt(&c.AWSAccessKey, "aws-access-key", c.AWSAccessKey, "static AWS access key; the default credential chain is used when empty"),
		NewOpt(&c.AWSSecretKey, "aws-secret-key", c.AWSSecretKey, "static AWS secret key"),
		NewOpt(&c.DynamoDBEndpoint, "dynamodb-endpoint", c.DynamoDBEndpoint, "DynamoDB endpoint override, e.g. http://localhost:8000 for DynamoDB Local"),
		NewOpt(&c.LogLevel, "log-level", c.LogLevel, "supported log levels are debug, info, warn and error"),
		NewOpt(&c.LogFormat, "log-format", c.LogFormat, "log output format: auto, console or json"),
		NewOpt(&c.BatchMaxRetries, "batch-max-retries", c.BatchMaxRetries, "retries for unprocessed batch write items and failed stream scans"),
		NewOpt(&c.BatchRetryBackoff, "batch-retry-backoff", c.BatchRetryBackoff, "base backoff between batch write and stream scan retries"),
		NewOpt(&c.AsyncConcurrency, "async-concurrency", c.AsyncConcurrency, "batch chunks written concurrently by the async variants"),
		NewOpt(&c.TablesFile, "tables-file", c.TablesFile, "YAML table definitions; defaults to the built-in person and book tables"),
	}
}

// Load binds a new Config's options to cmd through a viper instance reading
// RECORDSTORE_* variables. Call LoadDotEnv first for .env files to count.
func Load(cmd *cobra.Command) *Config {
	c := NewConfig()
	BindOptions(NewViper(), cmd, c.Opts())
	return c
}

// LoadDotEnv loads the given files (".env" when none) into the process
// environment without overriding variables already set.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Validate checks the values that cannot be defaulted.
func (c *Config) Validate() error {
	var err error
	if c.HTTPBindAddress == "" {
		err = multierr.Append(err, errors.New("http-bind-address is required"))
	}
	if c.AWSRegion == "" {
		err = multierr.Append(err, errors.New("aws-region is required"))
	}
	if c.AWSAccessKey != "" && c.AWSSecretKey == "" {
		err = multierr.Append(err, errors.New("aws-secret-key is required with aws-access-key"))
	}
	if c.BatchMaxRetries < 0 {
		err = multierr.Append(err, errors.New("batch-max-retries must not be negative"))
	}
	if c.BatchRetryBackoff < 0 {
		err = multierr.Append(err, errors.New("batch-retry-backoff must not be negative"))
	}
	return err
}

// ClientConfig returns the DynamoDB connection settings.
func (c *Config) ClientConfig() ddb.ClientConfig {
	return ddb.ClientConfig{
		Region:    c.AWSRegion,
		AccessKey: c.AWSAccessKey,
		SecretKey: c.AWSSecretKey,
		Endpoint:  c.DynamoDBEndpoint,
	}
}

// LoggerConfig returns the logging settings.
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{Format: c.LogFormat, Level: c.LogLevel}
}

// StoreOptions returns the façade options for c.
func (c *Config) StoreOptions(log *zap.Logger) []ddb.Option {
	return []ddb.Option{
		ddb.WithLogger(log),
		ddb.WithBatchRetry(c.BatchMaxRetries, c.BatchRetryBackoff),
	}
}

// StreamOptions returns the retry settings table streams share with batch
// writes.
func (c *Config) StreamOptions() []storagemodels.StreamOption {
	return []storagemodels.StreamOption{
		storagemodels.WithRetry(c.BatchMaxRetries, c.BatchRetryBackoff),
	}
}
