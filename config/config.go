package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/mitchellh/go-homedir"
	"github.com/turbot/tailpipe-s3-log-forwarder/constants"
)

const (
	defaultMaxErrorRetryAttempts = 3
	defaultBatchSize             = 1
)

// Config is the forwarder configuration
// It is read from an optional HCL file (FORWARDER_CONFIG_FILE) and then overridden
// by environment variables named after each hcl attribute, e.g. region -> FORWARDER_REGION
// (log_group_name is read from LOG_GROUP_NAME)
type Config struct {
	// the log group the daily streams are created in
	LogGroupName string `hcl:"log_group_name,optional"`

	// aws connection
	Region                *string `hcl:"region,optional"`
	Profile               *string `hcl:"profile,optional"`
	AccessKey             *string `hcl:"access_key,optional"`
	SecretKey             *string `hcl:"secret_key,optional"`
	SessionToken          *string `hcl:"session_token,optional"`
	EndpointUrl           *string `hcl:"endpoint_url,optional"`
	MaxErrorRetryAttempts *int    `hcl:"max_error_retry_attempts,optional"`

	// publishing
	BatchSize        int     `hcl:"batch_size,optional"`
	BatchBytes       int     `hcl:"batch_bytes,optional"`
	PublishRateLimit float64 `hcl:"publish_rate_limit,optional"`
}

// Load builds the config from the optional config file and the environment
func Load() (*Config, error) {
	cfg := &Config{}

	if path := os.Getenv(constants.EnvConfigFile); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	filename, err := homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("failed to resolve config file path %s, %w", path, err)
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s, %w", filename, err)
	}
	return ParseConfig(data, filename, hcl.Pos{Line: 1, Column: 1}, c)
}

func (c *Config) SetDefaults() {
	if c.LogGroupName == "" {
		c.LogGroupName = constants.DefaultLogGroupName
	}
	if c.MaxErrorRetryAttempts == nil {
		n := defaultMaxErrorRetryAttempts
		c.MaxErrorRetryAttempts = &n
	}
	if c.BatchSize == 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.BatchBytes == 0 {
		c.BatchBytes = constants.MaxBytesPerCall
	}
}

func (c *Config) Validate() error {
	if c.LogGroupName == "" {
		return errors.New("log_group_name is required")
	}

	if c.AccessKey != nil && c.SecretKey == nil {
		return fmt.Errorf("access_key set without secret_key")
	}
	if c.AccessKey == nil && c.SecretKey != nil {
		return fmt.Errorf("secret_key set without access_key")
	}
	if c.AccessKey == nil && c.SessionToken != nil {
		return fmt.Errorf("session_token set without access_key")
	}

	if c.MaxErrorRetryAttempts != nil && *c.MaxErrorRetryAttempts < 1 {
		return fmt.Errorf("max_error_retry_attempts must be greater than or equal to 1")
	}

	if c.BatchSize < 1 || c.BatchSize > constants.MaxEventsPerCall {
		return fmt.Errorf("batch_size must be between 1 and %d", constants.MaxEventsPerCall)
	}
	if c.BatchBytes < 1 || c.BatchBytes > constants.MaxBytesPerCall {
		return fmt.Errorf("batch_bytes must be between 1 and %d", constants.MaxBytesPerCall)
	}
	if c.PublishRateLimit < 0 {
		return fmt.Errorf("publish_rate_limit must not be negative")
	}
	return nil
}
