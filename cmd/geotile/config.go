package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// envPrefix prefixes every environment variable read by the CLI.
const envPrefix = "GEOTILE_"

// Config is the YAML configuration file. Every field can also be set by a
// GEOTILE_* environment variable and most by a flag. Precedence is
// flag > env > file > default.
type Config struct {
	LogLevel    string `yaml:"log-level,omitempty"`
	Store       string `yaml:"store,omitempty"`
	Bucket      string `yaml:"bucket,omitempty"`
	Prefix      string `yaml:"prefix,omitempty"`
	Endpoint    string `yaml:"endpoint,omitempty"`
	Region      string `yaml:"region,omitempty"`
	CommitTable string `yaml:"commit-table,omitempty"`
	Compression string `yaml:"compression,omitempty"`

	// Credentials are never taken from flags.
	AccessKey string `yaml:"access-key,omitempty"`
	SecretKey string `yaml:"secret-key,omitempty"`

	LinksURL     string `yaml:"links-url,omitempty"`
	MaxRecords   int    `yaml:"max-records,omitempty"`
	MaxDownloads int    `yaml:"max-downloads,omitempty"`
	IOLimit      int64  `yaml:"io-limit,omitempty"`
	CacheBytes   int64  `yaml:"cache-bytes,omitempty"`
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// resolver applies flag > env > file precedence to one command invocation.
type resolver struct {
	cmd  *cobra.Command
	file Config
	err  error
}

func (r *resolver) str(flag, env string, dst *string, fileVal string) {
	if r.cmd.Flags().Changed(flag) {
		return
	}
	if v := os.Getenv(envPrefix + env); v != "" {
		*dst = v
		return
	}
	if fileVal != "" {
		*dst = fileVal
	}
}

func (r *resolver) integer(flag, env string, dst *int, fileVal int) {
	if r.cmd.Flags().Changed(flag) {
		return
	}
	if v := os.Getenv(envPrefix + env); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			r.err = fmt.Errorf("%s%s: %w", envPrefix, env, err)
			return
		}
		*dst = n
		return
	}
	if fileVal != 0 {
		*dst = fileVal
	}
}

func (r *resolver) integer64(flag, env string, dst *int64, fileVal int64) {
	if r.cmd.Flags().Changed(flag) {
		return
	}
	if v := os.Getenv(envPrefix + env); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			r.err = fmt.Errorf("%s%s: %w", envPrefix, env, err)
			return
		}
		*dst = n
		return
	}
	if fileVal != 0 {
		*dst = fileVal
	}
}

// resolveConfig fills cfg from env and the config file for every setting
// whose flag was not given.
func resolveConfig(cmd *cobra.Command, configPath string, cfg *Config) error {
	r := &resolver{cmd: cmd}
	if configPath != "" {
		f, err := LoadConfig(configPath)
		if err != nil {
			return err
		}
		r.file = *f
	}

	f := r.file
	r.str("log-level", "LOG_LEVEL", &cfg.LogLevel, f.LogLevel)
	r.str("store", "STORE", &cfg.Store, f.Store)
	r.str("bucket", "BUCKET", &cfg.Bucket, f.Bucket)
	r.str("prefix", "PREFIX", &cfg.Prefix, f.Prefix)
	r.str("endpoint", "ENDPOINT", &cfg.Endpoint, f.Endpoint)
	r.str("region", "REGION", &cfg.Region, f.Region)
	r.str("commit-table", "COMMIT_TABLE", &cfg.CommitTable, f.CommitTable)
	r.str("compression", "COMPRESSION", &cfg.Compression, f.Compression)
	r.str("access-key", "ACCESS_KEY", &cfg.AccessKey, f.AccessKey)
	r.str("secret-key", "SECRET_KEY", &cfg.SecretKey, f.SecretKey)
	r.str("links-url", "LINKS_URL", &cfg.LinksURL, f.LinksURL)
	r.integer("max-records", "MAX_RECORDS", &cfg.MaxRecords, f.MaxRecords)
	r.integer("max-downloads", "MAX_DOWNLOADS", &cfg.MaxDownloads, f.MaxDownloads)
	r.integer64("io-limit", "IO_LIMIT", &cfg.IOLimit, f.IOLimit)
	r.integer64("cache-bytes", "CACHE_BYTES", &cfg.CacheBytes, f.CacheBytes)
	return r.err
}
