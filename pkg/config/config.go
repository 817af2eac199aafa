// Package config loads buildingmap settings from a TOML file.
//
// A missing file is not an error: every field has a default, so an empty
// configuration saves YAML files to the local filesystem and serves on :8080.
// Network sinks are enabled by filling in their section:
//
//	[save]
//	format = "yaml"
//
//	[redis]
//	addr = "localhost:6379"
//
//	[s3]
//	endpoint = "localhost:9000"
//	access_key = "minioadmin"
//	secret_key = "minioadmin"
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	bmerrors "github.com/matzehuels/buildingmap/pkg/errors"
	bmio "github.com/matzehuels/buildingmap/pkg/io"
)

// Config is the full configuration file.
type Config struct {
	Log    Log    `toml:"log"`
	Save   Save   `toml:"save"`
	Server Server `toml:"server"`
	Redis  Redis  `toml:"redis"`
	Mongo  Mongo  `toml:"mongo"`
	S3     S3     `toml:"s3"`
}

// Log configures the CLI logger.
type Log struct {
	Level string `toml:"level"`
}

// Save configures save passes.
type Save struct {
	// Format is used for locations without a .yaml/.yml/.json extension.
	Format string `toml:"format"`
}

// Server configures the HTTP trigger server.
type Server struct {
	Addr            string   `toml:"addr"`
	ShutdownTimeout duration `toml:"shutdown_timeout"`
}

// Redis enables the redis:// sink when Addr is set.
type Redis struct {
	Addr     string   `toml:"addr"`
	Password string   `toml:"password"`
	DB       int      `toml:"db"`
	TTL      duration `toml:"ttl"`
}

// Mongo enables the mongodb:// sink when URI is set.
type Mongo struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// S3 enables the s3:// sink when Endpoint is set.
type S3 struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Region    string `toml:"region"`
	UseSSL    bool   `toml:"use_ssl"`
}

// duration decodes TOML strings such as "30s".
type duration struct{ time.Duration }

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Log:    Log{Level: "info"},
		Save:   Save{Format: string(bmio.FormatYAML)},
		Server: Server{Addr: ":8080", ShutdownTimeout: duration{10 * time.Second}},
		Mongo:  Mongo{Database: "buildingmap"},
	}
}

// Load reads path over the defaults. An empty path or a missing file yields
// the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	meta, err := toml.DecodeFile(path, cfg)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, bmerrors.Wrap(bmerrors.ErrCodeInvalidFormat, err, "config %s", path)
	}
	if undec := meta.Undecoded(); len(undec) > 0 {
		keys := make([]string, len(undec))
		for i, k := range undec {
			keys[i] = k.String()
		}
		return nil, bmerrors.New(bmerrors.ErrCodeInvalidInput, "config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	if !logLevels[strings.ToLower(c.Log.Level)] {
		return bmerrors.New(bmerrors.ErrCodeInvalidInput, "invalid log level: %q (must be one of: debug, info, warn, error)", c.Log.Level)
	}
	if _, err := bmio.ParseFormat(c.Save.Format); err != nil {
		return err
	}
	if c.Server.Addr == "" {
		return bmerrors.New(bmerrors.ErrCodeInvalidInput, "server.addr must not be empty")
	}
	if c.S3.Endpoint != "" && (c.S3.AccessKey == "") != (c.S3.SecretKey == "") {
		return bmerrors.New(bmerrors.ErrCodeInvalidInput, "s3: access_key and secret_key must be set together")
	}
	return nil
}

// SaveFormat returns the parsed fallback format.
func (c *Config) SaveFormat() bmio.Format {
	f, err := bmio.ParseFormat(c.Save.Format)
	if err != nil {
		return bmio.FormatYAML
	}
	return f
}

// ShutdownTimeout returns the server drain timeout.
func (c *Config) ShutdownTimeout() time.Duration { return c.Server.ShutdownTimeout.Duration }

// RedisTTL returns the expiry applied to redis values; zero means none.
func (c *Config) RedisTTL() time.Duration { return c.Redis.TTL.Duration }
