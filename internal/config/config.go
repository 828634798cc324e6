// Package config loads and validates the sync configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nrollins/bucketsync/internal/domain"
)

// Config is the complete configuration for a sync pair.
type Config struct {
	// Bucket is the S3 bucket to sync against
	Bucket string `mapstructure:"bucket"`

	// Root is the local directory to sync
	Root string `mapstructure:"root"`

	// Prefix restricts the sync to keys below it
	Prefix string `mapstructure:"prefix"`

	// Region overrides the region from the AWS default chain
	Region string `mapstructure:"region"`

	// Endpoint overrides the S3 endpoint (S3-compatible stores)
	Endpoint string `mapstructure:"endpoint"`

	// ForcePathStyle enables path-style addressing
	ForcePathStyle bool `mapstructure:"force_path_style"`

	// CreateBucket creates the bucket if it does not exist
	CreateBucket bool `mapstructure:"create_bucket"`

	// LockDir holds lock files; empty means the user config dir
	LockDir string `mapstructure:"lock_dir"`

	Hatch HatchConfig `mapstructure:"hatch"`
	Log   LogConfig   `mapstructure:"log"`
}

// HatchConfig configures content signature calculation.
type HatchConfig struct {
	// Algorithm is "md5" or "sha256". MD5 keeps local signatures
	// comparable to plain S3 ETags.
	Algorithm string `mapstructure:"algorithm"`

	// MaxSizeMB skips hashing files above this size; 0 means the
	// built-in default
	MaxSizeMB int64 `mapstructure:"max_size_mb"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level          string `mapstructure:"level"`
	Format         string `mapstructure:"format"`
	File           string `mapstructure:"file"`
	FileMaxSizeMB  int    `mapstructure:"file_max_size_mb"`
	FileMaxAgeDays int    `mapstructure:"file_max_age_days"`
	FileMaxBackups int    `mapstructure:"file_max_backups"`
	Compress       bool   `mapstructure:"compress"`
}

// Validate checks that the configuration is complete and consistent.
func (c *Config) Validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("%w: bucket is required", domain.ErrBucketMissing)
	}
	if c.Root == "" {
		return fmt.Errorf("%w: root is required", domain.ErrRootMissing)
	}

	switch c.Hatch.Algorithm {
	case "", "md5", "sha256":
	default:
		return fmt.Errorf("%w: unknown hatch algorithm: %s", domain.ErrConfigInvalid, c.Hatch.Algorithm)
	}

	if c.Hatch.MaxSizeMB < 0 {
		return fmt.Errorf("%w: hatch max_size_mb cannot be negative", domain.ErrConfigInvalid)
	}

	switch c.Log.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown log level: %s", domain.ErrConfigInvalid, c.Log.Level)
	}

	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: unknown log format: %s", domain.ErrConfigInvalid, c.Log.Format)
	}

	return nil
}

// ExpandPath expands ~ and environment variables in a path.
func ExpandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			if len(path) > 1 && (path[1] == '/' || path[1] == filepath.Separator) {
				path = filepath.Join(home, path[2:])
			} else if len(path) == 1 {
				path = home
			}
		}
	}
	path = os.ExpandEnv(path)
	return filepath.Clean(path)
}
