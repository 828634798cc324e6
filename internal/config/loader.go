package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/nrollins/bucketsync/internal/domain"
)

// envPrefix is the prefix for environment overrides, e.g.
// BUCKETSYNC_BUCKET or BUCKETSYNC_LOG_LEVEL.
const envPrefix = "BUCKETSYNC"

// DefaultConfigPaths returns the default paths to search for config
// files.
func DefaultConfigPaths() []string {
	paths := []string{"."}

	if configDir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(configDir, "bucketsync"))
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, ".config", "bucketsync"))
	}

	return paths
}

// Load reads and parses a configuration file. If path is empty,
// default locations are searched for bucketsync.yaml. Environment
// variables with the BUCKETSYNC_ prefix override file values.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("bucketsync")
		v.SetConfigType("yaml")
		for _, p := range DefaultConfigPaths() {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil, domain.ErrConfigNotFound
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrConfigInvalid, err)
	}

	return unmarshal(v)
}

// LoadFromString parses configuration from a YAML string.
func LoadFromString(yamlContent string) (*Config, error) {
	v := newViper()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(strings.NewReader(yamlContent)); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfigInvalid, err)
	}

	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// keys must be bound for Unmarshal to see env-only values
	for _, key := range []string{
		"bucket", "root", "prefix", "region", "endpoint",
		"force_path_style", "create_bucket", "lock_dir",
		"hatch.algorithm", "hatch.max_size_mb",
		"log.level", "log.format", "log.file",
	} {
		v.BindEnv(key)
	}

	v.SetDefault("hatch.algorithm", "md5")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file_max_size_mb", 50)
	v.SetDefault("log.file_max_age_days", 14)
	v.SetDefault("log.file_max_backups", 5)

	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfigInvalid, err)
	}

	cfg.Root = ExpandPath(cfg.Root)
	if cfg.LockDir != "" {
		cfg.LockDir = ExpandPath(cfg.LockDir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
