package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/backupstate/internal/foundation/errors"
)

// Load reads, expands, defaults and validates a configuration file.
// .env and .env.local are loaded first so ${VAR} references can use them.
func Load(configPath string) (*Config, error) {
	loaded, err := loadEnvFiles()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "load env file").Build()
	}
	for _, f := range loaded {
		slog.Debug("Loaded environment variables", slog.String("file", f))
	}

	data, err := os.ReadFile(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ferrors.NotFoundError("configuration file").
			WithContext("path", configPath).
			Build()
	}
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "read config file").
			WithContext("path", configPath).
			Build()
	}
	return Parse(data)
}

// Parse decodes configuration bytes after expanding ${VAR} references.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "unmarshal config").Fatal().Build()
	}

	if cfg.Version != CurrentVersion {
		return nil, ferrors.ConfigError(fmt.Sprintf("unsupported configuration version: %q (expected %s)", cfg.Version, CurrentVersion)).Build()
	}

	if err := normalize(&cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// normalize case-folds enumerations, rejecting unknown values.
func normalize(cfg *Config) error {
	level, err := logLevelNormalizer.NormalizeWithError(string(cfg.Logging.Level))
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryValidation, "logging.level").Fatal().Build()
	}
	format, err := logFormatNormalizer.NormalizeWithError(string(cfg.Logging.Format))
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryValidation, "logging.format").Fatal().Build()
	}
	cfg.Logging.Level = level
	cfg.Logging.Format = format
	return nil
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return ferrors.ConfigError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath)).Build()
	}

	watch := true
	example := Default()
	example.Database.URL = "${DATABASE_URL}"
	example.Verify.WatchArtifacts = &watch

	data, err := yaml.Marshal(example)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "marshal example config").Build()
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "write config file").
			WithContext("path", configPath).
			Build()
	}
	return nil
}
