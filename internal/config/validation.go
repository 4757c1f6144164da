package config

import (
	"fmt"
	"strings"
	"time"

	"git.home.luguber.info/inful/backupstate/internal/catalog"
	"git.home.luguber.info/inful/backupstate/internal/foundation"
	"git.home.luguber.info/inful/backupstate/internal/state"
)

// field lifts a validator on one config field to the whole config.
func field[T any](get func(*Config) T, v foundation.Validator[T]) foundation.Validator[*Config] {
	return func(cfg *Config) foundation.ValidationResult {
		return v(get(cfg))
	}
}

func validateStateFile(name string) foundation.ValidationResult {
	if strings.ContainsAny(name, `/\`) {
		return foundation.Invalid(foundation.NewValidationError("storage.state_file", "file_name",
			"must be a file name, not a path"))
	}
	return foundation.Valid()
}

func validateArtifacts(files []string) foundation.ValidationResult {
	result := foundation.ExactLength[string]("artifacts.files", state.ArtifactCount)(files)
	for i, f := range files {
		if strings.TrimSpace(f) == "" {
			result = result.Combine(foundation.Invalid(foundation.NewValidationError(
				fmt.Sprintf("artifacts.files[%d]", i), "required", "artifact path is empty")))
		}
	}
	return result
}

func validateInterval(raw string) foundation.ValidationResult {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return foundation.Invalid(foundation.NewValidationError("verify.interval", "duration", err.Error()))
	}
	if d <= 0 {
		return foundation.Invalid(foundation.NewValidationError("verify.interval", "positive", "interval must be positive"))
	}
	return foundation.Valid()
}

func validateDatabaseURL(url string) foundation.ValidationResult {
	if url == "" {
		return foundation.Valid()
	}
	if _, err := catalog.ParseURL(url); err != nil {
		return foundation.Invalid(foundation.NewValidationError("database.url", "scheme",
			"unsupported database url (expected postgres://, postgresql://, keyword DSN or sqlite:)"))
	}
	return foundation.Valid()
}

func validateNotify(n NotifyConfig) foundation.ValidationResult {
	if n.NATSURL != "" && strings.TrimSpace(n.Subject) == "" {
		return foundation.Invalid(foundation.NewValidationError("notify.subject", "required",
			"subject is required when nats_url is set"))
	}
	return foundation.Valid()
}

var configValidator = foundation.NewValidatorChain(
	field(func(c *Config) string { return c.Version }, foundation.OneOf("version", []string{CurrentVersion})),
	field(func(c *Config) string { return c.Storage.BaseDir }, foundation.StringNotEmpty("storage.base_dir")),
	field(func(c *Config) string { return c.Storage.StateFile }, foundation.StringNotEmpty("storage.state_file")),
	field(func(c *Config) string { return c.Storage.StateFile }, validateStateFile),
	field(func(c *Config) []string { return c.Artifacts.Files }, validateArtifacts),
	field(func(c *Config) string { return c.Verify.Interval }, validateInterval),
	field(func(c *Config) string { return c.Database.URL }, validateDatabaseURL),
	field(func(c *Config) NotifyConfig { return c.Notify }, validateNotify),
	field(func(c *Config) string { return c.Daemon.AdminAddr }, foundation.StringNotEmpty("daemon.admin_addr")),
)

// Validate checks a fully defaulted configuration.
func Validate(cfg *Config) error {
	return configValidator.Validate(cfg).ToError()
}
