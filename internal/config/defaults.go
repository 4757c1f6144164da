package config

import (
	"time"

	"git.home.luguber.info/inful/backupstate/internal/state"
)

const (
	DefaultBaseDir        = "./backups"
	DefaultArtifactsRoot  = "."
	DefaultVerifyInterval = time.Hour
	DefaultAdminAddr      = ":8082"
	DefaultNotifySubject  = "backupstate.drift"
)

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config)
	Domain() string
}

type storageDefaults struct{}

func (storageDefaults) Domain() string { return "storage" }

func (storageDefaults) ApplyDefaults(cfg *Config) {
	if cfg.Storage.BaseDir == "" {
		cfg.Storage.BaseDir = DefaultBaseDir
	}
	if cfg.Storage.StateFile == "" {
		cfg.Storage.StateFile = state.DefaultStateFile
	}
}

type databaseDefaults struct{}

func (databaseDefaults) Domain() string { return "database" }

func (databaseDefaults) ApplyDefaults(cfg *Config) {
	if cfg.Database.Schema == "" {
		cfg.Database.Schema = "public"
	}
}

type artifactDefaults struct{}

func (artifactDefaults) Domain() string { return "artifacts" }

func (artifactDefaults) ApplyDefaults(cfg *Config) {
	if cfg.Artifacts.Root == "" {
		cfg.Artifacts.Root = DefaultArtifactsRoot
	}
	if len(cfg.Artifacts.Files) == 0 {
		cfg.Artifacts.Files = state.DefaultArtifacts()
	}
}

type runtimeDefaults struct{}

func (runtimeDefaults) Domain() string { return "runtime" }

func (runtimeDefaults) ApplyDefaults(cfg *Config) {
	if cfg.Verify.Interval == "" {
		cfg.Verify.Interval = DefaultVerifyInterval.String()
	}
	if cfg.Daemon.AdminAddr == "" {
		cfg.Daemon.AdminAddr = DefaultAdminAddr
	}
	if cfg.Notify.Subject == "" {
		cfg.Notify.Subject = DefaultNotifySubject
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = LogLevelInfo
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = LogFormatText
	}
}

var defaultAppliers = []DefaultApplier{
	storageDefaults{},
	databaseDefaults{},
	artifactDefaults{},
	runtimeDefaults{},
}

// ApplyDefaults fills every unset field.
func ApplyDefaults(cfg *Config) {
	for _, a := range defaultAppliers {
		a.ApplyDefaults(cfg)
	}
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{Version: CurrentVersion}
	ApplyDefaults(cfg)
	return cfg
}
