package config

import (
	"path/filepath"
	"time"
)

// CurrentVersion is the only configuration version this build understands.
const CurrentVersion = "1.0"

// Config is the backupstate configuration file.
type Config struct {
	Version   string          `yaml:"version"`
	Storage   StorageConfig   `yaml:"storage"`
	Database  DatabaseConfig  `yaml:"database"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Verify    VerifyConfig    `yaml:"verify"`
	Daemon    DaemonConfig    `yaml:"daemon"`
	Notify    NotifyConfig    `yaml:"notify"`
	Logging   LoggingConfig   `yaml:"logging"`
	Tracing   TracingConfig   `yaml:"tracing"`
}

// StorageConfig locates the snapshot file.
type StorageConfig struct {
	BaseDir   string `yaml:"base_dir"`   // Snapshot directory
	StateFile string `yaml:"state_file"` // File name inside BaseDir
}

// DatabaseConfig points at the data store whose tables are inventoried.
// An empty URL means no data store; the inventory is then empty.
type DatabaseConfig struct {
	URL    string `yaml:"url"`
	Schema string `yaml:"schema"`
}

// ArtifactsConfig lists the configuration artifacts recorded in every snapshot.
type ArtifactsConfig struct {
	Root  string   `yaml:"root"`  // Directory relative artifact paths resolve against
	Files []string `yaml:"files"` // Exactly three entries
}

// VerifyConfig controls periodic verification in daemon mode.
type VerifyConfig struct {
	Interval       string `yaml:"interval"`
	WatchArtifacts *bool  `yaml:"watch_artifacts,omitempty"`
}

// DaemonConfig configures the long-running mode.
type DaemonConfig struct {
	AdminAddr string `yaml:"admin_addr"`
}

// NotifyConfig configures drift notifications. Empty NATSURL disables them.
type NotifyConfig struct {
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
}

// LoggingConfig configures the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// TracingConfig configures OpenTelemetry export.
type TracingConfig struct {
	Stdout bool `yaml:"stdout"`
}

// StatePath returns the full path of the snapshot file.
func (c *Config) StatePath() string {
	return filepath.Join(c.Storage.BaseDir, c.Storage.StateFile)
}

// VerifyInterval returns the parsed verification interval.
// Validation guarantees it parses for loaded configs.
func (c *Config) VerifyInterval() time.Duration {
	d, err := time.ParseDuration(c.Verify.Interval)
	if err != nil {
		return DefaultVerifyInterval
	}
	return d
}

// WatchArtifacts reports whether the daemon should watch artifact files.
func (c *Config) WatchArtifacts() bool {
	return c.Verify.WatchArtifacts == nil || *c.Verify.WatchArtifacts
}
